package service

import (
	"strings"
	"testing"

	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCoachClientScenario(t *testing.T) {
	f := newFixture(t)
	ctx := ctxT(t)

	p := f.planFor(t, f.coachA, f.clientX.UserID)
	squat, err := f.exercises.CreateExercise(ctx, f.coachA, "Squat", nil)
	require.NoError(t, err)
	w := 50.0
	_, err = f.plans.AttachExercise(ctx, f.coachA, p.ID, AttachExerciseInput{ExerciseID: squat.ID, Sets: 3, Reps: 10, Weight: &w})
	require.NoError(t, err)

	first, created, err := f.completions.UpsertCompletion(ctx, f.clientX, p.ID, domain.CompletionPatch{Completed: domain.Some(true)})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, first.Completed)

	second, created, err := f.completions.UpsertCompletion(ctx, f.clientX, p.ID, domain.CompletionPatch{Feedback: domain.Some("tough")})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Completed)
	require.NotNil(t, second.Feedback)
	assert.Equal(t, "tough", *second.Feedback)
	assert.False(t, second.CompletionDate.Before(first.CompletionDate))
	assert.Len(t, f.mem.completions, 1)

	_, err = f.users.GetClient(ctx, f.coachB, f.clientX.UserID)
	assertKind(t, err, domain.KindNotFound)
}

func TestUpsertDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := ctxT(t)
	p := f.planFor(t, f.coachA, f.clientX.UserID)

	c, created, err := f.completions.UpsertCompletion(ctx, f.clientX, p.ID, domain.CompletionPatch{})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, c.Completed)

	for _, rating := range []int{0, 6, -1} {
		_, _, err := f.completions.UpsertCompletion(ctx, f.clientX, p.ID, domain.CompletionPatch{DifficultyRating: domain.Some(rating)})
		assertKind(t, err, domain.KindValidation)
	}
	got, err := f.completions.ListForPlan(ctx, f.coachA, p.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].DifficultyRating)
	assert.Equal(t, "ClientX", got[0].Client.Name)

	_, _, err = f.completions.UpsertCompletion(ctx, f.clientX, "", domain.CompletionPatch{})
	assertKind(t, err, domain.KindValidation)

	// An explicit false is kept rather than treated as absent.
	c, _, err = f.completions.UpsertCompletion(ctx, f.clientX, p.ID, domain.CompletionPatch{Completed: domain.Some(false)})
	require.NoError(t, err)
	assert.False(t, c.Completed)
}

func TestUpsertRequiresAssignedPlan(t *testing.T) {
	f := newFixture(t)
	ctx := ctxT(t)
	p := f.planFor(t, f.coachA, f.clientX.UserID)

	_, _, foreign := f.completions.UpsertCompletion(ctx, f.clientY, p.ID, domain.CompletionPatch{})
	assertKind(t, foreign, domain.KindNotFound)
	assertMessage(t, foreign, "Workout plan not found or not assigned to you")

	_, _, missing := f.completions.UpsertCompletion(ctx, f.clientY, "missing-plan", domain.CompletionPatch{})
	assert.Equal(t, foreign.Error(), missing.Error())

	_, _, err := f.completions.UpsertCompletion(ctx, f.coachA, p.ID, domain.CompletionPatch{})
	assertKind(t, err, domain.KindAuthorization)
	assert.Empty(t, f.mem.completions)
}

func TestCompletionMutationsAreClientScoped(t *testing.T) {
	f := newFixture(t)
	ctx := ctxT(t)
	p := f.planFor(t, f.coachA, f.clientX.UserID)
	c, _, err := f.completions.UpsertCompletion(ctx, f.clientX, p.ID, domain.CompletionPatch{})
	require.NoError(t, err)

	_, err = f.completions.UpdateCompletion(ctx, f.clientY, c.ID, domain.CompletionPatch{Feedback: domain.Some("mine now")})
	assertKind(t, err, domain.KindNotFound)
	assertKind(t, f.completions.DeleteCompletion(ctx, f.clientY, c.ID), domain.KindNotFound)
	_, err = f.completions.UpdateCompletion(ctx, f.coachA, c.ID, domain.CompletionPatch{})
	assertKind(t, err, domain.KindAuthorization)
	assert.Nil(t, f.mem.completions[c.ID].Feedback)

	updated, err := f.completions.UpdateCompletion(ctx, f.clientX, c.ID, domain.CompletionPatch{
		Feedback:         domain.Some("easy"),
		DifficultyRating: domain.Some(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, *updated.DifficultyRating)

	cleared, err := f.completions.UpdateCompletion(ctx, f.clientX, c.ID, domain.CompletionPatch{DifficultyRating: domain.Null[int]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.DifficultyRating)
	assert.Equal(t, "easy", *cleared.Feedback)

	_, err = f.completions.UpdateCompletion(ctx, f.clientX, c.ID, domain.CompletionPatch{DifficultyRating: domain.Some(6)})
	assertKind(t, err, domain.KindValidation)

	require.NoError(t, f.completions.DeleteCompletion(ctx, f.clientX, c.ID))
	assert.Empty(t, f.mem.completions)
	assertKind(t, f.completions.DeleteCompletion(ctx, f.clientX, c.ID), domain.KindNotFound)
}

func TestListCompletions(t *testing.T) {
	f := newFixture(t)
	ctx := ctxT(t)
	p := f.planFor(t, f.coachA, f.clientX.UserID)
	_, _, err := f.completions.UpsertCompletion(ctx, f.clientX, p.ID, domain.CompletionPatch{})
	require.NoError(t, err)

	own, err := f.completions.ListForClient(ctx, f.clientX, "")
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.NotNil(t, own[0].Plan)
	assert.Equal(t, "Leg Day", own[0].Plan.Topic)
	assert.Equal(t, "CoachA", own[0].Plan.Coach.Name)

	byCoach, err := f.completions.ListForClient(ctx, f.coachA, f.clientX.UserID)
	require.NoError(t, err)
	assert.Len(t, byCoach, 1)

	_, err = f.completions.ListForClient(ctx, f.coachB, f.clientX.UserID)
	assertKind(t, err, domain.KindNotFound)
	_, err = f.completions.ListForPlan(ctx, f.coachB, p.ID)
	assertKind(t, err, domain.KindNotFound)
	_, err = f.completions.ListForPlan(ctx, f.clientY, p.ID)
	assertKind(t, err, domain.KindNotFound)

	empty, err := f.completions.ListForClient(ctx, f.clientY, "")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCompletionMedia(t *testing.T) {
	f := newFixture(t)
	ctx := ctxT(t)
	p := f.planFor(t, f.coachA, f.clientX.UserID)
	c, _, err := f.completions.UpsertCompletion(ctx, f.clientX, p.ID, domain.CompletionPatch{})
	require.NoError(t, err)

	_, _, err = f.completions.MediaURL(ctx, f.coachA, c.ID)
	assert.ErrorIs(t, err, ErrNoMedia)

	_, err = f.completions.MediaUploadURL(ctx, f.clientX, c.ID, "application/pdf")
	assert.ErrorIs(t, err, ErrInvalidMediaType)
	_, err = f.completions.MediaUploadURL(ctx, f.clientY, c.ID, "video/mp4")
	assertKind(t, err, domain.KindNotFound)

	first, err := f.completions.MediaUploadURL(ctx, f.clientX, c.ID, "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.Key, "completions/"+c.ID+"/"))
	assert.NoError(t, storage.CheckCompletionMediaKey(c.ID, first.Key))

	_, err = f.completions.ConfirmMedia(ctx, f.clientX, c.ID, "completions/other-id/x")
	assert.ErrorIs(t, err, ErrInvalidMediaKey)
	_, err = f.completions.ConfirmMedia(ctx, f.clientX, c.ID, first.Key)
	require.NoError(t, err)

	second, err := f.completions.MediaUploadURL(ctx, f.clientX, c.ID, "image/png")
	require.NoError(t, err)
	_, err = f.completions.ConfirmMedia(ctx, f.clientX, c.ID, second.Key)
	require.NoError(t, err)
	assert.Equal(t, []string{first.Key}, f.files.Deleted())

	url, _, err := f.completions.MediaURL(ctx, f.coachA, c.ID)
	require.NoError(t, err)
	assert.Contains(t, url, second.Key)
	_, _, err = f.completions.MediaURL(ctx, f.clientX, c.ID)
	assert.NoError(t, err)
	_, _, err = f.completions.MediaURL(ctx, f.coachB, c.ID)
	assertKind(t, err, domain.KindNotFound)

	require.NoError(t, f.completions.DeleteCompletion(ctx, f.clientX, c.ID))
	assert.Equal(t, []string{first.Key, second.Key}, f.files.Deleted())
}

func TestCompletionMediaDisabled(t *testing.T) {
	f := newFixture(t)
	st := f.mem.store()
	svc := NewCompletionService(st.Users, st.Plans, st.Completions, nil, zap.NewNop())

	_, err := svc.MediaUploadURL(ctxT(t), f.clientX, "any", "image/png")
	assertKind(t, err, domain.KindUnavailable)
	_, _, err = svc.MediaURL(ctxT(t), f.coachA, "any")
	assert.ErrorIs(t, err, ErrMediaDisabled)
}

func TestCompletionFollowsPlanClient(t *testing.T) {
	f := newFixture(t)
	ctx := ctxT(t)
	p := f.planFor(t, f.coachA, f.clientX.UserID)
	c, _, err := f.completions.UpsertCompletion(ctx, f.clientX, p.ID, domain.CompletionPatch{})
	require.NoError(t, err)

	// A row left behind by a plan that now belongs to another client.
	walt := f.mem.seedUser("Walt", domain.RoleClient, f.coachA.UserID)
	plan := f.mem.plans[p.ID]
	plan.ClientID = walt
	f.mem.plans[p.ID] = plan

	_, err = f.completions.UpdateCompletion(ctx, f.clientX, c.ID, domain.CompletionPatch{Feedback: domain.Some("still mine")})
	assertKind(t, err, domain.KindNotFound)
	assertMessage(t, err, "Workout completion not found or not created by you")

	_, err = f.completions.MediaUploadURL(ctx, f.clientX, c.ID, "image/jpeg")
	assertKind(t, err, domain.KindNotFound)

	assertKind(t, f.completions.DeleteCompletion(ctx, f.clientX, c.ID), domain.KindNotFound)
	assert.Contains(t, f.mem.completions, c.ID)

	// The completion also vanishes if its plan is gone.
	delete(f.mem.plans, p.ID)
	_, err = f.completions.UpdateCompletion(ctx, f.clientX, c.ID, domain.CompletionPatch{})
	assertKind(t, err, domain.KindNotFound)
}
