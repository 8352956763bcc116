package service

import (
	"testing"
	"time"

	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlan(t *testing.T) {
	f := newFixture(t)
	ctx := ctxT(t)

	p, err := f.plans.CreatePlan(ctx, f.coachA, CreatePlanInput{
		ClientID: f.clientX.UserID,
		Date:     time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPlanTopic, p.Topic)
	assert.Equal(t, legDay, p.Date)
	assert.Equal(t, f.coachA.UserID, p.CoachID)

	_, err = f.plans.CreatePlan(ctx, f.coachA, CreatePlanInput{ClientID: f.clientX.UserID})
	assertKind(t, err, domain.KindValidation)

	_, err = f.plans.CreatePlan(ctx, f.clientX, CreatePlanInput{ClientID: f.clientX.UserID, Date: legDay})
	assertKind(t, err, domain.KindAuthorization)

	_, err = f.plans.CreatePlan(ctx, f.coachA, CreatePlanInput{ClientID: f.clientY.UserID, Date: legDay})
	assertKind(t, err, domain.KindNotFound)
	assertMessage(t, err, "Client not found or not assigned to you")
}

func TestPlanVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := ctxT(t)
	p := f.planFor(t, f.coachA, f.clientX.UserID)

	for _, who := range []struct {
		name string
		ok   bool
		call func() error
	}{
		{"owning coach", true, func() error { _, err := f.plans.GetPlan(ctx, f.coachA, p.ID); return err }},
		{"assigned client", true, func() error { _, err := f.plans.GetPlan(ctx, f.clientX, p.ID); return err }},
		{"other coach", false, func() error { _, err := f.plans.GetPlan(ctx, f.coachB, p.ID); return err }},
		{"other client", false, func() error { _, err := f.plans.GetPlan(ctx, f.clientY, p.ID); return err }},
	} {
		t.Run(who.name, func(t *testing.T) {
			err := who.call()
			if who.ok {
				assert.NoError(t, err)
				return
			}
			assertKind(t, err, domain.KindNotFound)
		})
	}

	// A foreign plan and a missing plan are indistinguishable.
	_, foreign := f.plans.GetPlan(ctx, f.coachB, p.ID)
	_, missing := f.plans.GetPlan(ctx, f.coachB, "3f0c1a8e-0000-4000-8000-000000000000")
	assert.Equal(t, foreign.Error(), missing.Error())
	assert.Equal(t, domain.KindOf(foreign), domain.KindOf(missing))
}

func TestAttachExerciseAndDetails(t *testing.T) {
	f := newFixture(t)
	ctx := ctxT(t)
	p := f.planFor(t, f.coachA, f.clientX.UserID)
	squat, err := f.exercises.CreateExercise(ctx, f.coachA, "Squat", nil)
	require.NoError(t, err)

	w := 50.0
	row, err := f.plans.AttachExercise(ctx, f.coachA, p.ID, AttachExerciseInput{ExerciseID: squat.ID, Sets: 3, Reps: 10, Weight: &w})
	require.NoError(t, err)
	assert.Equal(t, "Squat", row.Exercise.Name)

	_, err = f.plans.AttachExercise(ctx, f.coachA, p.ID, AttachExerciseInput{ExerciseID: squat.ID, Sets: 0, Reps: 10})
	assertKind(t, err, domain.KindValidation)
	_, err = f.plans.AttachExercise(ctx, f.coachB, p.ID, AttachExerciseInput{ExerciseID: squat.ID, Sets: 3, Reps: 10})
	assertKind(t, err, domain.KindNotFound)
	_, err = f.plans.AttachExercise(ctx, f.coachA, p.ID, AttachExerciseInput{ExerciseID: "missing", Sets: 3, Reps: 10})
	assertKind(t, err, domain.KindNotFound)
	assertMessage(t, err, msgExerciseNotFound)

	details, err := f.plans.GetPlan(ctx, f.clientX, p.ID)
	require.NoError(t, err)
	require.Len(t, details.Exercises, 1)
	assert.Equal(t, 3, details.Exercises[0].Sets)
	assert.Equal(t, 50.0, *details.Exercises[0].Weight)
	assert.Equal(t, "CoachA", details.Coach.Name)
	assert.Equal(t, "ClientX", details.Client.Name)
}

func TestUpdatePlan(t *testing.T) {
	f := newFixture(t)
	ctx := ctxT(t)
	p := f.planFor(t, f.coachA, f.clientX.UserID)

	got, err := f.plans.UpdatePlan(ctx, f.coachA, p.ID, domain.PlanPatch{
		Topic:       domain.Null[string](),
		Description: domain.Some(""),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPlanTopic, got.Topic)
	require.NotNil(t, got.Description)
	assert.Equal(t, "", *got.Description)

	// Reassigning to another coach's client is refused like a missing client.
	_, err = f.plans.UpdatePlan(ctx, f.coachA, p.ID, domain.PlanPatch{ClientID: domain.Some(f.clientY.UserID)})
	assertKind(t, err, domain.KindNotFound)
	assertMessage(t, err, "Client not found or not assigned to you")

	_, err = f.plans.UpdatePlan(ctx, f.coachA, p.ID, domain.PlanPatch{ClientID: domain.Null[string]()})
	assertKind(t, err, domain.KindValidation)

	_, err = f.plans.UpdatePlan(ctx, f.coachB, p.ID, domain.PlanPatch{Topic: domain.Some("Arms")})
	assertKind(t, err, domain.KindNotFound)

	_, err = f.plans.UpdatePlan(ctx, f.clientX, p.ID, domain.PlanPatch{Topic: domain.Some("Arms")})
	assertKind(t, err, domain.KindAuthorization)
}

func TestReassignPlan(t *testing.T) {
	f := newFixture(t)
	ctx := ctxT(t)
	walt, err := f.users.AddClient(ctx, f.coachA, "Walt", "walt@example.com", "secret1")
	require.NoError(t, err)

	fresh := f.planFor(t, f.coachA, f.clientX.UserID)
	moved, err := f.plans.UpdatePlan(ctx, f.coachA, fresh.ID, domain.PlanPatch{ClientID: domain.Some(walt.ID)})
	require.NoError(t, err)
	assert.Equal(t, walt.ID, moved.ClientID)

	done := f.planFor(t, f.coachA, f.clientX.UserID)
	c, _, err := f.completions.UpsertCompletion(ctx, f.clientX, done.ID, domain.CompletionPatch{})
	require.NoError(t, err)

	_, err = f.plans.UpdatePlan(ctx, f.coachA, done.ID, domain.PlanPatch{ClientID: domain.Some(walt.ID)})
	assert.ErrorIs(t, err, ErrPlanHasCompletions)
	assertKind(t, err, domain.KindConflict)
	assert.Equal(t, f.clientX.UserID, f.mem.plans[done.ID].ClientID)

	// Naming the current client again is not a reassignment.
	_, err = f.plans.UpdatePlan(ctx, f.coachA, done.ID, domain.PlanPatch{
		ClientID: domain.Some(f.clientX.UserID),
		Topic:    domain.Some("Push Day"),
	})
	require.NoError(t, err)

	_, err = f.completions.UpdateCompletion(ctx, f.clientX, c.ID, domain.CompletionPatch{Feedback: domain.Some("still mine")})
	require.NoError(t, err)
}

func TestDeletePlanCascades(t *testing.T) {
	f := newFixture(t)
	ctx := ctxT(t)
	p := f.planFor(t, f.coachA, f.clientX.UserID)
	squat, err := f.exercises.CreateExercise(ctx, f.coachA, "Squat", nil)
	require.NoError(t, err)
	_, err = f.plans.AttachExercise(ctx, f.coachA, p.ID, AttachExerciseInput{ExerciseID: squat.ID, Sets: 3, Reps: 10})
	require.NoError(t, err)
	c, _, err := f.completions.UpsertCompletion(ctx, f.clientX, p.ID, domain.CompletionPatch{})
	require.NoError(t, err)
	up, err := f.completions.MediaUploadURL(ctx, f.clientX, c.ID, "image/jpeg")
	require.NoError(t, err)
	_, err = f.completions.ConfirmMedia(ctx, f.clientX, c.ID, up.Key)
	require.NoError(t, err)

	assertKind(t, f.plans.DeletePlan(ctx, f.coachB, p.ID), domain.KindNotFound)
	require.NoError(t, f.plans.DeletePlan(ctx, f.coachA, p.ID))

	assert.Empty(t, f.mem.plans)
	assert.Empty(t, f.mem.rows)
	assert.Empty(t, f.mem.completions)
	assert.Equal(t, []string{up.Key}, f.files.Deleted())

	_, err = f.plans.GetPlan(ctx, f.coachA, p.ID)
	assertKind(t, err, domain.KindNotFound)
	assertKind(t, f.plans.DeletePlan(ctx, f.coachA, p.ID), domain.KindNotFound)
}

func TestListPlans(t *testing.T) {
	f := newFixture(t)
	ctx := ctxT(t)
	f.planFor(t, f.coachA, f.clientX.UserID)
	f.planFor(t, f.coachB, f.clientY.UserID)

	mine, err := f.plans.ListForCoach(ctx, f.coachA)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.clientX.UserID, mine[0].ClientID)
	assert.NotNil(t, mine[0].Exercises)

	_, err = f.plans.ListForCoach(ctx, f.clientX)
	assertKind(t, err, domain.KindAuthorization)

	// A client always gets its own plans, whatever id it names.
	own, err := f.plans.ListForClient(ctx, f.clientX, f.clientY.UserID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, f.clientX.UserID, own[0].ClientID)

	// Foreign, missing and non-client ids are indistinguishable to a coach.
	for _, clientID := range []string{f.clientX.UserID, "missing", f.coachA.UserID, ""} {
		_, err = f.plans.ListForClient(ctx, f.coachB, clientID)
		assertKind(t, err, domain.KindNotFound)
		assertMessage(t, err, "Client not found or not assigned to you")
	}

	f.mem.failWith = repository.ErrUnavailable
	_, err = f.plans.ListForClient(ctx, f.coachA, f.clientX.UserID)
	assertKind(t, err, domain.KindUnavailable)
}
