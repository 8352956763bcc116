package service

import (
	"errors"
	"testing"
	"time"

	"alcyxob/fit-coach/internal/access"
	"alcyxob/fit-coach/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixture wires every service to one in-memory store with two coaches and
// one client per coach.
type fixture struct {
	mem   *memStore
	files *fakeFiles

	users       UserService
	exercises   ExerciseService
	plans       PlanService
	completions CompletionService

	coachA, coachB   access.Identity
	clientX, clientY access.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := newMemStore()
	files := &fakeFiles{}
	st := mem.store()
	log := zap.NewNop()

	f := &fixture{
		mem:         mem,
		files:       files,
		users:       NewUserService(st.Users),
		exercises:   NewExerciseService(st.Exercises),
		plans:       NewPlanService(st.Users, st.Exercises, st.Plans, st.Completions, files, log),
		completions: NewCompletionService(st.Users, st.Plans, st.Completions, files, log),
	}
	a := mem.seedUser("CoachA", domain.RoleCoach, "")
	b := mem.seedUser("CoachB", domain.RoleCoach, "")
	f.coachA = access.Identity{UserID: a, Role: domain.RoleCoach}
	f.coachB = access.Identity{UserID: b, Role: domain.RoleCoach}
	f.clientX = access.Identity{UserID: mem.seedUser("ClientX", domain.RoleClient, a), Role: domain.RoleClient}
	f.clientY = access.Identity{UserID: mem.seedUser("ClientY", domain.RoleClient, b), Role: domain.RoleClient}
	return f
}

var legDay = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func (f *fixture) planFor(t *testing.T, coach access.Identity, clientID string) *domain.WorkoutPlan {
	t.Helper()
	topic := "Leg Day"
	p, err := f.plans.CreatePlan(ctxT(t), coach, CreatePlanInput{ClientID: clientID, Date: legDay, Topic: &topic})
	require.NoError(t, err)
	return p
}

func assertKind(t *testing.T, err error, kind domain.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, domain.KindOf(err), "error: %v", err)
}

func assertMessage(t *testing.T, err error, msg string) {
	t.Helper()
	var de *domain.Error
	require.True(t, errors.As(err, &de), "not a domain error: %v", err)
	assert.Equal(t, msg, de.Message)
}
