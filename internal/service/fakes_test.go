package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/repository"

	"github.com/google/uuid"
)

// memStore is an in-memory backend shared by the fake repositories so that
// cascades and lookups across them behave like one database.
type memStore struct {
	mu          sync.Mutex
	users       map[string]domain.User
	exercises   map[string]domain.Exercise
	plans       map[string]domain.WorkoutPlan
	rows        map[string]domain.PlanExercise
	completions map[string]domain.WorkoutCompletion
	failWith    error // Returned by every call when set
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[string]domain.User{},
		exercises:   map[string]domain.Exercise{},
		plans:       map[string]domain.WorkoutPlan{},
		rows:        map[string]domain.PlanExercise{},
		completions: map[string]domain.WorkoutCompletion{},
	}
}

func (m *memStore) store() *repository.Store {
	return &repository.Store{
		Users:       fakeUsers{m},
		Exercises:   fakeExercises{m},
		Plans:       fakePlans{m},
		Completions: fakeCompletions{m},
		Close:       func(context.Context) error { return nil },
	}
}

func cloneUser(u domain.User) domain.User {
	switch v := u.(type) {
	case *domain.Coach:
		c := *v
		return &c
	case *domain.Client:
		c := *v
		return &c
	}
	return nil
}

type fakeUsers struct{ m *memStore }

func (f fakeUsers) Create(_ context.Context, u domain.User) (string, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return "", f.m.failWith
	}
	for _, existing := range f.m.users {
		if existing.Base().Email == u.Base().Email {
			return "", repository.ErrDuplicate
		}
	}
	if c, ok := u.(*domain.Client); ok {
		if _, found := f.m.users[c.CoachID]; !found {
			return "", repository.ErrNotFound
		}
	}
	now := time.Now().UTC()
	b := u.Base()
	b.ID = uuid.NewString()
	b.CreatedAt, b.UpdatedAt = now, now
	f.m.users[b.ID] = cloneUser(u)
	return b.ID, nil
}

func (f fakeUsers) GetByID(_ context.Context, id string) (domain.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	u, ok := f.m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	for _, u := range f.m.users {
		if u.Base().Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeUsers) GetByIDs(_ context.Context, ids []string) (map[string]domain.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	out := make(map[string]domain.User, len(ids))
	for _, id := range ids {
		if u, ok := f.m.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (f fakeUsers) GetClientOfCoach(_ context.Context, coachID, clientID string) (*domain.Client, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	c, ok := f.m.users[clientID].(*domain.Client)
	if !ok || c.CoachID != coachID {
		return nil, repository.ErrNotFound
	}
	return cloneUser(c).(*domain.Client), nil
}

func (f fakeUsers) ListClients(_ context.Context, coachID string) ([]*domain.Client, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	out := []*domain.Client{}
	for _, u := range f.m.users {
		if c, ok := u.(*domain.Client); ok && c.CoachID == coachID {
			out = append(out, cloneUser(c).(*domain.Client))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeUsers) ListCoaches(_ context.Context) ([]*domain.Coach, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	out := []*domain.Coach{}
	for _, u := range f.m.users {
		if c, ok := u.(*domain.Coach); ok {
			out = append(out, cloneUser(c).(*domain.Coach))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeUsers) UpdateName(_ context.Context, id, name string) (domain.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	u, ok := f.m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Base().Name = name
	u.Base().UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

type fakeExercises struct{ m *memStore }

func (f fakeExercises) Create(_ context.Context, e *domain.Exercise) (string, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return "", f.m.failWith
	}
	now := time.Now().UTC()
	e.ID = uuid.NewString()
	e.CreatedAt, e.UpdatedAt = now, now
	f.m.exercises[e.ID] = *e
	return e.ID, nil
}

func (f fakeExercises) GetByID(_ context.Context, id string) (*domain.Exercise, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	e, ok := f.m.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (f fakeExercises) List(_ context.Context) ([]domain.Exercise, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	out := []domain.Exercise{}
	for _, e := range f.m.exercises {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakePlans struct{ m *memStore }

func (f fakePlans) Create(_ context.Context, p *domain.WorkoutPlan) (string, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return "", f.m.failWith
	}
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	f.m.plans[p.ID] = *p
	return p.ID, nil
}

func (f fakePlans) GetByID(_ context.Context, id string) (*domain.WorkoutPlan, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	p, ok := f.m.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f fakePlans) GetByIDs(_ context.Context, ids []string) (map[string]domain.WorkoutPlan, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	out := make(map[string]domain.WorkoutPlan, len(ids))
	for _, id := range ids {
		if p, ok := f.m.plans[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f fakePlans) Update(_ context.Context, p *domain.WorkoutPlan) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return f.m.failWith
	}
	if _, ok := f.m.plans[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	f.m.plans[p.ID] = *p
	return nil
}

func (f fakePlans) DeleteCascade(_ context.Context, id string) ([]string, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	if _, ok := f.m.plans[id]; !ok {
		return nil, repository.ErrNotFound
	}
	for rid, r := range f.m.rows {
		if r.PlanID == id {
			delete(f.m.rows, rid)
		}
	}
	var keys []string
	for cid, c := range f.m.completions {
		if c.PlanID == id {
			if c.MediaKey != nil {
				keys = append(keys, *c.MediaKey)
			}
			delete(f.m.completions, cid)
		}
	}
	delete(f.m.plans, id)
	return keys, nil
}

func (f fakePlans) list(match func(domain.WorkoutPlan) bool) ([]domain.WorkoutPlan, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	out := []domain.WorkoutPlan{}
	for _, p := range f.m.plans {
		if match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f fakePlans) ListByCoach(_ context.Context, coachID string) ([]domain.WorkoutPlan, error) {
	return f.list(func(p domain.WorkoutPlan) bool { return p.CoachID == coachID })
}

func (f fakePlans) ListByClient(_ context.Context, clientID string) ([]domain.WorkoutPlan, error) {
	return f.list(func(p domain.WorkoutPlan) bool { return p.ClientID == clientID })
}

func (f fakePlans) AddExercise(_ context.Context, pe *domain.PlanExercise) (string, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return "", f.m.failWith
	}
	if _, ok := f.m.plans[pe.PlanID]; !ok {
		return "", repository.ErrNotFound
	}
	if _, ok := f.m.exercises[pe.ExerciseID]; !ok {
		return "", repository.ErrNotFound
	}
	pe.ID = uuid.NewString()
	pe.CreatedAt = time.Now().UTC()
	f.m.rows[pe.ID] = *pe
	return pe.ID, nil
}

func (f fakePlans) ListExercises(_ context.Context, planIDs []string) ([]domain.PlanExerciseDetail, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	wanted := make(map[string]bool, len(planIDs))
	for _, id := range planIDs {
		wanted[id] = true
	}
	out := []domain.PlanExerciseDetail{}
	for _, r := range f.m.rows {
		if wanted[r.PlanID] {
			out = append(out, domain.PlanExerciseDetail{PlanExercise: r, Exercise: f.m.exercises[r.ExerciseID]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeCompletions struct{ m *memStore }

func (f fakeCompletions) Upsert(_ context.Context, planID, clientID string, patch domain.CompletionPatch, now time.Time) (*domain.WorkoutCompletion, bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, false, f.m.failWith
	}
	if _, ok := f.m.plans[planID]; !ok {
		return nil, false, repository.ErrNotFound
	}
	for id, c := range f.m.completions {
		if c.PlanID == planID && c.ClientID == clientID {
			patch.Apply(&c, now)
			f.m.completions[id] = c
			return &c, false, nil
		}
	}
	c := domain.WorkoutCompletion{
		ID:        uuid.NewString(),
		PlanID:    planID,
		ClientID:  clientID,
		Completed: true,
		CreatedAt: now,
	}
	patch.Apply(&c, now)
	f.m.completions[c.ID] = c
	return &c, true, nil
}

func (f fakeCompletions) GetByID(_ context.Context, id string) (*domain.WorkoutCompletion, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	c, ok := f.m.completions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (f fakeCompletions) Update(_ context.Context, c *domain.WorkoutCompletion) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return f.m.failWith
	}
	cur, ok := f.m.completions[c.ID]
	if !ok || cur.ClientID != c.ClientID {
		return repository.ErrNotFound
	}
	f.m.completions[c.ID] = *c
	return nil
}

func (f fakeCompletions) Delete(_ context.Context, id, clientID string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return f.m.failWith
	}
	cur, ok := f.m.completions[id]
	if !ok || cur.ClientID != clientID {
		return repository.ErrNotFound
	}
	delete(f.m.completions, id)
	return nil
}

func (f fakeCompletions) list(match func(domain.WorkoutCompletion) bool) ([]domain.WorkoutCompletion, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	out := []domain.WorkoutCompletion{}
	for _, c := range f.m.completions {
		if match(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletionDate.After(out[j].CompletionDate) })
	return out, nil
}

func (f fakeCompletions) ListByClient(_ context.Context, clientID string) ([]domain.WorkoutCompletion, error) {
	return f.list(func(c domain.WorkoutCompletion) bool { return c.ClientID == clientID })
}

func (f fakeCompletions) ListByPlan(_ context.Context, planID string) ([]domain.WorkoutCompletion, error) {
	return f.list(func(c domain.WorkoutCompletion) bool { return c.PlanID == planID })
}

func (f fakeCompletions) SetMediaKey(_ context.Context, id, clientID string, key *string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return f.m.failWith
	}
	c, ok := f.m.completions[id]
	if !ok || c.ClientID != clientID {
		return repository.ErrNotFound
	}
	c.MediaKey = key
	f.m.completions[id] = c
	return nil
}

// fakeFiles records presign requests and deletions.
type fakeFiles struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeFiles) GeneratePresignedUploadURL(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	return "https://files.test/put/" + key + "?type=" + contentType, nil
}

func (f *fakeFiles) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.test/get/" + key, nil
}

func (f *fakeFiles) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeFiles) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// seedUser stores a user directly, bypassing password hashing.
func (m *memStore) seedUser(name string, role domain.Role, coachID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	acc := domain.Account{ID: id, Name: name, Email: strings.ToLower(name) + "@example.com"}
	var ref *string
	if coachID != "" {
		ref = &coachID
	}
	u, err := domain.NewUser(acc, role, ref)
	if err != nil {
		panic(err)
	}
	m.users[id] = u
	return id
}
