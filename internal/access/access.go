// Package access holds the single authorization decision used by every
// plan, completion and client operation.
//
// Policy for ownership failures: a resource that exists but is outside the
// requester's scope is reported exactly like a missing one (NotFound) for
// every tenant-scoped resource type (clients, plans, completions). Forbidden
// is reserved for role denials, where nothing about the target is revealed.
package access

import (
	"alcyxob/fit-coach/internal/domain"
)

// Identity is the verified caller supplied by the auth gateway.
type Identity struct {
	UserID string
	Role   domain.Role
}

func (id Identity) IsCoach() bool {
	return id.Role == domain.RoleCoach
}

func (id Identity) IsClient() bool {
	return id.Role == domain.RoleClient
}

// Action names an operation subject to authorization.
type Action string

const (
	CreatePlan     Action = "plan:create"
	ReadPlan       Action = "plan:read"
	UpdatePlan     Action = "plan:update"
	DeletePlan     Action = "plan:delete"
	ReassignPlan   Action = "plan:reassign"
	AttachExercise Action = "plan:attach-exercise"
	ListOwnPlans   Action = "plan:list-own"
	ListClientPlan Action = "plan:list-client"

	ListClients Action = "client:list"
	ReadClient  Action = "client:read"
	AddClient   Action = "client:add"

	CreateExercise Action = "exercise:create"

	UpsertCompletion      Action = "completion:upsert"
	UpdateCompletion      Action = "completion:update"
	DeleteCompletion      Action = "completion:delete"
	ListClientCompletions Action = "completion:list-client"
	ListPlanCompletions   Action = "completion:list-plan"
	UploadCompletionMedia Action = "completion:upload-media"
	ReadCompletionMedia   Action = "completion:read-media"
)

// Resource is the minimal set of ownership facts about the target, resolved by
// the caller before asking for a decision. Absent marks a target that does
// not exist; it is denied with the same outcome as a target owned by someone
// else so the two cannot be told apart.
type Resource struct {
	Absent   bool
	CoachID  string // Owning coach (plan coach, or the coach a client belongs to)
	ClientID string // Owning client (plan client, completion client, or the client itself)
}

// None is used for actions that have no target (listing, creation of unowned data).
var None = Resource{}

// Missing describes a target that could not be found.
var Missing = Resource{Absent: true}

// PlanResource describes a plan, or Missing when p is nil.
func PlanResource(p *domain.WorkoutPlan) Resource {
	if p == nil {
		return Missing
	}
	return Resource{CoachID: p.CoachID, ClientID: p.ClientID}
}

// ClientResource describes a client user, or Missing when c is nil.
func ClientResource(c *domain.Client) Resource {
	if c == nil {
		return Missing
	}
	return Resource{CoachID: c.CoachID, ClientID: c.ID}
}

// CompletionResource describes a completion through its plan. The completion
// belongs to a client only while the plan is still assigned to that client;
// a missing plan makes the completion Missing.
func CompletionResource(c *domain.WorkoutCompletion, plan *domain.WorkoutPlan) Resource {
	if c == nil || plan == nil {
		return Missing
	}
	r := Resource{CoachID: plan.CoachID}
	if plan.ClientID == c.ClientID {
		r.ClientID = c.ClientID
	}
	return r
}

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Kind    domain.ErrorKind
	Reason  string
}

// Err converts a denial into a typed error; nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &domain.Error{Kind: d.Kind, Message: d.Reason}
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(kind domain.ErrorKind, reason string) Decision {
	return Decision{Kind: kind, Reason: reason}
}
