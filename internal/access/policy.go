package access

import "alcyxob/fit-coach/internal/domain"

// owner decides whether id owns the target described by r.
type owner func(id Identity, r Resource) bool

type rule struct {
	roles      []domain.Role
	roleDenial string // Message when the role is not permitted
	owns       owner  // nil: no ownership requirement
	notFound   string // Message when the target is absent or not owned
}

// ownedByCoach: the requester is the owning coach.
func ownedByCoach(id Identity, r Resource) bool {
	return r.CoachID != "" && r.CoachID == id.UserID
}

// ownedByClient: the requester is the owning client.
func ownedByClient(id Identity, r Resource) bool {
	return r.ClientID != "" && r.ClientID == id.UserID
}

// participant: the plan's coach when a coach asks, the plan's client when a client asks.
func participant(id Identity, r Resource) bool {
	switch id.Role {
	case domain.RoleCoach:
		return ownedByCoach(id, r)
	case domain.RoleClient:
		return ownedByClient(id, r)
	}
	return false
}

var coachOnly = []domain.Role{domain.RoleCoach}
var clientOnly = []domain.Role{domain.RoleClient}
var anyRole = []domain.Role{domain.RoleCoach, domain.RoleClient}

const (
	msgClientNotAssigned  = "Client not found or not assigned to you"
	msgPlanNotFound       = "Workout plan not found"
	msgPlanNotYours       = "Workout plan not found or not created by you"
	msgPlanNotAssigned    = "Workout plan not found or not assigned to you"
	msgCompletionNotYours = "Workout completion not found or not created by you"
	msgCompletionNotFound = "Workout completion not found"
)

var policies = map[Action]rule{
	CreatePlan: {
		roles: coachOnly, roleDenial: "Only coaches can create workout plans",
		owns: ownedByCoach, notFound: msgClientNotAssigned,
	},
	ReadPlan: {
		roles: anyRole, roleDenial: "Not authorized to access this workout plan",
		owns: participant, notFound: msgPlanNotFound,
	},
	UpdatePlan: {
		roles: coachOnly, roleDenial: "Only coaches can update workout plans",
		owns: ownedByCoach, notFound: msgPlanNotYours,
	},
	ReassignPlan: {
		roles: coachOnly, roleDenial: "Only coaches can update workout plans",
		owns: ownedByCoach, notFound: msgClientNotAssigned,
	},
	DeletePlan: {
		roles: coachOnly, roleDenial: "Only coaches can delete workout plans",
		owns: ownedByCoach, notFound: msgPlanNotYours,
	},
	AttachExercise: {
		roles: coachOnly, roleDenial: "Only coaches can add exercises to workout plans",
		owns: ownedByCoach, notFound: msgPlanNotYours,
	},
	ListOwnPlans: {
		roles: coachOnly, roleDenial: "Only coaches can access their workout plans",
	},
	ListClientPlan: {
		roles: anyRole, roleDenial: "Not authorized to access these workout plans",
		owns: participant, notFound: msgClientNotAssigned,
	},
	ListClients: {
		roles: coachOnly, roleDenial: "Only coaches can access client lists",
	},
	ReadClient: {
		roles: coachOnly, roleDenial: "Only coaches can access client records",
		owns: ownedByCoach, notFound: msgClientNotAssigned,
	},
	AddClient: {
		roles: coachOnly, roleDenial: "Only coaches can add clients",
		owns: ownedByCoach, notFound: msgClientNotAssigned,
	},
	CreateExercise: {
		roles: coachOnly, roleDenial: "Only coaches can create exercises",
	},
	UpsertCompletion: {
		roles: clientOnly, roleDenial: "Only clients can mark workout plans as completed",
		owns: ownedByClient, notFound: msgPlanNotAssigned,
	},
	UpdateCompletion: {
		roles: clientOnly, roleDenial: "Only clients can update workout completions",
		owns: ownedByClient, notFound: msgCompletionNotYours,
	},
	DeleteCompletion: {
		roles: clientOnly, roleDenial: "Only clients can delete workout completions",
		owns: ownedByClient, notFound: msgCompletionNotYours,
	},
	UploadCompletionMedia: {
		roles: clientOnly, roleDenial: "Only clients can attach media to workout completions",
		owns: ownedByClient, notFound: msgCompletionNotYours,
	},
	ReadCompletionMedia: {
		roles: anyRole, roleDenial: "Not authorized to access this workout completion",
		owns: participant, notFound: msgCompletionNotFound,
	},
	ListClientCompletions: {
		roles: anyRole, roleDenial: "Not authorized to access these workout completions",
		owns: participant, notFound: msgClientNotAssigned,
	},
	ListPlanCompletions: {
		roles: anyRole, roleDenial: "You do not have access to this workout plan",
		owns: participant, notFound: msgPlanNotFound,
	},
}

// CheckRole evaluates only the role requirement of action. It is safe to call
// before any store access.
func CheckRole(id Identity, action Action) Decision {
	p, ok := policies[action]
	if !ok {
		return deny(domain.KindAuthorization, "Unknown action")
	}
	if id.UserID == "" || !id.Role.Valid() {
		return deny(domain.KindAuthentication, "Not authorized")
	}
	for _, r := range p.roles {
		if r == id.Role {
			return allow()
		}
	}
	return deny(domain.KindAuthorization, p.roleDenial)
}

// Authorize evaluates the full policy for action against the resolved target.
func Authorize(id Identity, action Action, res Resource) Decision {
	if d := CheckRole(id, action); !d.Allowed {
		return d
	}
	p := policies[action]
	if p.owns == nil {
		return allow()
	}
	if res.Absent || !p.owns(id, res) {
		return deny(domain.KindNotFound, p.notFound)
	}
	return allow()
}

// Message returns the not-found message of action, for callers that need to
// report a missing target they never resolved.
func Message(action Action) string {
	return policies[action].notFound
}
