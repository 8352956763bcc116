package domain

import (
	"errors"
	"time"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleCoach  Role = "coach"
	RoleClient Role = "client"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCoach || r == RoleClient
}

// Account holds the fields shared by every user regardless of role.
type Account struct {
	ID           string
	Name         string
	Email        string // Unique across all users
	PasswordHash string // Never exposed outside the service layer
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User is either a *Coach or a *Client. The set of implementations is closed:
// the unexported method keeps other packages from adding variants, so a value
// that type-switches to *Client always carries a coach reference.
type User interface {
	Role() Role
	Base() *Account
	sealed()
}

// Coach owns clients and the plans written for them.
type Coach struct {
	Account
}

func (c *Coach) Role() Role {
	return RoleCoach
}

func (c *Coach) Base() *Account {
	return &c.Account
}

func (c *Coach) sealed() {}

// Client belongs to exactly one coach, fixed when the coach adds the client.
type Client struct {
	Account
	CoachID string
}

func (c *Client) Role() Role {
	return RoleClient
}

func (c *Client) Base() *Account {
	return &c.Account
}

func (c *Client) sealed() {}

var (
	ErrInvalidRole        = errors.New("user role must be coach or client")
	ErrClientWithoutCoach = errors.New("client user has no coach")
	ErrCoachWithCoach     = errors.New("coach user must not reference a coach")
)

// NewUser builds the role-specific variant from flat storage fields, rejecting
// rows that break the role/coach invariant.
func NewUser(acc Account, role Role, coachID *string) (User, error) {
	switch role {
	case RoleCoach:
		if coachID != nil && *coachID != "" {
			return nil, ErrCoachWithCoach
		}
		return &Coach{Account: acc}, nil
	case RoleClient:
		if coachID == nil || *coachID == "" {
			return nil, ErrClientWithoutCoach
		}
		return &Client{Account: acc, CoachID: *coachID}, nil
	default:
		return nil, ErrInvalidRole
	}
}

// CoachIDOf returns the coach reference of a client, or nil for a coach.
func CoachIDOf(u User) *string {
	if c, ok := u.(*Client); ok {
		id := c.CoachID
		return &id
	}
	return nil
}

// UserSummary is the projection embedded in plan and completion views.
type UserSummary struct {
	ID    string
	Name  string
	Email string
}

// SummaryOf projects any user to its public summary.
func SummaryOf(u User) *UserSummary {
	if u == nil {
		return nil
	}
	b := u.Base()
	return &UserSummary{ID: b.ID, Name: b.Name, Email: b.Email}
}
