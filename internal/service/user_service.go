package service

import (
	"context"
	"errors"
	"strings"

	"alcyxob/fit-coach/internal/access"
	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/repository"
)

const msgUserNotFound = "User not found"

// UserService manages accounts and the coach to client relationship.
type UserService interface {
	ListCoaches(ctx context.Context) ([]domain.UserSummary, error)
	ListClients(ctx context.Context, id access.Identity) ([]*domain.Client, error)
	GetClient(ctx context.Context, id access.Identity, clientID string) (*domain.Client, error)
	AddClient(ctx context.Context, id access.Identity, name, email, password string) (*domain.Client, error)
	UpdateProfile(ctx context.Context, id access.Identity, name domain.Optional[string]) (domain.User, error)
	ResolveUser(ctx context.Context, userID string) (domain.User, error)
	IsClientOf(ctx context.Context, coachID, clientID string) (bool, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListCoaches(ctx context.Context) ([]domain.UserSummary, error) {
	coaches, err := s.userRepo.ListCoaches(ctx)
	if err != nil {
		return nil, storeErr(err, "")
	}
	out := make([]domain.UserSummary, 0, len(coaches))
	for _, c := range coaches {
		out = append(out, *domain.SummaryOf(c))
	}
	return out, nil
}

func (s *userService) ListClients(ctx context.Context, id access.Identity) ([]*domain.Client, error) {
	if err := access.Authorize(id, access.ListClients, access.None).Err(); err != nil {
		return nil, err
	}
	clients, err := s.userRepo.ListClients(ctx, id.UserID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	for _, c := range clients {
		c.PasswordHash = ""
	}
	return clients, nil
}

// resolveClient loads clientID as a client, or nil when it does not exist or
// is not a client.
func resolveClient(ctx context.Context, users repository.UserRepository, clientID string) (*domain.Client, error) {
	if clientID == "" {
		return nil, nil
	}
	u, err := users.GetByID(ctx, clientID)
	if err := lookupErr(err); err != nil {
		return nil, err
	}
	client, _ := u.(*domain.Client)
	return client, nil
}

func (s *userService) GetClient(ctx context.Context, id access.Identity, clientID string) (*domain.Client, error) {
	if err := access.CheckRole(id, access.ReadClient).Err(); err != nil {
		return nil, err
	}
	client, err := resolveClient(ctx, s.userRepo, clientID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(id, access.ReadClient, access.ClientResource(client)).Err(); err != nil {
		return nil, err
	}
	client.PasswordHash = ""
	return client, nil
}

// AddClient creates a client account bound to the requesting coach. The coach
// reference is fixed here and never changes afterwards.
func (s *userService) AddClient(ctx context.Context, id access.Identity, name, email, password string) (*domain.Client, error) {
	if err := access.CheckRole(id, access.AddClient).Err(); err != nil {
		return nil, err
	}
	if err := validateAccount(name, email, password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	client := &domain.Client{
		Account: domain.Account{
			Name:         strings.TrimSpace(name),
			Email:        strings.ToLower(strings.TrimSpace(email)),
			PasswordHash: hash,
		},
		CoachID: id.UserID,
	}
	if err := access.Authorize(id, access.AddClient, access.ClientResource(client)).Err(); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.Create(ctx, client); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storeErr(err, "")
	}

	client.PasswordHash = ""
	return client, nil
}

// UpdateProfile changes the caller's own display name. An absent, null or
// blank name keeps the current one.
func (s *userService) UpdateProfile(ctx context.Context, id access.Identity, name domain.Optional[string]) (domain.User, error) {
	if id.UserID == "" {
		return nil, domain.Unauthenticated("Not authorized")
	}
	if !name.Present() || strings.TrimSpace(name.Value) == "" {
		return s.ResolveUser(ctx, id.UserID)
	}
	user, err := s.userRepo.UpdateName(ctx, id.UserID, strings.TrimSpace(name.Value))
	if err != nil {
		return nil, storeErr(err, msgUserNotFound)
	}
	user.Base().PasswordHash = ""
	return user, nil
}

func (s *userService) ResolveUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, msgUserNotFound)
	}
	user.Base().PasswordHash = ""
	return user, nil
}

func (s *userService) IsClientOf(ctx context.Context, coachID, clientID string) (bool, error) {
	return isClientOf(ctx, s.userRepo, coachID, clientID)
}

// isClientOf reports whether clientID is a client bound to coachID.
func isClientOf(ctx context.Context, users repository.UserRepository, coachID, clientID string) (bool, error) {
	if coachID == "" || clientID == "" {
		return false, nil
	}
	_, err := users.GetClientOfCoach(ctx, coachID, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeErr(err, "")
	}
	return true, nil
}
