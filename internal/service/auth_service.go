package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/fit-coach/internal/access"
	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrEmailTaken           = domain.Conflict("Email already registered")
	ErrAuthenticationFailed = domain.Unauthenticated("Invalid email or password")
	ErrTokenInvalid         = domain.Unauthenticated("Not authorized, token failed")
	ErrTokenExpired         = domain.Unauthenticated("Token has expired")
)

const minPasswordLength = 6

// AuthService is the in-process adapter of the auth gateway: it registers
// coaches, issues tokens and turns a bearer token into a verified identity.
type AuthService interface {
	RegisterCoach(ctx context.Context, name, email, password string) (*domain.Coach, error)
	Login(ctx context.Context, email, password string) (token string, user domain.User, err error)
	VerifyToken(token string) (access.Identity, error)
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 24 * time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// validateAccount checks the fields required to create any user.
func validateAccount(name, email, password string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return domain.Validation("Please provide name, email and password")
	}
	if len(password) < minPasswordLength {
		return domain.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.Internal("Failed to hash password", err)
	}
	return string(hashed), nil
}

// RegisterCoach creates a self-registered coach account.
func (s *authService) RegisterCoach(ctx context.Context, name, email, password string) (*domain.Coach, error) {
	if err := validateAccount(name, email, password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	coach := &domain.Coach{Account: domain.Account{
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
	}}
	if _, err := s.userRepo.Create(ctx, coach); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storeErr(err, "")
	}

	coach.PasswordHash = ""
	return coach, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.Validation("Please provide email and password")
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, storeErr(err, "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Base().PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, domain.Internal("Failed to generate authentication token", err)
	}

	user.Base().PasswordHash = ""
	return token, user, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user domain.User) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		UserID: user.Base().ID,
		Role:   user.Role(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Base().ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "fit-coach",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// VerifyToken validates signature, expiry and claims.
func (s *authService) VerifyToken(tokenString string) (access.Identity, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return access.Identity{}, ErrTokenExpired
		}
		return access.Identity{}, ErrTokenInvalid
	}
	if !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return access.Identity{}, ErrTokenInvalid
	}
	return access.Identity{UserID: claims.UserID, Role: claims.Role}, nil
}
