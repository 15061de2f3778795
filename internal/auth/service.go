package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/reazulislam1487/event-hub-server/internal/models"
	"github.com/reazulislam1487/event-hub-server/internal/store"
)

// PasswordCost is the bcrypt work factor for stored hashes.
const PasswordCost = 10

var (
	ErrDuplicateEmail     = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("wrong password")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Sessions tracks issued token ids.
type Sessions interface {
	Create(ctx context.Context, tokenID, email string, ttl time.Duration) error
	Exists(ctx context.Context, tokenID string) (bool, error)
	Delete(ctx context.Context, tokenID string) error
}

type Service struct {
	users    UserStore
	sessions Sessions
	tokens   *TokenManager
}

func NewService(users UserStore, sessions Sessions, tokens *TokenManager) *Service {
	return &Service{users: users, sessions: sessions, tokens: tokens}
}

// Register hashes the password and stores a new user. Emails are unique.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) error {
	email := normalizeEmail(req.Email)

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrDuplicateEmail
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("lookup user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), PasswordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return ErrPasswordTooLong
	}
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hashed),
		PhotoURL: req.PhotoURL,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Login checks the password and issues a registered bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, tokenID, expiresAt, err := s.tokens.Issue(u.Email, u.Name)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if err := s.sessions.Create(ctx, tokenID, u.Email, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &models.LoginResponse{User: u.Public(), Token: token, ExpiresAt: expiresAt}, nil
}

// Logout revokes the token id.
func (s *Service) Logout(ctx context.Context, tokenID string) error {
	if err := s.sessions.Delete(ctx, tokenID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ListUsers returns every user. Hashes are cleared before returning.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// Verify resolves a raw bearer token to the caller. Tokens that fail
// validation or have been revoked yield ErrUnauthenticated.
func (s *Service) Verify(ctx context.Context, raw string) (Identity, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}
	ok, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil {
		return Identity{}, fmt.Errorf("check session: %w", err)
	}
	if !ok {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{Email: claims.Subject, Name: claims.Name, TokenID: claims.ID}, nil
}

// normalizeEmail trims whitespace; case is preserved.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
