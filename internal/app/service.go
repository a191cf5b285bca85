package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/akm-xdd/Trackly-core/internal/auth"
	"github.com/akm-xdd/Trackly-core/internal/domain"
)

// Service wires the repositories, the blob store, and the event broadcaster
// into the application's use cases.
type Service struct {
	users     domain.UserRepository
	issues    domain.IssueRepository
	files     domain.FileRepository
	stats     domain.StatsRepository
	blobs     domain.BlobStore
	tokens    *auth.Tokens
	publisher domain.EventPublisher
	clock     clockwork.Clock
}

func NewService(
	users domain.UserRepository,
	issues domain.IssueRepository,
	files domain.FileRepository,
	stats domain.StatsRepository,
	blobs domain.BlobStore,
	tokens *auth.Tokens,
	publisher domain.EventPublisher,
	clock clockwork.Clock,
) *Service {
	return &Service{
		users:     users,
		issues:    issues,
		files:     files,
		stats:     stats,
		blobs:     blobs,
		tokens:    tokens,
		publisher: publisher,
		clock:     clock,
	}
}

// TokenPair is the credential set returned on signup/login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds
}

// Signup registers a new user and logs them in.
func (s *Service) Signup(ctx context.Context, email, password, fullName string, role domain.Role) (*domain.User, *TokenPair, error) {
	if !role.Valid() {
		role = domain.RoleReporter
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login verifies credentials and returns fresh tokens. A missing user and a
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh trades a valid refresh token for a new access token. The user is
// re-read so a role change or deletion takes effect here at the latest.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.TokenRefresh)
	if err != nil {
		return "", 0, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", 0, domain.ErrInvalidCredentials
	}

	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return "", 0, err
	}
	return access, int64(s.tokens.AccessTTL().Seconds()), nil
}

func (s *Service) issueTokenPair(user *domain.User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// GetUser returns a user. Admins may read anyone; everyone may read themselves.
func (s *Service) GetUser(ctx context.Context, actor domain.Identity, id uuid.UUID) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin && actor.UserID != id {
		return nil, domain.ErrForbidden
	}
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, actor domain.Identity, offset, limit int) ([]*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.users.List(ctx, offset, limit)
}

func (s *Service) UpdateUser(ctx context.Context, actor domain.Identity, id uuid.UUID, fullName *string, role *domain.Role) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if role != nil && !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrForbidden, *role)
	}
	return s.users.Update(ctx, id, fullName, role)
}

func (s *Service) DeleteUser(ctx context.Context, actor domain.Identity, id uuid.UUID) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return s.users.Delete(ctx, id)
}
