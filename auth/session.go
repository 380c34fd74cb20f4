// Package auth resolves who is signed in and whether they are an
// administrator. It issues JWT access tokens backed by stored refresh
// tokens and notifies watchers when a session changes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/basit/fileshare-catalog/common"
	"github.com/basit/fileshare-catalog/logging"
	"github.com/basit/fileshare-catalog/models"
	"github.com/basit/fileshare-catalog/repositories"
)

// Snapshot is the identity behind a request. The zero value is signed out.
type Snapshot struct {
	UserID  uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"is_admin"`
}

func (s Snapshot) SignedIn() bool {
	return s.UserID != uuid.Nil
}

func SnapshotOf(u *models.User) Snapshot {
	return Snapshot{UserID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
}

// Tokens is the result of a successful sign-in or refresh.
type Tokens struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"-"`
	ExpiresIn    int      `json:"expires_in"`
	User         Snapshot `json:"user"`
}

// SessionProvider turns an access token into the identity behind it.
type SessionProvider interface {
	Resolve(ctx context.Context, accessToken string) (Snapshot, error)
}

type Service struct {
	users   repositories.UserRepository
	refresh repositories.RefreshTokenRepository
	tokens  *TokenIssuer
	hub     *Hub
	logger  logging.Logger
}

func NewService(users repositories.UserRepository, refresh repositories.RefreshTokenRepository,
	tokens *TokenIssuer, hub *Hub, logger logging.Logger) *Service {
	return &Service{users: users, refresh: refresh, tokens: tokens, hub: hub, logger: logger}
}

// Resolve validates the access token and loads the user so the admin flag
// is always current.
func (s *Service) Resolve(ctx context.Context, accessToken string) (Snapshot, error) {
	userID, err := s.tokens.ValidateToken(accessToken, TokenAccess)
	if err != nil {
		return Snapshot{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return Snapshot{}, fmt.Errorf("%w: user no longer exists", common.ErrInvalidToken)
		}
		return Snapshot{}, err
	}
	return SnapshotOf(user), nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", common.NewUserError(common.ErrValidation, "Please enter a valid email address", err)
	}
	return email, nil
}

// SignUp creates a regular (non-admin) account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*Tokens, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, common.NewUserError(common.ErrValidation,
			fmt.Sprintf("Password must be at least %d characters", MinPasswordLength), nil)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: &hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.NewUserError(common.ErrConflict, "An account with this email already exists", err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info(ctx, "user signed up", "user_id", user.ID)
	return s.IssueSession(ctx, user)
}

// SignIn checks email and password.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Tokens, error) {
	invalid := common.NewUserError(common.ErrUnauthorized, "Invalid email or password", nil)

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.PasswordHash == nil || !CheckPassword(*user.PasswordHash, password) {
		return nil, invalid
	}

	return s.IssueSession(ctx, user)
}

// IssueSession mints a token pair for an already authenticated user.
func (s *Service) IssueSession(ctx context.Context, user *models.User) (*Tokens, error) {
	access, refresh, err := s.tokens.GenerateTokens(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.refresh.Create(ctx, user.ID, refresh, s.tokens.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	snap := SnapshotOf(user)
	s.hub.Publish(user.ID, snap)
	return &Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
		User:         snap,
	}, nil
}

// Refresh rotates a refresh token. The presented token is consumed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	expired := common.NewUserError(common.ErrUnauthorized, "Session expired, please sign in again", nil)

	userID, err := s.tokens.ValidateToken(refreshToken, TokenRefresh)
	if err != nil {
		return nil, expired
	}

	stored, err := s.refresh.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, expired
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	if err := s.refresh.Delete(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("delete refresh token: %w", err)
	}
	if stored.UserID != userID || time.Now().After(stored.ExpiresAt) {
		return nil, expired
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, expired
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return s.IssueSession(ctx, user)
}

// SignOut revokes the refresh token, if any, and tells watchers of userID
// that the session has ended.
func (s *Service) SignOut(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	if refreshToken != "" {
		if err := s.refresh.Delete(ctx, refreshToken); err != nil {
			s.logger.Warn(ctx, "error revoking refresh token", "error", err)
		}
	}
	if userID != uuid.Nil {
		s.hub.Publish(userID, Snapshot{})
		s.logger.Info(ctx, "user signed out", "user_id", userID)
	}
	return nil
}

// EnsureAdmin creates an administrator account, or promotes the existing
// account with that email. A non-empty password replaces the stored one.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (*models.User, bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, false, err
	}

	var hash *string
	if password != "" {
		if len(password) < MinPasswordLength {
			return nil, false, common.NewUserError(common.ErrValidation,
				fmt.Sprintf("Password must be at least %d characters", MinPasswordLength), nil)
		}
		h, err := HashPassword(password)
		if err != nil {
			return nil, false, fmt.Errorf("hash password: %w", err)
		}
		hash = &h
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		user.IsAdmin = true
		if hash != nil {
			user.PasswordHash = hash
		}
		if err := s.users.Save(ctx, user); err != nil {
			return nil, false, fmt.Errorf("promote user: %w", err)
		}
		s.hub.Publish(user.ID, SnapshotOf(user))
		return user, false, nil
	case errors.Is(err, common.ErrNotFound):
		if hash == nil {
			return nil, false, common.NewUserError(common.ErrValidation, "A password is required for a new account", nil)
		}
		user = &models.User{Email: email, PasswordHash: hash, IsAdmin: true}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, false, fmt.Errorf("create admin: %w", err)
		}
		return user, true, nil
	default:
		return nil, false, fmt.Errorf("find user: %w", err)
	}
}

// RefreshTTL is the lifetime of issued refresh tokens.
func (s *Service) RefreshTTL() time.Duration {
	return s.tokens.RefreshTTL()
}
