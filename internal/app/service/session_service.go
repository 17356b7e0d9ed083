package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"social-insights-service/internal/domain"
	"social-insights-service/pkg/auth"
)

// SessionConfig holds account settings.
type SessionConfig struct {
	AllowSignup bool
	BcryptCost  int
}

// SessionService logs users in and resolves session tokens.
type SessionService struct {
	users  domain.UserRepository
	tokens *auth.TokenIssuer
	cfg    SessionConfig
	logger *zap.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(users domain.UserRepository, tokens *auth.TokenIssuer, cfg SessionConfig, logger *zap.Logger) *SessionService {
	return &SessionService{
		users:  users,
		tokens: tokens,
		cfg:    cfg,
		logger: logger,
	}
}

// Login checks the credentials. Unknown emails and wrong passwords both
// yield domain.ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil || !auth.CheckPassword(password, user.PasswordHash) {
		s.logger.Info("login rejected", zap.String("email", email))
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

// Signup creates an account.
func (s *SessionService) Signup(ctx context.Context, email, password string) (*domain.User, error) {
	if !s.cfg.AllowSignup {
		return nil, domain.ErrSignupDisabled
	}

	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID))

	return user, nil
}

// Issue signs a session token for the user.
func (s *SessionService) Issue(user *domain.User) (string, time.Time, error) {
	return s.tokens.Issue(user.ID, user.Email)
}

// Resolve maps a session token to a session. Missing, invalid and expired
// tokens all resolve to the anonymous session.
func (s *SessionService) Resolve(token string) domain.Session {
	if token == "" {
		return domain.Anonymous()
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug("rejecting session token", zap.Error(err))
		return domain.Anonymous()
	}

	session := domain.Session{
		State:  domain.SessionAuthenticated,
		UserID: claims.UserID(),
		Email:  claims.Email,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}

	return session
}
