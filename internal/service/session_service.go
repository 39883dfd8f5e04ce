package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/repository"
	apperrors "github.com/spec-kit/clinic-service/pkg/util"
)

// SessionService issues, validates, refreshes and revokes login sessions.
// Policy: at most one active session per user; creating a new one kills any
// prior session for that user inside the same transaction.
type SessionService struct {
	sessions repository.SessionRepository
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionService builds the service.
func NewSessionService(sessions repository.SessionRepository, ttl time.Duration, logger *zap.Logger) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Create issues a fresh session for the user, deactivating every prior one.
func (s *SessionService) Create(ctx context.Context, user *domain.User, userAgent, ipAddress string) (*domain.Session, error) {
	session := &domain.Session{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.ttl),
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}
	if err := s.sessions.CreateReplacingActive(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("session created",
		zap.String("user_id", user.ID),
		zap.Time("expires_at", session.ExpiresAt))
	return session, nil
}

// Validate sweeps expired sessions, then resolves an active unexpired session
// by exact token match. The system-wide sweep on every validation mirrors the
// expiry discipline of the session store.
func (s *SessionService) Validate(ctx context.Context, token string) (*domain.Session, error) {
	if _, err := s.sessions.DeactivateExpired(ctx, s.now()); err != nil {
		return nil, err
	}

	session, err := s.sessions.GetActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid or expired session token")
		}
		return nil, err
	}
	return session, nil
}

// Refresh extends the expiry of an active session without rotating its token.
func (s *SessionService) Refresh(ctx context.Context, token string) (*domain.Session, error) {
	if _, err := s.sessions.DeactivateExpired(ctx, s.now()); err != nil {
		return nil, err
	}

	session, err := s.sessions.ExtendExpiry(ctx, token, s.now().Add(s.ttl))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid session token")
		}
		return nil, err
	}
	return session, nil
}

// Invalidate marks the matching session inactive. Idempotent: a token that
// matches nothing is not an error.
func (s *SessionService) Invalidate(ctx context.Context, token string) error {
	return s.sessions.Deactivate(ctx, token)
}

// InvalidateAllForUser deactivates every session the user holds.
func (s *SessionService) InvalidateAllForUser(ctx context.Context, userID string) error {
	return s.sessions.DeactivateAllForUser(ctx, userID)
}

// SweepExpired deactivates all sessions past their expiry. The background
// worker calls this on a ticker.
func (s *SessionService) SweepExpired(ctx context.Context) (int64, error) {
	swept, err := s.sessions.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		s.logger.Info("expired sessions swept", zap.Int64("count", swept))
	}
	return swept, nil
}
