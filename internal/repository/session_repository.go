package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// SessionRepository manages login-session persistence. Deactivation never
// removes rows; they stay around for audit.
type SessionRepository interface {
	// CreateReplacingActive atomically deactivates every session held by the
	// user and inserts the new one, so two racing logins cannot leave both
	// sessions active.
	CreateReplacingActive(ctx context.Context, session *domain.Session) error
	GetActiveByToken(ctx context.Context, token string) (*domain.Session, error)
	ExtendExpiry(ctx context.Context, token string, expiresAt time.Time) (*domain.Session, error)
	Deactivate(ctx context.Context, token string) error
	DeactivateAllForUser(ctx context.Context, userID string) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository constructs repository.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

func (r *sessionRepository) CreateReplacingActive(ctx context.Context, session *domain.Session) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE user_sessions SET is_active=FALSE WHERE user_id=$1 AND is_active`,
		session.UserID,
	); err != nil {
		return err
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO user_sessions (user_id, token, expires_at, is_active, user_agent, ip_address)
         VALUES ($1,$2,$3,TRUE,$4,$5)
         RETURNING id, created_at`,
		session.UserID,
		session.Token,
		session.ExpiresAt,
		session.UserAgent,
		session.IPAddress,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return err
	}
	session.IsActive = true

	return tx.Commit(ctx)
}

func (r *sessionRepository) GetActiveByToken(ctx context.Context, token string) (*domain.Session, error) {
	const query = `
        SELECT id, user_id, token, created_at, expires_at, is_active, user_agent, ip_address
        FROM user_sessions WHERE token=$1 AND is_active`

	var session domain.Session
	if err := r.pool.QueryRow(ctx, query, token).Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.IsActive,
		&session.UserAgent,
		&session.IPAddress,
	); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) ExtendExpiry(ctx context.Context, token string, expiresAt time.Time) (*domain.Session, error) {
	const query = `
        UPDATE user_sessions SET expires_at=$1
        WHERE token=$2 AND is_active
        RETURNING id, user_id, token, created_at, expires_at, is_active, user_agent, ip_address`

	var session domain.Session
	if err := r.pool.QueryRow(ctx, query, expiresAt, token).Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.IsActive,
		&session.UserAgent,
		&session.IPAddress,
	); err != nil {
		return nil, err
	}
	return &session, nil
}

// Deactivate is an unconditional update; a token that matches nothing is not
// an error.
func (r *sessionRepository) Deactivate(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE user_sessions SET is_active=FALSE WHERE token=$1`, token)
	return err
}

func (r *sessionRepository) DeactivateAllForUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE user_sessions SET is_active=FALSE WHERE user_id=$1 AND is_active`, userID)
	return err
}

func (r *sessionRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE user_sessions SET is_active=FALSE WHERE is_active AND expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
