package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meblomat/meblomat/internal/auth"
	"github.com/meblomat/meblomat/internal/domain/user"
	"github.com/meblomat/meblomat/internal/observability"
)

// SessionsRepo implements auth.Store on top of the sessions table.
type SessionsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSessionsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SessionsRepo {
	return &SessionsRepo{pool: pool, prom: prom}
}

func (r *SessionsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *SessionsRepo) Create(ctx context.Context, s auth.Session) error {
	op := "sessions.create"

	return r.observe(op, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO sessions (token, user_id, expires_at, created_at)
			 VALUES ($1,$2,$3,$4)`,
			s.Token, s.UserID, s.ExpiresAt, s.CreatedAt,
		)
		return err
	})
}

// GetWithUser resolves the token together with its owner in one round trip.
func (r *SessionsRepo) GetWithUser(ctx context.Context, token string) (auth.Session, user.User, error) {
	var s auth.Session
	var u user.User
	var roles []string

	op := "sessions.get_with_user"

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT s.token, s.user_id, s.expires_at, s.created_at,
			        u.id, u.email, u.password_hash, u.roles, u.account_type,
			        u.subscription_plan, u.subscription_status,
			        u.trial_started_at, u.trial_ends_at, u.carpenter_id, u.client_id,
			        u.created_at, u.updated_at
			 FROM sessions s
			 JOIN users u ON u.id = s.user_id
			 WHERE s.token = $1`,
			token,
		).Scan(
			&s.Token,
			&s.UserID,
			&s.ExpiresAt,
			&s.CreatedAt,
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&roles,
			&u.AccountType,
			&u.SubscriptionPlan,
			&u.SubscriptionStatus,
			&u.TrialStartedAt,
			&u.TrialEndsAt,
			&u.CarpenterID,
			&u.ClientID,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Session{}, user.User{}, auth.ErrSessionNotFound
		}

		return auth.Session{}, user.User{}, err
	}

	u.Roles = make([]user.Role, 0, len(roles))

	for _, role := range roles {
		u.Roles = append(u.Roles, user.Role(role))
	}

	return s, u, nil
}

func (r *SessionsRepo) DeleteByToken(ctx context.Context, token string) error {
	op := "sessions.delete_by_token"

	return r.observe(op, func() error {
		// deleting an absent token is a no-op, not an error
		_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
		return err
	})
}

func (r *SessionsRepo) DeleteForUser(ctx context.Context, userID int64) error {
	op := "sessions.delete_for_user"

	return r.observe(op, func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
		return err
	})
}
