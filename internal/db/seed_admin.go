package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meblomat/meblomat/internal/config"
	"github.com/meblomat/meblomat/internal/domain/user"
	"github.com/meblomat/meblomat/internal/security"
)

// EnsureAdminUser seeds the initial admin account when ADMIN_EMAIL and
// ADMIN_PASSWORD are configured and no such user exists yet.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO users (email, password_hash, roles, account_type, subscription_plan, subscription_status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
		cfg.AdminEmail,
		hash,
		[]string{string(user.RoleAdmin)},
		string(user.AccountAdmin),
		string(user.PlanCarpenterProfessional),
		string(user.SubscriptionActive),
		now,
		now,
	)

	return err
}
