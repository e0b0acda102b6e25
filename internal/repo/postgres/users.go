package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meblomat/meblomat/internal/domain/user"
	"github.com/meblomat/meblomat/internal/observability"
)

var ErrEmailAlreadyUsed = errors.New("email already in use")

const userColumns = `id, email, password_hash, roles, account_type, subscription_plan,
         subscription_status, trial_started_at, trial_ends_at, carpenter_id, client_id,
         created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	var roles []string

	err := row.Scan(
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

	if err != nil {
		return user.User{}, err
	}

	u.Roles = make([]user.Role, 0, len(roles))

	for _, role := range roles {
		u.Roles = append(u.Roles, user.Role(role))
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	var err error

	op := "users.get_by_email"

	err = r.observe(op, func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			email,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User
	var err error

	op := "users.get_by_id"

	err = r.observe(op, func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// Create inserts the user and returns it with the generated id. A duplicate
// email maps to ErrEmailAlreadyUsed.
func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	roles := make([]string, 0, len(u.Roles))

	for _, role := range u.Roles {
		roles = append(roles, string(role))
	}

	op := "users.create"

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO users (email, password_hash, roles, account_type, subscription_plan,
			    subscription_status, trial_started_at, trial_ends_at, carpenter_id, client_id,
			    created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			 RETURNING id`,
			u.Email,
			u.PasswordHash,
			roles,
			string(u.AccountType),
			string(u.SubscriptionPlan),
			string(u.SubscriptionStatus),
			u.TrialStartedAt,
			u.TrialEndsAt,
			u.CarpenterID,
			u.ClientID,
			u.CreatedAt,
			u.UpdatedAt,
		).Scan(&u.ID)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, ErrEmailAlreadyUsed
		}

		return user.User{}, err
	}

	return u, nil
}
