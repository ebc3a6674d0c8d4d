package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/grocer-kart/internal/domain/user"
)

const (
	userColumns = `id, mobile, name, email, gender, dob, password_hash, created_at`

	createUserSQL = `INSERT INTO users (mobile, name, email, gender, dob, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	getUserByIDSQL     = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByMobileSQL = `SELECT ` + userColumns + ` FROM users WHERE mobile = $1`

	updateUserSQL = `UPDATE users SET name = $2, email = $3, gender = $4, dob = $5
		WHERE id = $1`

	deleteUserSQL = `DELETE FROM users WHERE mobile = $1`

	getAdminSQL = `SELECT id, username, password_hash FROM admins WHERE username = $1`

	upsertAdminSQL = `INSERT INTO admins (username, password_hash) VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING id`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts u and fills its ID and CreatedAt.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.pool.QueryRow(ctx, createUserSQL,
		u.Mobile, u.Name, u.Email, u.Gender, u.DOB, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrMobileTaken
		}
		return fmt.Errorf("creating user %q: %w", u.Mobile, err)
	}
	return nil
}

// GetByID returns the user with the given id.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.getOne(ctx, getUserByIDSQL, id)
}

// GetByMobile returns the user with the given normalized mobile number.
func (r *UserRepository) GetByMobile(ctx context.Context, mobile string) (*user.User, error) {
	return r.getOne(ctx, getUserByMobileSQL, mobile)
}

func (r *UserRepository) getOne(ctx context.Context, sql string, arg any) (*user.User, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting user %v: %w", arg, err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %v: %w", arg, err)
	}
	return &u, nil
}

// Update writes the profile fields of u.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	tag, err := r.pool.Exec(ctx, updateUserSQL, u.ID, u.Name, u.Email, u.Gender, u.DOB)
	if err != nil {
		return fmt.Errorf("updating user %d: %w", u.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// DeleteByMobile removes the account. Addresses and cart lines cascade;
// orders keep the account from being deleted.
func (r *UserRepository) DeleteByMobile(ctx context.Context, mobile string) error {
	tag, err := r.pool.Exec(ctx, deleteUserSQL, mobile)
	if err != nil {
		if isForeignKeyViolation(err) {
			return user.ErrHasOrders
		}
		return fmt.Errorf("deleting user %q: %w", mobile, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// GetAdmin returns the admin account with the given username.
func (r *UserRepository) GetAdmin(ctx context.Context, username string) (*user.Admin, error) {
	var a user.Admin
	err := r.pool.QueryRow(ctx, getAdminSQL, username).Scan(&a.ID, &a.Username, &a.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting admin %q: %w", username, err)
	}
	return &a, nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Mobile, &u.Name, &u.Email, &u.Gender, &u.DOB, &u.PasswordHash, &u.CreatedAt,
	)
	return u, err
}

// UpsertAdmin creates an admin console account or resets its password hash.
func (r *UserRepository) UpsertAdmin(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64
	if err := r.pool.QueryRow(ctx, upsertAdminSQL, username, passwordHash).Scan(&id); err != nil {
		return 0, fmt.Errorf("upserting admin %q: %w", username, err)
	}
	return id, nil
}
