package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lizet96/medibot-backend/models"
)

// UserStore guarda usuarios en PostgreSQL
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `id, name, email, password_hash, mfa_enabled, mfa_secret, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.MFAEnabled, &u.MFASecret, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserta el usuario. Devuelve ErrDuplicateEmail si el email ya existe.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.MFAEnabled, u.MFASecret, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// UpdateProfile cambia nombre y email. Los diagnósticos se identifican por email,
// así que se re-apuntan en la misma transacción.
func (s *UserStore) UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var oldEmail string
	if err := tx.QueryRow(ctx, `SELECT email FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&oldEmail); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	u, err := scanUser(tx.QueryRow(ctx,
		`UPDATE users SET name = $1, email = $2, updated_at = $3 WHERE id = $4 RETURNING `+userColumns,
		name, email, time.Now().UTC(), id))
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}

	if oldEmail != email {
		if _, err := tx.Exec(ctx, `UPDATE diagnoses SET user_email = $1 WHERE user_email = $2`, email, oldEmail); err != nil {
			return nil, fmt.Errorf("moving diagnoses to new email: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing profile update: %w", err)
	}
	return u, nil
}

// SetMFA guarda el secreto TOTP y si está activo
func (s *UserStore) SetMFA(ctx context.Context, id string, enabled bool, secret string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET mfa_enabled = $1, mfa_secret = $2, updated_at = $3 WHERE id = $4`,
		enabled, secret, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating mfa: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
