// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/transcend/internal/platform/apperr"
	"github.com/taibuivan/transcend/internal/platform/database/schema"
	"github.com/taibuivan/transcend/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements [UserRepository] over users.account.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

var account = schema.UserAccount

// scanUser hydrates a User from a row selected with account.SelectList().
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.HashedRefreshToken,
		&user.IsLogged,
		&user.FirstLogin,
		&user.TwoFactor.Status,
		&user.TwoFactor.Secret,
		&user.SignedInWithProvider,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (repository *PostgresUserRepository) findOne(context context.Context, column string, value any) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, account.SelectList(), account.Table, column)

	user, err := scanUser(repository.pool.QueryRow(context, query, value))
	if err != nil {
		return nil, dberr.Wrap(err, resourceUser)
	}
	return user, nil
}

// FindByID retrieves a user by primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id int64) (*User, error) {
	return repository.findOne(context, account.ID, id)
}

// FindByEmail retrieves a user by unique email.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, account.Email, email)
}

// FindByUsername retrieves a user by unique username.
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	return repository.findOne(context, account.Username, username)
}

// FindByRefreshHash retrieves the user owning a provider session digest.
func (repository *PostgresUserRepository) FindByRefreshHash(context context.Context, hash string) (*User, error) {
	return repository.findOne(context, account.HashedRefreshToken, hash)
}

/*
Create inserts a new account row.

Description: ID, createdat and updatedat are assigned by the database and
written back into user.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: apperr.Conflict on unique violation, apperr.Internal otherwise
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s, %s, %s`,
		account.Table,
		account.Email, account.Username, account.PasswordHash, account.HashedRefreshToken,
		account.IsLogged, account.FirstLogin, account.TwoFactorStatus, account.TwoFactorSecret,
		account.SignedInWithProvider, account.AvatarURL,
		account.ID, account.CreatedAt, account.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.HashedRefreshToken,
		user.IsLogged,
		user.FirstLogin,
		user.TwoFactor.Status,
		user.TwoFactor.Secret,
		user.SignedInWithProvider,
		user.AvatarURL,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return conflictFor(dberr.ConstraintName(err)).WithCause(err)
		}
		return apperr.Internal(fmt.Errorf("postgres_user_repo_create_failed: %w", err))
	}

	return nil
}

// conflictFor names the duplicated identifier from the violated constraint.
func conflictFor(constraint string) *apperr.AppError {
	switch constraint {
	case "account_email_key":
		return apperr.Conflict("Email is already registered")
	case "account_username_key":
		return apperr.Conflict("Username is already taken")
	default:
		return apperr.Conflict("User already exists")
	}
}

// # Session Columns

// StoreSession overwrites the refresh credential and the logged-in flag.
func (repository *PostgresUserRepository) StoreSession(context context.Context, id int64, hash string, logged bool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = NOW()
		WHERE %s = $1`,
		account.Table,
		account.HashedRefreshToken, account.IsLogged, account.UpdatedAt,
		account.ID,
	)

	return repository.execOne(context, "postgres_user_repo_store_session_failed", query, id, hash, logged)
}

// RotateRefreshHash performs the conditional swap of the refresh credential.
func (repository *PostgresUserRepository) RotateRefreshHash(context context.Context, id int64, current, next string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, %s = NOW()
		WHERE %s = $1 AND %s = $2`,
		account.Table,
		account.HashedRefreshToken, account.UpdatedAt,
		account.ID, account.HashedRefreshToken,
	)

	return repository.execConditional(context, "postgres_user_repo_rotate_refresh_failed", query, id, current, next)
}

// ClearSession logs the user out if a refresh credential is stored.
func (repository *PostgresUserRepository) ClearSession(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = NULL, %s = FALSE, %s = NOW()
		WHERE %s = $1 AND %s IS NOT NULL`,
		account.Table,
		account.HashedRefreshToken, account.IsLogged, account.UpdatedAt,
		account.ID, account.HashedRefreshToken,
	)

	return repository.execConditional(context, "postgres_user_repo_clear_session_failed", query, id)
}

// SetLogged updates islogged.
func (repository *PostgresUserRepository) SetLogged(context context.Context, id int64, logged bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		account.Table, account.IsLogged, account.UpdatedAt, account.ID)

	return repository.execOne(context, "postgres_user_repo_set_logged_failed", query, id, logged)
}

// # Two-Factor Columns

// SetTwoFactor writes status and secret together.
func (repository *PostgresUserRepository) SetTwoFactor(context context.Context, id int64, state TwoFactorState) error {
	if !state.Valid() {
		return apperr.Internal(fmt.Errorf("postgres_user_repo_set_two_factor_invalid_state: %s", state.Status))
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = NOW() WHERE %s = $1`,
		account.Table, account.TwoFactorStatus, account.TwoFactorSecret, account.UpdatedAt, account.ID)

	return repository.execOne(context, "postgres_user_repo_set_two_factor_failed", query, id, state.Status, state.Secret)
}

// PromoteTwoFactor enables 2FA if the pending secret is unchanged.
func (repository *PostgresUserRepository) PromoteTwoFactor(context context.Context, id int64, secret string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, %s = NOW()
		WHERE %s = $1 AND %s = $4 AND %s = $2`,
		account.Table,
		account.TwoFactorStatus, account.UpdatedAt,
		account.ID, account.TwoFactorStatus, account.TwoFactorSecret,
	)

	return repository.execConditional(context, "postgres_user_repo_promote_two_factor_failed", query, id, secret, TwoFactorEnabled, TwoFactorPending)
}

// ClearFirstLogin flips firstlogin to false.
func (repository *PostgresUserRepository) ClearFirstLogin(context context.Context, id int64) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = FALSE, %s = NOW() WHERE %s = $1`,
		account.Table, account.FirstLogin, account.UpdatedAt, account.ID)

	return repository.execOne(context, "postgres_user_repo_clear_first_login_failed", query, id)
}

// # Helpers

// execOne runs an update that must hit exactly one row.
func (repository *PostgresUserRepository) execOne(context context.Context, operation, query string, args ...any) error {
	tag, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return apperr.Internal(fmt.Errorf("%s: %w", operation, err))
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceUser)
	}
	return nil
}

// execConditional runs an update whose WHERE clause may legitimately match nothing.
func (repository *PostgresUserRepository) execConditional(context context.Context, operation, query string, args ...any) (bool, error) {
	tag, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return false, apperr.Internal(fmt.Errorf("%s: %w", operation, err))
	}
	return tag.RowsAffected() == 1, nil
}
