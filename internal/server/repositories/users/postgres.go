package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

const userColumns = `id, username, email, full_name, password_hash, avatar, cover_image, refresh_token, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u            models.User
		coverImage   sql.NullString
		refreshToken sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.Avatar, &coverImage, &refreshToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.CoverImage = coverImage.String
	if refreshToken.Valid {
		u.RefreshToken = &refreshToken.String
	}
	return &u, nil
}

func dbError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err):
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, dbx.ConstraintName(err))
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, email, full_name, password_hash, avatar, cover_image)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		 RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FullName, user.PasswordHash, user.Avatar, user.CoverImage))
	if err != nil {
		return nil, dbError(err)
	}

	return created, nil
}

func (r *PostgresRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		return nil, dbError(err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *PostgresRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR username = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return dbError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.exec(ctx,
		`UPDATE users SET refresh_token = $2, updated_at = now() WHERE id = $1`, id, token)
}

// ClearRefreshToken is idempotent: clearing an already empty token succeeds.
func (r *PostgresRepository) ClearRefreshToken(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token = NULL, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
}

func (r *PostgresRepository) update(ctx context.Context, set string, args ...any) (*models.User, error) {
	query := `UPDATE users SET ` + set + `, updated_at = now() WHERE id = $1 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, dbError(err)
	}
	return user, nil
}

func (r *PostgresRepository) UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*models.User, error) {
	return r.update(ctx, `full_name = $2, email = $3`, id, fullName, email)
}

func (r *PostgresRepository) UpdateAvatar(ctx context.Context, id, url string) (*models.User, error) {
	return r.update(ctx, `avatar = $2`, id, url)
}

func (r *PostgresRepository) UpdateCoverImage(ctx context.Context, id, url string) (*models.User, error) {
	return r.update(ctx, `cover_image = $2`, id, url)
}
