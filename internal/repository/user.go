package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inboxpilot/inboxpilot/internal/entity"
)

// UserRepository persists accounts. Token columns hold ciphertext; callers
// encrypt and decrypt with common.TokenCipher.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpsertTokens(ctx context.Context, email, accessToken, refreshToken string) (*entity.User, error)
	SetExtractionMode(ctx context.Context, id uuid.UUID, mode string) error
}

type userRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewUserRepository(pool *pgxpool.Pool, logger *slog.Logger) UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &userRepository{pool: pool, logger: logger}
}

const userColumns = `id, email, google_access_token, google_refresh_token,
	extraction_mode, created_at, updated_at`

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return r.scanUser(row)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return r.scanUser(row)
}

// UpsertTokens creates the account on first login and refreshes the stored
// (already encrypted) tokens on every later one.
func (r *userRepository) UpsertTokens(ctx context.Context, email, accessToken, refreshToken string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, google_access_token, google_refresh_token)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET
			google_access_token = EXCLUDED.google_access_token,
			google_refresh_token = CASE
				WHEN EXCLUDED.google_refresh_token <> '' THEN EXCLUDED.google_refresh_token
				ELSE users.google_refresh_token
			END,
			updated_at = now()
		RETURNING `+userColumns,
		email, accessToken, refreshToken,
	)
	user, err := r.scanUser(row)
	if err != nil {
		r.logger.Error("failed to upsert user tokens", "email", email, "error", err)
		return nil, err
	}
	r.logger.Info("stored user tokens", "user_id", user.ID)
	return user, nil
}

func (r *userRepository) SetExtractionMode(ctx context.Context, id uuid.UUID, mode string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET extraction_mode = $2, updated_at = now() WHERE id = $1`,
		id, mode)
	if err != nil {
		r.logger.Error("failed to set extraction mode", "user_id", id, "error", err)
	}
	return err
}

func (r *userRepository) scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.Email, &u.GoogleAccessToken, &u.GoogleRefreshToken,
		&u.ExtractionMode, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("failed to scan user", "error", err)
		return nil, err
	}
	return &u, nil
}
