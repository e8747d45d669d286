package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/denzelpenzel/skillswap/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const userColumns = `id, username, email, password_hash, full_name, bio, location, created_at`

// UserRepository persists user identities and profiles
type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser inserts a user. Duplicate usernames or emails yield models.ErrConflict.
func (r *UserRepository) CreateUser(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, full_name, bio, location)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query,
		params.Username,
		params.Email,
		params.PasswordHash,
		params.FullName,
		params.Bio,
		params.Location,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrConflict
		}
		r.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByLogin retrieves a user by username or email. An exact username
// match wins over an email match.
func (r *UserRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1 OR email = $1
		ORDER BY (username = $1) DESC
		LIMIT 1
	`

	user, err := scanUser(r.db.QueryRow(ctx, query, login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by login: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// UpdateProfile overwrites the provided profile fields and leaves the rest untouched
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) error {
	query := `
		UPDATE users
		SET full_name = COALESCE($2::text, full_name),
		    bio       = COALESCE($3::text, bio),
		    location  = COALESCE($4::text, location)
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, userID, upd.FullName, upd.Bio, upd.Location)
	if err != nil {
		r.logger.Error("Failed to update profile", zap.Error(err), zap.Int64("user_id", userID))
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Bio,
		&user.Location,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
