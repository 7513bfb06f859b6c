package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/ports"
)

const userColumns = `id, username, email, password_hash, display_name, profile_image, created_at, updated_at`

// UserRepositoryImpl implements the UserRepository interface
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entities.User) error {
	query := r.db.Rebind(`
		INSERT INTO users (username, email, password_hash, display_name, profile_image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.DisplayName,
		user.ProfileImage, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return entities.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)

	var user entities.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &user, nil
}

func (r *UserRepositoryImpl) GetByLogin(ctx context.Context, login string) (*entities.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE username = ? OR email = ? ORDER BY id LIMIT 1`)

	var user entities.User
	if err := r.db.GetContext(ctx, &user, query, login, login); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by login: %w", err)
	}

	return &user, nil
}

func (r *UserRepositoryImpl) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`)

	var count int
	if err := r.db.GetContext(ctx, &count, query, username, email); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return count > 0, nil
}

func (r *UserRepositoryImpl) EmailTakenByOther(ctx context.Context, email string, userID int64) (bool, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?`)

	var count int
	if err := r.db.GetContext(ctx, &count, query, email, userID); err != nil {
		return false, fmt.Errorf("check email in use: %w", err)
	}

	return count > 0, nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, user *entities.User) error {
	query := r.db.Rebind(`
		UPDATE users
		SET email = ?, display_name = ?, profile_image = ?, updated_at = ?
		WHERE id = ?`)

	user.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		user.Email, user.DisplayName, user.ProfileImage, user.UpdatedAt, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entities.ErrEmailInUse
		}
		return fmt.Errorf("update user: %w", err)
	}

	return expectRow(result, entities.ErrUserNotFound)
}

func (r *UserRepositoryImpl) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	query := r.db.Rebind(`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return expectRow(result, entities.ErrUserNotFound)
}

// expectRow turns a zero-row write into notFound
func expectRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get affected rows: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
