package postgres

import (
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"

	"campuseats/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const getUserByIDQuery = `SELECT id, name, email FROM users WHERE id = $1`

// GetUserByID находит пользователя по id.
func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.log.Debug("Getting user by id", zap.String("id", id.String()))

	user := &domain.User{}
	err := r.pool.QueryRow(ctx, getUserByIDQuery, id).Scan(&user.ID, &user.Name, &user.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.log.Warn("User not found", zap.String("id", id.String()))
			return nil, domain.ErrUserNotFound
		}
		r.log.Error("Failed to get user", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
