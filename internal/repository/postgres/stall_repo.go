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

const (
	getStallByIDQuery = `SELECT id, name, rating FROM stalls WHERE id = $1`

	existsStallQuery = `SELECT EXISTS(SELECT 1 FROM stalls WHERE id = $1)`
)

// GetStallByID находит лавку по id.
func (r *StallRepository) GetStallByID(ctx context.Context, id uuid.UUID) (*domain.Stall, error) {
	r.log.Debug("Getting stall by id", zap.String("id", id.String()))

	stall := &domain.Stall{}
	err := r.pool.QueryRow(ctx, getStallByIDQuery, id).Scan(&stall.ID, &stall.Name, &stall.Rating)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.log.Warn("Stall not found", zap.String("id", id.String()))
			return nil, domain.ErrStallNotFound
		}
		r.log.Error("Failed to get stall", zap.Error(err))
		return nil, fmt.Errorf("failed to get stall: %w", err)
	}
	return stall, nil
}

// ExistsStall проверяет существование лавки.
func (r *StallRepository) ExistsStall(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, existsStallQuery, id).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check if stall exists", zap.String("id", id.String()), zap.Error(err))
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}
