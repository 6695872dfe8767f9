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

const getUserOrderQuery = `SELECT id, user_id, stall_id, status FROM orders WHERE id = $1 AND user_id = $2`

// GetUserOrder находит заказ по id в пределах заказов пользователя. Чужой
// заказ неотличим от несуществующего, чтобы не раскрывать чужие id.
func (r *OrderRepository) GetUserOrder(ctx context.Context, orderID uuid.UUID, userID uuid.UUID) (*domain.Order, error) {
	log := r.log.With(zap.String("order_id", orderID.String()), zap.String("user_id", userID.String()))
	log.Debug("Getting user order")

	order := &domain.Order{}
	err := r.pool.QueryRow(ctx, getUserOrderQuery, orderID, userID).Scan(
		&order.ID, &order.UserID, &order.StallID, &order.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Warn("Order not found for user")
			return nil, domain.ErrOrderNotFound
		}
		log.Error("Failed to get order", zap.Error(err))
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}
