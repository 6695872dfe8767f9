package service

import (
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"

	"campuseats/internal/domain"

	"github.com/google/uuid"
)

type ReviewChecker interface {
	ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	ExistsStandalone(ctx context.Context, userID uuid.UUID, stallID uuid.UUID) (bool, error)
}

type StallProvider interface {
	ExistsStall(ctx context.Context, id uuid.UUID) (bool, error)
}

type OrderProvider interface {
	GetUserOrder(ctx context.Context, orderID uuid.UUID, userID uuid.UUID) (*domain.Order, error)
}

// EligibilityValidator проверяет, допустимо ли создание или изменение
// отзыва. Только читает, никаких побочных эффектов.
type EligibilityValidator struct {
	reviews ReviewChecker
	stalls  StallProvider
	orders  OrderProvider
	log     *zap.Logger
}

func NewEligibilityValidator(reviews ReviewChecker, stalls StallProvider, orders OrderProvider, log *zap.Logger) *EligibilityValidator {
	return &EligibilityValidator{
		reviews: reviews,
		stalls:  stalls,
		orders:  orders,
		log:     log.Named("EligibilityValidator"),
	}
}

// CanCreate проверяет права на создание отзыва. С orderID отзыв привязан к
// заказу: заказ должен принадлежать пользователю, относиться к той же лавке,
// быть выполненным и ещё не отрецензированным. Без orderID действует правило
// "один отзыв без заказа на пару пользователь+лавка".
func (v *EligibilityValidator) CanCreate(ctx context.Context, userID uuid.UUID, stallID uuid.UUID, orderID *uuid.UUID) error {
	log := v.log.With(zap.String("user_id", userID.String()), zap.String("stall_id", stallID.String()))

	exists, err := v.stalls.ExistsStall(ctx, stallID)
	if err != nil {
		log.Error("Failed to check stall existence", zap.Error(err))
		return fmt.Errorf("failed to check stall existence: %w", err)
	}
	if !exists {
		log.Warn("Stall not found")
		return domain.ErrStallNotFound
	}

	if orderID != nil {
		return v.canCreateForOrder(ctx, log, userID, stallID, *orderID)
	}

	reviewed, err := v.reviews.ExistsStandalone(ctx, userID, stallID)
	if err != nil {
		log.Error("Failed to check standalone review existence", zap.Error(err))
		return fmt.Errorf("failed to check standalone review existence: %w", err)
	}
	if reviewed {
		log.Warn("User has already reviewed this stall")
		return domain.ErrDuplicateStallReview
	}
	return nil
}

func (v *EligibilityValidator) canCreateForOrder(ctx context.Context, log *zap.Logger, userID uuid.UUID, stallID uuid.UUID, orderID uuid.UUID) error {
	log = log.With(zap.String("order_id", orderID.String()))

	order, err := v.orders.GetUserOrder(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			log.Warn("Order not found for user")
			return domain.ErrOrderNotFound
		}
		log.Error("Failed to get order", zap.Error(err))
		return fmt.Errorf("failed to get order: %w", err)
	}

	if order.StallID != stallID {
		log.Warn("Order is from a different stall")
		return domain.ErrOrderStallMismatch
	}
	if order.Status != domain.OrderStatusCompleted {
		log.Warn("Order is not completed", zap.String("status", string(order.Status)))
		return domain.ErrOrderNotCompleted
	}

	reviewed, err := v.reviews.ExistsForOrder(ctx, orderID)
	if err != nil {
		log.Error("Failed to check review existence for order", zap.Error(err))
		return fmt.Errorf("failed to check review existence for order: %w", err)
	}
	if reviewed {
		log.Warn("Order already has a review")
		return domain.ErrDuplicateOrderReview
	}
	return nil
}

// CanMutate разрешает изменение или удаление отзыва только его автору.
func (v *EligibilityValidator) CanMutate(userID uuid.UUID, review *domain.Review) error {
	if review.UserID != userID {
		v.log.Warn("Mutation attempted by non-owner",
			zap.String("review_id", review.ID.String()),
			zap.String("user_id", userID.String()),
		)
		return domain.ErrNotReviewOwner
	}
	return nil
}
