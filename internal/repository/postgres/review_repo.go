package postgres

import (
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"

	"campuseats/internal/domain"
	"campuseats/internal/rating"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	insertReviewQuery = `INSERT INTO reviews (id, user_id, stall_id, order_id, rating, comment, created_at, updated_at)
						 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	getReviewByIDQuery = `SELECT id, user_id, stall_id, order_id, rating, comment, created_at, updated_at
						  FROM reviews WHERE id = $1`

	listReviewsByStallQuery = `SELECT r.id, r.user_id, r.stall_id, r.order_id, r.rating, r.comment, r.created_at, r.updated_at,
									  u.name, u.email
							   FROM reviews r
							   JOIN users u ON r.user_id = u.id
							   WHERE r.stall_id = $1
							   ORDER BY r.created_at DESC
							   OFFSET $2 LIMIT $3`

	listReviewsByUserQuery = `SELECT id, user_id, stall_id, order_id, rating, comment, created_at, updated_at
							  FROM reviews WHERE user_id = $1
							  ORDER BY created_at DESC`

	updateReviewQuery = `UPDATE reviews SET rating = $1, comment = $2, updated_at = $3 WHERE id = $4`

	deleteReviewQuery = `DELETE FROM reviews WHERE id = $1`

	existsReviewForOrderQuery = `SELECT EXISTS(SELECT 1 FROM reviews WHERE order_id = $1)`

	existsStandaloneReviewQuery = `SELECT EXISTS(SELECT 1 FROM reviews
								   WHERE user_id = $1 AND stall_id = $2 AND order_id IS NULL)`

	ratingsByStallQuery = `SELECT rating FROM reviews WHERE stall_id = $1`

	lockStallQuery = `SELECT id FROM stalls WHERE id = $1 FOR UPDATE`

	updateStallRatingQuery = `UPDATE stalls SET rating = $1 WHERE id = $2`

	uniqueViolationCode = "23505"

	standaloneReviewIdx = "reviews_user_stall_standalone_idx"
)

// Create сохраняет отзыв и пересчитывает рейтинг лавки в одной транзакции.
// Гонка двух одинаковых отзывов закрывается уникальными ограничениями БД.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	log := r.log.With(zap.String("review_id", review.ID.String()))
	log.Debug("Creating review in a transaction")

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Error("Failed to rollback transaction", zap.Error(err))
		}
	}()

	_, err = tx.Exec(ctx, insertReviewQuery,
		review.ID, review.UserID, review.StallID, review.OrderID,
		review.Rating, review.Comment, review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		if dupErr := mapUniqueViolation(err); dupErr != nil {
			log.Warn("Duplicate review rejected by constraint", zap.Error(err))
			return dupErr
		}
		log.Error("Failed to insert review", zap.Error(err))
		return fmt.Errorf("failed to insert review: %w", err)
	}

	if err := r.recomputeStallRating(ctx, tx, review.StallID); err != nil {
		log.Error("Failed to recompute stall rating", zap.Error(err))
		return err
	}

	log.Debug("Committing transaction")
	return tx.Commit(ctx)
}

// Update изменяет рейтинг/комментарий отзыва и пересчитывает агрегат лавки
// в той же транзакции.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	log := r.log.With(zap.String("review_id", review.ID.String()))
	log.Debug("Updating review in a transaction")

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Error("Failed to rollback transaction", zap.Error(err))
		}
	}()

	cmdTag, err := tx.Exec(ctx, updateReviewQuery, review.Rating, review.Comment, review.UpdatedAt, review.ID)
	if err != nil {
		log.Error("Failed to update review", zap.Error(err))
		return fmt.Errorf("failed to update review: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		log.Warn("Review not found for update")
		return domain.ErrReviewNotFound
	}

	if err := r.recomputeStallRating(ctx, tx, review.StallID); err != nil {
		log.Error("Failed to recompute stall rating", zap.Error(err))
		return err
	}

	log.Debug("Committing transaction")
	return tx.Commit(ctx)
}

// Delete удаляет отзыв и пересчитывает агрегат лавки в той же транзакции.
// stallID передаётся отдельно: после удаления строки его уже не прочитать.
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID, stallID uuid.UUID) error {
	log := r.log.With(zap.String("review_id", id.String()))
	log.Debug("Deleting review in a transaction")

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Error("Failed to rollback transaction", zap.Error(err))
		}
	}()

	cmdTag, err := tx.Exec(ctx, deleteReviewQuery, id)
	if err != nil {
		log.Error("Failed to delete review", zap.Error(err))
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		log.Warn("Review not found for delete")
		return domain.ErrReviewNotFound
	}

	if err := r.recomputeStallRating(ctx, tx, stallID); err != nil {
		log.Error("Failed to recompute stall rating", zap.Error(err))
		return err
	}

	log.Debug("Committing transaction")
	return tx.Commit(ctx)
}

// GetByID находит отзыв по id.
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	r.log.Debug("Getting review by id", zap.String("id", id.String()))

	review := &domain.Review{}
	err := r.pool.QueryRow(ctx, getReviewByIDQuery, id).Scan(
		&review.ID, &review.UserID, &review.StallID, &review.OrderID,
		&review.Rating, &review.Comment, &review.CreatedAt, &review.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.log.Warn("Review not found", zap.String("id", id.String()))
			return nil, domain.ErrReviewNotFound
		}
		r.log.Error("Failed to get review", zap.Error(err))
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

// ListByStall возвращает отзывы лавки, новые первыми, вместе с именем и
// почтой автора.
func (r *ReviewRepository) ListByStall(ctx context.Context, stallID uuid.UUID, skip, limit int) ([]*domain.ReviewWithAuthor, error) {
	log := r.log.With(zap.String("stall_id", stallID.String()))
	log.Debug("Listing reviews by stall", zap.Int("skip", skip), zap.Int("limit", limit))

	rows, err := r.pool.Query(ctx, listReviewsByStallQuery, stallID, skip, limit)
	if err != nil {
		log.Error("Failed to query reviews by stall", zap.Error(err))
		return nil, fmt.Errorf("failed to query reviews by stall: %w", err)
	}
	defer rows.Close()

	var reviews []*domain.ReviewWithAuthor
	for rows.Next() {
		var review domain.ReviewWithAuthor
		err := rows.Scan(
			&review.ID, &review.UserID, &review.StallID, &review.OrderID,
			&review.Rating, &review.Comment, &review.CreatedAt, &review.UpdatedAt,
			&review.AuthorName, &review.AuthorEmail,
		)
		if err != nil {
			log.Error("Failed to scan review row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, &review)
	}
	if err := rows.Err(); err != nil {
		log.Error("Error after iterating over review rows", zap.Error(err))
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	log.Debug("Reviews retrieved successfully", zap.Int("count", len(reviews)))
	return reviews, nil
}

// ListByUser возвращает все отзывы пользователя, новые первыми.
func (r *ReviewRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Review, error) {
	log := r.log.With(zap.String("user_id", userID.String()))
	log.Debug("Listing reviews by user")

	rows, err := r.pool.Query(ctx, listReviewsByUserQuery, userID)
	if err != nil {
		log.Error("Failed to query reviews by user", zap.Error(err))
		return nil, fmt.Errorf("failed to query reviews by user: %w", err)
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		var review domain.Review
		err := rows.Scan(
			&review.ID, &review.UserID, &review.StallID, &review.OrderID,
			&review.Rating, &review.Comment, &review.CreatedAt, &review.UpdatedAt,
		)
		if err != nil {
			log.Error("Failed to scan review row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, &review)
	}
	if err := rows.Err(); err != nil {
		log.Error("Error after iterating over review rows", zap.Error(err))
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	log.Debug("Reviews retrieved successfully", zap.Int("count", len(reviews)))
	return reviews, nil
}

// ExistsForOrder проверяет, есть ли уже отзыв на этот заказ.
func (r *ReviewRepository) ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, existsReviewForOrderQuery, orderID).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check review existence for order", zap.String("order_id", orderID.String()), zap.Error(err))
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

// ExistsStandalone проверяет, есть ли у пользователя отзыв на лавку без
// привязки к заказу.
func (r *ReviewRepository) ExistsStandalone(ctx context.Context, userID uuid.UUID, stallID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, existsStandaloneReviewQuery, userID, stallID).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check standalone review existence", zap.String("user_id", userID.String()), zap.Error(err))
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

// RatingsByStall возвращает все текущие рейтинги лавки.
func (r *ReviewRepository) RatingsByStall(ctx context.Context, stallID uuid.UUID) ([]float64, error) {
	rows, err := r.pool.Query(ctx, ratingsByStallQuery, stallID)
	if err != nil {
		r.log.Error("Failed to query ratings by stall", zap.String("stall_id", stallID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to query ratings by stall: %w", err)
	}
	defer rows.Close()

	var ratings []float64
	for rows.Next() {
		var value float64
		if err := rows.Scan(&value); err != nil {
			r.log.Error("Failed to scan rating value", zap.Error(err))
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, value)
	}
	if err := rows.Err(); err != nil {
		r.log.Error("Error after iterating over rating rows", zap.Error(err))
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return ratings, nil
}

// recomputeStallRating читает полный набор рейтингов лавки внутри
// транзакции и записывает округлённое среднее в stalls.rating. Пересчёт
// всегда идёт от полного набора, а не от дельты, поэтому он идемпотентен
// и сходится при любом порядке конкурентных мутаций.
//
// Строка лавки блокируется FOR UPDATE до чтения рейтингов: под READ
// COMMITTED конкурентная транзакция той же лавки встаёт на блокировке
// и перечитывает набор уже после коммита первой, иначе вторая записала
// бы среднее без её отзыва.
func (r *ReviewRepository) recomputeStallRating(ctx context.Context, tx pgx.Tx, stallID uuid.UUID) error {
	if _, err := tx.Exec(ctx, lockStallQuery, stallID); err != nil {
		return fmt.Errorf("failed to lock stall row: %w", err)
	}

	rows, err := tx.Query(ctx, ratingsByStallQuery, stallID)
	if err != nil {
		return fmt.Errorf("failed to query ratings for recompute: %w", err)
	}
	defer rows.Close()

	var ratings []float64
	for rows.Next() {
		var value float64
		if err := rows.Scan(&value); err != nil {
			return fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, value)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}
	rows.Close()

	if _, err := tx.Exec(ctx, updateStallRatingQuery, rating.Average(ratings), stallID); err != nil {
		return fmt.Errorf("failed to update stall rating: %w", err)
	}
	return nil
}

// mapUniqueViolation переводит нарушение уникального ограничения в
// доменную ошибку дубликата, nil - если это не нарушение уникальности.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return nil
	}
	if pgErr.ConstraintName == standaloneReviewIdx {
		return domain.ErrDuplicateStallReview
	}
	return domain.ErrDuplicateOrderReview
}
