package service

import (
	"context"
	"fmt"
	"go.uber.org/zap"
	"time"
	"unicode/utf8"

	"campuseats/internal/domain"
	"campuseats/internal/rating"

	"github.com/google/uuid"
)

const (
	minRating        = 1.0
	maxRating        = 5.0
	maxCommentLength = 1000

	// defaultListLimit применяется, когда клиент не задал limit.
	defaultListLimit = 50

	statsCacheTTL = time.Minute
)

type ReviewRepo interface {
	Create(ctx context.Context, review *domain.Review) error
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id uuid.UUID, stallID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	ListByStall(ctx context.Context, stallID uuid.UUID, skip, limit int) ([]*domain.ReviewWithAuthor, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Review, error)
	RatingsByStall(ctx context.Context, stallID uuid.UUID) ([]float64, error)
}

type StatsCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type ReviewService struct {
	repo      ReviewRepo
	stalls    StallProvider
	validator *EligibilityValidator
	cache     StatsCache
	log       *zap.Logger
}

func NewReviewService(repo ReviewRepo, stalls StallProvider, validator *EligibilityValidator, cache StatsCache, log *zap.Logger) *ReviewService {
	return &ReviewService{
		repo:      repo,
		stalls:    stalls,
		validator: validator,
		cache:     cache,
		log:       log.Named("ReviewService"),
	}
}

// Create проверяет форму запроса и права, затем сохраняет отзыв. Мутация и
// пересчёт рейтинга лавки коммитятся одной транзакцией в репозитории; до
// прохождения всех проверок никаких записей не происходит.
func (s *ReviewService) Create(ctx context.Context, userID uuid.UUID, stallID uuid.UUID, orderID *uuid.UUID, ratingValue float64, comment string) (*domain.Review, error) {
	log := s.log.With(zap.String("user_id", userID.String()), zap.String("stall_id", stallID.String()), zap.String("method", "Create"))

	if err := validatePayload(&ratingValue, &comment); err != nil {
		log.Warn("Invalid review payload", zap.Error(err))
		return nil, err
	}

	if err := s.validator.CanCreate(ctx, userID, stallID, orderID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:        uuid.New(),
		UserID:    userID,
		StallID:   stallID,
		OrderID:   orderID,
		Rating:    rating.Round(ratingValue),
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		log.Error("Failed to create review", zap.Error(err))
		return nil, err
	}

	s.invalidateStats(ctx, stallID)
	log.Info("Review created", zap.String("review_id", review.ID.String()))
	return review, nil
}

// GetByID возвращает отзыв по id.
func (s *ReviewService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByStall возвращает страницу отзывов лавки, новые первыми.
func (s *ReviewService) ListByStall(ctx context.Context, stallID uuid.UUID, skip, limit int) ([]*domain.ReviewWithAuthor, error) {
	log := s.log.With(zap.String("stall_id", stallID.String()), zap.String("method", "ListByStall"))

	exists, err := s.stalls.ExistsStall(ctx, stallID)
	if err != nil {
		log.Error("Failed to check stall existence", zap.Error(err))
		return nil, fmt.Errorf("failed to check stall existence: %w", err)
	}
	if !exists {
		log.Warn("Stall not found")
		return nil, domain.ErrStallNotFound
	}

	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	reviews, err := s.repo.ListByStall(ctx, stallID, skip, limit)
	if err != nil {
		log.Error("Failed to list reviews by stall", zap.Error(err))
		return nil, fmt.Errorf("failed to list reviews by stall: %w", err)
	}
	return reviews, nil
}

// ListByUser возвращает все отзывы пользователя, новые первыми.
func (s *ReviewService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Review, error) {
	reviews, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.log.Error("Failed to list reviews by user", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list reviews by user: %w", err)
	}
	return reviews, nil
}

// Update применяет к отзыву только присутствующие поля патча. Пересчёт
// рейтинга идёт безусловно, даже если поменялся только комментарий:
// пересчёт дешёвый и идемпотентный.
func (s *ReviewService) Update(ctx context.Context, userID uuid.UUID, reviewID uuid.UUID, patch domain.ReviewPatch) (*domain.Review, error) {
	log := s.log.With(zap.String("review_id", reviewID.String()), zap.String("method", "Update"))

	if err := validatePayload(patch.Rating, patch.Comment); err != nil {
		log.Warn("Invalid review patch", zap.Error(err))
		return nil, err
	}

	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.CanMutate(userID, review); err != nil {
		return nil, err
	}

	if patch.Rating != nil {
		review.Rating = rating.Round(*patch.Rating)
	}
	if patch.Comment != nil {
		review.Comment = *patch.Comment
	}
	review.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, review); err != nil {
		log.Error("Failed to update review", zap.Error(err))
		return nil, err
	}

	s.invalidateStats(ctx, review.StallID)
	log.Info("Review updated")
	return review, nil
}

// Delete удаляет отзыв его автора. Id лавки снимается до удаления, чтобы
// пересчитать её агрегат.
func (s *ReviewService) Delete(ctx context.Context, userID uuid.UUID, reviewID uuid.UUID) error {
	log := s.log.With(zap.String("review_id", reviewID.String()), zap.String("method", "Delete"))

	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := s.validator.CanMutate(userID, review); err != nil {
		return err
	}

	stallID := review.StallID
	if err := s.repo.Delete(ctx, reviewID, stallID); err != nil {
		log.Error("Failed to delete review", zap.Error(err))
		return err
	}

	s.invalidateStats(ctx, stallID)
	log.Info("Review deleted")
	return nil
}

// StatsByStall считает среднее, количество и гистограмму по актуальному
// набору отзывов лавки. Результат ненадолго кэшируется; каждая мутация
// отзывов лавки сбрасывает кэш.
func (s *ReviewService) StatsByStall(ctx context.Context, stallID uuid.UUID) (*domain.StallRatingStats, error) {
	log := s.log.With(zap.String("stall_id", stallID.String()), zap.String("method", "StatsByStall"))

	exists, err := s.stalls.ExistsStall(ctx, stallID)
	if err != nil {
		log.Error("Failed to check stall existence", zap.Error(err))
		return nil, fmt.Errorf("failed to check stall existence: %w", err)
	}
	if !exists {
		log.Warn("Stall not found")
		return nil, domain.ErrStallNotFound
	}

	key := statsCacheKey(stallID)
	var cached domain.StallRatingStats
	if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
		log.Warn("Failed to read stats cache", zap.Error(err))
	} else if ok {
		log.Debug("Stats served from cache")
		return &cached, nil
	}

	ratings, err := s.repo.RatingsByStall(ctx, stallID)
	if err != nil {
		log.Error("Failed to get ratings by stall", zap.Error(err))
		return nil, fmt.Errorf("failed to get ratings by stall: %w", err)
	}

	stats := &domain.StallRatingStats{
		StallID:       stallID,
		AverageRating: rating.Average(ratings),
		TotalReviews:  len(ratings),
		Distribution:  rating.Distribution(ratings),
	}

	if err := s.cache.Set(ctx, key, stats, statsCacheTTL); err != nil {
		log.Warn("Failed to write stats cache", zap.Error(err))
	}
	return stats, nil
}

func (s *ReviewService) invalidateStats(ctx context.Context, stallID uuid.UUID) {
	if err := s.cache.Delete(ctx, statsCacheKey(stallID)); err != nil {
		s.log.Warn("Failed to invalidate stats cache", zap.String("stall_id", stallID.String()), zap.Error(err))
	}
}

func statsCacheKey(stallID uuid.UUID) string {
	return "stall_stats:" + stallID.String()
}

// validatePayload проверяет границы рейтинга и длину комментария; nil-поля
// пропускаются, так что функция годится и для создания, и для патча.
func validatePayload(ratingValue *float64, comment *string) error {
	if ratingValue != nil && (*ratingValue < minRating || *ratingValue > maxRating) {
		return domain.ErrInvalidRating
	}
	if comment != nil && utf8.RuneCountInString(*comment) > maxCommentLength {
		return domain.ErrCommentTooLong
	}
	return nil
}
