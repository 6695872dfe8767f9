package service

import (
	"context"
	"sort"
	"time"

	"campuseats/internal/domain"
	"campuseats/internal/rating"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeStore - память вместо Postgres: реализует ReviewRepo, ReviewChecker,
// StallProvider и OrderProvider и, как настоящий репозиторий, пересчитывает
// рейтинг лавки при каждой мутации.
type fakeStore struct {
	reviews map[uuid.UUID]*domain.Review
	stalls  map[uuid.UUID]*domain.Stall
	orders  map[uuid.UUID]*domain.Order
	users   map[uuid.UUID]*domain.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reviews: make(map[uuid.UUID]*domain.Review),
		stalls:  make(map[uuid.UUID]*domain.Stall),
		orders:  make(map[uuid.UUID]*domain.Order),
		users:   make(map[uuid.UUID]*domain.User),
	}
}

func (f *fakeStore) addStall(name string) uuid.UUID {
	id := uuid.New()
	f.stalls[id] = &domain.Stall{ID: id, Name: name}
	return id
}

func (f *fakeStore) addUser(name string) uuid.UUID {
	id := uuid.New()
	f.users[id] = &domain.User{ID: id, Name: name, Email: name + "@campus.edu"}
	return id
}

func (f *fakeStore) addOrder(userID, stallID uuid.UUID, status domain.OrderStatus) uuid.UUID {
	id := uuid.New()
	f.orders[id] = &domain.Order{ID: id, UserID: userID, StallID: stallID, Status: status}
	return id
}

func (f *fakeStore) Create(_ context.Context, review *domain.Review) error {
	stored := *review
	f.reviews[review.ID] = &stored
	f.recompute(review.StallID)
	return nil
}

func (f *fakeStore) Update(_ context.Context, review *domain.Review) error {
	if _, ok := f.reviews[review.ID]; !ok {
		return domain.ErrReviewNotFound
	}
	stored := *review
	f.reviews[review.ID] = &stored
	f.recompute(review.StallID)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID, stallID uuid.UUID) error {
	if _, ok := f.reviews[id]; !ok {
		return domain.ErrReviewNotFound
	}
	delete(f.reviews, id)
	f.recompute(stallID)
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Review, error) {
	review, ok := f.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	copied := *review
	return &copied, nil
}

func (f *fakeStore) ListByStall(_ context.Context, stallID uuid.UUID, skip, limit int) ([]*domain.ReviewWithAuthor, error) {
	var result []*domain.ReviewWithAuthor
	for _, review := range f.reviews {
		if review.StallID != stallID {
			continue
		}
		copied := *review
		entry := &domain.ReviewWithAuthor{Review: copied}
		if author, ok := f.users[review.UserID]; ok {
			entry.AuthorName = author.Name
			entry.AuthorEmail = author.Email
		}
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if skip >= len(result) {
		return nil, nil
	}
	result = result[skip:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Review, error) {
	var result []*domain.Review
	for _, review := range f.reviews {
		if review.UserID != userID {
			continue
		}
		copied := *review
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeStore) RatingsByStall(_ context.Context, stallID uuid.UUID) ([]float64, error) {
	var ratings []float64
	for _, review := range f.reviews {
		if review.StallID == stallID {
			ratings = append(ratings, review.Rating)
		}
	}
	return ratings, nil
}

func (f *fakeStore) ExistsForOrder(_ context.Context, orderID uuid.UUID) (bool, error) {
	for _, review := range f.reviews {
		if review.OrderID != nil && *review.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ExistsStandalone(_ context.Context, userID uuid.UUID, stallID uuid.UUID) (bool, error) {
	for _, review := range f.reviews {
		if review.UserID == userID && review.StallID == stallID && review.OrderID == nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ExistsStall(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.stalls[id]
	return ok, nil
}

func (f *fakeStore) GetUserOrder(_ context.Context, orderID uuid.UUID, userID uuid.UUID) (*domain.Order, error) {
	order, ok := f.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeStore) recompute(stallID uuid.UUID) {
	stall, ok := f.stalls[stallID]
	if !ok {
		return
	}
	ratings, _ := f.RatingsByStall(context.Background(), stallID)
	stall.Rating = rating.Average(ratings)
}

func (f *fakeStore) seedReview(userID, stallID uuid.UUID, value float64, createdAt time.Time) uuid.UUID {
	id := uuid.New()
	f.reviews[id] = &domain.Review{
		ID:        id,
		UserID:    userID,
		StallID:   stallID,
		Rating:    value,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	f.recompute(stallID)
	return id
}

type noopCache struct{}

func (noopCache) Get(context.Context, string, any) (bool, error) { return false, nil }

func (noopCache) Set(context.Context, string, any, time.Duration) error { return nil }

func (noopCache) Delete(context.Context, string) error { return nil }

func newTestService(f *fakeStore) *ReviewService {
	log := zap.NewNop()
	validator := NewEligibilityValidator(f, f, f, log)
	return NewReviewService(f, f, validator, noopCache{}, log)
}
