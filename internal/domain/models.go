package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrStallNotFound означает, что лавка с таким id не существует
	ErrStallNotFound = errors.New("stall not found")

	// ErrOrderNotFound означает, что заказ не найден или принадлежит другому пользователю
	ErrOrderNotFound  = errors.New("order not found")
	ErrReviewNotFound = errors.New("review not found")
	ErrUserNotFound   = errors.New("user not found")

	ErrOrderStallMismatch = errors.New("order is not from this stall")
	ErrOrderNotCompleted  = errors.New("order is not completed")

	ErrDuplicateOrderReview = errors.New("review already exists for this order")
	ErrDuplicateStallReview = errors.New("stall already reviewed by this user")

	ErrNotReviewOwner = errors.New("user is not the review owner")

	ErrInvalidRating  = errors.New("rating must be between 1.0 and 5.0")
	ErrCommentTooLong = errors.New("comment exceeds maximum length")
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Review - отзыв пользователя о лавке. OrderID заполнен только у отзывов,
// привязанных к конкретному выполненному заказу.
type Review struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	StallID   uuid.UUID
	OrderID   *uuid.UUID
	Rating    float64
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewWithAuthor - отзыв вместе с именем и почтой автора для списков.
type ReviewWithAuthor struct {
	Review
	AuthorName  string
	AuthorEmail string
}

// ReviewPatch - частичное обновление отзыва; nil-поля не меняются.
type ReviewPatch struct {
	Rating  *float64
	Comment *string
}

type Stall struct {
	ID     uuid.UUID
	Name   string
	Rating float64
}

type Order struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	StallID uuid.UUID
	Status  OrderStatus
}

type User struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// StallRatingStats - свежая статистика рейтинга лавки, посчитанная по
// полному набору её отзывов.
type StallRatingStats struct {
	StallID       uuid.UUID
	AverageRating float64
	TotalReviews  int
	Distribution  map[int]int
}
