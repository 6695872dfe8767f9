package dto

import (
	"time"

	"campuseats/internal/domain"
)

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateReviewRequest struct {
	StallID string   `json:"stall_id" binding:"required"`
	OrderID *string  `json:"order_id"`
	Rating  *float64 `json:"rating" binding:"required"`
	Comment string   `json:"comment"`
}

type UpdateReviewRequest struct {
	Rating  *float64 `json:"rating"`
	Comment *string  `json:"comment"`
}

type ReviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	StallID   string    `json:"stall_id"`
	OrderID   *string   `json:"order_id,omitempty"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReviewWithAuthorResponse struct {
	ReviewResponse
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

type StallRatingStatsResponse struct {
	StallID            string      `json:"stall_id"`
	AverageRating      float64     `json:"average_rating"`
	TotalReviews       int         `json:"total_reviews"`
	RatingDistribution map[int]int `json:"rating_distribution"`
}

// FromReview преобразует доменный отзыв в DTO ответа.
func FromReview(review *domain.Review) *ReviewResponse {
	if review == nil {
		return nil
	}
	resp := &ReviewResponse{
		ID:        review.ID.String(),
		UserID:    review.UserID.String(),
		StallID:   review.StallID.String(),
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
	if review.OrderID != nil {
		orderID := review.OrderID.String()
		resp.OrderID = &orderID
	}
	return resp
}

func FromReviews(reviews []*domain.Review) []*ReviewResponse {
	responses := make([]*ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, FromReview(review))
	}
	return responses
}

func FromReviewsWithAuthor(reviews []*domain.ReviewWithAuthor) []*ReviewWithAuthorResponse {
	responses := make([]*ReviewWithAuthorResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, &ReviewWithAuthorResponse{
			ReviewResponse: *FromReview(&review.Review),
			UserName:       review.AuthorName,
			UserEmail:      review.AuthorEmail,
		})
	}
	return responses
}

func FromStallStats(stats *domain.StallRatingStats) *StallRatingStatsResponse {
	return &StallRatingStatsResponse{
		StallID:            stats.StallID.String(),
		AverageRating:      stats.AverageRating,
		TotalReviews:       stats.TotalReviews,
		RatingDistribution: stats.Distribution,
	}
}
