package handler

import (
	"errors"
	"go.uber.org/zap"
	"net/http"
	"strconv"

	"campuseats/internal/domain"
	"campuseats/internal/service"
	"campuseats/internal/transport/http/dto"
	"campuseats/internal/transport/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	codeInternalError     = "INTERNAL_ERROR"
	codeInvalidBody       = "INVALID_BODY"
	codeInvalidRating     = "INVALID_RATING"
	codeCommentTooLong    = "COMMENT_TOO_LONG"
	codeNotFound          = "NOT_FOUND"
	codeOrderMismatch     = "ORDER_STALL_MISMATCH"
	codeOrderNotCompleted = "ORDER_NOT_COMPLETED"
	codeDuplicateReview   = "DUPLICATE_REVIEW"
	codeForbidden         = "FORBIDDEN"
)

type Handler struct {
	reviewService service.ReviewService
}

func NewHandler(reviewService service.ReviewService) *Handler {
	return &Handler{
		reviewService: reviewService,
	}
}

func (h *Handler) CreateReview(c *gin.Context) {
	log := c.MustGet("logger").(*zap.Logger)
	userID := middleware.UserID(c)

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Failed to decode request body", zap.Error(err))
		h.responseError(c, http.StatusBadRequest, codeInvalidBody, "invalid request body")
		return
	}
	stallID, err := uuid.Parse(req.StallID)
	if err != nil {
		log.Warn("Failed to parse stall ID", zap.String("stall_id", req.StallID), zap.Error(err))
		h.responseError(c, http.StatusBadRequest, codeInvalidBody, "invalid stall ID")
		return
	}
	var orderID *uuid.UUID
	if req.OrderID != nil {
		parsed, err := uuid.Parse(*req.OrderID)
		if err != nil {
			log.Warn("Failed to parse order ID", zap.String("order_id", *req.OrderID), zap.Error(err))
			h.responseError(c, http.StatusBadRequest, codeInvalidBody, "invalid order ID")
			return
		}
		orderID = &parsed
	}

	review, err := h.reviewService.Create(c.Request.Context(), userID, stallID, orderID, *req.Rating, req.Comment)
	if err != nil {
		h.mapCreateError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromReview(review))
}

func (h *Handler) mapCreateError(c *gin.Context, log *zap.Logger, err error) {
	if errors.Is(err, domain.ErrInvalidRating) {
		h.responseError(c, http.StatusBadRequest, codeInvalidRating, "rating must be between 1.0 and 5.0")
		return
	}
	if errors.Is(err, domain.ErrCommentTooLong) {
		h.responseError(c, http.StatusBadRequest, codeCommentTooLong, "comment must not exceed 1000 characters")
		return
	}
	if errors.Is(err, domain.ErrStallNotFound) {
		h.responseError(c, http.StatusNotFound, codeNotFound, "stall not found")
		return
	}
	if errors.Is(err, domain.ErrOrderNotFound) {
		h.responseError(c, http.StatusNotFound, codeNotFound, "order not found")
		return
	}
	if errors.Is(err, domain.ErrOrderStallMismatch) {
		h.responseError(c, http.StatusBadRequest, codeOrderMismatch, "order is not from this stall")
		return
	}
	if errors.Is(err, domain.ErrOrderNotCompleted) {
		h.responseError(c, http.StatusBadRequest, codeOrderNotCompleted, "can only review completed orders")
		return
	}
	if errors.Is(err, domain.ErrDuplicateOrderReview) {
		h.responseError(c, http.StatusConflict, codeDuplicateReview, "review already exists for this order")
		return
	}
	if errors.Is(err, domain.ErrDuplicateStallReview) {
		h.responseError(c, http.StatusConflict, codeDuplicateReview, "you have already reviewed this stall")
		return
	}
	log.Error("Failed to create review", zap.Error(err))
	h.responseError(c, http.StatusInternalServerError, codeInternalError, "failed to create review")
}

func (h *Handler) ListStallReviews(c *gin.Context) {
	log := c.MustGet("logger").(*zap.Logger)

	stallID, err := uuid.Parse(c.Param("stallId"))
	if err != nil {
		log.Warn("Invalid stall ID path parameter", zap.String("stall_id", c.Param("stallId")), zap.Error(err))
		h.responseError(c, http.StatusBadRequest, codeInvalidBody, "invalid stall ID")
		return
	}
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil {
		log.Warn("Invalid skip query parameter", zap.String("skip", c.Query("skip")), zap.Error(err))
		h.responseError(c, http.StatusBadRequest, codeInvalidBody, "invalid skip parameter")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		log.Warn("Invalid limit query parameter", zap.String("limit", c.Query("limit")), zap.Error(err))
		h.responseError(c, http.StatusBadRequest, codeInvalidBody, "invalid limit parameter")
		return
	}

	reviews, err := h.reviewService.ListByStall(c.Request.Context(), stallID, skip, limit)
	if err != nil {
		if errors.Is(err, domain.ErrStallNotFound) {
			log.Warn("Stall not found", zap.String("stall_id", stallID.String()))
			h.responseError(c, http.StatusNotFound, codeNotFound, "stall not found")
			return
		}
		log.Error("Failed to list stall reviews", zap.Error(err))
		h.responseError(c, http.StatusInternalServerError, codeInternalError, "failed to list stall reviews")
		return
	}
	c.JSON(http.StatusOK, dto.FromReviewsWithAuthor(reviews))
}

func (h *Handler) GetStallStats(c *gin.Context) {
	log := c.MustGet("logger").(*zap.Logger)

	stallID, err := uuid.Parse(c.Param("stallId"))
	if err != nil {
		log.Warn("Invalid stall ID path parameter", zap.String("stall_id", c.Param("stallId")), zap.Error(err))
		h.responseError(c, http.StatusBadRequest, codeInvalidBody, "invalid stall ID")
		return
	}

	stats, err := h.reviewService.StatsByStall(c.Request.Context(), stallID)
	if err != nil {
		if errors.Is(err, domain.ErrStallNotFound) {
			log.Warn("Stall not found", zap.String("stall_id", stallID.String()))
			h.responseError(c, http.StatusNotFound, codeNotFound, "stall not found")
			return
		}
		log.Error("Failed to get stall stats", zap.Error(err))
		h.responseError(c, http.StatusInternalServerError, codeInternalError, "failed to get stall stats")
		return
	}
	c.JSON(http.StatusOK, dto.FromStallStats(stats))
}

func (h *Handler) ListMyReviews(c *gin.Context) {
	log := c.MustGet("logger").(*zap.Logger)
	userID := middleware.UserID(c)

	reviews, err := h.reviewService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Error("Failed to list user reviews", zap.Error(err))
		h.responseError(c, http.StatusInternalServerError, codeInternalError, "failed to list user reviews")
		return
	}
	c.JSON(http.StatusOK, dto.FromReviews(reviews))
}

func (h *Handler) GetReview(c *gin.Context) {
	log := c.MustGet("logger").(*zap.Logger)

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid review ID path parameter", zap.String("id", c.Param("id")), zap.Error(err))
		h.responseError(c, http.StatusBadRequest, codeInvalidBody, "invalid review ID")
		return
	}

	review, err := h.reviewService.GetByID(c.Request.Context(), reviewID)
	if err != nil {
		if errors.Is(err, domain.ErrReviewNotFound) {
			log.Warn("Review not found", zap.String("id", reviewID.String()))
			h.responseError(c, http.StatusNotFound, codeNotFound, "review not found")
			return
		}
		log.Error("Failed to get review", zap.Error(err))
		h.responseError(c, http.StatusInternalServerError, codeInternalError, "failed to get review")
		return
	}
	c.JSON(http.StatusOK, dto.FromReview(review))
}

func (h *Handler) UpdateReview(c *gin.Context) {
	log := c.MustGet("logger").(*zap.Logger)
	userID := middleware.UserID(c)

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid review ID path parameter", zap.String("id", c.Param("id")), zap.Error(err))
		h.responseError(c, http.StatusBadRequest, codeInvalidBody, "invalid review ID")
		return
	}
	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Failed to decode request body", zap.Error(err))
		h.responseError(c, http.StatusBadRequest, codeInvalidBody, "invalid request body")
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), userID, reviewID, domain.ReviewPatch{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRating) {
			h.responseError(c, http.StatusBadRequest, codeInvalidRating, "rating must be between 1.0 and 5.0")
			return
		}
		if errors.Is(err, domain.ErrCommentTooLong) {
			h.responseError(c, http.StatusBadRequest, codeCommentTooLong, "comment must not exceed 1000 characters")
			return
		}
		if errors.Is(err, domain.ErrReviewNotFound) {
			log.Warn("Review not found", zap.String("id", reviewID.String()))
			h.responseError(c, http.StatusNotFound, codeNotFound, "review not found")
			return
		}
		if errors.Is(err, domain.ErrNotReviewOwner) {
			log.Warn("Update attempted by non-owner", zap.String("id", reviewID.String()))
			h.responseError(c, http.StatusForbidden, codeForbidden, "not authorized to update this review")
			return
		}
		log.Error("Failed to update review", zap.Error(err))
		h.responseError(c, http.StatusInternalServerError, codeInternalError, "failed to update review")
		return
	}
	c.JSON(http.StatusOK, dto.FromReview(review))
}

func (h *Handler) DeleteReview(c *gin.Context) {
	log := c.MustGet("logger").(*zap.Logger)
	userID := middleware.UserID(c)

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("Invalid review ID path parameter", zap.String("id", c.Param("id")), zap.Error(err))
		h.responseError(c, http.StatusBadRequest, codeInvalidBody, "invalid review ID")
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), userID, reviewID); err != nil {
		if errors.Is(err, domain.ErrReviewNotFound) {
			log.Warn("Review not found", zap.String("id", reviewID.String()))
			h.responseError(c, http.StatusNotFound, codeNotFound, "review not found")
			return
		}
		if errors.Is(err, domain.ErrNotReviewOwner) {
			log.Warn("Delete attempted by non-owner", zap.String("id", reviewID.String()))
			h.responseError(c, http.StatusForbidden, codeForbidden, "not authorized to delete this review")
			return
		}
		log.Error("Failed to delete review", zap.Error(err))
		h.responseError(c, http.StatusInternalServerError, codeInternalError, "failed to delete review")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) responseError(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.ErrorResponse{
		Error: dto.ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}
