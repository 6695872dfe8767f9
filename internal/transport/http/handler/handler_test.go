package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"campuseats/internal/service"
	"campuseats/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// testEngine регистрирует хендлер с no-op логгером в контексте, как это
// делает LoggingMiddleware в боевом роутере.
func testEngine(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set("logger", zap.NewNop())
		c.Next()
	})
	engine.GET("/reviews/stall/:stallId", h.ListStallReviews)
	return engine
}

func TestListStallReviews_RejectsMalformedPagination(t *testing.T) {
	h := NewHandler(service.ReviewService{})
	engine := testEngine(h)
	stallID := uuid.New().String()

	cases := []struct {
		name  string
		query string
	}{
		{"non-numeric skip", "?skip=abc"},
		{"non-numeric limit", "?limit=ten"},
		{"fractional skip", "?skip=1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/reviews/stall/"+stallID+tc.query, nil)
			engine.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			var resp dto.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.Error.Code != "INVALID_BODY" {
				t.Fatalf("error code = %q, want INVALID_BODY", resp.Error.Code)
			}
		})
	}
}

func TestListStallReviews_RejectsMalformedStallID(t *testing.T) {
	h := NewHandler(service.ReviewService{})
	engine := testEngine(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reviews/stall/not-a-uuid", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
