package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"campuseats/internal/domain"
	"campuseats/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userIDKey = "userID"

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type UserProvider interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// AuthMiddleware проверяет bearer-токен, выданный сервисом аутентификации
// платформы (общий HS256-секрет), убеждается, что пользователь ещё
// существует, и кладёт его id в контекст.
func AuthMiddleware(secret string, users UserProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "missing or invalid Authorization header")
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := parseToken(tokenStr, secret)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		if _, err := users.GetUserByID(c.Request.Context(), userID); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				abortUnauthorized(c, "user no longer exists")
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error: dto.ErrorBody{Code: "INTERNAL_ERROR", Message: "failed to verify user"},
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID возвращает id аутентифицированного пользователя из контекста.
// Вызывается только за AuthMiddleware.
func UserID(c *gin.Context) uuid.UUID {
	return c.MustGet(userIDKey).(uuid.UUID)
}

func parseToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: dto.ErrorBody{Code: "UNAUTHORIZED", Message: message},
	})
}
