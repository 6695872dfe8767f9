package router

import (
	"time"

	"go.uber.org/zap"

	"campuseats/internal/transport/http/handler"
	"campuseats/internal/transport/http/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Router struct {
	rout        *gin.Engine
	h           *handler.Handler
	jwtSecret   string
	users       middleware.UserProvider
	corsOrigins []string
	log         *zap.Logger
}

func NewRouter(h *handler.Handler, mode string, jwtSecret string, users middleware.UserProvider, corsOrigins []string, log *zap.Logger) *Router {
	switch mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	router := &Router{
		rout:        gin.Default(),
		h:           h,
		jwtSecret:   jwtSecret,
		users:       users,
		corsOrigins: corsOrigins,
		log:         log.Named("router"),
	}
	router.setupRouter()

	return router
}

func (r *Router) setupRouter() {
	r.rout.Use(cors.New(cors.Config{
		AllowOrigins:     r.corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.rout.Use(middleware.LoggingMiddleware(r.log))

	r.addReviews(r.rout.Group(""))
}

func (r *Router) addReviews(rg *gin.RouterGroup) {
	reviews := rg.Group("/reviews")

	reviews.GET("/stall/:stallId", r.h.ListStallReviews)
	reviews.GET("/stall/:stallId/stats", r.h.GetStallStats)
	reviews.GET("/:id", r.h.GetReview)

	authed := reviews.Group("")
	authed.Use(middleware.AuthMiddleware(r.jwtSecret, r.users))

	authed.POST("", r.h.CreateReview)
	authed.GET("/user/my-reviews", r.h.ListMyReviews)
	authed.PUT("/:id", r.h.UpdateReview)
	authed.DELETE("/:id", r.h.DeleteReview)
}

func (r *Router) GetEngine() *gin.Engine {
	return r.rout
}

func (r *Router) Start(addr string) error {
	return r.rout.Run(addr)
}
