package main

import (
	"context"
	"errors"
	"go.uber.org/zap"
	systemLog "log"
	"net/http"
	"strings"

	"campuseats/internal/config"
	"campuseats/internal/repository/postgres"
	"campuseats/internal/service"
	"campuseats/internal/transport/http/handler"
	"campuseats/internal/transport/http/router"
	"campuseats/pkg/cache"
	"campuseats/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	ctx := context.Background()
	cfg := config.MustLoad()
	log, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			systemLog.Printf("failed to sync logger: %v", err)
		}
	}()

	storeRepo, err := postgres.NewStore(ctx, cfg.UserRepo, cfg.PasswordRepo, cfg.HostRepo, cfg.PortRepo, cfg.DBName, cfg.SSLMode, log)
	if err != nil {
		log.Error("Failed to initialized to postgres", zap.Error(err))
		return
	}
	reviewRepo := storeRepo.ReviewRepository
	stallRepo := storeRepo.StallRepository
	orderRepo := storeRepo.OrderRepository
	userRepo := storeRepo.UserRepository

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", zap.Error(err))
		return
	}

	validator := service.NewEligibilityValidator(&reviewRepo, &stallRepo, &orderRepo, log)
	reviewSrv := service.NewReviewService(&reviewRepo, &stallRepo, validator, cache.New(rdb), log)

	handl := handler.NewHandler(*reviewSrv)
	rout := router.NewRouter(handl, cfg.LogLevel, cfg.JWTSecret, &userRepo, strings.Split(cfg.CORSOrigins, ","), log)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: rout.GetEngine(),
	}
	log.Info("Starting server", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Failed to listen and server", zap.Error(err))
		return
	}
}
