package postgres

import (
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
)

type ReviewRepository struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

type StallRepository struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

type OrderRepository struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

type UserRepository struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

type Store struct {
	pool *pgxpool.Pool
	ReviewRepository
	StallRepository
	OrderRepository
	UserRepository
	log *zap.Logger
}

func NewStore(ctx context.Context, user string, password string, host string, port string, dbname string, sslmode string, log *zap.Logger) (*Store, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, dbname, sslmode)

	log = log.With(zap.String("dbname", dbname),
		zap.String("host:port", fmt.Sprintf("%s:%s", host, port)),
		zap.String("user", user),
	)

	log.Info("Connecting to PostgreSQL")

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		log.Error("Error parsing connection string", zap.Error(err))
		return nil, fmt.Errorf("error parsing connection string: %w", err)
	}
	config.MaxConns = 50
	config.HealthCheckPeriod = 30 * time.Second
	config.MinConns = 2

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		log.Error("Failed connecting to PostgreSQL", zap.Error(err))
		return nil, fmt.Errorf("error connecting to PostgreSQL: %w", err)
	}

	log.Info("Testing database connection")
	if err := db.Ping(ctx); err != nil {
		log.Error("failed pinging PostgreSQL", zap.Error(err))
		return nil, fmt.Errorf("failed pinging PostgreSQL: %w", err)
	}

	log.Info("Successfully connected to PostgreSQL")

	log.Info("Starting database migrations")

	if err := runMigrations(connStr); err != nil {
		log.Error("Failed to run migrations", zap.Error(err))
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}

	log.Info("Successfully migrated database")

	return &Store{
		pool:             db,
		ReviewRepository: ReviewRepository{pool: db, log: log},
		StallRepository:  StallRepository{pool: db, log: log},
		OrderRepository:  OrderRepository{pool: db, log: log},
		UserRepository:   UserRepository{pool: db, log: log},
		log:              log.Named("Repository"),
	}, nil
}

func (r *Store) Close() {
	r.log.Info("Closing database connection")
	r.pool.Close()
}

func runMigrations(connStr string) error {
	migratePath := os.Getenv("MIGRATE_PATH")
	if migratePath == "" {
		migratePath = "./migrations"
	}
	absPath, err := filepath.Abs(migratePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	absPath = filepath.ToSlash(absPath)
	migrateUrl := fmt.Sprintf("file://%s", absPath)
	m, err := migrate.New(migrateUrl, connStr)
	if err != nil {
		return fmt.Errorf("start migrations error %v", err)
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migration up error: %v", err)
	}
	return nil
}
