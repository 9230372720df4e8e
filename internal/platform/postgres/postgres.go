package postgres

import (
	"context"
	"fmt"
	"time"

	"slotscout/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Options struct {
	DSN string
}

type Service struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func New(ctx context.Context, opts Options) (*Service, error) {
	cfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConnLifetime = 5 * time.Minute
	cfg.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Service{pool: pool, log: logger.New("Postgres")}, nil
}

func (s *Service) Close()              { s.pool.Close() }
func (s *Service) Pool() *pgxpool.Pool { return s.pool }

func (s *Service) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		s.log.LogErrorf("Postgres health check failed: %v", err)
		return fmt.Errorf("postgres ping failed: %v", err)
	}
	return nil
}
