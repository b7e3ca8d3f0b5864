package service

import (
	"context"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type HealthStatus struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

type DetailedHealthStatus struct {
	HealthStatus
	Database   string `json:"database"`
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
}

const (
	serviceName    = "askhub"
	serviceVersion = "1.0.0"
)

type HealthService struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewHealthService(db *pgxpool.Pool, logger *zap.Logger) *HealthService {
	return &HealthService{
		db:     db,
		logger: logger,
	}
}

// Basic reports process liveness without touching dependencies.
func (s *HealthService) Basic() HealthStatus {
	return HealthStatus{
		Status:    "healthy",
		Service:   serviceName,
		Version:   serviceVersion,
		Timestamp: time.Now().UTC(),
	}
}

// Detailed additionally pings the database.
func (s *HealthService) Detailed(ctx context.Context) DetailedHealthStatus {
	status := DetailedHealthStatus{
		HealthStatus: s.Basic(),
		Database:     "up",
		GoVersion:    runtime.Version(),
		Goroutines:   runtime.NumGoroutine(),
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.Ping(pingCtx); err != nil {
		s.logger.Warn("Database ping failed", zap.Error(err))
		status.Status = "unhealthy"
		status.Database = "down"
	}

	return status
}
