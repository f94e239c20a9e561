package store

import (
	"context"
	"errors"
	"time"

	"github.com/critmon/pulsecheck/internal/models"
)

// ErrNotFound is returned when no monitor exists for the requested id.
var ErrNotFound = errors.New("monitor not found")

// MonitorStore is the persistence port the liveness engine depends on.
// Implementations must make Update atomic per row so that concurrent
// read-modify-write cycles on the same monitor do not lose writes.
type MonitorStore interface {
	Create(ctx context.Context, m *models.Monitor) error
	GetByID(ctx context.Context, id string) (*models.Monitor, error)
	FindByDeviceID(ctx context.Context, deviceID string) ([]models.Monitor, error)
	FindActive(ctx context.Context) ([]models.Monitor, error)
	FindExpired(ctx context.Context, now time.Time) ([]models.Monitor, error)
	Update(ctx context.Context, m *models.Monitor) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]models.Monitor, error)
}
