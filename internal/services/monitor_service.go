package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/critmon/pulsecheck/internal/cache"
	"github.com/critmon/pulsecheck/internal/models"
	"github.com/critmon/pulsecheck/internal/store"
)

// Aggregate cache keys. Single monitors are cached under their own id.
const (
	listCacheKey      = "all"
	dashboardCacheKey = "stats"
)

// MonitorOperations is the engine's external interface, adapted by the
// transport layers.
type MonitorOperations interface {
	Create(ctx context.Context, deviceID string, timeout int, alertEmail string) (*models.Monitor, error)
	CreateBatch(ctx context.Context, devices []models.DeviceSpec) (*models.BatchResult, error)
	Get(ctx context.Context, id string) (*models.Monitor, error)
	Heartbeat(ctx context.Context, id string) (*models.Monitor, error)
	HeartbeatByDevice(ctx context.Context, deviceID string) error
	Pause(ctx context.Context, id string) (*models.Monitor, error)
	Resume(ctx context.Context, id string) (*models.Monitor, error)
	ListAll(ctx context.Context) ([]models.Monitor, error)
	ListActive(ctx context.Context) ([]models.Monitor, error)
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
	Delete(ctx context.Context, id string) error
}

// MonitorService implements the heartbeat liveness engine on top of the
// persistence port, with a read-through/write-through cache in front of it.
type MonitorService struct {
	store      store.MonitorStore
	monitors   *cache.Cache[models.Monitor]
	lists      *cache.Cache[[]models.Monitor]
	dashboards *cache.Cache[models.DashboardStats]
	logger     zerolog.Logger

	// Per-id locks serialize read-modify-write cycles so concurrent
	// heartbeats on the same monitor never lose an update.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMonitorService initializes the engine. cacheSize and cacheTTL bound the
// cache layer; aggregate entries (list, dashboard) share the same policy.
func NewMonitorService(st store.MonitorStore, cacheSize int, cacheTTL time.Duration, logger zerolog.Logger) *MonitorService {
	return &MonitorService{
		store:      st,
		monitors:   cache.New[models.Monitor](cacheSize, cacheTTL),
		lists:      cache.New[[]models.Monitor](1, cacheTTL),
		dashboards: cache.New[models.DashboardStats](1, cacheTTL),
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// Create registers a monitor for a device and arms its timer. No duplicate
// device check is performed here; only batch registration rejects devices
// that already have a monitor.
func (s *MonitorService) Create(ctx context.Context, deviceID string, timeout int, alertEmail string) (*models.Monitor, error) {
	s.logger.Info().Str("device_id", deviceID).Int("timeout", timeout).Msg("Creating monitor")

	m := models.NewMonitor(deviceID, timeout, alertEmail)
	if err := s.store.Create(ctx, m); err != nil {
		return nil, err
	}
	s.monitors.Set(m.ID, *m)
	return m, nil
}

// CreateBatch registers a sequence of devices independently. A device that
// already has a monitor, or whose registration fails, produces a per-item
// error and never aborts its siblings.
func (s *MonitorService) CreateBatch(ctx context.Context, devices []models.DeviceSpec) (*models.BatchResult, error) {
	s.logger.Info().Int("devices", len(devices)).Msg("Creating batch monitors")

	result := &models.BatchResult{
		TotalRequested: len(devices),
		Created:        []models.Monitor{},
		Errors:         []models.BatchError{},
	}

	for _, spec := range devices {
		existing, err := s.store.FindByDeviceID(ctx, spec.DeviceID)
		if err != nil {
			result.Errors = append(result.Errors, models.BatchError{
				DeviceID: spec.DeviceID,
				Error:    fmt.Sprintf("Failed to create monitor: %v", err),
			})
			continue
		}
		if len(existing) > 0 {
			result.Errors = append(result.Errors, models.BatchError{
				DeviceID: spec.DeviceID,
				Error:    "Monitor already exists for device: " + spec.DeviceID,
			})
			continue
		}

		m, err := s.Create(ctx, spec.DeviceID, spec.Timeout, spec.AlertEmail)
		if err != nil {
			s.logger.Error().Err(err).Str("device_id", spec.DeviceID).Msg("Failed to create monitor in batch")
			result.Errors = append(result.Errors, models.BatchError{
				DeviceID: spec.DeviceID,
				Error:    fmt.Sprintf("Failed to create monitor: %v", err),
			})
			continue
		}
		result.Created = append(result.Created, *m)
	}

	result.Successful = len(result.Created)
	result.Failed = len(result.Errors)
	s.lists.Remove(listCacheKey)

	s.logger.Info().
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("Batch creation completed")
	return result, nil
}

// Get fetches a monitor, read-through cached by id.
func (s *MonitorService) Get(ctx context.Context, id string) (*models.Monitor, error) {
	if m, ok := s.monitors.Get(id); ok {
		return &m, nil
	}
	s.logger.Debug().Str("monitor_id", id).Msg("Fetching monitor from store")
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.monitors.Set(m.ID, *m)
	return m, nil
}

// Heartbeat rearms the monitor's timer from now.
func (s *MonitorService) Heartbeat(ctx context.Context, id string) (*models.Monitor, error) {
	s.logger.Debug().Str("monitor_id", id).Msg("Heartbeat received")
	return s.mutate(ctx, id, func(m *models.Monitor) {
		m.ResetTimer(time.Now().UTC())
	})
}

// HeartbeatByDevice rearms every monitor registered for the given device.
// It backs ingest paths where devices identify themselves by device id
// rather than monitor id.
func (s *MonitorService) HeartbeatByDevice(ctx context.Context, deviceID string) error {
	monitors, err := s.store.FindByDeviceID(ctx, deviceID)
	if err != nil {
		return err
	}
	if len(monitors) == 0 {
		return store.ErrNotFound
	}
	for _, m := range monitors {
		if _, err := s.Heartbeat(ctx, m.ID); err != nil {
			return err
		}
	}
	return nil
}

// Pause freezes expiry evaluation for the monitor.
func (s *MonitorService) Pause(ctx context.Context, id string) (*models.Monitor, error) {
	s.logger.Info().Str("monitor_id", id).Msg("Pausing monitor")
	return s.mutate(ctx, id, func(m *models.Monitor) {
		m.Pause()
	})
}

// Resume unfreezes the monitor and restarts its liveness window from now.
func (s *MonitorService) Resume(ctx context.Context, id string) (*models.Monitor, error) {
	s.logger.Info().Str("monitor_id", id).Msg("Resuming monitor")
	return s.mutate(ctx, id, func(m *models.Monitor) {
		m.Resume(time.Now().UTC())
	})
}

// ListAll returns every monitor, cached as one aggregate entry.
func (s *MonitorService) ListAll(ctx context.Context) ([]models.Monitor, error) {
	if monitors, ok := s.lists.Get(listCacheKey); ok {
		return monitors, nil
	}
	s.logger.Debug().Msg("Fetching all monitors from store")
	monitors, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.lists.Set(listCacheKey, monitors)
	return monitors, nil
}

// ListActive returns the monitors still registered and tracked. The active
// filter is a store predicate, so this read observes one consistent snapshot
// and is not cached.
func (s *MonitorService) ListActive(ctx context.Context) ([]models.Monitor, error) {
	return s.store.FindActive(ctx)
}

// Dashboard computes fleet-wide statistics from a single store snapshot,
// cached as one aggregate entry. Staleness is bounded by the cache TTL
// rather than by eviction on every mutation.
func (s *MonitorService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	if stats, ok := s.dashboards.Get(dashboardCacheKey); ok {
		return &stats, nil
	}
	s.logger.Debug().Msg("Calculating dashboard statistics")

	monitors, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stats := models.DashboardStats{}
	for _, m := range monitors {
		if m.IsActive && !m.IsPaused {
			stats.ActiveDevices++
		}
		if m.IsActive && m.IsExpired(now) {
			stats.DownDevices++
		}
	}
	stats.AlertsToday = stats.DownDevices
	if len(monitors) > 0 {
		uptime := float64(stats.ActiveDevices) / float64(len(monitors)) * 100.0
		stats.AverageUptime = math.Round(uptime*10.0) / 10.0
	}

	s.dashboards.Set(dashboardCacheKey, stats)
	return &stats, nil
}

// Delete removes the monitor from the store and evicts it from all caches.
func (s *MonitorService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.monitors.Remove(id)
	s.lists.Remove(listCacheKey)
	s.forgetLock(id)
	s.logger.Info().Str("monitor_id", id).Msg("Monitor deleted")
	return nil
}

// mutate runs a read-modify-write cycle on one monitor under its id lock.
// The cache is updated only after the store write succeeds.
func (s *MonitorService) mutate(ctx context.Context, id string, fn func(*models.Monitor)) (*models.Monitor, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(m)
	if err := s.store.Update(ctx, m); err != nil {
		return nil, err
	}
	s.monitors.Set(m.ID, *m)
	return m, nil
}

func (s *MonitorService) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

func (s *MonitorService) forgetLock(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
}
