package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/critmon/pulsecheck/internal/models"
)

// MockMonitorStore is a testify mock for the persistence port.
type MockMonitorStore struct {
	mock.Mock
}

func (m *MockMonitorStore) Create(ctx context.Context, mon *models.Monitor) error {
	args := m.Called(ctx, mon)
	return args.Error(0)
}

func (m *MockMonitorStore) GetByID(ctx context.Context, id string) (*models.Monitor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Monitor), args.Error(1)
}

func (m *MockMonitorStore) FindByDeviceID(ctx context.Context, deviceID string) ([]models.Monitor, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Monitor), args.Error(1)
}

func (m *MockMonitorStore) FindActive(ctx context.Context) ([]models.Monitor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Monitor), args.Error(1)
}

func (m *MockMonitorStore) FindExpired(ctx context.Context, now time.Time) ([]models.Monitor, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Monitor), args.Error(1)
}

func (m *MockMonitorStore) Update(ctx context.Context, mon *models.Monitor) error {
	args := m.Called(ctx, mon)
	return args.Error(0)
}

func (m *MockMonitorStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMonitorStore) ListAll(ctx context.Context) ([]models.Monitor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Monitor), args.Error(1)
}

// MockNotifier is a testify mock for the alert sink.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyDown(mon *models.Monitor, detectedAt time.Time) error {
	args := m.Called(mon, detectedAt)
	return args.Error(0)
}
