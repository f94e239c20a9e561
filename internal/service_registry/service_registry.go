package service_registry

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Service defines the lifecycle contract for background services.
type Service interface {
	Start() error
	Stop() error
}

// ServiceRegistry manages the lifecycle of the process's background
// services: registered in order, started in order, stopped in reverse.
type ServiceRegistry struct {
	services    map[string]Service
	serviceKeys []string
	Logger      zerolog.Logger
}

// NewServiceRegistry initializes a new service registry.
func NewServiceRegistry(logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services: make(map[string]Service),
		Logger:   logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// StartServices initiates all registered services in order. If a service
// fails to start, the ones already started are stopped again.
func (sr *ServiceRegistry) StartServices() error {
	started := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)
			for i := len(started) - 1; i >= 0; i-- {
				if stopErr := sr.services[started[i]].Stop(); stopErr != nil {
					sr.Logger.Error().Err(stopErr).Msgf("Failed to stop service: %s", started[i])
				}
			}
			return fmt.Errorf("failed to start service %s: %w", name, err)
		}
		started = append(started, name)
	}
	return nil
}

// StopServices stops all registered services in reverse registration order.
func (sr *ServiceRegistry) StopServices() error {
	var firstErr error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		sr.Logger.Info().Msgf("Stopping service: %s", name)
		if err := sr.services[name].Stop(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to stop service: %s", name)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
