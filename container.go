// container.go: service lookup across two generations of the host container API
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plugincommons

import (
	"fmt"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// ModernContainerVersion is the first host version exposing the registry container.
const ModernContainerVersion = "2.2.0"

const (
	generationModern = "modern"
	generationLegacy = "legacy"
)

// ServiceContainer is the registry-style container offered by modern hosts.
type ServiceContainer interface {
	Get(id string) (any, error)
}

// LegacyResolver resolves services on hosts older than ModernContainerVersion.
type LegacyResolver func(id string) (any, error)

// ContainerShim hides which container generation the host provides.
//
// Hosts at or above ModernContainerVersion are served by the ServiceContainer,
// older ones by the LegacyResolver. The generation is chosen once, at
// construction. ContainerShim is safe for concurrent use as long as the
// underlying container is.
type ContainerShim struct {
	hostVersion *semver.Version
	modern      ServiceContainer
	legacy      LegacyResolver
	useModern   bool
	logger      Logger
}

// NewContainerShim creates a shim for a host running hostVersion.
//
// Either resolver may be nil; lookups through a missing generation fail with a
// container unavailable error.
func NewContainerShim(hostVersion string, modern ServiceContainer, legacy LegacyResolver, logger any) (*ContainerShim, error) {
	version, err := semver.NewVersion(hostVersion)
	if err != nil {
		return nil, NewInvalidHostVersionError(hostVersion, err)
	}
	threshold := semver.MustParse(ModernContainerVersion)

	return &ContainerShim{
		hostVersion: version,
		modern:      modern,
		legacy:      legacy,
		useModern:   !version.LessThan(threshold),
		logger:      NewLogger(logger),
	}, nil
}

// HostVersion returns the parsed host version.
func (c *ContainerShim) HostVersion() string {
	return c.hostVersion.String()
}

// UsesModernContainer reports whether lookups go through the ServiceContainer.
func (c *ContainerShim) UsesModernContainer() bool {
	return c.useModern
}

// Lookup resolves id and reports why it failed. A panicking resolver is
// reported as a not found error.
func (c *ContainerShim) Lookup(id string) (service any, err error) {
	defer func() {
		if r := recover(); r != nil {
			service = nil
			err = NewServiceNotFoundError(id, fmt.Errorf("resolver panic: %v", r))
		}
	}()

	var resolved any
	if c.useModern {
		if c.modern == nil {
			return nil, NewContainerUnavailableError(generationModern)
		}
		resolved, err = c.modern.Get(id)
	} else {
		if c.legacy == nil {
			return nil, NewContainerUnavailableError(generationLegacy)
		}
		resolved, err = c.legacy(id)
	}

	if err != nil {
		return nil, NewServiceNotFoundError(id, err)
	}
	if resolved == nil {
		return nil, NewServiceNotFoundError(id, nil)
	}
	return resolved, nil
}

// GetFromContainer returns the service registered under id, or nil when it
// cannot be resolved for any reason.
func (c *ContainerShim) GetFromContainer(id string) any {
	service, err := c.Lookup(id)
	if err != nil {
		c.logger.Debug("Container lookup failed",
			"service_id", id,
			"host_version", c.HostVersion(),
			"error", err)
		return nil
	}
	return service
}

// ContainerHas reports whether id resolves to a service.
func (c *ContainerShim) ContainerHas(id string) bool {
	return c.GetFromContainer(id) != nil
}

// Resolve looks up id and asserts the result to T.
func Resolve[T any](c *ContainerShim, id string) (T, bool) {
	var zero T
	service := c.GetFromContainer(id)
	if service == nil {
		return zero, false
	}
	typed, ok := service.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// MapContainer is a thread-safe, map-backed ServiceContainer.
type MapContainer struct {
	mu       sync.RWMutex
	services map[string]any
}

// NewMapContainer creates an empty container.
func NewMapContainer() *MapContainer {
	return &MapContainer{services: make(map[string]any)}
}

// Set registers service under id, replacing any previous entry.
func (m *MapContainer) Set(id string, service any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[id] = service
}

// Get implements ServiceContainer.
func (m *MapContainer) Get(id string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	service, ok := m.services[id]
	if !ok {
		return nil, fmt.Errorf("no service registered for %q", id)
	}
	return service, nil
}

// Resolver adapts the container to the LegacyResolver signature.
func (m *MapContainer) Resolver() LegacyResolver {
	return m.Get
}
