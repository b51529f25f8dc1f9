// config_watcher.go: hot reload of the library configuration with Argus
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plugincommons

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
	"github.com/agilira/go-timecache"
)

// ConfigChangeHandler is called after a new configuration has been accepted.
// old is nil for the initial load.
type ConfigChangeHandler func(old, new *LibraryConfig)

// ConfigWatcherOptions tunes the file watcher.
type ConfigWatcherOptions struct {
	// Poll interval for file change detection
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// Cache TTL for file stat operations
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// Audit configuration for tracking configuration changes
	AuditConfig argus.AuditConfig `json:"audit_config" yaml:"audit_config"`

	// Custom error handler for watcher errors
	ErrorHandler func(error, string) `json:"-" yaml:"-"`
}

// DefaultConfigWatcherOptions returns defaults suited to a rarely changing file.
// Auditing is off; enable it by filling AuditConfig.
func DefaultConfigWatcherOptions() ConfigWatcherOptions {
	return ConfigWatcherOptions{
		PollInterval: 10 * time.Second,
		CacheTTL:     5 * time.Second,
		AuditConfig: argus.AuditConfig{
			Enabled:  false,
			MinLevel: argus.AuditInfo,
		},
	}
}

// ConfigWatcherStats reports reload activity.
type ConfigWatcherStats struct {
	Reloads        int64
	FailedReloads  int64
	LastReloadTime time.Time
}

// ConfigWatcher keeps a LibraryConfig in sync with its file.
//
// A reload that fails to parse or validate is logged and discarded; the last
// good configuration stays current. Stop is permanent.
//
// Usage example:
//
//	watcher, err := NewConfigWatcher("/etc/plugin-commons/library.yaml", DefaultConfigWatcherOptions(), logger)
//	if err != nil {
//	    return err
//	}
//	watcher.OnChange(func(_, cfg *LibraryConfig) { gen, _ = NewGeneratorFromConfig(cfg.Credentials) })
//	if err := watcher.Start(ctx); err != nil {
//	    return err
//	}
//	defer watcher.Stop()
type ConfigWatcher struct {
	logger Logger

	watcher     *argus.Watcher
	auditLogger *argus.AuditLogger

	configPath    string
	currentConfig atomic.Pointer[LibraryConfig]

	handlersMu sync.RWMutex
	handlers   []ConfigChangeHandler

	reloads        atomic.Int64
	failedReloads  atomic.Int64
	lastReloadNano atomic.Int64

	enabled  atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
	mutex    sync.Mutex

	options ConfigWatcherOptions
}

// NewConfigWatcher creates a watcher for configPath. Nothing is read until Start.
func NewConfigWatcher(configPath string, options ConfigWatcherOptions, logger any) (*ConfigWatcher, error) {
	internalLogger := NewLogger(logger)

	var auditLogger *argus.AuditLogger
	if options.AuditConfig.Enabled {
		var err error
		auditLogger, err = argus.NewAuditLogger(options.AuditConfig)
		if err != nil {
			return nil, NewConfigWatcherError("failed to create audit logger", err)
		}
	}

	return &ConfigWatcher{
		logger:      internalLogger,
		watcher:     argus.New(createArgusConfig(options, internalLogger)),
		auditLogger: auditLogger,
		configPath:  configPath,
		options:     options,
	}, nil
}

func createArgusConfig(options ConfigWatcherOptions, logger Logger) argus.Config {
	return argus.Config{
		PollInterval:         options.PollInterval,
		CacheTTL:             options.CacheTTL,
		MaxWatchedFiles:      1,
		Audit:                options.AuditConfig,
		OptimizationStrategy: argus.OptimizationSingleEvent,
		ErrorHandler: func(err error, filepath string) {
			if options.ErrorHandler != nil {
				options.ErrorHandler(err, filepath)
			} else {
				logger.Error("Library config file watching error", "error", err, "file", filepath)
			}
		},
	}
}

// OnChange registers a handler for accepted configurations.
func (w *ConfigWatcher) OnChange(handler ConfigChangeHandler) {
	w.handlersMu.Lock()
	defer w.handlersMu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Start loads the initial configuration and begins watching the file.
func (w *ConfigWatcher) Start(ctx context.Context) error {
	if w.stopped.Load() {
		return NewConfigWatcherError("watcher has been permanently stopped and cannot be restarted", nil)
	}
	if err := ctx.Err(); err != nil {
		return NewConfigWatcherError("start cancelled", err)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.enabled.CompareAndSwap(false, true) {
		return NewConfigWatcherError("watcher is already running", nil)
	}

	initial, err := LoadLibraryConfig(w.configPath)
	if err != nil {
		w.enabled.Store(false)
		return err
	}
	w.accept(nil, initial)

	if err := w.watcher.Watch(w.configPath, w.handleConfigChange); err != nil {
		w.enabled.Store(false)
		return NewConfigWatcherError("failed to watch config file", err)
	}
	if err := w.watcher.Start(); err != nil {
		w.enabled.Store(false)
		return NewConfigWatcherError("failed to start file watcher", err)
	}

	w.logger.Info("Library configuration watcher started",
		"config_path", w.configPath,
		"poll_interval", w.options.PollInterval,
		"version", initial.Metadata.Version)
	w.auditEvent("library_config_watcher_started", map[string]interface{}{
		"config_path": w.configPath,
		"version":     initial.Metadata.Version,
	})
	return nil
}

// Stop halts watching. The watcher cannot be restarted.
func (w *ConfigWatcher) Stop() error {
	if w.stopped.Load() {
		return NewConfigWatcherError("watcher is already stopped", nil)
	}
	if !w.enabled.Load() {
		return NewConfigWatcherError("watcher is not running", nil)
	}

	var stopErr error
	ran := false
	w.stopOnce.Do(func() {
		ran = true
		w.mutex.Lock()
		defer w.mutex.Unlock()

		if !w.enabled.CompareAndSwap(true, false) {
			stopErr = NewConfigWatcherError("watcher is not running", nil)
			return
		}
		w.stopped.Store(true)

		if err := w.watcher.Stop(); err != nil {
			stopErr = NewConfigWatcherError("failed to stop file watcher", err)
			return
		}

		w.auditEvent("library_config_watcher_stopped", map[string]interface{}{
			"config_path": w.configPath,
		})
		if w.auditLogger != nil {
			if err := w.auditLogger.Close(); err != nil {
				w.logger.Warn("Failed to close audit logger during shutdown", "error", err)
			}
		}
		w.logger.Info("Library configuration watcher stopped", "config_path", w.configPath)
	})
	if !ran {
		return NewConfigWatcherError("watcher is already stopped", nil)
	}
	return stopErr
}

// IsRunning reports whether the watcher is active.
func (w *ConfigWatcher) IsRunning() bool {
	return w.enabled.Load() && !w.stopped.Load()
}

// Current returns the last accepted configuration, or nil before Start.
func (w *ConfigWatcher) Current() *LibraryConfig {
	return w.currentConfig.Load()
}

// Stats returns reload counters.
func (w *ConfigWatcher) Stats() ConfigWatcherStats {
	stats := ConfigWatcherStats{
		Reloads:       w.reloads.Load(),
		FailedReloads: w.failedReloads.Load(),
	}
	if nano := w.lastReloadNano.Load(); nano != 0 {
		stats.LastReloadTime = time.Unix(0, nano)
	}
	return stats
}

// handleConfigChange is the Argus callback for file events.
func (w *ConfigWatcher) handleConfigChange(event argus.ChangeEvent) {
	w.logger.Debug("Library configuration file change detected",
		"path", event.Path,
		"is_create", event.IsCreate,
		"is_delete", event.IsDelete,
		"is_modify", event.IsModify)

	if event.IsDelete {
		w.logger.Warn("Library configuration file was deleted, keeping current configuration", "path", event.Path)
		w.auditEvent("library_config_file_deleted", map[string]interface{}{"path": event.Path})
		return
	}

	next, err := LoadLibraryConfig(event.Path)
	if err != nil {
		w.failedReloads.Add(1)
		w.logger.Error("Rejected library configuration reload", "path", event.Path, "error", err)
		w.auditEvent("library_config_reload_failed", map[string]interface{}{
			"path":  event.Path,
			"error": err.Error(),
		})
		return
	}

	old := w.currentConfig.Load()
	w.accept(old, next)
	w.logger.Info("Library configuration reloaded",
		"path", event.Path,
		"old_version", configVersion(old),
		"new_version", next.Metadata.Version)
}

// accept stores config and notifies handlers.
func (w *ConfigWatcher) accept(old, config *LibraryConfig) {
	w.currentConfig.Store(config)
	w.reloads.Add(1)
	w.lastReloadNano.Store(timecache.CachedTimeNano())

	w.handlersMu.RLock()
	handlers := make([]ConfigChangeHandler, len(w.handlers))
	copy(handlers, w.handlers)
	w.handlersMu.RUnlock()

	for _, h := range handlers {
		h(old, config)
	}

	w.auditEvent("library_config_applied", map[string]interface{}{
		"path":        w.configPath,
		"old_version": configVersion(old),
		"new_version": config.Metadata.Version,
	})
}

func (w *ConfigWatcher) auditEvent(eventType string, context map[string]interface{}) {
	if w.auditLogger == nil {
		return
	}
	context["component"] = "library_config_watcher"
	context["pid"] = os.Getpid()
	w.auditLogger.LogSecurityEvent(eventType, "Library configuration change", context)
}

func configVersion(config *LibraryConfig) string {
	if config == nil {
		return "unknown"
	}
	return config.Metadata.Version
}
