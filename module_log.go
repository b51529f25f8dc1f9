// module_log.go: detection of the module-specific logging capability
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plugincommons

// ModuleLogger is implemented by plugin modules that keep their own log stream.
type ModuleLogger interface {
	// LogPrefix returns the prefix written in front of every module log entry
	LogPrefix() string

	// DebuggingActivated reports whether debug entries should be written
	DebuggingActivated() bool
}

// ModuleLogInterface returns module as a ModuleLogger when it implements the
// capability, and nil, false otherwise.
func ModuleLogInterface(module any) (ModuleLogger, bool) {
	if module == nil {
		return nil, false
	}
	ml, ok := module.(ModuleLogger)
	if !ok {
		return nil, false
	}
	return ml, true
}

// NewModuleLogger returns a logger that writes on behalf of module.
//
// When the module implements ModuleLogger every message is prefixed with its
// LogPrefix and debug messages are dropped unless DebuggingActivated. Otherwise
// base is returned unchanged.
func NewModuleLogger(module any, base Logger) Logger {
	if base == nil {
		base = DefaultLogger()
	}
	ml, ok := ModuleLogInterface(module)
	if !ok {
		return base
	}
	return &PrefixedLogger{module: ml, base: base}
}

// PrefixedLogger decorates a Logger with a module log prefix and debug gating.
//
// The module is consulted on every call, so toggling DebuggingActivated takes
// effect immediately.
type PrefixedLogger struct {
	module ModuleLogger
	base   Logger
}

func (p *PrefixedLogger) prefixed(msg string) string {
	prefix := p.module.LogPrefix()
	if prefix == "" {
		return msg
	}
	return prefix + ": " + msg
}

// Debug logs only when the module has debugging activated.
func (p *PrefixedLogger) Debug(msg string, args ...any) {
	if !p.module.DebuggingActivated() {
		return
	}
	p.base.Debug(p.prefixed(msg), args...)
}

// Info implements Logger interface
func (p *PrefixedLogger) Info(msg string, args ...any) {
	p.base.Info(p.prefixed(msg), args...)
}

// Warn implements Logger interface
func (p *PrefixedLogger) Warn(msg string, args ...any) {
	p.base.Warn(p.prefixed(msg), args...)
}

// Error implements Logger interface
func (p *PrefixedLogger) Error(msg string, args ...any) {
	p.base.Error(p.prefixed(msg), args...)
}

// With implements Logger interface, keeping the module prefix.
func (p *PrefixedLogger) With(args ...any) Logger {
	return &PrefixedLogger{module: p.module, base: p.base.With(args...)}
}
