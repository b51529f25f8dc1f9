// module_log_test.go: tests for module logging capability detection
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plugincommons

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loggingModule struct {
	prefix string
	debug  atomic.Bool
}

func (m *loggingModule) LogPrefix() string        { return m.prefix }
func (m *loggingModule) DebuggingActivated() bool { return m.debug.Load() }

type plainModule struct{ name string }

func TestModuleLogInterface(t *testing.T) {
	withLog := &loggingModule{prefix: "ExportModule"}

	tests := []struct {
		name   string
		module any
		want   bool
	}{
		{"ImplementsCapability", withLog, true},
		{"PlainModule", &plainModule{name: "plain"}, false},
		{"ValueWithoutCapability", plainModule{}, false},
		{"Nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ml, ok := ModuleLogInterface(tt.module)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				require.NotNil(t, ml)
				assert.Equal(t, "ExportModule", ml.LogPrefix())
			} else {
				assert.Nil(t, ml)
			}
		})
	}
}

func TestNewModuleLogger_PrefixAndDebugGate(t *testing.T) {
	module := &loggingModule{prefix: "Reports"}
	base := NewTestLogger()

	logger := NewModuleLogger(module, base)
	_, isPrefixed := logger.(*PrefixedLogger)
	require.True(t, isPrefixed)

	logger.Debug("hidden")
	logger.Info("export started", "tree", "main")
	logger.Warn("slow")
	logger.Error("failed")

	assert.Equal(t, 0, base.Count("DEBUG"), "debug must be dropped while debugging is off")
	assert.True(t, base.HasMessage("INFO", "Reports: export started"))
	assert.True(t, base.HasMessage("WARN", "Reports: slow"))
	assert.True(t, base.HasMessage("ERROR", "Reports: failed"))

	module.debug.Store(true)
	logger.Debug("visible")
	assert.True(t, base.HasMessage("DEBUG", "Reports: visible"))
}

func TestNewModuleLogger_WithoutCapability(t *testing.T) {
	base := NewTestLogger()
	logger := NewModuleLogger(&plainModule{}, base)
	assert.Same(t, base, logger)

	assert.IsType(t, &NoOpLogger{}, NewModuleLogger(&plainModule{}, nil))
}

func TestPrefixedLogger_EmptyPrefixAndWith(t *testing.T) {
	module := &loggingModule{}
	module.debug.Store(true)
	base := NewTestLogger()

	logger := NewModuleLogger(module, base)
	logger.Info("no prefix")
	assert.True(t, base.HasMessage("INFO", "no prefix"))

	child := logger.With("request", 1)
	_, stillPrefixed := child.(*PrefixedLogger)
	assert.True(t, stillPrefixed)
}
