// logging_zerolog.go: Logger adapter backed by zerolog
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plugincommons

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ZerologAdapter implements Logger on top of a zerolog.Logger.
//
// Key-value args become zerolog fields. A trailing key without a value is
// logged with a nil value, and non-string keys are formatted with fmt.Sprint.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter wraps logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// NewZerologAdapterFromConfig builds a JSON logger writing to w (os.Stderr when
// nil) at the level selected by config. Entries carry a timestamp and a
// component field.
func NewZerologAdapterFromConfig(config LoggingConfig, w io.Writer) *ZerologAdapter {
	if w == nil {
		w = os.Stderr
	}
	logger := zerolog.New(w).
		Level(ParseLogLevel(config)).
		With().
		Timestamp().
		Str("component", "plugin-commons").
		Logger()
	return NewZerologAdapter(logger)
}

// Debug implements Logger interface
func (z *ZerologAdapter) Debug(msg string, args ...any) {
	z.logger.Debug().Fields(zerologFields(args)).Msg(msg)
}

// Info implements Logger interface
func (z *ZerologAdapter) Info(msg string, args ...any) {
	z.logger.Info().Fields(zerologFields(args)).Msg(msg)
}

// Warn implements Logger interface
func (z *ZerologAdapter) Warn(msg string, args ...any) {
	z.logger.Warn().Fields(zerologFields(args)).Msg(msg)
}

// Error implements Logger interface
func (z *ZerologAdapter) Error(msg string, args ...any) {
	z.logger.Error().Fields(zerologFields(args)).Msg(msg)
}

// With implements Logger interface
func (z *ZerologAdapter) With(args ...any) Logger {
	return &ZerologAdapter{logger: z.logger.With().Fields(zerologFields(args)).Logger()}
}

// ParseLogLevel maps a LoggingConfig level onto a zerolog level. Debug forces
// the debug level regardless of Level.
func ParseLogLevel(config LoggingConfig) zerolog.Level {
	if config.Debug {
		return zerolog.DebugLevel
	}
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		return zerolog.InfoLevel
	}
	return level
}

// zerologFields normalizes variadic key-value pairs into the []any form
// accepted by zerolog's Fields.
func zerologFields(args []any) []any {
	if len(args) == 0 {
		return nil
	}
	fields := make([]any, 0, len(args)+1)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		var value any
		if i+1 < len(args) {
			value = args[i+1]
		}
		fields = append(fields, key, value)
	}
	return fields
}
