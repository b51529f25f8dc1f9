// errors.go: structured error definitions for the plugin-commons library
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plugincommons

import (
	stderrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for the plugin-commons library
const (
	// Credential generation errors (1000-1099)
	ErrCodeInvalidArgument = "CRED_1001"
	ErrCodeUnavailable     = "CRED_1002"

	// Service container errors (1100-1199)
	ErrCodeServiceNotFound      = "CONTAINER_1101"
	ErrCodeInvalidHostVersion   = "CONTAINER_1102"
	ErrCodeContainerUnavailable = "CONTAINER_1103"

	// Autoload and library bootstrap errors (1200-1299)
	ErrCodeManifestNotFound      = "AUTOLOAD_1201"
	ErrCodeManifestParseError    = "AUTOLOAD_1202"
	ErrCodeInvalidLibraryVersion = "AUTOLOAD_1203"
	ErrCodePackageNotInstalled   = "AUTOLOAD_1204"

	// Configuration management errors (1700-1799)
	ErrCodeConfigNotFound        = "CONFIG_1701"
	ErrCodeConfigParseError      = "CONFIG_1702"
	ErrCodeConfigValidationError = "CONFIG_1703"
	ErrCodeConfigWatcherError    = "CONFIG_1704"
)

// Credential generation error constructors

// NewInvalidArgumentError reports a caller-supplied parameter that violates a
// documented precondition. It is always raised before any entropy is consumed.
func NewInvalidArgumentError(argument string, value interface{}, reason string) *errors.Error {
	return errors.New(ErrCodeInvalidArgument, "Invalid argument: "+reason).
		WithUserMessage("The credential parameters are invalid").
		WithContext("argument", argument).
		WithContext("value", value).
		WithSeverity("error")
}

// NewUnavailableError reports that the cryptographically secure random source
// cannot be used. Retrying is left to the caller.
func NewUnavailableError(message string, cause error) *errors.Error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeUnavailable, "Secure random source unavailable: "+message).
			WithUserMessage("Unable to generate secure random bytes").
			WithSeverity("error").
			AsRetryable()
	}
	return errors.New(ErrCodeUnavailable, "Secure random source unavailable: "+message).
		WithUserMessage("Unable to generate secure random bytes").
		WithSeverity("error").
		AsRetryable()
}

// Service container error constructors

func NewServiceNotFoundError(id string, cause error) *errors.Error {
	err := errors.New(ErrCodeServiceNotFound, "Service not found").
		WithUserMessage("The requested service is not registered in the host container").
		WithContext("service_id", id).
		WithSeverity("warning")

	if cause != nil {
		return errors.Wrap(cause, ErrCodeServiceNotFound, "Service not found").
			WithUserMessage("The requested service is not registered in the host container").
			WithContext("service_id", id).
			WithSeverity("warning")
	}
	return err
}

func NewInvalidHostVersionError(version string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeInvalidHostVersion, "Invalid host version").
		WithUserMessage("The host application version could not be parsed").
		WithContext("host_version", version).
		WithSeverity("error")
}

func NewContainerUnavailableError(generation string) *errors.Error {
	return errors.New(ErrCodeContainerUnavailable, "Container unavailable").
		WithUserMessage("No service container is configured for the host API generation").
		WithContext("generation", generation).
		WithSeverity("error")
}

// Autoload error constructors

func NewManifestNotFoundError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeManifestNotFound, "Installed manifest not found").
		WithUserMessage("The installed packages manifest could not be read").
		WithContext("manifest_path", path).
		WithSeverity("error")
}

func NewManifestParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeManifestParseError, "Installed manifest parse error").
		WithUserMessage("Failed to parse the installed packages manifest").
		WithContext("manifest_path", path).
		WithSeverity("error")
}

func NewInvalidLibraryVersionError(pkg, version string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeInvalidLibraryVersion, "Invalid library version").
		WithUserMessage("The library version is not a valid semantic version").
		WithContext("package", pkg).
		WithContext("version", version).
		WithSeverity("error")
}

func NewPackageNotInstalledError(pkg string, manifestPath string) *errors.Error {
	return errors.New(ErrCodePackageNotInstalled, "Package not installed").
		WithUserMessage("The package is not listed in the installed packages manifest").
		WithContext("package", pkg).
		WithContext("manifest_path", manifestPath).
		WithSeverity("error")
}

// Configuration management error constructors

func NewConfigNotFoundError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigNotFound, "Configuration file not found").
		WithUserMessage("The configuration file could not be found").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigParseError, "Configuration parse error").
		WithUserMessage("Failed to parse configuration file").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigValidationError(message string, cause error) *errors.Error {
	err := errors.New(ErrCodeConfigValidationError, "Configuration validation error: "+message).
		WithUserMessage("Configuration validation failed").
		WithSeverity("error")
	if cause != nil {
		return errors.Wrap(cause, ErrCodeConfigValidationError, "Configuration validation error: "+message).
			WithUserMessage("Configuration validation failed").
			WithSeverity("error")
	}
	return err
}

func NewConfigWatcherError(message string, cause error) *errors.Error {
	err := errors.New(ErrCodeConfigWatcherError, "Configuration watcher error: "+message).
		WithUserMessage("Configuration monitoring failed").
		WithSeverity("error")
	if cause != nil {
		return errors.Wrap(cause, ErrCodeConfigWatcherError, "Configuration watcher error: "+message).
			WithUserMessage("Configuration monitoring failed").
			WithSeverity("error")
	}
	return err
}

// Error classification helpers

// IsInvalidArgument reports whether err carries the invalid argument code.
func IsInvalidArgument(err error) bool {
	return hasErrorCode(err, ErrCodeInvalidArgument)
}

// IsUnavailable reports whether err means the secure random source could not be used.
func IsUnavailable(err error) bool {
	return hasErrorCode(err, ErrCodeUnavailable)
}

func hasErrorCode(err error, code errors.ErrorCode) bool {
	if err == nil {
		return false
	}
	var structured *errors.Error
	if stderrors.As(err, &structured) {
		return structured.Code == code
	}
	return false
}
