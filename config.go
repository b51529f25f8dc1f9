// config.go: library configuration loading, environment overrides and validation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plugincommons

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/Masterminds/semver/v3"
	"github.com/agilira/argus"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable read by the library.
const EnvPrefix = "PLUGIN_COMMONS_"

// maxConfigFileSize bounds the size of configuration and manifest files.
const maxConfigFileSize = 10 * 1024 * 1024

// LibraryConfig is the complete configuration of the library.
//
// It can be loaded from a JSON or YAML file with LoadLibraryConfig, overridden
// through PLUGIN_COMMONS_* environment variables and hot-reloaded with a
// ConfigWatcher.
//
// Example YAML:
//
//	credentials:
//	  auth_key_length: 64
//	  password_length: 16
//	container:
//	  host_version: 2.2.1
//	autoload:
//	  package: agilira/plugin-commons
//	  vendor_dir: /var/www/modules_v4/vendor
//	logging:
//	  level: info
type LibraryConfig struct {
	Credentials CredentialsConfig `json:"credentials" yaml:"credentials" envPrefix:"CREDENTIALS_"`
	Container   ContainerConfig   `json:"container" yaml:"container" envPrefix:"CONTAINER_"`
	Autoload    AutoloadConfig    `json:"autoload" yaml:"autoload" envPrefix:"AUTOLOAD_"`
	Logging     LoggingConfig     `json:"logging" yaml:"logging" envPrefix:"LOGGING_"`
	Metadata    ConfigMetadata    `json:"metadata" yaml:"metadata"`
}

// CredentialsConfig holds the defaults used by Generator.DefaultAuthKey and
// Generator.DefaultSecurePassword.
type CredentialsConfig struct {
	AuthKeyLength   int    `json:"auth_key_length" yaml:"auth_key_length" env:"AUTH_KEY_LENGTH"`
	PasswordLength  int    `json:"password_length" yaml:"password_length" env:"PASSWORD_LENGTH"`
	PasswordCharset string `json:"password_charset" yaml:"password_charset" env:"PASSWORD_CHARSET"`
}

// ContainerConfig describes the host application the container shim talks to.
type ContainerConfig struct {
	HostVersion string `json:"host_version" yaml:"host_version" env:"HOST_VERSION"`
}

// AutoloadConfig drives the library bootstrap.
type AutoloadConfig struct {
	Package           string   `json:"package" yaml:"package" env:"PACKAGE"`
	VendorDir         string   `json:"vendor_dir" yaml:"vendor_dir" env:"VENDOR_DIR"`
	InstalledManifest string   `json:"installed_manifest" yaml:"installed_manifest" env:"INSTALLED_MANIFEST"`
	Namespaces        []string `json:"namespaces" yaml:"namespaces" env:"NAMESPACES" envSeparator:","`
}

// LoggingConfig controls library logging.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level" env:"LEVEL"`
	Debug bool   `json:"debug" yaml:"debug" env:"DEBUG"`
}

// ConfigMetadata identifies a configuration revision.
type ConfigMetadata struct {
	Version     string `json:"version" yaml:"version"`
	Environment string `json:"environment" yaml:"environment"`
}

// DefaultCredentialsConfig returns the library credential defaults.
func DefaultCredentialsConfig() CredentialsConfig {
	return CredentialsConfig{
		AuthKeyLength:   DefaultAuthKeyLength,
		PasswordLength:  DefaultPasswordLength,
		PasswordCharset: DefaultPasswordCharset,
	}
}

// DefaultLibraryConfig returns a configuration that needs no file at all.
func DefaultLibraryConfig() LibraryConfig {
	return LibraryConfig{
		Credentials: DefaultCredentialsConfig(),
		Container: ContainerConfig{
			HostVersion: ModernContainerVersion,
		},
		Autoload: AutoloadConfig{
			Package:           DefaultLibraryPackage,
			InstalledManifest: DefaultInstalledManifest,
			Namespaces:        DefaultNamespaces(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadLibraryConfig reads a JSON or YAML configuration file, applies
// environment overrides and validates the result. Fields missing from the file
// keep their DefaultLibraryConfig values.
func LoadLibraryConfig(path string) (*LibraryConfig, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultLibraryConfig()
	if err := decodeConfigFile(path, data, &config); err != nil {
		return nil, NewConfigParseError(path, err)
	}

	if err := ApplyEnvOverrides(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// ApplyEnvOverrides overwrites config fields for which a PLUGIN_COMMONS_*
// variable is set, e.g. PLUGIN_COMMONS_CREDENTIALS_PASSWORD_LENGTH.
func ApplyEnvOverrides(config *LibraryConfig) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return NewConfigValidationError("invalid environment override", err)
	}
	return nil
}

// Validate checks every section of the configuration.
func (c LibraryConfig) Validate() error {
	if err := c.Credentials.Validate(); err != nil {
		return err
	}
	if err := c.Container.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return c.Autoload.Validate()
}

// Validate applies the same preconditions as the generator, except that a zero
// auth key length is rejected: a configured default must produce a usable key.
func (c CredentialsConfig) Validate() error {
	if c.AuthKeyLength <= 0 || c.AuthKeyLength%2 != 0 {
		return NewConfigValidationError("auth_key_length must be a positive even number",
			NewInvalidArgumentError("auth_key_length", c.AuthKeyLength, "length must be a positive even number"))
	}
	if c.PasswordLength <= 0 {
		return NewConfigValidationError("password_length must be greater than zero",
			NewInvalidArgumentError("password_length", c.PasswordLength, "password length must be greater than zero"))
	}
	if !utf8.ValidString(c.PasswordCharset) {
		return NewConfigValidationError("password_charset must be valid UTF-8",
			NewInvalidArgumentError("password_charset", len(c.PasswordCharset), "character set must be valid UTF-8"))
	}
	if n := utf8.RuneCountInString(c.PasswordCharset); n < MinCharsetSize {
		return NewConfigValidationError("password_charset must contain at least two characters",
			NewInvalidArgumentError("password_charset", n, "character set must contain at least two characters"))
	}
	return nil
}

// Validate checks that the host version, when set, is a semantic version.
func (c ContainerConfig) Validate() error {
	if c.HostVersion == "" {
		return nil
	}
	if _, err := semver.NewVersion(c.HostVersion); err != nil {
		return NewConfigValidationError("container.host_version is not a semantic version",
			NewInvalidHostVersionError(c.HostVersion, err))
	}
	return nil
}

// Validate checks the autoload section.
func (c AutoloadConfig) Validate() error {
	for _, ns := range c.Namespaces {
		if strings.TrimSpace(ns) == "" {
			return NewConfigValidationError("autoload.namespaces contains an empty entry", nil)
		}
	}
	return nil
}

// Validate checks the log level name.
func (c LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return NewConfigValidationError(fmt.Sprintf("unknown log level %q", c.Level), nil)
	}
}

// readConfigFile reads a regular, non-empty file of bounded size.
func readConfigFile(path string) ([]byte, error) {
	if path == "" {
		return nil, NewConfigNotFoundError(path, fmt.Errorf("empty config file path"))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, NewConfigNotFoundError(path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, NewConfigNotFoundError(path, fmt.Errorf("config path is not a regular file"))
	}
	if info.Size() > maxConfigFileSize {
		return nil, NewConfigParseError(path, fmt.Errorf("config file too large: %d bytes", info.Size()))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigNotFoundError(path, err)
	}
	if len(data) == 0 {
		return nil, NewConfigParseError(path, fmt.Errorf("config file is empty"))
	}
	return data, nil
}

// decodeConfigFile unmarshals data into target according to the file extension.
func decodeConfigFile(path string, data []byte, target any) error {
	format := argus.DetectFormat(path)
	switch format {
	case argus.FormatJSON:
		return json.Unmarshal(data, target)
	case argus.FormatYAML:
		return yaml.Unmarshal(data, target)
	default:
		return fmt.Errorf("unsupported config format for %s", path)
	}
}
