// config_test.go: tests for library configuration loading and validation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plugincommons

import (
	"path/filepath"
	"testing"
)

func TestDefaultLibraryConfig_IsValid(t *testing.T) {
	config := DefaultLibraryConfig()
	if err := config.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
	if config.Credentials.AuthKeyLength != DefaultAuthKeyLength {
		t.Errorf("expected auth key length %d, got %d", DefaultAuthKeyLength, config.Credentials.AuthKeyLength)
	}
	if config.Container.HostVersion != ModernContainerVersion {
		t.Errorf("expected host version %s, got %s", ModernContainerVersion, config.Container.HostVersion)
	}
	if len(config.Autoload.Namespaces) != 3 {
		t.Errorf("expected 3 default namespaces, got %v", config.Autoload.Namespaces)
	}
}

func TestLoadLibraryConfig_YAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.yaml")
	writeTestFile(t, path, `credentials:
  password_length: 16
container:
  host_version: 2.1.20
metadata:
  version: "7"
  environment: staging
`)

	config, err := LoadLibraryConfig(path)
	if err != nil {
		t.Fatalf("LoadLibraryConfig failed: %v", err)
	}
	if config.Credentials.PasswordLength != 16 {
		t.Errorf("expected password length 16, got %d", config.Credentials.PasswordLength)
	}
	if config.Credentials.AuthKeyLength != DefaultAuthKeyLength {
		t.Errorf("auth key length should keep its default, got %d", config.Credentials.AuthKeyLength)
	}
	if config.Credentials.PasswordCharset != DefaultPasswordCharset {
		t.Error("password charset should keep its default")
	}
	if config.Container.HostVersion != "2.1.20" {
		t.Errorf("expected host version 2.1.20, got %s", config.Container.HostVersion)
	}
	if config.Metadata.Version != "7" || config.Metadata.Environment != "staging" {
		t.Errorf("unexpected metadata: %+v", config.Metadata)
	}
	if config.Autoload.Package != DefaultLibraryPackage {
		t.Errorf("autoload package should keep its default, got %s", config.Autoload.Package)
	}
}

func TestLoadLibraryConfig_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	writeTestFile(t, path, `{
  "credentials": {"auth_key_length": 64, "password_charset": "αβγδ"},
  "autoload": {"vendor_dir": "/srv/vendor", "namespaces": ["Helpers"]},
  "logging": {"level": "debug"}
}`)

	config, err := LoadLibraryConfig(path)
	if err != nil {
		t.Fatalf("LoadLibraryConfig failed: %v", err)
	}
	if config.Credentials.AuthKeyLength != 64 {
		t.Errorf("expected auth key length 64, got %d", config.Credentials.AuthKeyLength)
	}
	if config.Credentials.PasswordCharset != "αβγδ" {
		t.Errorf("unexpected charset %q", config.Credentials.PasswordCharset)
	}
	if config.Autoload.VendorDir != "/srv/vendor" || len(config.Autoload.Namespaces) != 1 {
		t.Errorf("unexpected autoload section: %+v", config.Autoload)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", config.Logging.Level)
	}
}

func TestLoadLibraryConfig_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.yaml")
	writeTestFile(t, path, "credentials:\n  password_length: 16\n")

	t.Setenv("PLUGIN_COMMONS_CREDENTIALS_PASSWORD_LENGTH", "20")
	t.Setenv("PLUGIN_COMMONS_CONTAINER_HOST_VERSION", "2.1.5")
	t.Setenv("PLUGIN_COMMONS_AUTOLOAD_NAMESPACES", "Helpers,Log")
	t.Setenv("PLUGIN_COMMONS_LOGGING_DEBUG", "true")

	config, err := LoadLibraryConfig(path)
	if err != nil {
		t.Fatalf("LoadLibraryConfig failed: %v", err)
	}
	if config.Credentials.PasswordLength != 20 {
		t.Errorf("environment should override password length, got %d", config.Credentials.PasswordLength)
	}
	if config.Container.HostVersion != "2.1.5" {
		t.Errorf("environment should override host version, got %s", config.Container.HostVersion)
	}
	if len(config.Autoload.Namespaces) != 2 || config.Autoload.Namespaces[1] != "Log" {
		t.Errorf("unexpected namespaces %v", config.Autoload.Namespaces)
	}
	if !config.Logging.Debug {
		t.Error("environment should enable debug logging")
	}
}

func TestLoadLibraryConfig_InvalidEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.yaml")
	writeTestFile(t, path, "logging:\n  level: info\n")
	t.Setenv("PLUGIN_COMMONS_CREDENTIALS_AUTH_KEY_LENGTH", "thirty-two")

	_, err := LoadLibraryConfig(path)
	if !hasErrorCode(err, ErrCodeConfigValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadLibraryConfig_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"OddAuthKeyLength", "credentials:\n  auth_key_length: 31\n"},
		{"NegativeAuthKeyLength", "credentials:\n  auth_key_length: -2\n"},
		{"ZeroPasswordLength", "credentials:\n  password_length: 0\n"},
		{"SingleCharCharset", "credentials:\n  password_charset: a\n"},
		{"BadHostVersion", "container:\n  host_version: two.x\n"},
		{"BadLogLevel", "logging:\n  level: verbose\n"},
		{"EmptyNamespace", "autoload:\n  namespaces: [Helpers, \"\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "library.yaml")
			writeTestFile(t, path, tt.content)

			config, err := LoadLibraryConfig(path)
			if err == nil {
				t.Fatalf("expected validation error, got config %+v", config)
			}
			if !hasErrorCode(err, ErrCodeConfigValidationError) {
				t.Errorf("expected %s, got %v", ErrCodeConfigValidationError, err)
			}
		})
	}
}

func TestLoadLibraryConfig_InvalidUTF8Charset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.yaml")
	writeTestFile(t, path, "logging:\n  level: info\n")
	t.Setenv("PLUGIN_COMMONS_CREDENTIALS_PASSWORD_CHARSET", "\xe9\xe8")

	_, err := LoadLibraryConfig(path)
	if !hasErrorCode(err, ErrCodeConfigValidationError) {
		t.Fatalf("expected validation error for a non UTF-8 charset, got %v", err)
	}

	config := DefaultCredentialsConfig()
	config.PasswordCharset = "ab\xff"
	if err := config.Validate(); !hasErrorCode(err, ErrCodeConfigValidationError) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := NewGeneratorFromConfig(config); err == nil {
		t.Error("NewGeneratorFromConfig should reject a non UTF-8 charset")
	}
}

func TestLoadLibraryConfig_FileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadLibraryConfig(""); !hasErrorCode(err, ErrCodeConfigNotFound) {
		t.Errorf("empty path: expected not found, got %v", err)
	}
	if _, err := LoadLibraryConfig(filepath.Join(dir, "absent.yaml")); !hasErrorCode(err, ErrCodeConfigNotFound) {
		t.Errorf("missing file: expected not found, got %v", err)
	}
	if _, err := LoadLibraryConfig(dir); !hasErrorCode(err, ErrCodeConfigNotFound) {
		t.Errorf("directory: expected not found, got %v", err)
	}

	empty := filepath.Join(dir, "empty.yaml")
	writeTestFile(t, empty, "")
	if _, err := LoadLibraryConfig(empty); !hasErrorCode(err, ErrCodeConfigParseError) {
		t.Errorf("empty file: expected parse error, got %v", err)
	}

	broken := filepath.Join(dir, "broken.json")
	writeTestFile(t, broken, `{"credentials": `)
	if _, err := LoadLibraryConfig(broken); !hasErrorCode(err, ErrCodeConfigParseError) {
		t.Errorf("broken json: expected parse error, got %v", err)
	}

	unsupported := filepath.Join(dir, "library.txt")
	writeTestFile(t, unsupported, "password_length=12")
	if _, err := LoadLibraryConfig(unsupported); !hasErrorCode(err, ErrCodeConfigParseError) {
		t.Errorf("unsupported format: expected parse error, got %v", err)
	}
}

func TestNewGeneratorFromLoadedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.yaml")
	writeTestFile(t, path, "credentials:\n  auth_key_length: 8\n  password_length: 5\n  password_charset: xy\n")

	config, err := LoadLibraryConfig(path)
	if err != nil {
		t.Fatalf("LoadLibraryConfig failed: %v", err)
	}
	gen, err := NewGeneratorFromConfig(config.Credentials)
	if err != nil {
		t.Fatalf("NewGeneratorFromConfig failed: %v", err)
	}

	key, err := gen.DefaultAuthKey()
	if err != nil || len(key) != 8 {
		t.Errorf("expected 8 character key, got %q (%v)", key, err)
	}
	password, err := gen.DefaultSecurePassword()
	if err != nil || len(password) != 5 {
		t.Errorf("expected 5 character password, got %q (%v)", password, err)
	}
	for _, r := range password {
		if r != 'x' && r != 'y' {
			t.Errorf("password contains %q outside the configured charset", r)
		}
	}
}
