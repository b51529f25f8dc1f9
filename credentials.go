// credentials.go: cryptographically secure authorization keys and passwords
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plugincommons

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"unicode/utf8"
)

const (
	// DefaultAuthKeyLength is the number of hex characters in a default authorization key.
	DefaultAuthKeyLength = 32

	// DefaultPasswordLength is the number of characters in a default password.
	DefaultPasswordLength = 12

	// MinCharsetSize is the smallest character set a password may be drawn from.
	MinCharsetSize = 2

	// DefaultPasswordCharset is the character set used when the caller supplies none.
	// Its exact contents are part of the public contract.
	DefaultPasswordCharset = "abcdefghijklmnopqrstuvwxyz" +
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"0123456789" +
		"!@#$%^&*()_=+[]{};:,.<>?"
)

// Generator produces authorization keys and passwords from a cryptographically
// secure entropy source.
//
// The zero value has no entropy source and fails every draw with an Unavailable
// error; it never falls back to a weaker generator. Use DefaultGenerator or
// NewGenerator(rand.Reader) in production. Tests may inject a fixed byte stream.
//
// A Generator has no mutable state and is safe for concurrent use whenever its
// reader is. crypto/rand.Reader is.
type Generator struct {
	reader   io.Reader
	defaults CredentialsConfig
}

// DefaultGenerator draws from the operating system CSPRNG.
var DefaultGenerator = NewGenerator(rand.Reader)

// NewGenerator creates a generator bound to the given entropy source with the
// library default lengths and character set.
func NewGenerator(reader io.Reader) *Generator {
	return &Generator{
		reader:   reader,
		defaults: DefaultCredentialsConfig(),
	}
}

// NewGeneratorFromConfig creates a generator bound to the operating system CSPRNG
// whose Default* methods use the supplied configuration.
func NewGeneratorFromConfig(config CredentialsConfig) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Generator{reader: rand.Reader, defaults: config}, nil
}

// GenerateAuthKey returns length lowercase hex characters encoding length/2
// random bytes from the operating system CSPRNG.
func GenerateAuthKey(length int) (string, error) {
	return DefaultGenerator.AuthKey(length)
}

// GenerateSecurePassword returns length characters drawn from chars using the
// operating system CSPRNG.
func GenerateSecurePassword(length int, chars string) (string, error) {
	return DefaultGenerator.SecurePassword(length, chars)
}

// AuthKey returns a DefaultAuthKeyLength character authorization key.
func AuthKey() (string, error) {
	return GenerateAuthKey(DefaultAuthKeyLength)
}

// SecurePassword returns a DefaultPasswordLength character password drawn from
// DefaultPasswordCharset.
func SecurePassword() (string, error) {
	return GenerateSecurePassword(DefaultPasswordLength, DefaultPasswordCharset)
}

// AuthKey draws length/2 bytes and encodes each as a two digit lowercase hex pair,
// in draw order.
//
// length must be even and not negative. Zero yields an empty key without touching
// the entropy source. A failed or short read is reported as Unavailable; no
// partial key is ever returned.
func (g *Generator) AuthKey(length int) (string, error) {
	if length < 0 {
		return "", NewInvalidArgumentError("length", length, "length must not be negative")
	}
	if length%2 != 0 {
		return "", NewInvalidArgumentError("length", length, "length must be an even number")
	}
	if length == 0 {
		return "", nil
	}

	raw, err := g.read(length / 2)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// SecurePassword draws length bytes and maps each one to chars[b % len(chars)],
// counting chars in runes. chars must be valid UTF-8.
//
// When len(chars) does not divide 256 the mapping has a modulo bias: the first
// 256 % len(chars) characters are drawn slightly more often than the rest. For the
// default 86 character set that is the first 84 characters at 3/256 against 2/256.
// The bias is kept so output stays stable for a given entropy stream.
func (g *Generator) SecurePassword(length int, chars string) (string, error) {
	if length <= 0 {
		return "", NewInvalidArgumentError("length", length, "password length must be greater than zero")
	}
	if !utf8.ValidString(chars) {
		return "", NewInvalidArgumentError("chars", len(chars), "character set must be valid UTF-8")
	}
	charLen := utf8.RuneCountInString(chars)
	if charLen < MinCharsetSize {
		return "", NewInvalidArgumentError("chars", charLen, "character set must contain at least two characters")
	}

	raw, err := g.read(length)
	if err != nil {
		return "", err
	}

	set := []rune(chars)
	password := make([]rune, length)
	for i, b := range raw {
		password[i] = set[int(b)%charLen]
	}
	return string(password), nil
}

// DefaultAuthKey returns an authorization key of the configured default length.
func (g *Generator) DefaultAuthKey() (string, error) {
	return g.AuthKey(g.defaults.AuthKeyLength)
}

// DefaultSecurePassword returns a password of the configured default length and charset.
func (g *Generator) DefaultSecurePassword() (string, error) {
	return g.SecurePassword(g.defaults.PasswordLength, g.defaults.PasswordCharset)
}

// read fills n bytes from the entropy source or fails; it never retries.
func (g *Generator) read(n int) ([]byte, error) {
	if g == nil || g.reader == nil {
		return nil, NewUnavailableError("no entropy source configured", nil)
	}

	buf := make([]byte, n)
	got, err := io.ReadFull(g.reader, buf)
	if err != nil {
		return nil, NewUnavailableError("short read from entropy source", err).
			WithContext("requested_bytes", n).
			WithContext("received_bytes", got)
	}
	return buf, nil
}
