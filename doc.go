// Package plugincommons provides helpers shared by plugins ("custom modules")
// of a host web application.
//
// Key Features:
//   - Secure authorization keys and passwords from the operating system CSPRNG
//   - Service lookup across the modern and legacy host container APIs
//   - Detection of the module-specific logging capability
//   - Newest-copy arbitration when several plugins ship this library
//   - File and environment configuration with hot reload
//
// Basic Usage:
//
//	// 32 lowercase hex characters
//	key, err := plugincommons.GenerateAuthKey(32)
//	if err != nil {
//		return err
//	}
//
//	// 12 characters from the default 86 character set
//	password, err := plugincommons.SecurePassword()
//	if plugincommons.IsUnavailable(err) {
//		// the CSPRNG could not be read; no weaker source is ever used
//	}
//
// Errors:
// Every error is a *errors.Error from github.com/agilira/go-errors carrying a
// code such as ErrCodeInvalidArgument or ErrCodeUnavailable. Use
// IsInvalidArgument and IsUnavailable to classify them.
//
// Security:
// Passwords map each random byte onto the character set with a modulo. When
// the set size does not divide 256 the lower-indexed characters are slightly
// favoured; see Generator.SecurePassword.
//
// Copyright (c) 2025 AGILira - A. Giordano
// SPDX-License-Identifier: MPL-2.0
package plugincommons
