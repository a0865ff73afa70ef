// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package token produces the opaque refresh tokens and signed JWT access
// tokens handed to clients.
package token
