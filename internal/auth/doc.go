// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package auth is the authentication core: credential value objects, users,
// refresh-token sessions and the use cases that tie them together.
//
// # Domain Types
//
// Value objects and entities should be created through their constructors:
//   - NewUsername, NewPassword, PasswordFromHash - validated credentials
//   - NewUser - a User with a fresh ID and timestamps
//   - NewSession - a Session bound to a refresh token and a duration
//
// Direct struct initialization bypasses validation and may create invalid
// state. Storage adapters may build User and Session literals when loading
// rows they previously stored.
//
// # Storage
//
// Persistence is reached only through the small port interfaces in ports.go.
// Adders are atomic check-then-insert; the token finder evicts an expired
// session on read. Adapters live in the memory and postgres subpackages.
//
// # Use Cases
//
//   - RegisterUseCase - create a user and open a session
//   - LoginUseCase - check credentials and open a session
//   - RefreshSessionUseCase - rotate a refresh token
//   - RefreshAccessUseCase - issue an access token for a live session
//
// Callers see only *ValidationError, *MultiValidationErrors,
// ErrInvalidCredentials, ErrSessionNotFound and *InternalError. Storage
// faults are logged and masked behind *InternalError.
package auth
