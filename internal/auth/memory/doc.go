// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package memory implements the auth storage ports in process memory.
//
// Each store keeps a primary map by ID and a secondary index by its unique
// key, both guarded by one mutex. Entities are copied on the way in and out,
// so callers never share state with the store.
package memory
