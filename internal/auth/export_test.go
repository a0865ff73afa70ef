// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

// DummyHash exposes the hash an unknown-user login is compared against.
func DummyHash(uc *LoginUseCase) string {
	return uc.dummy.hash
}
