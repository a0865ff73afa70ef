// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"golang.org/x/crypto/bcrypt"

	"github.com/holomush/authcore/internal/auth"
	"github.com/holomush/authcore/internal/auth/postgres"
	"github.com/holomush/authcore/internal/token"
)

func mustUser(name string) *auth.User {
	username, err := auth.NewUsername(name)
	Expect(err).NotTo(HaveOccurred())
	pw, err := auth.NewPassword("password1", bcrypt.MinCost)
	Expect(err).NotTo(HaveOccurred())
	user, err := auth.NewUser(username, pw)
	Expect(err).NotTo(HaveOccurred())
	return user
}

var _ = Describe("UserRepository", func() {
	var (
		ctx   context.Context
		users *postgres.UserRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		resetTables(ctx)
		users = postgres.NewUserRepository(testPool)
	})

	It("round-trips a user", func() {
		user := mustUser("alice")
		Expect(users.Add(ctx, user)).To(Succeed())

		found, err := users.FindByUsername(ctx, user.Username)
		Expect(err).NotTo(HaveOccurred())
		Expect(found.ID).To(Equal(user.ID))
		Expect(found.Password.Matches("password1")).To(BeTrue())
		Expect(found.CreatedAt).To(BeTemporally("~", user.CreatedAt, time.Millisecond))
	})

	It("reports a taken username as a duplicate", func() {
		Expect(users.Add(ctx, mustUser("alice"))).To(Succeed())

		err := users.Add(ctx, mustUser("alice"))
		var dup *auth.DuplicationError
		Expect(errors.As(err, &dup)).To(BeTrue())
		Expect(dup.Field).To(Equal("username"))
	})

	It("lets exactly one concurrent add win", func() {
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for range 8 {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				if users.Add(ctx, mustUser("racer")) == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		Expect(wins).To(Equal(1))
	})

	It("reports a missing user as not found", func() {
		username, err := auth.NewUsername("nobody")
		Expect(err).NotTo(HaveOccurred())

		_, err = users.FindByUsername(ctx, username)
		Expect(errors.Is(err, auth.ErrNotFound)).To(BeTrue())
	})
})

var _ = Describe("SessionRepository", func() {
	var (
		ctx      context.Context
		user     *auth.User
		sessions *postgres.SessionRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		resetTables(ctx)
		user = mustUser("alice")
		Expect(postgres.NewUserRepository(testPool).Add(ctx, user)).To(Succeed())
		sessions = postgres.NewSessionRepository(testPool)
	})

	It("rotates a token atomically", func() {
		s, err := auth.NewSession("old", user.ID, time.Hour)
		Expect(err).NotTo(HaveOccurred())
		Expect(sessions.Add(ctx, s)).To(Succeed())

		loaded, err := sessions.FindByToken(ctx, "old")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Refresh("new", time.Hour)).To(Succeed())
		Expect(sessions.Update(ctx, loaded)).To(Succeed())

		_, err = sessions.FindByToken(ctx, "old")
		Expect(errors.Is(err, auth.ErrNotFound)).To(BeTrue())
		_, err = sessions.FindByToken(ctx, "new")
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects a stale rotation", func() {
		s, err := auth.NewSession("old", user.ID, time.Hour)
		Expect(err).NotTo(HaveOccurred())
		Expect(sessions.Add(ctx, s)).To(Succeed())

		a, err := sessions.FindByToken(ctx, "old")
		Expect(err).NotTo(HaveOccurred())
		b, err := sessions.FindByToken(ctx, "old")
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Refresh("from-a", time.Hour)).To(Succeed())
		Expect(sessions.Update(ctx, a)).To(Succeed())
		Expect(b.Refresh("from-b", time.Hour)).To(Succeed())
		Expect(errors.Is(sessions.Update(ctx, b), auth.ErrNotFound)).To(BeTrue())
	})

	It("evicts an expired session on read", func() {
		s, err := auth.NewSessionAt("stale", user.ID, time.Minute, time.Now().Add(-time.Hour))
		Expect(err).NotTo(HaveOccurred())
		Expect(sessions.Add(ctx, s)).To(Succeed())

		_, err = sessions.FindByToken(ctx, "stale")
		Expect(errors.Is(err, auth.ErrNotFound)).To(BeTrue())

		var n int
		Expect(testPool.QueryRow(ctx, `SELECT count(*) FROM sessions`).Scan(&n)).To(Succeed())
		Expect(n).To(BeZero())
	})

	It("reports a taken token as a duplicate", func() {
		a, err := auth.NewSession("same", user.ID, time.Hour)
		Expect(err).NotTo(HaveOccurred())
		b, err := auth.NewSession("same", user.ID, time.Hour)
		Expect(err).NotTo(HaveOccurred())

		Expect(sessions.Add(ctx, a)).To(Succeed())
		Expect(errors.Is(sessions.Add(ctx, b), auth.ErrDuplicate)).To(BeTrue())
	})
})

var _ = Describe("use cases on PostgreSQL", func() {
	It("registers, logs in and rotates", func() {
		ctx := context.Background()
		resetTables(ctx)

		users := postgres.NewUserRepository(testPool)
		sessions := postgres.NewSessionRepository(testPool)
		access, err := token.NewAccessGenerator("integration-secret-0123456789", token.HS256)
		Expect(err).NotTo(HaveOccurred())
		tokens := auth.Tokens{Refresh: token.NewRefreshGenerator(), Access: access}
		d := auth.Durations{Session: 24 * time.Hour, Access: 2 * time.Hour}
		hasher := auth.NewHashPool(2, bcrypt.MinCost)

		register, err := auth.NewRegisterUseCase(users, sessions, hasher, tokens, d)
		Expect(err).NotTo(HaveOccurred())
		login, err := auth.NewLoginUseCase(users, sessions, hasher, tokens, d)
		Expect(err).NotTo(HaveOccurred())
		refresh, err := auth.NewRefreshSessionUseCase(sessions, tokens, d)
		Expect(err).NotTo(HaveOccurred())

		_, err = register.Execute(ctx, auth.Credentials{Username: "alice123", Password: "password1"})
		Expect(err).NotTo(HaveOccurred())

		set, err := login.Execute(ctx, auth.Credentials{Username: "alice123", Password: "password1"})
		Expect(err).NotTo(HaveOccurred())

		next, err := refresh.Execute(ctx, set.RefreshToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(next.RefreshToken).NotTo(Equal(set.RefreshToken))

		_, err = refresh.Execute(ctx, set.RefreshToken)
		Expect(errors.Is(err, auth.ErrSessionNotFound)).To(BeTrue())
	})
})
