// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/holomush/authcore/internal/auth"
	"github.com/holomush/authcore/internal/observability"
)

// maxBodyBytes caps request bodies; credentials and tokens are small.
const maxBodyBytes = 64 << 10

// Operation labels used for metrics and logs.
const (
	opRegister       = "register"
	opLogin          = "login"
	opRefreshSession = "refresh_session"
	opRefreshAccess  = "refresh_access"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenSetResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type accessResponse struct {
	AccessToken string `json:"access_token"`
}

type handler struct {
	uc       UseCases
	recorder Recorder
	logger   *slog.Logger
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	h.credentials(w, r, opRegister, h.uc.Register, http.StatusCreated)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	h.credentials(w, r, opLogin, h.uc.Login, http.StatusOK)
}

func (h *handler) credentials(w http.ResponseWriter, r *http.Request, op string, flow CredentialsFlow, status int) {
	var req credentialsRequest
	if !h.decode(w, r, op, &req) {
		return
	}

	set, err := flow.Execute(r.Context(), auth.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	h.recorder.RecordOperation(op, observability.OutcomeSuccess)
	writeJSON(w, status, tokenSetResponse{
		AccessToken:      set.AccessToken,
		RefreshToken:     set.RefreshToken,
		RefreshExpiresAt: set.RefreshExpiresAt,
	})
}

func (h *handler) refreshSession(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, opRefreshSession, &req) {
		return
	}

	set, err := h.uc.RefreshSession.Execute(r.Context(), req.RefreshToken)
	if err != nil {
		h.fail(w, r, opRefreshSession, err)
		return
	}

	h.recorder.RecordOperation(opRefreshSession, observability.OutcomeSuccess)
	writeJSON(w, http.StatusOK, tokenSetResponse{
		AccessToken:      set.AccessToken,
		RefreshToken:     set.RefreshToken,
		RefreshExpiresAt: set.RefreshExpiresAt,
	})
}

func (h *handler) refreshAccess(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, opRefreshAccess, &req) {
		return
	}

	access, err := h.uc.RefreshAccess.Execute(r.Context(), req.RefreshToken)
	if err != nil {
		h.fail(w, r, opRefreshAccess, err)
		return
	}

	h.recorder.RecordOperation(opRefreshAccess, observability.OutcomeSuccess)
	writeJSON(w, http.StatusOK, accessResponse{AccessToken: access})
}

// decode reads a JSON body into dst, answering 400 on failure.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.recorder.RecordOperation(op, observability.OutcomeInvalid)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	return true
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, body, outcome := classify(err)
	h.recorder.RecordOperation(op, outcome)
	if status == http.StatusInternalServerError {
		h.logger.WarnContext(r.Context(), "request failed",
			"operation", op,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // client may disconnect
	json.NewEncoder(w).Encode(v)
}
