// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package web

import (
	"errors"
	"net/http"

	"github.com/holomush/authcore/internal/auth"
	"github.com/holomush/authcore/internal/observability"
)

type fieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type errorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

// classify maps a use-case error to a status, a client-safe body and a
// metrics outcome. Anything unrecognised is a 500 with a generic message.
func classify(err error) (int, errorResponse, string) {
	var multi *auth.MultiValidationErrors
	if errors.As(err, &multi) {
		body := errorResponse{Error: "invalid request"}
		for _, ve := range multi.Errors {
			body.Fields = append(body.Fields, fieldError{Field: ve.Field, Reason: ve.Reason})
		}
		return http.StatusBadRequest, body, observability.OutcomeInvalid
	}

	var single *auth.ValidationError
	if errors.As(err, &single) {
		return http.StatusBadRequest, errorResponse{
			Error:  "invalid request",
			Fields: []fieldError{{Field: single.Field, Reason: single.Reason}},
		}, observability.OutcomeInvalid
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: auth.ErrInvalidCredentials.Error()}, observability.OutcomeDenied
	case errors.Is(err, auth.ErrSessionNotFound):
		return http.StatusUnauthorized, errorResponse{Error: auth.ErrSessionNotFound.Error()}, observability.OutcomeDenied
	}

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}, observability.OutcomeInternal
}
