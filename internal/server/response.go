package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wolfeidau/tenancy/internal/auth"
	"github.com/wolfeidau/tenancy/internal/errdefs"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	Key        string `json:"key,omitempty"`
	Capability string `json:"capability,omitempty"`
	Limit      string `json:"limit,omitempty"`
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(err error) int {
	switch errdefs.Kind(err) {
	case errdefs.ErrInvalidArgument, errdefs.ErrInvalidEmailDomain:
		return http.StatusBadRequest
	case errdefs.ErrForbidden:
		return http.StatusForbidden
	case errdefs.ErrOrganizationNotFound, errdefs.ErrJoinRequestNotFound, errdefs.ErrTierNotFound,
		errdefs.ErrUserNotFound, errdefs.ErrSubscriptionNotFound, errdefs.ErrRoleNotFound:
		return http.StatusNotFound
	case errdefs.ErrDuplicateOrganization:
		return http.StatusConflict
	case errdefs.ErrQuotaExceeded:
		return http.StatusTooManyRequests
	case errdefs.ErrStorageUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_argument"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "already_exists"
	case http.StatusTooManyRequests:
		return "quota_exceeded"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}
	return "internal"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	resp := errorResponse{Error: err.Error(), Code: codeFor(status)}
	var e *errdefs.Error
	if errors.As(err, &e) {
		resp.Key = e.Key
		resp.Capability = e.Capability
		resp.Limit = e.Limit
	}

	evt := zerolog.Ctx(r.Context()).Debug()
	if status >= http.StatusInternalServerError {
		evt = zerolog.Ctx(r.Context()).Error()
		if status == http.StatusInternalServerError {
			resp.Error = "internal error"
		}
	}
	evt.Err(err).Int("status", status).Msg("request failed")

	writeJSON(w, status, resp)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errdefs.InvalidArgument(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// caller returns the identity placed on the context by the auth middleware.
func caller(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}
