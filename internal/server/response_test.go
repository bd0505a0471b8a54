package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wolfeidau/tenancy/internal/errdefs"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "invalid argument", err: errdefs.InvalidArgument("bad"), status: http.StatusBadRequest},
		{name: "generic domain", err: errdefs.InvalidEmailDomain("gmail.com", "generic"), status: http.StatusBadRequest},
		{name: "forbidden", err: errdefs.Forbidden("acme_com", "administerOrg", ""), status: http.StatusForbidden},
		{name: "organization missing", err: errdefs.NotFound(errdefs.ErrOrganizationNotFound, "acme_com"), status: http.StatusNotFound},
		{name: "tier missing", err: errdefs.NotFound(errdefs.ErrTierNotFound, "L9"), status: http.StatusNotFound},
		{name: "duplicate", err: errdefs.DuplicateOrganization("acme_com"), status: http.StatusConflict},
		{name: "quota", err: errdefs.QuotaExceeded("acme_com", "run_quota", 1, 1), status: http.StatusTooManyRequests},
		{name: "storage", err: errdefs.StorageUnavailable("get", errors.New("boom")), status: http.StatusServiceUnavailable},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, statusFor(tt.err))
		})
	}
}
