package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type assignment struct {
		UserID int64 `json:"user_id"`
		RoleID int64 `json:"role_id"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/admin/assign-role", strings.NewReader(`{"user_id":7,"role_id":2}`))
		var got assignment

		require.NoError(t, DecodeJSON(r, &got))
		assert.Equal(t, assignment{UserID: 7, RoleID: 2}, got)
	})

	t.Run("unknown field", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/admin/assign-role", strings.NewReader(`{"user":7}`))
		var got assignment

		assert.Error(t, DecodeJSON(r, &got))
	})

	t.Run("malformed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/admin/assign-role", strings.NewReader(`{`))
		var got assignment

		assert.ErrorContains(t, DecodeJSON(r, &got), "invalid JSON body")
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer", "Bearer abc", "abc"},
		{"lowercase scheme", "bearer abc", "abc"},
		{"missing", "", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz", ""},
		{"no token", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, BearerToken(r))
		})
	}
}
