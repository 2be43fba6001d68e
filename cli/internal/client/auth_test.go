package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "alice", payload["username"])
		assert.Equal(t, "correct", payload["password"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"abc","username":"alice"}`))
	}))
	defer server.Close()

	svc := NewAuthService(NewTransport(server.URL, nil))
	res, err := svc.Login(context.Background(), "alice", "correct")

	require.NoError(t, err)
	assert.Equal(t, "abc", res.Token)
	assert.Equal(t, "alice", res.Username)
}

func TestLogin_NoTokenIsNotAnError(t *testing.T) {
	for _, body := range []string{`{}`, `null`} {
		t.Run(body, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			res, err := NewAuthService(NewTransport(server.URL, nil)).Login(context.Background(), "alice", "wrong")

			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Empty(t, res.Token)
		})
	}
}

func TestLogin_UnusableTokenIsNotAnError(t *testing.T) {
	for _, body := range []string{`[]`, `"abc"`, `42`, `{"token":123}`, `{"token":null}`, `{"token":{"value":"abc"}}`} {
		t.Run(body, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			res, err := NewAuthService(NewTransport(server.URL, nil)).Login(context.Background(), "alice", "wrong")

			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Empty(t, res.Token)
		})
	}
}

func TestLogin_UsernameIgnoredWhenMistyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"abc","username":7}`))
	}))
	defer server.Close()

	res, err := NewAuthService(NewTransport(server.URL, nil)).Login(context.Background(), "alice", "correct")

	require.NoError(t, err)
	assert.Equal(t, "abc", res.Token)
	assert.Empty(t, res.Username)
}

func TestLogin_EmptyCredentialsSentAsIs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, map[string]string{"username": "", "password": ""}, payload)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := NewAuthService(NewTransport(server.URL, nil)).Login(context.Background(), "", "")
	require.NoError(t, err)
}

func TestLogin_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid credentials"}`))
	}))
	defer server.Close()

	res, err := NewAuthService(NewTransport(server.URL, nil)).Login(context.Background(), "baduser", "badpass")

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestLogin_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{invalid json`))
	}))
	defer server.Close()

	res, err := NewAuthService(NewTransport(server.URL, nil)).Login(context.Background(), "user", "pass")

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrRequestFailed)
}
