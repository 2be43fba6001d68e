package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securegate/sgadmin/cli/internal/client"
	"github.com/securegate/sgadmin/cli/internal/session"
)

// loginStub answers /auth/login for alice/correct and records the
// Authorization header of every other request.
type loginStub struct {
	mu          sync.Mutex
	authHeaders []string
}

func (s *loginStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/auth/login" {
		if r.Header.Get("Authorization") != "" {
			http.Error(w, "unexpected credentials", http.StatusBadRequest)
			return
		}
		var body struct{ Username, Password string }
		_ = decodeJSON(r, &body)
		if body.Username == "alice" && body.Password == "correct" {
			w.Write([]byte(`{"token":"abc"}`))
			return
		}
		w.Write([]byte(`{}`))
		return
	}

	s.mu.Lock()
	s.authHeaders = append(s.authHeaders, r.Header.Get("Authorization"))
	s.mu.Unlock()
	w.Write([]byte(`[]`))
}

type loginFixture struct {
	stub   *loginStub
	server *httptest.Server
	store  *session.Store
	views  []session.View
	ctrl   *LoginController
	admin  *client.AdminService
}

func newLoginFixture(t *testing.T) *loginFixture {
	t.Helper()
	f := &loginFixture{stub: &loginStub{}}
	f.server = httptest.NewServer(f.stub)
	t.Cleanup(f.server.Close)

	store, err := session.Open(context.Background(), session.NewMemoryBackend(), session.NavigatorFunc(func(v session.View) {
		f.views = append(f.views, v)
	}))
	require.NoError(t, err)
	f.store = store

	transport := client.NewTransport(f.server.URL, store)
	f.ctrl = NewLoginController(client.NewAuthService(transport), store, nil)
	f.admin = client.NewAdminService(transport)
	return f
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newLoginFixture(t)

	res, err := f.ctrl.Login(context.Background(), "alice", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, client.ErrRequestFailed)
	assert.Nil(t, res)
	_, ok := f.store.Token()
	assert.False(t, ok)
	assert.Empty(t, f.views)
}

func TestLogin_NonStringTokenIsInvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":123}`))
	}))
	defer server.Close()

	store, err := session.Open(context.Background(), nil, nil)
	require.NoError(t, err)
	ctrl := NewLoginController(client.NewAuthService(client.NewTransport(server.URL, store)), store, nil)

	res, err := ctrl.Login(context.Background(), "alice", "correct")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, client.ErrRequestFailed)
	assert.Nil(t, res)
	_, ok := store.Token()
	assert.False(t, ok)
}

func TestLogin_CorrectPassword(t *testing.T) {
	f := newLoginFixture(t)

	res, err := f.ctrl.Login(context.Background(), "alice", "correct")

	require.NoError(t, err)
	assert.Equal(t, "abc", res.Token)
	token, ok := f.store.Token()
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
	assert.Equal(t, []session.View{session.ViewDashboard}, f.views)
}

func TestLogin_TokenSentOnEveryLaterRequest(t *testing.T) {
	f := newLoginFixture(t)
	ctx := context.Background()

	_, err := f.admin.GetUsers(ctx)
	require.NoError(t, err)

	_, err = f.ctrl.Login(ctx, "alice", "correct")
	require.NoError(t, err)

	_, err = f.admin.GetUsers(ctx)
	require.NoError(t, err)
	_, err = f.admin.GetRoles(ctx)
	require.NoError(t, err)

	require.NoError(t, f.ctrl.Logout(ctx))
	_, err = f.admin.GetUsers(ctx)
	require.NoError(t, err)

	f.stub.mu.Lock()
	defer f.stub.mu.Unlock()
	assert.Equal(t, []string{"", "Bearer abc", "Bearer abc", ""}, f.stub.authHeaders)
}

func TestLogin_TransportFailureIsNotInvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid credentials"}`))
	}))
	defer server.Close()

	store, err := session.Open(context.Background(), nil, nil)
	require.NoError(t, err)
	ctrl := NewLoginController(client.NewAuthService(client.NewTransport(server.URL, store)), store, nil)

	_, err = ctrl.Login(context.Background(), "alice", "wrong")

	assert.ErrorIs(t, err, client.ErrRequestFailed)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	_, ok := store.Token()
	assert.False(t, ok)
}

func TestLogout_NavigatesToLogin(t *testing.T) {
	f := newLoginFixture(t)
	ctx := context.Background()
	_, err := f.ctrl.Login(ctx, "alice", "correct")
	require.NoError(t, err)

	require.NoError(t, f.ctrl.Logout(ctx))

	_, ok := f.store.Token()
	assert.False(t, ok)
	assert.Equal(t, []session.View{session.ViewDashboard, session.ViewLogin}, f.views)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
