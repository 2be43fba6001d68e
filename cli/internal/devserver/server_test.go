package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/securegate/sgadmin/cli/internal/client"
	"github.com/securegate/sgadmin/cli/internal/session"
	"github.com/securegate/sgadmin/common/middleware"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.LoginRate = 0
	return cfg
}

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(cfg, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func login(t *testing.T, baseURL, username, password string) string {
	t.Helper()
	res, err := client.NewAuthService(client.NewTransport(baseURL, nil)).Login(context.Background(), username, password)
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	return res.Token
}

type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), s != "" }

func TestLogin(t *testing.T) {
	_, ts := newTestServer(t, testConfig())

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "admin123"})
	resp, err := http.Post(ts.URL+"/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var res client.LoginResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "admin", res.Username)
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	id, err := session.Describe(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "1", id.Subject)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	_, ts := newTestServer(t, testConfig())

	body, _ := json.Marshal(map[string]string{"username": "baduser", "password": "badpass"})
	resp, err := http.Post(ts.URL+"/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var detail map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	assert.Equal(t, "Invalid credentials", detail["detail"])
}

func TestLogin_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.LoginRate = 0.001
	cfg.LoginBurst = 1
	_, ts := newTestServer(t, cfg)

	post := func() int {
		body, _ := json.Marshal(map[string]string{"username": "admin", "password": "admin123"})
		resp, err := http.Post(ts.URL+"/auth/login", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
}

func TestProtectedRoutes(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	adminToken := login(t, ts.URL, "admin", "admin123")
	userToken := login(t, ts.URL, "user", "user123")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"missing permission", "Bearer " + userToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusOK},
	}

	for _, path := range []string{"/admin/users", "/admin/roles", "/audit/logs"} {
		for _, tt := range tests {
			t.Run(path+" "+tt.name, func(t *testing.T) {
				req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
				require.NoError(t, err)
				if tt.header != "" {
					req.Header.Set("Authorization", tt.header)
				}
				resp, err := http.DefaultClient.Do(req)
				require.NoError(t, err)
				resp.Body.Close()
				assert.Equal(t, tt.want, resp.StatusCode)
			})
		}
	}
}

func TestAssignRole_RoundTrip(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	ctx := context.Background()
	transport := client.NewTransport(ts.URL, staticToken(login(t, ts.URL, "admin", "admin123")))
	admin := client.NewAdminService(transport)

	first, err := admin.GetUsers(ctx)
	require.NoError(t, err)
	second, err := admin.GetUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	raw, err := admin.AssignRole(ctx, 2, 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"Role assigned"}`, string(raw))

	users, err := admin.GetUsers(ctx)
	require.NoError(t, err)
	assert.True(t, users[1].HasRole("Admin"))

	_, err = admin.RemoveRole(ctx, 2, 1)
	require.NoError(t, err)
	users, err = admin.GetUsers(ctx)
	require.NoError(t, err)
	assert.False(t, users[1].HasRole("Admin"))

	logs, err := client.NewAuditService(transport).GetAuditLogs(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(logs), 3)
	assert.Equal(t, ActionRemoveRole, logs[0].Action)
	assert.Equal(t, ActionAssignRole, logs[1].Action)
	assert.Equal(t, ActionLogin, logs[2].Action)
	assert.Equal(t, int64(1), logs[0].UserID)
}

func TestAssignRole_UnknownRole(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	token := login(t, ts.URL, "admin", "admin123")

	body, _ := json.Marshal(client.AssignmentRequest{UserID: 2, RoleID: 99})
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/admin/assign-role", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	_, ts := newTestServer(t, testConfig())

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/auth/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	srv, err := New(testConfig(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
