package client

import (
	"context"
	"net/http"
)

const endpointLogin = "/auth/login"

// AuthService wraps the authentication endpoint.
type AuthService struct {
	transport *Transport
}

func NewAuthService(t *Transport) *AuthService {
	return &AuthService{transport: t}
}

// Login posts the credentials untouched. Refused credentials are reported by
// the server as a result without token, not as an error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	res, err := sendJSON[*LoginResult](ctx, s.transport, endpointLogin, http.MethodPost, LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &LoginResult{}
	}
	return res, nil
}
