package controller

import (
	"context"
	"errors"

	"github.com/securegate/sgadmin/cli/internal/client"
	"github.com/securegate/sgadmin/cli/internal/session"
	"github.com/securegate/sgadmin/common/logging"
)

// ErrInvalidCredentials is returned when the server answers a login without
// a token. Transport failures are returned as they are, so callers can tell
// the two apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*client.LoginResult, error)
}

// SessionStore is the part of session.Store the login flow writes to.
type SessionStore interface {
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Navigate(view session.View)
}

// LoginController runs the login and logout flow.
type LoginController struct {
	auth    AuthAPI
	session SessionStore
	logger  *logging.Logger
}

func NewLoginController(auth AuthAPI, store SessionStore, logger *logging.Logger) *LoginController {
	if logger == nil {
		logger = logging.Discard()
	}
	return &LoginController{
		auth:    auth,
		session: store,
		logger:  logger.With(logging.Component("login")),
	}
}

// Login submits the credentials. On success the token is stored and the
// operator is sent to the dashboard; otherwise nothing is stored and no
// navigation happens.
func (c *LoginController) Login(ctx context.Context, username, password string) (*client.LoginResult, error) {
	res, err := c.auth.Login(ctx, username, password)
	if err != nil {
		c.logger.WarnContext(ctx, "login request failed", logging.Username(username), logging.Error(err))
		return nil, err
	}
	if res.Token == "" {
		c.logger.InfoContext(ctx, "login refused", logging.Username(username))
		return nil, ErrInvalidCredentials
	}

	if err := c.session.SetToken(ctx, res.Token); err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "logged in", logging.Username(username))
	c.session.Navigate(session.ViewDashboard)
	return res, nil
}

// Logout clears the session, which returns the operator to the login view.
func (c *LoginController) Logout(ctx context.Context) error {
	return c.session.Clear(ctx)
}
