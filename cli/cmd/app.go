package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/securegate/sgadmin/cli/internal/client"
	"github.com/securegate/sgadmin/cli/internal/controller"
	"github.com/securegate/sgadmin/cli/internal/session"
	"github.com/securegate/sgadmin/cli/pkg/output"
	"github.com/securegate/sgadmin/common/config"
	"github.com/securegate/sgadmin/common/logging"
)

// app is what a command needs to talk to SecureGate: one session store and
// the services sharing it.
type app struct {
	profile   string
	baseURL   string
	// pinnedURL is the --base-url value, recorded on the profile at login.
	pinnedURL string
	format    string
	printer   *output.Printer
	store     *session.Store
	auth      *client.AuthService
	admin     *client.AdminService
	audit     *client.AuditService
	closer    func() error
}

func newApp(cmd *cobra.Command) (*app, error) {
	profile, _ := cmd.Flags().GetString("profile")
	if profile == "" {
		profile = cfg.CurrentProfile
	}
	if profile == "" {
		profile = config.DefaultProfile
	}

	baseURL := cfg.BaseURL(profile)
	var pinnedURL string
	if f := cmd.Flags().Lookup("base-url"); f != nil && f.Changed {
		baseURL = f.Value.String()
		pinnedURL = baseURL
	}

	format, _ := cmd.Flags().GetString("output")
	a := &app{
		profile:   profile,
		baseURL:   baseURL,
		pinnedURL: pinnedURL,
		format:    format,
		printer:   newPrinter(cmd),
		closer:    func() error { return nil },
	}

	backend, err := a.sessionBackend(cmd)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := session.Open(ctx, backend, &terminalNavigator{printer: a.printer})
	if err != nil {
		_ = a.closer()
		return nil, err
	}
	a.store = store

	transport := client.NewTransport(baseURL, store,
		client.WithLogger(logger.With(logging.Profile(profile))),
		client.WithMetrics(recorder),
	)
	a.auth = client.NewAuthService(transport)
	a.admin = client.NewAdminService(transport)
	a.audit = client.NewAuditService(transport)
	return a, nil
}

func (a *app) sessionBackend(cmd *cobra.Command) (session.Backend, error) {
	if ephemeral, _ := cmd.Flags().GetBool("ephemeral"); ephemeral {
		return session.NewMemoryBackend(), nil
	}

	switch cfg.Session.Backend {
	case "", config.SessionFile:
		return session.NewFileBackend(cfg, a.profile, a.pinnedURL), nil
	case config.SessionRedis:
		backend, err := session.NewRedisBackendFromURL(cfg.Session.RedisURL, cfg.Session.KeyPrefix, a.profile)
		if err != nil {
			return nil, err
		}
		a.closer = backend.Close
		return backend, nil
	case config.SessionMemory:
		return session.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

func (a *app) Close() {
	if err := a.closer(); err != nil {
		logger.Warn("failed to close session backend", logging.Error(err))
	}
}

func (a *app) jsonOutput() bool { return a.format == "json" }

// requireSession is the guard of commands that act on protected data.
func (a *app) requireSession() error {
	if !a.store.RequireAuth() {
		return controller.ErrNotAuthenticated
	}
	return nil
}

func (a *app) reconciler(view controller.View) *controller.Reconciler {
	return controller.NewReconciler(a.admin, a.audit, view, a.store,
		controller.WithReconcilerLogger(logger.With(logging.Profile(a.profile))),
		controller.WithReconcilerMetrics(recorder),
	)
}

func (a *app) loginController() *controller.LoginController {
	return controller.NewLoginController(a.auth, a.store, logger.With(logging.Profile(a.profile)))
}
