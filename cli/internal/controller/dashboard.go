// Package controller drives the admin dashboard and the login flow on top of
// the SecureGate client services.
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/securegate/sgadmin/cli/internal/client"
	"github.com/securegate/sgadmin/cli/internal/metrics"
	"github.com/securegate/sgadmin/common/logging"
)

// RecentAuditEntries is how many audit entries the dashboard shows.
const RecentAuditEntries = 5

// ErrNotAuthenticated is returned when a protected view is opened without a
// session token.
var ErrNotAuthenticated = errors.New("not authenticated")

// AdminAPI is the part of the admin service the dashboard needs.
type AdminAPI interface {
	GetUsers(ctx context.Context) ([]client.User, error)
	GetRoles(ctx context.Context) ([]client.Role, error)
	AssignRole(ctx context.Context, userID, roleID int64) (json.RawMessage, error)
	RemoveRole(ctx context.Context, userID, roleID int64) (json.RawMessage, error)
}

type AuditAPI interface {
	GetAuditLogs(ctx context.Context) ([]client.AuditLogEntry, error)
}

// View renders dashboard data. Roles are passed along with users so the view
// can offer them as assignment choices.
type View interface {
	RenderUsers(users []client.User, roles []client.Role)
	RenderLogs(entries []client.AuditLogEntry)
}

// AuthGate decides whether a protected view may load. It redirects on its
// own when it refuses.
type AuthGate interface {
	RequireAuth() bool
}

// Reconciler keeps the dashboard view in step with the server. Every
// mutation is followed by a full reload; nothing is updated optimistically
// and nothing is retried.
type Reconciler struct {
	admin   AdminAPI
	audit   AuditAPI
	view    View
	gate    AuthGate
	logger  *logging.Logger
	metrics *metrics.Recorder

	mu       sync.Mutex
	state    State
	rendered bool
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

func WithReconcilerLogger(l *logging.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l.With(logging.Component("dashboard"))
		}
	}
}

func WithReconcilerMetrics(m *metrics.Recorder) ReconcilerOption {
	return func(r *Reconciler) { r.metrics = m }
}

func NewReconciler(admin AdminAPI, audit AuditAPI, view View, gate AuthGate, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		admin:  admin,
		audit:  audit,
		view:   view,
		gate:   gate,
		logger: logging.Discard(),
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current phase.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Open loads the dashboard if the session is authenticated. Without a
// session nothing is fetched.
func (r *Reconciler) Open(ctx context.Context) error {
	if !r.gate.RequireAuth() {
		return ErrNotAuthenticated
	}
	return r.load(ctx, "open")
}

// Load fetches users and roles concurrently and renders them once both have
// arrived. The audit log is fetched alongside and rendered after the users,
// cut to the most recent entries. A failure of either the users or the
// roles fetch fails the whole load.
func (r *Reconciler) Load(ctx context.Context) error {
	return r.load(ctx, "load")
}

func (r *Reconciler) load(ctx context.Context, trigger string) error {
	r.transition(ctx, StateLoading)

	var (
		users   []client.User
		roles   []client.Role
		entries []client.AuditLogEntry
	)

	// Issued requests always run to completion, so neither group cancels
	// its siblings on failure.
	var auditGroup errgroup.Group
	auditGroup.Go(func() error {
		var err error
		entries, err = r.audit.GetAuditLogs(ctx)
		return err
	})

	var g errgroup.Group
	g.Go(func() error {
		var err error
		users, err = r.admin.GetUsers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		roles, err = r.admin.GetRoles(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		_ = auditGroup.Wait()
		r.transition(ctx, StateIdle)
		r.logger.WarnContext(ctx, "dashboard load failed", logging.Error(err))
		r.metrics.ObserveLoad(trigger, err)
		return err
	}

	r.view.RenderUsers(users, roles)
	r.transition(ctx, StateRendered)

	if err := auditGroup.Wait(); err != nil {
		r.logger.WarnContext(ctx, "audit log fetch failed", logging.Error(err))
		r.metrics.ObserveLoad(trigger, err)
		return err
	}
	r.view.RenderLogs(Truncate(entries, RecentAuditEntries))

	r.metrics.ObserveLoad(trigger, nil)
	return nil
}

// AssignRole attaches a role and reloads the dashboard. When the assignment
// itself fails the error is returned and no reload happens.
func (r *Reconciler) AssignRole(ctx context.Context, userID, roleID int64) error {
	r.transition(ctx, StateAssigning)
	if _, err := r.admin.AssignRole(ctx, userID, roleID); err != nil {
		r.restore(ctx)
		r.logger.WarnContext(ctx, "role assignment failed",
			logging.UserID(userID), logging.RoleID(roleID), logging.Error(err))
		return err
	}
	r.logger.InfoContext(ctx, "role assigned", logging.UserID(userID), logging.RoleID(roleID))
	return r.load(ctx, "assign")
}

// RemoveRole detaches a role and reloads the dashboard.
func (r *Reconciler) RemoveRole(ctx context.Context, userID, roleID int64) error {
	r.transition(ctx, StateRemoving)
	if _, err := r.admin.RemoveRole(ctx, userID, roleID); err != nil {
		r.restore(ctx)
		r.logger.WarnContext(ctx, "role removal failed",
			logging.UserID(userID), logging.RoleID(roleID), logging.Error(err))
		return err
	}
	r.logger.InfoContext(ctx, "role removed", logging.UserID(userID), logging.RoleID(roleID))
	return r.load(ctx, "remove")
}

// restore leaves a failed mutation. The view still shows the last render,
// if there was one.
func (r *Reconciler) restore(ctx context.Context) {
	r.mu.Lock()
	rendered := r.rendered
	r.mu.Unlock()
	if rendered {
		r.transition(ctx, StateRendered)
		return
	}
	r.transition(ctx, StateIdle)
}

func (r *Reconciler) transition(ctx context.Context, to State) {
	r.mu.Lock()
	from := r.state
	r.state = to
	switch to {
	case StateRendered:
		r.rendered = true
	case StateIdle:
		r.rendered = false
	}
	r.mu.Unlock()
	r.logger.DebugContext(ctx, "dashboard state", logging.State(to.String()), "from", from.String())
}

// Truncate returns the first n entries in the order given, or all of them
// when there are fewer.
func Truncate(entries []client.AuditLogEntry, n int) []client.AuditLogEntry {
	if n < 0 {
		n = 0
	}
	if len(entries) <= n {
		return entries
	}
	return entries[:n]
}
