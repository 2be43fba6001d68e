package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/securegate/sgadmin/cli/internal/client"
	"github.com/securegate/sgadmin/common/httputil"
	"github.com/securegate/sgadmin/common/logging"
)

type ctxKey struct{}

func withUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(ctxKey{}).(int64)
	return id
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Welcome to SecureGate RBAC System"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		httputil.WriteError(w, http.StatusTooManyRequests, "Too many login attempts")
		return
	}

	var req client.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	userID, ok := s.repo.Authenticate(req.Username, req.Password)
	if !ok {
		s.logger.InfoContext(r.Context(), "login refused", logging.Username(req.Username))
		httputil.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.tokens.Issue(userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to issue token", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, client.LoginResult{Token: token, Username: req.Username})
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.repo.Users())
}

func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.repo.Roles())
}

func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	s.mutateRole(w, r, s.repo.AssignRole, "Role assigned")
}

func (s *Server) handleRemoveRole(w http.ResponseWriter, r *http.Request) {
	s.mutateRole(w, r, s.repo.RemoveRole, "Role removed")
}

func (s *Server) mutateRole(w http.ResponseWriter, r *http.Request, apply func(actorID, userID, roleID int64) error, status string) {
	var req client.AssignmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := apply(userIDFrom(r.Context()), req.UserID, req.RoleID); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			httputil.WriteError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, ErrRoleNotFound):
			httputil.WriteError(w, http.StatusNotFound, "Role not found")
		default:
			httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.logger.InfoContext(r.Context(), status,
		logging.UserID(req.UserID), logging.RoleID(req.RoleID))
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.repo.AuditLogs())
}

// requirePermission admits requests whose bearer token belongs to a user
// holding perm.
func (s *Server) requirePermission(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := httputil.BearerToken(r)
			if raw == "" {
				httputil.WriteError(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}
			userID, err := s.tokens.Verify(raw)
			if err != nil {
				httputil.WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			if _, ok := s.repo.User(userID); !ok {
				httputil.WriteError(w, http.StatusUnauthorized, "User not found")
				return
			}
			if !s.repo.HasPermission(userID, perm) {
				httputil.WriteError(w, http.StatusForbidden, fmt.Sprintf("Permission '%s' required", perm))
				return
			}
			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
		})
	}
}
