package client

import (
	"context"
	"encoding/json"
	"net/http"
)

const (
	endpointUsers      = "/admin/users"
	endpointRoles      = "/admin/roles"
	endpointAssignRole = "/admin/assign-role"
	endpointRemoveRole = "/admin/remove-role"
)

// AdminService wraps the user and role administration endpoints.
type AdminService struct {
	transport *Transport
}

func NewAdminService(t *Transport) *AdminService {
	return &AdminService{transport: t}
}

func (s *AdminService) GetUsers(ctx context.Context) ([]User, error) {
	return sendJSON[[]User](ctx, s.transport, endpointUsers, http.MethodGet, nil)
}

func (s *AdminService) GetRoles(ctx context.Context) ([]Role, error) {
	return sendJSON[[]Role](ctx, s.transport, endpointRoles, http.MethodGet, nil)
}

// AssignRole attaches roleID to userID. The response is returned raw, callers
// only rely on the call succeeding.
func (s *AdminService) AssignRole(ctx context.Context, userID, roleID int64) (json.RawMessage, error) {
	return s.transport.Send(ctx, endpointAssignRole, http.MethodPost, AssignmentRequest{UserID: userID, RoleID: roleID})
}

// RemoveRole detaches roleID from userID.
func (s *AdminService) RemoveRole(ctx context.Context, userID, roleID int64) (json.RawMessage, error) {
	return s.transport.Send(ctx, endpointRemoveRole, http.MethodPost, AssignmentRequest{UserID: userID, RoleID: roleID})
}
