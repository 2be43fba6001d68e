package client

import "encoding/json"

// User is an account as listed by the admin API. Roles holds role names in
// the order the server returned them.
type User struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the user holds the named role.
func (u User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// Role is a named permission grouping.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AuditLogEntry is a server-assigned audit record. Timestamp is passed
// through as the server formatted it.
type AuditLogEntry struct {
	UserID    int64  `json:"user_id"`
	Action    string `json:"action"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// AssignmentRequest is the body of assign-role and remove-role.
type AssignmentRequest struct {
	UserID int64 `json:"user_id"`
	RoleID int64 `json:"role_id"`
}

// LoginRequest is the body of /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the /auth/login response. An empty Token means the
// credentials were refused.
type LoginResult struct {
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
}

// UnmarshalJSON accepts any JSON value. A body that is not an object, or a
// token that is not a string, decodes as a result without token.
func (r *LoginResult) UnmarshalJSON(data []byte) error {
	*r = LoginResult{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	_ = json.Unmarshal(fields["token"], &r.Token)
	_ = json.Unmarshal(fields["username"], &r.Username)
	return nil
}
