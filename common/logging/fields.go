package logging

import "log/slog"

// Common field names so client and dev server logs line up.
const (
	FieldRequestID = "request_id"
	FieldComponent = "component"
	FieldEndpoint  = "endpoint"
	FieldMethod    = "method"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldUserID    = "user_id"
	FieldRoleID    = "role_id"
	FieldUsername  = "username"
	FieldState     = "state"
	FieldProfile   = "profile"
)

// Component returns a slog attribute naming the emitting component.
func Component(name string) slog.Attr {
	return slog.String(FieldComponent, name)
}

// Endpoint returns a slog attribute for the API endpoint path.
func Endpoint(path string) slog.Attr {
	return slog.String(FieldEndpoint, path)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

func UserID(id int64) slog.Attr {
	return slog.Int64(FieldUserID, id)
}

func RoleID(id int64) slog.Attr {
	return slog.Int64(FieldRoleID, id)
}

func Username(name string) slog.Attr {
	return slog.String(FieldUsername, name)
}

// State returns a slog attribute for a reconciler state name.
func State(name string) slog.Attr {
	return slog.String(FieldState, name)
}

func Profile(name string) slog.Attr {
	return slog.String(FieldProfile, name)
}
