package devserver

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/securegate/sgadmin/cli/internal/client"
)

// Permissions granted through roles.
const (
	PermReadData  = "READ_DATA"
	PermWriteData = "WRITE_DATA"
	PermAdmin     = "ADMIN"
)

// Audit actions and statuses recorded by the repository.
const (
	ActionLogin      = "LOGIN"
	ActionAssignRole = "ASSIGN_ROLE"
	ActionRemoveRole = "REMOVE_ROLE"
	StatusSuccess    = "SUCCESS"
	StatusFailure    = "FAILURE"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrRoleNotFound = errors.New("role not found")
)

// SeedRole describes a role created at start-up.
type SeedRole struct {
	Name        string
	Permissions []string
}

// SeedUser describes an account created at start-up. Roles are role names.
type SeedUser struct {
	Username string
	Password string
	Roles    []string
}

// DefaultSeed returns the stock SecureGate accounts: an administrator and
// a read-only user.
func DefaultSeed() ([]SeedRole, []SeedUser) {
	roles := []SeedRole{
		{Name: "Admin", Permissions: []string{PermReadData, PermWriteData, PermAdmin}},
		{Name: "User", Permissions: []string{PermReadData}},
	}
	users := []SeedUser{
		{Username: "admin", Password: "admin123", Roles: []string{"Admin"}},
		{Username: "user", Password: "user123", Roles: []string{"User"}},
	}
	return roles, users
}

type account struct {
	id           int64
	username     string
	passwordHash []byte
	roleIDs      []int64
}

type role struct {
	id          int64
	name        string
	permissions []string
}

// Repository is the in-memory user, role and audit store of the dev server.
type Repository struct {
	mu       sync.RWMutex
	accounts []*account
	roles    []*role
	audit    []client.AuditLogEntry // newest first
	clock    clockwork.Clock
}

// NewRepository seeds a repository. Passwords are stored as bcrypt hashes
// of the given cost.
func NewRepository(roles []SeedRole, users []SeedUser, cost int, clock clockwork.Clock) (*Repository, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	repo := &Repository{clock: clock}

	for i, sr := range roles {
		repo.roles = append(repo.roles, &role{
			id:          int64(i + 1),
			name:        sr.Name,
			permissions: slices.Clone(sr.Permissions),
		})
	}

	for i, su := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", su.Username, err)
		}
		acct := &account{id: int64(i + 1), username: su.Username, passwordHash: hash}
		for _, name := range su.Roles {
			r := repo.roleByName(name)
			if r == nil {
				return nil, fmt.Errorf("user %s: %w: %s", su.Username, ErrRoleNotFound, name)
			}
			acct.roleIDs = append(acct.roleIDs, r.id)
		}
		repo.accounts = append(repo.accounts, acct)
	}

	return repo, nil
}

// Authenticate checks a username and password and records the attempt.
func (r *Repository) Authenticate(username, password string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) != nil {
			r.recordLocked(a.id, ActionLogin, StatusFailure)
			return 0, false
		}
		r.recordLocked(a.id, ActionLogin, StatusSuccess)
		return a.id, true
	}
	r.recordLocked(0, ActionLogin, StatusFailure)
	return 0, false
}

// User returns one user with role names.
func (r *Repository) User(id int64) (client.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a := r.accountByID(id)
	if a == nil {
		return client.User{}, false
	}
	return r.toUser(a), true
}

// Users returns all users ordered by id.
func (r *Repository) Users() []client.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]client.User, 0, len(r.accounts))
	for _, a := range r.accounts {
		users = append(users, r.toUser(a))
	}
	return users
}

// Roles returns all roles ordered by id.
func (r *Repository) Roles() []client.Role {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roles := make([]client.Role, 0, len(r.roles))
	for _, ro := range r.roles {
		roles = append(roles, client.Role{ID: ro.id, Name: ro.name})
	}
	return roles
}

// HasPermission reports whether any role of the user grants perm.
func (r *Repository) HasPermission(userID int64, perm string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a := r.accountByID(userID)
	if a == nil {
		return false
	}
	for _, id := range a.roleIDs {
		if ro := r.roleByID(id); ro != nil && slices.Contains(ro.permissions, perm) {
			return true
		}
	}
	return false
}

// AssignRole attaches a role to a user. Assigning a role the user already
// has changes nothing.
func (r *Repository) AssignRole(actorID, userID, roleID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, err := r.lookupLocked(userID, roleID)
	if err != nil {
		r.recordLocked(actorID, ActionAssignRole, StatusFailure)
		return err
	}
	if !slices.Contains(a.roleIDs, roleID) {
		a.roleIDs = append(a.roleIDs, roleID)
	}
	r.recordLocked(actorID, ActionAssignRole, StatusSuccess)
	return nil
}

// RemoveRole detaches a role from a user.
func (r *Repository) RemoveRole(actorID, userID, roleID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, err := r.lookupLocked(userID, roleID)
	if err != nil {
		r.recordLocked(actorID, ActionRemoveRole, StatusFailure)
		return err
	}
	a.roleIDs = slices.DeleteFunc(a.roleIDs, func(id int64) bool { return id == roleID })
	r.recordLocked(actorID, ActionRemoveRole, StatusSuccess)
	return nil
}

// AuditLogs returns the audit trail, newest first.
func (r *Repository) AuditLogs() []client.AuditLogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.audit)
}

func (r *Repository) lookupLocked(userID, roleID int64) (*account, error) {
	a := r.accountByID(userID)
	if a == nil {
		return nil, ErrUserNotFound
	}
	if r.roleByID(roleID) == nil {
		return nil, ErrRoleNotFound
	}
	return a, nil
}

func (r *Repository) recordLocked(userID int64, action, status string) {
	entry := client.AuditLogEntry{
		UserID:    userID,
		Action:    action,
		Status:    status,
		Timestamp: r.clock.Now().UTC().Format(time.RFC3339),
	}
	r.audit = append([]client.AuditLogEntry{entry}, r.audit...)
}

func (r *Repository) toUser(a *account) client.User {
	names := make([]string, 0, len(a.roleIDs))
	for _, id := range a.roleIDs {
		if ro := r.roleByID(id); ro != nil {
			names = append(names, ro.name)
		}
	}
	return client.User{ID: a.id, Username: a.username, Roles: names}
}

func (r *Repository) accountByID(id int64) *account {
	for _, a := range r.accounts {
		if a.id == id {
			return a
		}
	}
	return nil
}

func (r *Repository) roleByID(id int64) *role {
	for _, ro := range r.roles {
		if ro.id == id {
			return ro
		}
	}
	return nil
}

func (r *Repository) roleByName(name string) *role {
	for _, ro := range r.roles {
		if ro.name == name {
			return ro
		}
	}
	return nil
}
