package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleStaff UserRole = "STAFF"
)

// RoleSet is a normalised, de-duplicated set of roles.
// It decodes from either a single string or an array of strings.
type RoleSet []UserRole

// NewRoleSet upper-cases, trims and de-duplicates the given roles.
func NewRoleSet(roles ...UserRole) RoleSet {
	seen := make(map[UserRole]struct{}, len(roles))
	set := make(RoleSet, 0, len(roles))
	for _, role := range roles {
		normalized := UserRole(strings.ToUpper(strings.TrimSpace(string(role))))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		set = append(set, normalized)
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}

// ParseRoleSet builds a RoleSet from raw strings.
func ParseRoleSet(raw ...string) RoleSet {
	roles := make([]UserRole, 0, len(raw))
	for _, r := range raw {
		roles = append(roles, UserRole(r))
	}
	return NewRoleSet(roles...)
}

// Has reports whether the set contains role.
func (s RoleSet) Has(role UserRole) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// HasAny reports whether the set contains at least one of roles.
func (s RoleSet) HasAny(roles ...UserRole) bool {
	for _, role := range roles {
		if s.Has(role) {
			return true
		}
	}
	return false
}

// Strings returns the roles as plain strings.
func (s RoleSet) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}

// MarshalJSON always renders an array.
func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON accepts "ADMIN", "admin,staff" or ["ADMIN","STAFF"].
func (s *RoleSet) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*s = ParseRoleSet(many...)
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("roles must be a string or an array of strings")
	}
	*s = ParseRoleSet(strings.Split(one, ",")...)
	return nil
}

// Scan implements sql.Scanner for TEXT[] columns.
func (s *RoleSet) Scan(value interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(value); err != nil {
		return fmt.Errorf("scan roles: %w", err)
	}
	*s = ParseRoleSet(arr...)
	return nil
}

// Value implements driver.Valuer.
func (s RoleSet) Value() (driver.Value, error) {
	return pq.StringArray(s.Strings()).Value()
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Roles        RoleSet    `db:"roles" json:"roles"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Actor identifies who performs a request. It is passed explicitly to services.
type Actor struct {
	UserID string
	Email  string
	Roles  RoleSet
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
