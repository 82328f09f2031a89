// Package models holds the ledger domain types shared by storage, services
// and HTTP handlers, together with the request payloads and domain errors.
package models

import "time"

// Role is the access level of a user account.
type Role string

const (
	RoleRegular Role = "regular"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleRegular || r == RoleAdmin
}

// User is a registered account. PasswordHash never leaves the service layer.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the projection of a user that is safe to render to other users.
type PublicUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public returns the public projection of u.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserSort is the ordering of a user listing.
type UserSort string

const (
	SortNewest   UserSort = ""
	SortNameAsc  UserSort = "name_asc"
	SortNameDesc UserSort = "name_desc"
)

// UserFilter selects users for listing and export.
type UserFilter struct {
	Search        string // substring of name or email, case-insensitive
	Sort          UserSort
	ExcludeID     int64
	ExcludeAdmins bool
	Limit         int // 0 means no limit
	Offset        int
}

// UserPatch carries the fields an admin may change on a user.
type UserPatch struct {
	Name         *string
	Email        *string
	Role         *Role
	PasswordHash *string
}

// ParseUserSort maps a query value to a UserSort. Unknown values sort newest first.
func ParseUserSort(s string) UserSort {
	switch UserSort(s) {
	case SortNameAsc:
		return SortNameAsc
	case SortNameDesc:
		return SortNameDesc
	default:
		return SortNewest
	}
}

// PageMeta describes one page of a listing.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

// UserPage is a user listing. Meta is nil when every user was requested.
type UserPage struct {
	Users []PublicUser `json:"users"`
	Meta  *PageMeta    `json:"meta,omitempty"`
}
