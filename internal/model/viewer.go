package model

import "sort"

// RoleSet is the set of role ids a user currently holds.
type RoleSet map[string]struct{}

// NewRoleSet builds a RoleSet from ids, skipping blanks.
func NewRoleSet(ids ...string) RoleSet {
	rs := make(RoleSet, len(ids))
	for _, id := range ids {
		rs.Add(id)
	}
	return rs
}

// Has reports whether id is held.
func (rs RoleSet) Has(id string) bool {
	_, ok := rs[id]
	return ok
}

// Add inserts id. Blank ids are ignored.
func (rs RoleSet) Add(id string) {
	if id == "" {
		return
	}
	rs[id] = struct{}{}
}

// Remove deletes id.
func (rs RoleSet) Remove(id string) {
	delete(rs, id)
}

// IDs returns the held ids in sorted order.
func (rs RoleSet) IDs() []string {
	ids := make([]string, 0, len(rs))
	for id := range rs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy.
func (rs RoleSet) Clone() RoleSet {
	c := make(RoleSet, len(rs))
	for id := range rs {
		c[id] = struct{}{}
	}
	return c
}

// Viewer is the identity a roster is being viewed as.
type Viewer struct {
	UserID string
	Roles  RoleSet
}

// Role is a named position such as "cook" or "general_manager".
type Role struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// User is a staff member who can be assigned tasks.
type User struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

// Label returns the best human-readable name for the user.
func (u User) Label() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}
