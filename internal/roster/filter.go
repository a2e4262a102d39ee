package roster

import (
	"fmt"
	"strings"

	"github.com/nhle/kitchen-roster/internal/model"
)

// ByAssignee reports whether rec is assigned directly to userID.
func ByAssignee(rec model.TaskRecord, userID string) bool {
	return userID != "" && rec.AssigneeUserID != nil && *rec.AssigneeUserID == userID
}

// ByRoleMembership reports whether rec is assigned to a role in held.
func ByRoleMembership(rec model.TaskRecord, held model.RoleSet) bool {
	return rec.AssigneeRoleID != nil && held.Has(*rec.AssigneeRoleID)
}

// ByCategoryHeuristic reports whether the lower-cased title contains any
// of keywords. It is a text match and misses tasks worded differently.
func ByCategoryHeuristic(rec model.TaskRecord, keywords []string) bool {
	title := strings.ToLower(rec.Title)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// InCategory reports whether rec belongs to cat, by keyword or by being
// assigned to one of the category's roles.
func InCategory(rec model.TaskRecord, cat model.CategoryConfig) bool {
	if ByCategoryHeuristic(rec, cat.Keywords) {
		return true
	}
	if rec.AssigneeRoleID == nil {
		return false
	}
	for _, id := range cat.RoleIDs {
		if id == *rec.AssigneeRoleID {
			return true
		}
	}
	return false
}

// Mine reports whether rec is assigned to the viewer, either directly or
// through a role the viewer holds right now.
func Mine(rec model.TaskRecord, viewer model.Viewer) bool {
	return ByAssignee(rec, viewer.UserID) || ByRoleMembership(rec, viewer.Roles)
}

// Scope selects whose tasks are shown.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeMine
	ScopeDirect
	ScopeRole
)

var scopeNames = [...]string{"all", "mine", "direct", "role"}

func (s Scope) String() string {
	if s < 0 || int(s) >= len(scopeNames) {
		return fmt.Sprintf("scope(%d)", int(s))
	}
	return scopeNames[s]
}

// Next cycles through the scopes.
func (s Scope) Next() Scope {
	return (s + 1) % Scope(len(scopeNames))
}

// ParseScope converts a scope name into a Scope.
func ParseScope(name string) (Scope, error) {
	for i, n := range scopeNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Scope(i), nil
		}
	}
	return ScopeAll, fmt.Errorf("unknown scope %q", name)
}

// Filter is a scope plus at most one category. An empty Category shows
// every category; a name not among the configured categories matches
// nothing.
type Filter struct {
	Scope    Scope
	Category string
}

// Match reports whether rec passes f for viewer.
func (f Filter) Match(rec model.TaskRecord, viewer model.Viewer, categories []model.CategoryConfig) bool {
	switch f.Scope {
	case ScopeMine:
		if !Mine(rec, viewer) {
			return false
		}
	case ScopeDirect:
		if !ByAssignee(rec, viewer.UserID) {
			return false
		}
	case ScopeRole:
		if !ByRoleMembership(rec, viewer.Roles) {
			return false
		}
	}

	if f.Category == "" {
		return true
	}
	for _, cat := range categories {
		if strings.EqualFold(cat.Name, f.Category) {
			return InCategory(rec, cat)
		}
	}
	return false
}
