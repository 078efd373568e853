package storage

import "github.com/edusync/edusync-client/internal/common"

// Global is the scope of entries shared by every identity of the profile.
const Global = ""

// Logical collection names. One durable entry per collection and scope.
const (
	NameIdentity       = "user"
	NameSession        = "session"
	NameResources      = "resources"
	NameFavorites      = "favorites"
	NameRecent         = "recent"
	NameHistory        = "recently-accessed"
	NameRecentSearches = "recent-searches"
	NameSettings       = "settings"
	NameAvatar         = "profile-picture"
)

// Key builds the fully-qualified durable key for name in scope:
// "edusync:<name>" for Global, "edusync:<scope>:<name>" otherwise.
func Key(scope, name string) string {
	if scope == Global {
		return common.KeyPrefix + ":" + name
	}
	return common.KeyPrefix + ":" + scope + ":" + name
}

// ScopePrefix is the key prefix shared by every entry of scope.
func ScopePrefix(scope string) string {
	return common.KeyPrefix + ":" + scope + ":"
}
