package changelog

import (
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

// Record is a change-log entry as stored by the authority. UserID is the
// owning account for owned-scope entries; shared-scope entries are keyed
// by their zone instead.
type Record struct {
	syncx.Entry
	UserID string
}

// Query selects a slice of the log. Owned streams are addressed by
// UserID, shared streams by the set of zones the caller belongs to.
type Query struct {
	Scope  syncx.Scope
	UserID string
	Zones  []string
	After  syncx.Token
	Limit  int
}
