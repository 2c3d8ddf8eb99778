// Package syncx defines the wire-level types shared by the client syncer
// and the authority server: replica scopes, change-log entries, history
// tokens, and the remote error taxonomy.
package syncx

import (
	"fmt"

	"github.com/kevinbuckley/tripwit/internal/common"
)

// Scope is one of the two independently synchronized partitions of the
// replica store. Records the local user created live in the owned scope;
// records belonging to trips shared by someone else live in the shared
// scope.
type Scope string

const (
	ScopeOwned  Scope = "owned"
	ScopeShared Scope = "shared"
)

// Scopes lists all scopes in sync order.
var Scopes = []Scope{ScopeOwned, ScopeShared}

// ParseScope validates a raw scope string from the wire.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeOwned, ScopeShared:
		return Scope(s), nil
	}
	return "", fmt.Errorf("%w: unknown scope %q", common.ErrorValidation, s)
}
