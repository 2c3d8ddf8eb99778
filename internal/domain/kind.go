package domain

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
)

// Kind identifies an entity type in the graph. It is used by the change
// log on the wire and by the access policy when walking ownership.
type Kind string

const (
	KindTrip     Kind = "trip"
	KindDay      Kind = "day"
	KindStop     Kind = "stop"
	KindComment  Kind = "comment"
	KindLink     Kind = "link"
	KindTodo     Kind = "todo"
	KindBooking  Kind = "booking"
	KindExpense  Kind = "expense"
	KindList     Kind = "list"
	KindListItem Kind = "list_item"
	KindShare    Kind = "share"
)

// ParseKind validates a raw kind string from the wire.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindTrip, KindDay, KindStop, KindComment, KindLink, KindTodo,
		KindBooking, KindExpense, KindList, KindListItem, KindShare:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: unknown entity kind %q", common.ErrorValidation, s)
}

// Ref points at one entity in the graph.
type Ref struct {
	Kind Kind
	ID   uuid.UUID
}
