package syncx

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/domain"
)

// Op is the kind of mutation a change-log entry carries.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// Entry is one change-log record. Author identifies the device+install
// that produced the mutation so a device can suppress echoes of its own
// writes. For upserts Payload is the full JSON encoding of the entity
// (last writer wins at the record level); for deletes it is empty.
type Entry struct {
	Token      Token           `json:"token,omitempty"` // assigned by the authority
	Scope      Scope           `json:"scope"`
	ZoneID     uuid.UUID       `json:"zone_id,omitempty"` // share zone, shared scope only
	Author     string          `json:"author"`
	Kind       domain.Kind     `json:"kind"`
	EntityID   uuid.UUID       `json:"entity_id"`
	Op         Op              `json:"op"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Validate checks the structural fields of an entry received from the
// wire. The payload itself is validated by whoever applies it.
func (e Entry) Validate() error {
	if _, err := ParseScope(string(e.Scope)); err != nil {
		return err
	}
	if _, err := domain.ParseKind(string(e.Kind)); err != nil {
		return err
	}
	if e.Op != OpUpsert && e.Op != OpDelete {
		return fmt.Errorf("unknown op %q", e.Op)
	}
	if e.EntityID == uuid.Nil {
		return fmt.Errorf("entry has no entity id")
	}
	if e.Op == OpUpsert && len(e.Payload) == 0 {
		return fmt.Errorf("upsert entry has no payload")
	}
	return nil
}

// UpsertEntry encodes entity as an upsert change for the given scope.
func UpsertEntry(scope Scope, author string, kind domain.Kind, entityID uuid.UUID, entity any) (Entry, error) {
	payload, err := json.Marshal(entity)
	if err != nil {
		return Entry{}, fmt.Errorf("encoding %s payload: %w", kind, err)
	}
	return Entry{
		Scope:      scope,
		Author:     author,
		Kind:       kind,
		EntityID:   entityID,
		Op:         OpUpsert,
		Payload:    payload,
		RecordedAt: time.Now().UTC(),
	}, nil
}

// DeleteEntry encodes a delete change for the given scope.
func DeleteEntry(scope Scope, author string, kind domain.Kind, entityID uuid.UUID) Entry {
	return Entry{
		Scope:      scope,
		Author:     author,
		Kind:       kind,
		EntityID:   entityID,
		Op:         OpDelete,
		RecordedAt: time.Now().UTC(),
	}
}
