package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
)

// ShareRole is a participant's role on a shared trip.
type ShareRole string

const (
	RoleOwner       ShareRole = "owner"
	RoleParticipant ShareRole = "participant"
)

// ParseShareRole validates a raw role string at the store boundary.
func ParseShareRole(s string) (ShareRole, error) {
	switch ShareRole(s) {
	case RoleOwner, RoleParticipant:
		return ShareRole(s), nil
	}
	return "", fmt.Errorf("%w: unknown share role %q", common.ErrorValidation, s)
}

// SharePermission is what a participant may do with the shared subtree.
type SharePermission string

const (
	PermissionReadOnly  SharePermission = "readOnly"
	PermissionReadWrite SharePermission = "readWrite"
)

// ParseSharePermission validates a raw permission string at the store boundary.
func ParseSharePermission(s string) (SharePermission, error) {
	switch SharePermission(s) {
	case PermissionReadOnly, PermissionReadWrite:
		return SharePermission(s), nil
	}
	return "", fmt.Errorf("%w: unknown share permission %q", common.ErrorValidation, s)
}

// Participant is one member of a share's roster.
type Participant struct {
	UserID     string          `json:"user_id"`
	Role       ShareRole       `json:"role"`
	Permission SharePermission `json:"permission"`
}

// Share associates a trip with at most one collaborative link. ZoneID is
// the remote record zone holding the shared subtree; URL is empty until
// the authority has assigned and propagated the link.
type Share struct {
	ID           uuid.UUID     `json:"id"`
	TripID       uuid.UUID     `json:"trip_id"`
	ZoneID       uuid.UUID     `json:"zone_id"`
	URL          string        `json:"url,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Resolvable reports whether the share carries a link that collaborators
// can actually open. A persisted share without one is stale and must be
// purged and recreated.
func (s Share) Resolvable() bool {
	return s.URL != ""
}

// PermissionFor returns the recorded permission for userID, or readOnly
// with ok=false when the user is not on the roster.
func (s Share) PermissionFor(userID string) (SharePermission, bool) {
	for _, p := range s.Participants {
		if p.UserID == userID {
			return p.Permission, true
		}
	}
	return PermissionReadOnly, false
}

// IsOwner reports whether userID holds the owner role on the roster.
func (s Share) IsOwner(userID string) bool {
	for _, p := range s.Participants {
		if p.UserID == userID && p.Role == RoleOwner {
			return true
		}
	}
	return false
}
