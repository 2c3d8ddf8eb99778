// Package remote defines the client's view of the sync authority and its
// HTTP implementation. Every method maps a transport failure onto the
// coded error taxonomy in internal/syncx so that callers can decide
// between retry, full resync and giving up without inspecting transport
// details.
package remote

import (
	"context"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

// ChangeBatch is a page of change-log entries plus the cursor to resume
// from.
type ChangeBatch struct {
	Entries []syncx.Entry `json:"entries"`
	Next    syncx.Token   `json:"next"`
}

// Session is the JWT pair issued at login, plus the account id the
// authority knows the device as.
type Session struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Authority is the remote sync service as seen from a device.
type Authority interface {
	Register(ctx context.Context, login, secret string) error
	Login(ctx context.Context, login, secret string) (Session, error)

	PushChanges(ctx context.Context, scope syncx.Scope, entries []syncx.Entry) ([]syncx.Token, error)
	FetchChangesSince(ctx context.Context, scope syncx.Scope, after syncx.Token) (ChangeBatch, error)
	FetchSnapshot(ctx context.Context, scope syncx.Scope) (ChangeBatch, error)

	CreateShare(ctx context.Context, tripID uuid.UUID) (domain.Share, error)
	FetchShareMetadata(ctx context.Context, shareURL string) (domain.Share, error)
	AcceptShare(ctx context.Context, shareURL string) (domain.Share, error)
	PersistShare(ctx context.Context, share domain.Share) (domain.Share, error)
	PurgeZone(ctx context.Context, zoneID uuid.UUID) error

	PresignUpload(ctx context.Context, key string) (string, string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}
