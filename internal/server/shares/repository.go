package shares

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, share *Share) (*Share, error)
	GetByTrip(ctx context.Context, ownerID string, tripID string) (*Share, error)
	GetByToken(ctx context.Context, token string) (*Share, error)
	GetByZone(ctx context.Context, zoneID string) (*Share, error)
	Update(ctx context.Context, share *Share) error
	Delete(ctx context.Context, zoneID string) error
	// ZonesFor returns the zone ids whose roster includes userID.
	ZonesFor(ctx context.Context, userID string) ([]string, error)
}
