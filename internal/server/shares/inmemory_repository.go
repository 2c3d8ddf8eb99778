package shares

import (
	"context"
	"sync"

	"github.com/kevinbuckley/tripwit/internal/common"
)

type InMemoryRepository struct {
	mu     sync.RWMutex
	byZone map[string]*Share
}

func NewInMemoryRepository() (*InMemoryRepository, error) {
	return &InMemoryRepository{byZone: make(map[string]*Share)}, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, share *Share) (*Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *share
	r.byZone[share.ZoneID.String()] = &cp
	return share, nil
}

func (r *InMemoryRepository) find(match func(*Share) bool) (*Share, error) {
	for _, s := range r.byZone {
		if match(s) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) GetByTrip(ctx context.Context, ownerID string, tripID string) (*Share, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(func(s *Share) bool {
		return s.OwnerID == ownerID && s.TripID.String() == tripID
	})
}

func (r *InMemoryRepository) GetByToken(ctx context.Context, token string) (*Share, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(func(s *Share) bool { return s.Token == token })
}

func (r *InMemoryRepository) GetByZone(ctx context.Context, zoneID string) (*Share, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byZone[zoneID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, share *Share) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byZone[share.ZoneID.String()]; !ok {
		return common.ErrorNotFound
	}
	cp := *share
	r.byZone[share.ZoneID.String()] = &cp
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, zoneID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byZone[zoneID]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byZone, zoneID)
	return nil
}

func (r *InMemoryRepository) ZonesFor(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var zones []string
	for zone, s := range r.byZone {
		if _, ok := s.PermissionFor(userID); ok {
			zones = append(zones, zone)
		}
	}
	return zones, nil
}
