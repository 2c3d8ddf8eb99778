package shares

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/logging"
	"github.com/kevinbuckley/tripwit/internal/server/config"
	"github.com/kevinbuckley/tripwit/internal/shared"
)

// Service manages share zones. Link propagation is deliberately
// non-atomic: a created share resolves only after the configured delay,
// which is what clients poll against before handing the URL out.
type Service struct {
	repo             Repository
	baseURL          string
	propagationDelay time.Duration
	log              logging.Logger
}

func NewService(repo Repository, cfg *config.Config, log logging.Logger) *Service {
	return &Service{
		repo:             repo,
		baseURL:          cfg.ShareBaseURL,
		propagationDelay: cfg.SharePropagationDelay,
		log:              log,
	}
}

// Create provisions a share zone for a trip. Repeated calls for the same
// trip return the existing share, so clients can safely re-request after
// a dropped response.
func (s *Service) Create(ctx context.Context, userID string, tripID string) (*Share, error) {

	if _, err := uuid.Parse(tripID); err != nil {
		return nil, fmt.Errorf("%w: bad trip id", common.ErrorValidation)
	}

	existing, err := s.repo.GetByTrip(ctx, userID, tripID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	token, err := shared.MakeRandHexString(16)
	if err != nil {
		return nil, common.ErrorInternal
	}

	now := time.Now().UTC()
	share := &Share{
		Share: domain.Share{
			ID:     uuid.New(),
			TripID: uuid.MustParse(tripID),
			ZoneID: uuid.New(),
			URL:    s.baseURL + "/" + token,
			Participants: []domain.Participant{
				{UserID: userID, Role: domain.RoleOwner, Permission: domain.PermissionReadWrite},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		OwnerID:      userID,
		Token:        token,
		ResolvableAt: now.Add(s.propagationDelay),
	}

	if _, err := s.repo.Create(ctx, share); err != nil {
		s.log.Error(ctx, "share create failed", "trip", tripID, "error", err)
		return nil, common.ErrorInternal
	}
	return share, nil
}

// Resolve returns share metadata by link token. Before the propagation
// deadline the share does not resolve yet.
func (s *Service) Resolve(ctx context.Context, token string) (*Share, error) {
	share, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	if time.Now().Before(share.ResolvableAt) {
		return nil, common.ErrorNotFound
	}
	return share, nil
}

// Accept joins userID to the share's roster as a read-write participant.
// Accepting twice is a no-op.
func (s *Service) Accept(ctx context.Context, userID string, token string) (*Share, error) {

	share, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	if _, onRoster := share.PermissionFor(userID); onRoster {
		return share, nil
	}

	share.Participants = append(share.Participants, domain.Participant{
		UserID:     userID,
		Role:       domain.RoleParticipant,
		Permission: domain.PermissionReadWrite,
	})
	share.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, share); err != nil {
		s.log.Error(ctx, "share accept failed", "zone", share.ZoneID, "error", err)
		return nil, common.ErrorInternal
	}
	return share, nil
}

// UpdateRoster replaces the participant list of a zone. Owner only; the
// owner row itself cannot be edited away. Returns the user ids removed
// from the roster so the caller can invalidate their cursors.
func (s *Service) UpdateRoster(ctx context.Context, userID string, zoneID string, participants []domain.Participant) (*Share, []string, error) {

	share, err := s.repo.GetByZone(ctx, zoneID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorNotFound
		}
		return nil, nil, common.ErrorInternal
	}
	if share.OwnerID != userID {
		return nil, nil, common.ErrorUnauthorized
	}

	next := []domain.Participant{}
	for _, p := range participants {
		if p.UserID == share.OwnerID {
			continue
		}
		if _, err := domain.ParseShareRole(string(p.Role)); err != nil {
			return nil, nil, err
		}
		if _, err := domain.ParseSharePermission(string(p.Permission)); err != nil {
			return nil, nil, err
		}
		next = append(next, p)
	}
	next = append([]domain.Participant{
		{UserID: share.OwnerID, Role: domain.RoleOwner, Permission: domain.PermissionReadWrite},
	}, next...)

	var removed []string
	for _, old := range share.Participants {
		still := false
		for _, p := range next {
			if p.UserID == old.UserID {
				still = true
				break
			}
		}
		if !still {
			removed = append(removed, old.UserID)
		}
	}

	share.Participants = next
	share.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, share); err != nil {
		return nil, nil, common.ErrorInternal
	}
	return share, removed, nil
}

// Purge deletes a zone's share record. Owner only. Returns the non-owner
// participants so the caller can purge the zone's change log and force
// their shared scopes to resync.
func (s *Service) Purge(ctx context.Context, userID string, zoneID string) ([]string, error) {

	share, err := s.repo.GetByZone(ctx, zoneID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	if share.OwnerID != userID {
		return nil, common.ErrorUnauthorized
	}

	if err := s.repo.Delete(ctx, zoneID); err != nil {
		return nil, common.ErrorInternal
	}

	var members []string
	for _, p := range share.Participants {
		if p.UserID != share.OwnerID {
			members = append(members, p.UserID)
		}
	}
	return members, nil
}

// ZonesFor and IsMember satisfy the change-log service's membership
// dependency.
func (s *Service) ZonesFor(ctx context.Context, userID string) ([]string, error) {
	return s.repo.ZonesFor(ctx, userID)
}

func (s *Service) IsMember(ctx context.Context, zoneID string, userID string) (bool, error) {
	share, err := s.repo.GetByZone(ctx, zoneID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	_, ok := share.PermissionFor(userID)
	return ok, nil
}
