package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

func (a *App) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tripwit",
		Short:         "Collaborative trip planner",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.tripCmd(),
		a.dayCmd(),
		a.stopCmd(),
		a.shareCmd(),
		a.syncCmd(),
	)
	return root
}

// parseID validates a uuid argument before it hits the store.
func parseID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%q is not a valid id", arg)
	}
	return id, nil
}

// findTripScope locates a trip across the two scope files.
func (a *App) findTripScope(ctx context.Context, id uuid.UUID) (syncx.Scope, domain.Trip, error) {
	for _, scope := range syncx.Scopes {
		trip, err := a.store.Trip(ctx, scope, id)
		if err == nil {
			return scope, trip, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return "", domain.Trip{}, err
		}
	}
	return "", domain.Trip{}, fmt.Errorf("trip %s not found", id)
}

// findScope locates an arbitrary entity by walking both scopes via its
// parent chain.
func (a *App) findScope(ctx context.Context, ref domain.Ref) (syncx.Scope, error) {
	for _, scope := range syncx.Scopes {
		_, err := a.store.TripIDFor(ctx, scope, ref)
		if err == nil {
			return scope, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%s %s not found", ref.Kind, ref.ID)
}

// requireEdit enforces the local access policy before a mutation.
func (a *App) requireEdit(ctx context.Context, ref domain.Ref) error {
	if !a.policy.CanEdit(ctx, ref) {
		return fmt.Errorf("you do not have permission to edit this %s", ref.Kind)
	}
	return nil
}
