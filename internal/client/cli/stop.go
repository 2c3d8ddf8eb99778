package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

func (a *App) stopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Manage stops within a day",
	}
	cmd.AddCommand(a.stopAddCmd(), a.stopMoveCmd(), a.stopVisitCmd(), a.stopDeleteCmd(), a.stopPhotoCmd())
	return cmd
}

// findStopScope locates a stop across the two scope files.
func (a *App) findStopScope(cmd *cobra.Command, arg string) (syncx.Scope, domain.Stop, error) {
	id, err := parseID(arg)
	if err != nil {
		return "", domain.Stop{}, err
	}
	for _, scope := range syncx.Scopes {
		stop, err := a.store.Stop(cmd.Context(), scope, id)
		if err == nil {
			return scope, stop, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return "", domain.Stop{}, err
		}
	}
	return "", domain.Stop{}, fmt.Errorf("stop %s not found", id)
}

func (a *App) stopAddCmd() *cobra.Command {
	var category, notes string

	cmd := &cobra.Command{
		Use:   "add <day-id> <name>",
		Short: "Append a stop to a day's itinerary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dayID, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			scope, err := a.findScope(ctx, domain.Ref{Kind: domain.KindDay, ID: dayID})
			if err != nil {
				return err
			}
			if err := a.requireEdit(ctx, domain.Ref{Kind: domain.KindDay, ID: dayID}); err != nil {
				return err
			}

			cat, err := domain.ParseStopCategory(category)
			if err != nil {
				return err
			}

			stop, err := a.store.AddStop(ctx, scope, domain.Stop{
				DayID:    dayID,
				Name:     args[1],
				Category: cat,
				Notes:    notes,
			})
			if err != nil {
				return err
			}

			a.syncer.Notify(scope)
			fmt.Fprintf(cmd.OutOrStdout(), "added stop %s at position %d\n", stop.ID, stop.SortOrder)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", string(domain.StopAttraction), "accommodation|restaurant|attraction|transport|activity|other")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	return cmd
}

func (a *App) stopMoveCmd() *cobra.Command {
	var to int

	cmd := &cobra.Command{
		Use:   "move <stop-id>",
		Short: "Move a stop to a new position within its day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, stop, err := a.findStopScope(cmd, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if err := a.requireEdit(ctx, domain.Ref{Kind: domain.KindStop, ID: stop.ID}); err != nil {
				return err
			}
			if err := a.store.MoveStop(ctx, scope, stop.ID, to); err != nil {
				return err
			}

			a.syncer.Notify(scope)
			fmt.Fprintln(cmd.OutOrStdout(), "moved")
			return nil
		},
	}

	cmd.Flags().IntVar(&to, "to", 0, "target position (0-based)")
	cmd.MarkFlagRequired("to")
	return cmd
}

func (a *App) stopVisitCmd() *cobra.Command {
	var rating int

	cmd := &cobra.Command{
		Use:   "visit <stop-id>",
		Short: "Mark a stop as visited",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, stop, err := a.findStopScope(cmd, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if err := a.requireEdit(ctx, domain.Ref{Kind: domain.KindStop, ID: stop.ID}); err != nil {
				return err
			}

			now := time.Now().UTC()
			stop.Visited = true
			stop.VisitedAt = &now
			if rating > 0 {
				stop.Rating = rating
			}
			if _, err := a.store.UpdateStop(ctx, scope, stop); err != nil {
				return err
			}

			a.syncer.Notify(scope)
			fmt.Fprintln(cmd.OutOrStdout(), "visited")
			return nil
		},
	}

	cmd.Flags().IntVar(&rating, "rating", 0, "rating 1..5")
	return cmd
}

func (a *App) stopDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <stop-id>",
		Short: "Delete a stop; later stops close the gap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, stop, err := a.findStopScope(cmd, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if err := a.requireEdit(ctx, domain.Ref{Kind: domain.KindStop, ID: stop.ID}); err != nil {
				return err
			}
			if err := a.store.DeleteStop(ctx, scope, stop.ID); err != nil {
				return err
			}

			a.syncer.Notify(scope)
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}
