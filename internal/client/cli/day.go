package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

func (a *App) dayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Manage trip days",
	}
	cmd.AddCommand(a.dayNoteCmd(), a.dayListCmd())
	return cmd
}

func (a *App) dayNoteCmd() *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   "note <day-id> <text>",
		Short: "Set the notes on a day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var day domain.Day
			var scope syncx.Scope
			for _, sc := range syncx.Scopes {
				day, err = a.store.Day(ctx, sc, id)
				if err == nil {
					scope = sc
					break
				}
				if !errors.Is(err, common.ErrorNotFound) {
					return err
				}
			}
			if scope == "" {
				return fmt.Errorf("day %s not found", id)
			}

			if err := a.requireEdit(ctx, domain.Ref{Kind: domain.KindDay, ID: id}); err != nil {
				return err
			}

			day.Notes = args[1]
			if location != "" {
				day.Location = location
			}
			if _, err := a.store.UpdateDay(ctx, scope, day); err != nil {
				return err
			}

			a.syncer.Notify(scope)
			fmt.Fprintln(cmd.OutOrStdout(), "noted")
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "where this day is spent")
	return cmd
}

func (a *App) dayListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <trip-id>",
		Short: "List the days of a trip in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			scope, _, err := a.findTripScope(ctx, id)
			if err != nil {
				return err
			}
			days, err := a.store.Days(ctx, scope, id)
			if err != nil {
				return err
			}
			for _, d := range days {
				line := fmt.Sprintf("day %2d  %s  %s", d.DayNumber, d.Date.Format(dateLayout), d.ID)
				if d.Notes != "" {
					line += "  # " + d.Notes
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
