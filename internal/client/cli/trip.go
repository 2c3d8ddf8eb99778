package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

const dateLayout = "2006-01-02"

func parseDate(arg string) (time.Time, error) {
	d, err := time.Parse(dateLayout, arg)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a date (want YYYY-MM-DD)", arg)
	}
	return d, nil
}

func (a *App) tripCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trip",
		Short: "Manage trips",
	}
	cmd.AddCommand(a.tripCreateCmd(), a.tripListCmd(), a.tripSetDatesCmd(), a.tripDeleteCmd())
	return cmd
}

func (a *App) tripCreateCmd() *cobra.Command {
	var destination, start, end string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a trip with one day per date in its range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := parseDate(start)
			if err != nil {
				return err
			}
			endDate, err := parseDate(end)
			if err != nil {
				return err
			}

			trip, days, err := a.store.CreateTrip(cmd.Context(), syncx.ScopeOwned, domain.Trip{
				Name:        args[0],
				Destination: destination,
				StartDate:   startDate,
				EndDate:     endDate,
			})
			if err != nil {
				return err
			}

			a.syncer.Notify(syncx.ScopeOwned)
			fmt.Fprintf(cmd.OutOrStdout(), "created trip %s with %d days\n", trip.ID, len(days))
			return nil
		},
	}

	cmd.Flags().StringVar(&destination, "destination", "", "where the trip goes")
	cmd.Flags().StringVar(&start, "start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last day (YYYY-MM-DD)")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
	return cmd
}

func (a *App) tripListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List trips in both scopes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, scope := range syncx.Scopes {
				trips, err := a.store.Trips(cmd.Context(), scope)
				if err != nil {
					return err
				}
				for _, t := range trips {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s → %s  [%s, %s]\n",
						t.ID, t.Name,
						t.StartDate.Format(dateLayout), t.EndDate.Format(dateLayout),
						t.Status, scope)
				}
			}
			return nil
		},
	}
}

func (a *App) tripSetDatesCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "set-dates <trip-id>",
		Short: "Change a trip's date range, reconciling its days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			scope, trip, err := a.findTripScope(ctx, id)
			if err != nil {
				return err
			}
			if err := a.requireEdit(ctx, domain.Ref{Kind: domain.KindTrip, ID: id}); err != nil {
				return err
			}

			if trip.StartDate, err = parseDate(start); err != nil {
				return err
			}
			if trip.EndDate, err = parseDate(end); err != nil {
				return err
			}

			updated, err := a.store.UpdateTrip(ctx, scope, trip)
			if err != nil {
				return err
			}

			a.syncer.Notify(scope)
			fmt.Fprintf(cmd.OutOrStdout(), "trip %s now spans %d days\n", updated.ID, updated.DaySpan())
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last day (YYYY-MM-DD)")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
	return cmd
}

func (a *App) tripDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trip-id>",
		Short: "Delete a trip and everything under it",
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
			if err := a.requireEdit(ctx, domain.Ref{Kind: domain.KindTrip, ID: id}); err != nil {
				return err
			}
			if err := a.store.DeleteTrip(ctx, scope, id); err != nil {
				return err
			}

			a.syncer.Notify(scope)
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}
