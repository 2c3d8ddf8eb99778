package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevinbuckley/tripwit/internal/client/sharing"
	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

func (a *App) shareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share trips with other accounts",
	}
	cmd.AddCommand(a.shareBeginCmd(), a.shareStatusCmd(), a.shareStopCmd(),
		a.shareAcceptCmd(), a.sharePermitCmd(), a.shareRemoveCmd())
	return cmd
}

func (a *App) shareBeginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "begin <trip-id>",
		Short: "Create a collaborative link for a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tripID, err := parseID(args[0])
			if err != nil {
				return err
			}
			share, err := a.sharing.Begin(cmd.Context(), tripID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sharing.WrapShareURL(share.URL))
			return nil
		},
	}
}

func (a *App) shareStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <trip-id>",
		Short: "Show the sharing state of a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tripID, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := a.sharing.State(cmd.Context(), tripID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state: %s\n", status.State)
			if status.Share.Resolvable() {
				fmt.Fprintf(out, "link:  %s\n", sharing.WrapShareURL(status.Share.URL))
			}
			for _, p := range status.Share.Participants {
				fmt.Fprintf(out, "  %s  %s  %s\n", p.UserID, p.Role, p.Permission)
			}
			return nil
		},
	}
}

func (a *App) shareStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <trip-id>",
		Short: "Revoke a trip's collaborative link and bring the trip back private",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tripID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.sharing.Stop(cmd.Context(), tripID); err != nil {
				return err
			}
			a.syncer.Notify(syncx.ScopeOwned)
			fmt.Fprintln(cmd.OutOrStdout(), "sharing stopped")
			return nil
		},
	}
}

func (a *App) shareAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <link>",
		Short: "Join a trip somebody shared with you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			share, err := a.sharing.Accept(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.syncer.Notify(syncx.ScopeShared)
			fmt.Fprintf(cmd.OutOrStdout(), "joined trip %s\n", share.TripID)
			return nil
		},
	}
}

// editRoster loads the active share for a trip, applies fn to its roster
// and persists it through the authority.
func (a *App) editRoster(cmd *cobra.Command, tripArg string, fn func(*domain.Share) error) error {
	tripID, err := parseID(tripArg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	status, err := a.sharing.State(ctx, tripID)
	if err != nil {
		return err
	}
	if status.State != sharing.StateActive {
		return fmt.Errorf("trip %s is not actively shared", tripID)
	}

	share := status.Share
	if err := fn(&share); err != nil {
		return err
	}
	if _, err := a.sharing.UpdateRoster(ctx, share); err != nil {
		return err
	}
	return nil
}

func (a *App) sharePermitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "permit <trip-id> <user-id> <readOnly|readWrite>",
		Short: "Change a participant's permission",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			perm, err := domain.ParseSharePermission(args[2])
			if err != nil {
				return err
			}
			err = a.editRoster(cmd, args[0], func(share *domain.Share) error {
				for i, p := range share.Participants {
					if p.UserID == args[1] {
						share.Participants[i].Permission = perm
						return nil
					}
				}
				return fmt.Errorf("user %s is not on the roster", args[1])
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "updated")
			return nil
		},
	}
}

func (a *App) shareRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <trip-id> <user-id>",
		Short: "Remove a participant from a shared trip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.editRoster(cmd, args[0], func(share *domain.Share) error {
				kept := share.Participants[:0]
				found := false
				for _, p := range share.Participants {
					if p.UserID == args[1] && p.Role != domain.RoleOwner {
						found = true
						continue
					}
					kept = append(kept, p)
				}
				if !found {
					return fmt.Errorf("user %s is not on the roster", args[1])
				}
				share.Participants = kept
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "removed")
			return nil
		},
	}
}
