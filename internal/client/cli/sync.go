package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevinbuckley/tripwit/internal/syncx"
)

func (a *App) syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Exchange local changes with the server",
	}
	cmd.AddCommand(a.syncNowCmd(), a.syncStatusCmd())
	return cmd
}

func (a *App) syncNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Run one sync cycle for both scopes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, scope := range syncx.Scopes {
				if err := a.syncer.SyncScope(cmd.Context(), scope); err != nil {
					return fmt.Errorf("sync %s: %w", scope, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: synced\n", scope)
			}
			return nil
		},
	}
}

func (a *App) syncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last sync outcome per scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, scope := range syncx.Scopes {
				st := a.syncer.Status(scope)
				line := fmt.Sprintf("%-6s %s", scope, st.State)
				if !st.LastSync.IsZero() {
					line += "  last " + st.LastSync.Format("2006-01-02 15:04:05")
				}
				if st.LastErr != "" {
					line += "  err " + st.LastErr
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
