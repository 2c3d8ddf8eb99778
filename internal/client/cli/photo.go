package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/netx"
)

func (a *App) stopPhotoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Attach and fetch stop photos",
	}
	cmd.AddCommand(a.stopPhotoPutCmd(), a.stopPhotoURLCmd())
	return cmd
}

func (a *App) stopPhotoPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <stop-id> <file>",
		Short: "Upload a photo and attach it to a stop",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, stop, err := a.findStopScope(cmd, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if err := a.requireEdit(ctx, domain.Ref{Kind: domain.KindStop, ID: stop.ID}); err != nil {
				return err
			}

			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			// Reusing the existing key overwrites the old photo in place.
			key, uploadURL, err := a.authority.PresignUpload(ctx, stop.PhotoKey)
			if err != nil {
				return err
			}
			if err := netx.UploadPresigned(ctx, uploadURL, data); err != nil {
				return err
			}

			stop.PhotoKey = key
			if _, err := a.store.UpdateStop(ctx, scope, stop); err != nil {
				return err
			}

			a.syncer.Notify(scope)
			fmt.Fprintf(cmd.OutOrStdout(), "attached %s\n", key)
			return nil
		},
	}
}

func (a *App) stopPhotoURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url <stop-id>",
		Short: "Print a short-lived download URL for a stop's photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, stop, err := a.findStopScope(cmd, args[0])
			if err != nil {
				return err
			}
			if stop.PhotoKey == "" {
				return fmt.Errorf("stop %s has no photo", stop.ID)
			}

			downloadURL, err := a.authority.PresignDownload(cmd.Context(), stop.PhotoKey)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), downloadURL)
			return nil
		},
	}
}
