package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRefreshTokenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-token",
		Short: "Rotate the session's token pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := sessionPath()
			session, err := loadSession(cmd.Context(), path, opts.logger())
			if err != nil {
				return err
			}

			// loadSession refreshes opportunistically; this one is the
			// command's whole point, so its failure is the command's.
			if err := session.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("refresh failed: %w", err)
			}
			if err := saveSession(path, session); err != nil {
				return fmt.Errorf("saving refreshed session: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Session refreshed.")
			printField(out, "DID", session.DID().String())
			return nil
		},
	}
}
