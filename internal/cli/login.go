package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	atdock "github.com/atdock/atdock.go"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var identifier, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Create a session and persist it",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := opts.resolvePDS()
			if err != nil {
				return err
			}

			client := atdock.New(url).WithLogger(opts.logger())
			session, err := client.Login(cmd.Context(), atdock.Credentials{
				Identifier: identifier,
				Password:   password,
			})
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := saveSession(sessionPath(), session); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Logged in.")
			printField(out, "DID", session.DID().String())
			printField(out, "PDS", session.PDS().String())
			return nil
		},
	}

	cmd.Flags().StringVar(&identifier, "identifier", "", "handle or DID to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "account password or app password")
	cmd.MarkFlagRequired("identifier") //nolint:errcheck
	cmd.MarkFlagRequired("password")   //nolint:errcheck
	return cmd
}
