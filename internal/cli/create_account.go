package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	atdock "github.com/atdock/atdock.go"
	"github.com/atdock/atdock.go/pkg/pds"
)

func newCreateAccountCmd(opts *rootOptions) *cobra.Command {
	var password, email, inviteCode string

	cmd := &cobra.Command{
		Use:   "create-account <handle>",
		Short: "Register a new account on the PDS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := opts.resolvePDS()
			if err != nil {
				return err
			}

			client := atdock.New(url).WithLogger(opts.logger())
			out, err := client.CreateAccount(cmd.Context(), pds.CreateAccountInput{
				Handle:     args[0],
				Password:   password,
				Email:      email,
				InviteCode: inviteCode,
			})
			if err != nil {
				return fmt.Errorf("creating account: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Account created.")
			printField(w, "DID", out.DID.String())
			printField(w, "Handle", out.Handle)
			printField(w, "PDS", url.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password for the new account")
	cmd.Flags().StringVar(&email, "email", "", "contact email (remote servers may require one)")
	cmd.Flags().StringVar(&inviteCode, "invite-code", "", "invite code (remote servers may require one)")
	cmd.MarkFlagRequired("password") //nolint:errcheck
	return cmd
}
