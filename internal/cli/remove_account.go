package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atdock/atdock.go/pkg/models"
	"github.com/atdock/atdock.go/pkg/pds"
)

func newRemoveAccountCmd(opts *rootOptions) *cobra.Command {
	var deleteRecords, force bool

	cmd := &cobra.Command{
		Use:   "remove-account <did>",
		Short: "Remove an account from a local PDS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := opts.resolvePDS()
			if err != nil {
				return err
			}
			if !url.IsLocal() {
				return errors.New("remote PDS account removal is not supported by this CLI; use a file:// URL")
			}
			did, err := models.ParseDID(args[0])
			if err != nil {
				return err
			}

			backend := pds.NewFileBackend(url).WithLogger(opts.logger())
			if _, err := backend.Account(cmd.Context(), did); err != nil {
				return fmt.Errorf("checking account: %w", err)
			}

			if !force {
				suffix := ""
				if deleteRecords {
					suffix = " and all its records"
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "This will remove account %s%s. Continue? [y/N] ", did, suffix)

				answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && answer == "" {
					return fmt.Errorf("reading confirmation: %w", err)
				}
				if !strings.EqualFold(strings.TrimSpace(answer), "y") {
					fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
					return nil
				}
			}

			if err := backend.RemoveAccount(cmd.Context(), did, deleteRecords); err != nil {
				return fmt.Errorf("removing account: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s removed.\n", did)
			return nil
		},
	}

	cmd.Flags().BoolVar(&deleteRecords, "delete-records", false, "also delete all records owned by the account")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}
