package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atdock/atdock.go/pkg/models"
)

func newDeleteRecordCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-record <uri>",
		Short: "Delete the record at an at:// URI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadSession(cmd.Context(), sessionPath(), opts.logger())
			if err != nil {
				return err
			}
			uri, err := models.ParseATURI(args[0])
			if err != nil {
				return err
			}

			if err := session.DeleteRecord(cmd.Context(), uri); err != nil {
				return fmt.Errorf("deleting record: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", uri)
			return nil
		},
	}
}
