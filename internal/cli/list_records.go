package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atdock/atdock.go/pkg/models"
)

func newListRecordsCmd(opts *rootOptions) *cobra.Command {
	var repo, collection, cursor string
	var limit int
	var pretty bool

	cmd := &cobra.Command{
		Use:   "list-records",
		Short: "List one page of records in a collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadSession(cmd.Context(), sessionPath(), opts.logger())
			if err != nil {
				return err
			}

			repoDID := session.DID()
			if repo != "" {
				repoDID, err = models.ParseDID(repo)
				if err != nil {
					return err
				}
			}
			collectionNSID, err := models.ParseNSID(collection)
			if err != nil {
				return err
			}

			page, err := session.ListRecords(cmd.Context(), repoDID, collectionNSID, limit, cursor)
			if err != nil {
				return fmt.Errorf("listing records: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(page.Records) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No records found.")
				return nil
			}
			for _, record := range page.Records {
				if pretty {
					if err := printJSONPretty(out, record.Value); err != nil {
						return err
					}
				} else if err := printJSON(out, record); err != nil {
					return err
				}
			}
			if page.Cursor != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Next cursor: %s\n", page.Cursor)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "repository DID (defaults to the session DID)")
	cmd.Flags().StringVar(&collection, "collection", "", "collection NSID")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (0 lets the server choose)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "resume from a previous page's cursor")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print record values instead of one record per line")
	cmd.MarkFlagRequired("collection") //nolint:errcheck
	return cmd
}
