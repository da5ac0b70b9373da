package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atdock/atdock.go/pkg/models"
)

func newGetRecordCmd(opts *rootOptions) *cobra.Command {
	var repo, collection, rkey string

	cmd := &cobra.Command{
		Use:   "get-record [uri]",
		Short: "Fetch one record and print its value",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadSession(cmd.Context(), sessionPath(), opts.logger())
			if err != nil {
				return err
			}

			var uri models.ATURI
			if len(args) == 1 {
				uri, err = models.ParseATURI(args[0])
				if err != nil {
					return err
				}
			} else {
				if collection == "" || rkey == "" {
					return errors.New("pass an at:// URI, or both --collection and --rkey")
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
				key, err := models.ParseRecordKey(rkey)
				if err != nil {
					return err
				}
				uri = models.NewATURI(repoDID, collectionNSID, key)
			}

			record, err := session.GetRecord(cmd.Context(), uri)
			if err != nil {
				return fmt.Errorf("getting record: %w", err)
			}
			return printJSONPretty(cmd.OutOrStdout(), record.Value)
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "repository DID (defaults to the session DID)")
	cmd.Flags().StringVar(&collection, "collection", "", "collection NSID (alternative to a URI)")
	cmd.Flags().StringVar(&rkey, "rkey", "", "record key (alternative to a URI)")
	return cmd
}
