package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/atdock/atdock.go/pkg/models"
)

func newCreateRecordCmd(opts *rootOptions) *cobra.Command {
	var recordType, jsonSource string

	cmd := &cobra.Command{
		Use:   "create-record <collection>",
		Short: "Create a record in the session's repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadSession(cmd.Context(), sessionPath(), opts.logger())
			if err != nil {
				return err
			}
			collection, err := models.ParseNSID(args[0])
			if err != nil {
				return err
			}

			typeNSID := collection
			if recordType != "" {
				typeNSID, err = models.ParseNSID(recordType)
				if err != nil {
					return fmt.Errorf("invalid record type: %w", err)
				}
			}

			fields := map[string]any{}
			if jsonSource != "" {
				data, err := readJSONSource(cmd.InOrStdin(), jsonSource)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(data, &fields); err != nil {
					return fmt.Errorf("record data is not a JSON object: %w", err)
				}
			}

			uri, err := session.CreateRecord(cmd.Context(), collection, models.RecordValueWithType(typeNSID, fields))
			if err != nil {
				return fmt.Errorf("creating record: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), uri.String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&recordType, "type", "t", "", "$type for the record (defaults to the collection)")
	cmd.Flags().StringVar(&jsonSource, "json", "", "JSON file with record fields, or - for stdin")
	return cmd
}

// readJSONSource reads record fields from a file, or from stdin when
// source is "-".
func readJSONSource(stdin io.Reader, source string) ([]byte, error) {
	if source == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading record data from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading record data: %w", err)
	}
	return data, nil
}
