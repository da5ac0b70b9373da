package cli

import "github.com/spf13/cobra"

func newPdsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pds",
		Short: "Personal data server operations",
	}
	cmd.AddCommand(
		newLoginCmd(opts),
		newWhoamiCmd(opts),
		newRefreshTokenCmd(opts),
		newCreateAccountCmd(opts),
		newRemoveAccountCmd(opts),
		newCreateRecordCmd(opts),
		newGetRecordCmd(opts),
		newListRecordsCmd(opts),
		newDeleteRecordCmd(opts),
		newSubscribeCmd(opts),
	)
	return cmd
}
