package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	atdock "github.com/atdock/atdock.go"
	"github.com/atdock/atdock.go/pkg/models"
)

func newSubscribeCmd(opts *rootOptions) *cobra.Command {
	var cursor int64
	var jsonOut bool
	var filter string

	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Stream repository events from the session's PDS",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadSession(cmd.Context(), sessionPath(), opts.logger())
			if err != nil {
				return err
			}

			client := atdock.New(session.PDS()).WithLogger(opts.logger())
			sub, err := client.FirehoseFrom(cmd.Context(), cursor)
			if err != nil {
				return fmt.Errorf("subscribing: %w", err)
			}
			defer sub.Close()

			fmt.Fprintln(cmd.ErrOrStderr(), "Connected. Press Ctrl+C to stop.")
			for ev := range sub.Events() {
				if err := printEvent(cmd.OutOrStdout(), cmd.ErrOrStderr(), ev, jsonOut, filter); err != nil {
					return err
				}
			}
			return sub.Err()
		},
	}

	cmd.Flags().Int64Var(&cursor, "cursor", 0, "resume from this sequence number (0 starts at the live tail)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print events as JSON lines")
	cmd.Flags().StringVar(&filter, "filter", "", "only print commits whose ops match this collection prefix")
	return cmd
}

// printEvent renders one stream event. Commit, identity, and handle
// events go to stdout; info and unknown events are stderr commentary
// and are dropped entirely in JSON mode.
func printEvent(out, errOut io.Writer, ev models.RepoEvent, jsonOut bool, filter string) error {
	switch ev := ev.(type) {
	case models.CommitEvent:
		if filter != "" && !commitMatches(ev, filter) {
			return nil
		}
		if jsonOut {
			return printJSON(out, ev)
		}
		fmt.Fprintf(out, "COMMIT %s %d ops @ seq %d\n", ev.Repo, len(ev.Ops), ev.Seq)
		for _, op := range ev.Ops {
			fmt.Fprintf(out, "  %s %s\n", strings.ToUpper(op.Action), op.Path)
		}
	case models.IdentityEvent:
		if jsonOut {
			return printJSON(out, ev)
		}
		fmt.Fprintf(out, "IDENTITY %s @ seq %d\n", ev.DID, ev.Seq)
	case models.HandleEvent:
		if jsonOut {
			return printJSON(out, ev)
		}
		fmt.Fprintf(out, "HANDLE %s -> %s @ seq %d\n", ev.DID, ev.Handle, ev.Seq)
	case models.InfoEvent:
		if !jsonOut {
			fmt.Fprintf(errOut, "INFO %s %s\n", ev.Name, ev.Message)
		}
	case models.UnknownEvent:
		if !jsonOut {
			fmt.Fprintf(errOut, "UNKNOWN %s\n", ev.Kind)
		}
	}
	return nil
}

func commitMatches(ev models.CommitEvent, prefix string) bool {
	for _, op := range ev.Ops {
		if strings.HasPrefix(op.Path, prefix) {
			return true
		}
	}
	return false
}
