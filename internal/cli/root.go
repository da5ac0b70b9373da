// Package cli implements the atdock command tree. Commands speak to a
// PDS through the root client package and persist login state between
// invocations.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/atdock/atdock.go/pkg/logger"
	"github.com/atdock/atdock.go/pkg/models"
)

const (
	envPDS     = "ATDOCK_PDS"
	defaultPDS = "https://bsky.social"
)

// rootOptions carries the persistent flags every subcommand sees.
type rootOptions struct {
	pds       string
	verbosity int
	jsonLogs  bool
}

// logger builds the CLI logger from the verbosity flags. Logs go to
// stderr so stdout stays parseable.
func (o *rootOptions) logger() logger.Logger {
	level := zerolog.WarnLevel
	switch {
	case o.verbosity >= 3:
		level = zerolog.TraceLevel
	case o.verbosity == 2:
		level = zerolog.DebugLevel
	case o.verbosity == 1:
		level = zerolog.InfoLevel
	}

	var w io.Writer = os.Stderr
	if !o.jsonLogs {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return logger.FromZerolog(zerolog.New(w).With().Timestamp().Logger().Level(level))
}

// resolvePDS applies the address precedence chain: the --pds flag, the
// ATDOCK_PDS environment variable, the config file, then the default.
func (o *rootOptions) resolvePDS() (models.PDSURL, error) {
	raw := o.pds
	if raw == "" {
		raw = os.Getenv(envPDS)
	}
	if raw == "" {
		cfg, err := loadConfig(configPath())
		if err != nil {
			return models.PDSURL{}, err
		}
		raw = cfg.PDS
	}
	if raw == "" {
		raw = defaultPDS
	}
	return models.ParsePDSURL(raw)
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "atdock",
		Short:        "Explore AT Protocol personal data servers",
		Long:         "atdock talks to AT Protocol personal data servers, remote over XRPC or local in a directory, with the same commands for both.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.pds, "pds", "",
		"PDS base URL (overrides "+envPDS+" and the config file)")
	cmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v",
		"increase log verbosity (-v, -vv, -vvv)")
	cmd.PersistentFlags().BoolVar(&opts.jsonLogs, "json-logs", false,
		"emit logs as JSON instead of console lines")

	cmd.AddCommand(newPdsCmd(opts))
	return cmd
}

// Execute runs the CLI with ctx governing every command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
