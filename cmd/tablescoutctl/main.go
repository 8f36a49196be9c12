// Command tablescoutctl drives structure discovery and rule training from
// the command line, without going through the MCP server transport.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var logger zerolog.Logger

var rootCmd = &cobra.Command{
	Use:   "tablescoutctl",
	Short: "Discover and train table-structure rules from the command line.",
	Long:  `tablescoutctl scans delimited text and spreadsheet files for rectangular table regions, and trains a rule catalogue from hand-labelled examples.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		logger = zlog.With().Str("service", "tablescoutctl").Logger()
		return nil
	},
}

func main() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(trainCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
