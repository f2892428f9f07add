package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadscout/internal/extract"
)

var scrapeCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Scrape numbered result pages for a query",
	Long: `Scrape business records from numbered result pages.

The default surface walks the generic search result layout. Use
--surface local for the local-card provider. Records are written to a
JSON report under the output data dir; the command fails when no
records were found.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		surfaceStr, _ := cmd.Flags().GetString("surface")
		kind, err := extract.ParseKind(surfaceStr)
		if err != nil {
			return err
		}
		if !kind.Paged() {
			return eris.New("scrape: use the maps command for the map panel surface")
		}

		return runSession(ctx, kind, args[0], nil, sessionFlagsFrom(cmd))
	},
}

func init() {
	scrapeCmd.Flags().String("surface", string(extract.KindSearch), "result surface: search, local")
	addSessionFlags(scrapeCmd)
	rootCmd.AddCommand(scrapeCmd)
}
