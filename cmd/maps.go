package main

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadscout/internal/extract"
)

var mapsCmd = &cobra.Command{
	Use:   "maps <query>",
	Short: "Scrape the infinite-scroll map listings panel",
	Long: `Scrape business records from the map listings panel, which loads
results through infinite scroll instead of numbered pages.

Viewport parameters can ride along in the query argument, separated by
ampersands, e.g.:

  leadscout maps "bistro paris&cp=48.85~2.35&lvl=14"`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		query, extra := parseMapQuery(args[0])
		return runSession(ctx, extract.KindMapPanel, query, extra, sessionFlagsFrom(cmd))
	},
}

func init() {
	addSessionFlags(mapsCmd)
	rootCmd.AddCommand(mapsCmd)
}

// parseMapQuery splits viewport parameters off the query argument.
// Everything before the first ampersand is the search text; the rest
// are key=value pairs passed through to the map URL.
func parseMapQuery(raw string) (string, map[string]string) {
	parts := strings.Split(raw, "&")
	query := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return query, nil
	}

	extra := make(map[string]string, len(parts)-1)
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			continue
		}
		extra[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if len(extra) == 0 {
		return query, nil
	}
	return query, extra
}
