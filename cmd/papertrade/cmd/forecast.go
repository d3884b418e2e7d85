package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/papertrade/feed"
	"github.com/spf13/cobra"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Print an illustrative projection past the generated window",
	Long: `Generate the history window and extend it with projected candles. The
model style is the smoother forecast; community follows the same trend with
a wider, differently phased wave. Projections never affect a session.

Examples:
  papertrade forecast
  papertrade forecast --style community --periods 20`,
	Args: cobra.NoArgs,
	RunE: runForecast,
}

var (
	forecastPeriods int
	forecastStyle   string
)

func init() {
	rootCmd.AddCommand(forecastCmd)

	forecastCmd.Flags().IntVarP(&forecastPeriods, "periods", "n", 40, "number of projected candles")
	forecastCmd.Flags().StringVarP(&forecastStyle, "style", "s", "model", "projection style (model or community)")
}

func parseStyle(s string) (feed.ProjectionStyle, error) {
	switch s {
	case "model":
		return feed.ModelProjection, nil
	case "community":
		return feed.CommunityProjection, nil
	}
	return 0, fmt.Errorf("unknown style %q (want model or community)", s)
}

func runForecast(cmd *cobra.Command, args []string) error {
	style, err := parseStyle(forecastStyle)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sc, err := cfg.Session()
	if err != nil {
		return err
	}

	g, err := feed.New(sc.Feed)
	if err != nil {
		return err
	}
	history := g.Initialize(time.Now())
	last := history[len(history)-1]
	candles := g.Project(g.Last(), last.Time.Add(sc.Feed.CandleInterval), forecastPeriods, style)

	fmt.Printf("Last close %s at %s, %d %s candles:\n\n", last.Close.StringFixed(2), last.Time.Local().Format("15:04"), len(candles), style)
	fmt.Printf("%-6s %12s %12s %12s %12s\n", "TIME", "OPEN", "HIGH", "LOW", "CLOSE")
	for _, c := range candles {
		fmt.Printf("%-6s %12s %12s %12s %12s\n", c.Time.Local().Format("15:04"),
			c.Open.StringFixed(2), c.High.StringFixed(2), c.Low.StringFixed(2), c.Close.StringFixed(2))
	}
	return nil
}
