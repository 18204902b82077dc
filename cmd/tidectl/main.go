package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scubot/tidechart/pkg/config"
	"github.com/scubot/tidechart/pkg/render"
	"github.com/scubot/tidechart/pkg/sunset"
	"github.com/scubot/tidechart/pkg/tides"
	"github.com/scubot/tidechart/pkg/tui"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tidectl",
	Short: "Look up NOAA tide predictions from the command line",
	Long: `tidectl resolves a station and prints its high and low tides.

A station can be given as a NOAA station ID, a place name or "latitude, longitude".
The station list is scraped from NOAA on first use and kept in the configured store.

Examples:
  tidectl scrape
  tidectl resolve "Santa Cruz, CA"
  tidectl tides 8518750 --days 3
  tidectl tides "40.7, -74.0" --tui`,
	SilenceUsage: true,
}

var (
	flagColor   string
	flagVerbose bool
	flagDays    int
	flagTUI     bool
	flagJSON    bool
)

func init() {
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(tidesCmd)

	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto", "Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log progress to stderr")

	resolveCmd.Flags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	tidesCmd.Flags().IntVarP(&flagDays, "days", "n", 0, "Days of tides to show (default DAYS_ADVANCE)")
	tidesCmd.Flags().BoolVar(&flagTUI, "tui", false, "Page through the days interactively")
	tidesCmd.Flags().BoolVar(&flagJSON, "json", false, "Output as JSON")
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch every station NOAA lists that is not in the store yet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, app, err := setup(cmd)
		if err != nil {
			return err
		}
		if err := app.Directory.Load(ctx); err != nil {
			return err
		}
		res, err := app.Directory.Scrape(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d listed, %d added, %d already stored, %d skipped; %d stations known\n",
			res.Listed, res.Added, res.Cached, res.Skipped, app.Directory.Len())
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <query>",
	Short: "Show the station a query resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, app, err := setup(cmd)
		if err != nil {
			return err
		}
		if err := app.Directory.Load(ctx); err != nil {
			return err
		}
		m, err := app.Service.Locate(ctx, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(m.Station)
		}
		fmt.Fprintln(out, m.Station)
		if m.DistanceKm > 0 {
			fmt.Fprintf(out, "%.1f km from the %s given\n", m.DistanceKm, m.Kind)
		}
		return nil
	},
}

var tidesCmd = &cobra.Command{
	Use:   "tides <query>",
	Short: "Show high and low tides for the coming days",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, app, err := setup(cmd)
		if err != nil {
			return err
		}
		if err := app.Directory.Load(ctx); err != nil {
			return err
		}

		days := flagDays
		if days == 0 {
			days = app.Config.DaysAdvance
		}

		st, err := app.Service.ResolveStation(ctx, args[0])
		if err != nil {
			return errors.New(render.Error(err).Title)
		}
		pages, err := app.Service.FetchTidePages(ctx, st, days)
		if err != nil {
			return errors.New(render.Error(err).Title)
		}

		embeds := make([]render.Embed, 0, len(pages))
		for _, p := range pages {
			var daylight *sunset.Daylight
			if d, ok := sunset.ForDay(st, p.Day()); ok {
				daylight = &d
			}
			embeds = append(embeds, render.Page(st, p, daylight))
		}

		out := cmd.OutOrStdout()
		switch {
		case flagJSON:
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(embeds)
		case flagTUI:
			_, err := tea.NewProgram(tui.New(embeds), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		}

		term := render.NewTerminal(render.ParseColorMode(flagColor))
		for i, e := range embeds {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if err := term.Write(out, e); err != nil {
				return err
			}
		}
		return nil
	},
}

// setup reads the configuration and wires the components. The returned context ends
// on SIGINT or SIGTERM.
func setup(cmd *cobra.Command) (context.Context, *tides.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := zap.NewNop()
	if flagVerbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, nil, err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	cobra.OnFinalize(stop)

	app, err := tides.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cobra.OnFinalize(app.Directory.Close)
	return ctx, app, nil
}
