package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/gorilla/sessions"
	"github.com/spf13/cobra"
	"github.com/warp/period-engine/api"
	"github.com/warp/period-engine/config"
	"github.com/warp/period-engine/navigation"
	"github.com/warp/period-engine/observability"
	"github.com/warp/period-engine/store/sqlite"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Period calculus engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newPeriodsCmd(&configPath))
	cmd.AddCommand(newPreferencesCmd(&configPath))
	return cmd
}

// clock is the wall clock; tests replace it.
var clock = time.Now

// =============================================================================
// SERVE
// =============================================================================

func newServeCmd(configPath *string) *cobra.Command {
	var (
		port   int
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("db") {
				cfg.Store.Path = dbPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP server port")
	cmd.Flags().StringVar(&dbPath, "db", "./data/periods.db", `SQLite database path (":memory:" for in-memory)`)
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := observability.InitLogger(cfg.LogConfig())

	store, err := sqlite.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.MaxAge(cfg.SessionMaxAge())
	sessionStore.Options.HttpOnly = true

	handler := api.NewHandler(store, sessionStore)
	handler.Logger = logger
	handler.SessionName = cfg.Session.Name
	handler.Location = cfg.Location()
	handler.CORSOrigins = cfg.Server.CORSOrigins
	handler.Defaults = api.Defaults{
		ViewRange: cfg.Calendar.ViewRange,
		Fiscal:    cfg.Fiscal(),
		Locale:    cfg.Calendar.Locale,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "db", cfg.Store.Path, "timezone", cfg.Location().String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// =============================================================================
// PERIODS
// =============================================================================

type periodRow struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
	Code  string `json:"frequency"`
}

func newPeriodsCmd(configPath *string) *cobra.Command {
	var (
		start, end, code string
		jsonOutput       bool
	)

	cmd := &cobra.Command{
		Use:   "periods",
		Short: "Print the block periods of a span",
		Long: `Chunk [start, end] into periods of a frequency, newest first, the way
period-over-period reports do. Spans longer than 13 periods continue in
yearly periods.

Dates are YYYY-MM-DD in the configured timezone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if _, err := navigation.ParseFrequency(code); err != nil {
				return err
			}

			loc := cfg.Location()
			from, err := time.ParseInLocation("2006-01-02", start, loc)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			to, err := time.ParseInLocation("2006-01-02", end, loc)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}

			nav := &navigation.Navigator{
				Logger: observability.NewLogger(cmd.ErrOrStderr(), cfg.LogConfig()),
				Fiscal: cfg.Fiscal(),
				Locale: cfg.Calendar.Locale,
			}
			return printPeriods(cmd.OutOrStdout(), nav, from, to, code, jsonOutput)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&code, "code", navigation.DefaultViewRange, "frequency code")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	cmd.AddCommand(newRangeCmd(configPath))
	return cmd
}

func newRangeCmd(configPath *string) *cobra.Command {
	var date, code, fiscal string

	cmd := &cobra.Command{
		Use:   "range",
		Short: "Print the report range of a frequency around a date",
		Long: `Print the start and end of the report range a report page opens with
for the given frequency. Yearly ranges follow the fiscal year; rolling ranges
end today.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			loc := cfg.Location()
			now := func() time.Time { return clock().In(loc) }

			at := now()
			if date != "" {
				if at, err = time.ParseInLocation("2006-01-02", date, loc); err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}

			fc := cfg.Fiscal()
			if fiscal != "" {
				if fc, err = navigation.ParseFiscalYearStart(fiscal); err != nil {
					return err
				}
			}

			nav := &navigation.Navigator{
				Logger: observability.NewLogger(cmd.ErrOrStderr(), cfg.LogConfig()),
				Locale: cfg.Calendar.Locale,
				Now:    now,
			}
			nav = nav.WithFiscal(fc)
			from, err := nav.UpdateStartDate(code, at)
			if err != nil {
				return err
			}
			to, err := nav.UpdateEndDate(code, from)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", from.Format(time.RFC3339), to.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "reference day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&code, "code", navigation.DefaultViewRange, "frequency code")
	cmd.Flags().StringVar(&fiscal, "fiscal-year-start", "", "fiscal year start (MM-DD)")
	return cmd
}

// =============================================================================
// PREFERENCES
// =============================================================================

func newPreferencesCmd(configPath *string) *cobra.Command {
	var dbPath string

	openStore := func(cmd *cobra.Command) (*sqlite.Store, error) {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		if cmd.Flags().Changed("db") {
			cfg.Store.Path = dbPath
		}
		return sqlite.New(cfg.Store.Path)
	}

	cmd := &cobra.Command{
		Use:   "preferences",
		Short: "Inspect or clear stored user preferences",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "./data/periods.db", "SQLite database path")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			prefs, err := store.ListPreferences(cmd.Context())
			if err != nil {
				return fmt.Errorf("list preferences: %w", err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "USER\tVIEW RANGE\tFISCAL YEAR\tLOCALE\tUPDATED")
			for _, p := range prefs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					p.UserID, p.ViewRange, p.Fiscal(), p.Locale, p.UpdatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Delete every stored preference",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset preferences: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "preferences cleared")
			return nil
		},
	})
	return cmd
}

func printPeriods(w io.Writer, nav *navigation.Navigator, start, end time.Time, code string, asJSON bool) error {
	periods := nav.BlockPeriods(start, end, code)
	rows := make([]periodRow, len(periods))
	for i, p := range periods {
		rows[i] = periodRow{
			Label: nav.PeriodShow(p.Start, p.Frequency),
			Start: p.Start.Format("2006-01-02"),
			End:   p.End.Format("2006-01-02"),
			Code:  p.Frequency,
		}
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tSTART\tEND\tFREQUENCY")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Label, r.Start, r.End, r.Code)
	}
	return tw.Flush()
}

