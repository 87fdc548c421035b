package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harryrobbins/youtrack-time-importer/internal/adapter/prompt"
	"github.com/harryrobbins/youtrack-time-importer/internal/app"
	"github.com/harryrobbins/youtrack-time-importer/internal/config"
	"github.com/harryrobbins/youtrack-time-importer/internal/ports"
	"github.com/harryrobbins/youtrack-time-importer/internal/row"
	"github.com/harryrobbins/youtrack-time-importer/internal/usecase"
)

func main() {
	// Flags
	source := flag.String("source", string(row.FormatManicTime), "Record source: manictime, toggl-csv or toggl-api")
	file := flag.String("file", "", "CSV export to import (manictime and toggl-csv sources)")
	from := flag.String("from", "", "ISO8601 start time for toggl-api (optional, default: now - 24h)")
	to := flag.String("to", "", "ISO8601 end time for toggl-api (optional, default: now)")
	nonInteractive := flag.Bool("non-interactive", false, "Ignore rows without a known issue instead of prompting")
	accessible := flag.Bool("accessible", false, "Use plain line-based prompts")
	serve := flag.String("serve", "", "Serve the HTTP import trigger on this address (e.g. :8080) instead of importing once")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	// Logger
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	format, err := row.ParseFormat(*source)
	if err != nil {
		logger.Error("invalid --source", slog.String("error", err.Error()))
		os.Exit(2)
	}
	if format != row.FormatTogglAPI && *file == "" && *serve == "" {
		logger.Error("--file is required for CSV sources")
		os.Exit(2)
	}

	// Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// App
	application, err := app.New(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to initialize app", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer application.Close()

	if *serve != "" {
		if err := cfg.RequireToggl(); err != nil {
			logger.Error("http trigger needs the toggl api", slog.String("error", err.Error()))
			os.Exit(1)
		}
		runServer(ctx, application.HTTPServer(*serve), logger)
		return
	}

	var p ports.Prompter = prompt.Terminal{Accessible: *accessible}
	if *nonInteractive {
		p = prompt.Decline{}
	}

	var sum usecase.Summary
	if format == row.FormatTogglAPI {
		toTime := parseEnd(*to, time.Now().UTC(), logger)
		fromTime := parseStart(*from, toTime.Add(-24*time.Hour), logger)
		sum, err = application.ImportToggl(ctx, fromTime, toTime, p)
	} else {
		sum, err = application.ImportFile(ctx, format, *file, p)
	}
	if err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		application.Close()
		os.Exit(1)
	}
	fmt.Printf("Added %d timeslips out of %d\n", sum.Uploaded, sum.Total)
}

func runServer(ctx context.Context, srv *http.Server, log *slog.Logger) {
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", slog.String("error", err.Error()))
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

// parseStart parses a start boundary that may be RFC3339 or YYYY-MM-DD.
// If empty, defaultVal is returned.
func parseStart(val string, defaultVal time.Time, log *slog.Logger) time.Time {
	if val == "" {
		return defaultVal
	}
	if t, ok := app.ParseStart(val); ok {
		return t
	}
	log.Error("invalid --from, expected RFC3339 or YYYY-MM-DD")
	os.Exit(2)
	return time.Time{}
}

// parseEnd parses an end boundary that may be RFC3339 or YYYY-MM-DD.
// Date-only form is treated as inclusive by converting to next-day 00:00 UTC.
// If empty, defaultVal is returned.
func parseEnd(val string, defaultVal time.Time, log *slog.Logger) time.Time {
	if val == "" {
		return defaultVal
	}
	if t, ok := app.ParseEnd(val); ok {
		return t
	}
	log.Error("invalid --to, expected RFC3339 or YYYY-MM-DD")
	os.Exit(2)
	return time.Time{}
}
