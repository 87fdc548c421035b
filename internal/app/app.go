package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/harryrobbins/youtrack-time-importer/internal/adapter/csvfile"
	msql "github.com/harryrobbins/youtrack-time-importer/internal/adapter/mysql"
	tg "github.com/harryrobbins/youtrack-time-importer/internal/adapter/toggl"
	"github.com/harryrobbins/youtrack-time-importer/internal/adapter/youtrack"
	"github.com/harryrobbins/youtrack-time-importer/internal/config"
	"github.com/harryrobbins/youtrack-time-importer/internal/migrate"
	"github.com/harryrobbins/youtrack-time-importer/internal/ports"
	"github.com/harryrobbins/youtrack-time-importer/internal/row"
	"github.com/harryrobbins/youtrack-time-importer/internal/usecase"
)

// ErrImportRunning is returned when an import is triggered while another runs.
var ErrImportRunning = errors.New("import already running")

// App wires adapters and use cases.
type App struct {
	log     *slog.Logger
	tracker ports.Tracker
	toggl   ports.TogglClient
	ledger  ports.Ledger
	closers []func() error

	running sync.Mutex
}

// New connects to the tracker and, when MYSQL_DSN is set, the import ledger.
// A tracker that rejects the credentials is fatal.
func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	tracker := youtrack.NewClient(cfg.YouTrack.URL, cfg.YouTrack.Token, cfg.HTTP.RetryMaxElapsed, log)
	user, err := tracker.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not connect to YouTrack: %w", err)
	}
	log.Info("connected to youtrack", slog.String("url", cfg.YouTrack.URL), slog.String("user", user.Login))

	var toggl ports.TogglClient
	if cfg.RequireToggl() == nil {
		toggl = tg.NewClient(cfg.Toggl.BaseURL, cfg.Toggl.APIToken, cfg.Toggl.UserAgent, cfg.Toggl.WorkspaceID, cfg.HTTP.RetryMaxElapsed, log)
	}

	a := newApp(log, tracker, toggl, nil)
	if cfg.MySQL.DSN != "" {
		// Run migrations before opening the ledger for use
		if err := migrate.Run(ctx, cfg.MySQL.DSN, log); err != nil {
			return nil, fmt.Errorf("migrate ledger: %w", err)
		}
		ledger, err := msql.NewClient(ctx, cfg.MySQL.DSN, log)
		if err != nil {
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		a.ledger = ledger
		a.closers = append(a.closers, ledger.Close)
	}
	return a, nil
}

func newApp(log *slog.Logger, tracker ports.Tracker, toggl ports.TogglClient, ledger ports.Ledger) *App {
	return &App{log: log, tracker: tracker, toggl: toggl, ledger: ledger}
}

func (a *App) useCase(p ports.Prompter) *usecase.ImportUseCase {
	return &usecase.ImportUseCase{Log: a.log, Tracker: a.tracker, Prompter: p, Ledger: a.ledger}
}

// ImportFile imports a CSV export in the given format.
func (a *App) ImportFile(ctx context.Context, format row.Format, path string, p ports.Prompter) (usecase.Summary, error) {
	if !a.running.TryLock() {
		return usecase.Summary{}, ErrImportRunning
	}
	defer a.running.Unlock()

	records, err := csvfile.Read(path)
	if err != nil {
		return usecase.Summary{}, err
	}
	recs := make([]row.Record, 0, len(records))
	for _, r := range records {
		rec, err := row.FromRecord(format, r)
		if err != nil {
			return usecase.Summary{}, err
		}
		recs = append(recs, rec)
	}
	a.log.Info("importing timeslips from file", slog.String("file", path))
	uc := a.useCase(p)
	return uc.Run(ctx, string(format), uc.NewRows(recs))
}

// ImportToggl imports entries from the Toggl reports API started in [from, to).
func (a *App) ImportToggl(ctx context.Context, from, to time.Time, p ports.Prompter) (usecase.Summary, error) {
	if a.toggl == nil {
		return usecase.Summary{}, errors.New("toggl api not configured: set TOGGL_API_TOKEN and TOGGL_WORKSPACE_ID")
	}
	if !a.running.TryLock() {
		return usecase.Summary{}, ErrImportRunning
	}
	defer a.running.Unlock()

	a.log.Info("fetching toggl entries", slog.Time("from", from), slog.Time("to", to))
	entries, err := a.toggl.ListReportEntries(ctx, from, to)
	if err != nil {
		return usecase.Summary{}, err
	}
	recs := make([]row.Record, 0, len(entries))
	for _, e := range entries {
		recs = append(recs, row.NewTogglAPI(e))
	}
	uc := a.useCase(p)
	return uc.Run(ctx, string(row.FormatTogglAPI), uc.NewRows(recs))
}

// Close releases the ledger connection, if any.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
