package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harryrobbins/youtrack-time-importer/internal/domain"
	"github.com/harryrobbins/youtrack-time-importer/internal/ports"
	"github.com/harryrobbins/youtrack-time-importer/internal/row"
)

// ImportUseCase walks rows one at a time and uploads the ones the tracker
// does not already have.
type ImportUseCase struct {
	Log      *slog.Logger
	Tracker  ports.Tracker
	Prompter ports.Prompter
	Ledger   ports.Ledger // Optional
	Now      func() time.Time
}

// Summary counts how each row of a run ended.
type Summary struct {
	Total      int `json:"total"`
	Uploaded   int `json:"uploaded"`
	Ignored    int `json:"ignored"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}

func (s *Summary) add(status domain.ImportStatus) {
	switch status {
	case domain.StatusUploaded:
		s.Uploaded++
	case domain.StatusIgnored:
		s.Ignored++
	case domain.StatusDuplicate:
		s.Duplicates++
	case domain.StatusFailed:
		s.Failed++
	}
}

// NewRows binds records to the use case's tracker.
func (uc *ImportUseCase) NewRows(records []row.Record) []*row.Row {
	rows := make([]*row.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, row.New(rec, uc.Tracker, uc.Log))
	}
	return rows
}

// Run imports rows in order. A failing row is counted and skipped; only a
// prompt failure or cancellation stops the run early.
func (uc *ImportUseCase) Run(ctx context.Context, source string, rows []*row.Row) (Summary, error) {
	var sum Summary
	if uc.Tracker == nil || uc.Prompter == nil {
		return sum, errors.New("usecase not initialized: missing dependencies")
	}
	if uc.Log == nil {
		uc.Log = slog.New(slog.DiscardHandler)
	}
	uc.Log.Info("importing timeslips", slog.String("source", source), slog.Int("rows", len(rows)))

	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Total++
		out, err := uc.importRow(ctx, r)
		if err != nil {
			return sum, err
		}
		out.Source = source
		sum.add(out.Status)
		uc.report(ctx, out)
	}

	uc.Log.Info(fmt.Sprintf("added %d timeslips out of %d", sum.Uploaded, sum.Total),
		slog.Int("ignored", sum.Ignored),
		slog.Int("duplicates", sum.Duplicates),
		slog.Int("failed", sum.Failed),
	)
	return sum, nil
}

// importRow moves one row from new to a terminal state. The returned error is
// reserved for conditions that must stop the whole run.
func (uc *ImportUseCase) importRow(ctx context.Context, r *row.Row) (domain.ImportOutcome, error) {
	out := domain.ImportOutcome{Summary: r.Summary()}
	if row.IsIgnored(r) {
		out.Status, out.Reason = domain.StatusIgnored, "tagged ignore"
		return out, nil
	}

	item, err := r.WorkItem()
	if err != nil {
		out.Status, out.Reason = domain.StatusFailed, err.Error()
		return out, nil
	}
	out.Item = item

	resolved, err := uc.resolve(ctx, r)
	if err != nil {
		return out, err
	}
	if resolved == nil {
		out.Status, out.Reason = domain.StatusIgnored, "no issue chosen"
		return out, nil
	}
	out.IssueID, _ = resolved.IssueID()

	exists, err := resolved.TimeslipExists(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		out.Status, out.Reason = domain.StatusFailed, err.Error()
		return out, nil
	}
	if exists {
		out.Status, out.Reason = domain.StatusDuplicate, "timeslip already exists"
		return out, nil
	}

	if _, err := resolved.Save(ctx); err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		out.Status, out.Reason = domain.StatusFailed, err.Error()
		return out, nil
	}
	out.Status = domain.StatusUploaded
	return out, nil
}

// resolve returns a row whose issue exists on the tracker, asking the
// operator when the row has no usable id. A nil row means ignore.
func (uc *ImportUseCase) resolve(ctx context.Context, r *row.Row) (*row.Row, error) {
	if r.IssueExists(ctx) {
		return r, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if id, ok := r.IssueID(); ok {
		uc.Log.Info("issue not found on tracker", slog.String("issue", id), slog.String("row", r.Summary()))
	}

	assign, err := uc.Prompter.ConfirmAssign(ctx, r.Tags(), r.Summary())
	if err != nil {
		return nil, fmt.Errorf("prompt: %w", err)
	}
	if !assign {
		return nil, nil
	}
	for attempt := 1; ; attempt++ {
		id, err := uc.Prompter.AskIssueID(ctx, r.Summary(), attempt)
		if err != nil {
			return nil, fmt.Errorf("prompt: %w", err)
		}
		if id == "" {
			return nil, nil
		}
		candidate := r.WithIssueID(id)
		if candidate.IssueExists(ctx) {
			return candidate, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		uc.Log.Info("issue not found on tracker", slog.String("issue", id))
	}
}

func (uc *ImportUseCase) report(ctx context.Context, out domain.ImportOutcome) {
	attrs := []any{slog.String("row", out.Summary)}
	if out.IssueID != "" {
		attrs = append(attrs, slog.String("issue", out.IssueID))
	}
	switch out.Status {
	case domain.StatusUploaded:
		uc.Log.Info("uploaded timeslip", attrs...)
	case domain.StatusDuplicate:
		uc.Log.Info("timeslip already exists", attrs...)
	case domain.StatusIgnored:
		uc.Log.Info("timeslip ignored", append(attrs, slog.String("reason", out.Reason))...)
	case domain.StatusFailed:
		uc.Log.Warn("timeslip failed", append(attrs, slog.String("error", out.Reason))...)
	}

	if uc.Ledger == nil {
		return
	}
	now := time.Now
	if uc.Now != nil {
		now = uc.Now
	}
	out.ImportedAt = now().UTC()
	if err := uc.Ledger.Record(ctx, out); err != nil {
		uc.Log.Warn("ledger write failed", slog.String("error", err.Error()))
	}
}
