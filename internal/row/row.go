package row

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harryrobbins/youtrack-time-importer/internal/domain"
	"github.com/harryrobbins/youtrack-time-importer/internal/ports"
)

type lookupState int

const (
	lookupPending lookupState = iota
	lookupFound
	lookupMissing
)

// Row binds a record to the tracker it is imported into. Issue and project
// lookups happen at most once per Row.
type Row struct {
	Record

	tracker  ports.Tracker
	log      *slog.Logger
	override string

	issueState   lookupState
	issue        domain.Issue
	projectState lookupState
	project      domain.Project
}

// New returns a Row for rec. A nil logger discards lookup diagnostics.
func New(rec Record, tracker ports.Tracker, log *slog.Logger) *Row {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Row{Record: rec, tracker: tracker, log: log}
}

// WithIssueID returns a copy of the row that uses id instead of the one
// embedded in its text. The copy starts with no lookups done.
func (r *Row) WithIssueID(id string) *Row {
	return &Row{Record: r.Record, tracker: r.tracker, log: r.log, override: id}
}

// IssueID returns the manually supplied id, or the one found in the record.
func (r *Row) IssueID() (string, bool) {
	if r.override != "" {
		return r.override, true
	}
	return FindIssueID(r.IssueText())
}

// ProjectID returns the project short name of IssueID.
func (r *Row) ProjectID() (string, bool) {
	id, ok := r.IssueID()
	if !ok {
		return "", false
	}
	return ProjectIDOf(id)
}

// Issue returns the tracker issue for the row. Lookup errors count as not
// found and are not retried.
func (r *Row) Issue(ctx context.Context) (domain.Issue, bool) {
	if r.issueState == lookupPending {
		r.issueState = lookupMissing
		if id, ok := r.IssueID(); ok {
			issue, err := r.tracker.GetIssue(ctx, id)
			if err != nil {
				r.log.Debug("issue lookup failed", slog.String("issue", id), slog.String("error", err.Error()))
			} else {
				r.issue, r.issueState = issue, lookupFound
			}
		}
	}
	return r.issue, r.issueState == lookupFound
}

// Project returns the tracker project for the row, cached like Issue.
func (r *Row) Project(ctx context.Context) (domain.Project, bool) {
	if r.projectState == lookupPending {
		r.projectState = lookupMissing
		if id, ok := r.ProjectID(); ok {
			project, err := r.tracker.GetProject(ctx, id)
			switch {
			case err != nil:
				r.log.Debug("project lookup failed", slog.String("project", id), slog.String("error", err.Error()))
			case project != nil:
				r.project, r.projectState = *project, lookupFound
			}
		}
	}
	return r.project, r.projectState == lookupFound
}

func (r *Row) IssueExists(ctx context.Context) bool {
	_, ok := r.Issue(ctx)
	return ok
}

func (r *Row) ProjectExists(ctx context.Context) bool {
	_, ok := r.Project(ctx)
	return ok
}

// WorkItem builds the work item to upload for this row.
func (r *Row) WorkItem() (domain.WorkItem, error) {
	d, err := r.Duration()
	if err != nil {
		return domain.WorkItem{}, err
	}
	date, err := StartMillis(r)
	if err != nil {
		return domain.WorkItem{}, err
	}
	return domain.WorkItem{
		Description: r.Description(),
		Duration:    d.TotalMinutes(),
		Date:        date,
	}, nil
}

// TimeslipExists reports whether the row's issue already carries a work item
// with the same duration, date and description.
func (r *Row) TimeslipExists(ctx context.Context) (bool, error) {
	id, ok := r.IssueID()
	if !ok {
		return false, domain.ErrIssueNotFound
	}
	item, err := r.WorkItem()
	if err != nil {
		return false, err
	}
	existing, err := r.tracker.GetWorkItems(ctx, id)
	if err != nil {
		return false, fmt.Errorf("list work items of %s: %w", id, err)
	}
	for _, e := range existing {
		if e.Same(item) {
			return true, nil
		}
	}
	return false, nil
}

// Save uploads the row's work item to its issue.
func (r *Row) Save(ctx context.Context) (domain.WorkItem, error) {
	id, ok := r.IssueID()
	if !ok {
		return domain.WorkItem{}, domain.ErrIssueNotFound
	}
	item, err := r.WorkItem()
	if err != nil {
		return domain.WorkItem{}, err
	}
	if err := r.tracker.CreateWorkItem(ctx, id, item); err != nil {
		return domain.WorkItem{}, fmt.Errorf("create work item on %s: %w", id, err)
	}
	return item, nil
}
