package ports

import (
	"context"
	"time"

	"github.com/harryrobbins/youtrack-time-importer/internal/domain"
)

// Tracker is the issue tracker work items are imported into.
type Tracker interface {
	CurrentUser(ctx context.Context) (domain.User, error)
	// GetIssue returns domain.ErrIssueNotFound (possibly wrapped) for unknown ids.
	GetIssue(ctx context.Context, issueID string) (domain.Issue, error)
	// GetProject returns nil without error when no project has the short name.
	GetProject(ctx context.Context, shortName string) (*domain.Project, error)
	GetWorkItems(ctx context.Context, issueID string) ([]domain.WorkItem, error)
	CreateWorkItem(ctx context.Context, issueID string, item domain.WorkItem) error
}

// TogglClient fetches detailed report entries from Toggl.
type TogglClient interface {
	ListReportEntries(ctx context.Context, from, to time.Time) ([]domain.TogglEntry, error)
}

// Prompter asks the operator how to handle rows without a usable issue id.
type Prompter interface {
	// ConfirmAssign asks whether the row should be attached to an issue at all.
	ConfirmAssign(ctx context.Context, tags, summary string) (bool, error)
	// AskIssueID asks for an issue id. An empty answer means ignore the row.
	// attempt starts at 1 and grows each time the previous answer was unknown.
	AskIssueID(ctx context.Context, summary string, attempt int) (string, error)
}

// Ledger keeps an audit trail of processed rows.
type Ledger interface {
	Record(ctx context.Context, outcome domain.ImportOutcome) error
}
