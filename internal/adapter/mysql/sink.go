package mysql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/harryrobbins/youtrack-time-importer/internal/domain"
)

// Client implements ports.Ledger by writing to a MySQL table.
type Client struct {
	db  *sql.DB
	log *slog.Logger
}

// NewClient opens a MySQL connection using the provided DSN.
// Example DSN: user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
func NewClient(ctx context.Context, dsn string, log *slog.Logger) (*Client, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	// Imports are sequential; a small pool is plenty.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	return &Client{db: db, log: log}, nil
}

// Record appends one row outcome to the import ledger.
func (c *Client) Record(ctx context.Context, o domain.ImportOutcome) error {
	const q = `
INSERT INTO import_ledger
  (source, summary, issue_id, description, duration_min, date_ms, status, reason, imported_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	at := o.ImportedAt
	if at.IsZero() {
		at = time.Now()
	}
	var issue, date interface{}
	if o.IssueID != "" {
		issue = o.IssueID
	}
	if o.Item.Date != 0 {
		date = o.Item.Date
	}
	if _, err := c.db.ExecContext(
		ctx,
		q,
		o.Source,
		o.Summary,
		issue,
		o.Item.Description,
		o.Item.Duration,
		date,
		string(o.Status),
		o.Reason,
		at.UTC(),
	); err != nil {
		return err
	}
	c.log.Debug("ledger recorded outcome", slog.String("status", string(o.Status)), slog.String("issue", o.IssueID))
	return nil
}

// Counts returns how many ledger rows exist per status.
func (c *Client) Counts(ctx context.Context) (map[domain.ImportStatus]int, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM import_ledger GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[domain.ImportStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[domain.ImportStatus(status)] = n
	}
	return out, rows.Err()
}

// Close closes the underlying DB. Not wired via interface to keep ports minimal.
func (c *Client) Close() error { return c.db.Close() }
