package toggl

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/harryrobbins/youtrack-time-importer/internal/domain"
	"github.com/harryrobbins/youtrack-time-importer/internal/retry"
)

// Client implements ports.TogglClient using the Toggl detailed reports API.
type Client struct {
	baseURL    string
	apiToken   string
	userAgent  string
	workspace  int64
	http       *http.Client
	log        *slog.Logger
	maxElapsed time.Duration
}

func NewClient(baseURL, apiToken, userAgent string, workspaceID int64, maxElapsed time.Duration, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.track.toggl.com"
	}
	return &Client{
		baseURL:   baseURL,
		apiToken:  apiToken,
		userAgent: userAgent,
		workspace: workspaceID,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:        log,
		maxElapsed: maxElapsed,
	}
}

// ListReportEntries fetches every entry started in [from, to), walking all pages.
// GET /reports/api/v2/details?workspace_id=...&since=...&until=...&page=N
//
// The report API only takes inclusive dates, so whole days are requested and
// entries outside the window are dropped here.
func (c *Client) ListReportEntries(ctx context.Context, from, to time.Time) ([]domain.TogglEntry, error) {
	if c.apiToken == "" {
		return nil, errors.New("missing api token")
	}
	if c.workspace == 0 {
		return nil, errors.New("missing workspace id")
	}
	var out []domain.TogglEntry
	for page := 1; ; page++ {
		resp, err := c.fetchPage(ctx, from, to, page)
		if err != nil {
			return nil, err
		}
		for _, r := range resp.Data {
			if !inWindow(r.Start, from, to) {
				continue
			}
			out = append(out, domain.TogglEntry{
				ID:          r.ID,
				Description: r.Description,
				Dur:         r.Dur,
				Start:       r.Start,
				Tags:        r.Tags,
			})
		}
		c.log.Debug("toggl report page fetched", slog.Int("page", page), slog.Int("entries", len(resp.Data)), slog.Int("total", resp.TotalCount))
		if len(resp.Data) == 0 || resp.PerPage <= 0 || page*resp.PerPage >= resp.TotalCount {
			break
		}
	}
	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, from, to time.Time, page int) (*rawDetails, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	u.Path = "/reports/api/v2/details"
	q := u.Query()
	q.Set("workspace_id", strconv.FormatInt(c.workspace, 10))
	q.Set("since", from.UTC().Format("2006-01-02"))
	// until is inclusive; an exclusive midnight bound must not pull in the next day
	q.Set("until", to.UTC().Add(-time.Nanosecond).Format("2006-01-02"))
	q.Set("user_agent", c.userAgent)
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	var body []byte
	err = retry.Do(ctx, c.maxElapsed, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return err
		}
		// Basic auth: token:api_token
		auth := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", c.apiToken, "api_token")))
		req.Header.Set("Authorization", "Basic "+auth)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return &retry.StatusError{Service: "toggl", Status: resp.StatusCode, Body: string(body)}
		}
		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	var out rawDetails
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode toggl report page %d: %w", page, err)
	}
	return &out, nil
}

// inWindow reports whether an entry start lies in [from, to). Starts that do
// not parse are kept so the importer can report them as malformed.
func inWindow(start string, from, to time.Time) bool {
	t, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return true
	}
	return !t.Before(from) && t.Before(to)
}

// rawDetails mirrors a page of the Toggl detailed report.
type rawDetails struct {
	TotalCount int            `json:"total_count"`
	PerPage    int            `json:"per_page"`
	Data       []rawTimeEntry `json:"data"`
}

type rawTimeEntry struct {
	ID          int64    `json:"id"`
	Description string   `json:"description"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Dur         int64    `json:"dur"`
	Tags        []string `json:"tags"`
}
