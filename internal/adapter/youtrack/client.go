package youtrack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harryrobbins/youtrack-time-importer/internal/domain"
	"github.com/harryrobbins/youtrack-time-importer/internal/retry"
)

// Client implements ports.Tracker against the YouTrack REST API.
type Client struct {
	baseURL    string
	token      string
	http       *http.Client
	log        *slog.Logger
	maxElapsed time.Duration
}

// NewClient returns a client authenticating with a permanent token.
// maxElapsed bounds retries of transient failures; zero uses the default.
func NewClient(baseURL, token string, maxElapsed time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:        log,
		maxElapsed: maxElapsed,
	}
}

const (
	issueFields    = "id,idReadable,summary,project(id,shortName,name)"
	projectFields  = "id,shortName,name"
	workItemFields = "id,date,text,duration(minutes)"
)

// CurrentUser returns the account behind the token. It is the cheapest call
// that proves the URL and credentials work.
func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	var u rawUser
	if err := c.do(ctx, http.MethodGet, "/api/users/me", url.Values{"fields": {"id,login,fullName"}}, nil, &u); err != nil {
		return domain.User{}, fmt.Errorf("youtrack: current user: %w", err)
	}
	return domain.User{ID: u.ID, Login: u.Login, FullName: u.FullName}, nil
}

// GetIssue fetches an issue by readable id (ABC-123).
func (c *Client) GetIssue(ctx context.Context, issueID string) (domain.Issue, error) {
	var is rawIssue
	err := c.do(ctx, http.MethodGet, "/api/issues/"+url.PathEscape(issueID), url.Values{"fields": {issueFields}}, nil, &is)
	if err != nil {
		if isNotFound(err) {
			return domain.Issue{}, fmt.Errorf("%s: %w", issueID, domain.ErrIssueNotFound)
		}
		return domain.Issue{}, fmt.Errorf("youtrack: get issue %s: %w", issueID, err)
	}
	return is.toDomain(), nil
}

// GetProject finds a project by short name. It returns nil when there is none.
func (c *Client) GetProject(ctx context.Context, shortName string) (*domain.Project, error) {
	var projects []rawProject
	q := url.Values{"fields": {projectFields}, "query": {shortName}, "$top": {"100"}}
	if err := c.do(ctx, http.MethodGet, "/api/admin/projects", q, nil, &projects); err != nil {
		return nil, fmt.Errorf("youtrack: find project %s: %w", shortName, err)
	}
	for _, p := range projects {
		if strings.EqualFold(p.ShortName, shortName) {
			out := p.toDomain()
			return &out, nil
		}
	}
	return nil, nil
}

// GetWorkItems lists the work items logged on an issue.
func (c *Client) GetWorkItems(ctx context.Context, issueID string) ([]domain.WorkItem, error) {
	var raw []rawWorkItem
	path := "/api/issues/" + url.PathEscape(issueID) + "/timeTracking/workItems"
	q := url.Values{"fields": {workItemFields}, "$top": {"-1"}}
	if err := c.do(ctx, http.MethodGet, path, q, nil, &raw); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", issueID, domain.ErrIssueNotFound)
		}
		return nil, fmt.Errorf("youtrack: list work items %s: %w", issueID, err)
	}
	out := make([]domain.WorkItem, 0, len(raw))
	for _, w := range raw {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// CreateWorkItem logs item on an issue.
func (c *Client) CreateWorkItem(ctx context.Context, issueID string, item domain.WorkItem) error {
	body, err := json.Marshal(rawWorkItem{
		Date:     item.Date,
		Text:     item.Description,
		Duration: rawDuration{Minutes: item.Duration},
	})
	if err != nil {
		return err
	}
	path := "/api/issues/" + url.PathEscape(issueID) + "/timeTracking/workItems"
	if err := c.do(ctx, http.MethodPost, path, url.Values{"fields": {"id"}}, body, nil); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%s: %w", issueID, domain.ErrIssueNotFound)
		}
		return fmt.Errorf("youtrack: create work item %s: %w", issueID, err)
	}
	c.log.Debug("youtrack work item created", slog.String("issue", issueID), slog.Int("minutes", item.Duration))
	return nil
}

// do sends one request, retrying transient failures, and decodes the JSON
// response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	if c.baseURL == "" {
		return errors.New("youtrack URL not configured")
	}
	if c.token == "" {
		return errors.New("youtrack token not configured")
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	u.RawQuery = query.Encode()

	var respBody []byte
	err = retry.Do(ctx, c.maxElapsed, func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			c.log.Debug("youtrack request failed", slog.String("path", path), slog.String("error", err.Error()))
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return &retry.StatusError{Service: "youtrack", Status: resp.StatusCode, Body: string(b)}
		}
		respBody, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return err
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var se *retry.StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

type rawUser struct {
	ID       string `json:"id"`
	Login    string `json:"login"`
	FullName string `json:"fullName"`
}

type rawProject struct {
	ID        string `json:"id"`
	ShortName string `json:"shortName"`
	Name      string `json:"name"`
}

func (p rawProject) toDomain() domain.Project {
	return domain.Project{ID: p.ID, ShortName: p.ShortName, Name: p.Name}
}

type rawIssue struct {
	ID         string     `json:"id"`
	IDReadable string     `json:"idReadable"`
	Summary    string     `json:"summary"`
	Project    rawProject `json:"project"`
}

func (i rawIssue) toDomain() domain.Issue {
	return domain.Issue{ID: i.ID, IDReadable: i.IDReadable, Summary: i.Summary, Project: i.Project.toDomain()}
}

// rawWorkItem mirrors IssueWorkItem in the YouTrack REST API.
type rawWorkItem struct {
	ID       string      `json:"id,omitempty"`
	Date     int64       `json:"date"`
	Text     string      `json:"text"`
	Duration rawDuration `json:"duration"`
}

type rawDuration struct {
	Minutes int `json:"minutes"`
}

func (w rawWorkItem) toDomain() domain.WorkItem {
	return domain.WorkItem{ID: w.ID, Description: w.Text, Duration: w.Duration.Minutes, Date: w.Date}
}
