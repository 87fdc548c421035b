package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harryrobbins/youtrack-time-importer/internal/adapter/prompt"
	"github.com/harryrobbins/youtrack-time-importer/internal/domain"
	"github.com/harryrobbins/youtrack-time-importer/internal/row"
)

type stubTracker struct {
	created map[string][]domain.WorkItem
}

func (s *stubTracker) CurrentUser(ctx context.Context) (domain.User, error) {
	return domain.User{Login: "me"}, nil
}

func (s *stubTracker) GetIssue(ctx context.Context, id string) (domain.Issue, error) {
	if id == "ABC-1" {
		return domain.Issue{IDReadable: id}, nil
	}
	return domain.Issue{}, domain.ErrIssueNotFound
}

func (s *stubTracker) GetProject(ctx context.Context, shortName string) (*domain.Project, error) {
	return nil, nil
}

func (s *stubTracker) GetWorkItems(ctx context.Context, id string) ([]domain.WorkItem, error) {
	return s.created[id], nil
}

func (s *stubTracker) CreateWorkItem(ctx context.Context, id string, item domain.WorkItem) error {
	s.created[id] = append(s.created[id], item)
	return nil
}

type stubToggl struct {
	entries []domain.TogglEntry
	started chan struct{}
	block   chan struct{}
}

func (s stubToggl) ListReportEntries(ctx context.Context, from, to time.Time) ([]domain.TogglEntry, error) {
	if s.block != nil {
		close(s.started)
		<-s.block
	}
	return s.entries, nil
}

func testApp(toggl stubToggl) (*App, *stubTracker) {
	tr := &stubTracker{created: map[string][]domain.WorkItem{}}
	return newApp(slog.New(slog.DiscardHandler), tr, toggl, nil), tr
}

func TestHealthz(t *testing.T) {
	a, _ := testApp(stubToggl{})
	rec := httptest.NewRecorder()
	a.HTTPServer(":0").Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestImportEndpoint(t *testing.T) {
	a, tr := testApp(stubToggl{entries: []domain.TogglEntry{
		{Description: "ABC-1 work", Dur: 1_800_000, Start: "2020-01-01T09:00:00+01:00"},
		{Description: "no issue", Dur: 60_000, Start: "2020-01-01T10:00:00+01:00"},
		{Description: "ABC-1 hidden", Dur: 60_000, Start: "2020-01-01T11:00:00+01:00", Tags: []string{"ignore"}},
	}})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/import?from=2020-01-01&to=2020-01-01", nil)
	a.HTTPServer(":0").Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Status   string `json:"status"`
		From     string `json:"from"`
		To       string `json:"to"`
		Total    int    `json:"total"`
		Uploaded int    `json:"uploaded"`
		Ignored  int    `json:"ignored"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Total != 3 || body.Uploaded != 1 || body.Ignored != 2 {
		t.Fatalf("body = %+v", body)
	}
	if body.From != "2020-01-01T00:00:00Z" || body.To != "2020-01-02T00:00:00Z" {
		t.Fatalf("window = %s .. %s", body.From, body.To)
	}
	if got := tr.created["ABC-1"]; len(got) != 1 || got[0].Duration != 30 {
		t.Fatalf("created = %+v", got)
	}
}

func TestImportEndpointRejectsConcurrentRuns(t *testing.T) {
	started, block := make(chan struct{}), make(chan struct{})
	a, _ := testApp(stubToggl{started: started, block: block})
	h := a.HTTPServer(":0").Handler

	done := make(chan int)
	go func() {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/import", nil))
		done <- rec.Code
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first import never started")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/import", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("concurrent status = %d, want 409", rec.Code)
	}
	close(block)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("first import status = %d", code)
	}
}

func TestImportEndpointMethod(t *testing.T) {
	a, _ := testApp(stubToggl{})
	rec := httptest.NewRecorder()
	a.HTTPServer(":0").Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/import", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestImportTogglRequiresClient(t *testing.T) {
	a := newApp(slog.New(slog.DiscardHandler), &stubTracker{created: map[string][]domain.WorkItem{}}, nil, nil)
	if _, err := a.ImportToggl(context.Background(), time.Now(), time.Now(), prompt.Decline{}); err == nil {
		t.Fatalf("expected error without toggl client")
	}
}

func TestImportFile(t *testing.T) {
	a, tr := testApp(stubToggl{})
	path := filepath.Join(t.TempDir(), "manictime.csv")
	csv := "Name,Start,End,Duration,Notes\n" +
		"ABC-1 meeting,01/01/2020 09:00:00,01/01/2020 09:30:00,0:30:00,sync\n" +
		"lunch ignore,01/01/2020 12:00:00,01/01/2020 13:00:00,1:00:00,\n"
	if err := os.WriteFile(path, []byte(csv), 0o600); err != nil {
		t.Fatal(err)
	}
	sum, err := a.ImportFile(context.Background(), row.FormatManicTime, path, prompt.Decline{})
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if sum.Total != 2 || sum.Uploaded != 1 || sum.Ignored != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	want := domain.WorkItem{Description: "sync", Duration: 30, Date: 1577869200000}
	if got := tr.created["ABC-1"]; len(got) != 1 || got[0] != want {
		t.Fatalf("created = %+v", got)
	}
	if _, err := a.ImportFile(context.Background(), row.FormatTogglAPI, path, prompt.Decline{}); err == nil {
		t.Fatalf("toggl-api is not a CSV format")
	}
}

func TestParseBoundaries(t *testing.T) {
	def := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := parseStartHTTP("", def); !got.Equal(def) {
		t.Errorf("empty start = %v", got)
	}
	if got := parseStartHTTP("garbage", def); !got.Equal(def) {
		t.Errorf("invalid start = %v", got)
	}
	if got := parseStartHTTP("2024-03-05", def); !got.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date start = %v", got)
	}
	if got := parseEndHTTP("2024-03-05", def); !got.Equal(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date end = %v", got)
	}
	if got := parseEndHTTP("2024-03-05T10:00:00Z", def); !got.Equal(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("rfc3339 end = %v", got)
	}
}
