package prompt

import (
	"context"
	"testing"

	"github.com/harryrobbins/youtrack-time-importer/internal/ports"
)

var (
	_ ports.Prompter = Terminal{}
	_ ports.Prompter = Decline{}
)

func TestDeclineIgnoresEverything(t *testing.T) {
	ctx := context.Background()
	ok, err := Decline{}.ConfirmAssign(ctx, "lunch", "Wed, 01 Jan / 1h / lunch")
	if err != nil || ok {
		t.Fatalf("ConfirmAssign = %v, %v", ok, err)
	}
	id, err := Decline{}.AskIssueID(ctx, "x", 1)
	if err != nil || id != "" {
		t.Fatalf("AskIssueID = %q, %v", id, err)
	}
}

func TestDeclineHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Decline{}).ConfirmAssign(ctx, "", ""); err == nil {
		t.Fatalf("expected context error")
	}
}
