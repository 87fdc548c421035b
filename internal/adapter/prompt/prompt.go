package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// Terminal asks the operator through interactive terminal forms.
type Terminal struct {
	// Accessible switches huh to plain line-based prompts, for screen
	// readers and dumb terminals.
	Accessible bool
}

func (p Terminal) ConfirmAssign(ctx context.Context, tags, summary string) (bool, error) {
	assign := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("No issue found for %q. Add to an issue?", tags)).
				Description(summary).
				Affirmative("Yes").
				Negative("No, ignore").
				Value(&assign),
		),
	).WithAccessible(p.Accessible)
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return assign, nil
}

func (p Terminal) AskIssueID(ctx context.Context, summary string, attempt int) (string, error) {
	title := "Enter issue id for " + summary
	if attempt > 1 {
		title = "Could not find that issue. Try again for " + summary
	}
	var id string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("Leave blank to ignore this entry").
				Placeholder("e.g., ABC-123").
				Value(&id),
		),
	).WithAccessible(p.Accessible)
	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}
	return strings.TrimSpace(id), nil
}

// Decline ignores every row that needs a decision. It is used for
// unattended runs.
type Decline struct{}

func (Decline) ConfirmAssign(ctx context.Context, tags, summary string) (bool, error) {
	return false, ctx.Err()
}

func (Decline) AskIssueID(ctx context.Context, summary string, attempt int) (string, error) {
	return "", ctx.Err()
}
