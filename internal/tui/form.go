package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/jmylchreest/notifarea/internal/compose"
)

// formDoneMsg is emitted when the compose form is submitted or aborted.
type formDoneMsg struct{}

// newComposeForm builds the compose form bound to req. The form is
// single-use; it is rebuilt after every submit and keeps req's values.
func newComposeForm(req *compose.Request, width int) *huh.Form {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&req.Title),
			huh.NewText().
				Title("Message").
				Description("Markdown is rendered").
				Lines(3).
				Value(&req.Message),
			huh.NewInput().
				Title("Duration (ms)").
				CharLimit(9).
				Validate(compose.ValidateDuration).
				Value(&req.Duration),
			huh.NewInput().
				Title("Actions").
				Description("Comma-separated button labels").
				Value(&req.Actions),
			huh.NewConfirm().
				Title("Use image").
				Value(&req.UseImage),
			huh.NewConfirm().
				Title("Use progress").
				Value(&req.UseProgress),
		),
	).
		WithShowHelp(false).
		WithWidth(max(width, 20))

	done := func() tea.Msg { return formDoneMsg{} }
	form.SubmitCmd = done
	form.CancelCmd = done
	return form
}
