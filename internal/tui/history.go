package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/notifarea/internal/model"
)

const historyMessageLen = 100

// historyItem wraps a notification for the list component.
type historyItem struct {
	notification *model.Notification
}

func (i historyItem) Title() string {
	if i.notification.Title == "" {
		return "(untitled)"
	}
	return i.notification.Title
}

func (i historyItem) Description() string {
	n := i.notification
	state := "visible"
	if !n.Visible {
		state = "hidden"
	}
	desc := fmt.Sprintf("%s · %dms · %s", n.ID, n.Duration.Milliseconds(), state)
	if !n.CreatedAt.IsZero() {
		desc += " · " + humanize.Time(n.CreatedAt)
	}
	return desc
}

func (i historyItem) FilterValue() string {
	return i.notification.Title + " " + i.notification.Message + " " + string(i.notification.ID)
}

// historyDelegate renders three lines per record and dims hidden ones.
type historyDelegate struct {
	list.DefaultDelegate
}

func newHistoryDelegate() historyDelegate {
	d := list.NewDefaultDelegate()
	d.SetHeight(3)
	return historyDelegate{DefaultDelegate: d}
}

// Render renders a list item with custom styling for hidden notifications.
func (d historyDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	hi, ok := item.(historyItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	isSelected := index == m.Index()
	isHidden := !hi.notification.Visible
	itemWidth := m.Width() - d.Styles.NormalTitle.GetHorizontalPadding()

	var titleStyle, descStyle lipgloss.Style
	if isSelected {
		titleStyle = d.Styles.SelectedTitle
		descStyle = d.Styles.SelectedDesc
	} else {
		titleStyle = d.Styles.NormalTitle
		descStyle = d.Styles.NormalDesc
	}
	if isHidden {
		titleStyle = titleStyle.Foreground(lipgloss.Color("8"))
		descStyle = descStyle.Foreground(lipgloss.Color("8"))
	}

	title := hi.Title()
	message := hi.notification.MessageTruncated(historyMessageLen)
	desc := hi.Description()
	if itemWidth > 0 {
		title = ansi.Truncate(title, itemWidth, "…")
		message = ansi.Truncate(message, itemWidth, "…")
		desc = ansi.Truncate(desc, itemWidth, "…")
	}

	_, _ = fmt.Fprint(w, titleStyle.Render(title))
	_, _ = fmt.Fprint(w, "\n")
	_, _ = fmt.Fprint(w, descStyle.Render(message))
	_, _ = fmt.Fprint(w, "\n")
	_, _ = fmt.Fprint(w, descStyle.Render(desc))
}

// buildHistoryItems lists every record in insertion order.
func buildHistoryItems(records []*model.Notification) []list.Item {
	items := make([]list.Item, len(records))
	for i, n := range records {
		items[i] = historyItem{notification: n}
	}
	return items
}

// renderDetail renders the detail view for a notification.
func renderDetail(n *model.Notification) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	var s strings.Builder
	s.WriteString(headerStyle.Render(n.Title) + "\n\n")

	data, err := yaml.Marshal(n)
	if err != nil {
		s.WriteString(labelStyle.Render("Failed to encode: ") + err.Error() + "\n")
		return s.String()
	}
	s.Write(data)

	if n.HasProgress() {
		s.WriteString("\n" + labelStyle.Render("Progress: ") + fmt.Sprintf("%d%%", n.ProgressPercent()) + "\n")
	}
	if !n.CreatedAt.IsZero() {
		s.WriteString(labelStyle.Render("Shown: ") + humanize.Time(n.CreatedAt) + "\n")
	}
	return s.String()
}
