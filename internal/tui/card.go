package tui

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/jmylchreest/notifarea/internal/media"
	"github.com/jmylchreest/notifarea/internal/model"
	"github.com/jmylchreest/notifarea/internal/overlay"
	"github.com/jmylchreest/notifarea/internal/theme"
)

// Smallest card that still fits border, header, one body line and actions.
const (
	minCardWidth  = 16
	minCardHeight = 5
	maxCacheSize  = 256
)

const dismissLabel = "Dismiss"

var ringGlyphs = []string{"○", "◔", "◑", "◕", "●"}

// button is a clickable region of a card. Columns are half-open and
// relative to the card's left edge; Action is empty for Dismiss.
type button struct {
	Action string
	Row    int
	X0, X1 int
}

// Dismiss reports whether b is the dismiss button.
func (b button) Dismiss() bool {
	return b.Action == ""
}

// region is a half-open rectangle relative to the card's top-left corner.
type region struct {
	Y0, Y1 int
	X0, X1 int
}

type cardView struct {
	Lines   []string
	Buttons []button
	Text    region // message area; empty when the card has no body
}

// cardState is the per-record scroll state kept across frames.
type cardState struct {
	textScroll   int
	actionScroll int
}

type markdownKey struct {
	src   string
	width int
	dark  bool
}

type imageKey struct {
	img  image.Image
	w, h int
}

// cardRenderer draws notification cards and caches the expensive parts.
type cardRenderer struct {
	hostBackground string
	markdown       map[markdownKey][]string
	images         map[imageKey][]string
}

func newCardRenderer(hostBackground string) *cardRenderer {
	return &cardRenderer{
		hostBackground: hostBackground,
		markdown:       make(map[markdownKey][]string),
		images:         make(map[imageKey][]string),
	}
}

type palette struct {
	bg, accent, fg string
}

// palette fades the record's colors toward the host background as the
// card collapses.
func (r *cardRenderer) palette(n *model.Notification, amount float64) palette {
	fade := 1 - min(max(amount, 0), 1)
	bg := theme.NormalizeColor(n.Background, model.DefaultBackground)
	accent := theme.NormalizeColor(n.HeaderColor, model.DefaultHeaderColor)
	fg := "#e6e6e6"
	if !theme.IsDark(bg) {
		fg = model.DefaultBackground
	}
	return palette{
		bg:     theme.Blend(bg, r.hostBackground, fade),
		accent: theme.Blend(accent, r.hostBackground, fade),
		fg:     theme.Blend(fg, r.hostBackground, fade),
	}
}

// render draws item as a width x height card. selected is the index of
// the highlighted button, or -1. Only the top item.Height lines are kept
// while the card is collapsing.
func (r *cardRenderer) render(item overlay.Item, width, height int, st *cardState, selected int) cardView {
	n := item.Record
	width = max(width, minCardWidth)
	height = max(height, minCardHeight)
	cw := width - 4  // border and padding
	ih := height - 2 // border
	pal := r.palette(n, item.Amount)

	lines := []string{r.header(n, cw, pal)}
	if n.HasProgress() && ih >= minCardHeight-1 {
		lines = append(lines, progressBar(n.ProgressValue(), cw, pal))
	}
	var text region
	if bodyH := ih - len(lines) - 1; bodyH > 0 {
		text = region{Y0: len(lines) + 1, Y1: len(lines) + 1 + bodyH, X0: 2, X1: 2 + cw}
		if imgW := imageWidth(n, cw); imgW > 0 {
			text.X0 += imgW + 1
		}
		lines = append(lines, r.body(n, cw, bodyH, st, pal)...)
	}
	actions, buttons := actionRow(n, cw, st, selected, pal)
	for i := range buttons {
		buttons[i].Row = len(lines) + 1
		buttons[i].X0 += 2
		buttons[i].X1 += 2
	}
	lines = append(lines, actions)

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(pal.accent)).
		BorderBackground(lipgloss.Color(pal.bg)).
		Background(lipgloss.Color(pal.bg)).
		Foreground(lipgloss.Color(pal.fg)).
		Padding(0, 1)
	out := strings.Split(style.Render(strings.Join(lines, "\n")), "\n")

	if item.Height < len(out) {
		out = out[:max(item.Height, 0)]
		kept := buttons[:0]
		for _, b := range buttons {
			if b.Row < len(out) {
				kept = append(kept, b)
			}
		}
		buttons = kept
		text.Y1 = min(text.Y1, len(out))
	}
	return cardView{Lines: out, Buttons: buttons, Text: text}
}

func (r *cardRenderer) header(n *model.Notification, cw int, pal palette) string {
	var right string
	if n.HasProgress() {
		right = fmt.Sprintf("%s %d%%", ring(n.ProgressValue()), n.ProgressPercent())
	}

	titleW := cw
	if right != "" {
		titleW = cw - ansi.StringWidth(right) - 1
	}
	title := ansi.Truncate(strings.Join(strings.Fields(n.Title), " "), max(titleW, 0), "…")

	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(pal.accent)).Background(lipgloss.Color(pal.bg))
	gap := max(cw-ansi.StringWidth(title)-ansi.StringWidth(right), 0)
	return accent.Bold(true).Render(title) + accent.Render(strings.Repeat(" ", gap)+right)
}

// ring returns a circular glyph approximating p.
func ring(p float64) string {
	i := int(math.Round(min(max(p, 0), 1) * float64(len(ringGlyphs)-1)))
	return ringGlyphs[i]
}

func progressBar(p float64, cw int, pal palette) string {
	bar := progress.New(
		progress.WithSolidFill(pal.accent),
		progress.WithWidth(cw),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = theme.Blend(pal.bg, pal.fg, 0.3)
	return fit(bar.ViewAs(p), cw)
}

func (r *cardRenderer) body(n *model.Notification, cw, bodyH int, st *cardState, pal palette) []string {
	imgW := imageWidth(n, cw)
	textW := cw
	if imgW > 0 {
		textW = cw - imgW - 1
	}

	text := r.markdownLines(n.Message, textW, theme.IsDark(pal.bg))
	st.textScroll = min(max(st.textScroll, 0), max(len(text)-bodyH, 0))
	text = text[min(st.textScroll, len(text)):]

	var img []string
	if imgW > 0 {
		img = r.imageLines(n.Image.Bitmap, imgW, bodyH)
	}

	lines := make([]string, bodyH)
	for i := range bodyH {
		var b strings.Builder
		if imgW > 0 {
			b.WriteString(fit(at(img, i), imgW))
			b.WriteString(" ")
		}
		b.WriteString(fit(at(text, i), textW))
		lines[i] = b.String()
	}
	return lines
}

// imageWidth returns the columns the image takes in a card body of width cw.
func imageWidth(n *model.Notification, cw int) int {
	if n.Image != nil && n.Image.Bitmap != nil && cw >= 8 {
		return cw / 3
	}
	return 0
}

// markdownLines renders src with glamour, falling back to plain wrapping.
func (r *cardRenderer) markdownLines(src string, width int, dark bool) []string {
	if strings.TrimSpace(src) == "" || width <= 0 {
		return nil
	}
	key := markdownKey{src: src, width: width, dark: dark}
	if lines, ok := r.markdown[key]; ok {
		return lines
	}

	out := ansi.Wordwrap(src, width, "")
	if rendered, err := renderMarkdown(src, width, dark); err == nil {
		out = rendered
	}

	lines := strings.Split(strings.Trim(out, "\n"), "\n")
	if len(r.markdown) >= maxCacheSize {
		clear(r.markdown)
	}
	r.markdown[key] = lines
	return lines
}

func renderMarkdown(src string, width int, dark bool) (string, error) {
	style := glamourstyles.DarkStyleConfig
	if !dark {
		style = glamourstyles.LightStyleConfig
	}
	noMargin := uint(0)
	style.Document.Margin = &noMargin

	tr, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return tr.Render(src)
}

// imageLines draws img as half-block cells, two pixel rows per line.
func (r *cardRenderer) imageLines(img image.Image, w, h int) []string {
	key := imageKey{img: img, w: w, h: h}
	if lines, ok := r.images[key]; ok {
		return lines
	}

	scaled := media.Fit(img, w, h*2)
	b := scaled.Bounds()
	lines := make([]string, h)
	for row := range h {
		var sb strings.Builder
		for col := range w {
			top := hexAt(scaled, b.Min.X+col, b.Min.Y+row*2)
			bottom := hexAt(scaled, b.Min.X+col, b.Min.Y+row*2+1)
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀"))
		}
		lines[row] = sb.String()
	}

	if len(r.images) >= maxCacheSize {
		clear(r.images)
	}
	r.images[key] = lines
	return lines
}

func hexAt(img image.Image, x, y int) string {
	c, _ := colorful.MakeColor(img.At(x, y))
	return c.Hex()
}

// actionRow lays out Dismiss followed by one button per action, scrolled
// horizontally so the selected button is visible.
func actionRow(n *model.Notification, cw int, st *cardState, selected int, pal palette) (string, []button) {
	labels := append([]string{dismissLabel}, n.Actions...)

	normal := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(lipgloss.Color(pal.bg)).
		Background(lipgloss.Color(pal.accent))
	active := normal.Bold(true).Underline(true)
	gap := lipgloss.NewStyle().Background(lipgloss.Color(pal.bg)).Render(" ")

	var (
		row     strings.Builder
		buttons []button
		x       int
	)
	for i, label := range labels {
		if i > 0 {
			row.WriteString(gap)
			x++
		}
		style := normal
		if i == selected {
			style = active
		}
		rendered := style.Render(label)
		w := ansi.StringWidth(rendered)
		b := button{X0: x, X1: x + w}
		if i > 0 {
			b.Action = label
		}
		buttons = append(buttons, b)
		row.WriteString(rendered)
		x += w
	}

	st.actionScroll = scrollToShow(st.actionScroll, x, cw, buttons, selected)
	off := st.actionScroll

	visible := buttons[:0]
	for _, b := range buttons {
		b.X0, b.X1 = max(b.X0-off, 0), min(b.X1-off, cw)
		if b.X1 > b.X0 {
			visible = append(visible, b)
		}
	}
	return fit(ansi.Cut(row.String(), off, off+cw), cw), visible
}

// scrollToShow adjusts off so buttons[selected] lies within [off, off+cw).
func scrollToShow(off, total, cw int, buttons []button, selected int) int {
	if selected >= 0 && selected < len(buttons) {
		b := buttons[selected]
		if b.X1-off > cw {
			off = b.X1 - cw
		}
		if b.X0 < off {
			off = b.X0
		}
	}
	return min(max(off, 0), max(total-cw, 0))
}

// fit truncates or pads s to exactly w columns.
func fit(s string, w int) string {
	s = ansi.Truncate(s, w, "")
	if pad := w - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func at(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}
