package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/notifarea/internal/config"
	"github.com/jmylchreest/notifarea/internal/daemon"
	"github.com/jmylchreest/notifarea/internal/model"
	"github.com/jmylchreest/notifarea/internal/overlay"
	"github.com/jmylchreest/notifarea/internal/scheduler"
	"github.com/jmylchreest/notifarea/internal/store"
)

func TestComposite(t *testing.T) {
	base := "abcdefgh\nijklmnop\nqrstuvwx"

	out := composite(base, []string{"XY", "", "Z"}, 2, 0, 8, 4)
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "abXYefgh", lines[0])
	assert.Equal(t, "ijklmnop", lines[1], "empty layer lines are transparent")
	assert.Equal(t, "qrZtuvwx", lines[2])
	assert.Equal(t, "", lines[3])
}

func TestComposite_PadsShortLinesAndClips(t *testing.T) {
	out := composite("ab", []string{"12345"}, 4, 0, 6, 1)
	assert.Equal(t, "ab  12", out)

	out = composite("abc", []string{"1"}, 0, 5, 3, 2)
	assert.Equal(t, "abc\n", out, "rows outside the screen are dropped")
}

func TestRing(t *testing.T) {
	assert.Equal(t, "○", ring(0))
	assert.Equal(t, "◑", ring(0.5))
	assert.Equal(t, "●", ring(1))
	assert.Equal(t, "●", ring(3))
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab  ", fit("ab", 4))
	assert.Equal(t, "abcd", fit("abcdef", 4))
}

func shownItem(n *model.Notification, height int) overlay.Item {
	return overlay.Item{Record: n, Phase: overlay.PhaseShown, Amount: 1, Height: height}
}

func plain(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = ansi.Strip(l)
	}
	return out
}

func TestCard_Layout(t *testing.T) {
	r := newCardRenderer("#000000")
	n := model.New("a", "Build finished", "all green", model.WithActions(nil, "open", "retry"))

	view := r.render(shownItem(n, 9), 40, 9, &cardState{}, -1)
	lines := plain(view.Lines)

	require.Len(t, lines, 9)
	for _, l := range lines {
		assert.Equal(t, 40, ansi.StringWidth(l))
	}
	assert.Contains(t, lines[1], "Build finished")
	assert.Contains(t, strings.Join(lines, "\n"), "all green")
	assert.Contains(t, lines[7], "Dismiss")

	require.Len(t, view.Buttons, 3)
	assert.True(t, view.Buttons[0].Dismiss())
	assert.Equal(t, "open", view.Buttons[1].Action)
	assert.Equal(t, "retry", view.Buttons[2].Action)
	for _, b := range view.Buttons {
		assert.Equal(t, 7, b.Row)
		label := "Dismiss"
		if !b.Dismiss() {
			label = b.Action
		}
		assert.Contains(t, string([]rune(lines[7])[b.X0:b.X1]), label)
	}
}

func TestCard_TitleEllipsis(t *testing.T) {
	r := newCardRenderer("#000000")
	n := model.New("a", strings.Repeat("long title ", 10), "")

	lines := plain(r.render(shownItem(n, 9), 30, 9, &cardState{}, -1).Lines)
	assert.Contains(t, lines[1], "…")
	assert.Equal(t, 30, ansi.StringWidth(lines[1]))
}

func TestCard_Progress(t *testing.T) {
	r := newCardRenderer("#000000")
	n := model.New("a", "Copying", "", model.WithProgressValue(0.42))

	lines := plain(r.render(shownItem(n, 9), 40, 9, &cardState{}, -1).Lines)
	assert.Contains(t, lines[1], "42%")
	assert.Contains(t, lines[1], "◑")
}

func TestCard_CollapsesWhileExiting(t *testing.T) {
	r := newCardRenderer("#000000")
	n := model.New("a", "Bye", "", model.WithActions(nil, "x"))
	n.Visible = false

	item := overlay.Item{Record: n, Phase: overlay.PhaseExiting, Amount: 0.4, Height: 4}
	view := r.render(item, 40, 9, &cardState{}, -1)

	assert.Len(t, view.Lines, 4)
	assert.Empty(t, view.Buttons, "the action row is cut off")
}

func TestCard_ImageTakesAThird(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	r := newCardRenderer("#000000")
	n := model.New("a", "Pic", "text", model.WithImage(&model.Image{Bitmap: img}))

	lines := plain(r.render(shownItem(n, 9), 40, 9, &cardState{}, -1).Lines)
	body := lines[2]
	// border, padding, then 12 image columns
	assert.Equal(t, strings.Repeat("▀", 12), body[len("│ "):len("│ ")+len(strings.Repeat("▀", 12))])
	assert.Contains(t, body, "text")
}

func TestActionRow_ScrollsToSelection(t *testing.T) {
	n := model.New("a", "t", "", model.WithActions(nil, "first", "second", "third", "fourth"))
	st := &cardState{}
	pal := palette{bg: "#000000", accent: "#ffffff", fg: "#ffffff"}

	row, buttons := actionRow(n, 20, st, 0, pal)
	assert.Equal(t, 0, st.actionScroll)
	assert.Contains(t, ansi.Strip(row), "Dismiss")
	for _, b := range buttons {
		assert.LessOrEqual(t, b.X1, 20)
	}

	row, buttons = actionRow(n, 20, st, 4, pal)
	assert.Positive(t, st.actionScroll)
	assert.Contains(t, ansi.Strip(row), "fourth")
	last := buttons[len(buttons)-1]
	assert.Equal(t, "fourth", last.Action)
	assert.Equal(t, 20, ansi.StringWidth(row))
}

func testFrame(records ...*model.Notification) overlay.Frame {
	f := overlay.Frame{Geometry: overlay.Geometry{X: 2, Y: 1, Width: 40}}
	y := 0
	for _, n := range records {
		f.Items = append(f.Items, overlay.Item{Record: n, Phase: overlay.PhaseShown, Amount: 1, Y: y, Height: 9})
		y += 10
	}
	f.Geometry.Height = y
	f.Geometry.Target = y
	return f
}

func TestOverlayRenderer_HitTesting(t *testing.T) {
	o := newOverlayRenderer("#000000", 9)
	a := model.New("a", "A", "", model.WithActions(nil, "open"))
	b := model.New("b", "B", "")
	o.Render(testFrame(a, b))

	lines, x, y := o.Layer()
	assert.Len(t, lines, 20)
	assert.Equal(t, 2, x)
	assert.Equal(t, 1, y)
	assert.Empty(t, lines[9], "spacing rows are transparent")

	// Action row of card a: overlay y 1 + card row 7.
	hit, ok := o.Hit(2+3, 8)
	require.True(t, ok)
	assert.Equal(t, model.ID("a"), hit.ID)
	assert.True(t, hit.Dismiss())

	var openX int
	for _, tg := range o.targets {
		if tg.Action == "open" {
			openX = tg.X0
		}
	}
	hit, ok = o.Hit(openX, 8)
	require.True(t, ok)
	assert.Equal(t, "open", hit.Action)

	hit, ok = o.Hit(2+3, 18)
	require.True(t, ok)
	assert.Equal(t, model.ID("b"), hit.ID)

	_, ok = o.Hit(0, 0)
	assert.False(t, ok)

	assert.True(t, o.Contains(10, 3))
	assert.True(t, o.Contains(10, 10), "spacing rows belong to the overlay")
	assert.False(t, o.Contains(10, 21))
	assert.False(t, o.Contains(0, 3))
}

func TestOverlayRenderer_ScrollOffset(t *testing.T) {
	o := newOverlayRenderer("#000000", 9)
	f := testFrame(model.New("a", "A", ""), model.New("b", "B", ""), model.New("c", "C", ""))
	f.Geometry.Height = 15
	f.ScrollY = 10
	o.Render(f)

	lines, _, _ := o.Layer()
	require.Len(t, lines, 15)
	assert.Contains(t, ansi.Strip(lines[1]), "B", "second card starts at the top")
	assert.Empty(t, lines[9])
	assert.Contains(t, ansi.Strip(lines[11]), "C")

	hit, ok := o.Hit(2+3, 1+7)
	require.True(t, ok)
	assert.Equal(t, model.ID("b"), hit.ID)
	for _, tg := range o.targets {
		assert.NotEqual(t, model.ID("a"), tg.ID, "scrolled-off card has no targets")
	}
}

func TestOverlayRenderer_ClipsToAnimatedHeight(t *testing.T) {
	o := newOverlayRenderer("#000000", 9)
	f := testFrame(model.New("a", "A", ""))
	f.Geometry.Height = 4
	o.Render(f)

	lines, _, _ := o.Layer()
	assert.Len(t, lines, 4)
	assert.Empty(t, o.targets)
}

func TestOverlayRenderer_Focus(t *testing.T) {
	o := newOverlayRenderer("#000000", 9)
	assert.False(t, o.SetFocused(true), "nothing to focus")

	a := model.New("a", "A", "", model.WithActions(nil, "one", "two"))
	b := model.New("b", "B", "")
	o.Render(testFrame(a, b))
	require.True(t, o.SetFocused(true))

	id, action, ok := o.Selection()
	require.True(t, ok)
	assert.Equal(t, model.ID("a"), id)
	assert.Empty(t, action)

	o.MoveButton(1)
	o.MoveButton(1)
	o.MoveButton(1)
	_, action, _ = o.Selection()
	assert.Equal(t, "two", action)

	o.MoveCard(1)
	id, action, _ = o.Selection()
	assert.Equal(t, model.ID("b"), id)
	assert.Empty(t, action)

	hidden := b.Clone()
	hidden.Visible = false
	o.Render(testFrame(a, hidden))
	id, _, _ = o.Selection()
	assert.Equal(t, model.ID("a"), id, "focus moves off hidden cards")

	o.Render(overlay.Frame{})
	assert.False(t, o.Focused())
}

func newTestModel(t *testing.T) (Model, *daemon.Center) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.TUI.Overlay.Animation = 0

	center := daemon.NewCenter(store.NewStore(), scheduler.Inline,
		daemon.WithClock(scheduler.NewManualClock(time.Unix(0, 0))))
	t.Cleanup(center.Close)

	m := New(Options{Config: cfg, Center: center})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), center
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestModel_RendersOverlayAndDismissesByClick(t *testing.T) {
	m, center := newTestModel(t)
	center.Show(model.New("a", "Deploy done", "prod is live"))
	m = update(t, m, refreshMsg{})

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Deploy done")
	assert.Contains(t, view, "Dismiss")

	var dismiss target
	for _, tg := range m.layer.targets {
		if tg.Dismiss() {
			dismiss = tg
		}
	}
	require.NotZero(t, dismiss.X1)

	m = update(t, m, tea.MouseMsg{
		X: dismiss.X0, Y: dismiss.Row,
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft,
	})
	assert.False(t, center.Store().IsVisible("a"))

	m = update(t, m, refreshMsg{})
	assert.Empty(t, m.layer.targets)
	assert.Len(t, m.history.Items(), 1, "hidden records stay in history")
}

func TestModel_ActionClickInvokesCallback(t *testing.T) {
	m, center := newTestModel(t)
	var got []string
	center.Show(model.New("a", "Choose", "", model.WithActions(func(l string) { got = append(got, l) }, "yes")))
	m = update(t, m, refreshMsg{})

	var yes target
	for _, tg := range m.layer.targets {
		if tg.Action == "yes" {
			yes = tg
		}
	}
	m = update(t, m, tea.MouseMsg{X: yes.X0, Y: yes.Row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})

	assert.Equal(t, []string{"yes"}, got)
	assert.True(t, center.Store().IsVisible("a"), "actions never hide")
}

func TestModel_DismissNewest(t *testing.T) {
	m, center := newTestModel(t)
	center.Show(model.New("a", "A", ""))
	center.Show(model.New("b", "B", ""))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.True(t, center.Store().IsVisible("a"))
	assert.False(t, center.Store().IsVisible("b"))
	_ = m
}

func TestModel_HistoryHideAndReshow(t *testing.T) {
	m, center := newTestModel(t)
	center.Show(model.New("a", "A", ""))
	m = update(t, m, refreshMsg{})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.Equal(t, FocusHistory, m.focus)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	assert.False(t, center.Store().IsVisible("a"))
	assert.False(t, center.Scheduler().Armed("a"))

	m = update(t, m, refreshMsg{})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.True(t, center.Store().IsVisible("a"))
	assert.True(t, center.Scheduler().Armed("a"))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.detail)
	assert.Contains(t, ansi.Strip(m.View()), "id: a")
}

func TestModel_OverlayKeyboard(t *testing.T) {
	m, center := newTestModel(t)
	var got []string
	center.Show(model.New("a", "A", "", model.WithActions(func(l string) { got = append(got, l) }, "go")))
	m = update(t, m, refreshMsg{})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.Equal(t, FocusOverlay, m.focus)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"go"}, got)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, center.Store().IsVisible("a"))

	m = update(t, m, refreshMsg{})
	assert.Equal(t, FocusForm, m.focus, "focus falls back when the overlay empties")
}

func TestModel_OverlayScrollsToOverflowingCards(t *testing.T) {
	m, center := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 31})
	for i := range 5 {
		center.Show(model.New(model.ID(fmt.Sprint(i)), fmt.Sprintf("Card %d", i), ""))
	}
	m = update(t, m, refreshMsg{})

	f := m.layer.Frame()
	assert.Equal(t, 29, f.Geometry.Height)
	assert.Equal(t, 50, f.ContentHeight)
	layer := func() string {
		lines, _, _ := m.layer.Layer()
		return strings.Join(plain(lines), "\n")
	}
	assert.NotContains(t, layer(), "Card 3")
	assert.NotContains(t, layer(), "Card 4")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.Equal(t, FocusOverlay, m.focus)
	for range 4 {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	id, _, ok := m.layer.Selection()
	require.True(t, ok)
	assert.Equal(t, model.ID("4"), id)
	assert.Equal(t, 20, m.layer.Frame().ScrollY)
	assert.Contains(t, layer(), "Card 3")
	assert.Contains(t, layer(), "Card 4")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, center.Store().IsVisible("4"), "dismissed the card in view")

	_, x, y := m.layer.Layer()
	m = update(t, m, tea.MouseMsg{X: x + 1, Y: y + 9, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.Equal(t, 20-overlayScrollStep, m.layer.Frame().ScrollY)
}

func TestModel_DispatchRunsOnUpdate(t *testing.T) {
	m, _ := newTestModel(t)
	ran := false
	m = update(t, m, dispatchMsg{fn: func() { ran = true }})
	assert.True(t, ran)
}

func TestModel_ConfigReload(t *testing.T) {
	m, center := newTestModel(t)
	center.Show(model.New("a", "A", ""))

	cfg := config.DefaultConfig()
	cfg.TUI.Overlay.Animation = 0
	cfg.TUI.Overlay.Width = 30
	cfg.TUI.Overlay.OffsetX = 5
	m = update(t, m, configReloadedMsg{cfg: cfg})

	_, x, _ := m.layer.Layer()
	assert.Equal(t, 5, x)
	assert.Equal(t, 30, m.engine.Config().Width)
}
