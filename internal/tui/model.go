// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/wireloop/internal/audio"
	"github.com/verte-zerg/wireloop/internal/engine"
	"github.com/verte-zerg/wireloop/internal/follow"
	"github.com/verte-zerg/wireloop/internal/levels"
	"github.com/verte-zerg/wireloop/internal/log"
	"github.com/verte-zerg/wireloop/internal/model"
	"github.com/verte-zerg/wireloop/internal/perf"
)

const (
	defaultFPS  = 60
	pathMargin  = 12.0
	chromeLines = 2
	pointerID   = 1
)

type screen int

const (
	screenMenu screen = iota
	screenPlaying
	screenResult
)

// AttemptStore persists finished attempts and reports per-level records.
type AttemptStore interface {
	InsertAttempt(ctx context.Context, a model.Attempt) (string, error)
	LevelAggregates(ctx context.Context, cfg model.StatsConfig) ([]model.LevelAggregate, error)
}

// Options configures the game UI.
type Options struct {
	Catalog *levels.Catalog
	Store   AttemptStore
	Cues    audio.Cues
	Logger  *log.Logger
	Touch   bool
	// FPS is the frame rate of the update loop.
	FPS int
	// Level starts straight into a level when positive.
	Level int
	Now   func() time.Time
}

type frameMsg time.Time

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	itemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	alertStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	winStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
)

// Model implements the Bubble Tea game UI.
type Model struct {
	catalog *levels.Catalog
	store   AttemptStore
	cues    audio.Cues
	logger  *log.Logger
	now     func() time.Time
	tick    time.Duration

	engine   *engine.Engine
	monitor  *perf.Monitor
	recorder engine.Recorder

	width  int
	height int
	tr     transform

	screen   screen
	selected int
	best     map[int]int64

	frame engine.Frame
	last  model.Attempt
}

// NewModel constructs the game UI.
func NewModel(opts Options) *Model {
	if opts.Catalog == nil {
		opts.Catalog = levels.Default()
	}
	if opts.Cues == nil {
		opts.Cues = audio.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FPS <= 0 {
		opts.FPS = defaultFPS
	}
	monitor := perf.NewMonitor()
	m := &Model{
		catalog: opts.Catalog,
		store:   opts.Store,
		cues:    opts.Cues,
		logger:  opts.Logger,
		now:     opts.Now,
		tick:    time.Second / time.Duration(opts.FPS),
		monitor: monitor,
		engine: engine.New(opts.Catalog, engine.Options{
			Logger:      opts.Logger,
			Device:      engine.StaticDevice{Touch: opts.Touch},
			Performance: monitor,
			Messages:    follow.NewMessages(nil),
		}),
	}
	m.loadBest()
	if opts.Level > 0 {
		m.startLevel(opts.Level)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.nextFrame()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refit()
		return m, nil
	case frameMsg:
		m.step(time.Time(msg))
		return m, m.nextFrame()
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.screen == screenMenu {
		return m.renderMenu()
	}
	body := renderScene(m.tr, scene{
		path:     m.engine.Path(),
		progress: m.frame.ProgressIndex,
		warning:  m.frame.State == follow.Warning,
		cursor:   m.frame.Cursor,
		pressed:  m.frame.Pressed,
		showPtr:  m.frame.HasCursor,
	})
	status := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderStatus())
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return body + "\n" + status + "\n" + footer
}

func (m *Model) nextFrame() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) step(now time.Time) {
	if m.screen == screenMenu {
		return
	}
	m.monitor.Tick(now)
	f := m.engine.Update(now)
	m.frame = f
	for _, ev := range f.Events {
		if cue := audio.CueFor(ev.Kind); cue != audio.CueNone {
			m.cues.Play(cue)
		}
	}
	if a, ok := m.recorder.Record(m.engine.Level(), m.engine.Device(), f); ok {
		m.finish(a)
	}
}

func (m *Model) finish(a model.Attempt) {
	m.last = a
	m.screen = screenResult
	if m.store == nil {
		return
	}
	if _, err := m.store.InsertAttempt(context.Background(), a); err != nil {
		m.logger.Errorf("tui: failed to save attempt: %v", err)
		return
	}
	m.loadBest()
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.screen != screenPlaying {
		return
	}
	p := m.tr.cellToWorld(msg.X, msg.Y)
	ev := engine.PointerEvent{X: p.X, Y: p.Y, PointerID: pointerID, Primary: true}
	now := m.now()
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.engine.PointerDown(now, ev)
		}
	case tea.MouseActionMotion:
		m.engine.PointerMove(now, ev)
	case tea.MouseActionRelease:
		m.engine.PointerUp(now, ev)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	key := msg.String()
	switch m.screen {
	case screenMenu:
		levelsList := m.catalog.All()
		switch key {
		case "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(levelsList)-1 {
				m.selected++
			}
		case "enter", " ":
			if m.selected < len(levelsList) {
				m.startLevel(levelsList[m.selected].ID)
			}
		default:
			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				n := int(key[0] - '0')
				for i, l := range levelsList {
					if l.ID == n {
						m.selected = i
						m.startLevel(n)
					}
				}
			}
		}
	case screenPlaying:
		switch key {
		case "q":
			return m, tea.Quit
		case "r":
			m.restart()
		case "esc", "m":
			m.toMenu()
		}
	case screenResult:
		switch key {
		case "q":
			return m, tea.Quit
		case "r", "enter", " ":
			m.restart()
		case "n":
			m.startLevel(m.nextLevel())
		case "esc", "m":
			m.toMenu()
		}
	}
	return m, nil
}

func (m *Model) startLevel(n int) {
	lvl := m.engine.StartLevel(n)
	for i, l := range m.catalog.All() {
		if l.ID == lvl.ID {
			m.selected = i
		}
	}
	m.screen = screenPlaying
	m.resetAttempt()
	m.refit()
}

func (m *Model) restart() {
	m.engine.ResetLevel()
	m.screen = screenPlaying
	m.resetAttempt()
}

func (m *Model) resetAttempt() {
	m.recorder.Reset()
	m.monitor.Reset()
	m.last = model.Attempt{}
	m.frame = m.engine.Update(m.now())
}

func (m *Model) toMenu() {
	m.engine.GoToMenu()
	m.recorder.Reset()
	m.frame = engine.Frame{}
	m.screen = screenMenu
}

func (m *Model) nextLevel() int {
	numbers := m.catalog.Numbers()
	current := m.engine.Level().ID
	for _, n := range numbers {
		if n > current {
			return n
		}
	}
	if len(numbers) > 0 {
		return numbers[0]
	}
	return current
}

func (m *Model) refit() {
	rows := m.height - chromeLines
	if rows < 1 {
		rows = 1
	}
	m.tr = fit(m.engine.Path(), pathMargin, m.width, rows)
}

func (m *Model) loadBest() {
	m.best = map[int]int64{}
	if m.store == nil {
		return
	}
	aggs, err := m.store.LevelAggregates(context.Background(), model.StatsConfig{})
	if err != nil {
		m.logger.Warnf("tui: failed to load level records: %v", err)
		return
	}
	for _, agg := range aggs {
		if agg.BestMs > 0 {
			m.best[agg.Level] = agg.BestMs
		}
	}
}

func (m *Model) renderMenu() string {
	lines := []string{titleStyle.Render("wireloop"), footerStyle.Render("Follow the wire from start to end without slipping off."), ""}
	nameWidth := 0
	for _, l := range m.catalog.All() {
		if w := runewidth.StringWidth(l.Name); w > nameWidth {
			nameWidth = w
		}
	}
	for i, l := range m.catalog.All() {
		best := "-"
		if ms, ok := m.best[l.ID]; ok {
			best = fmt.Sprintf("%.2fs", float64(ms)/1000)
		}
		row := fmt.Sprintf("%2d  %s  %-6s  best %s", l.ID, runewidth.FillRight(l.Name, nameWidth), l.Difficulty, best)
		if i == m.selected {
			lines = append(lines, selectedStyle.Render(menuGlyph+" "+row))
			continue
		}
		lines = append(lines, itemStyle.Render("  "+row))
	}
	lines = append(lines, "", footerStyle.Render("up/down: select  enter: play  q: quit"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}

func (m *Model) renderStatus() string {
	f := m.frame
	switch {
	case m.screen == screenResult && m.last.Outcome == model.OutcomeCompleted:
		return winStyle.Render(fmt.Sprintf("Completed in %.2fs!", float64(m.last.DurationMs)/1000)) +
			footerStyle.Render("  r: retry  n: next  m: menu")
	case m.screen == screenResult:
		text := f.Message
		if f.Reason != follow.ReasonNone {
			text = fmt.Sprintf("%s (%s)", text, f.Reason)
		}
		return alertStyle.Render(text) + footerStyle.Render("  r: retry  n: next  m: menu")
	case f.State == follow.Warning:
		return alertStyle.Render(fmt.Sprintf("Back on the wire! %.1fs", f.WarningRemaining.Seconds()))
	case f.State == follow.PreGame:
		return footerStyle.Render(fmt.Sprintf("Hold the mouse button on %s to start", startGlyph))
	}
	return ""
}

func (m *Model) renderFooter() string {
	lvl := m.engine.Level()
	if lvl.ID == 0 {
		return ""
	}
	snap := m.frame.Snapshot
	segments := []string{
		fmt.Sprintf("L%d %s", lvl.ID, lvl.Name),
		fmt.Sprintf("%.1fs", snap.ElapsedSeconds),
		fmt.Sprintf("Progress %d%%", int(snap.ProgressFraction*100)),
	}
	if ms, ok := m.best[lvl.ID]; ok {
		segments = append(segments, fmt.Sprintf("Best %.2fs", float64(ms)/1000))
	}
	if fps := m.monitor.FPS(); fps > 0 {
		segments = append(segments, fmt.Sprintf("%.0f fps", fps))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
