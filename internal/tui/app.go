// Package tui implements the calciq interactive terminal app.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/calciq/internal/budget"
	"github.com/theirongolddev/calciq/internal/config"
	"github.com/theirongolddev/calciq/internal/game"
	"github.com/theirongolddev/calciq/internal/model"
	"github.com/theirongolddev/calciq/internal/tui/components"
	"github.com/theirongolddev/calciq/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Store is the persistence the app needs. A nil Store disables saving and
// the leaderboard.
type Store interface {
	SavePlan(ctx context.Context, name string, p *budget.Plan) (model.SavedPlan, error)
	RecordScore(ctx context.Context, e model.ScoreEntry) (model.ScoreEntry, error)
	TopScores(ctx context.Context, n int) ([]model.ScoreEntry, error)
	ScoreStats(ctx context.Context) (model.ScoreStats, error)
}

// Options configures NewApp.
type Options struct {
	Config    config.Config
	Store     Store
	Logger    *zap.Logger
	StartTab  int
	NeedSetup bool

	// Scheduler drives the game clock; nil uses real timers.
	Scheduler game.Scheduler
}

// App is the root bubbletea model.
type App struct {
	cfg config.Config
	st  Store
	log *zap.Logger

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	budget budgetState
	game   gameState
	scores scoresState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	engine  *game.Engine
	gameSub chan struct{} // engine change notifications, coalesced
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 140
	minContentHeight = 5

	storeTimeout = 5 * time.Second
)

// NewApp builds the app and its game engine.
func NewApp(opts Options) App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	theme.SetActive(opts.Config.Appearance.Theme)

	sub := make(chan struct{}, 1)
	engine := game.NewEngine(game.Options{
		Scheduler:    opts.Scheduler,
		ResolveDelay: opts.Config.Game.ResolveDelay(),
		Logger:       opts.Logger.Named("game"),
		OnChange: func() {
			select {
			case sub <- struct{}{}:
			default:
			}
		},
	})

	a := App{
		cfg:       opts.Config,
		st:        opts.Store,
		log:       opts.Logger,
		activeTab: opts.StartTab,
		needSetup: opts.NeedSetup,
		engine:    engine,
		gameSub:   sub,
		budget:    newBudgetState(),
	}
	a.game.snap = engine.Snapshot()
	a.recomputePlan()
	if a.needSetup {
		a.setupVals = NewSetupValues(a.cfg)
		a.setupForm = NewSetupForm(a.setupVals)
	}
	return a
}

// Engine exposes the game engine, mainly for tests.
func (a App) Engine() *game.Engine { return a.engine }

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		waitForGameMsg(a.gameSub),
		loadScoresCmd(a.st, a.cfg.Game.LeaderboardSize),
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.setupActive() {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			a.engine.Exit()
			return a, tea.Quit
		}

		// First-run setup intercepts all keys
		if a.setupActive() {
			return a.updateSetupForm(msg)
		}

		// Budget text input intercepts all keys while editing
		if a.activeTab == components.TabBudget && a.budget.mode != editNone {
			return a.updateBudgetInput(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch key {
		case "q":
			a.engine.Exit()
			return a, tea.Quit
		case "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			return a, nil
		case "shift+tab":
			a.activeTab = (a.activeTab + len(components.Tabs) - 1) % len(components.Tabs)
			return a, nil
		}
		if len(key) == 1 {
			if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
				a.activeTab = idx
				if idx == components.TabScores {
					return a, loadScoresCmd(a.st, a.cfg.Game.LeaderboardSize)
				}
				return a, nil
			}
		}

		switch a.activeTab {
		case components.TabBudget:
			return a.updateBudgetKeys(key)
		case components.TabGame:
			return a.updateGameKeys(key)
		case components.TabScores:
			if key == "r" {
				return a, loadScoresCmd(a.st, a.cfg.Game.LeaderboardSize)
			}
		}
		return a, nil

	case gameChangedMsg:
		return a.onGameChanged()

	case scoreRecordedMsg:
		if msg.err != nil {
			a.log.Warn("recording score", zap.Error(msg.err))
			a.game.notice = "score not saved: " + msg.err.Error()
			return a, nil
		}
		a.log.Debug("score recorded", zap.Int("score", msg.entry.Score), zap.Int("level", msg.entry.Level))
		return a, loadScoresCmd(a.st, a.cfg.Game.LeaderboardSize)

	case scoresLoadedMsg:
		a.scores.loaded = true
		a.scores.top = msg.top
		a.scores.stats = msg.stats
		a.scores.err = msg.err
		return a, nil

	case planSavedMsg:
		if msg.err != nil {
			a.log.Warn("saving plan", zap.Error(msg.err))
			a.budget.setNotice("save failed: "+msg.err.Error())
			return a, nil
		}
		a.budget.setNotice(fmt.Sprintf("saved %q as %s", msg.saved.Name, msg.saved.ShortID()))
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupActive() {
		return a.updateSetupForm(msg)
	}
	if a.budget.mode != editNone {
		var cmd tea.Cmd
		a.budget.input, cmd = a.budget.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) setupActive() bool {
	return a.needSetup && a.setupForm != nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := ApplySetup(&a.cfg, *a.setupVals); err != nil {
			a.budget.setNotice("setup: "+err.Error())
		} else if err := config.Save(a.cfg); err != nil {
			a.log.Warn("saving config", zap.Error(err))
			a.budget.setNotice("config not saved: "+err.Error())
		}
		theme.SetActive(a.cfg.Appearance.Theme)
		a.recomputePlan()
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == components.TabBudget && a.budget.mode == editNone {
			a.budget.moveCursor(-1)
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == components.TabBudget && a.budget.mode == editNone {
			a.budget.moveCursor(1)
		}
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return a, nil
		}
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.setupActive() {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(5, a.height)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  calciq needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, h), h)
}

type binding struct{ key, desc string }

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []binding
	}{
		{"Navigation", []binding{
			{"b g s", "Jump to tab"},
			{"tab S-tab", "Next / previous tab"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
		{"Budget", []binding{
			{"j k", "Select category"},
			{"Enter", "Edit amount"},
			{"w", "Save plan"},
			{"c", "Recompute from settings"},
			{"Esc", "Cancel edit"},
		}},
		{"Game", []binding{
			{"n", "New game"},
			{"arrows hjkl", "Move cursor"},
			{"Enter space", "Flip tile"},
			{"r", "Restart"},
			{"x", "Exit to setup"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-12s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderContextRow(w)

	var hints, notice string
	switch a.activeTab {
	case components.TabBudget:
		hints = "[j/k]select  [enter]edit  [w]save"
		notice = a.budget.notice
	case components.TabGame:
		hints = "[n]ew  [enter]flip  [r]estart  [x]exit"
		notice = a.game.notice
	case components.TabScores:
		hints = "[r]efresh"
	}
	statusBar := components.RenderStatusBar(w, hints, notice)

	contentH := max(minContentHeight, h-lipgloss.Height(header)-lipgloss.Height(statusBar))

	var content string
	switch a.activeTab {
	case components.TabBudget:
		content = a.renderBudgetTab(cw)
	case components.TabGame:
		content = a.renderGameTab(cw)
	case components.TabScores:
		content = a.renderScoresTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// renderContextRow shows the budget defaults in play under the tab bar.
func (a App) renderContextRow(w int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	parts := []string{
		a.cfg.Currency().Code,
		string(a.budgetInput().Lifestyle),
		fmt.Sprintf("%d member(s)", max(1, a.cfg.Budget.Members)),
	}
	if a.cfg.Budget.City != "" {
		parts = append(parts, a.cfg.Budget.City)
	}
	var b strings.Builder
	b.WriteString(dim.Render(" "))
	for i, p := range parts {
		if i > 0 {
			b.WriteString(dim.Render(" │ "))
		}
		b.WriteString(accent.Render(p))
	}
	return lipgloss.NewStyle().Background(t.Surface).Width(w).Render(b.String())
}

// ─── Commands ───────────────────────────────────────────────────

type gameChangedMsg struct{}

// waitForGameMsg blocks until the engine reports a change.
func waitForGameMsg(sub chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-sub
		return gameChangedMsg{}
	}
}

type scoresLoadedMsg struct {
	top   []model.ScoreEntry
	stats model.ScoreStats
	err   error
}

func loadScoresCmd(st Store, n int) tea.Cmd {
	if st == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		top, err := st.TopScores(ctx, n)
		if err != nil {
			return scoresLoadedMsg{err: err}
		}
		stats, err := st.ScoreStats(ctx)
		return scoresLoadedMsg{top: top, stats: stats, err: err}
	}
}

type scoreRecordedMsg struct {
	entry model.ScoreEntry
	err   error
}

func recordScoreCmd(st Store, e model.ScoreEntry) tea.Cmd {
	if st == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		saved, err := st.RecordScore(ctx, e)
		return scoreRecordedMsg{entry: saved, err: err}
	}
}

type planSavedMsg struct {
	saved model.SavedPlan
	err   error
}

func savePlanCmd(st Store, name string, p *budget.Plan) tea.Cmd {
	return func() tea.Msg {
		if st == nil {
			return planSavedMsg{err: errNoStore}
		}
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		saved, err := st.SavePlan(ctx, name, p)
		return planSavedMsg{saved: saved, err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads every line to w with bg so gaps between
// cards are painted.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab under column x, or -1. Hitboxes follow the widths
// RenderTabBar draws.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}
