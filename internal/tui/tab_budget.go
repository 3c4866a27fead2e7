package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/calciq/internal/budget"
	"github.com/theirongolddev/calciq/internal/cli"
	"github.com/theirongolddev/calciq/internal/tui/components"
	"github.com/theirongolddev/calciq/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errNoStore = errors.New("no database available")

type editMode int

const (
	editNone editMode = iota
	editAmount
	editName
)

// budgetState tracks the budget tab.
type budgetState struct {
	plan   *budget.Plan
	err    error // allocation error, e.g. income too low
	cursor int
	mode   editMode
	input  textinput.Model
	notice string
}

func newBudgetState() budgetState {
	return budgetState{input: textinput.New()}
}

func (s *budgetState) moveCursor(delta int) {
	s.cursor = min(len(budget.AllCategories)-1, max(0, s.cursor+delta))
}

func (s *budgetState) setNotice(msg string) {
	s.notice = msg
}

func (s budgetState) selected() budget.Category {
	return budget.AllCategories[s.cursor]
}

func (a App) budgetInput() budget.Input {
	return a.cfg.Budget.Input()
}

// recomputePlan re-runs allocation from the configured defaults, dropping
// any manual edits.
func (a *App) recomputePlan() {
	a.budget.plan, a.budget.err = budget.ComputePlan(a.budgetInput())
}

func (a App) updateBudgetKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		a.budget.moveCursor(1)
	case "k", "up":
		a.budget.moveCursor(-1)
	case "c":
		a.recomputePlan()
		a.budget.setNotice("recomputed from settings")
	case "enter":
		if a.budget.plan == nil {
			return a, nil
		}
		ti := textinput.New()
		ti.CharLimit = 15
		ti.Width = 14
		ti.Prompt = ""
		ti.SetValue(strconv.FormatInt(a.budget.plan.Value(a.budget.selected()), 10))
		ti.CursorEnd()
		ti.Focus()
		a.budget.input = ti
		a.budget.mode = editAmount
		return a, textinput.Blink
	case "w":
		if a.budget.plan == nil {
			return a, nil
		}
		ti := textinput.New()
		ti.CharLimit = 60
		ti.Width = 40
		ti.Prompt = "name: "
		ti.SetValue(defaultPlanName(a.budget.plan, time.Now()))
		ti.CursorEnd()
		ti.Focus()
		a.budget.input = ti
		a.budget.mode = editName
		return a, textinput.Blink
	}
	return a, nil
}

func (a App) updateBudgetInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.budget.mode = editNone
		return a, nil
	case "enter":
		mode := a.budget.mode
		a.budget.mode = editNone
		val := a.budget.input.Value()
		switch mode {
		case editAmount:
			c := a.budget.selected()
			budget.UpdateField(a.budget.plan, c, val)
			a.budget.setNotice(fmt.Sprintf("%s set to %s", c.Label(),
				cli.FormatMoney(float64(a.budget.plan.Value(c)), a.cfg.Currency())))
			return a, nil
		case editName:
			snapshot := *a.budget.plan
			return a, savePlanCmd(a.st, strings.TrimSpace(val), &snapshot)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.budget.input, cmd = a.budget.input.Update(msg)
	return a, cmd
}

func defaultPlanName(p *budget.Plan, now time.Time) string {
	name := string(p.Lifestyle)
	if p.City != "" {
		name = p.City + " " + name
	}
	return name + " " + now.Format("2006-01-02")
}

func (a App) renderBudgetTab(cw int) string {
	t := theme.Active
	cur := a.cfg.Currency()

	if a.budget.plan == nil {
		warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		msg := "no plan"
		if a.budget.err != nil {
			msg = a.budget.err.Error()
		}
		body := warn.Render(msg) + "\n" +
			muted.Render(fmt.Sprintf("Monthly income must be between %s and %s. Run `calciq setup` to change it.",
				cli.FormatMoney(budget.MinIncome, cur), cli.FormatMoney(budget.MaxAmount, cur)))
		return components.ContentCard("Budget", body, cw)
	}

	p := a.budget.plan
	needs, wants, save := p.Shares()

	saveColor := t.Save
	saveNote := cli.FormatPercent(save)
	if p.TotalSave < 0 {
		saveColor = t.Red
		saveNote = "short " + cli.FormatMoney(-p.TotalSave, cur)
	}
	metrics := components.MetricCardRow([]components.Metric{
		{Label: "Income", Value: cli.FormatMoney(p.Income, cur), Note: fmt.Sprintf("%d member(s)", p.Members)},
		{Label: "Needs", Value: cli.FormatMoney(float64(p.TotalNeeds), cur), Note: cli.FormatPercent(needs), Color: t.Needs},
		{Label: "Wants", Value: cli.FormatMoney(float64(p.TotalWants), cur), Note: cli.FormatPercent(wants), Color: t.Wants},
		{Label: "Savings", Value: cli.FormatMoney(p.DisplaySave(), cur), Note: saveNote, Color: saveColor},
	}, cw)

	inner := components.CardInnerWidth(cw)
	legend := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	allocation := components.ContentCard("Allocation",
		cli.RenderShareBar(needs, wants, save, inner)+"\n"+
			legend.Render("needs · wants · savings"), cw)

	breakdown := components.ContentCard("Breakdown", a.renderBudgetRows(inner), cw)

	reason := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background).
		Render(" " + p.Reasoning)

	return lipgloss.JoinVertical(lipgloss.Left, metrics, allocation, breakdown, reason)
}

func (a App) renderBudgetRows(width int) string {
	t := theme.Active
	cur := a.cfg.Currency()
	p := a.budget.plan

	const labelW, amountW, groupW = 12, 14, 6
	barW := max(4, width-2-labelW-amountW-groupW-3)

	var peak int64
	for _, cv := range p.Categories() {
		peak = max(peak, cv.Amount)
	}

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var rows []string
	for i, cv := range p.Categories() {
		group, color := "want", t.Wants
		if cv.Category.IsNeed() {
			group, color = "need", t.Needs
		}

		style, marker := rowStyle, "  "
		if i == a.budget.cursor {
			style, marker = selStyle, "▸ "
		}

		amount := fmt.Sprintf("%*s", amountW, cli.FormatMoney(float64(cv.Amount), cur))
		if i == a.budget.cursor && a.budget.mode == editAmount {
			amount = lipgloss.NewStyle().Width(amountW).Render(a.budget.input.View())
		}

		bar := cli.RenderHorizontalBar(float64(cv.Amount), float64(peak), barW, color)
		bar = lipgloss.NewStyle().Width(barW).Background(t.Surface).Render(bar)

		rows = append(rows,
			style.Render(marker+fmt.Sprintf("%-*s", labelW, cv.Category.Label())+amount)+
				dim.Render(" ")+bar+dim.Render(" ")+
				dim.Render(fmt.Sprintf("%-*s", groupW, group)))
	}

	if a.budget.mode == editName {
		rows = append(rows, "", a.budget.input.View())
	}
	return strings.Join(rows, "\n")
}
