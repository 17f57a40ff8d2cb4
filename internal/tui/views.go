package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/deptsays/internal/game"
	"github.com/verte-zerg/deptsays/internal/input"
	"github.com/verte-zerg/deptsays/internal/model"
)

const (
	cardWidth     = 22
	timerBarWidth = 30
	manGlyph      = "👨"
	womanGlyph    = "👩"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	hudStyle     = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder(), false, false, true, false).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardStyle = lipgloss.NewStyle().
			Width(cardWidth).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true)
	modalStyle = lipgloss.NewStyle().
			Padding(1, 3).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	doneArrowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	currentArrowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Underline(true)
	pendingArrowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

func (m *Model) renderFooter() string {
	return footerStyle.Render(m.help.ShortHelpView(m.helpBindings()))
}

func (m *Model) renderMenu() string {
	labels := map[menuItem]string{
		menuPlay:      "Play",
		menuVoiceTest: "Voice test",
		menuQuit:      "Quit",
	}
	lines := []string{titleStyle.Render("Department Says"), mutedStyle.Render("Repeat each department's sequence before the deadline."), ""}
	for i, item := range menuItems {
		lines = append(lines, cursorLine(i == m.menuCursor, labels[item]))
	}
	if m.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(m.errMsg))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderSelect() string {
	lines := []string{titleStyle.Render("Choose departments"), ""}
	nameWidth := 0
	for _, d := range m.catalog.All() {
		if w := displayWidth(d.Name); w > nameWidth {
			nameWidth = w
		}
	}
	for i, d := range m.catalog.All() {
		box := "[ ]"
		if m.selected[d.ID] {
			box = "[x]"
		}
		label := fmt.Sprintf("%s %s  %s", box, padRight(d.Name, nameWidth), people(d.Men, d.Women))
		lines = append(lines, cursorLine(i == m.selectCursor, label))
	}
	lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("%d selected", len(m.selectedIDs()))))
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderGame() string {
	snap := m.engine.Snapshot()
	hud := hudStyle.Render(fmt.Sprintf("Days %.2f    Score %d    Time %s", snap.DaysLeft, snap.Score, formatClock(snap.TimeLeft)))

	activeID := ""
	if snap.Active != nil {
		activeID = snap.Active.Department.ID
	}
	cards := make([]string, 0, len(snap.Departments))
	for _, d := range snap.Departments {
		cards = append(cards, renderCard(d, d.ID == activeID))
	}
	width := m.width
	if width > 0 {
		width = int(float64(width) * 0.9)
	}
	grid := flowCards(cards, width)

	var panel string
	switch {
	case m.confirmLeave:
		panel = modalStyle.Render(textStyle.Render("Return to the menu? This game will be lost.") + "\n\n" + mutedStyle.Render("[y] yes   [n] no"))
	case snap.Paused:
		panel = modalStyle.Render(titleStyle.Render("PAUSED") + "\n" + mutedStyle.Render("press p to resume"))
	case snap.Active != nil:
		panel = m.renderChallenge(*snap.Active)
	default:
		panel = mutedStyle.Render("Waiting for the next department...")
	}
	parts := []string{hud, "", grid, "", panel}
	if m.voicePath != "" {
		parts = append(parts, "", m.renderHeard())
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m *Model) renderChallenge(c game.Challenge) string {
	arrows := make([]string, len(c.Sequence))
	for i, d := range c.Sequence {
		style := pendingArrowStyle
		switch {
		case i < c.Step:
			style = doneArrowStyle
		case i == c.Step:
			style = currentArrowStyle
		}
		arrows[i] = style.Render(d.Arrow())
	}
	color := lipgloss.Color(c.Department.Color)
	title := lipgloss.NewStyle().Bold(true).Foreground(color).Render(c.Department.Name + " says:")
	body := strings.Join([]string{
		title,
		"",
		strings.Join(arrows, "  "),
		"",
		m.timer.ViewAs(c.Remaining(m.now())),
	}, "\n")
	return modalStyle.BorderForeground(color).Render(body)
}

func renderCard(d game.Department, active bool) string {
	style := cardStyle.BorderForeground(lipgloss.Color(d.Color))
	if active {
		style = style.Border(lipgloss.ThickBorder(), true)
	}
	status := fmt.Sprintf("%d/%d", d.Progress, d.Meta)
	if d.Met() {
		status = successStyle.Render(status + " ✓")
	}
	name := truncate(d.Name, cardWidth-2)
	return style.Render(strings.Join([]string{
		textStyle.Render(name),
		people(d.Men, d.Women),
		status,
	}, "\n"))
}

func (m *Model) renderEvaluation() string {
	if m.result == nil || m.result.Summary == nil {
		return ""
	}
	headline := successStyle.Render("Every department reached its goal!")
	if m.result.Outcome == game.OutcomeLost {
		if m.result.TimeLeft <= 0 {
			headline = errorStyle.Render("Time is up.")
		} else {
			headline = errorStyle.Render("The deadline passed.")
		}
	}
	grade := titleStyle.Render(fmt.Sprintf("Grade %.1f / 10", m.result.Summary.Grade))
	return modalStyle.Render(strings.Join([]string{
		headline,
		"",
		grade,
		"",
		mutedStyle.Render("enter: statistics"),
	}, "\n"))
}

func (m *Model) renderStats() string {
	if m.result == nil || m.result.Summary == nil {
		return ""
	}
	s := m.result.Summary
	lines := []string{
		titleStyle.Render("Statistics"),
		"",
		fmt.Sprintf("Time taken:   %s", formatClock(int(s.Elapsed.Seconds()))),
		fmt.Sprintf("Score:        %d", m.result.Score),
		fmt.Sprintf("Correct:      %d", s.TotalCorrect),
		fmt.Sprintf("Incorrect:    %d", s.TotalIncorrect),
		fmt.Sprintf("Completed:    %d/%d", s.Completed, len(m.result.Departments)),
		"",
		textStyle.Render("Top departments"),
	}
	lines = append(lines, renderTop(s.Top)...)
	if m.saveErr != "" {
		lines = append(lines, "", errorStyle.Render(m.saveErr))
	}
	return strings.Join(lines, "\n")
}

func renderTop(top []model.DepartmentRecord) []string {
	if len(top) == 0 {
		return []string{mutedStyle.Render("none")}
	}
	lines := make([]string, 0, len(top))
	for i, d := range top {
		lines = append(lines, fmt.Sprintf("%d. %s  %+d (%d correct, %d errors)", i+1, truncate(d.Name, 30), d.Corrects-d.Errors, d.Corrects, d.Errors))
	}
	return lines
}

func (m *Model) renderVoiceTest() string {
	lines := []string{
		titleStyle.Render("Voice test"),
		mutedStyle.Render("Listening on " + m.voicePath),
		"",
		m.renderHeard(),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHeard() string {
	if m.voiceNote != "" {
		return errorStyle.Render(m.voiceNote)
	}
	if m.lastHeard == nil {
		return mutedStyle.Render("Heard: nothing yet")
	}
	return fmt.Sprintf("Heard: %q -> %s", m.lastHeard.Text, describe(*m.lastHeard))
}

func describe(t input.Transcript) string {
	if !t.OK {
		return errorStyle.Render("not recognized")
	}
	if t.Command.Kind == model.CommandTogglePause {
		return successStyle.Render("pause")
	}
	return successStyle.Render(t.Command.Direction.Arrow() + " " + string(t.Command.Direction))
}

func cursorLine(selected bool, label string) string {
	if selected {
		return cursorStyle.Render("› ") + textStyle.Render(label)
	}
	return "  " + mutedStyle.Render(label)
}

func people(men, women int) string {
	return strings.Repeat(manGlyph, men) + strings.Repeat(womanGlyph, women)
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
