// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/deptsays/internal/catalog"
	"github.com/verte-zerg/deptsays/internal/game"
	"github.com/verte-zerg/deptsays/internal/generator"
	"github.com/verte-zerg/deptsays/internal/input"
	"github.com/verte-zerg/deptsays/internal/model"
	"github.com/verte-zerg/deptsays/internal/store"
)

type screen int

const (
	screenMenu screen = iota
	screenSelect
	screenGame
	screenEvaluation
	screenStats
	screenVoiceTest
)

type menuItem int

const (
	menuPlay menuItem = iota
	menuVoiceTest
	menuQuit
)

var menuItems = []menuItem{menuPlay, menuVoiceTest, menuQuit}

const saveTimeout = 5 * time.Second

// Options configures a Model.
type Options struct {
	Config    model.Config
	Catalog   *catalog.Catalog
	Generator *generator.Generator
	// Store receives one record per finished game. Nil disables history.
	Store *store.Store
	// VoicePath is a file or FIFO carrying recognized speech, one line per
	// utterance. Empty disables voice input.
	VoicePath string
	Now       func() time.Time
}

// Model implements the Bubble Tea game UI.
type Model struct {
	engine    *game.Engine
	sched     *teaScheduler
	catalog   *catalog.Catalog
	store     *store.Store
	voicePath string
	now       func() time.Time

	width  int
	height int

	screen       screen
	menuCursor   int
	selectCursor int
	selected     map[string]bool
	lastPicked   []string
	errMsg       string

	confirmLeave     bool
	pausedForConfirm bool
	frameGen         int

	voiceCh     <-chan input.Transcript
	voiceCancel context.CancelFunc
	lastHeard   *input.Transcript
	voiceNote   string

	result  *game.Snapshot
	saveErr string

	help  help.Model
	timer progress.Model
}

// NewModel constructs the game TUI model.
func NewModel(opts Options) *Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	gen := opts.Generator
	if gen == nil {
		gen = generator.New()
	}
	selected := make(map[string]bool, cat.Len())
	for _, id := range cat.IDs() {
		selected[id] = true
	}
	sched := newTeaScheduler()
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = timerBarWidth
	return &Model{
		engine:    game.NewEngine(opts.Config, cat, gen, sched, game.WithClock(now)),
		sched:     sched,
		catalog:   cat,
		store:     opts.Store,
		voicePath: opts.VoicePath,
		now:       now,
		selected:  selected,
		help:      help.New(),
		timer:     bar,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case timerMsg:
		m.engine.Fire(game.Timer(msg))
		return m, m.afterEngine()
	case frameMsg:
		if msg.gen != m.frameGen || m.screen != screenGame {
			return m, nil
		}
		return m, frameCmd(m.frameGen)
	case transcriptMsg:
		if msg.ch != m.voiceCh {
			return m, nil
		}
		heard := msg.t
		if heard.Err != nil {
			log.Printf("voice source failed: %v", heard.Err)
			m.voiceNote = "Voice source failed: " + heard.Err.Error()
			return m, waitForTranscript(m.voiceCh)
		}
		m.lastHeard = &heard
		var cmd tea.Cmd
		if m.screen == screenGame && !m.confirmLeave && heard.OK {
			m.engine.HandleCommand(heard.Command)
			cmd = m.afterEngine()
		}
		return m, tea.Batch(cmd, waitForTranscript(m.voiceCh))
	case voiceClosedMsg:
		if msg.ch == m.voiceCh {
			m.stopVoice()
			if m.voiceNote == "" {
				m.voiceNote = "Voice source closed."
			}
		}
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.stopVoice()
			return m, tea.Quit
		}
		switch m.screen {
		case screenMenu:
			return m.updateMenu(msg)
		case screenSelect:
			return m.updateSelect(msg)
		case screenGame:
			return m.updateGame(msg)
		case screenEvaluation:
			if key.Matches(msg, keys.Enter) {
				m.screen = screenStats
			}
			return m, nil
		case screenStats:
			return m.updateStats(msg)
		case screenVoiceTest:
			if key.Matches(msg, keys.Back) {
				m.stopVoice()
				m.screen = screenMenu
			}
			return m, nil
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.screen {
	case screenMenu:
		content = m.renderMenu()
	case screenSelect:
		content = m.renderSelect()
	case screenGame:
		content = m.renderGame()
	case screenEvaluation:
		content = m.renderEvaluation()
	case screenStats:
		content = m.renderStats()
	case screenVoiceTest:
		content = m.renderVoiceTest()
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		m.menuCursor = (m.menuCursor + len(menuItems) - 1) % len(menuItems)
	case key.Matches(msg, keys.Down):
		m.menuCursor = (m.menuCursor + 1) % len(menuItems)
	case key.Matches(msg, keys.Enter):
		m.errMsg = ""
		switch menuItems[m.menuCursor] {
		case menuPlay:
			m.screen = screenSelect
		case menuVoiceTest:
			if m.voicePath == "" {
				m.errMsg = "No voice source configured. Use --voice or DEPTSAYS_VOICE."
				return m, nil
			}
			m.lastHeard = nil
			m.startVoice()
			m.screen = screenVoiceTest
			return m, waitForTranscript(m.voiceCh)
		case menuQuit:
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ids := m.catalog.IDs()
	switch {
	case key.Matches(msg, keys.Up):
		if m.selectCursor > 0 {
			m.selectCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.selectCursor < len(ids)-1 {
			m.selectCursor++
		}
	case key.Matches(msg, keys.Toggle):
		id := ids[m.selectCursor]
		m.selected[id] = !m.selected[id]
	case key.Matches(msg, keys.SelectAll):
		for _, id := range ids {
			m.selected[id] = true
		}
	case key.Matches(msg, keys.Clear):
		m.selected = map[string]bool{}
	case key.Matches(msg, keys.Back):
		m.errMsg = ""
		m.screen = screenMenu
	case key.Matches(msg, keys.Enter):
		return m, m.startGame(m.selectedIDs())
	}
	return m, nil
}

func (m *Model) updateGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmLeave {
		switch {
		case key.Matches(msg, keys.Yes):
			m.leaveGame()
		case key.Matches(msg, keys.No):
			m.confirmLeave = false
			if m.pausedForConfirm {
				m.pausedForConfirm = false
				m.engine.SetPaused(false)
			}
			return m, m.afterEngine()
		}
		return m, nil
	}
	if key.Matches(msg, keys.Back) {
		m.confirmLeave = true
		if !m.engine.Snapshot().Paused {
			m.engine.SetPaused(true)
			m.pausedForConfirm = true
		}
		return m, m.afterEngine()
	}
	if cmd, ok := input.FromKey(msg.String()); ok {
		m.engine.HandleCommand(cmd)
		return m, m.afterEngine()
	}
	return m, nil
}

func (m *Model) updateStats(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Replay):
		return m, m.startGame(m.lastPicked)
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Back):
		m.engine.Reset()
		m.screen = screenMenu
	}
	return m, nil
}

func (m *Model) startGame(ids []string) tea.Cmd {
	if err := m.engine.Start(ids); err != nil {
		if errors.Is(err, game.ErrInvalidSelection) {
			m.errMsg = "Select at least one department."
		} else {
			m.errMsg = err.Error()
		}
		return nil
	}
	m.errMsg = ""
	m.lastPicked = append([]string(nil), ids...)
	m.result = nil
	m.saveErr = ""
	m.confirmLeave = false
	m.pausedForConfirm = false
	m.lastHeard = nil
	m.screen = screenGame
	m.startVoice()
	m.frameGen++
	return tea.Batch(m.afterEngine(), frameCmd(m.frameGen), waitForTranscript(m.voiceCh))
}

func (m *Model) leaveGame() {
	m.engine.Reset()
	m.stopVoice()
	m.confirmLeave = false
	m.pausedForConfirm = false
	m.frameGen++
	m.screen = screenMenu
}

// afterEngine reacts to drained engine events and returns the timer commands
// armed since the previous call.
func (m *Model) afterEngine() tea.Cmd {
	for _, ev := range m.engine.Events() {
		switch ev.Kind {
		case game.EventSessionStarted:
			log.Printf("session %s started", m.engine.Snapshot().SessionID)
		case game.EventChallengeFailed:
			log.Printf("challenge failed: dept=%s step=%d timeout=%t", ev.Department, ev.Step, ev.Timeout)
		case game.EventSessionEnded:
			m.finishGame()
		}
	}
	return m.sched.drain()
}

func (m *Model) finishGame() {
	snap := m.engine.Snapshot()
	m.result = &snap
	m.stopVoice()
	m.confirmLeave = false
	m.pausedForConfirm = false
	m.frameGen++
	m.screen = screenEvaluation
	if snap.Summary != nil {
		log.Printf("session %s ended: %s score=%d grade=%.1f", snap.SessionID, snap.Outcome, snap.Score, snap.Summary.Grade)
	}
	m.saveRecord()
}

func (m *Model) saveRecord() {
	if m.store == nil {
		return
	}
	rec, depts, ok := m.engine.Record()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := m.store.InsertGame(ctx, rec, depts); err != nil {
		m.saveErr = "History not saved: " + err.Error()
		log.Printf("failed to save game %s: %v", rec.ID, err)
	}
}

func (m *Model) startVoice() {
	if m.voicePath == "" {
		return
	}
	m.stopVoice()
	m.voiceNote = ""
	m.voiceCh, m.voiceCancel = input.SubscribePath(context.Background(), m.voicePath)
}

func (m *Model) stopVoice() {
	if m.voiceCancel != nil {
		m.voiceCancel()
	}
	m.voiceCh = nil
	m.voiceCancel = nil
}

func (m *Model) selectedIDs() []string {
	ids := make([]string, 0, len(m.selected))
	for _, id := range m.catalog.IDs() {
		if m.selected[id] {
			ids = append(ids, id)
		}
	}
	return ids
}
