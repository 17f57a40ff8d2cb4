package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/deptsays/internal/game"
	"github.com/verte-zerg/deptsays/internal/input"
)

type timerMsg game.Timer

type frameMsg struct {
	gen int
}

type transcriptMsg struct {
	ch <-chan input.Transcript
	t  input.Transcript
}

type voiceClosedMsg struct {
	ch <-chan input.Transcript
}

const frameInterval = 100 * time.Millisecond

// teaScheduler turns engine timers into tea.Tick commands. Commands pile up
// during one Update call and are returned together.
type teaScheduler struct {
	pending []tea.Cmd
	last    map[game.TimerKind]game.Timer
}

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{last: map[game.TimerKind]game.Timer{}}
}

func (s *teaScheduler) Schedule(t game.Timer, d time.Duration) {
	s.last[t.Kind] = t
	s.pending = append(s.pending, tea.Tick(d, func(time.Time) tea.Msg {
		return timerMsg(t)
	}))
}

func (s *teaScheduler) drain() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

func frameCmd(gen int) tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{gen: gen}
	})
}

func waitForTranscript(ch <-chan input.Transcript) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return voiceClosedMsg{ch: ch}
		}
		return transcriptMsg{ch: ch, t: t}
	}
}
