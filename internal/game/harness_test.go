package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/verte-zerg/deptsays/internal/catalog"
	"github.com/verte-zerg/deptsays/internal/generator"
	"github.com/verte-zerg/deptsays/internal/model"
)

type pendingTimer struct {
	timer Timer
	at    time.Time
}

// fakeScheduler queues timers against a manual clock.
type fakeScheduler struct {
	now     time.Time
	pending []pendingTimer
}

func (f *fakeScheduler) Schedule(t Timer, d time.Duration) {
	f.pending = append(f.pending, pendingTimer{timer: t, at: f.now.Add(d)})
}

type harness struct {
	t      *testing.T
	sched  *fakeScheduler
	engine *Engine
}

func newHarness(t *testing.T, cfg model.Config, seed int64) *harness {
	t.Helper()
	sched := &fakeScheduler{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	ids := 0
	e := NewEngine(cfg, catalog.Default(), generator.NewSeeded(seed), sched,
		WithClock(func() time.Time { return sched.now }),
		WithIDFunc(func() string {
			ids++
			return fmt.Sprintf("session-%d", ids)
		}),
	)
	return &harness{t: t, sched: sched, engine: e}
}

// advance moves the clock forward by d, firing due timers in deadline order.
func (h *harness) advance(d time.Duration) {
	target := h.sched.now.Add(d)
	for {
		idx := -1
		for i, p := range h.sched.pending {
			if p.at.After(target) {
				continue
			}
			if idx == -1 || p.at.Before(h.sched.pending[idx].at) {
				idx = i
			}
		}
		if idx == -1 {
			break
		}
		p := h.sched.pending[idx]
		h.sched.pending = append(h.sched.pending[:idx], h.sched.pending[idx+1:]...)
		h.sched.now = p.at
		h.engine.Fire(p.timer)
		h.checkInvariants()
	}
	h.sched.now = target
}

// solve submits the remaining steps of the active sequence.
func (h *harness) solve() {
	h.t.Helper()
	snap := h.engine.Snapshot()
	if snap.Active == nil {
		h.t.Fatalf("expected an active challenge, state %s", snap.State)
	}
	for _, d := range snap.Active.Sequence[snap.Active.Step:] {
		h.engine.Submit(d)
		h.checkInvariants()
	}
}

func (h *harness) wrong() model.Direction {
	h.t.Helper()
	snap := h.engine.Snapshot()
	if snap.Active == nil {
		h.t.Fatalf("expected an active challenge, state %s", snap.State)
	}
	want := snap.Active.Sequence[snap.Active.Step]
	for _, d := range model.Directions {
		if d != want {
			return d
		}
	}
	return ""
}

func (h *harness) armed(kind TimerKind) bool {
	return h.engine.timers.armed(kind)
}

func (h *harness) checkInvariants() {
	h.t.Helper()
	s := h.engine.session
	if s == nil {
		return
	}
	if s.Score < 0 {
		h.t.Fatalf("score went negative: %d", s.Score)
	}
	if s.Step < 0 || s.Step > len(s.Sequence) {
		h.t.Fatalf("step %d outside [0,%d]", s.Step, len(s.Sequence))
	}
	if s.TimeLeft < 0 || s.DaysLeft < 0 {
		h.t.Fatalf("countdown below zero: time=%d days=%v", s.TimeLeft, s.DaysLeft)
	}
	for _, d := range s.Departments {
		if d.Progress < 0 || d.Progress > d.Meta {
			h.t.Fatalf("department %s progress %d outside [0,%d]", d.ID, d.Progress, d.Meta)
		}
	}
	if s.Active != nil && s.Active.Met() {
		h.t.Fatalf("department %s active after reaching meta", s.Active.ID)
	}
}

func fixedConfig(seqLen, meta int) model.Config {
	cfg := model.DefaultConfig()
	cfg.SequenceMin, cfg.SequenceMax = seqLen, seqLen
	cfg.MetaMin, cfg.MetaMax = meta, meta
	return cfg
}
