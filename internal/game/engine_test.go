package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/deptsays/internal/model"
	"github.com/verte-zerg/deptsays/internal/stats"
)

func TestStartRejectsEmptySelection(t *testing.T) {
	h := newHarness(t, model.DefaultConfig(), 1)

	err := h.engine.Start(nil)

	require.ErrorIs(t, err, ErrInvalidSelection)
	assert.Equal(t, StateIdle, h.engine.State())
	assert.Empty(t, h.sched.pending)
	assert.Empty(t, h.engine.Events())
}

func TestStartRejectsUnknownDepartment(t *testing.T) {
	h := newHarness(t, model.DefaultConfig(), 1)

	err := h.engine.Start([]string{"compras", "nope"})

	require.ErrorIs(t, err, ErrUnknownDepartment)
	assert.Equal(t, StateIdle, h.engine.State())
}

func TestStartInitializesSession(t *testing.T) {
	h := newHarness(t, model.DefaultConfig(), 3)

	require.NoError(t, h.engine.Start([]string{"compras", "marketing", "compras"}))

	snap := h.engine.Snapshot()
	assert.Equal(t, StateRunning, snap.State)
	assert.Equal(t, 300, snap.TimeLeft)
	assert.Equal(t, 20.0, snap.DaysLeft)
	assert.Zero(t, snap.Score)
	require.Len(t, snap.Departments, 2)
	for _, d := range snap.Departments {
		assert.GreaterOrEqual(t, d.Meta, 2)
		assert.LessOrEqual(t, d.Meta, 3)
		assert.Zero(t, d.Progress)
	}
	assert.True(t, h.armed(TimerMaster))
	assert.True(t, h.armed(TimerNextChallenge))
	assert.Equal(t, []Event{{Kind: EventSessionStarted}}, h.engine.Events())
}

func TestFirstChallengeAfterStartDelay(t *testing.T) {
	h := newHarness(t, model.DefaultConfig(), 3)
	require.NoError(t, h.engine.Start([]string{"compras"}))

	h.advance(1499 * time.Millisecond)
	assert.Equal(t, StateRunning, h.engine.State())

	h.advance(time.Millisecond)
	snap := h.engine.Snapshot()
	require.Equal(t, StateChallengeActive, snap.State)
	assert.Equal(t, "compras", snap.Active.Department.ID)
	assert.GreaterOrEqual(t, len(snap.Active.Sequence), 3)
	assert.LessOrEqual(t, len(snap.Active.Sequence), 5)
	assert.Zero(t, snap.Active.Step)
	assert.Equal(t, 299, snap.TimeLeft)
	assert.True(t, h.armed(TimerInput))
}

func TestScenarioWinSingleDepartment(t *testing.T) {
	h := newHarness(t, fixedConfig(4, 2), 5)
	require.NoError(t, h.engine.Start([]string{"compras"}))

	h.advance(1500 * time.Millisecond)
	h.solve()
	assert.Equal(t, 500, h.engine.Snapshot().Score)

	h.advance(1200 * time.Millisecond)
	h.solve()

	snap := h.engine.Snapshot()
	assert.Equal(t, 2000, snap.Score)
	assert.Equal(t, 2, snap.Departments[0].Progress)
	assert.Equal(t, 8, snap.Departments[0].Corrects)
	assert.Equal(t, StateRunning, snap.State)

	h.advance(1200 * time.Millisecond)
	snap = h.engine.Snapshot()
	require.Equal(t, StateEnded, snap.State)
	assert.Equal(t, OutcomeWon, snap.Outcome)
	require.NotNil(t, snap.Summary)
	assert.Equal(t, 8, snap.Summary.TotalCorrect)
	assert.Equal(t, 1, snap.Summary.Completed)
	assert.False(t, h.armed(TimerMaster))
}

func TestScenarioTimeoutFailsChallenge(t *testing.T) {
	h := newHarness(t, fixedConfig(3, 2), 9)
	require.NoError(t, h.engine.Start([]string{"projetos"}))
	h.advance(1500 * time.Millisecond)
	h.engine.Events()

	h.advance(2999 * time.Millisecond)
	require.Equal(t, StateChallengeActive, h.engine.State())

	h.advance(time.Millisecond)
	snap := h.engine.Snapshot()
	assert.Equal(t, StateRunning, snap.State)
	assert.Zero(t, snap.Score)
	assert.Equal(t, 1, snap.Departments[0].Errors)
	assert.Equal(t, 1, h.engine.session.TotalIncorrect)
	assert.True(t, h.armed(TimerNextChallenge))
	assert.Contains(t, h.engine.Events(), Event{Kind: EventChallengeFailed, Department: "projetos", Timeout: true})

	h.advance(1200 * time.Millisecond)
	assert.Equal(t, StateChallengeActive, h.engine.State())
}

func TestFailureDeductsPenalty(t *testing.T) {
	h := newHarness(t, fixedConfig(3, 3), 11)
	require.NoError(t, h.engine.Start([]string{"compras"}))
	h.advance(1500 * time.Millisecond)
	h.solve()
	h.advance(1200 * time.Millisecond)

	h.engine.Submit(h.wrong())

	snap := h.engine.Snapshot()
	assert.Equal(t, 400, snap.Score)
	assert.Equal(t, StateRunning, snap.State)
	assert.Equal(t, 1, snap.Departments[0].Errors)
	assert.Equal(t, 1, snap.Departments[0].Progress)
}

func TestCorrectStepRestartsInputTimeout(t *testing.T) {
	h := newHarness(t, fixedConfig(3, 2), 13)
	require.NoError(t, h.engine.Start([]string{"compras"}))
	h.advance(1500 * time.Millisecond)

	h.advance(2500 * time.Millisecond)
	first := h.engine.Snapshot().Active.Sequence[0]
	h.engine.Submit(first)

	h.advance(2999 * time.Millisecond)
	snap := h.engine.Snapshot()
	require.Equal(t, StateChallengeActive, snap.State)
	assert.Equal(t, 1, snap.Active.Step)

	h.advance(time.Millisecond)
	assert.Equal(t, StateRunning, h.engine.State())
}

func TestScenarioPauseDuringChallenge(t *testing.T) {
	h := newHarness(t, fixedConfig(4, 2), 17)
	require.NoError(t, h.engine.Start([]string{"compras"}))
	h.advance(1500 * time.Millisecond)
	h.advance(2000 * time.Millisecond)
	before := h.engine.Snapshot()

	h.engine.SetPaused(true)
	assert.False(t, h.armed(TimerInput))
	h.advance(10 * time.Second)

	paused := h.engine.Snapshot()
	assert.Equal(t, before.TimeLeft, paused.TimeLeft)
	assert.Equal(t, before.DaysLeft, paused.DaysLeft)
	require.Equal(t, StateChallengeActive, paused.State)
	assert.Equal(t, 1.0, paused.Active.Remaining(h.sched.now))

	h.engine.SetPaused(false)
	h.advance(2999 * time.Millisecond)
	require.Equal(t, StateChallengeActive, h.engine.State())
	h.advance(time.Millisecond)
	assert.Equal(t, StateRunning, h.engine.State())
	assert.Equal(t, 1, h.engine.Snapshot().Departments[0].Errors)
}

func TestPauseStopsCountdownAndSelection(t *testing.T) {
	h := newHarness(t, model.DefaultConfig(), 19)
	require.NoError(t, h.engine.Start([]string{"compras"}))

	h.engine.SetPaused(true)
	h.engine.SetPaused(true)
	h.advance(5 * time.Second)

	snap := h.engine.Snapshot()
	assert.Equal(t, 300, snap.TimeLeft)
	assert.Equal(t, StateRunning, snap.State)
	assert.True(t, snap.Paused)
	assert.True(t, h.armed(TimerMaster))
	assert.False(t, h.armed(TimerNextChallenge))

	h.engine.SetPaused(false)
	assert.True(t, h.armed(TimerNextChallenge))
	h.advance(1200 * time.Millisecond)
	assert.Equal(t, StateChallengeActive, h.engine.State())

	var kinds []EventKind
	for _, ev := range h.engine.Events() {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, 1, countKind(kinds, EventPaused))
	assert.Equal(t, 1, countKind(kinds, EventResumed))
}

func TestSubmitIgnoredWithoutChallengeOrWhilePaused(t *testing.T) {
	h := newHarness(t, fixedConfig(3, 2), 23)
	h.engine.Submit(model.Up)
	assert.Equal(t, StateIdle, h.engine.State())

	require.NoError(t, h.engine.Start([]string{"compras"}))
	h.engine.Submit(model.Up)
	assert.Zero(t, h.engine.Snapshot().Score)
	assert.Zero(t, h.engine.session.TotalIncorrect)

	h.advance(1500 * time.Millisecond)
	before := h.engine.Snapshot()

	h.engine.Submit(model.Direction("north"))
	assert.Equal(t, before, h.engine.Snapshot())

	h.engine.SetPaused(true)
	paused := h.engine.Snapshot()
	h.engine.Submit(h.wrong())
	h.engine.Submit(paused.Active.Sequence[0])
	assert.Equal(t, paused, h.engine.Snapshot())
}

func TestHandleCommandRoutesInput(t *testing.T) {
	h := newHarness(t, fixedConfig(3, 2), 29)
	require.NoError(t, h.engine.Start([]string{"compras"}))
	h.advance(1500 * time.Millisecond)
	first := h.engine.Snapshot().Active.Sequence[0]

	h.engine.HandleCommand(model.DirectionCommand(first))
	assert.Equal(t, 1, h.engine.Snapshot().Active.Step)

	h.engine.HandleCommand(model.TogglePauseCommand())
	assert.True(t, h.engine.Snapshot().Paused)
	h.engine.HandleCommand(model.TogglePauseCommand())
	assert.False(t, h.engine.Snapshot().Paused)
}

func TestLostWhenTimeRunsOut(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.SessionDuration = 3 * time.Second
	cfg.StartDelay = 10 * time.Second
	h := newHarness(t, cfg, 31)
	require.NoError(t, h.engine.Start([]string{"compras"}))

	h.advance(3 * time.Second)

	snap := h.engine.Snapshot()
	require.Equal(t, StateEnded, snap.State)
	assert.Equal(t, OutcomeLost, snap.Outcome)
	assert.Zero(t, snap.TimeLeft)

	h.advance(20 * time.Second)
	assert.Nil(t, h.engine.Snapshot().Active)
	assert.Equal(t, OutcomeLost, h.engine.Snapshot().Outcome)
}

func TestWonWhenLastMetaReachedWithOneSecondLeft(t *testing.T) {
	cfg := fixedConfig(3, 1)
	cfg.SessionDuration = 2 * time.Second
	cfg.StartDelay = 1100 * time.Millisecond
	h := newHarness(t, cfg, 41)
	require.NoError(t, h.engine.Start([]string{"compras"}))

	h.advance(1100 * time.Millisecond)
	require.Equal(t, 1, h.engine.Snapshot().TimeLeft)
	h.solve()
	require.Equal(t, StateRunning, h.engine.State())

	h.advance(5 * time.Second)

	snap := h.engine.Snapshot()
	require.Equal(t, StateEnded, snap.State)
	assert.Equal(t, OutcomeWon, snap.Outcome)
	assert.Equal(t, 1, snap.TimeLeft)
}

func TestZeroSequenceBoundsStillPlayable(t *testing.T) {
	cfg := fixedConfig(0, 1)
	h := newHarness(t, cfg, 43)
	require.NoError(t, h.engine.Start([]string{"compras"}))
	h.advance(cfg.StartDelay)

	snap := h.engine.Snapshot()
	require.NotNil(t, snap.Active)
	require.Len(t, snap.Active.Sequence, 1)
	assert.NotPanics(t, func() { h.engine.Submit(snap.Active.Sequence[0]) })
	assert.Equal(t, 1, h.engine.Snapshot().Departments[0].Progress)
}

func TestLostWhenDaysRunOut(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.DaysBudget = 0.03
	cfg.StartDelay = time.Minute
	h := newHarness(t, cfg, 37)
	require.NoError(t, h.engine.Start([]string{"compras"}))

	h.advance(2 * time.Second)
	require.Equal(t, StateRunning, h.engine.State())
	h.advance(time.Second)

	snap := h.engine.Snapshot()
	require.Equal(t, StateEnded, snap.State)
	assert.Equal(t, OutcomeLost, snap.Outcome)
	assert.Equal(t, 297, snap.TimeLeft)
	assert.Zero(t, snap.DaysLeft)
}

func TestCountdownPausedDuringChallenge(t *testing.T) {
	h := newHarness(t, fixedConfig(5, 2), 41)
	require.NoError(t, h.engine.Start([]string{"compras"}))
	h.advance(1500 * time.Millisecond)
	start := h.engine.Snapshot().TimeLeft

	h.advance(2900 * time.Millisecond)

	assert.Equal(t, start, h.engine.Snapshot().TimeLeft)
}

func TestScenarioNoMutationAfterEnded(t *testing.T) {
	h := newHarness(t, fixedConfig(4, 2), 43)
	require.NoError(t, h.engine.Start([]string{"compras"}))
	h.advance(1500 * time.Millisecond)
	seq := h.engine.Snapshot().Active.Sequence

	h.engine.Submit(seq[0])
	h.engine.End(OutcomeLost)
	ended := h.engine.Snapshot()

	for _, d := range seq[1:] {
		h.engine.Submit(d)
	}
	h.engine.SetPaused(true)
	h.engine.End(OutcomeWon)
	h.advance(time.Minute)

	assert.Equal(t, ended, h.engine.Snapshot())
	assert.Equal(t, OutcomeLost, ended.Outcome)
	assert.Zero(t, ended.Departments[0].Progress)
	for kind := TimerKind(0); kind < timerKindCount; kind++ {
		assert.False(t, h.armed(kind), "timer %s still armed", kind)
	}
}

func TestStaleTimersFromPreviousSessionIgnored(t *testing.T) {
	h := newHarness(t, model.DefaultConfig(), 47)
	require.NoError(t, h.engine.Start([]string{"compras"}))
	stale := append([]pendingTimer(nil), h.sched.pending...)

	require.NoError(t, h.engine.Start([]string{"marketing"}))
	for _, p := range stale {
		h.engine.Fire(p.timer)
	}

	snap := h.engine.Snapshot()
	assert.Equal(t, "session-2", snap.SessionID)
	assert.Equal(t, 300, snap.TimeLeft)
	assert.Equal(t, StateRunning, snap.State)
}

func TestReplacedInputTimerIgnored(t *testing.T) {
	h := newHarness(t, fixedConfig(4, 2), 53)
	require.NoError(t, h.engine.Start([]string{"compras"}))
	h.advance(1500 * time.Millisecond)
	var first Timer
	for _, p := range h.sched.pending {
		if p.timer.Kind == TimerInput {
			first = p.timer
		}
	}
	h.engine.Submit(h.engine.Snapshot().Active.Sequence[0])

	h.engine.Fire(first)

	assert.Equal(t, StateChallengeActive, h.engine.State())
	assert.Equal(t, 1, h.engine.Snapshot().Active.Step)
}

func TestResetReturnsToIdle(t *testing.T) {
	h := newHarness(t, model.DefaultConfig(), 59)
	require.NoError(t, h.engine.Start([]string{"compras"}))

	h.engine.Reset()

	assert.Equal(t, StateIdle, h.engine.State())
	h.advance(time.Minute)
	assert.Equal(t, StateIdle, h.engine.State())
	_, _, ok := h.engine.Record()
	assert.False(t, ok)
}

func TestGradeAndRecordOnEnd(t *testing.T) {
	h := newHarness(t, fixedConfig(3, 2), 61)
	require.NoError(t, h.engine.Start([]string{"compras", "marketing"}))
	h.advance(1500 * time.Millisecond)
	h.solve()
	h.advance(1200 * time.Millisecond)
	h.engine.Submit(h.wrong())
	h.advance(30 * time.Second)
	h.engine.End(OutcomeLost)

	snap := h.engine.Snapshot()
	require.NotNil(t, snap.Summary)
	want := stats.Grade(stats.GradeInput{
		TotalCorrect:    h.engine.session.TotalCorrect,
		TotalIncorrect:  h.engine.session.TotalIncorrect,
		LastSequenceLen: 3,
		Elapsed:         snap.Summary.Elapsed,
		Duration:        300 * time.Second,
	})
	assert.Equal(t, want, snap.Summary.Grade)
	assert.LessOrEqual(t, len(snap.Summary.Top), 3)

	game, depts, ok := h.engine.Record()
	require.True(t, ok)
	assert.Equal(t, snap.SessionID, game.ID)
	assert.False(t, game.Won)
	assert.Equal(t, snap.Score, game.Score)
	assert.Equal(t, 2, game.Departments)
	assert.Len(t, depts, 2)
}

func TestRandomPlayKeepsInvariants(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		h := newHarness(t, model.DefaultConfig(), seed)
		rnd := rand.New(rand.NewSource(seed))
		require.NoError(t, h.engine.Start([]string{"compras", "marketing", "rodada"}))

		for i := 0; i < 400 && h.engine.State() != StateEnded; i++ {
			switch rnd.Intn(6) {
			case 0:
				h.advance(time.Duration(rnd.Intn(4000)) * time.Millisecond)
			case 1:
				if h.engine.State() == StateChallengeActive {
					h.engine.Submit(h.wrong())
				}
			case 2:
				h.engine.TogglePause()
			default:
				if h.engine.State() == StateChallengeActive && !h.engine.Snapshot().Paused {
					h.engine.Submit(h.engine.Snapshot().Active.Sequence[h.engine.Snapshot().Active.Step])
				}
				h.advance(time.Duration(rnd.Intn(1500)) * time.Millisecond)
			}
			h.checkInvariants()
		}

		snap := h.engine.Snapshot()
		if snap.State != StateEnded {
			continue
		}
		allMet := true
		for _, d := range snap.Departments {
			allMet = allMet && d.Met()
		}
		if snap.Outcome == OutcomeWon {
			assert.True(t, allMet, "seed %d won without meeting every meta", seed)
		} else {
			assert.True(t, snap.TimeLeft == 0 || snap.DaysLeft == 0, "seed %d lost with time left", seed)
		}
		assert.GreaterOrEqual(t, snap.Summary.Grade, 0.0)
		assert.LessOrEqual(t, snap.Summary.Grade, 10.0)
	}
}

func countKind(kinds []EventKind, want EventKind) int {
	n := 0
	for _, k := range kinds {
		if k == want {
			n++
		}
	}
	return n
}
