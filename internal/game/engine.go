package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/deptsays/internal/catalog"
	"github.com/verte-zerg/deptsays/internal/generator"
	"github.com/verte-zerg/deptsays/internal/model"
	"github.com/verte-zerg/deptsays/internal/stats"
)

const (
	tickInterval = time.Second
	topCount     = 3
	daysEpsilon  = 1e-9
)

// Engine owns one game at a time. It is not safe for concurrent use: every
// method, Fire included, must be called from a single event loop.
type Engine struct {
	cfg     model.Config
	catalog *catalog.Catalog
	gen     *generator.Generator
	sched   Scheduler
	now     func() time.Time
	newID   func() string

	timers  timerRegistry
	session *Session
	events  []Event
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDFunc replaces the session id generator.
func WithIDFunc(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// NewEngine constructs an idle Engine.
func NewEngine(cfg model.Config, cat *catalog.Catalog, gen *generator.Generator, sched Scheduler, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		catalog: cat,
		gen:     gen,
		sched:   sched,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine tuning.
func (e *Engine) Config() model.Config {
	return e.cfg
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	switch {
	case e.session == nil:
		return StateIdle
	case e.session.Outcome != OutcomeNone:
		return StateEnded
	case e.session.Active != nil:
		return StateChallengeActive
	default:
		return StateRunning
	}
}

// Start begins a session with the given department ids. Any previous session
// is discarded along with its timers.
func (e *Engine) Start(ids []string) error {
	if len(ids) == 0 {
		return ErrInvalidSelection
	}
	depts := make([]*Department, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		entry, ok := e.catalog.Lookup(id)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownDepartment, id)
		}
		depts = append(depts, &Department{
			Department: entry,
			Meta:       e.gen.Meta(e.cfg.MetaMin, e.cfg.MetaMax),
		})
	}

	e.Reset()
	e.session = &Session{
		ID:          e.newID(),
		Departments: depts,
		TimeLeft:    int(e.cfg.SessionDuration / tickInterval),
		DaysLeft:    e.cfg.DaysBudget,
		StartedAt:   e.now(),
	}
	e.emit(Event{Kind: EventSessionStarted})
	e.arm(TimerMaster, tickInterval)
	e.arm(TimerNextChallenge, e.cfg.StartDelay)
	return nil
}

// Reset drops the current session and cancels every timer.
func (e *Engine) Reset() {
	e.timers.cancelAll()
	e.session = nil
}

// Fire handles a timer delivered by the Scheduler.
func (e *Engine) Fire(t Timer) {
	if e.session == nil || t.Session != e.session.ID {
		return
	}
	if !e.timers.claim(t) {
		return
	}
	switch t.Kind {
	case TimerMaster:
		e.arm(TimerMaster, tickInterval)
		e.Tick()
	case TimerInput:
		e.onChallengeTimeout()
	case TimerNextChallenge:
		e.SelectNextChallenge()
	}
}

// Tick advances the countdowns by one step. It does nothing while paused,
// while a challenge is in progress, or once every department reached its
// meta and the win is only waiting for the transition delay.
func (e *Engine) Tick() {
	if e.State() != StateRunning || e.session.Paused {
		return
	}
	s := e.session
	if len(s.remaining()) == 0 {
		return
	}
	s.TimeLeft--
	if s.TimeLeft < 0 {
		s.TimeLeft = 0
	}
	s.DaysLeft -= e.cfg.DaysDecay
	if s.DaysLeft < daysEpsilon {
		s.DaysLeft = 0
	}
	e.emit(Event{Kind: EventTicked})
	if s.TimeLeft <= 0 || s.DaysLeft <= 0 {
		e.End(OutcomeLost)
	}
}

// SelectNextChallenge activates a random unfinished department, or ends the
// session as won when none remain.
func (e *Engine) SelectNextChallenge() {
	if e.State() != StateRunning || e.session.Paused {
		return
	}
	s := e.session
	available := s.remaining()
	if len(available) == 0 {
		e.End(OutcomeWon)
		return
	}
	dept := available[e.gen.Intn(len(available))]
	s.Active = dept
	s.Sequence = e.gen.Sequence(e.cfg.SequenceMin, e.cfg.SequenceMax)
	s.Step = 0
	s.LastSequenceLen = len(s.Sequence)
	e.timers.cancel(TimerNextChallenge)
	e.arm(TimerInput, e.cfg.InputTimeout)
	e.emit(Event{Kind: EventChallengeStarted, Department: dept.ID})
}

// Submit checks d against the expected step of the active sequence. Calls
// without an active challenge, while paused, or with an invalid direction
// are ignored.
func (e *Engine) Submit(d model.Direction) {
	if e.State() != StateChallengeActive || e.session.Paused || !d.Valid() {
		return
	}
	s := e.session
	if d != s.Sequence[s.Step] {
		e.fail(false)
		return
	}
	s.Step++
	e.emit(Event{Kind: EventStepAccepted, Department: s.Active.ID, Step: s.Step})
	if s.Step == len(s.Sequence) {
		e.complete()
		return
	}
	e.arm(TimerInput, e.cfg.InputTimeout)
}

// HandleCommand routes a normalized input command.
func (e *Engine) HandleCommand(cmd model.Command) {
	switch cmd.Kind {
	case model.CommandDirection:
		e.Submit(cmd.Direction)
	case model.CommandTogglePause:
		e.TogglePause()
	}
}

// TogglePause flips the pause flag.
func (e *Engine) TogglePause() {
	if e.session == nil {
		return
	}
	e.SetPaused(!e.session.Paused)
}

// SetPaused pauses or resumes the running session. Pausing suspends the input
// timeout; resuming grants a fresh full input window.
func (e *Engine) SetPaused(paused bool) {
	state := e.State()
	if state != StateRunning && state != StateChallengeActive {
		return
	}
	s := e.session
	if s.Paused == paused {
		return
	}
	s.Paused = paused
	if paused {
		e.timers.cancel(TimerInput)
		e.emit(Event{Kind: EventPaused})
		return
	}
	e.emit(Event{Kind: EventResumed})
	if s.Active != nil {
		e.arm(TimerInput, e.cfg.InputTimeout)
		return
	}
	// A selection that fired during the pause was dropped; retry it.
	if !e.timers.armed(TimerNextChallenge) {
		e.arm(TimerNextChallenge, e.cfg.TransitionDelay)
	}
}

// End moves the session to its terminal state. Later calls are ignored, so
// the first terminal cause wins.
func (e *Engine) End(outcome Outcome) {
	if outcome == OutcomeNone || e.session == nil || e.session.Outcome != OutcomeNone {
		return
	}
	e.timers.cancelAll()
	s := e.session
	s.Outcome = outcome
	s.EndedAt = e.now()
	s.Active = nil
	s.Sequence = nil
	s.Step = 0
	s.Grade = stats.Grade(stats.GradeInput{
		TotalCorrect:    s.TotalCorrect,
		TotalIncorrect:  s.TotalIncorrect,
		LastSequenceLen: s.LastSequenceLen,
		Elapsed:         s.EndedAt.Sub(s.StartedAt),
		Duration:        e.cfg.SessionDuration,
		Won:             outcome == OutcomeWon,
	})
	e.emit(Event{Kind: EventSessionEnded, Outcome: outcome})
}

// Events drains the events emitted since the previous call.
func (e *Engine) Events() []Event {
	out := e.events
	e.events = nil
	return out
}

func (e *Engine) onChallengeTimeout() {
	if e.State() != StateChallengeActive || e.session.Paused {
		return
	}
	e.fail(true)
}

func (e *Engine) complete() {
	s := e.session
	dept := s.Active
	n := len(s.Sequence)
	dept.Progress++
	dept.Corrects += n
	s.TotalCorrect += n
	s.Score += e.cfg.CompletionScore
	reached := dept.Progress == dept.Meta
	if reached {
		s.Score += e.cfg.MetaBonus
	}
	e.emit(Event{Kind: EventChallengeCompleted, Department: dept.ID, MetaReached: reached})
	e.closeChallenge()
}

func (e *Engine) fail(timeout bool) {
	s := e.session
	dept := s.Active
	s.TotalIncorrect++
	dept.Errors++
	s.Score -= e.cfg.FailurePenalty
	if s.Score < 0 {
		s.Score = 0
	}
	e.emit(Event{Kind: EventChallengeFailed, Department: dept.ID, Step: s.Step, Timeout: timeout})
	e.closeChallenge()
}

func (e *Engine) closeChallenge() {
	s := e.session
	e.timers.cancel(TimerInput)
	s.Active = nil
	s.Sequence = nil
	s.Step = 0
	e.arm(TimerNextChallenge, e.cfg.TransitionDelay)
}

func (e *Engine) arm(kind TimerKind, d time.Duration) {
	t := e.timers.arm(e.session.ID, kind, e.now().Add(d))
	e.sched.Schedule(t, d)
}

func (e *Engine) emit(ev Event) {
	e.events = append(e.events, ev)
}
