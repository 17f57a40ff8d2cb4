package game

import (
	"time"

	"github.com/verte-zerg/deptsays/internal/model"
	"github.com/verte-zerg/deptsays/internal/stats"
)

// Challenge is the read-only view of the active sequence.
type Challenge struct {
	Department Department
	Sequence   []model.Direction
	Step       int
	// Deadline is zero while the input timeout is suspended.
	Deadline time.Time
	Timeout  time.Duration
}

// Remaining returns the fraction of the input window left at now, in [0,1].
// A suspended window reports 1 since resuming grants a full one.
func (c Challenge) Remaining(now time.Time) float64 {
	if c.Deadline.IsZero() || c.Timeout <= 0 {
		return 1
	}
	left := c.Deadline.Sub(now)
	switch {
	case left <= 0:
		return 0
	case left >= c.Timeout:
		return 1
	default:
		return float64(left) / float64(c.Timeout)
	}
}

// Summary holds end-of-session statistics.
type Summary struct {
	Elapsed        time.Duration
	TotalCorrect   int
	TotalIncorrect int
	Completed      int
	Top            []model.DepartmentRecord
	Grade          float64
}

// Snapshot is a copy of the session state for presentation.
type Snapshot struct {
	State       State
	Outcome     Outcome
	SessionID   string
	Score       int
	TimeLeft    int
	DaysLeft    float64
	Paused      bool
	Active      *Challenge
	Departments []Department
	StartedAt   time.Time
	Summary     *Summary
}

// Snapshot copies the current session state.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{State: e.State()}
	s := e.session
	if s == nil {
		return snap
	}
	snap.Outcome = s.Outcome
	snap.SessionID = s.ID
	snap.Score = s.Score
	snap.TimeLeft = s.TimeLeft
	snap.DaysLeft = s.DaysLeft
	snap.Paused = s.Paused
	snap.StartedAt = s.StartedAt
	snap.Departments = make([]Department, len(s.Departments))
	for i, d := range s.Departments {
		snap.Departments[i] = *d
	}
	if s.Active != nil {
		c := &Challenge{
			Department: *s.Active,
			Sequence:   append([]model.Direction(nil), s.Sequence...),
			Step:       s.Step,
			Timeout:    e.cfg.InputTimeout,
		}
		if deadline, ok := e.timers.deadline(TimerInput); ok {
			c.Deadline = deadline
		}
		snap.Active = c
	}
	if s.Outcome != OutcomeNone {
		records := e.records()
		snap.Summary = &Summary{
			Elapsed:        s.EndedAt.Sub(s.StartedAt),
			TotalCorrect:   s.TotalCorrect,
			TotalIncorrect: s.TotalIncorrect,
			Completed:      stats.CompletedCount(records),
			Top:            stats.TopDepartments(records, topCount),
			Grade:          s.Grade,
		}
	}
	return snap
}

// Record returns the history record of an ended session.
func (e *Engine) Record() (model.GameRecord, []model.DepartmentRecord, bool) {
	s := e.session
	if s == nil || s.Outcome == OutcomeNone {
		return model.GameRecord{}, nil, false
	}
	records := e.records()
	return model.GameRecord{
		ID:             s.ID,
		StartedAt:      s.StartedAt,
		EndedAt:        s.EndedAt,
		Won:            s.Outcome == OutcomeWon,
		Score:          s.Score,
		Grade:          s.Grade,
		TotalCorrect:   s.TotalCorrect,
		TotalIncorrect: s.TotalIncorrect,
		Completed:      stats.CompletedCount(records),
		Departments:    len(records),
	}, records, true
}

func (e *Engine) records() []model.DepartmentRecord {
	out := make([]model.DepartmentRecord, len(e.session.Departments))
	for i, d := range e.session.Departments {
		out[i] = d.Record()
	}
	return out
}
