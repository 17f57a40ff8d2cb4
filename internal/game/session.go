// Package game implements the session state machine and timing engine.
package game

import (
	"errors"
	"time"

	"github.com/verte-zerg/deptsays/internal/catalog"
	"github.com/verte-zerg/deptsays/internal/model"
)

var (
	// ErrInvalidSelection is returned when a session is started without departments.
	ErrInvalidSelection = errors.New("invalid selection: no departments chosen")
	// ErrUnknownDepartment is returned for ids missing from the catalog.
	ErrUnknownDepartment = errors.New("unknown department")
)

// State is the lifecycle state of the engine.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateChallengeActive
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateChallengeActive:
		return "challenge"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Outcome is the terminal cause of a session.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWon
	OutcomeLost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	default:
		return "none"
	}
}

// Department is a selected catalog entry with its session progress.
type Department struct {
	catalog.Department
	Meta     int
	Progress int
	Corrects int
	Errors   int
}

// Met reports whether the department reached its meta.
func (d Department) Met() bool {
	return d.Progress >= d.Meta
}

// Record converts d for ranking and history.
func (d Department) Record() model.DepartmentRecord {
	return model.DepartmentRecord{
		DeptID:   d.ID,
		Name:     d.Name,
		Meta:     d.Meta,
		Progress: d.Progress,
		Corrects: d.Corrects,
		Errors:   d.Errors,
	}
}

// Session is the mutable aggregate owned by one Engine.
type Session struct {
	ID          string
	Departments []*Department
	Score       int
	// TimeLeft counts remaining master ticks (seconds).
	TimeLeft int
	DaysLeft float64
	Paused   bool

	Active          *Department
	Sequence        []model.Direction
	Step            int
	LastSequenceLen int

	TotalCorrect   int
	TotalIncorrect int

	StartedAt time.Time
	EndedAt   time.Time
	Outcome   Outcome
	Grade     float64
}

func (s *Session) remaining() []*Department {
	var out []*Department
	for _, d := range s.Departments {
		if !d.Met() {
			out = append(out, d)
		}
	}
	return out
}
