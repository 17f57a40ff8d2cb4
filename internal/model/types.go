// Package model defines shared data structures.
package model

import "time"

// Direction is one symbol of the four-direction alphabet.
type Direction string

// Directions accepted by the game.
const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists the alphabet in a stable order.
var Directions = []Direction{Up, Down, Left, Right}

// Valid reports whether d belongs to the alphabet.
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	default:
		return false
	}
}

// Arrow returns the glyph used to display the direction.
func (d Direction) Arrow() string {
	switch d {
	case Up:
		return "↑"
	case Down:
		return "↓"
	case Left:
		return "←"
	case Right:
		return "→"
	default:
		return "?"
	}
}

// CommandKind distinguishes directional input from control input.
type CommandKind int

const (
	// CommandDirection carries a Direction.
	CommandDirection CommandKind = iota
	// CommandTogglePause flips the pause flag.
	CommandTogglePause
)

// Command is a normalized input event, whatever its origin.
type Command struct {
	Kind      CommandKind
	Direction Direction
}

// DirectionCommand wraps d in a Command.
func DirectionCommand(d Direction) Command {
	return Command{Kind: CommandDirection, Direction: d}
}

// TogglePauseCommand returns the pause toggle Command.
func TogglePauseCommand() Command {
	return Command{Kind: CommandTogglePause}
}

// Config defines the tunable game parameters.
type Config struct {
	SessionDuration time.Duration
	DaysBudget      float64
	DaysDecay       float64
	InputTimeout    time.Duration
	StartDelay      time.Duration
	TransitionDelay time.Duration
	SequenceMin     int
	SequenceMax     int
	MetaMin         int
	MetaMax         int
	CompletionScore int
	MetaBonus       int
	FailurePenalty  int
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		SessionDuration: 300 * time.Second,
		DaysBudget:      20.0,
		DaysDecay:       0.01,
		InputTimeout:    3000 * time.Millisecond,
		StartDelay:      1500 * time.Millisecond,
		TransitionDelay: 1200 * time.Millisecond,
		SequenceMin:     3,
		SequenceMax:     5,
		MetaMin:         2,
		MetaMax:         3,
		CompletionScore: 500,
		MetaBonus:       1000,
		FailurePenalty:  100,
	}
}

// HistoryConfig defines filters for history output.
type HistoryConfig struct {
	Since *time.Time
	Last  int
}

// GameRecord captures a finished game.
type GameRecord struct {
	ID             string
	StartedAt      time.Time
	EndedAt        time.Time
	Won            bool
	Score          int
	Grade          float64
	TotalCorrect   int
	TotalIncorrect int
	Completed      int
	Departments    int
}

// DepartmentRecord stores per-department results for a game.
type DepartmentRecord struct {
	DeptID   string
	Name     string
	Meta     int
	Progress int
	Corrects int
	Errors   int
}

// DepartmentAggregate aggregates department results across games.
type DepartmentAggregate struct {
	DeptID    string
	Name      string
	Games     int
	Completed int
	Corrects  int
	Errors    int
}
