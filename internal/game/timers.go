package game

import "time"

// TimerKind names one of the engine's timer slots.
type TimerKind int

const (
	// TimerMaster is the repeating one-second countdown tick.
	TimerMaster TimerKind = iota
	// TimerInput bounds the wait for the next command of a challenge.
	TimerInput
	// TimerNextChallenge delays the selection of the next challenge.
	TimerNextChallenge

	timerKindCount
)

func (k TimerKind) String() string {
	switch k {
	case TimerMaster:
		return "master"
	case TimerInput:
		return "input"
	case TimerNextChallenge:
		return "next-challenge"
	default:
		return "unknown"
	}
}

// Timer is a cancellation token for one armed timer. A Scheduler hands it
// back to Engine.Fire when the duration elapses; tokens that were replaced or
// cancelled in the meantime are ignored.
type Timer struct {
	Session string
	Kind    TimerKind
	Seq     uint64
}

// Scheduler delivers a Timer back to the engine after d. Implementations must
// call Engine.Fire on the same goroutine that drives every other engine call.
type Scheduler interface {
	Schedule(t Timer, d time.Duration)
}

type timerSlot struct {
	seq      uint64
	armed    bool
	deadline time.Time
}

// timerRegistry keeps at most one live token per kind.
type timerRegistry struct {
	seq   uint64
	slots [timerKindCount]timerSlot
}

func (r *timerRegistry) arm(session string, kind TimerKind, deadline time.Time) Timer {
	r.seq++
	r.slots[kind] = timerSlot{seq: r.seq, armed: true, deadline: deadline}
	return Timer{Session: session, Kind: kind, Seq: r.seq}
}

func (r *timerRegistry) cancel(kind TimerKind) {
	r.slots[kind] = timerSlot{}
}

func (r *timerRegistry) cancelAll() {
	for k := range r.slots {
		r.slots[k] = timerSlot{}
	}
}

// claim reports whether t is the live token of its kind and disarms it.
func (r *timerRegistry) claim(t Timer) bool {
	if t.Kind < 0 || t.Kind >= timerKindCount {
		return false
	}
	slot := r.slots[t.Kind]
	if !slot.armed || slot.seq != t.Seq {
		return false
	}
	r.slots[t.Kind] = timerSlot{}
	return true
}

func (r *timerRegistry) armed(kind TimerKind) bool {
	return r.slots[kind].armed
}

func (r *timerRegistry) deadline(kind TimerKind) (time.Time, bool) {
	slot := r.slots[kind]
	return slot.deadline, slot.armed
}
