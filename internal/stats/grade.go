// Package stats contains grading, ranking, and history reporting.
package stats

import (
	"math"
	"time"
)

// fallbackSequenceLen divides the correct-command total when no sequence was
// ever generated. Kept at 3 to match the reference scoring.
const fallbackSequenceLen = 3

// GradeInput holds the frozen session statistics used for grading.
type GradeInput struct {
	TotalCorrect    int
	TotalIncorrect  int
	LastSequenceLen int
	Elapsed         time.Duration
	Duration        time.Duration
	Won             bool
}

// Grade returns the final grade in [0,10], rounded to one decimal.
func Grade(in GradeInput) float64 {
	grade := sequenceAccuracy(in)*6 + timeEfficiency(in.Elapsed, in.Duration)*2
	if in.Won {
		grade += 2
	}
	grade = math.Max(0, math.Min(10, grade))
	return math.Round(grade*10) / 10
}

func sequenceAccuracy(in GradeInput) float64 {
	divisor := in.LastSequenceLen
	if divisor <= 0 {
		divisor = fallbackSequenceLen
	}
	successful := float64(in.TotalCorrect) / float64(divisor)
	attempted := successful + float64(in.TotalIncorrect)
	if attempted <= 0 {
		return 0
	}
	return successful / attempted
}

func timeEfficiency(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return math.Max(0, float64(total-elapsed)/float64(total))
}
