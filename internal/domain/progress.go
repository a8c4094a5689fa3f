package domain

import (
	"math"
	"time"
)

// FinishedThreshold is the fraction of a book's duration at which the
// backend considers it finished. Mirrored here for display only; the
// backend owns the authoritative flag.
const FinishedThreshold = 0.95

// UserProgress is the persisted playback position for a (user, book) pair.
// Created lazily by the backend on the first progress push.
type UserProgress struct {
	BookID          int64      `json:"book_id"`
	CurrentPosition int        `json:"current_position"`
	TotalDuration   int        `json:"total_duration,omitempty"`
	IsFinished      bool       `json:"is_finished,omitempty"`
	IsFavorite      bool       `json:"is_favorite,omitempty"`
	LastPlayed      *time.Time `json:"last_played,omitempty"`
}

// ProgressPercent computes the displayed progress percentage for a
// position within a duration. Zero duration yields zero.
func ProgressPercent(position, duration int) int {
	if duration <= 0 {
		return 0
	}
	return int(math.Round(float64(position) / float64(duration) * 100))
}

// Percent returns the progress percentage against the recorded duration.
func (p *UserProgress) Percent() int {
	return ProgressPercent(p.CurrentPosition, p.TotalDuration)
}

// Finished reports whether the position has crossed the finish threshold.
func Finished(position, duration int) bool {
	if duration <= 0 {
		return false
	}
	return float64(position) >= float64(duration)*FinishedThreshold
}
