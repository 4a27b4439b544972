package entities

import (
	"time"
)

// TrendCounter is a decayed popularity counter for one search term.
// The stored count shrinks toward zero with elapsed time and is never
// hard-deleted, only hidden below a negligible-count threshold.
type TrendCounter struct {
	Query        string    `json:"query"`
	DecayedCount float64   `json:"decayed_count"`
	LastSeen     time.Time `json:"last_seen"`
}
