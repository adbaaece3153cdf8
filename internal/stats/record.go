package stats

import "time"

// Record is one wrapper invocation's bookkeeping entry.
type Record struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Files     int       `json:"files"`
	Hits      int       `json:"hits"`
	Misses    int       `json:"misses"`
	Failures  int       `json:"failures"`
	ElapsedMS int64     `json:"elapsed_ms"`
}

// Totals aggregates every record in the database.
type Totals struct {
	Invocations int
	Files       int
	Hits        int
	Misses      int
	Failures    int
}

// HitRate is the fraction of answered forwards served from cache.
func (t *Totals) HitRate() float64 {
	answered := t.Hits + t.Misses
	if answered == 0 {
		return 0
	}

	return float64(t.Hits) / float64(answered)
}
