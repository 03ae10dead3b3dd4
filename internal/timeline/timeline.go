// Package timeline holds the per-file timestamp records produced by a scan.
package timeline

import "time"

// Record captures the timestamps reported by the host for a single file.
type Record struct {
	Path     string    `json:"path"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Accessed time.Time `json:"accessed"`
}

// Timeline is the ordered result of one collection pass. Order follows the
// directory walk, not any of the timestamps.
type Timeline []Record

// Span returns the earliest and latest instant across all three timestamp
// kinds. ok is false for an empty timeline.
func (tl Timeline) Span() (min, max time.Time, ok bool) {
	if len(tl) == 0 {
		return time.Time{}, time.Time{}, false
	}

	min = tl[0].Created
	max = tl[0].Created
	for _, record := range tl {
		for _, ts := range [...]time.Time{record.Created, record.Modified, record.Accessed} {
			if ts.Before(min) {
				min = ts
			}
			if ts.After(max) {
				max = ts
			}
		}
	}
	return min, max, true
}

// Paths returns the record paths in timeline order.
func (tl Timeline) Paths() []string {
	paths := make([]string, len(tl))
	for i, record := range tl {
		paths[i] = record.Path
	}
	return paths
}
