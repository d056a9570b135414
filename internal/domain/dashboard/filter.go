// internal/domain/dashboard/filter.go
package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const cacheKeyPrefix = "dashboard:v1:"

// Filter selects the transactions a dashboard is computed over.
// The range is half-open: From is inclusive, To is exclusive.
type Filter struct {
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Region  string    `json:"region,omitempty"`
	StoreID string    `json:"store_id,omitempty"`
}

// LastNDays returns a filter covering the n calendar days up to and including
// the day of now, with day boundaries taken in loc.
func LastNDays(now time.Time, n int, loc *time.Location) Filter {
	local := now.In(loc)
	to := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return Filter{
		From: to.AddDate(0, 0, -n),
		To:   to,
	}
}

// Normalize converts both bounds to UTC and trims the dimension filters.
func (f Filter) Normalize() Filter {
	return Filter{
		From:    f.From.UTC(),
		To:      f.To.UTC(),
		Region:  strings.TrimSpace(f.Region),
		StoreID: strings.TrimSpace(f.StoreID),
	}
}

// Validate checks that the range is set and non-empty.
func (f Filter) Validate() error {
	if f.From.IsZero() || f.To.IsZero() {
		return fmt.Errorf("%w: from and to are required", ErrInvalidFilter)
	}
	if !f.To.After(f.From) {
		return fmt.Errorf("%w: to must be after from", ErrInvalidFilter)
	}
	return nil
}

// Duration returns the length of the range.
func (f Filter) Duration() time.Duration {
	return f.To.Sub(f.From)
}

// Previous returns the immediately preceding period of equal length with
// the same dimension filters.
func (f Filter) Previous() Filter {
	d := f.Duration()
	return Filter{
		From:    f.From.Add(-d),
		To:      f.From,
		Region:  f.Region,
		StoreID: f.StoreID,
	}
}

// NetworkWide reports whether the filter covers every store.
func (f Filter) NetworkWide() bool {
	return f.Region == "" && f.StoreID == ""
}

// DayAligned reports whether both bounds fall on midnight in loc.
func (f Filter) DayAligned(loc *time.Location) bool {
	return isMidnight(f.From.In(loc)) && isMidnight(f.To.In(loc))
}

// CacheKey returns a deterministic key for the normalized filter.
func (f Filter) CacheKey() string {
	n := f.Normalize()
	// Marshalling a struct of strings and times cannot fail.
	data, _ := json.Marshal(n)
	return cacheKeyPrefix + string(data)
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
