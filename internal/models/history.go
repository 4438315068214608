package models

import "time"

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange7Days shows snapshots from the last 7 days.
	TimeRange7Days TimeRange = iota
	// TimeRange30Days shows snapshots from the last 30 days.
	TimeRange30Days
	// TimeRange90Days shows snapshots from the last 90 days.
	TimeRange90Days
	// TimeRangeAllTime shows every stored snapshot.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRange90Days:
		return "90 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range (0 = unlimited).
func (t TimeRange) Days() int {
	switch t {
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	case TimeRange90Days:
		return 90
	case TimeRangeAllTime:
		return 0
	default:
		return 30
	}
}

// Since returns the lower bound for the range relative to now.
// The zero time means no bound.
func (t TimeRange) Since(now time.Time) time.Time {
	days := t.Days()
	if days == 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -days)
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// SharePoint is one stored snapshot reduced to category shares.
type SharePoint struct {
	FetchedAt  time.Time
	Shares     map[string]int // category tag -> percent
	TopLang    string
	TotalBytes int64
	Languages  int
}

// HistorySummary holds the share history for one login.
type HistorySummary struct {
	First     time.Time
	Last      time.Time
	Login     string
	Points    []SharePoint
	TimeRange TimeRange
}

// HasData returns true if there is at least one stored snapshot.
func (h *HistorySummary) HasData() bool {
	return h != nil && len(h.Points) > 0
}

// Series returns the share values of one category in chronological order.
func (h *HistorySummary) Series(tag string) []float64 {
	if h == nil {
		return nil
	}
	out := make([]float64, 0, len(h.Points))
	for _, p := range h.Points {
		out = append(out, float64(p.Shares[tag]))
	}
	return out
}
