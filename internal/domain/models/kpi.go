package models

import "time"

// Period is a half-open time window [Start, End).
type Period struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// Contains reports whether t falls inside the window.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Month renders the period's start month as YYYY-MM.
func (p Period) Month() string {
	return p.Start.Format("2006-01")
}

// MonthPeriod builds the calendar-month window containing t, in t's location.
func MonthPeriod(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

// HerdKpiSnapshot aggregates breeding performance across the herd for one
// period. Each metric is independently nil when the period produced zero
// qualifying samples.
type HerdKpiSnapshot struct {
	Period Period `bson:"period" json:"period"`

	ConceptionRate     *float64 `bson:"conception_rate,omitempty" json:"conception_rate"`
	AvgDaysOpen        *float64 `bson:"avg_days_open,omitempty" json:"avg_days_open"`
	AvgCalvingInterval *float64 `bson:"avg_calving_interval,omitempty" json:"avg_calving_interval"`
	AIPerConception    *float64 `bson:"ai_per_conception,omitempty" json:"ai_per_conception"`

	// ExcludedAnimals counts animals skipped because their history failed
	// validation; their samples never enter the means.
	ExcludedAnimals int `bson:"excluded_animals" json:"excluded_animals"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// KpiTrendMetrics holds month-over-month signed differences. A metric is nil
// whenever either side of the subtraction is nil.
type KpiTrendMetrics struct {
	ConceptionRate     *float64 `json:"conception_rate"`
	AvgDaysOpen        *float64 `json:"avg_days_open"`
	AvgCalvingInterval *float64 `json:"avg_calving_interval"`
	AIPerConception    *float64 `json:"ai_per_conception"`
}

// KpiTrendDelta is the trend entry for one month against its predecessor.
type KpiTrendDelta struct {
	Month   string          `json:"month"`
	Metrics KpiTrendMetrics `json:"metrics"`
}
