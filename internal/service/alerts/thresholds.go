package alerts

import (
	"errors"
	"fmt"

	"github.com/mamadbah2/herdsman/internal/domain/models"
)

// Thresholds carries the per-farm rating bands. They are explicit
// configuration so farms can tune them without code changes; Validate runs
// once at startup, never per computation.
type Thresholds struct {
	// Days-open band upper bounds: at or below DaysOpenOK raises nothing,
	// then low up to DaysOpenLow, medium up to DaysOpenMedium, high above.
	DaysOpenOK     int
	DaysOpenLow    int
	DaysOpenMedium int

	// Insemination-count bands for the current cycle: at or below
	// InseminationOK raises nothing, above InseminationHigh raises high,
	// in between low then medium.
	InseminationOK   int
	InseminationHigh int

	// LookaheadDays is how far ahead due-date reminders fire.
	LookaheadDays int
}

// DefaultThresholds mirrors the product's built-in rating bands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DaysOpenOK:       60,
		DaysOpenLow:      90,
		DaysOpenMedium:   120,
		InseminationOK:   2,
		InseminationHigh: 4,
		LookaheadDays:    7,
	}
}

// Validate rejects threshold tables that cannot classify consistently.
func (t Thresholds) Validate() error {
	if t.DaysOpenOK < 0 || t.InseminationOK < 0 || t.LookaheadDays < 0 {
		return errors.New("thresholds must not be negative")
	}
	if !(t.DaysOpenOK < t.DaysOpenLow && t.DaysOpenLow < t.DaysOpenMedium) {
		return fmt.Errorf("days-open bands must be strictly increasing, got %d/%d/%d", t.DaysOpenOK, t.DaysOpenLow, t.DaysOpenMedium)
	}
	if t.InseminationOK >= t.InseminationHigh {
		return fmt.Errorf("insemination bands must be increasing, got %d/%d", t.InseminationOK, t.InseminationHigh)
	}
	return nil
}

// RateDaysOpen maps a days-open value onto a severity. The second return is
// false when the value sits inside the acceptable band.
func (t Thresholds) RateDaysOpen(days int) (models.AlertSeverity, bool) {
	switch {
	case days <= t.DaysOpenOK:
		return "", false
	case days <= t.DaysOpenLow:
		return models.SeverityLow, true
	case days <= t.DaysOpenMedium:
		return models.SeverityMedium, true
	default:
		return models.SeverityHigh, true
	}
}

// RateInseminationCount maps a current-cycle service count onto a severity.
func (t Thresholds) RateInseminationCount(count int) (models.AlertSeverity, bool) {
	switch {
	case count <= t.InseminationOK:
		return "", false
	case count > t.InseminationHigh:
		return models.SeverityHigh, true
	case count == t.InseminationOK+1:
		return models.SeverityLow, true
	default:
		return models.SeverityMedium, true
	}
}
