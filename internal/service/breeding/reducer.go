package breeding

import (
	"time"

	"github.com/mamadbah2/herdsman/internal/domain/models"
)

// Cycle is the running state of the breeding state machine for one animal.
// It is a plain value; Apply returns an updated copy, so replaying the same
// event list always produces the same final state.
type Cycle struct {
	State models.CycleState

	Parity            int
	InseminationCount int

	LastInsemination *time.Time
	// PregnancyStart is the insemination that led to the confirmed
	// pregnancy; ConfirmedAt is the positive check itself. Calving is
	// projected from the former, pregnancy days are counted from the
	// latter.
	PregnancyStart *time.Time
	ConfirmedAt    *time.Time
	LastCalving    *time.Time
	Arrival        *time.Time

	DifficultBirth bool
}

// NewCycle returns the initial OPEN state.
func NewCycle() Cycle {
	return Cycle{State: models.CycleOpen}
}

// Apply folds a single event into the cycle state. Events that are not
// valid for the current state (e.g. a pregnancy check while OPEN) are
// ignored rather than rejected, matching how paper records arrive.
func (c Cycle) Apply(e models.ReproEvent) Cycle {
	t := e.OccurredAt

	switch e.Type {
	case models.EventArrival:
		c.Arrival = &t

	case models.EventInsemination:
		// First service opens the cycle; a service while INSEMINATED or
		// PREGNANT is a re-service and keeps counting.
		c.State = models.CycleInseminated
		c.InseminationCount++
		c.LastInsemination = &t
		c.PregnancyStart = nil
		c.ConfirmedAt = nil

	case models.EventPregnancyCheck:
		if c.State != models.CycleInseminated || e.PregnancyResult == nil {
			return c
		}
		if *e.PregnancyResult {
			c.State = models.CyclePregnant
			c.PregnancyStart = c.LastInsemination
			c.ConfirmedAt = &t
		} else {
			// Still the same open cycle: the service count persists.
			c.State = models.CycleOpen
		}

	case models.EventCalving:
		c.State = models.CycleOpen
		c.Parity++
		c.LastCalving = &t
		c.InseminationCount = 0
		c.LastInsemination = nil
		c.PregnancyStart = nil
		c.ConfirmedAt = nil
		c.DifficultBirth = e.DifficultBirth

	case models.EventAbortion, models.EventStillbirth:
		if c.State != models.CyclePregnant {
			return c
		}
		// Cycle ends without incrementing parity.
		c.State = models.CycleOpen
		c.InseminationCount = 0
		c.LastInsemination = nil
		c.PregnancyStart = nil
		c.ConfirmedAt = nil
	}

	return c
}

// ReferencePoint is the anchor for days-open arithmetic: the later of the
// last calving and the farm arrival, nil when neither is known.
func (c Cycle) ReferencePoint() *time.Time {
	switch {
	case c.LastCalving == nil:
		return c.Arrival
	case c.Arrival == nil:
		return c.LastCalving
	case c.Arrival.After(*c.LastCalving):
		return c.Arrival
	default:
		return c.LastCalving
	}
}

// DaysOpenAt computes days open as of t: from the reference point up to the
// most recent insemination of the current cycle, or up to t when the animal
// has not been served since the reference point. Nil when no reference
// point exists.
func (c Cycle) DaysOpenAt(t time.Time) *int {
	ref := c.ReferencePoint()
	if ref == nil {
		return nil
	}
	end := t
	if c.LastInsemination != nil {
		end = *c.LastInsemination
	}
	d := DaysBetween(*ref, end)
	return &d
}

// DaysBetween returns whole days from a to b, negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
