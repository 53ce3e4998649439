package breeding

import (
	"time"

	"github.com/mamadbah2/herdsman/internal/domain/models"
)

// Params carries the farm-tunable constants used to derive schedule dates.
type Params struct {
	// GestationDays separates a confirmed conception from the expected
	// calving date.
	GestationDays int

	// PregCheckOffsetDays separates an insemination from its scheduled
	// pregnancy check.
	PregCheckOffsetDays int
}

// DefaultParams returns the product defaults for cattle.
func DefaultParams() Params {
	return Params{GestationDays: 282, PregCheckOffsetDays: 30}
}

// Resolve replays the animal's event history up to asOf and projects the
// current BreedingStatus. The input order does not matter; events are
// sorted before replay. Events after asOf are ignored.
func Resolve(animalID string, events []models.ReproEvent, asOf time.Time, p Params) (models.BreedingStatus, error) {
	sorted, err := PrepareEvents(animalID, events)
	if err != nil {
		return models.BreedingStatus{}, err
	}

	window := sorted[:0:0]
	for _, e := range sorted {
		if !e.OccurredAt.After(asOf) {
			window = append(window, e)
		}
	}

	c := SeedArrival(NewCycle(), window)
	for _, e := range window {
		if !e.IsBreedingRelevant() {
			continue
		}
		c = c.Apply(e)
	}

	status := models.BreedingStatus{
		AnimalID:          animalID,
		State:             c.State,
		Parity:            c.Parity,
		InseminationCount: c.InseminationCount,
		IsDifficultBirth:  c.DifficultBirth,
		DaysOpen:          c.DaysOpenAt(asOf),
	}

	if c.LastCalving != nil {
		d := DaysBetween(*c.LastCalving, asOf)
		status.DaysAfterCalving = &d
	}
	if c.LastInsemination != nil {
		d := DaysBetween(*c.LastInsemination, asOf)
		status.DaysAfterInsemination = &d
	}
	if c.State == models.CyclePregnant && c.PregnancyStart != nil {
		// Pregnancy days run from the confirming check; the calving
		// projection runs from the conception insemination.
		if c.ConfirmedAt != nil {
			d := DaysBetween(*c.ConfirmedAt, asOf)
			status.PregnancyDays = &d
		}

		due := c.PregnancyStart.AddDate(0, 0, p.GestationDays)
		status.ExpectedCalvingDate = &due
	}
	if c.State == models.CycleInseminated && c.LastInsemination != nil {
		check := c.LastInsemination.AddDate(0, 0, p.PregCheckOffsetDays)
		status.ScheduledPregnancyCheckDate = &check
	}

	return status, nil
}
