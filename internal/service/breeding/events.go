package breeding

import (
	"fmt"
	"sort"

	"github.com/mamadbah2/herdsman/internal/domain/models"
)

// AnimalError reports a per-animal computation failure. Herd-level callers
// isolate these and keep going for the rest of the batch.
type AnimalError struct {
	AnimalID string
	Reason   string
}

func (e *AnimalError) Error() string {
	return fmt.Sprintf("animal %s: %s", e.AnimalID, e.Reason)
}

// PrepareEvents validates the raw history and returns a copy sorted
// ascending by occurrence time. The original slice is never mutated.
func PrepareEvents(animalID string, events []models.ReproEvent) ([]models.ReproEvent, error) {
	sorted := make([]models.ReproEvent, len(events))
	copy(sorted, events)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})

	for _, e := range sorted {
		if !e.IsBreedingRelevant() {
			continue
		}
		if e.OccurredAt.IsZero() {
			return nil, &AnimalError{AnimalID: animalID, Reason: fmt.Sprintf("%s event without timestamp", e.Type)}
		}
		if e.AnimalID != "" && animalID != "" && e.AnimalID != animalID {
			return nil, &AnimalError{AnimalID: animalID, Reason: fmt.Sprintf("event belongs to animal %s", e.AnimalID)}
		}
		if e.Type == models.EventPregnancyCheck && e.PregnancyResult == nil {
			return nil, &AnimalError{AnimalID: animalID, Reason: "pregnancy check without result"}
		}
	}

	return sorted, nil
}

// SeedArrival supplies a reference point for animals whose records never
// include an explicit ARRIVAL: the first relevant event stands in for the
// day the animal joined the herd.
func SeedArrival(c Cycle, events []models.ReproEvent) Cycle {
	for _, e := range events {
		if e.Type == models.EventArrival {
			return c
		}
	}
	for _, e := range events {
		if e.IsBreedingRelevant() {
			t := e.OccurredAt
			c.Arrival = &t
			return c
		}
	}
	return c
}
