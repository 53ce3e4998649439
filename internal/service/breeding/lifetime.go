package breeding

import (
	"time"

	"github.com/mamadbah2/herdsman/internal/domain/models"
)

// Aggregate walks the animal's full history once and accumulates lifetime
// breeding statistics. Every completed cycle (ending in calving, abortion or
// stillbirth) contributes at most one sample to each average; cycles with no
// qualifying transition contribute nothing, so empty histories yield nil
// averages rather than zeroes.
func Aggregate(animalID string, events []models.ReproEvent) (models.BreedingSummary, error) {
	sorted, err := PrepareEvents(animalID, events)
	if err != nil {
		return models.BreedingSummary{}, err
	}

	summary := models.BreedingSummary{AnimalID: animalID}

	var (
		daysOpenSamples  []float64
		pregnancyPeriods []float64
		calvingIntervals []float64

		pendingDaysOpen *int
		pendingPregnant *time.Time
		reachedPregnant bool

		prevCalving *time.Time
	)

	closeCycle := func(end time.Time) {
		if pendingPregnant != nil {
			pregnancyPeriods = append(pregnancyPeriods, float64(DaysBetween(*pendingPregnant, end)))
			if pendingDaysOpen != nil {
				daysOpenSamples = append(daysOpenSamples, float64(*pendingDaysOpen))
			}
		}
		pendingDaysOpen = nil
		pendingPregnant = nil
		reachedPregnant = false
	}

	c := SeedArrival(NewCycle(), sorted)
	for _, e := range sorted {
		if !e.IsBreedingRelevant() {
			continue
		}

		prev := c
		c = c.Apply(e)

		switch e.Type {
		case models.EventInsemination:
			summary.TotalInseminationCount++
			// A re-service voids the previous conception of this cycle.
			pendingDaysOpen = nil
			pendingPregnant = nil

		case models.EventPregnancyCheck:
			if prev.State == models.CycleInseminated && c.State == models.CyclePregnant {
				if !reachedPregnant {
					summary.PregnancyHeadCount++
					reachedPregnant = true
				}
				pendingPregnant = c.PregnancyStart
				if ref := prev.ReferencePoint(); ref != nil && c.PregnancyStart != nil {
					d := DaysBetween(*ref, *c.PregnancyStart)
					pendingDaysOpen = &d
				}
			}

		case models.EventCalving:
			if e.DifficultBirth {
				summary.DifficultBirthCount++
			}
			if prevCalving != nil {
				calvingIntervals = append(calvingIntervals, float64(DaysBetween(*prevCalving, e.OccurredAt)))
			}
			t := e.OccurredAt
			prevCalving = &t
			closeCycle(e.OccurredAt)

		case models.EventAbortion, models.EventStillbirth:
			if prev.State == models.CyclePregnant {
				closeCycle(e.OccurredAt)
			}
		}
	}

	summary.AverageDaysOpen = mean(daysOpenSamples)
	summary.AveragePregnancyPeriod = mean(pregnancyPeriods)
	summary.AverageCalvingInterval = mean(calvingIntervals)

	if summary.TotalInseminationCount > 0 {
		rate := float64(summary.PregnancyHeadCount) / float64(summary.TotalInseminationCount) * 100
		summary.PregnancySuccessRate = &rate
	}

	return summary, nil
}

func mean(samples []float64) *float64 {
	if len(samples) == 0 {
		return nil
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	m := sum / float64(len(samples))
	return &m
}
