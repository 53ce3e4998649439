package kpi

import (
	"sort"
	"sync"

	"github.com/mamadbah2/herdsman/internal/domain/models"
	"github.com/mamadbah2/herdsman/internal/service/breeding"
)

// animalSamples carries the in-period contributions of one animal.
type animalSamples struct {
	inseminations int
	conceptions   int

	daysOpen         []float64
	aiPerConception  []float64
	calvingIntervals []float64

	err error
}

// Snapshot computes herd KPIs for one period. Each entry of herdEvents is
// the full history of an animal active in the period; only transitions whose
// triggering event falls inside the window contribute samples, though their
// context (e.g. the previous calving) may lie outside it.
//
// Per-animal histories are replayed concurrently; animals whose history
// fails validation are excluded and counted, never failing the batch.
func Snapshot(herdEvents map[string][]models.ReproEvent, period models.Period) models.HerdKpiSnapshot {
	results := make(map[string]animalSamples, len(herdEvents))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for animalID, events := range herdEvents {
		wg.Add(1)
		go func(id string, evs []models.ReproEvent) {
			defer wg.Done()
			samples := collect(id, evs, period)
			mu.Lock()
			results[id] = samples
			mu.Unlock()
		}(animalID, events)
	}
	wg.Wait()

	// Fold in animal-id order so float accumulation is deterministic.
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var total animalSamples
	snap := models.HerdKpiSnapshot{Period: period}

	for _, id := range ids {
		s := results[id]
		if s.err != nil {
			snap.ExcludedAnimals++
			continue
		}
		total.inseminations += s.inseminations
		total.conceptions += s.conceptions
		total.daysOpen = append(total.daysOpen, s.daysOpen...)
		total.aiPerConception = append(total.aiPerConception, s.aiPerConception...)
		total.calvingIntervals = append(total.calvingIntervals, s.calvingIntervals...)
	}

	if total.inseminations > 0 {
		rate := float64(total.conceptions) / float64(total.inseminations) * 100
		snap.ConceptionRate = &rate
	}
	snap.AvgDaysOpen = mean(total.daysOpen)
	snap.AvgCalvingInterval = mean(total.calvingIntervals)
	snap.AIPerConception = mean(total.aiPerConception)

	return snap
}

func collect(animalID string, events []models.ReproEvent, period models.Period) animalSamples {
	sorted, err := breeding.PrepareEvents(animalID, events)
	if err != nil {
		return animalSamples{err: err}
	}

	var out animalSamples

	// A cycle re-serviced while pregnant and confirmed again is still one
	// conception; only its first confirming check counts, and the cycle's
	// service-count sample follows the surviving confirmation.
	cycleConceived := false
	cycleSample := -1

	c := breeding.SeedArrival(breeding.NewCycle(), sorted)
	for _, e := range sorted {
		if !e.IsBreedingRelevant() {
			continue
		}
		if !e.OccurredAt.Before(period.End) {
			break
		}

		switch e.Type {
		case models.EventInsemination:
			if period.Contains(e.OccurredAt) {
				out.inseminations++
				if ref := c.ReferencePoint(); ref != nil {
					out.daysOpen = append(out.daysOpen, float64(breeding.DaysBetween(*ref, e.OccurredAt)))
				}
			}

		case models.EventPregnancyCheck:
			confirmed := c.State == models.CycleInseminated && e.PregnancyResult != nil && *e.PregnancyResult
			switch {
			case confirmed && !cycleConceived:
				cycleConceived = true
				if period.Contains(e.OccurredAt) {
					out.conceptions++
					out.aiPerConception = append(out.aiPerConception, float64(c.InseminationCount))
					cycleSample = len(out.aiPerConception) - 1
				}
			case confirmed && cycleSample >= 0:
				out.aiPerConception[cycleSample] = float64(c.InseminationCount)
			}

		case models.EventCalving:
			if period.Contains(e.OccurredAt) && c.LastCalving != nil {
				out.calvingIntervals = append(out.calvingIntervals, float64(breeding.DaysBetween(*c.LastCalving, e.OccurredAt)))
			}
			cycleConceived = false
			cycleSample = -1

		case models.EventAbortion, models.EventStillbirth:
			if c.State == models.CyclePregnant {
				cycleConceived = false
				cycleSample = -1
			}
		}

		c = c.Apply(e)
	}

	return out
}

// Delta subtracts the previous snapshot from the current one per metric.
// A metric is nil whenever either side is nil.
func Delta(current, previous models.HerdKpiSnapshot) models.KpiTrendDelta {
	return models.KpiTrendDelta{
		Month: current.Period.Month(),
		Metrics: models.KpiTrendMetrics{
			ConceptionRate:     sub(current.ConceptionRate, previous.ConceptionRate),
			AvgDaysOpen:        sub(current.AvgDaysOpen, previous.AvgDaysOpen),
			AvgCalvingInterval: sub(current.AvgCalvingInterval, previous.AvgCalvingInterval),
			AIPerConception:    sub(current.AIPerConception, previous.AIPerConception),
		},
	}
}

// Series turns consecutive snapshots (ascending by period) into
// month-over-month deltas; the first snapshot has no predecessor and yields
// no entry.
func Series(snapshots []models.HerdKpiSnapshot) []models.KpiTrendDelta {
	deltas := make([]models.KpiTrendDelta, 0, len(snapshots))
	for i := 1; i < len(snapshots); i++ {
		deltas = append(deltas, Delta(snapshots[i], snapshots[i-1]))
	}
	return deltas
}

func sub(current, previous *float64) *float64 {
	if current == nil || previous == nil {
		return nil
	}
	d := *current - *previous
	return &d
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
