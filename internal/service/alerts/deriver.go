package alerts

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/herdsman/internal/domain/models"
)

// alertNamespace seeds deterministic alert ids so a re-derived alert for the
// same (type, animal) pair always carries the same id and can be matched
// against previously acknowledged or dismissed entries.
var alertNamespace = uuid.MustParse("8f1c1d5e-7a6b-4c3d-9e2f-5b4a3c2d1e0f")

// AlertID derives the stable id for one signal on one animal.
func AlertID(alertType models.AlertType, animalID string) string {
	return uuid.NewSHA1(alertNamespace, []byte(string(alertType)+":"+animalID)).String()
}

// Derive evaluates every animal's current status against the threshold
// table and emits fresh active alerts. It never persists anything; callers
// reconcile the result with the stored status map by id.
func Derive(statuses []models.BreedingStatus, asOf time.Time, t Thresholds) []models.Alert {
	out := make([]models.Alert, 0)

	for _, s := range statuses {
		// A pregnant animal needs no breeding attention until it calves;
		// days-open and service-count findings are frozen history there.
		if s.State != models.CyclePregnant {
			if s.DaysOpen != nil {
				if sev, ok := t.RateDaysOpen(*s.DaysOpen); ok {
					out = append(out, models.Alert{
						ID:       AlertID(models.AlertDaysOpen, s.AnimalID),
						Type:     models.AlertDaysOpen,
						Severity: sev,
						AnimalID: s.AnimalID,
						Message:  fmt.Sprintf("Animal %s has been open for %d days.", s.AnimalID, *s.DaysOpen),
						Status:   models.AlertActive,
					})
				}
			}
			if sev, ok := t.RateInseminationCount(s.InseminationCount); ok {
				out = append(out, models.Alert{
					ID:       AlertID(models.AlertRepeatBreeder, s.AnimalID),
					Type:     models.AlertRepeatBreeder,
					Severity: sev,
					AnimalID: s.AnimalID,
					Message:  fmt.Sprintf("Animal %s has %d inseminations in the current cycle.", s.AnimalID, s.InseminationCount),
					Status:   models.AlertActive,
				})
			}
		}

		if s.ScheduledPregnancyCheckDate != nil {
			due := *s.ScheduledPregnancyCheckDate
			horizon := asOf.AddDate(0, 0, t.LookaheadDays)
			switch {
			case due.Before(asOf):
				out = append(out, models.Alert{
					ID:       AlertID(models.AlertPregnancyCheckDue, s.AnimalID),
					Type:     models.AlertPregnancyCheckDue,
					Severity: models.SeverityHigh,
					AnimalID: s.AnimalID,
					DueAt:    &due,
					Message:  fmt.Sprintf("Pregnancy check for animal %s was due on %s.", s.AnimalID, due.Format("2006-01-02")),
					Status:   models.AlertActive,
				})
			case !due.After(horizon):
				out = append(out, models.Alert{
					ID:       AlertID(models.AlertPregnancyCheckDue, s.AnimalID),
					Type:     models.AlertPregnancyCheckDue,
					Severity: models.SeverityMedium,
					AnimalID: s.AnimalID,
					DueAt:    &due,
					Message:  fmt.Sprintf("Pregnancy check for animal %s is due on %s.", s.AnimalID, due.Format("2006-01-02")),
					Status:   models.AlertActive,
				})
			}
		}

		if s.ExpectedCalvingDate != nil {
			due := *s.ExpectedCalvingDate
			horizon := asOf.AddDate(0, 0, t.LookaheadDays)
			if !due.Before(asOf) && !due.After(horizon) {
				// A reminder, not a problem.
				out = append(out, models.Alert{
					ID:       AlertID(models.AlertCalvingDue, s.AnimalID),
					Type:     models.AlertCalvingDue,
					Severity: models.SeverityMedium,
					AnimalID: s.AnimalID,
					DueAt:    &due,
					Message:  fmt.Sprintf("Animal %s is expected to calve on %s.", s.AnimalID, due.Format("2006-01-02")),
					Status:   models.AlertActive,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AnimalID != out[j].AnimalID {
			return out[i].AnimalID < out[j].AnimalID
		}
		return out[i].Type < out[j].Type
	})

	return out
}
