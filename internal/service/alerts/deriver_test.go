package alerts_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdsman/internal/domain/models"
	"github.com/mamadbah2/herdsman/internal/service/alerts"
)

var asOf = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func intPtr(n int) *int { return &n }

func openStatus(animalID string, daysOpen int) models.BreedingStatus {
	return models.BreedingStatus{
		AnimalID: animalID,
		State:    models.CycleOpen,
		DaysOpen: intPtr(daysOpen),
	}
}

func findAlert(t *testing.T, alerts []models.Alert, alertType models.AlertType) models.Alert {
	t.Helper()
	for _, a := range alerts {
		if a.Type == alertType {
			return a
		}
	}
	t.Fatalf("no %s alert in %#v", alertType, alerts)
	return models.Alert{}
}

func TestThresholds_Validate(t *testing.T) {
	require.NoError(t, alerts.DefaultThresholds().Validate())

	bad := alerts.DefaultThresholds()
	bad.DaysOpenLow = 50
	assert.Error(t, bad.Validate())

	bad = alerts.DefaultThresholds()
	bad.LookaheadDays = -1
	assert.Error(t, bad.Validate())

	bad = alerts.DefaultThresholds()
	bad.InseminationHigh = 1
	assert.Error(t, bad.Validate())
}

func TestDerive_DaysOpenBands(t *testing.T) {
	cases := []struct {
		daysOpen int
		severity models.AlertSeverity
		raised   bool
	}{
		{45, "", false},
		{60, "", false},
		{61, models.SeverityLow, true},
		{90, models.SeverityLow, true},
		{95, models.SeverityMedium, true},
		{120, models.SeverityMedium, true},
		{121, models.SeverityHigh, true},
	}

	for _, tc := range cases {
		alerts := alerts.Derive([]models.BreedingStatus{openStatus("cow-1", tc.daysOpen)}, asOf, alerts.DefaultThresholds())
		if !tc.raised {
			assert.Empty(t, alerts, "daysOpen=%d", tc.daysOpen)
			continue
		}
		require.Len(t, alerts, 1, "daysOpen=%d", tc.daysOpen)
		assert.Equal(t, models.AlertDaysOpen, alerts[0].Type)
		assert.Equal(t, tc.severity, alerts[0].Severity, "daysOpen=%d", tc.daysOpen)
		assert.Equal(t, models.AlertActive, alerts[0].Status)
	}
}

func TestDerive_InseminationCountBands(t *testing.T) {
	cases := []struct {
		count    int
		severity models.AlertSeverity
		raised   bool
	}{
		{0, "", false},
		{2, "", false},
		{3, models.SeverityLow, true},
		{4, models.SeverityMedium, true},
		{5, models.SeverityHigh, true},
	}

	for _, tc := range cases {
		status := models.BreedingStatus{
			AnimalID:          "cow-1",
			State:             models.CycleOpen,
			InseminationCount: tc.count,
		}
		alerts := alerts.Derive([]models.BreedingStatus{status}, asOf, alerts.DefaultThresholds())
		if !tc.raised {
			assert.Empty(t, alerts, "count=%d", tc.count)
			continue
		}
		require.Len(t, alerts, 1, "count=%d", tc.count)
		assert.Equal(t, models.AlertRepeatBreeder, alerts[0].Type)
		assert.Equal(t, tc.severity, alerts[0].Severity, "count=%d", tc.count)
	}
}

func TestDerive_PregnancyCheckDueEscalatesWhenPast(t *testing.T) {
	upcoming := asOf.AddDate(0, 0, 3)
	past := asOf.AddDate(0, 0, -2)
	farOff := asOf.AddDate(0, 0, 20)

	status := models.BreedingStatus{
		AnimalID:                    "cow-1",
		State:                       models.CycleInseminated,
		ScheduledPregnancyCheckDate: &upcoming,
	}
	derived := alerts.Derive([]models.BreedingStatus{status}, asOf, alerts.DefaultThresholds())
	a := findAlert(t, derived, models.AlertPregnancyCheckDue)
	assert.Equal(t, models.SeverityMedium, a.Severity)
	require.NotNil(t, a.DueAt)
	assert.Equal(t, upcoming, *a.DueAt)

	status.ScheduledPregnancyCheckDate = &past
	derived = alerts.Derive([]models.BreedingStatus{status}, asOf, alerts.DefaultThresholds())
	a = findAlert(t, derived, models.AlertPregnancyCheckDue)
	assert.Equal(t, models.SeverityHigh, a.Severity)

	status.ScheduledPregnancyCheckDate = &farOff
	derived = alerts.Derive([]models.BreedingStatus{status}, asOf, alerts.DefaultThresholds())
	for _, got := range derived {
		assert.NotEqual(t, models.AlertPregnancyCheckDue, got.Type)
	}
}

func TestDerive_CalvingReminder(t *testing.T) {
	due := asOf.AddDate(0, 0, 5)
	status := models.BreedingStatus{
		AnimalID:            "cow-1",
		State:               models.CyclePregnant,
		ExpectedCalvingDate: &due,
	}

	alerts := alerts.Derive([]models.BreedingStatus{status}, asOf, alerts.DefaultThresholds())
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertCalvingDue, alerts[0].Type)
	assert.Equal(t, models.SeverityMedium, alerts[0].Severity)
}

func TestDerive_PregnantAnimalsSkipBreedingFindings(t *testing.T) {
	status := models.BreedingStatus{
		AnimalID:          "cow-1",
		State:             models.CyclePregnant,
		DaysOpen:          intPtr(130),
		InseminationCount: 6,
	}

	alerts := alerts.Derive([]models.BreedingStatus{status}, asOf, alerts.DefaultThresholds())
	assert.Empty(t, alerts)
}

func TestDerive_StableIDs(t *testing.T) {
	derived := alerts.Derive([]models.BreedingStatus{openStatus("cow-1", 95)}, asOf, alerts.DefaultThresholds())
	require.Len(t, derived, 1)

	again := alerts.Derive([]models.BreedingStatus{openStatus("cow-1", 130)}, asOf, alerts.DefaultThresholds())
	require.Len(t, again, 1)

	// Same signal on the same animal keeps its id across re-derivations,
	// so stored acknowledgements still match.
	assert.Equal(t, derived[0].ID, again[0].ID)
	assert.NotEqual(t, derived[0].ID, alerts.AlertID(models.AlertDaysOpen, "cow-2"))
}

func TestDerive_SortedByAnimalThenType(t *testing.T) {
	due := asOf.AddDate(0, 0, 2)
	statuses := []models.BreedingStatus{
		{AnimalID: "cow-2", State: models.CycleOpen, DaysOpen: intPtr(100)},
		{AnimalID: "cow-1", State: models.CycleInseminated, DaysOpen: intPtr(100), ScheduledPregnancyCheckDate: &due},
	}

	alerts := alerts.Derive(statuses, asOf, alerts.DefaultThresholds())
	require.Len(t, alerts, 3)
	assert.Equal(t, "cow-1", alerts[0].AnimalID)
	assert.Equal(t, "cow-1", alerts[1].AnimalID)
	assert.Equal(t, "cow-2", alerts[2].AnimalID)
}
