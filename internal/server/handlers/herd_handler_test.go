package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdsman/internal/domain/models"
	"github.com/mamadbah2/herdsman/internal/repository/mongodb"
	"github.com/mamadbah2/herdsman/internal/server/handlers"
	"github.com/mamadbah2/herdsman/internal/server/router"
	"github.com/mamadbah2/herdsman/internal/service/alerts"
	"github.com/mamadbah2/herdsman/internal/service/breeding"
	"github.com/mamadbah2/herdsman/internal/service/herd"
)

type fakeRepo struct {
	animals       map[string]models.Animal
	events        map[string][]models.ReproEvent
	snapshots     []models.HerdKpiSnapshot
	alertStatuses map[string]models.AlertStatus
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		animals:       map[string]models.Animal{},
		events:        map[string][]models.ReproEvent{},
		alertStatuses: map[string]models.AlertStatus{},
	}
}

func (f *fakeRepo) SaveEvent(_ context.Context, e models.ReproEvent) error {
	f.events[e.AnimalID] = append(f.events[e.AnimalID], e)
	return nil
}

func (f *fakeRepo) EventsForAnimal(_ context.Context, animalID string) ([]models.ReproEvent, error) {
	return f.events[animalID], nil
}

func (f *fakeRepo) EventsForHerd(_ context.Context, period models.Period) (map[string][]models.ReproEvent, error) {
	herdEvents := map[string][]models.ReproEvent{}
	for id, history := range f.events {
		active := false
		var trimmed []models.ReproEvent
		for _, e := range history {
			if period.Contains(e.OccurredAt) {
				active = true
			}
			if e.OccurredAt.Before(period.End) {
				trimmed = append(trimmed, e)
			}
		}
		if active {
			herdEvents[id] = trimmed
		}
	}
	return herdEvents, nil
}

func (f *fakeRepo) SaveSnapshot(_ context.Context, snap models.HerdKpiSnapshot) error {
	f.snapshots = append(f.snapshots, snap)
	return nil
}

func (f *fakeRepo) SnapshotsBetween(_ context.Context, from, to time.Time) ([]models.HerdKpiSnapshot, error) {
	var out []models.HerdKpiSnapshot
	for _, s := range f.snapshots {
		if !s.Period.Start.Before(from) && s.Period.Start.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpsertAlertStatus(_ context.Context, alertID string, status models.AlertStatus) error {
	f.alertStatuses[alertID] = status
	return nil
}

func (f *fakeRepo) AlertStatuses(_ context.Context) (map[string]models.AlertStatus, error) {
	return f.alertStatuses, nil
}

func (f *fakeRepo) SaveAnimal(_ context.Context, a models.Animal) error {
	f.animals[a.ID] = a
	return nil
}

func (f *fakeRepo) GetAnimal(_ context.Context, id string) (models.Animal, error) {
	a, ok := f.animals[id]
	if !ok {
		return models.Animal{}, mongodb.ErrNotFound
	}
	return a, nil
}

func (f *fakeRepo) ListAnimals(_ context.Context) ([]models.Animal, error) {
	var out []models.Animal
	for _, a := range f.animals {
		out = append(out, a)
	}
	return out, nil
}

func newTestServer(repo mongodb.Repository) http.Handler {
	svc := herd.NewService(repo, breeding.DefaultParams(), alerts.DefaultThresholds(), nil)
	handler := handlers.NewHerdHandler(svc, nil, nil)
	return router.New(handler, nil)
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnimalStatusEndpoint(t *testing.T) {
	repo := newFakeRepo()
	repo.animals["cow-1"] = models.Animal{ID: "cow-1", BreedingMemo: "watch heat closely"}
	repo.events["cow-1"] = []models.ReproEvent{
		{AnimalID: "cow-1", Type: models.EventInsemination, OccurredAt: time.Now().UTC().AddDate(0, 0, -10)},
	}
	h := newTestServer(repo)

	rec := doRequest(t, h, http.MethodGet, "/animals/cow-1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.BreedingStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "cow-1", status.AnimalID)
	assert.Equal(t, models.CycleInseminated, status.State)
	assert.Equal(t, 1, status.InseminationCount)
	assert.Equal(t, "watch heat closely", status.BreedingMemo)
	require.NotNil(t, status.DaysAfterInsemination)
	assert.Equal(t, 10, *status.DaysAfterInsemination)
	assert.Nil(t, status.PregnancyDays)
}

func TestAnimalStatusEndpoint_NotFound(t *testing.T) {
	h := newTestServer(newFakeRepo())

	rec := doRequest(t, h, http.MethodGet, "/animals/ghost/status", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnimalStatusEndpoint_MalformedHistory(t *testing.T) {
	repo := newFakeRepo()
	repo.events["cow-1"] = []models.ReproEvent{
		{AnimalID: "cow-1", Type: models.EventPregnancyCheck, OccurredAt: time.Now().UTC().AddDate(0, 0, -5)},
	}
	h := newTestServer(repo)

	rec := doRequest(t, h, http.MethodGet, "/animals/cow-1/status", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "cow-1", body["animal_id"])
}

func TestAnimalSummaryEndpoint(t *testing.T) {
	repo := newFakeRepo()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.events["cow-1"] = []models.ReproEvent{
		{AnimalID: "cow-1", Type: models.EventInsemination, OccurredAt: base},
		{AnimalID: "cow-1", Type: models.EventInsemination, OccurredAt: base.AddDate(0, 0, 40)},
		{AnimalID: "cow-1", Type: models.EventPregnancyCheck, OccurredAt: base.AddDate(0, 0, 70), PregnancyResult: boolPtr(true)},
	}
	h := newTestServer(repo)

	rec := doRequest(t, h, http.MethodGet, "/animals/cow-1/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary models.BreedingSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.TotalInseminationCount)
	assert.Equal(t, 1, summary.PregnancyHeadCount)
	require.NotNil(t, summary.PregnancySuccessRate)
	assert.InDelta(t, 50.0, *summary.PregnancySuccessRate, 1e-9)
}

func TestHerdStatusesEndpoint_IsolatesFailures(t *testing.T) {
	repo := newFakeRepo()
	repo.animals["cow-1"] = models.Animal{ID: "cow-1"}
	repo.animals["cow-2"] = models.Animal{ID: "cow-2"}
	repo.events["cow-1"] = []models.ReproEvent{
		{AnimalID: "cow-1", Type: models.EventInsemination, OccurredAt: time.Now().UTC().AddDate(0, 0, -3)},
	}
	repo.events["cow-2"] = []models.ReproEvent{
		{AnimalID: "cow-2", Type: models.EventPregnancyCheck, OccurredAt: time.Now().UTC().AddDate(0, 0, -3)},
	}
	h := newTestServer(repo)

	rec := doRequest(t, h, http.MethodGet, "/herd/statuses", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Statuses []models.BreedingStatus `json:"statuses"`
		Failures []herd.Failure          `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Statuses, 1)
	assert.Equal(t, "cow-1", body.Statuses[0].AnimalID)
	require.Len(t, body.Failures, 1)
	assert.Equal(t, "cow-2", body.Failures[0].AnimalID)
}

func TestHerdKpiEndpoint(t *testing.T) {
	repo := newFakeRepo()
	repo.events["cow-1"] = []models.ReproEvent{
		{AnimalID: "cow-1", Type: models.EventInsemination, OccurredAt: time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)},
		{AnimalID: "cow-1", Type: models.EventPregnancyCheck, OccurredAt: time.Date(2026, 6, 25, 0, 0, 0, 0, time.UTC), PregnancyResult: boolPtr(true)},
	}
	h := newTestServer(repo)

	rec := doRequest(t, h, http.MethodGet, "/herd/kpi?month=2026-06", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap models.HerdKpiSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.NotNil(t, snap.ConceptionRate)
	assert.InDelta(t, 100.0, *snap.ConceptionRate, 1e-9)
	assert.Len(t, repo.snapshots, 1)
}

func TestHerdKpiEndpoint_BadMonth(t *testing.T) {
	h := newTestServer(newFakeRepo())

	rec := doRequest(t, h, http.MethodGet, "/herd/kpi?month=june", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKpiTrendsEndpoint_BadMonths(t *testing.T) {
	h := newTestServer(newFakeRepo())

	rec := doRequest(t, h, http.MethodGet, "/herd/kpi/trends?months=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAlertsEndpoint_KeepsStoredDecisions(t *testing.T) {
	repo := newFakeRepo()
	repo.animals["cow-1"] = models.Animal{ID: "cow-1"}
	repo.events["cow-1"] = []models.ReproEvent{
		{AnimalID: "cow-1", Type: models.EventCalving, OccurredAt: time.Now().UTC().AddDate(0, 0, -200)},
		{AnimalID: "cow-1", Type: models.EventInsemination, OccurredAt: time.Now().UTC().AddDate(0, 0, -95)},
	}
	repo.alertStatuses[alerts.AlertID(models.AlertDaysOpen, "cow-1")] = models.AlertAcknowledged
	h := newTestServer(repo)

	rec := doRequest(t, h, http.MethodGet, "/alerts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Alerts []models.Alert `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Alerts)

	var daysOpen *models.Alert
	for i := range body.Alerts {
		if body.Alerts[i].Type == models.AlertDaysOpen {
			daysOpen = &body.Alerts[i]
		}
	}
	require.NotNil(t, daysOpen)
	assert.Equal(t, models.AlertAcknowledged, daysOpen.Status)
}

func TestUpdateAlertStatusEndpoint(t *testing.T) {
	repo := newFakeRepo()
	h := newTestServer(repo)

	rec := doRequest(t, h, http.MethodPatch, "/alerts/abc/status", `{"status":"resolved"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, models.AlertResolved, repo.alertStatuses["abc"])

	rec = doRequest(t, h, http.MethodPatch, "/alerts/abc/status", `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEventEndpoint(t *testing.T) {
	repo := newFakeRepo()
	h := newTestServer(repo)

	rec := doRequest(t, h, http.MethodPost, "/events",
		`{"animal_id":"cow-1","type":"INSEMINATION","occurred_at":"2026-06-05T00:00:00Z"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, repo.events["cow-1"], 1)

	rec = doRequest(t, h, http.MethodPost, "/events",
		`{"animal_id":"cow-1","type":"PREGNANCY_CHECK","occurred_at":"2026-06-25T00:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "pregnancy check without result must be rejected")
}

func TestRegisterAnimalEndpoint(t *testing.T) {
	repo := newFakeRepo()
	h := newTestServer(repo)

	rec := doRequest(t, h, http.MethodPost, "/animals",
		`{"id":"cow-7","name":"Belle","arrived_at":"2026-01-15T00:00:00Z"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Belle", repo.animals["cow-7"].Name)

	rec = doRequest(t, h, http.MethodPost, "/animals", `{"name":"NoID"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportSheetEndpoint_Unconfigured(t *testing.T) {
	h := newTestServer(newFakeRepo())

	rec := doRequest(t, h, http.MethodPost, "/import/sheet", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func boolPtr(b bool) *bool { return &b }
