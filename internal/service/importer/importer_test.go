package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdsman/internal/domain/models"
)

type fakeReader struct {
	rows [][]interface{}
	err  error
}

func (f *fakeReader) ReadRange(_ context.Context, _ string) ([][]interface{}, error) {
	return f.rows, f.err
}

type fakeStore struct {
	saved []models.ReproEvent
	err   error
}

func (f *fakeStore) SaveEvent(_ context.Context, e models.ReproEvent) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, e)
	return nil
}

func TestImport_ParsesAndSkips(t *testing.T) {
	reader := &fakeReader{rows: [][]interface{}{
		{"cow-1", "2026-03-01", "insemination"},
		{"cow-1", "2026-03-31", "pregnancy check", "positive"},
		{"cow-2", "2026-04-02", "calving", "difficult", "first calf"},
		{"cow-3", "not-a-date", "insemination"},
		{"", "2026-04-05", "insemination"},
		{"cow-4", "2026-04-06", "pregnancy check", "maybe"},
	}}
	store := &fakeStore{}

	svc := NewService(reader, store, "Events!A2:E", nil)
	res, err := svc.Import(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 3, res.Skipped)
	require.Len(t, store.saved, 3)

	first := store.saved[0]
	assert.Equal(t, "cow-1", first.AnimalID)
	assert.Equal(t, models.EventInsemination, first.Type)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), first.OccurredAt)

	check := store.saved[1]
	assert.Equal(t, models.EventPregnancyCheck, check.Type)
	require.NotNil(t, check.PregnancyResult)
	assert.True(t, *check.PregnancyResult)

	calving := store.saved[2]
	assert.Equal(t, models.EventCalving, calving.Type)
	assert.True(t, calving.DifficultBirth)
	assert.Equal(t, "first calf", calving.Notes)
}

func TestImport_ReaderFailureAborts(t *testing.T) {
	reader := &fakeReader{err: errors.New("quota exceeded")}
	svc := NewService(reader, &fakeStore{}, "Events!A2:E", nil)

	_, err := svc.Import(context.Background())
	assert.Error(t, err)
}

func TestImport_StoreFailureAborts(t *testing.T) {
	reader := &fakeReader{rows: [][]interface{}{
		{"cow-1", "2026-03-01", "insemination"},
	}}
	svc := NewService(reader, &fakeStore{err: errors.New("connection reset")}, "Events!A2:E", nil)

	_, err := svc.Import(context.Background())
	assert.Error(t, err)
}

func TestParseRow_NormalizesTypeAndDate(t *testing.T) {
	event, err := parseRow([]interface{}{" cow-9 ", "2026-05-10T08:30:00", "Pregnancy Check", "NEGATIVE"})
	require.NoError(t, err)
	assert.Equal(t, "cow-9", event.AnimalID)
	assert.Equal(t, models.EventPregnancyCheck, event.Type)
	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), event.OccurredAt)
	require.NotNil(t, event.PregnancyResult)
	assert.False(t, *event.PregnancyResult)
}

func TestParseRow_RejectsShortRows(t *testing.T) {
	_, err := parseRow([]interface{}{"cow-1", "2026-05-10"})
	assert.Error(t, err)
}

func TestParseRow_NormalCalvingIsNotDifficult(t *testing.T) {
	event, err := parseRow([]interface{}{"cow-1", "2026-05-10", "calving", "normal"})
	require.NoError(t, err)
	assert.Equal(t, models.EventCalving, event.Type)
	assert.False(t, event.DifficultBirth)
}
