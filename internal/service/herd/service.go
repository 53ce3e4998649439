package herd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdsman/internal/domain/models"
	"github.com/mamadbah2/herdsman/internal/repository/mongodb"
	"github.com/mamadbah2/herdsman/internal/service/alerts"
	"github.com/mamadbah2/herdsman/internal/service/breeding"
	"github.com/mamadbah2/herdsman/internal/service/kpi"
)

// ErrInvalidInput indicates a write payload that cannot be stored.
var ErrInvalidInput = errors.New("invalid input")

// ErrAnimalNotFound indicates the animal has neither a registry entry nor
// any recorded events.
var ErrAnimalNotFound = errors.New("animal not found")

// Failure records one animal whose computation was rejected; herd reads
// carry on for the rest of the batch.
type Failure struct {
	AnimalID string `json:"animal_id"`
	Reason   string `json:"reason"`
}

// Service ties the event store to the pure breeding, KPI and alert engines.
// All derived values are recomputed from events on every call; nothing here
// caches except the KPI snapshots explicitly persisted per period.
type Service struct {
	repo       mongodb.Repository
	params     breeding.Params
	thresholds alerts.Thresholds
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires a new herd service instance.
func NewService(repository mongodb.Repository, params breeding.Params, thresholds alerts.Thresholds, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:       repository,
		params:     params,
		thresholds: thresholds,
		logger:     logger,
		now:        time.Now,
	}
}

// AnimalStatus resolves the current breeding status of one animal.
func (s *Service) AnimalStatus(ctx context.Context, animalID string) (models.BreedingStatus, error) {
	animal, err := s.repo.GetAnimal(ctx, animalID)
	if err != nil && !errors.Is(err, mongodb.ErrNotFound) {
		return models.BreedingStatus{}, err
	}
	registered := err == nil

	events, err := s.repo.EventsForAnimal(ctx, animalID)
	if err != nil {
		return models.BreedingStatus{}, err
	}
	if !registered && len(events) == 0 {
		return models.BreedingStatus{}, fmt.Errorf("%w: %s", ErrAnimalNotFound, animalID)
	}

	return s.resolve(animal, animalID, events)
}

// AnimalSummary computes lifetime breeding statistics for one animal.
func (s *Service) AnimalSummary(ctx context.Context, animalID string) (models.BreedingSummary, error) {
	events, err := s.repo.EventsForAnimal(ctx, animalID)
	if err != nil {
		return models.BreedingSummary{}, err
	}
	if len(events) == 0 {
		if _, err := s.repo.GetAnimal(ctx, animalID); errors.Is(err, mongodb.ErrNotFound) {
			return models.BreedingSummary{}, fmt.Errorf("%w: %s", ErrAnimalNotFound, animalID)
		} else if err != nil {
			return models.BreedingSummary{}, err
		}
	}
	return breeding.Aggregate(animalID, events)
}

// HerdStatuses resolves every registered animal in parallel. Animals whose
// history fails validation are reported, not fatal.
func (s *Service) HerdStatuses(ctx context.Context) ([]models.BreedingStatus, []Failure, error) {
	animals, err := s.repo.ListAnimals(ctx)
	if err != nil {
		return nil, nil, err
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		statuses []models.BreedingStatus
		failures []Failure
	)

	for _, animal := range animals {
		wg.Add(1)
		go func(a models.Animal) {
			defer wg.Done()

			events, err := s.repo.EventsForAnimal(ctx, a.ID)
			var status models.BreedingStatus
			if err == nil {
				status, err = s.resolve(a, a.ID, events)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, Failure{AnimalID: a.ID, Reason: err.Error()})
				return
			}
			statuses = append(statuses, status)
		}(animal)
	}
	wg.Wait()

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].AnimalID < statuses[j].AnimalID })
	sort.Slice(failures, func(i, j int) bool { return failures[i].AnimalID < failures[j].AnimalID })

	if len(failures) > 0 {
		s.logger.Warn("some animals excluded from herd view", zap.Int("excluded", len(failures)))
	}

	return statuses, failures, nil
}

// Alerts derives the current attention list and reconciles it with the
// human-managed status store by alert id.
func (s *Service) Alerts(ctx context.Context) ([]models.Alert, error) {
	statuses, _, err := s.HerdStatuses(ctx)
	if err != nil {
		return nil, err
	}

	derived := alerts.Derive(statuses, s.now(), s.thresholds)

	stored, err := s.repo.AlertStatuses(ctx)
	if err != nil {
		return nil, err
	}
	for i := range derived {
		if st, ok := stored[derived[i].ID]; ok {
			derived[i].Status = st
		}
	}

	return derived, nil
}

// UpdateAlertStatus records a human lifecycle decision for one alert.
func (s *Service) UpdateAlertStatus(ctx context.Context, alertID string, status models.AlertStatus) error {
	if alertID == "" || !models.ValidAlertStatus(status) {
		return ErrInvalidInput
	}
	return s.repo.UpsertAlertStatus(ctx, alertID, status)
}

// MonthlySnapshot computes and persists the herd KPI snapshot for a period,
// replacing any earlier computation for the same period.
func (s *Service) MonthlySnapshot(ctx context.Context, period models.Period) (models.HerdKpiSnapshot, error) {
	herdEvents, err := s.repo.EventsForHerd(ctx, period)
	if err != nil {
		return models.HerdKpiSnapshot{}, err
	}

	snap := kpi.Snapshot(herdEvents, period)
	snap.CreatedAt = s.now().UTC()

	if snap.ExcludedAnimals > 0 {
		s.logger.Warn("animals excluded from kpi snapshot",
			zap.String("month", period.Month()),
			zap.Int("excluded", snap.ExcludedAnimals))
	}

	if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
		return models.HerdKpiSnapshot{}, err
	}
	return snap, nil
}

// TrendSeries returns month-over-month deltas for the stored snapshots of
// the last `months` calendar months.
func (s *Service) TrendSeries(ctx context.Context, months int) ([]models.KpiTrendDelta, error) {
	if months <= 0 {
		return nil, ErrInvalidInput
	}

	current := models.MonthPeriod(s.now())
	from := current.Start.AddDate(0, -months, 0)

	snaps, err := s.repo.SnapshotsBetween(ctx, from, current.End)
	if err != nil {
		return nil, err
	}
	return kpi.Series(snaps), nil
}

// RecordEvent validates and appends one reproduction event.
func (s *Service) RecordEvent(ctx context.Context, e models.ReproEvent) error {
	if e.AnimalID == "" || e.OccurredAt.IsZero() || e.Type == "" {
		return ErrInvalidInput
	}
	if e.Type == models.EventPregnancyCheck && e.PregnancyResult == nil {
		return ErrInvalidInput
	}
	return s.repo.SaveEvent(ctx, e)
}

// RegisterAnimal upserts a herd registry entry.
func (s *Service) RegisterAnimal(ctx context.Context, a models.Animal) error {
	if a.ID == "" {
		return ErrInvalidInput
	}
	return s.repo.SaveAnimal(ctx, a)
}

func (s *Service) resolve(animal models.Animal, animalID string, events []models.ReproEvent) (models.BreedingStatus, error) {
	if !animal.ArrivedAt.IsZero() {
		events = append(events, models.ReproEvent{
			AnimalID:   animalID,
			Type:       models.EventArrival,
			OccurredAt: animal.ArrivedAt,
		})
	}

	status, err := breeding.Resolve(animalID, events, s.now(), s.params)
	if err != nil {
		return models.BreedingStatus{}, err
	}
	status.BreedingMemo = animal.BreedingMemo
	return status, nil
}
