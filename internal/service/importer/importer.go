package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdsman/internal/domain/models"
	"github.com/mamadbah2/herdsman/internal/repository/sheets"
)

const dateLayout = "2006-01-02"

// EventWriter persists imported events.
type EventWriter interface {
	SaveEvent(ctx context.Context, e models.ReproEvent) error
}

// Service imports reproduction events from the spreadsheet farm staff keep.
// Expected columns: animal id | date | type | result | notes. Rows that do
// not parse are skipped and counted, never failing the run.
type Service struct {
	reader    sheets.Reader
	store     EventWriter
	rangeName string
	logger    *zap.Logger
}

// NewService wires a new importer instance.
func NewService(reader sheets.Reader, store EventWriter, rangeName string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reader:    reader,
		store:     store,
		rangeName: rangeName,
		logger:    logger,
	}
}

// Result summarizes one import run.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import reads the configured range and appends every parsable row as an
// event.
func (s *Service) Import(ctx context.Context) (Result, error) {
	rows, err := s.reader.ReadRange(ctx, s.rangeName)
	if err != nil {
		return Result{}, fmt.Errorf("load events range: %w", err)
	}

	var res Result
	for i, row := range rows {
		event, err := parseRow(row)
		if err != nil {
			s.logger.Debug("skip unparsable event row", zap.Int("row", i), zap.Error(err))
			res.Skipped++
			continue
		}
		if err := s.store.SaveEvent(ctx, event); err != nil {
			return res, fmt.Errorf("save imported event: %w", err)
		}
		res.Imported++
	}

	s.logger.Info("sheet import finished", zap.Int("imported", res.Imported), zap.Int("skipped", res.Skipped))
	return res, nil
}

func parseRow(row []interface{}) (models.ReproEvent, error) {
	if len(row) < 3 {
		return models.ReproEvent{}, fmt.Errorf("expected at least 3 columns, got %d", len(row))
	}

	animalID := strings.TrimSpace(fmt.Sprint(row[0]))
	if animalID == "" {
		return models.ReproEvent{}, fmt.Errorf("empty animal id")
	}

	occurredAt, err := parseDate(row[1])
	if err != nil {
		return models.ReproEvent{}, err
	}

	rawType := strings.TrimSpace(fmt.Sprint(row[2]))
	eventType := models.EventType(strings.ToUpper(strings.ReplaceAll(rawType, " ", "_")))
	if eventType == "" {
		return models.ReproEvent{}, fmt.Errorf("empty event type")
	}

	event := models.ReproEvent{
		AnimalID:   animalID,
		Type:       eventType,
		OccurredAt: occurredAt,
	}

	outcome := ""
	if len(row) > 3 {
		outcome = strings.ToLower(strings.TrimSpace(fmt.Sprint(row[3])))
	}

	switch eventType {
	case models.EventPregnancyCheck:
		switch outcome {
		case "positive":
			event.PregnancyResult = boolPtr(true)
		case "negative":
			event.PregnancyResult = boolPtr(false)
		default:
			return models.ReproEvent{}, fmt.Errorf("pregnancy check needs positive/negative result, got %q", outcome)
		}
	case models.EventCalving:
		event.DifficultBirth = outcome == "difficult"
	}

	if len(row) > 4 {
		event.Notes = strings.TrimSpace(fmt.Sprint(row[4]))
	}

	return event, nil
}

func parseDate(value interface{}) (time.Time, error) {
	str := strings.TrimSpace(fmt.Sprint(value))
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dateLayout, str)
}

func boolPtr(b bool) *bool { return &b }
