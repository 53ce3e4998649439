package models

import "time"

// EventType enumerates reproduction event categories tracked per animal.
type EventType string

const (
	EventInsemination   EventType = "INSEMINATION"
	EventPregnancyCheck EventType = "PREGNANCY_CHECK"
	EventCalving        EventType = "CALVING"
	EventAbortion       EventType = "ABORTION"
	EventStillbirth     EventType = "STILLBIRTH"
	EventArrival        EventType = "ARRIVAL"
)

// ReproEvent is an immutable reproduction fact recorded against one animal.
// Events carrying types outside the constants above (vaccinations, shipments)
// are stored unchanged and skipped by the breeding engine.
type ReproEvent struct {
	AnimalID   string    `bson:"animal_id" json:"animal_id" binding:"required"`
	Type       EventType `bson:"type" json:"type" binding:"required"`
	OccurredAt time.Time `bson:"occurred_at" json:"occurred_at" binding:"required"`

	// PregnancyResult is set on PREGNANCY_CHECK events only.
	PregnancyResult *bool `bson:"pregnancy_result,omitempty" json:"pregnancy_result,omitempty"`

	// DifficultBirth is meaningful on CALVING events only.
	DifficultBirth bool `bson:"difficult_birth,omitempty" json:"difficult_birth,omitempty"`

	Notes string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// IsBreedingRelevant reports whether the event participates in cycle replay.
func (e ReproEvent) IsBreedingRelevant() bool {
	switch e.Type {
	case EventInsemination, EventPregnancyCheck, EventCalving, EventAbortion, EventStillbirth, EventArrival:
		return true
	default:
		return false
	}
}
