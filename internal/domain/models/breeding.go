package models

import "time"

// CycleState describes where an animal currently sits in its breeding cycle.
type CycleState string

const (
	CycleOpen        CycleState = "OPEN"
	CycleInseminated CycleState = "INSEMINATED"
	CyclePregnant    CycleState = "PREGNANT"
)

// BreedingStatus is the current projection of one animal's event history.
// It is recomputed on every read; no historical snapshots are kept. Nil
// pointer fields mean "no data", which presentation must not render as 0.
type BreedingStatus struct {
	AnimalID string     `bson:"animal_id" json:"animal_id"`
	State    CycleState `bson:"state" json:"state"`

	Parity                int  `bson:"parity" json:"parity"`
	DaysOpen              *int `bson:"days_open,omitempty" json:"days_open"`
	PregnancyDays         *int `bson:"pregnancy_days,omitempty" json:"pregnancy_days"`
	DaysAfterCalving      *int `bson:"days_after_calving,omitempty" json:"days_after_calving"`
	DaysAfterInsemination *int `bson:"days_after_insemination,omitempty" json:"days_after_insemination"`

	// InseminationCount covers the current open cycle only; it resets at
	// calving, not at a negative pregnancy check.
	InseminationCount int `bson:"insemination_count" json:"insemination_count"`

	ExpectedCalvingDate         *time.Time `bson:"expected_calving_date,omitempty" json:"expected_calving_date"`
	ScheduledPregnancyCheckDate *time.Time `bson:"scheduled_pregnancy_check_date,omitempty" json:"scheduled_pregnancy_check_date"`

	IsDifficultBirth bool   `bson:"is_difficult_birth" json:"is_difficult_birth"`
	BreedingMemo     string `bson:"breeding_memo,omitempty" json:"breeding_memo"`
}

// BreedingSummary carries lifetime cumulative statistics for one animal.
// Averages are nil, never 0, when no qualifying sample exists.
type BreedingSummary struct {
	AnimalID string `bson:"animal_id" json:"animal_id"`

	TotalInseminationCount int `bson:"total_insemination_count" json:"total_insemination_count"`
	PregnancyHeadCount     int `bson:"pregnancy_head_count" json:"pregnancy_head_count"`
	DifficultBirthCount    int `bson:"difficult_birth_count" json:"difficult_birth_count"`

	AverageDaysOpen        *float64 `bson:"average_days_open,omitempty" json:"average_days_open"`
	AveragePregnancyPeriod *float64 `bson:"average_pregnancy_period,omitempty" json:"average_pregnancy_period"`
	AverageCalvingInterval *float64 `bson:"average_calving_interval,omitempty" json:"average_calving_interval"`

	// PregnancySuccessRate is pregnancyHeadCount / totalInseminationCount
	// as a percentage, nil when the animal has never been inseminated.
	PregnancySuccessRate *float64 `bson:"pregnancy_success_rate,omitempty" json:"pregnancy_success_rate"`
}
