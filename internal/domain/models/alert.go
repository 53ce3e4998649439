package models

import "time"

// AlertSeverity ranks how urgently an alert needs a human decision.
type AlertSeverity string

const (
	SeverityLow    AlertSeverity = "low"
	SeverityMedium AlertSeverity = "medium"
	SeverityHigh   AlertSeverity = "high"
)

// AlertType names the signal that raised the alert.
type AlertType string

const (
	AlertDaysOpen          AlertType = "DAYS_OPEN"
	AlertRepeatBreeder     AlertType = "REPEAT_BREEDER"
	AlertPregnancyCheckDue AlertType = "PREGNANCY_CHECK_DUE"
	AlertCalvingDue        AlertType = "CALVING_DUE"
)

// AlertStatus is the human-managed lifecycle of an alert. The engine only
// ever emits active candidates; every other value comes from the status
// store.
type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
	AlertDismissed    AlertStatus = "dismissed"
)

// ValidAlertStatus reports whether s is one of the known lifecycle values.
func ValidAlertStatus(s AlertStatus) bool {
	switch s {
	case AlertActive, AlertAcknowledged, AlertResolved, AlertDismissed:
		return true
	default:
		return false
	}
}

// Alert is one attention item derived from an animal's current breeding
// status. IDs are deterministic per (type, animal) so re-derivation lines up
// with previously stored statuses.
type Alert struct {
	ID       string        `bson:"_id" json:"id"`
	Type     AlertType     `bson:"type" json:"type"`
	Severity AlertSeverity `bson:"severity" json:"severity"`
	AnimalID string        `bson:"animal_id" json:"animal_id"`
	DueAt    *time.Time    `bson:"due_at,omitempty" json:"due_at"`
	Message  string        `bson:"message" json:"message"`
	Status   AlertStatus   `bson:"status" json:"status"`
}
