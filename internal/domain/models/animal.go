package models

import "time"

// Animal is a herd registry entry. ArrivedAt anchors days-open computation
// for animals that joined the farm before their first recorded calving.
type Animal struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name,omitempty" json:"name,omitempty"`
	ArrivedAt    time.Time `bson:"arrived_at" json:"arrived_at"`
	BreedingMemo string    `bson:"breeding_memo,omitempty" json:"breeding_memo"`
}
