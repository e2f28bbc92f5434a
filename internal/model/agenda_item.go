package model

import (
	"time"
)

const (
	KindAppointment = "appointment"
	KindBlock       = "block"
	KindCommitment  = "commitment"
)

// AgendaItem unifies appointments, recurring blocks and commitments into one
// renderable shape. It is derived per request and never persisted.
type AgendaItem struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"` // appointment, block, commitment
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status,omitempty"`
	PatientID *int64    `json:"patient_id,omitempty"`
}
