// Package queue defines message payloads exchanged over the message broker.
package queue

// WarrantyActivatedEvent is published after a registration approval
// commits and its warranty becomes active.  It carries enough context
// for downstream consumers to log, notify or feed analytics without
// querying the primary database.
type WarrantyActivatedEvent struct {
	RegistrationID uint64 `json:"registration_id"`
	WarrantyID     uint64 `json:"warranty_id"`
	UserID         uint64 `json:"user_id"`
	ModelName      string `json:"model_name"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	ActivatedAt    string `json:"activated_at"`
}
