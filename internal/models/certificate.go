package models

import "time"

// Certificate is a value object only; nothing is persisted beyond the
// verification id stamped on the registration. Rendering is deterministic
// for identical field values.
type Certificate struct {
	UserName       string    `json:"user_name"`
	EventTitle     string    `json:"event_title"`
	EventDate      time.Time `json:"event_date"`
	VerificationID string    `json:"verification_id"`
}
