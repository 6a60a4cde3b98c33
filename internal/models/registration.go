package models

import "time"

// Registration links one user to one event. Event title and user identity
// fields are denormalised for display; the source rows stay authoritative
// and copies are refreshed lazily on read paths that join both.
//
// The (event_id, user_id) unique index makes duplicate registration a
// constraint violation rather than an application-level race.
type Registration struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	EventID    uint   `json:"event_id" gorm:"not null;uniqueIndex:idx_registrations_event_user;index"`
	EventTitle string `json:"event_title" gorm:"not null;size:200"`

	UserID    string  `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_registrations_event_user;index"`
	UserName  string  `json:"user_name" gorm:"not null;size:100"`
	UserEmail string  `json:"user_email" gorm:"not null;size:255"`
	UserPhoto *string `json:"user_photo" gorm:"size:500"`

	RegisteredAt time.Time `json:"registered_at" gorm:"not null"`
	Attended     bool      `json:"attended" gorm:"not null;default:false"`

	// Set once when a participation certificate is issued.
	CertificateID *string `json:"certificate_id" gorm:"size:64"`
}

func (Registration) TableName() string {
	return "registrations"
}
