package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event is a single festival event. CurrentParticipants is maintained by an
// atomic conditional increment at registration time; it never exceeds
// MaxParticipants.
type Event struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string  `json:"description" gorm:"type:text" validate:"required,max=5000"`
	Banner      *string `json:"banner" gorm:"size:500"`

	Rules       datatypes.JSONSlice[string] `json:"rules"`
	Eligibility string                      `json:"eligibility" gorm:"size:1000"`

	MaxParticipants     int `json:"max_participants" gorm:"not null" validate:"required,min=1,max=10000"`
	CurrentParticipants int `json:"current_participants" gorm:"not null;default:0"`

	EventDate time.Time `json:"event_date" gorm:"not null;index"`
	EventTime string    `json:"event_time" gorm:"size:20"`
	Location  string    `json:"location" gorm:"size:200"`
	Category  string    `json:"category" gorm:"size:100;index"`

	Department string `json:"department" gorm:"not null;size:20;index"`

	// Assigned event head, with the display name denormalised for lists.
	EventHeadID   *string `json:"event_head_id" gorm:"size:255;index"`
	EventHeadName *string `json:"event_head_name" gorm:"size:100"`

	IsLive bool `json:"is_live" gorm:"not null;default:false"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Event) TableName() string {
	return "events"
}

// RulesValue converts a plain slice into the JSON column type.
func RulesValue(rules []string) datatypes.JSONSlice[string] {
	return datatypes.NewJSONSlice(rules)
}

// SlotsLeft is a render helper; the authoritative capacity check happens in
// the repository's conditional increment.
func (e *Event) SlotsLeft() int {
	left := e.MaxParticipants - e.CurrentParticipants
	if left < 0 {
		return 0
	}
	return left
}
