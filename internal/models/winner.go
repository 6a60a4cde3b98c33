package models

import "time"

// Winner is one podium position for an event. Winners are created in a batch
// of exactly three inside one transaction; the (event_id, position) unique
// index turns the "already declared" guard into a database constraint.
type Winner struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	EventID    uint   `json:"event_id" gorm:"not null;uniqueIndex:idx_winners_event_position;index"`
	EventTitle string `json:"event_title" gorm:"not null;size:200"`

	Position int `json:"position" gorm:"not null;uniqueIndex:idx_winners_event_position" validate:"required,min=1,max=3"`

	UserID    string  `json:"user_id" gorm:"not null;size:255;index"`
	UserName  string  `json:"user_name" gorm:"not null;size:100"`
	UserPhoto *string `json:"user_photo" gorm:"size:500"`

	ApprovedBy string    `json:"approved_by" gorm:"not null;size:255"`
	ApprovedAt time.Time `json:"approved_at" gorm:"not null;index:,sort:desc"`
}

func (Winner) TableName() string {
	return "winners"
}
