package models

import "time"

type AnnouncementPriority string

const (
	PriorityLow    AnnouncementPriority = "low"
	PriorityMedium AnnouncementPriority = "medium"
	PriorityHigh   AnnouncementPriority = "high"
)

// Announcement is a festival-wide notice. System announcements (event went
// live, event ended, winners declared) carry the acting user as author.
type Announcement struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Title   string `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Content string `json:"content" gorm:"not null;type:text" validate:"required,max=5000"`

	Author   string `json:"author" gorm:"not null;size:100"`
	AuthorID string `json:"author_id" gorm:"not null;size:255;index"`

	Priority AnnouncementPriority `json:"priority" gorm:"not null;default:low;size:10" validate:"omitempty,oneof=low medium high"`

	CreatedAt time.Time `json:"created_at" gorm:"index:,sort:desc"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Announcement) TableName() string {
	return "announcements"
}
