package models

import "time"

// Event is a listed happening created by a user. StartAt/EndAt are
// absolute instants stored in UTC; any timezone handling happens at
// render time.
type Event struct {
	EventID     uint      `gorm:"primaryKey" json:"eventId"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	ImageURL    string    `gorm:"size:2048" json:"imageUrl,omitempty"`
	StartAt     time.Time `gorm:"not null" json:"startAt"`
	EndAt       time.Time `gorm:"not null" json:"endAt"`
	Longitude   float64   `gorm:"not null" json:"longitude"`
	Latitude    float64   `gorm:"not null" json:"latitude"`
	Location    string    `gorm:"size:255" json:"location,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"-"`
}
