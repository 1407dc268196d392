package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventModel is the GORM model for the events table.
type EventModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizerID          uuid.UUID `gorm:"type:uuid;index;not null"`
	Title                string    `gorm:"not null;size:200"`
	Description          string    `gorm:"not null;size:5000"`
	Genre                string    `gorm:"not null;size:50;index"`
	ContactNo            string    `gorm:"not null;size:10"`
	State                string    `gorm:"not null;size:100"`
	City                 string    `gorm:"not null;size:100"`
	VenueID              uuid.UUID `gorm:"type:uuid;index;not null"`
	StartsAt             time.Time `gorm:"not null"`
	EndsAt               time.Time `gorm:"not null"`
	TicketPriceCents     int64     `gorm:"not null"`
	Currency             string    `gorm:"not null;size:3"`
	ImageKey             string    `gorm:"not null;size:500"`
	PaymentTransactionID string    `gorm:"not null;size:100"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (EventModel) TableName() string {
	return "events"
}

// VenueModel is the GORM model for the venues table.
type VenueModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"not null;size:200"`
	State      string    `gorm:"not null;size:100;index:idx_venues_location"`
	City       string    `gorm:"not null;size:100;index:idx_venues_location"`
	PriceCents int64     `gorm:"not null"`
	Currency   string    `gorm:"not null;size:3"`
	Capacity   int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (VenueModel) TableName() string {
	return "venues"
}

// VenueBookingModel references an event that holds a venue. The interval lives on the event
// and is resolved through this reference.
type VenueBookingModel struct {
	EventID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	VenueID   uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (VenueBookingModel) TableName() string {
	return "venue_bookings"
}

// AutoMigrate creates or updates the service's tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&VenueModel{}, &EventModel{}, &VenueBookingModel{})
}
