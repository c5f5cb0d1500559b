package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking reserves [CheckIn, CheckOut) on a property for a guest. Rows are
// never deleted; cancellation is a status transition. TotalPrice holds the
// naive estimate shown to the guest before payment; the charged amount is
// always recomputed server-side from the pricing quote.
type Booking struct {
	gorm.Model
	PropertyID uint      `json:"propertyID" gorm:"not null;index"`
	GuestID    uint      `json:"guestID" gorm:"not null;index"`
	CheckIn    time.Time `json:"checkIn" gorm:"not null"`
	CheckOut   time.Time `json:"checkOut" gorm:"not null"`
	Guests     int       `json:"guests" gorm:"default:1"`
	TotalPrice float64   `json:"totalPrice"`
	Status     string    `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Guest    *User     `json:"guest,omitempty" gorm:"foreignKey:GuestID"`
}
