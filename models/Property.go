package models

import (
	"time"

	"gorm.io/gorm"
)

type Property struct {
	gorm.Model
	HostID       uint    `json:"hostID" gorm:"index"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	PropertyType string  `json:"propertyType"` // entire_place, private_room, shared_room
	AddressLine1 string  `json:"addressLine1"`
	City         string  `json:"city"`
	Country      string  `json:"country"`
	Lat          float32 `json:"lat"`
	Lng          float32 `json:"lng"`
	Capacity     int     `json:"capacity"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    float32 `json:"bathrooms"`
	NightlyPrice float64 `json:"nightlyPrice"`
	CleaningFee  float64 `json:"cleaningFee"`
	Currency     string  `json:"currency" gorm:"type:varchar(3);default:'USD'"`
	IsActive     *bool   `json:"isActive" gorm:"default:true"`

	Host        *User        `json:"host,omitempty" gorm:"foreignKey:HostID;references:ID"`
	Bookings    []Booking    `json:"bookings,omitempty" gorm:"foreignKey:PropertyID"`
	DailyPrices []DailyPrice `json:"dailyPrices,omitempty" gorm:"foreignKey:PropertyID"`
}

// DailyPrice overrides the property's base nightly price for a single date.
// When no row exists for a night, the property's NightlyPrice applies.
type DailyPrice struct {
	gorm.Model
	PropertyID uint      `json:"propertyID" gorm:"not null;uniqueIndex:idx_daily_price_property_date"`
	Date       time.Time `json:"date" gorm:"not null;uniqueIndex:idx_daily_price_property_date"`
	Price      float64   `json:"price" gorm:"not null"`
	Notes      string    `json:"notes"`
}
