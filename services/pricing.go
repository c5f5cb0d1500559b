package services

import (
	"errors"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/models"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/storage"
)

// defaultPlatformFeePercent applies when PLATFORM_FEE_PERCENT is unset.
const defaultPlatformFeePercent = 10.0

var ErrInvalidStay = errors.New("check-out must be after check-in")

// Quote is the authoritative price breakdown for a stay. All charge amounts
// are built from it; client-supplied totals are never trusted.
type Quote struct {
	NightPrice  float64 `json:"nightPrice"`
	CleaningFee float64 `json:"cleaningFee"`
	PlatformFee float64 `json:"platformFee"`
	Total       float64 `json:"total"`
	Nights      int     `json:"nights"`
	Currency    string  `json:"currency"`
}

// PlatformFeePercent returns the platform's cut as a percentage, from the
// PLATFORM_FEE_PERCENT environment variable.
func PlatformFeePercent() float64 {
	raw := os.Getenv("PLATFORM_FEE_PERCENT")
	if raw == "" {
		return defaultPlatformFeePercent
	}
	pct, err := strconv.ParseFloat(raw, 64)
	if err != nil || pct < 0 || pct > 100 {
		return defaultPlatformFeePercent
	}
	return pct
}

// RoundCents rounds a currency amount to two decimal places.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Nights counts the charged nights of [checkIn, checkOut); the departure
// night is not charged.
func Nights(checkIn, checkOut time.Time) int {
	in := DateOnly(checkIn)
	out := DateOnly(checkOut)
	return int(out.Sub(in).Hours() / 24)
}

// DateOnly truncates a timestamp to its calendar date at midnight UTC. Stay
// boundaries are compared at date granularity, never by time of day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ComputeQuote prices a stay from the property's base nightly price, per-date
// overrides, its cleaning fee and the platform fee.
func ComputeQuote(property *models.Property, overrides []models.DailyPrice, checkIn, checkOut time.Time) (*Quote, error) {
	nights := Nights(checkIn, checkOut)
	if nights < 1 {
		return nil, ErrInvalidStay
	}

	priceByDate := make(map[string]float64, len(overrides))
	for _, o := range overrides {
		priceByDate[DateOnly(o.Date).Format("2006-01-02")] = o.Price
	}

	nightPrice := 0.0
	day := DateOnly(checkIn)
	for i := 0; i < nights; i++ {
		if p, ok := priceByDate[day.Format("2006-01-02")]; ok {
			nightPrice += p
		} else {
			nightPrice += property.NightlyPrice
		}
		day = day.AddDate(0, 0, 1)
	}
	nightPrice = RoundCents(nightPrice)

	cleaningFee := property.CleaningFee
	if cleaningFee < 0 {
		cleaningFee = 0
	}

	platformFee := RoundCents((nightPrice + cleaningFee) * PlatformFeePercent() / 100)
	total := RoundCents(nightPrice + cleaningFee + platformFee)

	currency := property.Currency
	if currency == "" {
		currency = "USD"
	}

	return &Quote{
		NightPrice:  nightPrice,
		CleaningFee: cleaningFee,
		PlatformFee: platformFee,
		Total:       total,
		Nights:      nights,
		Currency:    currency,
	}, nil
}

// QuoteProperty loads the property and its overrides for the stay window and
// prices it.
func QuoteProperty(propertyID uint, checkIn, checkOut time.Time) (*Quote, error) {
	var property models.Property
	if err := storage.DB.First(&property, propertyID).Error; err != nil {
		return nil, err
	}

	var overrides []models.DailyPrice
	if err := storage.DB.Where("property_id = ? AND date >= ? AND date < ?",
		propertyID, DateOnly(checkIn), DateOnly(checkOut)).Find(&overrides).Error; err != nil {
		return nil, err
	}

	return ComputeQuote(&property, overrides, checkIn, checkOut)
}
