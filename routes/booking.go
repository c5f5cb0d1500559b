package routes

import (
	"net/http"
	"time"

	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/models"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/services"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/storage"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/utils"

	"github.com/kataras/iris/v12"
)

type CreateBookingInput struct {
	PropertyID uint      `json:"propertyID" validate:"required"`
	CheckIn    time.Time `json:"checkIn" validate:"required"`
	CheckOut   time.Time `json:"checkOut" validate:"required"`
	Guests     int       `json:"guests" validate:"min=0"`
}

// hasDateConflict reports whether any non-cancelled booking on the property
// overlaps [start, end). Callers must hold the property advisory lock across
// this check and the insert that follows it.
func hasDateConflict(propertyID uint, start, end time.Time) (bool, error) {
	var count int64
	err := storage.DB.Model(&models.Booking{}).
		Where("property_id = ? AND status <> ?", propertyID, models.BookingStatusCancelled).
		Where("check_in < ? AND check_out > ?", end, start).
		Count(&count).Error
	return count > 0, err
}

// CreateBooking reserves a stay in pending state. The stored total is a naive
// estimate (nights x base nightly price) for the UI; the charged amount is
// recomputed by the pricing quote at payment time.
func CreateBooking(ctx iris.Context) {
	userID, ok := utils.CurrentUserID(ctx)
	if !ok {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var input CreateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Stay boundaries are calendar dates; a same-day check-in/check-out pair
	// is a zero-night stay no matter the clock times on it.
	checkIn := services.DateOnly(input.CheckIn)
	checkOut := services.DateOnly(input.CheckOut)
	nights := services.Nights(checkIn, checkOut)
	if nights < 1 {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_dates", "check-out must be at least one night after check-in")
		return
	}

	guests := input.Guests
	if guests <= 0 {
		guests = 1
	}

	var property models.Property
	if err := storage.DB.First(&property, input.PropertyID).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "property not found")
		return
	}

	lockKey := storage.PropertyLockKey(property.ID)
	if !storage.AcquireLock(lockKey) {
		utils.JSONError(ctx, http.StatusConflict, "busy", "property is being booked, try again")
		return
	}
	defer storage.ReleaseLock(lockKey)

	conflict, err := hasDateConflict(property.ID, checkIn, checkOut)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to check availability")
		return
	}
	if conflict {
		utils.JSONError(ctx, http.StatusConflict, "dates_unavailable", "the selected dates are unavailable")
		return
	}

	estimate := services.RoundCents(float64(nights) * property.NightlyPrice)

	booking := models.Booking{
		PropertyID: property.ID,
		GuestID:    userID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     guests,
		TotalPrice: estimate,
		Status:     models.BookingStatusPending,
	}
	if err := storage.DB.Create(&booking).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to create booking")
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"bookingID":      booking.ID,
		"status":         booking.Status,
		"estimatedTotal": booking.TotalPrice,
		"nights":         nights,
	})
}

// GetBooking returns a single booking to its guest or the property's host.
func GetBooking(ctx iris.Context) {
	userID, _ := utils.CurrentUserID(ctx)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var booking models.Booking
	if err := storage.DB.Preload("Property").First(&booking, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "booking not found")
		return
	}

	isGuest := booking.GuestID == userID
	isHost := booking.Property != nil && booking.Property.HostID == userID
	if !isGuest && !isHost {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "not your booking")
		return
	}

	ctx.JSON(booking)
}

// ListMyBookings returns the caller's bookings, newest first.
func ListMyBookings(ctx iris.Context) {
	userID, _ := utils.CurrentUserID(ctx)

	var bookings []models.Booking
	if err := storage.DB.Preload("Property").Where("guest_id = ?", userID).
		Order("created_at DESC").Find(&bookings).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to fetch bookings")
		return
	}

	ctx.JSON(iris.Map{"data": bookings})
}

// CancelBooking transitions a pending or confirmed booking to cancelled.
// Rows are never deleted; the freed dates become bookable again because the
// overlap check skips cancelled bookings.
func CancelBooking(ctx iris.Context) {
	userID, _ := utils.CurrentUserID(ctx)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var booking models.Booking
	if err := storage.DB.First(&booking, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "booking not found")
		return
	}
	if booking.GuestID != userID {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "not your booking")
		return
	}
	if booking.Status == models.BookingStatusCancelled {
		utils.JSONError(ctx, http.StatusConflict, "already_cancelled", "booking is already cancelled")
		return
	}

	if err := storage.DB.Model(&booking).Update("status", models.BookingStatusCancelled).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to cancel booking")
		return
	}

	ctx.JSON(iris.Map{"success": true, "status": models.BookingStatusCancelled})
}
