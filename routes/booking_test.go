package routes

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/models"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/storage"
)

func TestCreateBooking(t *testing.T) {
	setupTestStorage(t)
	app := buildTestApp()
	_, property := seedHostAndProperty(t)
	guest := seedGuest(t)
	token := signTestToken(guest.ID, "user")

	resp := doJSON(app, http.MethodPost, "/api/booking", token, map[string]interface{}{
		"propertyID": property.ID,
		"checkIn":    mustDate(2025, time.June, 1),
		"checkOut":   mustDate(2025, time.June, 4),
		"guests":     2,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	body := decodeBody(t, resp)
	if body["status"] != models.BookingStatusPending {
		t.Errorf("expected pending status, got %v", body["status"])
	}
	// naive estimate: 3 nights x $200, overrides and fees ignored
	if got := body["estimatedTotal"].(float64); got != 600 {
		t.Errorf("expected estimate 600, got %v", got)
	}

	var booking models.Booking
	if err := storage.DB.First(&booking).Error; err != nil {
		t.Fatalf("booking row not created: %v", err)
	}
	if booking.GuestID != guest.ID || booking.Guests != 2 {
		t.Errorf("unexpected booking row: %+v", booking)
	}
}

func TestCreateBookingGuestsDefaultToOne(t *testing.T) {
	setupTestStorage(t)
	app := buildTestApp()
	_, property := seedHostAndProperty(t)
	guest := seedGuest(t)

	resp := doJSON(app, http.MethodPost, "/api/booking", signTestToken(guest.ID, "user"), map[string]interface{}{
		"propertyID": property.ID,
		"checkIn":    mustDate(2025, time.June, 1),
		"checkOut":   mustDate(2025, time.June, 2),
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var booking models.Booking
	storage.DB.First(&booking)
	if booking.Guests != 1 {
		t.Errorf("expected guests to default to 1, got %d", booking.Guests)
	}
}

func TestCreateBookingRejectsInvalidDates(t *testing.T) {
	setupTestStorage(t)
	app := buildTestApp()
	_, property := seedHostAndProperty(t)
	guest := seedGuest(t)

	resp := doJSON(app, http.MethodPost, "/api/booking", signTestToken(guest.ID, "user"), map[string]interface{}{
		"propertyID": property.ID,
		"checkIn":    mustDate(2025, time.June, 4),
		"checkOut":   mustDate(2025, time.June, 4),
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	var count int64
	storage.DB.Model(&models.Booking{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no booking rows, got %d", count)
	}
}

func TestCreateBookingRejectsSameDayStayWithTimes(t *testing.T) {
	setupTestStorage(t)
	app := buildTestApp()
	_, property := seedHostAndProperty(t)
	guest := seedGuest(t)

	// Same calendar date with different clock times is still a zero-night
	// stay; it must not produce a free pending row that blocks the date.
	resp := doJSON(app, http.MethodPost, "/api/booking", signTestToken(guest.ID, "user"), map[string]interface{}{
		"propertyID": property.ID,
		"checkIn":    time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC),
		"checkOut":   time.Date(2025, time.June, 1, 22, 0, 0, 0, time.UTC),
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	storage.DB.Model(&models.Booking{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no booking rows, got %d", count)
	}
}

func TestCreateBookingNormalizesTimesToDates(t *testing.T) {
	setupTestStorage(t)
	app := buildTestApp()
	_, property := seedHostAndProperty(t)
	guest := seedGuest(t)

	resp := doJSON(app, http.MethodPost, "/api/booking", signTestToken(guest.ID, "user"), map[string]interface{}{
		"propertyID": property.ID,
		"checkIn":    time.Date(2025, time.June, 1, 15, 0, 0, 0, time.UTC),
		"checkOut":   time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC),
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	body := decodeBody(t, resp)
	if body["nights"].(float64) != 2 {
		t.Errorf("expected 2 charged nights, got %v", body["nights"])
	}

	var booking models.Booking
	storage.DB.First(&booking)
	if !booking.CheckIn.UTC().Equal(mustDate(2025, time.June, 1)) ||
		!booking.CheckOut.UTC().Equal(mustDate(2025, time.June, 3)) {
		t.Errorf("expected midnight UTC boundaries, got %v / %v", booking.CheckIn, booking.CheckOut)
	}
}

func TestCreateBookingWhilePropertyLocked(t *testing.T) {
	setupTestStorage(t)
	app := buildTestApp()
	_, property := seedHostAndProperty(t)
	guest := seedGuest(t)

	// another request holds the property's advisory lock
	storage.Redis.Set(context.Background(), storage.PropertyLockKey(property.ID), "1", 30*time.Second)

	resp := doJSON(app, http.MethodPost, "/api/booking", signTestToken(guest.ID, "user"), map[string]interface{}{
		"propertyID": property.ID,
		"checkIn":    mustDate(2025, time.June, 1),
		"checkOut":   mustDate(2025, time.June, 4),
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 while locked, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	storage.DB.Model(&models.Booking{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no booking rows while locked, got %d", count)
	}
}

func TestCreateBookingConflict(t *testing.T) {
	setupTestStorage(t)
	app := buildTestApp()
	_, property := seedHostAndProperty(t)
	guest := seedGuest(t)

	existing := models.Booking{
		PropertyID: property.ID,
		GuestID:    99,
		CheckIn:    mustDate(2025, time.June, 2),
		CheckOut:   mustDate(2025, time.June, 5),
		Guests:     1,
		Status:     models.BookingStatusConfirmed,
	}
	if err := storage.DB.Create(&existing).Error; err != nil {
		t.Fatalf("seed existing booking: %v", err)
	}

	// overlaps [June 2, June 5)
	resp := doJSON(app, http.MethodPost, "/api/booking", signTestToken(guest.ID, "user"), map[string]interface{}{
		"propertyID": property.ID,
		"checkIn":    mustDate(2025, time.June, 1),
		"checkOut":   mustDate(2025, time.June, 3),
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	storage.DB.Model(&models.Booking{}).Count(&count)
	if count != 1 {
		t.Errorf("expected only the seeded booking, got %d rows", count)
	}

	// back-to-back stay sharing the boundary date is fine: [May 30, June 2)
	resp = doJSON(app, http.MethodPost, "/api/booking", signTestToken(guest.ID, "user"), map[string]interface{}{
		"propertyID": property.ID,
		"checkIn":    mustDate(2025, time.May, 30),
		"checkOut":   mustDate(2025, time.June, 2),
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for adjacent stay, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreateBookingIgnoresCancelled(t *testing.T) {
	setupTestStorage(t)
	app := buildTestApp()
	_, property := seedHostAndProperty(t)
	guest := seedGuest(t)

	cancelled := models.Booking{
		PropertyID: property.ID,
		GuestID:    99,
		CheckIn:    mustDate(2025, time.June, 1),
		CheckOut:   mustDate(2025, time.June, 10),
		Status:     models.BookingStatusCancelled,
	}
	storage.DB.Create(&cancelled)

	resp := doJSON(app, http.MethodPost, "/api/booking", signTestToken(guest.ID, "user"), map[string]interface{}{
		"propertyID": property.ID,
		"checkIn":    mustDate(2025, time.June, 2),
		"checkOut":   mustDate(2025, time.June, 4),
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected cancelled booking to free dates, got %d", resp.Code)
	}
}

func TestCreateBookingUnknownProperty(t *testing.T) {
	setupTestStorage(t)
	app := buildTestApp()
	guest := seedGuest(t)

	resp := doJSON(app, http.MethodPost, "/api/booking", signTestToken(guest.ID, "user"), map[string]interface{}{
		"propertyID": 12345,
		"checkIn":    mustDate(2025, time.June, 1),
		"checkOut":   mustDate(2025, time.June, 4),
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestCancelBooking(t *testing.T) {
	setupTestStorage(t)
	app := buildTestApp()
	_, property := seedHostAndProperty(t)
	guest := seedGuest(t)

	booking := models.Booking{
		PropertyID: property.ID,
		GuestID:    guest.ID,
		CheckIn:    mustDate(2025, time.June, 1),
		CheckOut:   mustDate(2025, time.June, 4),
		Status:     models.BookingStatusPending,
	}
	storage.DB.Create(&booking)

	// someone else cannot cancel it
	other := models.User{Email: "other@example.com", Role: "user"}
	storage.DB.Create(&other)
	resp := doJSON(app, http.MethodPost, "/api/booking/1/cancel", signTestToken(other.ID, "user"), nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign booking, got %d", resp.Code)
	}

	resp = doJSON(app, http.MethodPost, "/api/booking/1/cancel", signTestToken(guest.ID, "user"), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var reloaded models.Booking
	storage.DB.First(&reloaded, booking.ID)
	if reloaded.Status != models.BookingStatusCancelled {
		t.Errorf("expected cancelled, got %s", reloaded.Status)
	}

	// cancelling twice is a conflict
	resp = doJSON(app, http.MethodPost, "/api/booking/1/cancel", signTestToken(guest.ID, "user"), nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 on double cancel, got %d", resp.Code)
	}
}
