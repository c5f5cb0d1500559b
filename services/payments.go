package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/models"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/storage"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"gorm.io/gorm"
)

var (
	ErrUnknownBooking = errors.New("payment event references an unknown booking")
	ErrBadEventData   = errors.New("payment event data is malformed")
)

// ProcessPaymentEvent applies a verified processor event to the ledger.
// Only payment_intent.succeeded mutates state; every other type is
// acknowledged and ignored so new processor events never break delivery.
// Duplicate deliveries of the same event are no-ops: the event id is recorded
// with a unique index in the same transaction as the ledger writes.
func ProcessPaymentEvent(event stripe.Event) (bool, error) {
	if event.Type != "payment_intent.succeeded" {
		return false, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return false, ErrBadEventData
	}

	bookingIDRaw := intent.Metadata["booking_id"]
	bookingID, err := strconv.ParseUint(bookingIDRaw, 10, 32)
	if err != nil {
		return false, ErrBadEventData
	}

	// Fast path for redelivery; the unique index on event_id is the real guard.
	var seen models.WebhookEvent
	if err := storage.DB.Where("event_id = ?", event.ID).First(&seen).Error; err == nil {
		log.Printf("webhook: event %s already processed, skipping", event.ID)
		return false, nil
	}

	amount := float64(intent.Amount) / 100
	platformFee := RoundCents(amount * PlatformFeePercent() / 100)
	hostPayout := RoundCents(amount - platformFee)

	err = storage.DB.Transaction(func(tx *gorm.DB) error {
		record := models.WebhookEvent{
			EventID:     event.ID,
			Type:        string(event.Type),
			Payload:     []byte(event.Data.Raw),
			ProcessedAt: time.Now().UTC(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		var booking models.Booking
		if err := tx.First(&booking, uint(bookingID)).Error; err != nil {
			return ErrUnknownBooking
		}

		if err := tx.Model(&booking).Update("status", models.BookingStatusConfirmed).Error; err != nil {
			return err
		}

		var property models.Property
		if err := tx.First(&property, booking.PropertyID).Error; err != nil {
			return fmt.Errorf("load property %d: %w", booking.PropertyID, err)
		}

		entry := models.Transaction{
			Type:        models.TransactionTypeBookingPayment,
			Status:      models.TransactionStatusSucceeded,
			Amount:      amount,
			PlatformFee: platformFee,
			OwnerPayout: hostPayout,
			HostID:      property.HostID,
			BookingID:   &booking.ID,
			PaymentRef:  intent.ID,
			Reference:   uuid.NewString(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		var wallet models.Wallet
		if err := tx.Where(models.Wallet{HostID: property.HostID}).FirstOrCreate(&wallet).Error; err != nil {
			return err
		}
		newPending := RoundCents(wallet.PendingBalance + hostPayout)
		return tx.Model(&wallet).Update("pending_balance", newPending).Error
	})
	if err != nil {
		return false, err
	}

	log.Printf("webhook: booking %d confirmed, host wallet credited %.2f", bookingID, hostPayout)
	return true, nil
}

// ReleaseDueFunds moves matured earnings from pending to available balance.
// A booking payment matures once the stay has started: its check-in date is
// in the past and the booking is still confirmed. Returns how many ledger
// rows were released.
func ReleaseDueFunds(now time.Time) (int, error) {
	var due []models.Transaction
	err := storage.DB.
		Select("transactions.*").
		Joins("JOIN bookings ON bookings.id = transactions.booking_id").
		Where("transactions.type = ? AND transactions.status = ? AND transactions.released_at IS NULL",
			models.TransactionTypeBookingPayment, models.TransactionStatusSucceeded).
		Where("bookings.check_in <= ? AND bookings.status = ?", now, models.BookingStatusConfirmed).
		Find(&due).Error
	if err != nil {
		return 0, err
	}

	released := 0
	for i := range due {
		entry := due[i]
		err := storage.DB.Transaction(func(tx *gorm.DB) error {
			var wallet models.Wallet
			if err := tx.Where(models.Wallet{HostID: entry.HostID}).FirstOrCreate(&wallet).Error; err != nil {
				return err
			}
			pending := RoundCents(wallet.PendingBalance - entry.OwnerPayout)
			if pending < 0 {
				pending = 0
			}
			available := RoundCents(wallet.AvailableBalance + entry.OwnerPayout)
			if err := tx.Model(&wallet).Updates(map[string]interface{}{
				"pending_balance":   pending,
				"available_balance": available,
			}).Error; err != nil {
				return err
			}
			ts := now.UTC()
			return tx.Model(&entry).Update("released_at", &ts).Error
		})
		if err != nil {
			log.Printf("release: transaction %d failed: %v", entry.ID, err)
			continue
		}
		released++
	}
	return released, nil
}
