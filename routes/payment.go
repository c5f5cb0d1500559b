package routes

import (
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/models"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/services"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/storage"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/utils"

	"github.com/kataras/iris/v12"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

type PaymentIntentInput struct {
	BookingID  uint      `json:"bookingID" validate:"required"`
	PropertyID uint      `json:"propertyID" validate:"required"`
	CheckIn    time.Time `json:"checkIn" validate:"required"`
	CheckOut   time.Time `json:"checkOut" validate:"required"`
	Guests     int       `json:"guests"` // informational; never affects the quote
}

// CreatePaymentIntent asks the processor for a charge intent over the
// authoritative quote. The stored booking estimate is ignored; the quote is
// recomputed here so a tampered client total can never be charged.
func CreatePaymentIntent(ctx iris.Context) {
	userID, ok := utils.CurrentUserID(ctx)
	if !ok {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var input PaymentIntentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var booking models.Booking
	if err := storage.DB.First(&booking, input.BookingID).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "booking not found")
		return
	}
	if booking.GuestID != userID {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "not your booking")
		return
	}

	quote, err := services.QuoteProperty(input.PropertyID, input.CheckIn, input.CheckOut)
	if err != nil {
		if err == services.ErrInvalidStay {
			utils.JSONError(ctx, http.StatusBadRequest, "invalid_dates", err.Error())
			return
		}
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "property not found")
		return
	}

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	amountCents := int64(math.Round(quote.Total * 100))
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(strings.ToLower(quote.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("booking_id", strconv.FormatUint(uint64(booking.ID), 10))
	params.AddMetadata("guest_id", strconv.FormatUint(uint64(userID), 10))
	params.AddMetadata("property_id", strconv.FormatUint(uint64(input.PropertyID), 10))

	intent, err := paymentintent.New(params)
	if err != nil {
		utils.JSONError(ctx, http.StatusBadGateway, "payment_error", err.Error())
		return
	}

	ctx.JSON(iris.Map{
		"clientSecret": intent.ClientSecret,
		"totalAmount":  quote.Total,
		"breakdown": iris.Map{
			"nightPrice":  quote.NightPrice,
			"cleaningFee": quote.CleaningFee,
			"platformFee": quote.PlatformFee,
		},
	})
}

// GetBookingQuote exposes the authoritative breakdown for display before the
// guest commits to paying.
func GetBookingQuote(ctx iris.Context) {
	propertyID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	checkIn, err := time.Parse("2006-01-02", ctx.URLParam("checkIn"))
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_dates", "checkIn must be YYYY-MM-DD")
		return
	}
	checkOut, err := time.Parse("2006-01-02", ctx.URLParam("checkOut"))
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_dates", "checkOut must be YYYY-MM-DD")
		return
	}

	quote, err := services.QuoteProperty(propertyID, checkIn, checkOut)
	if err != nil {
		if err == services.ErrInvalidStay {
			utils.JSONError(ctx, http.StatusBadRequest, "invalid_dates", err.Error())
			return
		}
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "property not found")
		return
	}

	ctx.JSON(quote)
}
