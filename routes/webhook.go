package routes

import (
	"net/http"
	"os"

	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/services"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/utils"

	"github.com/kataras/iris/v12"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeWebhook receives asynchronous payment events from the processor.
// The signature is checked against STRIPE_WEBHOOK_SECRET before anything in
// the payload is trusted; a bad signature gets a 400 and is never retried
// here (the processor owns redelivery). Unhandled event types are
// acknowledged so the delivery is not retried either.
func StripeWebhook(ctx iris.Context) {
	payload, err := ctx.GetBody()
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "bad_request", "could not read payload")
		return
	}

	event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), os.Getenv("STRIPE_WEBHOOK_SECRET"))
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed")
		return
	}

	handled, err := services.ProcessPaymentEvent(event)
	if err != nil {
		switch err {
		case services.ErrBadEventData, services.ErrUnknownBooking:
			utils.JSONError(ctx, http.StatusBadRequest, "bad_event", err.Error())
		default:
			utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to process event")
		}
		return
	}

	ctx.JSON(iris.Map{"received": true, "handled": handled})
}
