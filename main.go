package main

import (
	"log"
	"os"

	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/routes"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/storage"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/utils"

	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	godotenv.Load()
	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = utils.Validate

	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	property := app.Party("/api/property")
	{
		property.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CreateProperty)
		property.Get("/mine", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.ListHostProperties)
		property.Get("/{id:uint}", routes.GetProperty)
		property.Get("/{id:uint}/quote", routes.GetBookingQuote)
		property.Get("/{id:uint}/prices", routes.GetDailyPrices)
		property.Post("/{id:uint}/prices", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.SetDailyPrice)
		property.Post("/{id:uint}/prices/bulk", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.SetBulkDailyPrices)
	}

	booking := app.Party("/api/booking", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		booking.Post("/", routes.CreateBooking)
		booking.Get("/", routes.ListMyBookings)
		booking.Get("/{id:uint}", routes.GetBooking)
		booking.Post("/{id:uint}/cancel", routes.CancelBooking)
	}

	payment := app.Party("/api/payment")
	{
		payment.Post("/intent", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.CreatePaymentIntent)
		// Webhook is signature-verified against the processor secret, not JWT.
		payment.Post("/webhook", routes.StripeWebhook)
	}

	wallet := app.Party("/api/wallet", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		wallet.Get("/", routes.GetWallet)
		wallet.Get("/transactions", routes.ListTransactions)
		wallet.Get("/payouts", routes.ListMyPayouts)
		wallet.Post("/payout", routes.RequestPayout)
		wallet.Get("/methods", routes.ListPayoutMethods)
		wallet.Post("/methods", routes.CreatePayoutMethod)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/payouts", routes.AdminListPayouts)
		admin.Post("/payouts/{id:uint}/action", routes.AdminPayoutAction)
		admin.Get("/transactions", routes.AdminListTransactions)
		admin.Post("/wallets/release", routes.AdminReleaseFunds)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	log.Println("listening on :" + port)
	app.Listen(":" + port)
}
