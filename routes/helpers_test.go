package routes

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/models"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/storage"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	goredis "github.com/go-redis/redis/v8"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
)

// setupTestStorage points the global DB at an in-memory database and the
// global Redis at a miniredis instance for the duration of the test.
func setupTestStorage(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	storage.AutoMigrateAll(db)
	storage.DB = db

	mr := miniredis.RunT(t)
	storage.Redis = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
}

// buildTestApp wires the real handlers behind a real JWT verifier, the way
// main.go does.
func buildTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()
	app.Validator = utils.Validate

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	property := app.Party("/api/property")
	{
		property.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, CreateProperty)
		property.Get("/{id:uint}/quote", GetBookingQuote)
		property.Post("/{id:uint}/prices", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, SetDailyPrice)
	}

	booking := app.Party("/api/booking", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		booking.Post("/", CreateBooking)
		booking.Get("/{id:uint}", GetBooking)
		booking.Post("/{id:uint}/cancel", CancelBooking)
	}

	wallet := app.Party("/api/wallet", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		wallet.Get("/", GetWallet)
		wallet.Post("/payout", RequestPayout)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/payouts", AdminListPayouts)
		admin.Post("/payouts/{id:uint}/action", AdminPayoutAction)
		admin.Post("/wallets/release", AdminReleaseFunds)
	}

	app.Build()
	return app
}

// signTestToken returns a signed JWT for the given user and role.
func signTestToken(id uint, role string) string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), time.Hour)
	token, _ := signer.Sign(utils.AccessToken{ID: id, Role: role})
	return string(token)
}

// doJSON performs an authenticated JSON request against the app.
func doJSON(app *iris.Application, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func seedHostAndProperty(t *testing.T) (*models.User, *models.Property) {
	t.Helper()
	host := models.User{FirstName: "Aicha", LastName: "Mint", Email: "host@example.com", Role: "host"}
	if err := storage.DB.Create(&host).Error; err != nil {
		t.Fatalf("seed host: %v", err)
	}
	property := models.Property{
		HostID:       host.ID,
		Title:        "Seafront villa",
		PropertyType: "entire_place",
		City:         "Nouakchott",
		Country:      "Mauritania",
		Capacity:     4,
		NightlyPrice: 200,
		CleaningFee:  50,
		Currency:     "USD",
	}
	if err := storage.DB.Create(&property).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return &host, &property
}

func seedGuest(t *testing.T) *models.User {
	t.Helper()
	guest := models.User{FirstName: "Omar", LastName: "Ba", Email: "guest@example.com", Role: "user"}
	if err := storage.DB.Create(&guest).Error; err != nil {
		t.Fatalf("seed guest: %v", err)
	}
	return &guest
}

func mustDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", resp.Body.String(), err)
	}
	return out
}
