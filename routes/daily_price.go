package routes

import (
	"fmt"
	"net/http"
	"time"

	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/models"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/storage"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/utils"

	"github.com/kataras/iris/v12"
)

// Daily price override management. Overrides win over the property's base
// nightly price for their date; absent dates fall back to the base price.

type DailyPriceInput struct {
	Date  time.Time `json:"date" validate:"required"`
	Price float64   `json:"price" validate:"required,gt=0"`
	Notes string    `json:"notes"`
}

type BulkDailyPriceInput struct {
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
	Price     float64   `json:"price" validate:"required,gt=0"`
	Notes     string    `json:"notes"`
}

// requireOwnedProperty loads the property and enforces host ownership.
func requireOwnedProperty(ctx iris.Context) (*models.Property, bool) {
	userID, _ := utils.CurrentUserID(ctx)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return nil, false
	}

	var property models.Property
	if err := storage.DB.Where("id = ? AND host_id = ?", id, userID).First(&property).Error; err != nil {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "property not found or access denied")
		return nil, false
	}
	return &property, true
}

// GetDailyPrices lists overrides for a property within a date range.
func GetDailyPrices(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	startDateStr := ctx.URLParam("startDate")
	endDateStr := ctx.URLParam("endDate")
	if startDateStr == "" || endDateStr == "" {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_dates", "startDate and endDate are required")
		return
	}

	startDate, err := time.Parse("2006-01-02", startDateStr)
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_dates", "invalid startDate format")
		return
	}
	endDate, err := time.Parse("2006-01-02", endDateStr)
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_dates", "invalid endDate format")
		return
	}

	var prices []models.DailyPrice
	if err := storage.DB.Where("property_id = ? AND date >= ? AND date <= ?", id, startDate, endDate).
		Order("date ASC").Find(&prices).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to fetch prices")
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": prices})
}

// SetDailyPrice upserts the override for a single date.
func SetDailyPrice(ctx iris.Context) {
	property, ok := requireOwnedProperty(ctx)
	if !ok {
		return
	}

	var input DailyPriceInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existing models.DailyPrice
	result := storage.DB.Where("property_id = ? AND date = ?", property.ID, input.Date).First(&existing)

	if result.Error == nil {
		existing.Price = input.Price
		existing.Notes = input.Notes
		if err := storage.DB.Save(&existing).Error; err != nil {
			utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to update price")
			return
		}
		ctx.JSON(iris.Map{"success": true, "data": existing})
		return
	}

	price := models.DailyPrice{
		PropertyID: property.ID,
		Date:       input.Date,
		Price:      input.Price,
		Notes:      input.Notes,
	}
	if err := storage.DB.Create(&price).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to create price")
		return
	}
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "data": price})
}

// SetBulkDailyPrices replaces overrides across a date range in one
// transaction: existing rows in the range are dropped, then recreated.
func SetBulkDailyPrices(ctx iris.Context) {
	property, ok := requireOwnedProperty(ctx)
	if !ok {
		return
	}

	var input BulkDailyPriceInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.EndDate.Before(input.StartDate) {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_dates", "endDate must not be before startDate")
		return
	}

	var prices []models.DailyPrice
	currentDate := input.StartDate
	for currentDate.Before(input.EndDate) || currentDate.Equal(input.EndDate) {
		prices = append(prices, models.DailyPrice{
			PropertyID: property.ID,
			Date:       currentDate,
			Price:      input.Price,
			Notes:      input.Notes,
		})
		currentDate = currentDate.AddDate(0, 0, 1)
	}

	tx := storage.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("property_id = ? AND date >= ? AND date <= ?",
		property.ID, input.StartDate, input.EndDate).Delete(&models.DailyPrice{}).Error; err != nil {
		tx.Rollback()
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to clear existing prices")
		return
	}

	if err := tx.Create(&prices).Error; err != nil {
		tx.Rollback()
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to create prices")
		return
	}

	tx.Commit()

	ctx.JSON(iris.Map{
		"success": true,
		"message": fmt.Sprintf("Prices set for %d days", len(prices)),
		"data":    prices,
	})
}
