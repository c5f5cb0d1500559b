package routes

import (
	"net/http"

	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/models"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/storage"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/utils"

	"github.com/kataras/iris/v12"
)

type CreatePropertyInput struct {
	Title        string  `json:"title" validate:"required"`
	Description  string  `json:"description"`
	PropertyType string  `json:"propertyType" validate:"required,oneof=entire_place private_room shared_room"`
	AddressLine1 string  `json:"addressLine1"`
	City         string  `json:"city" validate:"required"`
	Country      string  `json:"country" validate:"required"`
	Lat          float32 `json:"lat"`
	Lng          float32 `json:"lng"`
	Capacity     int     `json:"capacity" validate:"min=1"`
	Bedrooms     int     `json:"bedrooms" validate:"min=0"`
	Bathrooms    float32 `json:"bathrooms" validate:"min=0"`
	NightlyPrice float64 `json:"nightlyPrice" validate:"required,gt=0"`
	CleaningFee  float64 `json:"cleaningFee" validate:"min=0"`
	Currency     string  `json:"currency"`
}

func CreateProperty(ctx iris.Context) {
	userID, ok := utils.CurrentUserID(ctx)
	if !ok {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var input CreatePropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	property := models.Property{
		HostID:       userID,
		Title:        input.Title,
		Description:  input.Description,
		PropertyType: input.PropertyType,
		AddressLine1: input.AddressLine1,
		City:         input.City,
		Country:      input.Country,
		Lat:          input.Lat,
		Lng:          input.Lng,
		Capacity:     input.Capacity,
		Bedrooms:     input.Bedrooms,
		Bathrooms:    input.Bathrooms,
		NightlyPrice: input.NightlyPrice,
		CleaningFee:  input.CleaningFee,
		Currency:     currency,
	}

	if err := storage.DB.Create(&property).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to create property")
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(property)
}

func GetProperty(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var property models.Property
	if err := storage.DB.Preload("Host").First(&property, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "property not found")
		return
	}

	ctx.JSON(property)
}

// ListHostProperties returns properties owned by the caller.
func ListHostProperties(ctx iris.Context) {
	userID, _ := utils.CurrentUserID(ctx)

	var properties []models.Property
	if err := storage.DB.Where("host_id = ?", userID).Order("created_at DESC").Find(&properties).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to fetch properties")
		return
	}
	ctx.JSON(iris.Map{"data": properties})
}
