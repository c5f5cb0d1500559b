package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/models"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/services"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/storage"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	errWalletMissing       = errors.New("wallet not found")
	errInsufficientBalance = errors.New("insufficient balance")
)

func jsonMarshal(v interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

type PayoutRequestInput struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	MethodID *uint   `json:"methodID"`
}

type PayoutMethodInput struct {
	Label   string                 `json:"label" validate:"required"`
	Details map[string]interface{} `json:"details"`
}

// GetWallet returns the caller's wallet, creating an empty one on first use.
func GetWallet(ctx iris.Context) {
	userID, _ := utils.CurrentUserID(ctx)

	var wallet models.Wallet
	if err := storage.DB.Where(models.Wallet{HostID: userID}).FirstOrCreate(&wallet).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to load wallet")
		return
	}
	ctx.JSON(wallet)
}

// ListTransactions returns the caller's ledger rows, newest first.
func ListTransactions(ctx iris.Context) {
	userID, _ := utils.CurrentUserID(ctx)
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	q := storage.DB.Model(&models.Transaction{}).Where("host_id = ?", userID)

	var total int64
	q.Count(&total)

	var items []models.Transaction
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, items, page, perPage, total)
}

// RequestPayout converts available balance into a pending payout. The check
// and the debit run inside one transaction under the wallet advisory lock, so
// two concurrent requests cannot both spend the same balance.
func RequestPayout(ctx iris.Context) {
	userID, ok := utils.CurrentUserID(ctx)
	if !ok {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var input PayoutRequestInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.Amount <= 0 {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_amount", "amount must be greater than zero")
		return
	}

	if input.MethodID != nil {
		var method models.PayoutMethod
		if err := storage.DB.Where("id = ? AND user_id = ?", *input.MethodID, userID).First(&method).Error; err != nil {
			utils.JSONError(ctx, http.StatusNotFound, "not_found", "payout method not found")
			return
		}
	}

	lockKey := storage.WalletLockKey(userID)
	if !storage.AcquireLock(lockKey) {
		utils.JSONError(ctx, http.StatusConflict, "busy", "wallet is busy, try again")
		return
	}
	defer storage.ReleaseLock(lockKey)

	var payout models.Payout
	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		var wallet models.Wallet
		if err := tx.Where("host_id = ?", userID).First(&wallet).Error; err != nil {
			return errWalletMissing
		}
		if wallet.AvailableBalance < input.Amount {
			return errInsufficientBalance
		}

		payout = models.Payout{
			HostID:    userID,
			Amount:    input.Amount,
			Status:    models.PayoutStatusPending,
			Reference: uuid.NewString(),
			MethodID:  input.MethodID,
		}
		if err := tx.Create(&payout).Error; err != nil {
			return err
		}

		newBalance := services.RoundCents(wallet.AvailableBalance - input.Amount)
		if err := tx.Model(&wallet).Update("available_balance", newBalance).Error; err != nil {
			return err
		}

		entry := models.Transaction{
			Type:        models.TransactionTypePayout,
			Status:      models.TransactionStatusPending,
			Amount:      -input.Amount,
			OwnerPayout: input.Amount,
			HostID:      userID,
			PayoutID:    &payout.ID,
			Reference:   uuid.NewString(),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		switch err {
		case errWalletMissing:
			utils.JSONError(ctx, http.StatusNotFound, "not_found", "wallet not found")
		case errInsufficientBalance:
			utils.JSONError(ctx, http.StatusBadRequest, "insufficient_balance", "available balance is too low")
		default:
			utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to create payout")
		}
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"payout": payout})
}

// ListMyPayouts returns the caller's payout requests, newest first.
func ListMyPayouts(ctx iris.Context) {
	userID, _ := utils.CurrentUserID(ctx)

	var payouts []models.Payout
	if err := storage.DB.Where("host_id = ?", userID).Order("created_at DESC").Find(&payouts).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to fetch payouts")
		return
	}
	ctx.JSON(iris.Map{"data": payouts})
}

// CreatePayoutMethod registers a payout destination for the caller.
func CreatePayoutMethod(ctx iris.Context) {
	userID, _ := utils.CurrentUserID(ctx)

	var input PayoutMethodInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	method := models.PayoutMethod{UserID: userID, Label: input.Label}
	if input.Details != nil {
		if raw, err := jsonMarshal(input.Details); err == nil {
			method.Details = raw
		}
	}

	if err := storage.DB.Create(&method).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to save payout method")
		return
	}
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(method)
}

// ListPayoutMethods returns the caller's payout destinations.
func ListPayoutMethods(ctx iris.Context) {
	userID, _ := utils.CurrentUserID(ctx)

	var methods []models.PayoutMethod
	if err := storage.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&methods).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to fetch payout methods")
		return
	}
	ctx.JSON(iris.Map{"data": methods})
}
