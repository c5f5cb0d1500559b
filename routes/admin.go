package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/models"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/services"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/storage"
	"github.com/abdellahaitdahmou/Luxe-haven-WS-sub001/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

var errPayoutResolved = errors.New("payout already resolved")

type PayoutActionInput struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Reason string `json:"reason"`
}

// GET /admin/payouts
func AdminListPayouts(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	status := ctx.URLParamDefault("status", "")
	hostID := ctx.URLParamDefault("host_id", "")

	q := storage.DB.Model(&models.Payout{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if hostID != "" {
		q = q.Where("host_id = ?", hostID)
	}

	var total int64
	q.Count(&total)

	var items []models.Payout
	if err := q.Preload("Method").Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, items, page, perPage, total)
}

// POST /admin/payouts/:id/action
// Approve finalizes the payout and its ledger row; moving the funds to the
// host's external account is an extension point. Reject refunds the amount to
// the host's available balance and marks the ledger row failed. Each branch
// is a single transaction so the payout, wallet and ledger never disagree.
func AdminPayoutAction(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input PayoutActionInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.Action != "approve" && input.Action != "reject" {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_action", "action must be approve or reject")
		return
	}

	var payout models.Payout
	if err := storage.DB.First(&payout, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "payout not found")
		return
	}
	before := payout

	err = resolvePayout(&payout, input.Action)
	switch err {
	case nil:
	case errPayoutResolved:
		utils.JSONError(ctx, http.StatusConflict, "already_resolved", "payout is not pending")
		return
	default:
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to resolve payout")
		return
	}

	utils.Audit(ctx, "payout_"+input.Action, "payout", payout.ID, before, payout)
	ctx.JSON(iris.Map{"success": true, "payout": payout})
}

// resolvePayout applies an approve or reject to a pending payout in one
// transaction. The pending-to-resolved transition is a conditional update, so
// two concurrent actions on the same payout cannot both take effect: the
// loser sees zero rows affected and gets errPayoutResolved.
func resolvePayout(payout *models.Payout, action string) error {
	newStatus := models.PayoutStatusCompleted
	if action == "reject" {
		newStatus = models.PayoutStatusRejected
	}

	return storage.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payout{}).
			Where("id = ? AND status = ?", payout.ID, models.PayoutStatusPending).
			Update("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPayoutResolved
		}
		payout.Status = newStatus

		if action == "approve" {
			return tx.Model(&models.Transaction{}).Where("payout_id = ?", payout.ID).
				Update("status", models.TransactionStatusCompleted).Error
		}

		// reject: refund the debited amount
		var wallet models.Wallet
		if err := tx.Where(models.Wallet{HostID: payout.HostID}).FirstOrCreate(&wallet).Error; err != nil {
			return err
		}
		refunded := services.RoundCents(wallet.AvailableBalance + payout.Amount)
		if err := tx.Model(&wallet).Update("available_balance", refunded).Error; err != nil {
			return err
		}
		return tx.Model(&models.Transaction{}).Where("payout_id = ?", payout.ID).
			Update("status", models.TransactionStatusFailed).Error
	})
}

// GET /admin/transactions
func AdminListTransactions(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	txType := ctx.URLParamDefault("type", "")
	status := ctx.URLParamDefault("status", "")

	q := storage.DB.Model(&models.Transaction{})
	if txType != "" {
		q = q.Where("type = ?", txType)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	q.Count(&total)

	var items []models.Transaction
	if err := q.Preload("Booking").Preload("Payout").Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, items, page, perPage, total)
}

// POST /admin/wallets/release
// Moves matured booking earnings (stay already started) from pending to
// available balance across all hosts.
func AdminReleaseFunds(ctx iris.Context) {
	released, err := services.ReleaseDueFunds(time.Now())
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "failed to release funds")
		return
	}
	utils.Audit(ctx, "wallets_release", "wallet", 0, nil, iris.Map{"released": released})
	ctx.JSON(iris.Map{"success": true, "released": released})
}
