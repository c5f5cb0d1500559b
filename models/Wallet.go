package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PayoutStatusPending   = "pending"
	PayoutStatusCompleted = "completed"
	PayoutStatusRejected  = "rejected"
)

const (
	TransactionTypeBookingPayment = "booking-payment"
	TransactionTypePayout         = "payout"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusSucceeded = "succeeded"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Wallet holds a host's running balance. PendingBalance is earned but not yet
// withdrawable (released after the stay starts); AvailableBalance can be
// requested as a payout.
type Wallet struct {
	gorm.Model
	HostID           uint    `json:"hostID" gorm:"not null;uniqueIndex"`
	AvailableBalance float64 `json:"availableBalance" gorm:"default:0"`
	PendingBalance   float64 `json:"pendingBalance" gorm:"default:0"`
	Currency         string  `json:"currency" gorm:"type:varchar(3);default:'USD'"`

	Host *User `json:"host,omitempty" gorm:"foreignKey:HostID"`
}

// PayoutMethod is a host's registered destination for payouts. Details is an
// opaque blob (bank account, mobile money, ...) for the transfer extension
// point; the server never interprets it.
type PayoutMethod struct {
	gorm.Model
	UserID  uint           `json:"userID" gorm:"not null;index"`
	Label   string         `json:"label"`
	Details datatypes.JSON `json:"details" gorm:"type:jsonb"`
}

// Payout is a host request to convert available balance into an external
// transfer. Resolved by an administrator.
type Payout struct {
	gorm.Model
	HostID    uint    `json:"hostID" gorm:"not null;index"`
	Amount    float64 `json:"amount" gorm:"not null"`
	Status    string  `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Reference string  `json:"reference" gorm:"type:varchar(36);uniqueIndex"`
	MethodID  *uint   `json:"methodID"`

	Method *PayoutMethod `json:"method,omitempty" gorm:"foreignKey:MethodID"`
}

// Transaction is the append-only money ledger. One row per successful booking
// payment and one per payout request. Amount is negative for withdrawals.
// Status is only ever updated in place for payout-linked rows as the payout
// resolves.
type Transaction struct {
	gorm.Model
	Type        string  `json:"type" gorm:"type:varchar(30);not null;index"`
	Status      string  `json:"status" gorm:"type:varchar(20);not null;index"`
	Amount      float64 `json:"amount" gorm:"not null"`
	PlatformFee float64 `json:"platformFee"`
	OwnerPayout float64 `json:"ownerPayout"`
	HostID      uint    `json:"hostID" gorm:"index"`
	BookingID   *uint   `json:"bookingID" gorm:"index"`
	PayoutID    *uint   `json:"payoutID" gorm:"index"`
	PaymentRef  string  `json:"paymentRef" gorm:"type:varchar(255)"` // external payment-intent id
	Reference   string  `json:"reference" gorm:"type:varchar(36);uniqueIndex"`

	// ReleasedAt marks when this booking payment's OwnerPayout moved from the
	// wallet's pending balance to its available balance.
	ReleasedAt *time.Time `json:"releasedAt"`

	Booking *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
	Payout  *Payout  `json:"payout,omitempty" gorm:"foreignKey:PayoutID"`
}
