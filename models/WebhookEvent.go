package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent records every processed payment-processor event. The unique
// EventID makes duplicate deliveries a no-op instead of a double credit.
type WebhookEvent struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	EventID     string         `json:"eventID" gorm:"type:varchar(255);uniqueIndex;not null"`
	Type        string         `json:"type" gorm:"type:varchar(64);index"`
	Payload     datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	ProcessedAt time.Time      `json:"processedAt"`
}
