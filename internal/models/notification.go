package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification maps to the `ipn_notifications` table. One row per
// authenticated IPN message.
type Notification struct {
	ID                 string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	MessageID          string    `gorm:"column:message_id;uniqueIndex;size:100" json:"message_id"`
	TopicArn           string    `gorm:"column:topic_arn;size:255" json:"topic_arn"`
	NotificationType   string    `gorm:"column:notification_type;size:100;index" json:"notification_type"`
	SellerID           string    `gorm:"column:seller_id;size:100" json:"seller_id"`
	ReleaseEnvironment string    `gorm:"column:release_environment;size:20" json:"release_environment"`
	NotificationData   string    `gorm:"column:notification_data;type:text" json:"notification_data"`
	Body               string    `gorm:"column:body;type:text" json:"body"`
	ReceivedAt         time.Time `gorm:"column:received_at" json:"received_at"`
}

func (Notification) TableName() string {
	return "ipn_notifications"
}

// BeforeCreate assigns a random ID and receive time when missing.
func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.ReceivedAt.IsZero() {
		n.ReceivedAt = time.Now().UTC()
	}
	return nil
}
