package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"amazonpay/internal/models"
)

// NotificationRepository handles IPN notification database operations.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create stores a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// FindByMessageID returns the notification with the given SNS MessageId,
// or nil when there is none.
func (r *NotificationRepository) FindByMessageID(ctx context.Context, messageID string) (*models.Notification, error) {
	var n models.Notification
	err := r.db.WithContext(ctx).Where("message_id = ?", messageID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// FindAll returns notifications with pagination, newest first, optionally
// filtered by notification type.
func (r *NotificationRepository) FindAll(ctx context.Context, limit, page int, notificationType string) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Notification{})
	if notificationType != "" {
		db = db.Where("notification_type = ?", notificationType)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	if err := db.Limit(limit).Offset(offset).Order("received_at DESC").Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}
