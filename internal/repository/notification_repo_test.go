package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"amazonpay/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestNotificationRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectExec("INSERT INTO `ipn_notifications`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n := &models.Notification{MessageID: "msg-1", NotificationType: "PaymentCapture"}
	require.NoError(t, repo.Create(context.Background(), n))

	assert.Len(t, n.ID, 36)
	assert.False(t, n.ReceivedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_FindByMessageID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "message_id", "notification_type", "received_at"}).
			AddRow("7a1c", "msg-1", "PaymentRefund", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
		mock.ExpectQuery("SELECT \\* FROM `ipn_notifications` WHERE message_id = \\?").
			WillReturnRows(rows)

		n, err := repo.FindByMessageID(ctx, "msg-1")
		require.NoError(t, err)
		require.NotNil(t, n)
		assert.Equal(t, "PaymentRefund", n.NotificationType)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT \\* FROM `ipn_notifications` WHERE message_id = \\?").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		n, err := repo.FindByMessageID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, n)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_FindAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `ipn_notifications` WHERE notification_type = \\?").
		WithArgs("PaymentCapture").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT \\* FROM `ipn_notifications` WHERE notification_type = \\? ORDER BY received_at DESC LIMIT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "message_id"}).AddRow("c", "msg-3"))

	got, total, err := repo.FindAll(context.Background(), 2, 2, "PaymentCapture")
	require.NoError(t, err)

	assert.Equal(t, int64(3), total)
	require.Len(t, got, 1)
	assert.Equal(t, "msg-3", got[0].MessageID)
	require.NoError(t, mock.ExpectationsWereMet())
}
