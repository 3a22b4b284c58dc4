package handler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"amazonpay/internal/ipn"
	"amazonpay/internal/middleware"
	"amazonpay/internal/models"
	"amazonpay/internal/pkg/metrics"
)

const (
	// maxNotificationSize bounds the request body read for one notification.
	maxNotificationSize = 256 << 10
	maxListLimit        = 200
)

// NotificationStore persists authenticated notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	FindByMessageID(ctx context.Context, messageID string) (*models.Notification, error)
	FindAll(ctx context.Context, limit, page int, notificationType string) ([]models.Notification, int64, error)
}

// Notifier delivers a short admin notice.
type Notifier interface {
	SendMessage(ctx context.Context, chatID, text string) (string, error)
}

// IPNHandler receives Amazon Pay instant payment notifications.
type IPNHandler struct {
	certs    ipn.CertificateSource
	dedup    middleware.MessageDeduper
	store    NotificationStore
	notifier Notifier
	adminID  string
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// IPNDeps bundles the handler's collaborators. Store, Dedup and Notifier
// are optional.
type IPNDeps struct {
	Certs    ipn.CertificateSource
	Dedup    middleware.MessageDeduper
	Store    NotificationStore
	Notifier Notifier
	AdminID  string
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// NewIPNHandler creates a new IPN handler.
func NewIPNHandler(deps IPNDeps) *IPNHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IPNHandler{
		certs:    deps.Certs,
		dedup:    deps.Dedup,
		store:    deps.Store,
		notifier: deps.Notifier,
		adminID:  deps.AdminID,
		metrics:  deps.Metrics,
		logger:   logger,
	}
}

// Receive authenticates, deduplicates, stores and announces one
// notification. Rejected notifications get 403; certificate download
// failures get 503 so SNS redelivers.
func (h *IPNHandler) Receive(c echo.Context) error {
	req := c.Request()
	ctx := req.Context()

	body, err := io.ReadAll(io.LimitReader(req.Body, maxNotificationSize))
	if err != nil {
		return c.JSON(http.StatusBadRequest, failure("Failed to read body"))
	}

	n, err := ipn.Parse(req.Header, body, h.certs, h.logger)
	if err != nil {
		h.metrics.ObserveIPN("malformed")
		return c.JSON(http.StatusBadRequest, failure("Malformed notification"))
	}

	if err := n.Authenticate(ctx); err != nil {
		if errors.Is(err, ipn.ErrNotAuthentic) {
			h.metrics.ObserveIPN("rejected")
			return c.JSON(http.StatusForbidden, failure(err.Error()))
		}
		h.metrics.ObserveIPN("error")
		h.logger.Error("Notification could not be authenticated", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, failure("Signing certificate unavailable"))
	}

	if h.dedup != nil {
		dup, err := h.dedup.Seen(ctx, n.MessageID())
		if err != nil {
			h.logger.Warn("Dedup check failed, processing anyway", zap.Error(err))
		} else if dup {
			return h.duplicate(c)
		}
	}

	if h.store != nil {
		// The dedup cache may be in memory and lost on restart.
		existing, err := h.store.FindByMessageID(ctx, n.MessageID())
		if err != nil {
			h.logger.Warn("Stored notification lookup failed", zap.Error(err))
		} else if existing != nil {
			return h.duplicate(c)
		}

		if err := h.store.Create(ctx, toModel(n)); err != nil {
			h.logger.Error("Failed to store notification",
				zap.String("message_id", n.MessageID()),
				zap.Error(err),
			)
			if h.dedup != nil {
				_ = h.dedup.Forget(ctx, n.MessageID())
			}
			h.metrics.ObserveIPN("error")
			return c.JSON(http.StatusInternalServerError, failure("Failed to store notification"))
		}
	}

	h.notify(ctx, n)
	h.metrics.ObserveIPN("authentic")
	h.logger.Info("Notification accepted",
		zap.String("message_id", n.MessageID()),
		zap.String("notification_type", n.NotificationType()),
		zap.String("seller_id", n.SellerID()),
	)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":            true,
		"message_id":        n.MessageID(),
		"notification_type": n.NotificationType(),
	})
}

// List returns stored notifications, newest first.
func (h *IPNHandler) List(c echo.Context) error {
	if h.store == nil {
		return c.JSON(http.StatusNotFound, failure("Notification storage is disabled"))
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit > maxListLimit {
		limit = maxListLimit
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	items, total, err := h.store.FindAll(c.Request().Context(), limit, page, c.QueryParam("type"))
	if err != nil {
		h.logger.Error("Failed to list notifications", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, failure("Failed to list notifications"))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": true,
		"total":  total,
		"items":  items,
	})
}

func (h *IPNHandler) duplicate(c echo.Context) error {
	h.metrics.ObserveIPN("duplicate")
	return c.JSON(http.StatusOK, map[string]interface{}{"status": true, "duplicate": true})
}

func (h *IPNHandler) notify(ctx context.Context, n *ipn.Handler) {
	if h.notifier == nil || h.adminID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	text := fmt.Sprintf(
		"<b>Amazon Pay notification</b>\nType: %s\nSeller: %s\nEnvironment: %s\nMessageId: %s",
		html.EscapeString(n.NotificationType()),
		html.EscapeString(n.SellerID()),
		html.EscapeString(n.ReleaseEnvironment()),
		html.EscapeString(n.MessageID()),
	)
	if _, err := h.notifier.SendMessage(ctx, h.adminID, text); err != nil {
		h.logger.Warn("Failed to send admin notice", zap.Error(err))
	}
}

func toModel(n *ipn.Handler) *models.Notification {
	return &models.Notification{
		MessageID:          n.MessageID(),
		TopicArn:           n.TopicArn(),
		NotificationType:   n.NotificationType(),
		SellerID:           n.SellerID(),
		ReleaseEnvironment: n.ReleaseEnvironment(),
		NotificationData:   n.NotificationData(),
		Body:               string(n.Body()),
	}
}

func failure(msg string) map[string]interface{} {
	return map[string]interface{}{
		"status": false,
		"msg":    msg,
	}
}
