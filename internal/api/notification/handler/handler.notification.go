// Package notifhdl - Handler thông báo in-app của user.
package notifhdl

import (
	"fmt"

	basehdl "estate_crm/internal/api/base/handler"
	notifmodels "estate_crm/internal/api/notification/models"
	notifsvc "estate_crm/internal/api/notification/service"
	"estate_crm/internal/common"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler xử lý các request thông báo.
type NotificationHandler struct {
	*basehdl.BaseHandler[notifmodels.Notification, notifmodels.Notification, notifmodels.Notification]
	notificationService *notifsvc.NotificationService
}

// NewNotificationHandler tạo NotificationHandler mới.
func NewNotificationHandler() (*NotificationHandler, error) {
	notificationService, err := notifsvc.NewNotificationService()
	if err != nil {
		return nil, fmt.Errorf("tạo NotificationService: %w", err)
	}
	return &NotificationHandler{
		BaseHandler:         basehdl.NewBaseHandler[notifmodels.Notification, notifmodels.Notification, notifmodels.Notification](notificationService),
		notificationService: notificationService,
	}, nil
}

func getUserIDFromContext(c fiber.Ctx) (primitive.ObjectID, error) {
	userIDStr, ok := c.Locals("user_id").(string)
	if !ok || userIDStr == "" {
		return primitive.NilObjectID, common.NewError(common.ErrCodeAuthToken, "Chưa đăng nhập", common.StatusUnauthorized, nil)
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat, "user_id không hợp lệ", common.StatusBadRequest, err)
	}
	return userID, nil
}

// HandleListMine xử lý GET /notifications — thông báo của user hiện tại, mới nhất trước.
func (h *NotificationHandler) HandleListMine(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := getUserIDFromContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		page, limit := h.ParsePagination(c)
		result, err := h.notificationService.FindForUser(c.Context(), userID, page, limit)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleUnreadCount xử lý GET /notifications/unread-count.
func (h *NotificationHandler) HandleUnreadCount(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := getUserIDFromContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		count, err := h.notificationService.UnreadCount(c.Context(), userID)
		h.HandleResponse(c, fiber.Map{"count": count}, err)
		return nil
	})
}

// HandleMarkRead xử lý PUT /notifications/:id/read.
func (h *NotificationHandler) HandleMarkRead(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := getUserIDFromContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		notificationID, err := primitive.ObjectIDFromHex(h.GetIDFromContext(c))
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Id thông báo không hợp lệ", common.StatusBadRequest, err))
			return nil
		}
		notification, err := h.notificationService.MarkRead(c.Context(), notificationID, userID)
		h.HandleResponse(c, notification, err)
		return nil
	})
}

// HandleMarkAllRead xử lý PUT /notifications/read-all.
func (h *NotificationHandler) HandleMarkAllRead(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := getUserIDFromContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		modified, err := h.notificationService.MarkAllRead(c.Context(), userID)
		h.HandleResponse(c, fiber.Map{"modified": modified}, err)
		return nil
	})
}

// HandleDelete xử lý DELETE /notifications/:id.
func (h *NotificationHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		userID, err := getUserIDFromContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		notificationID, err := primitive.ObjectIDFromHex(h.GetIDFromContext(c))
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Id thông báo không hợp lệ", common.StatusBadRequest, err))
			return nil
		}
		if err := h.notificationService.Delete(c.Context(), notificationID, userID); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, fiber.Map{"id": notificationID.Hex()}, nil)
		return nil
	})
}
