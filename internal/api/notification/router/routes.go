// Package router đăng ký các route thuộc domain Notification.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"estate_crm/internal/api/middleware"
	notifhdl "estate_crm/internal/api/notification/handler"
	apirouter "estate_crm/internal/api/router"
)

// Register đăng ký tất cả route thông báo lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	notificationHandler, err := notifhdl.NewNotificationHandler()
	if err != nil {
		return fmt.Errorf("tạo NotificationHandler: %w", err)
	}

	// Thông báo là dữ liệu của chính user — chỉ cần đăng nhập, filter theo user_id trong handler
	authOnly := []fiber.Handler{middleware.AuthMiddleware("")}

	apirouter.RegisterRouteWithMiddleware(v1, "/notifications", "GET", "", authOnly, notificationHandler.HandleListMine)
	apirouter.RegisterRouteWithMiddleware(v1, "/notifications", "GET", "/unread-count", authOnly, notificationHandler.HandleUnreadCount)
	apirouter.RegisterRouteWithMiddleware(v1, "/notifications", "PUT", "/read-all", authOnly, notificationHandler.HandleMarkAllRead)
	apirouter.RegisterRouteWithMiddleware(v1, "/notifications", "PUT", "/:id/read", authOnly, notificationHandler.HandleMarkRead)
	apirouter.RegisterRouteWithMiddleware(v1, "/notifications", "DELETE", "/:id", authOnly, notificationHandler.HandleDelete)

	// CRUD chung cho quản trị (đọc/xóa theo permission Notification.*)
	notificationConfig := apirouter.ReadOnlyConfig
	notificationConfig.DelById = true
	r.RegisterCRUDRoutes(v1, "/notification", notificationHandler, notificationConfig, "Notification")

	return nil
}
