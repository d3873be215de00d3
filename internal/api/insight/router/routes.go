// Package router đăng ký các route thuộc domain Insight.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	insighthdl "estate_crm/internal/api/insight/handler"
	"estate_crm/internal/api/middleware"
	apirouter "estate_crm/internal/api/router"
)

// Register đăng ký các route insight lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	insightHandler, err := insighthdl.NewInsightHandler()
	if err != nil {
		return fmt.Errorf("tạo InsightHandler: %w", err)
	}

	orgContextMiddleware := middleware.OrganizationContextMiddleware()
	readMiddlewares := []fiber.Handler{middleware.AuthMiddleware("Insight.Read"), orgContextMiddleware}
	refreshMiddlewares := []fiber.Handler{middleware.AuthMiddleware("Insight.Refresh"), orgContextMiddleware}

	// Insight gắn theo khách: xem bản hiện có và chủ động tính lại
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "GET", "/:id/insights", readMiddlewares, insightHandler.HandleGetClientInsight)
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/:id/insights/refresh", refreshMiddlewares, insightHandler.HandleRefreshClientInsight)

	// CRUD chỉ đọc cho màn quản trị
	r.RegisterCRUDRoutes(v1, "/client-insight", insightHandler, apirouter.ReadOnlyConfig, "Insight")

	return nil
}
