// Package router đăng ký các route thuộc domain CRM: clients, favorites, actions.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	crmhdl "estate_crm/internal/api/crm/handler"
	"estate_crm/internal/api/middleware"
	apirouter "estate_crm/internal/api/router"
)

// Register đăng ký tất cả route CRM lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	clientHandler, err := crmhdl.NewClientHandler()
	if err != nil {
		return fmt.Errorf("tạo ClientHandler: %w", err)
	}
	actionHandler, err := crmhdl.NewClientActionHandler()
	if err != nil {
		return fmt.Errorf("tạo ClientActionHandler: %w", err)
	}

	orgContextMiddleware := middleware.OrganizationContextMiddleware()
	readMiddlewares := []fiber.Handler{middleware.AuthMiddleware("Client.Read"), orgContextMiddleware}
	insertMiddlewares := []fiber.Handler{middleware.AuthMiddleware("Client.Insert"), orgContextMiddleware}
	updateMiddlewares := []fiber.Handler{middleware.AuthMiddleware("Client.Update"), orgContextMiddleware}
	deleteMiddlewares := []fiber.Handler{middleware.AuthMiddleware("Client.Delete"), orgContextMiddleware}
	assignMiddlewares := []fiber.Handler{middleware.AuthMiddleware("Client.Assign"), orgContextMiddleware}

	// GET /clients — danh sách theo filter (q, userId, favoritesOnly, status) + phân trang (page clamp)
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "GET", "", readMiddlewares, clientHandler.HandleList)

	// POST /clients — tạo khách, kiểm tra trùng SĐT trong tổ chức trước khi insert
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "POST", "", insertMiddlewares, clientHandler.HandleCreate)

	// Thao tác hàng loạt — một lệnh Mongo duy nhất cho mỗi thao tác
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/bulk-assign", assignMiddlewares, clientHandler.HandleBulkAssign)
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/bulk-unassign", assignMiddlewares, clientHandler.HandleBulkUnassign)
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/bulk-delete", deleteMiddlewares, clientHandler.HandleBulkDelete)

	// Yêu thích theo user
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "GET", "/favorites", readMiddlewares, clientHandler.HandleListFavorites)
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/:id/favorite", readMiddlewares, clientHandler.HandleToggleFavorite)

	// Workflow trên từng khách
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "PUT", "/:id/status", updateMiddlewares, clientHandler.HandleChangeStatus)
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "PUT", "/:id/rating", updateMiddlewares, clientHandler.HandleSetRating)
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "POST", "/:id/comments", updateMiddlewares, clientHandler.HandleAddComment)
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "DELETE", "/:id/next-action", updateMiddlewares, clientHandler.HandleClearNextAction)

	// Lịch sử thao tác
	apirouter.RegisterRouteWithMiddleware(v1, "/clients", "GET", "/:id/actions", readMiddlewares, clientHandler.HandleListActions)

	// CRUD chung (find, find-by-id, update-by-id, count...) — insert đi qua POST /clients
	clientConfig := apirouter.ReadWriteConfig
	clientConfig.InsOne = false
	clientConfig.InsMany = false
	r.RegisterCRUDRoutes(v1, "/client", clientHandler, clientConfig, "Client")

	// client_actions chỉ đọc qua CRUD chung; ghi do service tự làm
	r.RegisterCRUDRoutes(v1, "/client-action", actionHandler, apirouter.ReadOnlyConfig, "ClientAction")

	return nil
}
