// Package router đăng ký các route thuộc domain Catalog: companies, projects,
// project units, properties.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	cataloghdl "estate_crm/internal/api/catalog/handler"
	"estate_crm/internal/api/middleware"
	apirouter "estate_crm/internal/api/router"
)

// Register đăng ký tất cả route danh mục lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	companyHandler, err := cataloghdl.NewCompanyHandler()
	if err != nil {
		return fmt.Errorf("tạo CompanyHandler: %w", err)
	}
	projectHandler, err := cataloghdl.NewProjectHandler()
	if err != nil {
		return fmt.Errorf("tạo ProjectHandler: %w", err)
	}
	unitHandler, err := cataloghdl.NewProjectUnitHandler()
	if err != nil {
		return fmt.Errorf("tạo ProjectUnitHandler: %w", err)
	}
	propertyHandler, err := cataloghdl.NewPropertyHandler()
	if err != nil {
		return fmt.Errorf("tạo PropertyHandler: %w", err)
	}

	r.RegisterCRUDRoutes(v1, "/company", companyHandler, apirouter.ReadWriteConfig, "Company")
	r.RegisterCRUDRoutes(v1, "/project", projectHandler, apirouter.ReadWriteConfig, "Project")
	r.RegisterCRUDRoutes(v1, "/project-unit", unitHandler, apirouter.ReadWriteConfig, "ProjectUnit")
	r.RegisterCRUDRoutes(v1, "/property", propertyHandler, apirouter.ReadWriteConfig, "Property")

	// Bulk delete có confirm — cùng chính sách với clients
	orgContextMiddleware := middleware.OrganizationContextMiddleware()
	projectDeleteMiddlewares := []fiber.Handler{middleware.AuthMiddleware("Project.Delete"), orgContextMiddleware}
	unitDeleteMiddlewares := []fiber.Handler{middleware.AuthMiddleware("ProjectUnit.Delete"), orgContextMiddleware}

	apirouter.RegisterRouteWithMiddleware(v1, "/projects", "POST", "/bulk-delete", projectDeleteMiddlewares, projectHandler.HandleBulkDelete)
	apirouter.RegisterRouteWithMiddleware(v1, "/project-units", "POST", "/bulk-delete", unitDeleteMiddlewares, unitHandler.HandleBulkDelete)

	return nil
}
