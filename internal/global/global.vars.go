// Package global chứa các biến toàn cục của tiến trình: cấu hình server,
// phiên MongoDB, validator và registry collections.
package global

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"estate_crm/config"
	"estate_crm/internal/registry"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	// Auth
	Users           string // Tên collection cho người dùng
	Permissions     string // Tên collection cho quyền
	Roles           string // Tên collection cho vai trò
	RolePermissions string // Tên collection cho vai trò và quyền
	UserRoles       string // Tên collection cho người dùng và vai trò
	Organizations   string // Tên collection cho tổ chức

	OrganizationConfigItems string // Tên collection cho cấu hình theo tổ chức

	// CRM
	Clients         string // Tên collection cho khách hàng (lead)
	ClientFavorites string // Tên collection cho khách hàng yêu thích theo user
	ClientActions   string // Tên collection cho lịch sử thao tác trên khách hàng
	ClientInsights  string // Tên collection cho insight AI của khách hàng

	// Catalog
	Companies    string // Tên collection cho chủ đầu tư
	Projects     string // Tên collection cho dự án
	ProjectUnits string // Tên collection cho căn/lô trong dự án
	Properties   string // Tên collection cho bất động sản lẻ

	// Notification
	Notifications   string // Tên collection cho thông báo in-app
	DeliveryQueue   string // Tên collection cho hàng đợi gửi email
	DeliveryHistory string // Tên collection cho lịch sử gửi email
}

// Các biến toàn cục
var Validate *validator.Validate            // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client           // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration      // Cấu hình của server
var MongoDB_ColNames MongoDB_CollectionName // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
