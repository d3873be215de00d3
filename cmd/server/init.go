package main

import (
	"context"

	"estate_crm/config"
	authmodels "estate_crm/internal/api/auth/models"
	catalogmodels "estate_crm/internal/api/catalog/models"
	crmmodels "estate_crm/internal/api/crm/models"
	deliverymodels "estate_crm/internal/api/delivery/models"
	insightmodels "estate_crm/internal/api/insight/models"
	notifmodels "estate_crm/internal/api/notification/models"
	"estate_crm/internal/database"
	"estate_crm/internal/global"

	"github.com/sirupsen/logrus"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	// Auth
	global.MongoDB_ColNames.Users = "auth_users"
	global.MongoDB_ColNames.Permissions = "auth_permissions"
	global.MongoDB_ColNames.Roles = "auth_roles"
	global.MongoDB_ColNames.RolePermissions = "auth_role_permissions"
	global.MongoDB_ColNames.UserRoles = "auth_user_roles"
	global.MongoDB_ColNames.Organizations = "auth_organizations"
	global.MongoDB_ColNames.OrganizationConfigItems = "auth_organization_config_items"

	// Module CRM (tiền tố crm_)
	global.MongoDB_ColNames.Clients = "crm_clients"
	global.MongoDB_ColNames.ClientFavorites = "crm_client_favorites"
	global.MongoDB_ColNames.ClientActions = "crm_client_actions"
	global.MongoDB_ColNames.ClientInsights = "crm_client_insights"

	// Danh mục BĐS (tiền tố catalog_)
	global.MongoDB_ColNames.Companies = "catalog_companies"
	global.MongoDB_ColNames.Projects = "catalog_projects"
	global.MongoDB_ColNames.ProjectUnits = "catalog_project_units"
	global.MongoDB_ColNames.Properties = "catalog_properties"

	// Thông báo in-app + Delivery System (hàng đợi gửi email)
	global.MongoDB_ColNames.Notifications = "notifications"
	global.MongoDB_ColNames.DeliveryQueue = "delivery_queue"
	global.MongoDB_ColNames.DeliveryHistory = "delivery_history"

	logrus.Info("Initialized collection names") // Ghi log thông báo đã khởi tạo tên các collection
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: no_xss, exists, config_value, ...)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator") // Ghi log thông báo đã khởi tạo validator
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.ServerConfig = config.NewConfig()
	if global.ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil") // Ghi log lỗi nếu khởi tạo cấu hình thất bại
	}
	logrus.Info("Initialized server config") // Ghi log thông báo đã khởi tạo cấu hình server
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err) // Ghi log lỗi nếu kết nối database thất bại
	}
	logrus.Info("Connected to MongoDB") // Ghi log thông báo đã kết nối database thành công

	// Khởi tạo các db và collections nếu chưa có
	database.EnsureDatabaseAndCollections(global.MongoDB_Session)
	logrus.Info("Ensured database and collections") // Ghi log thông báo đã đảm bảo database và các collection

	// Khởi tạo các index cho các collection theo tag `index` trên model
	dbName := global.ServerConfig.MongoDB_DBName
	db := global.MongoDB_Session.Database(dbName)

	// Auth
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Users), authmodels.User{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Permissions), authmodels.Permission{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Roles), authmodels.Role{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.UserRoles), authmodels.UserRole{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.RolePermissions), authmodels.RolePermission{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Organizations), authmodels.Organization{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.OrganizationConfigItems), authmodels.OrganizationConfigItem{})

	// CRM
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Clients), crmmodels.Client{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.ClientFavorites), crmmodels.ClientFavorite{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.ClientActions), crmmodels.ClientAction{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.ClientInsights), insightmodels.ClientInsight{})

	// Catalog
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Companies), catalogmodels.Company{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Projects), catalogmodels.Project{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.ProjectUnits), catalogmodels.ProjectUnit{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Properties), catalogmodels.Property{})

	// Notification + Delivery
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Notifications), notifmodels.Notification{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.DeliveryQueue), deliverymodels.DeliveryQueueItem{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.DeliveryHistory), deliverymodels.DeliveryHistory{})

	// Index bổ sung (partial index) không biểu diễn được qua tag
	if err := database.CreateCrmAdditionalIndexes(context.TODO(), db); err != nil {
		logrus.Warnf("Failed to create additional CRM indexes: %v", err)
	}
}
