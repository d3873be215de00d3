// Package initsvc chứa InitService dùng để khởi tạo dữ liệu ban đầu (permissions, roles, org, admin user).
// Tách ra package riêng để tránh import cycle giữa auth/service và các domain service.
package initsvc

import (
	"context"
	"fmt"
	"time"

	authmodels "estate_crm/internal/api/auth/models"
	authsvc "estate_crm/internal/api/auth/service"
	basesvc "estate_crm/internal/api/base/service"
	"estate_crm/internal/common"
	"estate_crm/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const administratorRoleName = "Administrator"

// InitService khởi tạo dữ liệu nền của hệ thống: bộ permission mặc định,
// System organization, role Administrator và admin user từ config.
// Mọi thao tác đều idempotent để chạy lại an toàn mỗi lần server khởi động.
type InitService struct {
	userService           *authsvc.UserService
	roleService           *authsvc.RoleService
	permissionService     *authsvc.PermissionService
	rolePermissionService *authsvc.RolePermissionService
	userRoleService       *authsvc.UserRoleService
	organizationService   *authsvc.OrganizationService
}

// NewInitService tạo mới InitService
func NewInitService() (*InitService, error) {
	userService, err := authsvc.NewUserService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %v", err)
	}
	roleService, err := authsvc.NewRoleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create role service: %v", err)
	}
	permissionService, err := authsvc.NewPermissionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create permission service: %v", err)
	}
	rolePermissionService, err := authsvc.NewRolePermissionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create role permission service: %v", err)
	}
	userRoleService, err := authsvc.NewUserRoleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user role service: %v", err)
	}
	organizationService, err := authsvc.NewOrganizationService()
	if err != nil {
		return nil, fmt.Errorf("failed to create organization service: %v", err)
	}

	// Đăng ký callback kiểm tra admin cho base service (tránh import cycle basesvc -> auth)
	basesvc.SetIsAdminFromContextFunc(authsvc.IsUserAdministratorFromContext)

	return &InitService{
		userService:           userService,
		roleService:           roleService,
		permissionService:     permissionService,
		rolePermissionService: rolePermissionService,
		userRoleService:       userRoleService,
		organizationService:   organizationService,
	}, nil
}

// InitialPermissions định nghĩa danh sách các quyền mặc định của hệ thống
// Được chia thành các module: Auth (Xác thực), CRM (Khách hàng), Catalog (Danh mục BĐS), Notification, Insight
var InitialPermissions = []authmodels.Permission{
	// ====================================  AUTH MODULE =============================================
	// Quản lý người dùng: Thêm, xem, sửa, xóa, khóa và phân quyền
	{Name: "User.Insert", Describe: "Quyền tạo người dùng", Group: "Auth", Category: "User"},
	{Name: "User.Read", Describe: "Quyền xem danh sách người dùng", Group: "Auth", Category: "User"},
	{Name: "User.Update", Describe: "Quyền cập nhật thông tin người dùng", Group: "Auth", Category: "User"},
	{Name: "User.Delete", Describe: "Quyền xóa người dùng", Group: "Auth", Category: "User"},
	{Name: "User.Block", Describe: "Quyền khóa/mở khóa người dùng", Group: "Auth", Category: "User"},
	{Name: "User.SetRole", Describe: "Quyền phân quyền cho người dùng", Group: "Auth", Category: "User"},

	// Quản lý tổ chức: Thêm, xem, sửa, xóa
	{Name: "Organization.Insert", Describe: "Quyền tạo tổ chức", Group: "Auth", Category: "Organization"},
	{Name: "Organization.Read", Describe: "Quyền xem danh sách tổ chức", Group: "Auth", Category: "Organization"},
	{Name: "Organization.Update", Describe: "Quyền cập nhật tổ chức", Group: "Auth", Category: "Organization"},
	{Name: "Organization.Delete", Describe: "Quyền xóa tổ chức", Group: "Auth", Category: "Organization"},

	// Chia sẻ dữ liệu giữa các tổ chức
	{Name: "OrganizationShare.Insert", Describe: "Quyền tạo chia sẻ dữ liệu tổ chức", Group: "Auth", Category: "OrganizationShare"},
	{Name: "OrganizationShare.Read", Describe: "Quyền xem chia sẻ dữ liệu tổ chức", Group: "Auth", Category: "OrganizationShare"},
	{Name: "OrganizationShare.Update", Describe: "Quyền cập nhật chia sẻ dữ liệu tổ chức", Group: "Auth", Category: "OrganizationShare"},
	{Name: "OrganizationShare.Delete", Describe: "Quyền xóa chia sẻ dữ liệu tổ chức", Group: "Auth", Category: "OrganizationShare"},

	// Cấu hình tổ chức
	{Name: "OrganizationConfig.Read", Describe: "Quyền xem cấu hình tổ chức", Group: "Auth", Category: "OrganizationConfig"},
	{Name: "OrganizationConfig.Update", Describe: "Quyền cập nhật cấu hình tổ chức", Group: "Auth", Category: "OrganizationConfig"},
	{Name: "OrganizationConfig.Delete", Describe: "Quyền xóa cấu hình tổ chức", Group: "Auth", Category: "OrganizationConfig"},

	// Quản lý vai trò và quyền
	{Name: "Role.Insert", Describe: "Quyền tạo vai trò", Group: "Auth", Category: "Role"},
	{Name: "Role.Read", Describe: "Quyền xem danh sách vai trò", Group: "Auth", Category: "Role"},
	{Name: "Role.Update", Describe: "Quyền cập nhật vai trò", Group: "Auth", Category: "Role"},
	{Name: "Role.Delete", Describe: "Quyền xóa vai trò", Group: "Auth", Category: "Role"},
	{Name: "Permission.Read", Describe: "Quyền xem danh sách quyền", Group: "Auth", Category: "Permission"},
	{Name: "RolePermission.Insert", Describe: "Quyền gán quyền cho vai trò", Group: "Auth", Category: "RolePermission"},
	{Name: "RolePermission.Read", Describe: "Quyền xem quan hệ vai trò-quyền", Group: "Auth", Category: "RolePermission"},
	{Name: "RolePermission.Update", Describe: "Quyền cập nhật quan hệ vai trò-quyền", Group: "Auth", Category: "RolePermission"},
	{Name: "RolePermission.Delete", Describe: "Quyền xóa quan hệ vai trò-quyền", Group: "Auth", Category: "RolePermission"},
	{Name: "UserRole.Insert", Describe: "Quyền gán vai trò cho người dùng", Group: "Auth", Category: "UserRole"},
	{Name: "UserRole.Read", Describe: "Quyền xem quan hệ người dùng-vai trò", Group: "Auth", Category: "UserRole"},
	{Name: "UserRole.Update", Describe: "Quyền cập nhật quan hệ người dùng-vai trò", Group: "Auth", Category: "UserRole"},
	{Name: "UserRole.Delete", Describe: "Quyền xóa quan hệ người dùng-vai trò", Group: "Auth", Category: "UserRole"},

	// Khởi tạo hệ thống
	{Name: "Init.SetAdmin", Describe: "Quyền gán administrator", Group: "Auth", Category: "Init"},

	// ====================================  CRM MODULE ==============================================
	// Quản lý khách hàng: Thêm, xem, sửa, xóa, gán nhân viên phụ trách
	{Name: "Client.Insert", Describe: "Quyền tạo khách hàng", Group: "CRM", Category: "Client"},
	{Name: "Client.Read", Describe: "Quyền xem danh sách khách hàng", Group: "CRM", Category: "Client"},
	{Name: "Client.Update", Describe: "Quyền cập nhật khách hàng", Group: "CRM", Category: "Client"},
	{Name: "Client.Delete", Describe: "Quyền xóa khách hàng", Group: "CRM", Category: "Client"},
	{Name: "Client.Assign", Describe: "Quyền gán/gỡ nhân viên phụ trách khách hàng", Group: "CRM", Category: "Client"},

	// Lịch sử tác nghiệp khách hàng
	{Name: "ClientAction.Insert", Describe: "Quyền ghi tác nghiệp khách hàng", Group: "CRM", Category: "ClientAction"},
	{Name: "ClientAction.Read", Describe: "Quyền xem tác nghiệp khách hàng", Group: "CRM", Category: "ClientAction"},
	{Name: "ClientAction.Update", Describe: "Quyền cập nhật tác nghiệp khách hàng", Group: "CRM", Category: "ClientAction"},
	{Name: "ClientAction.Delete", Describe: "Quyền xóa tác nghiệp khách hàng", Group: "CRM", Category: "ClientAction"},

	// ====================================  CATALOG MODULE ==========================================
	// Danh mục chủ đầu tư, dự án, phân khu/tòa, bảng hàng
	{Name: "Company.Insert", Describe: "Quyền tạo chủ đầu tư", Group: "Catalog", Category: "Company"},
	{Name: "Company.Read", Describe: "Quyền xem danh sách chủ đầu tư", Group: "Catalog", Category: "Company"},
	{Name: "Company.Update", Describe: "Quyền cập nhật chủ đầu tư", Group: "Catalog", Category: "Company"},
	{Name: "Company.Delete", Describe: "Quyền xóa chủ đầu tư", Group: "Catalog", Category: "Company"},
	{Name: "Project.Insert", Describe: "Quyền tạo dự án", Group: "Catalog", Category: "Project"},
	{Name: "Project.Read", Describe: "Quyền xem danh sách dự án", Group: "Catalog", Category: "Project"},
	{Name: "Project.Update", Describe: "Quyền cập nhật dự án", Group: "Catalog", Category: "Project"},
	{Name: "Project.Delete", Describe: "Quyền xóa dự án", Group: "Catalog", Category: "Project"},
	{Name: "ProjectUnit.Insert", Describe: "Quyền tạo phân khu/tòa", Group: "Catalog", Category: "ProjectUnit"},
	{Name: "ProjectUnit.Read", Describe: "Quyền xem danh sách phân khu/tòa", Group: "Catalog", Category: "ProjectUnit"},
	{Name: "ProjectUnit.Update", Describe: "Quyền cập nhật phân khu/tòa", Group: "Catalog", Category: "ProjectUnit"},
	{Name: "ProjectUnit.Delete", Describe: "Quyền xóa phân khu/tòa", Group: "Catalog", Category: "ProjectUnit"},
	{Name: "Property.Insert", Describe: "Quyền tạo sản phẩm BĐS", Group: "Catalog", Category: "Property"},
	{Name: "Property.Read", Describe: "Quyền xem bảng hàng BĐS", Group: "Catalog", Category: "Property"},
	{Name: "Property.Update", Describe: "Quyền cập nhật sản phẩm BĐS", Group: "Catalog", Category: "Property"},
	{Name: "Property.Delete", Describe: "Quyền xóa sản phẩm BĐS", Group: "Catalog", Category: "Property"},

	// ====================================  NOTIFICATION MODULE =====================================
	// Thông báo nhắc lịch tác nghiệp
	{Name: "Notification.Read", Describe: "Quyền xem thông báo", Group: "Notification", Category: "Notification"},
	{Name: "Notification.Update", Describe: "Quyền đánh dấu đã đọc thông báo", Group: "Notification", Category: "Notification"},
	{Name: "Notification.Delete", Describe: "Quyền xóa thông báo", Group: "Notification", Category: "Notification"},

	// ====================================  DELIVERY MODULE =========================================
	// Hàng đợi gửi email
	{Name: "Delivery.Send", Describe: "Quyền gửi thông báo trực tiếp qua hàng đợi", Group: "Notification", Category: "Delivery"},
	{Name: "DeliveryHistory.Read", Describe: "Quyền xem lịch sử gửi thông báo", Group: "Notification", Category: "Delivery"},

	// ====================================  INSIGHT MODULE ==========================================
	// Phân tích khách hàng
	{Name: "Insight.Read", Describe: "Quyền xem phân tích khách hàng", Group: "Insight", Category: "Insight"},
	{Name: "Insight.Refresh", Describe: "Quyền làm mới phân tích khách hàng", Group: "Insight", Category: "Insight"},
}

// findAdministratorRole tra role Administrator, ErrNotFound khi chưa khởi tạo.
func (h *InitService) findAdministratorRole(ctx context.Context) (authmodels.Role, error) {
	return h.roleService.BaseServiceMongoImpl.FindOne(ctx, bson.M{"name": administratorRoleName}, nil)
}

// InitPermission tạo các quyền mặc định còn thiếu, quyền đã có giữ nguyên.
func (h *InitService) InitPermission() error {
	for _, permission := range InitialPermissions {
		_, err := h.permissionService.BaseServiceMongoImpl.FindOne(context.TODO(), bson.M{"name": permission.Name}, nil)
		if err != common.ErrNotFound {
			continue
		}
		permission.IsSystem = true
		initCtx := basesvc.WithSystemDataInsertAllowed(context.TODO())
		if _, err := h.permissionService.BaseServiceMongoImpl.InsertOne(initCtx, permission); err != nil {
			return fmt.Errorf("failed to insert permission %s: %v", permission.Name, err)
		}
	}
	return nil
}

var systemOrgFilter = bson.M{
	"type":  authmodels.OrganizationTypeSystem,
	"level": -1,
	"code":  "SYSTEM",
}

// InitRootOrganization tạo Organization System (Level -1) nếu chưa có.
// Đây là tổ chức gốc chứa role Administrator, không có parent và không thể xóa.
func (h *InitService) InitRootOrganization() error {
	log := logger.GetAppLogger()

	_, err := h.organizationService.BaseServiceMongoImpl.FindOne(context.TODO(), systemOrgFilter, nil)
	if err == nil {
		log.Info("✅ [INIT] System Organization already exists, skipping creation")
		return nil
	}
	if err != common.ErrNotFound {
		log.Errorf("❌ [INIT] Failed to check system organization: %v", err)
		return fmt.Errorf("failed to check system organization: %v", err)
	}

	log.Info("🔄 [INIT] Creating new System Organization...")
	initCtx := basesvc.WithSystemDataInsertAllowed(context.TODO())
	_, err = h.organizationService.BaseServiceMongoImpl.InsertOne(initCtx, authmodels.Organization{
		Name:     "Hệ Thống",
		Code:     "SYSTEM",
		Type:     authmodels.OrganizationTypeSystem,
		ParentID: nil,
		Path:     "/system",
		Level:    -1,
		IsActive: true,
		IsSystem: true,
	})
	if err != nil {
		log.Errorf("❌ [INIT] Failed to create system organization: %v", err)
		return fmt.Errorf("failed to create system organization: %v", err)
	}

	log.Info("✅ [INIT] System Organization created successfully")
	return nil
}

// GetRootOrganization lấy System Organization (Level -1)
func (h *InitService) GetRootOrganization() (*authmodels.Organization, error) {
	org, err := h.organizationService.BaseServiceMongoImpl.FindOne(context.TODO(), systemOrgFilter, nil)
	if err != nil {
		return nil, fmt.Errorf("system organization not found: %v", err)
	}
	return &org, nil
}

// InitRole đảm bảo role Administrator tồn tại, thuộc System Organization
// và được gán đầy đủ mọi permission trong hệ thống.
func (h *InitService) InitRole() error {
	rootOrg, err := h.GetRootOrganization()
	if err != nil {
		return fmt.Errorf("failed to get system organization: %v", err)
	}

	adminRole, err := h.findAdministratorRole(context.TODO())
	if err != nil && err != common.ErrNotFound {
		return err
	}

	if err == common.ErrNotFound {
		initCtx := basesvc.WithSystemDataInsertAllowed(context.TODO())
		adminRole, err = h.roleService.BaseServiceMongoImpl.InsertOne(initCtx, authmodels.Role{
			Name:                administratorRoleName,
			Describe:            "Vai trò quản trị hệ thống",
			OwnerOrganizationID: rootOrg.ID,
			IsSystem:            true,
		})
		if err != nil {
			return fmt.Errorf("failed to create administrator role: %v", err)
		}
	} else if adminRole.OwnerOrganizationID.IsZero() {
		// Role tạo từ phiên bản cũ chưa gắn organization, vá lại cho đúng System org.
		_, err = h.roleService.BaseServiceMongoImpl.UpdateOne(context.TODO(), bson.M{"_id": adminRole.ID},
			bson.M{"$set": bson.M{"ownerOrganizationId": rootOrg.ID}}, nil)
		if err != nil {
			return fmt.Errorf("failed to update administrator role with organization: %v", err)
		}
	}

	return h.ensureAdministratorPermissions(adminRole.ID)
}

// ensureAdministratorPermissions gán mọi permission cho role Administrator với Scope = 1
// (tổ chức đó và mọi tổ chức con - vì thuộc System nên phủ toàn hệ thống).
func (h *InitService) ensureAdministratorPermissions(roleID primitive.ObjectID) error {
	permissions, err := h.permissionService.BaseServiceMongoImpl.Find(context.TODO(), bson.M{}, nil)
	if err != nil {
		return fmt.Errorf("failed to get permissions: %v", err)
	}

	for _, permission := range permissions {
		filter := bson.M{
			"roleId":       roleID,
			"permissionId": permission.ID,
		}
		existingRP, err := h.rolePermissionService.BaseServiceMongoImpl.FindOne(context.TODO(), filter, nil)
		if err != nil && err != common.ErrNotFound {
			continue
		}

		if err == common.ErrNotFound {
			_, err = h.rolePermissionService.BaseServiceMongoImpl.InsertOne(context.TODO(), authmodels.RolePermission{
				RoleID:       roleID,
				PermissionID: permission.ID,
				Scope:        1,
			})
			if err != nil {
				continue
			}
		} else if existingRP.Scope == 0 {
			// Scope 0 thu hẹp admin về một org, nâng lên 1 để admin thấy toàn hệ thống.
			_, err = h.rolePermissionService.BaseServiceMongoImpl.UpdateOne(context.TODO(), bson.M{"_id": existingRP.ID},
				bson.M{"$set": bson.M{"scope": 1}}, nil)
			if err != nil {
				continue
			}
		}
	}
	return nil
}

// CheckPermissionForAdministrator đảm bảo role Administrator tồn tại và đủ quyền
func (h *InitService) CheckPermissionForAdministrator() error {
	role, err := h.findAdministratorRole(context.TODO())
	if err == common.ErrNotFound {
		return h.InitRole()
	}
	if err != nil {
		return err
	}
	return h.ensureAdministratorPermissions(role.ID)
}

// SetAdministrator gán quyền Administrator cho một người dùng.
// Trả về ErrUserAlreadyAdmin nếu user đã có role này.
func (h *InitService) SetAdministrator(userID primitive.ObjectID) (result interface{}, err error) {
	user, err := h.userService.BaseServiceMongoImpl.FindOneById(context.TODO(), userID)
	if err != nil {
		return nil, err
	}

	role, err := h.findAdministratorRole(context.TODO())
	if err == common.ErrNotFound {
		if err := h.InitRole(); err != nil {
			return nil, err
		}
		role, err = h.findAdministratorRole(context.TODO())
	}
	if err != nil {
		return nil, err
	}

	_, err = h.userRoleService.BaseServiceMongoImpl.FindOne(context.TODO(), bson.M{"userId": user.ID, "roleId": role.ID}, nil)
	if err == nil {
		return nil, common.ErrUserAlreadyAdmin
	}
	if err != common.ErrNotFound {
		return nil, err
	}

	result, err = h.userRoleService.BaseServiceMongoImpl.InsertOne(context.TODO(), authmodels.UserRole{
		UserID: user.ID,
		RoleID: role.ID,
	})
	if err != nil {
		return nil, err
	}

	// Role đã gán xong; quyền thiếu chỉ cần bù ở lần init sau nên không fail ở đây.
	if err := h.CheckPermissionForAdministrator(); err != nil {
		logger.GetAppLogger().Warnf("⚠️ [INIT] Failed to check permissions for administrator: %v", err)
	}

	return result, nil
}

// InitAdminUser tạo user admin từ email/password trong config (nếu có)
// và tự động gán role Administrator.
func (h *InitService) InitAdminUser(email string, password string) error {
	if email == "" || password == "" {
		return nil
	}

	existingUser, err := h.userService.BaseServiceMongoImpl.FindOne(context.TODO(), bson.M{"email": email}, nil)
	if err != nil && err != common.ErrNotFound {
		return fmt.Errorf("failed to check existing admin user: %v", err)
	}

	userID := existingUser.ID
	if err == common.ErrNotFound {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %v", err)
		}

		now := time.Now().UnixMilli()
		createdUser, err := h.userService.BaseServiceMongoImpl.InsertOne(context.TODO(), authmodels.User{
			Email:     email,
			Name:      administratorRoleName,
			Password:  string(hashed),
			IsBlock:   false,
			Tokens:    []authmodels.Token{},
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("failed to create admin user: %v", err)
		}
		userID = createdUser.ID
	}

	if _, err := h.SetAdministrator(userID); err != nil && err != common.ErrUserAlreadyAdmin {
		return fmt.Errorf("failed to set administrator role: %v", err)
	}
	return nil
}

func errMessage(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}

// GetInitStatus báo cáo trạng thái khởi tạo: root org, permissions, role Administrator, admin users.
func (h *InitService) GetInitStatus() (map[string]interface{}, error) {
	status := make(map[string]interface{})

	_, err := h.GetRootOrganization()
	status["organization"] = map[string]interface{}{
		"initialized": err == nil,
		"error":       errMessage(err),
	}

	permissions, err := h.permissionService.BaseServiceMongoImpl.Find(context.TODO(), bson.M{}, nil)
	permissionCount := len(permissions)
	status["permissions"] = map[string]interface{}{
		"initialized": err == nil && permissionCount > 0,
		"count":       permissionCount,
		"error":       errMessage(err),
	}

	adminRole, err := h.findAdministratorRole(context.TODO())
	roleErr := err
	if roleErr == common.ErrNotFound {
		roleErr = nil
	}
	status["roles"] = map[string]interface{}{
		"initialized": err == nil,
		"error":       errMessage(roleErr),
	}

	adminUserCount := 0
	if err == nil {
		userRoles, err := h.userRoleService.BaseServiceMongoImpl.Find(context.TODO(), bson.M{"roleId": adminRole.ID}, nil)
		if err == nil {
			adminUserCount = len(userRoles)
		}
	}
	status["adminUsers"] = map[string]interface{}{
		"count":    adminUserCount,
		"hasAdmin": adminUserCount > 0,
	}

	return status, nil
}

// HasAnyAdministrator kiểm tra hệ thống đã có ít nhất một administrator chưa
func (h *InitService) HasAnyAdministrator() (bool, error) {
	adminRole, err := h.findAdministratorRole(context.TODO())
	if err == common.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	userRoles, err := h.userRoleService.BaseServiceMongoImpl.Find(context.TODO(), bson.M{"roleId": adminRole.ID}, nil)
	if err != nil {
		return false, err
	}
	return len(userRoles) > 0, nil
}
