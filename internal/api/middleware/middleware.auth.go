package middleware

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "estate_crm/internal/api/auth/models"
	authsvc "estate_crm/internal/api/auth/service"
	"estate_crm/internal/api/events"
	"estate_crm/internal/common"
	"estate_crm/internal/global"
	"estate_crm/internal/logger"
	"estate_crm/internal/utility"
)

// AuthManager gom các service auth mà middleware cần, kèm cache permission.
type AuthManager struct {
	UserCRUD           *authsvc.UserService
	RoleCRUD           *authsvc.RoleService
	PermissionCRUD     *authsvc.PermissionService
	RolePermissionCRUD *authsvc.RolePermissionService
	UserRoleCRUD       *authsvc.UserRoleService
	Cache              *utility.Cache
}

var (
	authManagerInstance *AuthManager
	authManagerOnce     sync.Once
)

// GetAuthManager trả về singleton AuthManager dùng chung cho mọi route.
func GetAuthManager() *AuthManager {
	authManagerOnce.Do(func() {
		var err error
		authManagerInstance, err = newAuthManager()
		if err != nil {
			panic(err)
		}
	})
	return authManagerInstance
}

func newAuthManager() (*AuthManager, error) {
	newManager := new(AuthManager)

	userService, err := authsvc.NewUserService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %v", err)
	}
	newManager.UserCRUD = userService

	roleService, err := authsvc.NewRoleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create role service: %v", err)
	}
	newManager.RoleCRUD = roleService

	permissionService, err := authsvc.NewPermissionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create permission service: %v", err)
	}
	newManager.PermissionCRUD = permissionService

	rolePermissionService, err := authsvc.NewRolePermissionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create role permission service: %v", err)
	}
	newManager.RolePermissionCRUD = rolePermissionService

	userRoleService, err := authsvc.NewUserRoleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user role service: %v", err)
	}
	newManager.UserRoleCRUD = userRoleService

	// Cache permission TTL 5 phút, dọn mỗi 10 phút
	newManager.Cache = utility.NewCache(5*time.Minute, 10*time.Minute)

	// Dữ liệu phân quyền đổi thì invalidate cache ngay, không chờ TTL
	events.OnDataChanged(func(ctx context.Context, event events.DataChangeEvent) {
		switch event.CollectionName {
		case global.MongoDB_ColNames.RolePermissions,
			global.MongoDB_ColNames.UserRoles,
			global.MongoDB_ColNames.Permissions:
			newManager.Cache.DeleteByPrefix("user_permissions:")
		}
	})

	return newManager, nil
}

// rolePermissionMap load map permissionName → scope của một role.
func (am *AuthManager) rolePermissionMap(roleID primitive.ObjectID, into map[string]byte) {
	findRolePermissions, err := am.RolePermissionCRUD.Find(context.TODO(), bson.M{"roleId": roleID}, nil)
	if err != nil {
		return
	}
	for _, rolePermission := range findRolePermissions {
		permission, err := am.PermissionCRUD.FindOneById(context.TODO(), rolePermission.PermissionID)
		if err != nil {
			continue
		}
		into[permission.Name] = rolePermission.Scope
	}
}

// getUserPermissions trả về map permissionName → scope của user, có cache.
// activeRoleID khác nil thì chỉ tính permission của role đó (role context);
// nil thì gộp permission của mọi role user đang có.
func (am *AuthManager) getUserPermissions(userID string, activeRoleID *primitive.ObjectID) (map[string]byte, error) {
	var cacheKey string
	if activeRoleID != nil {
		cacheKey = fmt.Sprintf("user_permissions:%s:role:%s", userID, activeRoleID.Hex())
	} else {
		cacheKey = "user_permissions:" + userID
	}

	if cached, found := am.Cache.Get(cacheKey); found {
		return cached.(map[string]byte), nil
	}

	permissions := make(map[string]byte)

	if activeRoleID != nil {
		// User phải thực sự có role này; không có thì permission rỗng
		_, err := am.UserRoleCRUD.FindOne(context.TODO(), bson.M{
			"userId": utility.String2ObjectID(userID),
			"roleId": *activeRoleID,
		}, nil)
		if err == nil {
			am.rolePermissionMap(*activeRoleID, permissions)
		}
	} else {
		findRoles, err := am.UserRoleCRUD.Find(context.TODO(), bson.M{"userId": utility.String2ObjectID(userID)}, nil)
		if err != nil {
			return nil, common.ConvertMongoError(err)
		}
		for _, userRole := range findRoles {
			am.rolePermissionMap(userRole.RoleID, permissions)
		}
	}

	am.Cache.Set(cacheKey, permissions)
	return permissions, nil
}

// findUserByToken tìm user đang giữ token.
// Field "token" giữ token của lần login gần nhất nên được query trước;
// không thấy thì dò trong array "tokens" (token theo hwid).
func (am *AuthManager) findUserByToken(token string) (authmodels.User, error) {
	user, err := am.UserCRUD.FindOne(context.Background(), bson.M{"token": token}, nil)
	if err == nil {
		return user, nil
	}

	user, err = am.UserCRUD.FindOne(context.Background(), bson.M{"tokens.jwtToken": token}, nil)
	if err == nil {
		return user, nil
	}

	return am.UserCRUD.FindOne(context.Background(), bson.M{
		"tokens": bson.M{
			"$elemMatch": bson.M{"jwtToken": token},
		},
	}, nil)
}

// resolveActiveRole đọc header X-Active-Role-ID, validate format và kiểm tra
// user thực sự có role đó. Trả về lỗi đã format sẵn cho response.
func resolveActiveRole(c fiber.Ctx, authManager *AuthManager, user authmodels.User, requirePermission string) (primitive.ObjectID, error) {
	activeRoleIDStr := c.Get("X-Active-Role-ID")
	if activeRoleIDStr == "" {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"user_id":    user.ID.Hex(),
			"user_email": user.Email,
			"path":       c.Path(),
			"permission": requirePermission,
		}).Warn("❌ [AUTH] Missing X-Active-Role-ID header")
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeAuthRole,
			"Thiếu header X-Active-Role-ID. Vui lòng chọn role để làm việc.",
			common.StatusBadRequest,
			nil,
		)
	}

	roleID, err := primitive.ObjectIDFromHex(activeRoleIDStr)
	if err != nil {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"user_id":        user.ID.Hex(),
			"active_role_id": activeRoleIDStr,
			"path":           c.Path(),
			"error":          err.Error(),
		}).Warn("❌ [AUTH] Invalid X-Active-Role-ID format")
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			"X-Active-Role-ID không đúng định dạng",
			common.StatusBadRequest,
			nil,
		)
	}

	userRoles, err := authManager.UserRoleCRUD.Find(context.Background(), bson.M{"userId": user.ID}, nil)
	if err != nil {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"user_id": user.ID.Hex(),
			"error":   err.Error(),
			"path":    c.Path(),
		}).Error("❌ [AUTH] Failed to get user roles")
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeAuthRole,
			"Không thể kiểm tra quyền truy cập",
			common.StatusForbidden,
			nil,
		)
	}

	if len(userRoles) == 0 {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"user_id":    user.ID.Hex(),
			"user_email": user.Email,
			"path":       c.Path(),
			"permission": requirePermission,
		}).Warn("❌ [AUTH] User has no roles, denying access")
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeAuthRole,
			"Người dùng chưa được gán vai trò. Vui lòng liên hệ quản trị viên để được cấp quyền truy cập.",
			common.StatusForbidden,
			nil,
		)
	}

	for _, userRole := range userRoles {
		if userRole.RoleID == roleID {
			return roleID, nil
		}
	}

	// Role không thuộc user: reject kèm danh sách role hợp lệ để frontend
	// refresh lại role list thay vì fallback sang role khác
	validRoleIDs := make([]string, 0, len(userRoles))
	for _, userRole := range userRoles {
		validRoleIDs = append(validRoleIDs, userRole.RoleID.Hex())
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"user_id":        user.ID.Hex(),
		"active_role_id": roleID.Hex(),
		"valid_role_ids": validRoleIDs,
		"path":           c.Path(),
	}).Warn("⚠️ [AUTH] User does not have this role, rejecting request")

	return primitive.NilObjectID, common.NewError(
		common.ErrCodeAuthRole,
		"Người dùng không có quyền sử dụng role này. Vui lòng chọn role khác hoặc liên hệ quản trị viên.",
		common.StatusForbidden,
		map[string]interface{}{
			"invalidRoleId": roleID.Hex(),
			"validRoleIds":  validRoleIDs,
			"errorCode":     "ROLE_CONTEXT_INVALID",
		},
	)
}

// AuthMiddleware xác thực Bearer token và, khi requirePermission khác rỗng,
// kiểm tra permission trong role context (header X-Active-Role-ID bắt buộc).
// Sau middleware, context có user_id, user, và (với route có permission)
// minScope + permission_name.
func AuthMiddleware(requirePermission string) fiber.Handler {
	authManager := GetAuthManager()

	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("❌ [AUTH] Missing Authorization header")
			HandleErrorResponse(c, common.ErrTokenMissing)
			return nil
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		token := parts[1]

		// Check chữ ký trước khi đụng tới database
		if _, err := utility.ParseToken(global.ServerConfig.JwtSecret, token); err != nil {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		user, err := authManager.findUserByToken(token)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":  c.Path(),
				"error": err.Error(),
			}).Warn("❌ [AUTH] Token not found in database")
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		if user.IsBlock {
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthCredentials,
				"Tài khoản đã bị khóa: "+user.BlockNote,
				common.StatusForbidden,
				nil,
			))
			return nil
		}

		c.Locals("user_id", user.ID.Hex())
		c.Locals("user", user)

		// Route chỉ cần đăng nhập (vd /auth/roles): không cần role context
		if requirePermission == "" {
			return c.Next()
		}

		roleID, err := resolveActiveRole(c, authManager, user, requirePermission)
		if err != nil {
			HandleErrorResponse(c, err)
			return nil
		}

		permissions, err := authManager.getUserPermissions(user.ID.Hex(), &roleID)
		if err != nil {
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthRole,
				"Không thể lấy thông tin quyền",
				common.StatusForbidden,
				nil,
			))
			return nil
		}

		scope, hasPermission := permissions[requirePermission]
		if !hasPermission {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"user_id":             user.ID.Hex(),
				"user_email":          user.Email,
				"active_role_id":      roleID.Hex(),
				"required_permission": requirePermission,
				"path":                c.Path(),
			}).Warn("❌ [AUTH] User does not have required permission")
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthRole,
				"Không có quyền truy cập. Vui lòng kiểm tra lại role context hoặc liên hệ quản trị viên.",
				common.StatusForbidden,
				nil,
			))
			return nil
		}

		c.Locals("minScope", scope)
		c.Locals("permission_name", requirePermission)
		return c.Next()
	}
}
