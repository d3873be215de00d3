package authhdl

import (
	"fmt"
	"strings"

	authdto "estate_crm/internal/api/auth/dto"
	models "estate_crm/internal/api/auth/models"
	authsvc "estate_crm/internal/api/auth/service"
	basehdl "estate_crm/internal/api/base/handler"
	basesvc "estate_crm/internal/api/base/service"
	"estate_crm/internal/api/initsvc"
	"estate_crm/internal/common"
	"estate_crm/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler xử lý các request xác thực và quản lý người dùng
type UserHandler struct {
	*basehdl.BaseHandler[models.User, authdto.UserCreateInput, authdto.UserChangeInfoInput]
	userService     *authsvc.UserService
	roleService     *authsvc.RoleService
	userRoleService *authsvc.UserRoleService
}

// NewUserHandler tạo instance mới của UserHandler
func NewUserHandler() (*UserHandler, error) {
	userService, err := authsvc.NewUserService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %v", err)
	}
	roleService, err := authsvc.NewRoleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create role service: %v", err)
	}
	userRoleService, err := authsvc.NewUserRoleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user role service: %v", err)
	}
	baseHandler := basehdl.NewBaseHandler[models.User, authdto.UserCreateInput, authdto.UserChangeInfoInput](userService)
	return &UserHandler{
		BaseHandler:     baseHandler,
		userService:     userService,
		roleService:     roleService,
		userRoleService: userRoleService,
	}, nil
}

// currentUserID đọc user_id mà AuthMiddleware đã gắn vào context.
func currentUserID(c fiber.Ctx) (primitive.ObjectID, error) {
	userID := c.Locals("user_id")
	if userID == nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeAuth, "User not authenticated", common.StatusUnauthorized, nil)
	}
	objID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat, "Invalid user ID", common.StatusBadRequest, err)
	}
	return objID, nil
}

// sanitizeUser xóa các trường nhạy cảm trước khi trả về client
func sanitizeUser(user *models.User) {
	user.Password = ""
	user.Tokens = nil
}

// HandleRegister xử lý đăng ký tài khoản mới bằng email/mật khẩu
func (h *UserHandler) HandleRegister(c fiber.Ctx) error {
	var input authdto.UserRegisterInput
	if err := h.ParseRequestBody(c, &input); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	user, err := h.userService.Register(c.Context(), &input)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	logger.LogAuth("register", c, map[string]interface{}{"user_id": user.ID.Hex()})
	sanitizeUser(user)
	h.HandleResponse(c, user, nil)
	return nil
}

// HandleLogin xử lý đăng nhập bằng email/mật khẩu
func (h *UserHandler) HandleLogin(c fiber.Ctx) error {
	var input authdto.UserLoginInput
	if err := h.ParseRequestBody(c, &input); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	user, err := h.userService.Login(c.Context(), &input)
	if err != nil {
		logger.LogAuth("login_failed", c, map[string]interface{}{"email": input.Email})
		h.HandleResponse(c, nil, err)
		return nil
	}
	// First user becomes admin: nếu chưa có admin nào, tự động gán quyền Administrator cho user vừa login
	if initSvc, errInit := initsvc.NewInitService(); errInit == nil {
		if hasAdmin, _ := initSvc.HasAnyAdministrator(); !hasAdmin {
			logrus.WithFields(logrus.Fields{"user_id": user.ID.Hex()}).Info("Login: Tự động set user đầu tiên làm admin")
			if _, errSet := initSvc.SetAdministrator(user.ID); errSet != nil && errSet != common.ErrUserAlreadyAdmin {
				logrus.WithError(errSet).Warn("Login: Lỗi khi set admin, không fail login")
			}
		}
	}
	logger.LogAuth("login", c, map[string]interface{}{"user_id": user.ID.Hex()})
	user.Password = ""
	h.HandleResponse(c, user, nil)
	return nil
}

// HandleLogout xử lý đăng xuất người dùng
func (h *UserHandler) HandleLogout(c fiber.Ctx) error {
	objID, err := currentUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	var input authdto.UserLogoutInput
	if err := h.ParseRequestBody(c, &input); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	err = h.userService.Logout(c.Context(), objID, &input)
	if err == nil {
		logger.LogAuth("logout", c, map[string]interface{}{"user_id": objID.Hex()})
	}
	h.HandleResponse(c, nil, err)
	return nil
}

// HandleChangePassword xử lý đổi mật khẩu người dùng
func (h *UserHandler) HandleChangePassword(c fiber.Ctx) error {
	objID, err := currentUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	var input authdto.UserChangePasswordInput
	if err := h.ParseRequestBody(c, &input); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	err = h.userService.ChangePassword(c.Context(), objID, &input)
	h.HandleResponse(c, nil, err)
	return nil
}

// HandleGetProfile lấy thông tin profile của người dùng
func (h *UserHandler) HandleGetProfile(c fiber.Ctx) error {
	objID, err := currentUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	user, err := h.userService.GetDetail(c.Context(), objID)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	sanitizeUser(user)
	h.HandleResponse(c, user, nil)
	return nil
}

// HandleUpdateProfile cập nhật thông tin profile
func (h *UserHandler) HandleUpdateProfile(c fiber.Ctx) error {
	objID, err := currentUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	var input authdto.UserChangeInfoInput
	if err := h.ParseRequestBody(c, &input); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	update := &basesvc.UpdateData{Set: map[string]interface{}{"name": input.Name}}
	updatedUser, err := h.userService.BaseServiceMongoImpl.UpdateById(c.Context(), objID, update)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	sanitizeUser(&updatedUser)
	h.HandleResponse(c, updatedUser, nil)
	return nil
}

// HandleGetUserRoles lấy danh sách role của người dùng kèm thông tin organization của từng role.
// Role mồ côi (role hoặc organization đã bị xóa) bị bỏ qua thay vì làm hỏng cả danh sách.
func (h *UserHandler) HandleGetUserRoles(c fiber.Ctx) error {
	objID, err := currentUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	ctx := c.Context()
	userRoles, err := h.userRoleService.BaseServiceMongoImpl.Find(ctx, bson.M{"userId": objID}, nil)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	organizationService, err := authsvc.NewOrganizationService()
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	result := make([]map[string]interface{}, 0, len(userRoles))
	for _, userRole := range userRoles {
		role, err := h.roleService.BaseServiceMongoImpl.FindOneById(ctx, userRole.RoleID)
		if err != nil || role.OwnerOrganizationID.IsZero() {
			continue
		}
		org, err := organizationService.BaseServiceMongoImpl.FindOneById(ctx, role.OwnerOrganizationID)
		if err != nil {
			continue
		}
		result = append(result, map[string]interface{}{
			"roleId":              role.ID.Hex(),
			"roleName":            role.Name,
			"ownerOrganizationId": org.ID.Hex(),
			"organizationName":    org.Name,
			"organizationCode":    org.Code,
			"organizationType":    org.Type,
			"organizationLevel":   org.Level,
		})
	}
	h.HandleResponse(c, result, nil)
	return nil
}

// HandleGetSessions liệt kê các phiên đăng nhập đang hoạt động của người dùng
func (h *UserHandler) HandleGetSessions(c fiber.Ctx) error {
	objID, err := currentUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	// Token của phiên hiện tại lấy từ Authorization header để đánh dấu "current"
	currentToken := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	sessions, err := h.userService.ListSessions(c.Context(), objID, currentToken)
	h.HandleResponse(c, sessions, err)
	return nil
}

// HandleTerminateSession chấm dứt phiên đăng nhập trên một thiết bị
func (h *UserHandler) HandleTerminateSession(c fiber.Ctx) error {
	objID, err := currentUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	var input authdto.TerminateSessionInput
	if err := h.ParseRequestBody(c, &input); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	err = h.userService.TerminateSession(c.Context(), objID, input.Hwid)
	h.HandleResponse(c, nil, err)
	return nil
}
