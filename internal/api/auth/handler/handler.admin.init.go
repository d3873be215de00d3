// Package authhdl - handler init (set admin, init org, permissions, roles).
package authhdl

import (
	"fmt"

	basehdl "estate_crm/internal/api/base/handler"
	"estate_crm/internal/api/initsvc"
	"estate_crm/internal/common"
	"estate_crm/internal/utility"

	"github.com/gofiber/fiber/v3"
)

// InitHandler xử lý các route khởi tạo hệ thống. Không gắn BaseService
// vì mọi thao tác đều đi qua InitService thay vì CRUD trực tiếp.
type InitHandler struct {
	*basehdl.BaseHandler[interface{}, interface{}, interface{}]
	initService *initsvc.InitService
}

// NewInitHandler tạo một instance mới của InitHandler
func NewInitHandler() (*InitHandler, error) {
	initService, err := initsvc.NewInitService()
	if err != nil {
		return nil, fmt.Errorf("failed to create init service: %v", err)
	}
	return &InitHandler{
		BaseHandler: &basehdl.BaseHandler[interface{}, interface{}, interface{}]{},
		initService: initService,
	}, nil
}

// respondInitResult trả về message thành công hoặc lỗi của một bước khởi tạo.
func (h *InitHandler) respondInitResult(c fiber.Ctx, err error, message string) error {
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	h.HandleResponse(c, map[string]string{"message": message}, nil)
	return nil
}

// HandleSetAdministrator thiết lập administrator đầu tiên. Route này không yêu cầu
// quyền nên chỉ hoạt động khi hệ thống CHƯA có admin nào.
func (h *InitHandler) HandleSetAdministrator(c fiber.Ctx) error {
	hasAdmin, err := h.initService.HasAnyAdministrator()
	if err != nil {
		h.HandleResponse(c, nil, common.NewError(common.ErrCodeInternalServer, "Không thể kiểm tra trạng thái admin", common.StatusInternalServerError, err))
		return nil
	}
	if hasAdmin {
		h.HandleResponse(c, nil, common.NewError(
			common.ErrCodeBusinessState,
			"Hệ thống đã có admin. Vui lòng sử dụng endpoint /admin/user/set-administrator/:id với quyền Init.SetAdmin.",
			common.StatusForbidden, nil))
		return nil
	}
	id := h.GetIDFromContext(c)
	if id == "" {
		h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "ID không hợp lệ", common.StatusBadRequest, nil))
		return nil
	}
	result, err := h.initService.SetAdministrator(utility.String2ObjectID(id))
	h.HandleResponse(c, result, err)
	return nil
}

// HandleInitOrganization khởi tạo Organization Root
func (h *InitHandler) HandleInitOrganization(c fiber.Ctx) error {
	return h.respondInitResult(c, h.initService.InitRootOrganization(), "Organization Root đã được khởi tạo thành công")
}

// HandleInitPermissions khởi tạo Permissions
func (h *InitHandler) HandleInitPermissions(c fiber.Ctx) error {
	return h.respondInitResult(c, h.initService.InitPermission(), "Permissions đã được khởi tạo thành công")
}

// HandleInitRoles khởi tạo Roles
func (h *InitHandler) HandleInitRoles(c fiber.Ctx) error {
	if err := h.initService.InitRole(); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	return h.respondInitResult(c, h.initService.CheckPermissionForAdministrator(), "Roles đã được khởi tạo thành công")
}

// HandleInitAdminUser khởi tạo Admin User từ email/mật khẩu
func (h *InitHandler) HandleInitAdminUser(c fiber.Ctx) error {
	type InitAdminUserInput struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,strong_password"`
	}
	var input InitAdminUserInput
	if err := h.ParseRequestBody(c, &input); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	return h.respondInitResult(c, h.initService.InitAdminUser(input.Email, input.Password), "Admin user đã được khởi tạo thành công")
}

// HandleInitAll chạy cả ba bước khởi tạo, báo kết quả từng bước thay vì dừng ở lỗi đầu tiên.
func (h *InitHandler) HandleInitAll(c fiber.Ctx) error {
	stepResult := func(err error) map[string]string {
		if err != nil {
			return map[string]string{"status": "failed", "error": err.Error()}
		}
		return map[string]string{"status": "success"}
	}

	results := make(map[string]interface{})
	results["organization"] = stepResult(h.initService.InitRootOrganization())
	results["permissions"] = stepResult(h.initService.InitPermission())
	roleErr := h.initService.InitRole()
	results["roles"] = stepResult(roleErr)
	if roleErr == nil {
		_ = h.initService.CheckPermissionForAdministrator()
	}
	h.HandleResponse(c, results, nil)
	return nil
}

// HandleInitStatus kiểm tra trạng thái khởi tạo hệ thống
func (h *InitHandler) HandleInitStatus(c fiber.Ctx) error {
	status, err := h.initService.GetInitStatus()
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}
	h.HandleResponse(c, status, nil)
	return nil
}
