package authhdl

import (
	"fmt"
	authdto "estate_crm/internal/api/auth/dto"
	authsvc "estate_crm/internal/api/auth/service"
	basehdl "estate_crm/internal/api/base/handler"
	models "estate_crm/internal/api/auth/models"
)

// PermissionHandler xử lý các route liên quan đến permission
type PermissionHandler struct {
	*basehdl.BaseHandler[models.Permission, authdto.PermissionCreateInput, authdto.PermissionUpdateInput]
}

// NewPermissionHandler tạo instance mới của PermissionHandler
func NewPermissionHandler() (*PermissionHandler, error) {
	permissionService, err := authsvc.NewPermissionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create permission service: %v", err)
	}
	return &PermissionHandler{
		BaseHandler: basehdl.NewBaseHandler[models.Permission, authdto.PermissionCreateInput, authdto.PermissionUpdateInput](permissionService),
	}, nil
}
