package authhdl

import (
	"fmt"
	authdto "estate_crm/internal/api/auth/dto"
	authsvc "estate_crm/internal/api/auth/service"
	basehdl "estate_crm/internal/api/base/handler"
	models "estate_crm/internal/api/auth/models"
)

// OrganizationHandler xử lý các request liên quan đến Organization
type OrganizationHandler struct {
	*basehdl.BaseHandler[models.Organization, authdto.OrganizationCreateInput, authdto.OrganizationUpdateInput]
	OrganizationService *authsvc.OrganizationService
}

// NewOrganizationHandler tạo mới OrganizationHandler
func NewOrganizationHandler() (*OrganizationHandler, error) {
	organizationService, err := authsvc.NewOrganizationService()
	if err != nil {
		return nil, fmt.Errorf("failed to create organization service: %v", err)
	}
	base := basehdl.NewBaseHandler[models.Organization, authdto.OrganizationCreateInput, authdto.OrganizationUpdateInput](organizationService)
	h := &OrganizationHandler{
		BaseHandler:         base,
		OrganizationService: organizationService,
	}
	h.SetFilterOptions(basehdl.FilterOptions{
		DeniedFields: []string{"password", "token", "secret", "key", "hash"},
	})
	return h, nil
}
