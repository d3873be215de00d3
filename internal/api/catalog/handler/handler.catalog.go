// Package cataloghdl - Handler danh mục: company, project, project unit, property.
// CRUD đi qua BaseHandler; các route bulk-delete có confirm viết riêng.
package cataloghdl

import (
	"fmt"

	basehdl "estate_crm/internal/api/base/handler"
	catalogdto "estate_crm/internal/api/catalog/dto"
	catalogmodels "estate_crm/internal/api/catalog/models"
	catalogsvc "estate_crm/internal/api/catalog/service"
	"estate_crm/internal/common"
	"estate_crm/internal/logger"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompanyHandler CRUD chủ đầu tư.
type CompanyHandler struct {
	*basehdl.BaseHandler[catalogmodels.Company, catalogdto.CompanyCreateInput, catalogdto.CompanyUpdateInput]
}

// NewCompanyHandler tạo CompanyHandler mới.
func NewCompanyHandler() (*CompanyHandler, error) {
	companyService, err := catalogsvc.NewCompanyService()
	if err != nil {
		return nil, fmt.Errorf("tạo CompanyService: %w", err)
	}
	return &CompanyHandler{
		BaseHandler: basehdl.NewBaseHandler[catalogmodels.Company, catalogdto.CompanyCreateInput, catalogdto.CompanyUpdateInput](companyService),
	}, nil
}

// ProjectHandler CRUD dự án + bulk delete có confirm.
type ProjectHandler struct {
	*basehdl.BaseHandler[catalogmodels.Project, catalogdto.ProjectCreateInput, catalogdto.ProjectUpdateInput]
	projectService *catalogsvc.ProjectService
}

// NewProjectHandler tạo ProjectHandler mới.
func NewProjectHandler() (*ProjectHandler, error) {
	projectService, err := catalogsvc.NewProjectService()
	if err != nil {
		return nil, fmt.Errorf("tạo ProjectService: %w", err)
	}
	return &ProjectHandler{
		BaseHandler:    basehdl.NewBaseHandler[catalogmodels.Project, catalogdto.ProjectCreateInput, catalogdto.ProjectUpdateInput](projectService),
		projectService: projectService,
	}, nil
}

func getActiveOrganizationID(c fiber.Ctx) (primitive.ObjectID, error) {
	orgIDStr, ok := c.Locals("active_organization_id").(string)
	if !ok || orgIDStr == "" {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationInput, "Vui lòng chọn tổ chức", common.StatusBadRequest, nil)
	}
	orgID, err := primitive.ObjectIDFromHex(orgIDStr)
	if err != nil {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationFormat, "Tổ chức không hợp lệ", common.StatusBadRequest, err)
	}
	return orgID, nil
}

func parseIds(ids []string) ([]primitive.ObjectID, error) {
	objIds := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, common.NewError(common.ErrCodeValidationFormat, "ids chứa id không hợp lệ: "+id, common.StatusBadRequest, err)
		}
		objIds = append(objIds, objID)
	}
	return objIds, nil
}

// HandleBulkDelete xử lý POST /projects/bulk-delete. Confirm bắt buộc,
// căn/lô của dự án bị xóa kèm.
func (h *ProjectHandler) HandleBulkDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, err := getActiveOrganizationID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input catalogdto.CatalogBulkDeleteInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		ids, err := parseIds(input.Ids)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		result, err := h.projectService.BulkDelete(c.Context(), ids, input.Confirm, orgID)
		if err == nil {
			logger.LogBulkOperation("project_bulk_delete", input.Ids, c, nil)
		}
		h.HandleResponse(c, result, err)
		return nil
	})
}

// ProjectUnitHandler CRUD căn/lô + bulk delete có confirm.
type ProjectUnitHandler struct {
	*basehdl.BaseHandler[catalogmodels.ProjectUnit, catalogdto.ProjectUnitCreateInput, catalogdto.ProjectUnitUpdateInput]
	unitService    *catalogsvc.ProjectUnitService
	projectService *catalogsvc.ProjectService
}

// NewProjectUnitHandler tạo ProjectUnitHandler mới.
func NewProjectUnitHandler() (*ProjectUnitHandler, error) {
	unitService, err := catalogsvc.NewProjectUnitService()
	if err != nil {
		return nil, fmt.Errorf("tạo ProjectUnitService: %w", err)
	}
	projectService, err := catalogsvc.NewProjectService()
	if err != nil {
		return nil, fmt.Errorf("tạo ProjectService: %w", err)
	}
	return &ProjectUnitHandler{
		BaseHandler:    basehdl.NewBaseHandler[catalogmodels.ProjectUnit, catalogdto.ProjectUnitCreateInput, catalogdto.ProjectUnitUpdateInput](unitService),
		unitService:    unitService,
		projectService: projectService,
	}, nil
}

// HandleBulkDelete xử lý POST /project-units/bulk-delete. Confirm bắt buộc.
func (h *ProjectUnitHandler) HandleBulkDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, err := getActiveOrganizationID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input catalogdto.CatalogBulkDeleteInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		ids, err := parseIds(input.Ids)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		// Lấy projectId trước khi xóa để refresh cache unitCount
		units, findErr := h.unitService.FindManyByIds(c.Context(), ids)
		result, err := h.unitService.BulkDelete(c.Context(), ids, input.Confirm, orgID)
		if err == nil {
			logger.LogBulkOperation("unit_bulk_delete", input.Ids, c, nil)
			if findErr == nil {
				seen := make(map[primitive.ObjectID]struct{})
				for _, unit := range units {
					if _, ok := seen[unit.ProjectID]; ok {
						continue
					}
					seen[unit.ProjectID] = struct{}{}
					_ = h.projectService.RefreshUnitCount(c.Context(), unit.ProjectID)
				}
			}
		}
		h.HandleResponse(c, result, err)
		return nil
	})
}

// PropertyHandler CRUD bất động sản lẻ.
type PropertyHandler struct {
	*basehdl.BaseHandler[catalogmodels.Property, catalogdto.PropertyCreateInput, catalogdto.PropertyUpdateInput]
}

// NewPropertyHandler tạo PropertyHandler mới.
func NewPropertyHandler() (*PropertyHandler, error) {
	propertyService, err := catalogsvc.NewPropertyService()
	if err != nil {
		return nil, fmt.Errorf("tạo PropertyService: %w", err)
	}
	return &PropertyHandler{
		BaseHandler: basehdl.NewBaseHandler[catalogmodels.Property, catalogdto.PropertyCreateInput, catalogdto.PropertyUpdateInput](propertyService),
	}, nil
}
