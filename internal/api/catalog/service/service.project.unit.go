// Package catalogsvc - Service căn/lô trong dự án (project_units).
package catalogsvc

import (
	"context"
	"fmt"

	basesvc "estate_crm/internal/api/base/service"
	catalogdto "estate_crm/internal/api/catalog/dto"
	catalogmodels "estate_crm/internal/api/catalog/models"
	"estate_crm/internal/common"
	"estate_crm/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectUnitService CRUD căn/lô qua base service, kèm bulk delete có confirm.
type ProjectUnitService struct {
	*basesvc.BaseServiceMongoImpl[catalogmodels.ProjectUnit]
}

// NewProjectUnitService tạo ProjectUnitService mới.
func NewProjectUnitService() (*ProjectUnitService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ProjectUnits)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.ProjectUnits, common.ErrNotFound)
	}
	return &ProjectUnitService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[catalogmodels.ProjectUnit](coll),
	}, nil
}

// BulkDelete xóa danh sách căn/lô. Confirm bắt buộc.
func (s *ProjectUnitService) BulkDelete(ctx context.Context, unitIds []primitive.ObjectID, confirm bool, ownerOrgID primitive.ObjectID) (*catalogdto.CatalogBulkResult, error) {
	if len(unitIds) == 0 {
		return nil, common.ErrInvalidInput
	}
	if !confirm {
		return nil, common.ErrConfirmRequired
	}
	deleted, err := s.DeleteMany(ctx, bson.M{
		"_id":                 bson.M{"$in": unitIds},
		"ownerOrganizationId": ownerOrgID,
	})
	if err != nil {
		return nil, err
	}
	return &catalogdto.CatalogBulkResult{Matched: int64(len(unitIds)), Modified: deleted}, nil
}
