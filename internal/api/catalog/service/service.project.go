// Package catalogsvc - Service danh mục: dự án (projects) và căn/lô (project_units).
package catalogsvc

import (
	"context"
	"fmt"
	"time"

	basesvc "estate_crm/internal/api/base/service"
	catalogdto "estate_crm/internal/api/catalog/dto"
	catalogmodels "estate_crm/internal/api/catalog/models"
	"estate_crm/internal/common"
	"estate_crm/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectService CRUD dự án, kèm bulk delete có confirm và cache số căn.
type ProjectService struct {
	*basesvc.BaseServiceMongoImpl[catalogmodels.Project]
	unitService *ProjectUnitService
}

// NewProjectService tạo ProjectService mới.
func NewProjectService() (*ProjectService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Projects)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Projects, common.ErrNotFound)
	}
	unitService, err := NewProjectUnitService()
	if err != nil {
		return nil, fmt.Errorf("tạo ProjectUnitService: %w", err)
	}
	return &ProjectService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[catalogmodels.Project](coll),
		unitService:          unitService,
	}, nil
}

// BulkDelete xóa danh sách dự án và toàn bộ căn/lô của chúng. Confirm bắt buộc.
func (s *ProjectService) BulkDelete(ctx context.Context, projectIds []primitive.ObjectID, confirm bool, ownerOrgID primitive.ObjectID) (*catalogdto.CatalogBulkResult, error) {
	if len(projectIds) == 0 {
		return nil, common.ErrInvalidInput
	}
	if !confirm {
		return nil, common.ErrConfirmRequired
	}
	deleted, err := s.DeleteMany(ctx, bson.M{
		"_id":                 bson.M{"$in": projectIds},
		"ownerOrganizationId": ownerOrgID,
	})
	if err != nil {
		return nil, err
	}
	// Căn/lô mồ côi bị dọn kèm
	_, _ = s.unitService.DeleteMany(ctx, bson.M{
		"projectId":           bson.M{"$in": projectIds},
		"ownerOrganizationId": ownerOrgID,
	})
	return &catalogdto.CatalogBulkResult{Matched: int64(len(projectIds)), Modified: deleted}, nil
}

// RefreshUnitCount đếm lại số căn/lô của dự án và cập nhật cache.
func (s *ProjectService) RefreshUnitCount(ctx context.Context, projectID primitive.ObjectID) error {
	count, err := s.unitService.CountDocuments(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"unitCount": count, "updatedAt": time.Now().UnixMilli()}}
	_, err = s.UpdateOne(ctx, bson.M{"_id": projectID}, update, nil)
	return err
}
