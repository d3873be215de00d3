// Package authsvc - service quyền của vai trò (RolePermission).
package authsvc

import (
	"context"
	"fmt"
	"time"

	authdto "estate_crm/internal/api/auth/dto"
	models "estate_crm/internal/api/auth/models"
	basesvc "estate_crm/internal/api/base/service"
	"estate_crm/internal/common"
	"estate_crm/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RolePermissionService gán permission cho role kèm scope (0 = org của role, 1 = org + org con).
type RolePermissionService struct {
	*basesvc.BaseServiceMongoImpl[models.RolePermission]
	roleService       *RoleService
	permissionService *PermissionService
}

// NewRolePermissionService tạo mới RolePermissionService
func NewRolePermissionService() (*RolePermissionService, error) {
	col, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.RolePermissions)
	if !exist {
		return nil, fmt.Errorf("failed to get role_permissions collection: %v", common.ErrNotFound)
	}

	roleService, err := NewRoleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create role service: %v", err)
	}
	permissionService, err := NewPermissionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create permission service: %v", err)
	}

	return &RolePermissionService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.RolePermission](col),
		roleService:          roleService,
		permissionService:    permissionService,
	}, nil
}

// Create gán một permission cho role. Role và permission phải tồn tại, cặp chưa được gán.
func (s *RolePermissionService) Create(ctx context.Context, input *authdto.RolePermissionCreateInput) (*models.RolePermission, error) {
	roleObjID, err := primitive.ObjectIDFromHex(input.RoleID)
	if err != nil {
		return nil, common.ErrInvalidInput
	}
	permissionObjID, err := primitive.ObjectIDFromHex(input.PermissionID)
	if err != nil {
		return nil, common.ErrInvalidInput
	}

	if _, err := s.roleService.BaseServiceMongoImpl.FindOneById(ctx, roleObjID); err != nil {
		return nil, common.ErrNotFound
	}
	if _, err := s.permissionService.BaseServiceMongoImpl.FindOneById(ctx, permissionObjID); err != nil {
		return nil, common.ErrNotFound
	}

	exists, err := s.IsExist(ctx, roleObjID, permissionObjID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrInvalidInput
	}

	now := time.Now().UnixMilli()
	created, err := s.BaseServiceMongoImpl.InsertOne(ctx, models.RolePermission{
		ID:           primitive.NewObjectID(),
		RoleID:       roleObjID,
		PermissionID: permissionObjID,
		Scope:        input.Scope,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return &created, nil
}

// IsExist kiểm tra cặp role-permission đã được gán chưa
func (s *RolePermissionService) IsExist(ctx context.Context, roleID, permissionID primitive.ObjectID) (bool, error) {
	count, err := s.BaseServiceMongoImpl.Collection().CountDocuments(ctx, bson.M{
		"roleId":       roleID,
		"permissionId": permissionID,
	})
	if err != nil {
		return false, common.ConvertMongoError(err)
	}
	return count > 0, nil
}
