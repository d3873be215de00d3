// Package authsvc - service vai trò (Role).
package authsvc

import (
	"context"
	"fmt"

	models "estate_crm/internal/api/auth/models"
	basesvc "estate_crm/internal/api/base/service"
	"estate_crm/internal/common"
	"estate_crm/internal/global"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleService là cấu trúc chứa các phương thức liên quan đến vai trò
type RoleService struct {
	*basesvc.BaseServiceMongoImpl[models.Role]
}

// NewRoleService tạo mới RoleService
func NewRoleService() (*RoleService, error) {
	roleCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Roles)
	if !exist {
		return nil, fmt.Errorf("failed to get roles collection: %v", common.ErrNotFound)
	}

	return &RoleService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Role](roleCollection),
	}, nil
}

// validateBeforeDelete chặn xóa role Administrator - role hệ thống duy nhất không được đụng tới.
func (s *RoleService) validateBeforeDelete(ctx context.Context, roleID primitive.ObjectID) error {
	role, err := s.BaseServiceMongoImpl.FindOneById(ctx, roleID)
	if err != nil {
		return err
	}
	if role.Name == adminRoleName {
		return common.NewError(
			common.ErrCodeBusinessOperation,
			"Không thể xóa chức danh Administrator. Đây là chức danh hệ thống và không thể xóa.",
			common.StatusForbidden,
			nil,
		)
	}
	return nil
}

// DeleteOne override để kiểm tra trước khi xóa
func (s *RoleService) DeleteOne(ctx context.Context, filter interface{}) error {
	role, err := s.BaseServiceMongoImpl.FindOne(ctx, filter, nil)
	if err != nil {
		return err
	}
	if err := s.validateBeforeDelete(ctx, role.ID); err != nil {
		return err
	}
	return s.BaseServiceMongoImpl.DeleteOne(ctx, filter)
}

// DeleteById override để kiểm tra trước khi xóa
func (s *RoleService) DeleteById(ctx context.Context, id primitive.ObjectID) error {
	if err := s.validateBeforeDelete(ctx, id); err != nil {
		return err
	}
	return s.BaseServiceMongoImpl.DeleteById(ctx, id)
}

// DeleteMany override - một role không xóa được thì hủy cả lô
func (s *RoleService) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	roles, err := s.BaseServiceMongoImpl.Find(ctx, filter, nil)
	if err != nil && err != common.ErrNotFound {
		return 0, err
	}
	for _, role := range roles {
		if err := s.validateBeforeDelete(ctx, role.ID); err != nil {
			return 0, err
		}
	}
	return s.BaseServiceMongoImpl.DeleteMany(ctx, filter)
}
