// Package authsvc - service quản trị (Admin): block user, gán role theo email.
package authsvc

import (
	"context"
	"fmt"

	authdto "estate_crm/internal/api/auth/dto"
	models "estate_crm/internal/api/auth/models"
	basesvc "estate_crm/internal/api/base/service"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminService gom các thao tác quản trị tài khoản mà admin thực hiện theo email
// thay vì theo ObjectID (tiện cho màn hình quản trị).
type AdminService struct {
	userService     *UserService
	roleService     *RoleService
	userRoleService *UserRoleService
}

// NewAdminService tạo mới AdminService
func NewAdminService() (*AdminService, error) {
	userService, err := NewUserService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	roleService, err := NewRoleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create role service: %w", err)
	}
	userRoleService, err := NewUserRoleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user_role service: %w", err)
	}
	return &AdminService{
		userService:     userService,
		roleService:     roleService,
		userRoleService: userRoleService,
	}, nil
}

// findUserByEmail tra user theo email, dùng chung cho các thao tác admin.
func (s *AdminService) findUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.userService.FindOne(ctx, bson.M{"email": email}, nil)
}

// SetRole gán Role cho User theo Email. Cặp user-role đã tồn tại thì không gán lại.
func (s *AdminService) SetRole(ctx context.Context, email string, roleID primitive.ObjectID) (*models.User, error) {
	role, err := s.roleService.FindOneById(ctx, roleID)
	if err != nil {
		return nil, err
	}
	user, err := s.findUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRoleService.IsExist(ctx, user.ID, role.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		if _, err := s.userRoleService.Create(ctx, &authdto.UserRoleCreateInput{
			UserID: user.ID.Hex(),
			RoleID: role.ID.Hex(),
		}); err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// BlockUser chặn hoặc bỏ chặn User theo Email. Note chỉ có ý nghĩa khi block = true.
func (s *AdminService) BlockUser(ctx context.Context, email string, block bool, note string) (*models.User, error) {
	user, err := s.findUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !block {
		note = ""
	}
	updatedUser, err := s.userService.UpdateById(ctx, user.ID, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"isBlock":   block,
			"blockNote": note,
		},
	})
	if err != nil {
		return nil, err
	}
	return &updatedUser, nil
}
