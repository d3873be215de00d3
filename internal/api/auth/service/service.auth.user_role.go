// Package authsvc - service vai trò người dùng (UserRole).
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

const adminRoleName = "Administrator"

// errLastAdminUser trả về khi thao tác sẽ làm role Administrator không còn user nào.
func errLastAdminUser() error {
	return common.NewError(common.ErrCodeBusinessOperation,
		"Không thể xóa user khỏi role Administrator. Role Administrator phải có ít nhất một user.",
		common.StatusConflict, nil)
}

// UserRoleService quản lý gán role cho user.
// Bất biến: role Administrator luôn còn ít nhất một user; mọi đường xóa
// (DeleteOne/DeleteById/DeleteMany/UpdateUserRoles) đều phải qua check này.
type UserRoleService struct {
	*basesvc.BaseServiceMongoImpl[models.UserRole]
	userService *UserService
	roleService *RoleService
}

// NewUserRoleService tạo mới UserRoleService
func NewUserRoleService() (*UserRoleService, error) {
	userRoleCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.UserRoles)
	if !exist {
		return nil, fmt.Errorf("failed to get user_roles collection: %v", common.ErrNotFound)
	}
	userService, err := NewUserService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %v", err)
	}
	roleService, err := NewRoleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create role service: %v", err)
	}
	return &UserRoleService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.UserRole](userRoleCollection),
		userService:          userService,
		roleService:          roleService,
	}, nil
}

// Create gán một role cho một user. User và role phải tồn tại, cặp chưa được gán.
func (s *UserRoleService) Create(ctx context.Context, input *authdto.UserRoleCreateInput) (*models.UserRole, error) {
	userObjID, err := primitive.ObjectIDFromHex(input.UserID)
	if err != nil {
		return nil, common.ErrInvalidInput
	}
	roleObjID, err := primitive.ObjectIDFromHex(input.RoleID)
	if err != nil {
		return nil, common.ErrInvalidInput
	}

	if _, err := s.userService.BaseServiceMongoImpl.FindOneById(ctx, userObjID); err != nil {
		return nil, common.ErrNotFound
	}
	if _, err := s.roleService.BaseServiceMongoImpl.FindOneById(ctx, roleObjID); err != nil {
		return nil, common.ErrNotFound
	}

	exists, err := s.IsExist(ctx, userObjID, roleObjID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrInvalidInput
	}

	now := time.Now().UnixMilli()
	createdUserRole, err := s.BaseServiceMongoImpl.InsertOne(ctx, models.UserRole{
		ID:        primitive.NewObjectID(),
		UserID:    userObjID,
		RoleID:    roleObjID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return &createdUserRole, nil
}

// UpdateUserRoles thay toàn bộ role của một user bằng danh sách mới (xóa hết rồi gán lại).
func (s *UserRoleService) UpdateUserRoles(ctx context.Context, userID primitive.ObjectID, newRoleIDs []primitive.ObjectID) ([]models.UserRole, error) {
	if err := s.validateCanRemoveAdministratorRole(ctx, userID, newRoleIDs); err != nil {
		return nil, err
	}

	if _, err := s.BaseServiceMongoImpl.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	var userRoles []models.UserRole
	for _, roleID := range newRoleIDs {
		userRoles = append(userRoles, models.UserRole{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			RoleID:    roleID,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if len(userRoles) > 0 {
		if _, err := s.BaseServiceMongoImpl.InsertMany(ctx, userRoles); err != nil {
			return nil, err
		}
	}
	return userRoles, nil
}

// IsExist kiểm tra cặp user-role đã được gán chưa.
func (s *UserRoleService) IsExist(ctx context.Context, userID, roleID primitive.ObjectID) (bool, error) {
	count, err := s.BaseServiceMongoImpl.Collection().CountDocuments(ctx, bson.M{"userId": userID, "roleId": roleID})
	if err != nil {
		return false, common.ConvertMongoError(err)
	}
	return count > 0, nil
}

// findAdminRole load role Administrator. Không có (chưa init) thì trả (nil, nil)
// và caller bỏ qua mọi check admin.
func (s *UserRoleService) findAdminRole(ctx context.Context) (*models.Role, error) {
	adminRole, err := s.roleService.BaseServiceMongoImpl.FindOne(ctx, bson.M{"name": adminRoleName}, nil)
	if err != nil {
		return nil, nil
	}
	return &adminRole, nil
}

// countAdminAssignments đếm số user đang giữ role Administrator.
func (s *UserRoleService) countAdminAssignments(ctx context.Context, adminRoleID primitive.ObjectID) (int, error) {
	assignments, err := s.BaseServiceMongoImpl.Find(ctx, bson.M{"roleId": adminRoleID}, nil)
	if err != nil {
		if err == common.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return len(assignments), nil
}

// validateCanRemoveAdministratorRole chặn UpdateUserRoles gỡ user admin cuối cùng.
func (s *UserRoleService) validateCanRemoveAdministratorRole(ctx context.Context, userID primitive.ObjectID, newRoleIDs []primitive.ObjectID) error {
	adminRole, err := s.findAdminRole(ctx)
	if err != nil || adminRole == nil {
		return err
	}

	oldAdminRoles, err := s.BaseServiceMongoImpl.Find(ctx, bson.M{"userId": userID, "roleId": adminRole.ID}, nil)
	if err != nil && err != common.ErrNotFound {
		return err
	}
	userIsAdmin := err == nil && len(oldAdminRoles) > 0
	if !userIsAdmin {
		return nil
	}

	for _, roleID := range newRoleIDs {
		if roleID == adminRole.ID {
			// Danh sách mới vẫn giữ role admin
			return nil
		}
	}

	totalAdmins, err := s.countAdminAssignments(ctx, adminRole.ID)
	if err != nil {
		return err
	}
	if totalAdmins <= 1 {
		return errLastAdminUser()
	}
	return nil
}

// validateBeforeDeleteAdministratorRole chặn DeleteById gỡ user admin cuối cùng.
func (s *UserRoleService) validateBeforeDeleteAdministratorRole(ctx context.Context, userRoleID primitive.ObjectID) error {
	userRole, err := s.BaseServiceMongoImpl.FindOneById(ctx, userRoleID)
	if err != nil {
		return err
	}

	role, err := s.roleService.BaseServiceMongoImpl.FindOneById(ctx, userRole.RoleID)
	if err != nil {
		return err
	}
	if role.Name != adminRoleName {
		return nil
	}

	totalAdmins, err := s.countAdminAssignments(ctx, role.ID)
	if err != nil {
		return err
	}
	if totalAdmins <= 1 {
		return errLastAdminUser()
	}
	return nil
}

// validateBeforeDeleteAdministratorRoleByFilter chặn DeleteOne/DeleteMany theo filter
// khi số bản ghi admin bị xóa bằng hoặc vượt số admin hiện có.
func (s *UserRoleService) validateBeforeDeleteAdministratorRoleByFilter(ctx context.Context, filter bson.M) error {
	adminRole, err := s.findAdminRole(ctx)
	if err != nil || adminRole == nil {
		return err
	}

	matched, err := s.BaseServiceMongoImpl.Find(ctx, filter, nil)
	if err != nil && err != common.ErrNotFound {
		return err
	}

	adminDeleteCount := 0
	for _, userRole := range matched {
		if userRole.RoleID == adminRole.ID {
			adminDeleteCount++
		}
	}
	if adminDeleteCount == 0 {
		return nil
	}

	totalAdmins, err := s.countAdminAssignments(ctx, adminRole.ID)
	if err != nil {
		return err
	}
	if totalAdmins <= adminDeleteCount {
		return errLastAdminUser()
	}
	return nil
}

// filterAsMap đưa filter bất kỳ về bson.M để đếm được bản ghi admin bị ảnh hưởng.
func filterAsMap(filter interface{}) (bson.M, bool) {
	switch v := filter.(type) {
	case bson.M:
		return v, true
	case bson.D:
		return v.Map(), true
	default:
		filterBytes, _ := bson.Marshal(filter)
		var temp bson.M
		if err := bson.Unmarshal(filterBytes, &temp); err == nil {
			return temp, true
		}
		return nil, false
	}
}

// DeleteOne override: giữ bất biến Administrator còn ít nhất một user.
func (s *UserRoleService) DeleteOne(ctx context.Context, filter interface{}) error {
	if filterMap, ok := filterAsMap(filter); ok {
		if err := s.validateBeforeDeleteAdministratorRoleByFilter(ctx, filterMap); err != nil {
			return err
		}
	}
	return s.BaseServiceMongoImpl.DeleteOne(ctx, filter)
}

// DeleteById override: giữ bất biến Administrator còn ít nhất một user.
func (s *UserRoleService) DeleteById(ctx context.Context, id primitive.ObjectID) error {
	if err := s.validateBeforeDeleteAdministratorRole(ctx, id); err != nil {
		return err
	}
	return s.BaseServiceMongoImpl.DeleteById(ctx, id)
}

// DeleteMany override: giữ bất biến Administrator còn ít nhất một user.
func (s *UserRoleService) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	if filterMap, ok := filterAsMap(filter); ok {
		if err := s.validateBeforeDeleteAdministratorRoleByFilter(ctx, filterMap); err != nil {
			return 0, err
		}
	}
	return s.BaseServiceMongoImpl.DeleteMany(ctx, filter)
}
