// Package authsvc - helper organization (allowed orgs, admin check, context).
package authsvc

import (
	"context"
	"fmt"

	"estate_crm/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// orgScopeResolver gom các service cần cho việc mở rộng scope role -> organization IDs.
type orgScopeResolver struct {
	roleService           *RoleService
	rolePermissionService *RolePermissionService
	permissionService     *PermissionService
	organizationService   *OrganizationService
}

func newOrgScopeResolver() (*orgScopeResolver, error) {
	roleService, err := NewRoleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create role service: %v", err)
	}
	rolePermissionService, err := NewRolePermissionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create role permission service: %v", err)
	}
	permissionService, err := NewPermissionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create permission service: %v", err)
	}
	organizationService, err := NewOrganizationService()
	if err != nil {
		return nil, fmt.Errorf("failed to create organization service: %v", err)
	}
	return &orgScopeResolver{
		roleService:           roleService,
		rolePermissionService: rolePermissionService,
		permissionService:     permissionService,
		organizationService:   organizationService,
	}, nil
}

// collectRoleOrgIDs mở rộng một role thành các org IDs theo scope của từng permission:
// Scope 0 = chỉ org của role, Scope 1 = org của role và toàn bộ org con.
// permissionName rỗng nghĩa là tính cho mọi permission của role.
func (r *orgScopeResolver) collectRoleOrgIDs(ctx context.Context, roleID primitive.ObjectID, permissionName string, into map[primitive.ObjectID]bool) error {
	role, err := r.roleService.BaseServiceMongoImpl.FindOneById(ctx, roleID)
	if err != nil {
		return err
	}
	orgID := role.OwnerOrganizationID

	rolePermissions, err := r.rolePermissionService.BaseServiceMongoImpl.Find(ctx, bson.M{"roleId": role.ID}, nil)
	if err != nil {
		return err
	}
	for _, rp := range rolePermissions {
		permission, err := r.permissionService.BaseServiceMongoImpl.FindOneById(ctx, rp.PermissionID)
		if err != nil {
			continue
		}
		if permissionName != "" && permission.Name != permissionName {
			continue
		}
		into[orgID] = true
		if rp.Scope == 1 {
			childrenIDs, err := r.organizationService.GetChildrenIDs(ctx, orgID)
			if err == nil {
				for _, childID := range childrenIDs {
					into[childID] = true
				}
			}
		}
	}
	return nil
}

func orgIDSetToSlice(set map[primitive.ObjectID]bool) []primitive.ObjectID {
	result := make([]primitive.ObjectID, 0, len(set))
	for orgID := range set {
		result = append(result, orgID)
	}
	return result
}

// GetUserAllowedOrganizationIDs lấy danh sách organization IDs mà user được phép truy cập
// (gộp qua mọi role của user). Role lỗi thì bỏ qua, không làm hỏng cả danh sách.
func GetUserAllowedOrganizationIDs(ctx context.Context, userID primitive.ObjectID, permissionName string) ([]primitive.ObjectID, error) {
	userRoleService, err := NewUserRoleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user role service: %v", err)
	}
	resolver, err := newOrgScopeResolver()
	if err != nil {
		return nil, err
	}

	userRoles, err := userRoleService.BaseServiceMongoImpl.Find(ctx, bson.M{"userId": userID}, nil)
	if err != nil {
		return nil, err
	}

	allowedOrgIDs := make(map[primitive.ObjectID]bool)
	for _, userRole := range userRoles {
		if err := resolver.collectRoleOrgIDs(ctx, userRole.RoleID, permissionName, allowedOrgIDs); err != nil {
			continue
		}
	}
	return orgIDSetToSlice(allowedOrgIDs), nil
}

// GetAllowedOrganizationIDsFromRole lấy danh sách organization IDs mà một role cụ thể được phép truy cập
func GetAllowedOrganizationIDsFromRole(ctx context.Context, roleID primitive.ObjectID, permissionName string) ([]primitive.ObjectID, error) {
	resolver, err := newOrgScopeResolver()
	if err != nil {
		return nil, err
	}
	allowedOrgIDs := make(map[primitive.ObjectID]bool)
	if err := resolver.collectRoleOrgIDs(ctx, roleID, permissionName, allowedOrgIDs); err != nil {
		return nil, err
	}
	return orgIDSetToSlice(allowedOrgIDs), nil
}

// IsUserAdministrator kiểm tra xem user có được gán role Administrator không
func IsUserAdministrator(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	userRoleService, err := NewUserRoleService()
	if err != nil {
		return false, fmt.Errorf("failed to create user role service: %v", err)
	}
	roleService, err := NewRoleService()
	if err != nil {
		return false, fmt.Errorf("failed to create role service: %v", err)
	}
	adminRole, err := roleService.BaseServiceMongoImpl.FindOne(ctx, bson.M{"name": adminRoleName}, nil)
	if err != nil {
		if err == common.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	_, err = userRoleService.BaseServiceMongoImpl.FindOne(ctx, bson.M{"userId": userID, "roleId": adminRole.ID}, nil)
	if err != nil {
		if err == common.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type contextKey string

const userIDContextKey contextKey = "user_id"

// SetUserIDToContext lưu userID vào context
func SetUserIDToContext(ctx context.Context, userID primitive.ObjectID) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// GetUserIDFromContext lấy userID từ context
func GetUserIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	userID, ok := ctx.Value(userIDContextKey).(primitive.ObjectID)
	return userID, ok
}

// IsUserAdministratorFromContext kiểm tra user trong context có phải Administrator không
func IsUserAdministratorFromContext(ctx context.Context) (bool, error) {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return false, nil
	}
	return IsUserAdministrator(ctx, userID)
}
