package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authsvc "estate_crm/internal/api/auth/service"
	"estate_crm/internal/common"
)

// OrganizationContextMiddleware gan context lam viec cho request.
// Context lam viec la ROLE (header X-Active-Role-ID); organization duoc suy ra tu role.
// Middleware nay mem: moi truong hop khong xac dinh duoc role deu cho request di tiep
// khong co organization context (cac route can auth da bi AuthMiddleware chan truoc do).
func OrganizationContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		userIDStr, ok := c.Locals("user_id").(string)
		if !ok || userIDStr == "" {
			return c.Next()
		}
		userID, err := primitive.ObjectIDFromHex(userIDStr)
		if err != nil {
			return c.Next()
		}

		activeRoleID, err := resolveRequestRoleID(context.Background(), userID, c.Get("X-Active-Role-ID"))
		if err != nil {
			return c.Next()
		}

		roleService, err := authsvc.NewRoleService()
		if err != nil {
			return c.Next()
		}
		role, err := roleService.BaseServiceMongoImpl.FindOneById(context.Background(), activeRoleID)
		if err != nil {
			return c.Next()
		}

		// active_role_id la PRIMARY, active_organization_id la gia tri DERIVED tu role.
		c.Locals("active_role_id", activeRoleID.Hex())
		c.Locals("active_organization_id", role.OwnerOrganizationID.Hex())
		return c.Next()
	}
}

// resolveRequestRoleID chon role lam viec: header hop le va user thuc su co role do
// thi dung header, moi truong hop khac fallback ve role dau tien cua user.
func resolveRequestRoleID(ctx context.Context, userID primitive.ObjectID, headerValue string) (primitive.ObjectID, error) {
	if headerValue != "" {
		roleID, err := primitive.ObjectIDFromHex(headerValue)
		if err == nil {
			hasRole, err := userHasRole(ctx, userID, roleID)
			if err == nil && hasRole {
				return roleID, nil
			}
		}
	}
	return firstUserRoleID(ctx, userID)
}

func userHasRole(ctx context.Context, userID, roleID primitive.ObjectID) (bool, error) {
	userRoleService, err := authsvc.NewUserRoleService()
	if err != nil {
		return false, err
	}
	userRoles, err := userRoleService.BaseServiceMongoImpl.Find(ctx, bson.M{
		"userId": userID,
		"roleId": roleID,
	}, nil)
	if err != nil {
		return false, err
	}
	return len(userRoles) > 0, nil
}

func firstUserRoleID(ctx context.Context, userID primitive.ObjectID) (primitive.ObjectID, error) {
	userRoleService, err := authsvc.NewUserRoleService()
	if err != nil {
		return primitive.NilObjectID, err
	}
	userRoles, err := userRoleService.BaseServiceMongoImpl.Find(ctx, bson.M{"userId": userID}, nil)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if len(userRoles) == 0 {
		return primitive.NilObjectID, common.ErrNotFound
	}
	return userRoles[0].RoleID, nil
}
