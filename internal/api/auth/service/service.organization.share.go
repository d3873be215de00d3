// Package authsvc - service organization share.
package authsvc

import (
	"context"
	"fmt"

	models "estate_crm/internal/api/auth/models"
	basesvc "estate_crm/internal/api/base/service"
	"estate_crm/internal/common"
	"estate_crm/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrganizationShareService quản lý sharing dữ liệu giữa các organizations
type OrganizationShareService struct {
	*basesvc.BaseServiceMongoImpl[models.OrganizationShare]
}

// NewOrganizationShareService tạo mới OrganizationShareService.
// Collection được đăng ký lazy vì share không nằm trong danh sách collection khởi tạo sẵn.
func NewOrganizationShareService() (*OrganizationShareService, error) {
	collectionName := "auth_organization_shares"
	collection, exist := global.RegistryCollections.Get(collectionName)
	if !exist {
		if global.MongoDB_Session == nil {
			return nil, fmt.Errorf("MongoDB session chưa được khởi tạo")
		}
		if global.ServerConfig == nil {
			return nil, fmt.Errorf("MongoDB config chưa được khởi tạo")
		}
		db := global.MongoDB_Session.Database(global.ServerConfig.MongoDB_DBName)
		newCollection := db.Collection(collectionName)
		if _, err := global.RegistryCollections.Register(collectionName, newCollection); err != nil {
			return nil, fmt.Errorf("failed to register collection: %v", err)
		}
		collection = newCollection
	}

	return &OrganizationShareService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.OrganizationShare](collection),
	}, nil
}

// InsertOne override: chặn tự share cho chính mình và share trùng (cùng toOrgIds + permissionNames).
func (s *OrganizationShareService) InsertOne(ctx context.Context, data models.OrganizationShare) (models.OrganizationShare, error) {
	for _, toOrgID := range data.ToOrgIDs {
		if toOrgID == data.OwnerOrganizationID {
			return data, common.NewError(common.ErrCodeValidationInput, "ownerOrganizationId không được có trong toOrgIds", common.StatusBadRequest, nil)
		}
	}

	existingShares, err := s.BaseServiceMongoImpl.Find(ctx, bson.M{"ownerOrganizationId": data.OwnerOrganizationID}, nil)
	if err != nil && err != common.ErrNotFound {
		return data, err
	}
	for _, existing := range existingShares {
		if sameSet(data.ToOrgIDs, existing.ToOrgIDs) && sameSet(data.PermissionNames, existing.PermissionNames) {
			return data, common.NewError(common.ErrCodeBusinessOperation, "Share với các organizations này đã tồn tại với cùng permissions", common.StatusConflict, nil)
		}
	}
	return s.BaseServiceMongoImpl.InsertOne(ctx, data)
}

// sameSet so sánh hai slice như tập hợp (không quan tâm thứ tự).
func sameSet[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[T]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if !set[v] {
			return false
		}
	}
	return true
}

// GetSharedOrganizationIDs trả về các organization đã share dữ liệu tới bất kỳ org nào trong userOrgIDs.
// Share có toOrgIds rỗng được hiểu là share công khai. permissionNames rỗng áp dụng cho mọi permission.
func GetSharedOrganizationIDs(ctx context.Context, userOrgIDs []primitive.ObjectID, permissionName string) ([]primitive.ObjectID, error) {
	shareService, err := NewOrganizationShareService()
	if err != nil {
		return nil, err
	}
	if len(userOrgIDs) == 0 {
		return []primitive.ObjectID{}, nil
	}

	filter := bson.M{
		"$or": []bson.M{
			{"toOrgIds": bson.M{"$in": userOrgIDs}},
			{"$or": []bson.M{
				{"toOrgIds": bson.M{"$exists": false}},
				{"toOrgIds": bson.M{"$size": 0}},
				{"toOrgIds": nil},
			}},
		},
	}
	if permissionName != "" {
		permissionFilter := bson.M{
			"$or": []bson.M{
				{"permissionNames": bson.M{"$exists": false}},
				{"permissionNames": bson.M{"$size": 0}},
				{"permissionNames": bson.M{"$in": []string{permissionName}}},
			},
		}
		filter = bson.M{"$and": []bson.M{filter, permissionFilter}}
	}

	shares, err := shareService.BaseServiceMongoImpl.Find(ctx, filter, nil)
	if err != nil {
		if err == common.ErrNotFound {
			return []primitive.ObjectID{}, nil
		}
		return nil, err
	}

	userOrgSet := make(map[primitive.ObjectID]bool, len(userOrgIDs))
	for _, oid := range userOrgIDs {
		userOrgSet[oid] = true
	}

	sharedOrgIDs := make(map[primitive.ObjectID]bool)
	for _, share := range shares {
		if permissionName != "" && len(share.PermissionNames) > 0 && !containsString(share.PermissionNames, permissionName) {
			continue
		}
		if len(share.ToOrgIDs) == 0 {
			sharedOrgIDs[share.OwnerOrganizationID] = true
			continue
		}
		for _, toOrgID := range share.ToOrgIDs {
			if userOrgSet[toOrgID] {
				sharedOrgIDs[share.OwnerOrganizationID] = true
				break
			}
		}
	}
	return orgIDSetToSlice(sharedOrgIDs), nil
}

func containsString(list []string, target string) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}
