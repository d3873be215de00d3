// Package crmvc - Service khách hàng yêu thích theo user (client_favorites).
package crmvc

import (
	"context"
	"fmt"
	"time"

	crmmodels "estate_crm/internal/api/crm/models"
	basesvc "estate_crm/internal/api/base/service"
	"estate_crm/internal/common"
	"estate_crm/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientFavoriteService xử lý đánh dấu/bỏ đánh dấu khách yêu thích.
type ClientFavoriteService struct {
	*basesvc.BaseServiceMongoImpl[crmmodels.ClientFavorite]
}

// NewClientFavoriteService tạo ClientFavoriteService mới.
func NewClientFavoriteService() (*ClientFavoriteService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ClientFavorites)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.ClientFavorites, common.ErrNotFound)
	}
	return &ClientFavoriteService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[crmmodels.ClientFavorite](coll),
	}, nil
}

// Toggle đảo trạng thái yêu thích của (user, client).
// Trả về true nếu sau thao tác khách đang được yêu thích.
func (s *ClientFavoriteService) Toggle(ctx context.Context, userID, clientID, ownerOrgID primitive.ObjectID) (bool, error) {
	filter := bson.M{"userId": userID, "clientId": clientID}
	exists, err := s.DocumentExists(ctx, filter)
	if err != nil {
		return false, err
	}
	if exists {
		if err := s.DeleteOne(ctx, filter); err != nil {
			return false, err
		}
		return false, nil
	}
	now := time.Now().UnixMilli()
	_, err = s.InsertOne(ctx, crmmodels.ClientFavorite{
		UserID:              userID,
		ClientID:            clientID,
		OwnerOrganizationID: ownerOrgID,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListClientIDs trả về id các khách user đã đánh dấu yêu thích trong tổ chức.
func (s *ClientFavoriteService) ListClientIDs(ctx context.Context, userID, ownerOrgID primitive.ObjectID) ([]primitive.ObjectID, error) {
	favorites, err := s.Find(ctx, bson.M{"userId": userID, "ownerOrganizationId": ownerOrgID}, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.ClientID)
	}
	return ids, nil
}

// RemoveByClientIDs dọn favorite trỏ tới các khách đã bị xóa (best-effort).
func (s *ClientFavoriteService) RemoveByClientIDs(ctx context.Context, clientIds []primitive.ObjectID, ownerOrgID primitive.ObjectID) {
	if len(clientIds) == 0 {
		return
	}
	_, _ = s.DeleteMany(ctx, bson.M{
		"clientId":            bson.M{"$in": clientIds},
		"ownerOrganizationId": ownerOrgID,
	})
}
