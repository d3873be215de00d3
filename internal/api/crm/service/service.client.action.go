// Package crmvc - Service lịch sử thao tác trên khách hàng (client_actions).
package crmvc

import (
	"context"
	"fmt"
	"time"

	crmmodels "estate_crm/internal/api/crm/models"
	basesvc "estate_crm/internal/api/base/service"
	"estate_crm/internal/common"
	"estate_crm/internal/global"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// ClientActionService ghi và đọc lịch sử thao tác trên khách.
type ClientActionService struct {
	*basesvc.BaseServiceMongoImpl[crmmodels.ClientAction]
}

// NewClientActionService tạo ClientActionService mới.
func NewClientActionService() (*ClientActionService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ClientActions)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.ClientActions, common.ErrNotFound)
	}
	return &ClientActionService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[crmmodels.ClientAction](coll),
	}, nil
}

// Log ghi một bản ghi lịch sử. Lỗi ghi log không làm fail thao tác chính.
func (s *ClientActionService) Log(ctx context.Context, clientID primitive.ObjectID, actionType, oldValue, newValue, note string, ownerOrgID, actorID primitive.ObjectID) {
	now := time.Now().UnixMilli()
	_, err := s.InsertOne(ctx, crmmodels.ClientAction{
		ClientID:            clientID,
		ActionType:          actionType,
		OldValue:            oldValue,
		NewValue:            newValue,
		Note:                note,
		CreatedBy:           actorID,
		OwnerOrganizationID: ownerOrgID,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"client_id":   clientID.Hex(),
			"action_type": actionType,
		}).Warn("Không ghi được lịch sử thao tác khách hàng")
	}
}

// LogBulk ghi lịch sử cho nhiều khách trong một thao tác hàng loạt.
func (s *ClientActionService) LogBulk(ctx context.Context, clientIds []primitive.ObjectID, actionType, oldValue, newValue string, ownerOrgID, actorID primitive.ObjectID) {
	if len(clientIds) == 0 {
		return
	}
	now := time.Now().UnixMilli()
	actions := make([]crmmodels.ClientAction, 0, len(clientIds))
	for _, id := range clientIds {
		actions = append(actions, crmmodels.ClientAction{
			ClientID:            id,
			ActionType:          actionType,
			OldValue:            oldValue,
			NewValue:            newValue,
			CreatedBy:           actorID,
			OwnerOrganizationID: ownerOrgID,
			CreatedAt:           now,
			UpdatedAt:           now,
		})
	}
	if _, err := s.InsertMany(ctx, actions); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action_type":  actionType,
			"client_count": len(clientIds),
		}).Warn("Không ghi được lịch sử thao tác hàng loạt")
	}
}

// FindByClient trả về lịch sử của một khách, mới nhất trước.
func (s *ClientActionService) FindByClient(ctx context.Context, clientID, ownerOrgID primitive.ObjectID, limit int) ([]crmmodels.ClientAction, error) {
	if limit <= 0 {
		limit = 50
	}
	filter := bson.M{"clientId": clientID, "ownerOrganizationId": ownerOrgID}
	opts := mongoopts.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.Find(ctx, filter, opts)
}
