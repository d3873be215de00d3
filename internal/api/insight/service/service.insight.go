// Package insightsvc - Service đánh giá khách tự động (client_insights).
package insightsvc

import (
	"context"
	"fmt"
	"sync"
	"time"

	basesvc "estate_crm/internal/api/base/service"
	"estate_crm/internal/api/events"
	crmmodels "estate_crm/internal/api/crm/models"
	insightmodels "estate_crm/internal/api/insight/models"
	"estate_crm/internal/common"
	"estate_crm/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// InsightService quản lý insight của khách, mỗi (org, client) một document.
type InsightService struct {
	*basesvc.BaseServiceMongoImpl[insightmodels.ClientInsight]
	clientCollection *mongo.Collection
}

// NewInsightService tạo InsightService mới.
func NewInsightService() (*InsightService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ClientInsights)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.ClientInsights, common.ErrNotFound)
	}
	clientColl, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Clients)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Clients, common.ErrNotFound)
	}
	s := &InsightService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[insightmodels.ClientInsight](coll),
		clientCollection:     clientColl,
	}
	registerInvalidation(s)
	return s, nil
}

var invalidationOnce sync.Once

// registerInvalidation xóa insight đã cache khi khách hàng thay đổi hoặc bị xóa,
// để lần đọc sau tính lại từ dữ liệu mới thay vì chờ checker.
func registerInvalidation(s *InsightService) {
	invalidationOnce.Do(func() {
		events.OnDataChanged(func(ctx context.Context, e events.DataChangeEvent) {
			if e.CollectionName != global.MongoDB_ColNames.Clients {
				return
			}
			if e.Operation != events.OpUpdate && e.Operation != events.OpUpsert && e.Operation != events.OpDelete {
				return
			}
			clientID := events.GetObjectIDField(e.Document, "ID")
			if clientID.IsZero() {
				return
			}
			filter := bson.M{"clientId": clientID}
			if orgID := events.GetOwnerOrganizationIDFromDocument(e.Document); !orgID.IsZero() {
				filter["ownerOrganizationId"] = orgID
			}
			_, _ = s.DeleteMany(context.Background(), filter)
		})
	})
}

// Get trả về insight hiện có của khách trong tổ chức.
func (s *InsightService) Get(ctx context.Context, clientID, ownerOrgID primitive.ObjectID) (insightmodels.ClientInsight, error) {
	return s.FindOne(ctx, bson.M{
		"clientId":            clientID,
		"ownerOrganizationId": ownerOrgID,
	}, nil)
}

// Refresh tính lại insight cho khách và upsert theo (org, client).
func (s *InsightService) Refresh(ctx context.Context, clientID, ownerOrgID primitive.ObjectID) (insightmodels.ClientInsight, error) {
	var client crmmodels.Client
	err := s.clientCollection.FindOne(ctx, bson.M{
		"_id":                 clientID,
		"ownerOrganizationId": ownerOrgID,
	}).Decode(&client)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return insightmodels.ClientInsight{}, common.NewError(common.ErrCodeDatabaseQuery, "Khách hàng không tồn tại trong tổ chức", common.StatusNotFound, nil)
		}
		return insightmodels.ClientInsight{}, err
	}

	insight := BuildClientInsight(&client, time.Now().UnixMilli())
	return s.Upsert(ctx, bson.M{
		"clientId":            clientID,
		"ownerOrganizationId": ownerOrgID,
	}, insight)
}
