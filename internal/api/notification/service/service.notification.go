// Package notifsvc - Service thông báo in-app (notifications).
package notifsvc

import (
	"context"
	"fmt"
	"time"

	basesvc "estate_crm/internal/api/base/service"
	basemodels "estate_crm/internal/api/base/models"
	notifmodels "estate_crm/internal/api/notification/models"
	"estate_crm/internal/common"
	"estate_crm/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// Số lần thử lại khi đếm thông báo chưa đọc (đọc nhẹ nhưng gọi thường xuyên,
// lỗi mạng thoáng qua không nên đánh sập badge trên client).
const (
	unreadCountRetries   = 3
	unreadCountBaseDelay = 200 * time.Millisecond
)

// NotificationService xử lý thông báo của user.
type NotificationService struct {
	*basesvc.BaseServiceMongoImpl[notifmodels.Notification]
}

// NewNotificationService tạo NotificationService mới.
func NewNotificationService() (*NotificationService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Notifications)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Notifications, common.ErrNotFound)
	}
	return &NotificationService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[notifmodels.Notification](coll),
	}, nil
}

// FindForUser trả về thông báo của user, mới nhất trước, có phân trang.
func (s *NotificationService) FindForUser(ctx context.Context, userID primitive.ObjectID, page, limit int64) (*basemodels.PaginateResult[notifmodels.Notification], error) {
	filter := bson.M{"userId": userID}
	opts := mongoopts.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.FindWithPagination(ctx, filter, page, limit, opts)
}

// UnreadCount đếm thông báo chưa đọc, thử lại với backoff lũy thừa khi lỗi.
func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	filter := bson.M{"userId": userID, "read": false}
	var lastErr error
	delay := unreadCountBaseDelay
	for attempt := 0; attempt < unreadCountRetries; attempt++ {
		count, err := s.CountDocuments(ctx, filter)
		if err == nil {
			return count, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return 0, lastErr
}

// MarkRead đánh dấu một thông báo của user là đã đọc.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID primitive.ObjectID) (*notifmodels.Notification, error) {
	filter := bson.M{"_id": notificationID, "userId": userID}
	update := bson.M{"$set": bson.M{"read": true, "updatedAt": time.Now().UnixMilli()}}
	updated, err := s.UpdateOne(ctx, filter, update, nil)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// MarkAllRead đánh dấu tất cả thông báo chưa đọc của user là đã đọc.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	filter := bson.M{"userId": userID, "read": false}
	update := bson.M{"$set": bson.M{"read": true, "updatedAt": time.Now().UnixMilli()}}
	return s.UpdateMany(ctx, filter, update, nil)
}

// Delete xóa một thông báo của user.
func (s *NotificationService) Delete(ctx context.Context, notificationID, userID primitive.ObjectID) error {
	return s.DeleteOne(ctx, bson.M{"_id": notificationID, "userId": userID})
}

// HasUnreadDelayed kiểm tra (user, client) đã có thông báo delayed_client chưa đọc chưa.
// Checker gọi trước khi insert để giữ ràng buộc "tối đa một chưa đọc mỗi cặp".
func (s *NotificationService) HasUnreadDelayed(ctx context.Context, userID, clientID primitive.ObjectID) (bool, error) {
	return s.DocumentExists(ctx, bson.M{
		"userId":   userID,
		"clientId": clientID,
		"type":     notifmodels.NotificationTypeDelayedClient,
		"read":     false,
	})
}

// CreateDelayed tạo thông báo nhắc lịch hẹn cho (user, client).
func (s *NotificationService) CreateDelayed(ctx context.Context, userID, clientID, ownerOrgID primitive.ObjectID, clientName string) (*notifmodels.Notification, error) {
	now := time.Now().UnixMilli()
	doc := notifmodels.Notification{
		UserID:              userID,
		Type:                notifmodels.NotificationTypeDelayedClient,
		Title:               "Khách hàng đến hạn liên hệ",
		Message:             fmt.Sprintf("Khách hàng %s đã tới lịch hẹn, vui lòng liên hệ lại.", clientName),
		Read:                false,
		ClientID:            clientID,
		OwnerOrganizationID: ownerOrgID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	created, err := s.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	return &created, nil
}
