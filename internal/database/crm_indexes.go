// Package database - Index bổ sung cho CRM (điều kiện partial, multikey) không thể định nghĩa qua model tags.
package database

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estate_crm/internal/global"
)

// CreateCrmAdditionalIndexes tạo các index bổ sung cho CRM.
// Gọi sau CreateIndexes cho từng collection.
func CreateCrmAdditionalIndexes(ctx context.Context, db *mongo.Database) error {
	// clients: (ownerOrganizationId, nextActionDate) partial — quét khách đến hạn hành động.
	// Chỉ index document có nextActionDate để giữ index nhỏ.
	clients := db.Collection(global.MongoDB_ColNames.Clients)
	if _, err := clients.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "ownerOrganizationId", Value: 1},
			{Key: "nextActionDate", Value: 1},
		},
		Options: options.Index().
			SetName("client_org_next_action").
			SetPartialFilterExpression(bson.M{"nextActionDate": bson.M{"$gt": 0}}),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// clients: (ownerOrganizationId, phone) unique partial — chống trùng SĐT trong tổ chức.
	// Service đã check trước khi insert; index chặn race hai insert đồng thời.
	if _, err := clients.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "ownerOrganizationId", Value: 1},
			{Key: "phone", Value: 1},
		},
		Options: options.Index().
			SetName("client_org_phone_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"phone": bson.M{"$type": "string"}}),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// clients: (ownerOrganizationId, assignedTo) sparse — lọc theo người phụ trách
	if _, err := clients.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "ownerOrganizationId", Value: 1},
			{Key: "assignedTo", Value: 1},
		},
		Options: options.Index().SetName("client_org_assigned").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// notifications: (userId, clientId, type, read) — dedup check của checker.
	// Không unique: ràng buộc "một thông báo chưa đọc mỗi cặp (user, client)"
	// do tầng service kiểm tra trước khi insert.
	notifications := db.Collection(global.MongoDB_ColNames.Notifications)
	if _, err := notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "clientId", Value: 1},
			{Key: "type", Value: 1},
			{Key: "read", Value: 1},
		},
		Options: options.Index().SetName("notification_dedup_lookup"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// notifications: (userId, read) — đếm thông báo chưa đọc
	if _, err := notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "read", Value: 1},
		},
		Options: options.Index().SetName("notification_user_unread"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
