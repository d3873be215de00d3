// Package models - Notification thuộc domain Notification (notifications).
// Thông báo in-app cho từng user, hiện tại chủ yếu là nhắc lịch hẹn khách (delayed_client).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Loại thông báo.
const (
	NotificationTypeDelayedClient = "delayed_client" // Khách có lịch hẹn đã tới hạn
	NotificationTypeSystem        = "system"         // Thông báo hệ thống
)

// Notification một thông báo của user (notifications).
// Ràng buộc nghiệp vụ: tối đa MỘT thông báo delayed_client CHƯA ĐỌC cho mỗi cặp
// (user, client) — checker kiểm tra trước khi insert, không dùng unique index.
type Notification struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	UserID  primitive.ObjectID `json:"userId" bson:"userId" index:"single:1,compound:notification_user_read"`
	Type    string             `json:"type" bson:"type" index:"single:1"` // delayed_client | system
	Title   string             `json:"title" bson:"title"`
	Message string             `json:"message" bson:"message"`
	Read    bool               `json:"read" bson:"read" index:"compound:notification_user_read"`

	// Tham chiếu ngược về khách (chỉ có với delayed_client)
	ClientID primitive.ObjectID `json:"clientId,omitempty" bson:"clientId,omitempty" index:"single:1"`

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt" index:"single:-1"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
