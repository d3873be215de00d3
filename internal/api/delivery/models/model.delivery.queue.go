// Package models - DeliveryQueueItem thuộc domain Delivery (delivery_queue).
// Một item = một lần gửi (email nhắc lịch hẹn...) đã render sẵn nội dung.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeliveryQueueItem item trong hàng đợi gửi. Delivery worker chỉ cần
// recipient + nội dung đã render, không đụng lại nghiệp vụ tạo thông báo.
type DeliveryQueueItem struct {
	ID                  primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	EventType           string                 `json:"eventType" bson:"eventType" index:"single:1"` // delayed_client...
	OwnerOrganizationID primitive.ObjectID     `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`
	ChannelType         string                 `json:"channelType" bson:"channelType" index:"single:1"` // email
	Recipient           string                 `json:"recipient" bson:"recipient"`
	Subject             string                 `json:"subject,omitempty" bson:"subject,omitempty"`
	Content             string                 `json:"content,omitempty" bson:"content,omitempty"`
	Payload             map[string]interface{} `json:"payload,omitempty" bson:"payload,omitempty"`

	Status      string `json:"status" bson:"status" index:"single:1"` // pending, processing, completed, failed
	Priority    int    `json:"priority" bson:"priority"`              // 1 cao nhất, mặc định 3
	RetryCount  int    `json:"retryCount" bson:"retryCount"`
	MaxRetries  int    `json:"maxRetries" bson:"maxRetries"` // Mặc định: 3
	NextRetryAt *int64 `json:"nextRetryAt,omitempty" bson:"nextRetryAt,omitempty" index:"single:1"` // Unix ms

	Error     string `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt int64  `json:"createdAt" bson:"createdAt"` // Unix ms
	UpdatedAt int64  `json:"updatedAt" bson:"updatedAt"` // Unix ms
}
