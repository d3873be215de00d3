// Package models - DeliveryHistory thuộc domain Delivery.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeliveryHistory một lần gửi đã kết thúc (thành công hoặc hết retry).
type DeliveryHistory struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	QueueItemID         primitive.ObjectID `json:"queueItemId" bson:"queueItemId" index:"single:1"`
	EventType           string             `json:"eventType" bson:"eventType" index:"single:1"`
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`
	ChannelType         string             `json:"channelType" bson:"channelType" index:"single:1"`
	Recipient           string             `json:"recipient" bson:"recipient"`
	Subject             string             `json:"subject,omitempty" bson:"subject,omitempty"`
	Content             string             `json:"content" bson:"content"`                // Nội dung đã render
	Status              string             `json:"status" bson:"status" index:"single:1"` // sent, failed
	Error               string             `json:"error,omitempty" bson:"error,omitempty"`
	RetryCount          int                `json:"retryCount" bson:"retryCount"`
	SentAt              *int64             `json:"sentAt,omitempty" bson:"sentAt,omitempty"` // Unix ms
	CreatedAt           int64              `json:"createdAt" bson:"createdAt"` // Unix ms
}
