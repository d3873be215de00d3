// Package deliverydto chứa DTO cho domain Delivery.
package deliverydto

// DeliverySendRequest là request để gửi notification trực tiếp
type DeliverySendRequest struct {
	ChannelType string                 `json:"channelType" validate:"required,oneof=email"`
	Recipient   string                 `json:"recipient" validate:"required"`
	Subject     string                 `json:"subject,omitempty"`
	Content     string                 `json:"content" validate:"required"`
	EventType   string                 `json:"eventType,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// DeliverySendResponse là response sau khi enqueue
type DeliverySendResponse struct {
	QueueItemID string `json:"queueItemId"`
	Status      string `json:"status"` // queued
	QueuedAt    int64  `json:"queuedAt"`
}
