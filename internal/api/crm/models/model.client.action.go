// Package models - ClientAction thuộc domain CRM (client_actions).
// Lịch sử thao tác trên khách hàng: đổi trạng thái, gán người phụ trách, bulk op.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Loại thao tác ghi nhận trong client_actions.
const (
	ClientActionStatusChange = "status_change" // Đổi trạng thái pipeline
	ClientActionAssign       = "assign"        // Gán người phụ trách
	ClientActionUnassign     = "unassign"      // Bỏ gán người phụ trách
	ClientActionRating       = "rating"        // Cập nhật đánh giá
	ClientActionNote         = "note"          // Thêm ghi chú
)

// ClientAction một bản ghi lịch sử thao tác trên khách hàng (client_actions).
type ClientAction struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	ClientID   primitive.ObjectID `json:"clientId" bson:"clientId" index:"single:1,compound:client_action_client_created,order:-1"`
	ActionType string             `json:"actionType" bson:"actionType" index:"single:1"` // status_change | assign | unassign | rating | note

	// Giá trị trước/sau (tùy loại: status, userId hex, rating...)
	OldValue string `json:"oldValue,omitempty" bson:"oldValue,omitempty"`
	NewValue string `json:"newValue,omitempty" bson:"newValue,omitempty"`

	Note      string             `json:"note,omitempty" bson:"note,omitempty"`
	CreatedBy primitive.ObjectID `json:"createdBy,omitempty" bson:"createdBy,omitempty" index:"single:1"`

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt" index:"single:1,compound:client_action_client_created,order:-1"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
