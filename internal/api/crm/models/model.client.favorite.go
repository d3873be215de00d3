// Package models - ClientFavorite thuộc domain CRM (client_favorites).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientFavorite đánh dấu khách hàng yêu thích theo từng user (client_favorites).
// Quan hệ many-to-many user ↔ client, chỉ có tồn tại/không tồn tại.
type ClientFavorite struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	UserID   primitive.ObjectID `json:"userId" bson:"userId" index:"single:1,compound:client_favorite_user_client_unique"`
	ClientID primitive.ObjectID `json:"clientId" bson:"clientId" index:"single:1,compound:client_favorite_user_client_unique"`

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
