// Package models - Property (bất động sản lẻ, ngoài dự án) thuộc domain Catalog.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Loại bất động sản lẻ.
const (
	PropertyTypeApartment = "apartment" // Căn hộ
	PropertyTypeHouse     = "house"     // Nhà phố
	PropertyTypeLand      = "land"      // Đất nền
	PropertyTypeVilla     = "villa"     // Biệt thự
)

// Property bất động sản lẻ không thuộc dự án nào (properties).
type Property struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	Name string `json:"name" bson:"name" validate:"required" index:"single:1"`
	Type string `json:"type,omitempty" bson:"type,omitempty" index:"single:1"` // apartment|house|land|villa

	Country string `json:"country,omitempty" bson:"country,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty" index:"single:1"`
	Address string `json:"address,omitempty" bson:"address,omitempty"`

	Area  float64 `json:"area,omitempty" bson:"area,omitempty"`   // m2
	Price float64 `json:"price,omitempty" bson:"price,omitempty"` // VND

	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Status      string `json:"status,omitempty" bson:"status,omitempty" index:"single:1"` // available|reserved|sold

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt" index:"single:1"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
