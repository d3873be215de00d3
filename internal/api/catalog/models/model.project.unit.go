// Package models - ProjectUnit (căn/lô trong dự án) thuộc domain Catalog.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái căn/lô.
const (
	UnitStatusAvailable = "available" // Còn hàng
	UnitStatusReserved  = "reserved"  // Đã giữ chỗ
	UnitStatusSold      = "sold"      // Đã bán
)

// ProjectUnit một căn hộ / lô đất trong dự án (project_units).
type ProjectUnit struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId" validate:"required" index:"single:1,compound:unit_project_code"`
	Code      string             `json:"code" bson:"code" validate:"required" index:"compound:unit_project_code"` // Mã căn trong dự án (A-12-05...)

	Floor    int     `json:"floor,omitempty" bson:"floor,omitempty"`
	Bedrooms int     `json:"bedrooms,omitempty" bson:"bedrooms,omitempty"`
	Area     float64 `json:"area,omitempty" bson:"area,omitempty"`   // m2
	Price    float64 `json:"price,omitempty" bson:"price,omitempty"` // VND

	Status string `json:"status" bson:"status" index:"single:1"` // available|reserved|sold

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt" index:"single:1"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
