// Package models - Project (dự án bất động sản) thuộc domain Catalog.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái dự án.
const (
	ProjectStatusPlanning = "planning" // Đang quy hoạch / chuẩn bị
	ProjectStatusSelling  = "selling"  // Đang mở bán
	ProjectStatusSoldOut  = "sold_out" // Đã bán hết
	ProjectStatusHandover = "handover" // Đang bàn giao
)

// Project dự án bất động sản (projects).
type Project struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	_Relationships struct{}           `relationship:"collection:catalog_project_units,field:projectId,message:Không thể xóa dự án vì có %d căn/lô trực thuộc. Vui lòng xóa các căn/lô trước."`

	Name      string             `json:"name" bson:"name" validate:"required" index:"single:1,compound:project_org_name"`
	CompanyID primitive.ObjectID `json:"companyId,omitempty" bson:"companyId,omitempty" index:"single:1"` // Chủ đầu tư

	Country     string `json:"country,omitempty" bson:"country,omitempty"`
	City        string `json:"city,omitempty" bson:"city,omitempty" index:"single:1"`
	Address     string `json:"address,omitempty" bson:"address,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`

	Status    string `json:"status,omitempty" bson:"status,omitempty" index:"single:1"` // planning|selling|sold_out|handover
	UnitCount int    `json:"unitCount" bson:"unitCount"`                                // Cache số căn/lô, cập nhật khi thêm/xóa unit

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1,compound:project_org_name"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt" index:"single:1"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
