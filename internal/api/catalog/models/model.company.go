// Package models - Các entity danh mục bất động sản: company (chủ đầu tư).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Company chủ đầu tư / đơn vị phát triển dự án (companies).
type Company struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	_Relationships struct{}           `relationship:"collection:catalog_projects,field:companyId,message:Không thể xóa chủ đầu tư vì có %d dự án trực thuộc. Vui lòng xóa hoặc chuyển các dự án trước."`

	Name        string `json:"name" bson:"name" validate:"required" index:"single:1,compound:company_org_name"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Website     string `json:"website,omitempty" bson:"website,omitempty"`
	Phone       string `json:"phone,omitempty" bson:"phone,omitempty"`
	Email       string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	LogoURL     string `json:"logoUrl,omitempty" bson:"logoUrl,omitempty"`

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1,compound:company_org_name"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt" index:"single:1"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
