// Package dto - DTO cho domain Catalog (company, project, unit, property).
package dto

// CompanyCreateInput input tạo chủ đầu tư.
type CompanyCreateInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	LogoURL     string `json:"logoUrl,omitempty"`
}

// CompanyUpdateInput input cập nhật chủ đầu tư.
type CompanyUpdateInput struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	LogoURL     string `json:"logoUrl,omitempty"`
}

// ProjectCreateInput input tạo dự án.
type ProjectCreateInput struct {
	Name        string `json:"name" validate:"required"`
	CompanyID   string `json:"companyId,omitempty" transform:"str_objectid,optional"`
	Country     string `json:"country,omitempty"`
	City        string `json:"city,omitempty"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=planning selling sold_out handover"`
}

// ProjectUpdateInput input cập nhật dự án.
type ProjectUpdateInput struct {
	Name        string `json:"name,omitempty"`
	CompanyID   string `json:"companyId,omitempty" transform:"str_objectid,optional"`
	Country     string `json:"country,omitempty"`
	City        string `json:"city,omitempty"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=planning selling sold_out handover"`
}

// ProjectUnitCreateInput input tạo căn/lô.
type ProjectUnitCreateInput struct {
	ProjectID string  `json:"projectId" validate:"required" transform:"str_objectid"`
	Code      string  `json:"code" validate:"required"`
	Floor     int     `json:"floor,omitempty"`
	Bedrooms  int     `json:"bedrooms,omitempty"`
	Area      float64 `json:"area,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Status    string  `json:"status,omitempty" validate:"omitempty,oneof=available reserved sold"`
}

// ProjectUnitUpdateInput input cập nhật căn/lô.
type ProjectUnitUpdateInput struct {
	Code     string  `json:"code,omitempty"`
	Floor    int     `json:"floor,omitempty"`
	Bedrooms int     `json:"bedrooms,omitempty"`
	Area     float64 `json:"area,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Status   string  `json:"status,omitempty" validate:"omitempty,oneof=available reserved sold"`
}

// PropertyCreateInput input tạo bất động sản lẻ.
type PropertyCreateInput struct {
	Name        string  `json:"name" validate:"required"`
	Type        string  `json:"type,omitempty" validate:"omitempty,oneof=apartment house land villa"`
	Country     string  `json:"country,omitempty"`
	City        string  `json:"city,omitempty"`
	Address     string  `json:"address,omitempty"`
	Area        float64 `json:"area,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status,omitempty" validate:"omitempty,oneof=available reserved sold"`
}

// PropertyUpdateInput input cập nhật bất động sản lẻ.
type PropertyUpdateInput struct {
	Name        string  `json:"name,omitempty"`
	Type        string  `json:"type,omitempty" validate:"omitempty,oneof=apartment house land villa"`
	Country     string  `json:"country,omitempty"`
	City        string  `json:"city,omitempty"`
	Address     string  `json:"address,omitempty"`
	Area        float64 `json:"area,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status,omitempty" validate:"omitempty,oneof=available reserved sold"`
}

// CatalogBulkDeleteInput input xóa hàng loạt dự án hoặc căn/lô. Confirm bắt buộc.
type CatalogBulkDeleteInput struct {
	Ids     []string `json:"ids" validate:"required,min=1,dive,required"`
	Confirm bool     `json:"confirm"`
}

// CatalogBulkResult kết quả một thao tác hàng loạt trên danh mục.
type CatalogBulkResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}
