// Package dto - DTO cho domain CRM (client).
package dto

// ClientCreateInput input tạo khách hàng mới.
type ClientCreateInput struct {
	Name          string `json:"name" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Facebook      string `json:"facebook,omitempty"`
	Country       string `json:"country,omitempty"`
	City          string `json:"city,omitempty"`
	ProjectID     string `json:"projectId,omitempty" transform:"str_objectid,optional"`
	Budget        string `json:"budget,omitempty"`
	Campaign      string `json:"campaign,omitempty"`
	Status        string `json:"status,omitempty" validate:"omitempty,oneof=new contacted interested visit negotiation won lost postponed"`
	ContactMethod string `json:"contactMethod,omitempty"`

	NextActionType string `json:"nextActionType,omitempty"`
	NextActionDate int64  `json:"nextActionDate,omitempty"` // Unix ms, phải ở tương lai nếu có

	Comment string `json:"comment,omitempty"`
	Rating  int    `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
}

// ClientUpdateInput input cập nhật khách hàng (các field đều optional).
type ClientUpdateInput struct {
	Name          string `json:"name,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Facebook      string `json:"facebook,omitempty"`
	Country       string `json:"country,omitempty"`
	City          string `json:"city,omitempty"`
	ProjectID     string `json:"projectId,omitempty" transform:"str_objectid,optional"`
	Budget        string `json:"budget,omitempty"`
	Campaign      string `json:"campaign,omitempty"`
	Status        string `json:"status,omitempty" validate:"omitempty,oneof=new contacted interested visit negotiation won lost postponed"`
	ContactMethod string `json:"contactMethod,omitempty"`

	NextActionType string `json:"nextActionType,omitempty"`
	NextActionDate int64  `json:"nextActionDate,omitempty"`

	Comment string `json:"comment,omitempty"`
}

// ClientListQuery query string của GET /clients: filter + phân trang.
type ClientListQuery struct {
	Query         string `query:"q" json:"q,omitempty"`
	SelectedUser  string `query:"userId" json:"userId,omitempty" transform:"str_objectid,optional"`
	FavoritesOnly bool   `query:"favoritesOnly" json:"favoritesOnly,omitempty"`
	Status        string `query:"status" json:"status,omitempty" validate:"omitempty,oneof=new contacted interested visit negotiation won lost postponed"`
	Page          int    `query:"page" json:"page,omitempty"`
	RowsPerPage   int    `query:"rowsPerPage" json:"rowsPerPage,omitempty"`
}

// BulkAssignInput input gán người phụ trách hàng loạt.
type BulkAssignInput struct {
	ClientIds []string `json:"clientIds" validate:"required,min=1,dive,required"`
	UserID    string   `json:"userId" validate:"required" transform:"str_objectid"`
}

// BulkUnassignInput input bỏ gán hàng loạt. Cần confirm (thao tác thay đổi nhiều record).
type BulkUnassignInput struct {
	ClientIds []string `json:"clientIds" validate:"required,min=1,dive,required"`
	Confirm   bool     `json:"confirm"`
}

// BulkDeleteInput input xóa hàng loạt. Confirm bắt buộc — thiếu là lỗi validate, không gọi DB.
type BulkDeleteInput struct {
	ClientIds []string `json:"clientIds" validate:"required,min=1,dive,required"`
	Confirm   bool     `json:"confirm"`
}

// ClientStatusInput input đổi trạng thái pipeline.
type ClientStatusInput struct {
	Status string `json:"status" validate:"required,oneof=new contacted interested visit negotiation won lost postponed"`
	Note   string `json:"note,omitempty"`
}

// ClientRatingInput input cập nhật đánh giá 0-5.
type ClientRatingInput struct {
	Rating int `json:"rating" validate:"min=0,max=5"`
}

// ClientCommentInput input thêm ghi chú vào mảng comments.
type ClientCommentInput struct {
	Text string `json:"text" validate:"required"`
}

// ClientListResponse kết quả GET /clients sau filter + phân trang (page đã clamp).
type ClientListResponse struct {
	Items       interface{} `json:"items"`
	Page        int64       `json:"page"`
	RowsPerPage int64       `json:"rowsPerPage"`
	TotalPages  int64       `json:"totalPages"`
	Total       int64       `json:"total"`
}

// BulkOperationResult kết quả một thao tác hàng loạt.
type BulkOperationResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}
