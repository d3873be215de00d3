// Package models chứa các kiểu dùng chung cho layer repository/base.
package models

// PaginateResult là một trang kết quả trả về từ FindWithPagination.
type PaginateResult[T any] struct {
	Page      int64 `json:"page" bson:"page"`           // Trang hiện tại (bắt đầu từ 1)
	Limit     int64 `json:"limit" bson:"limit"`         // Số mục tối đa trên một trang
	ItemCount int64 `json:"itemCount" bson:"itemCount"` // Số mục thực tế trong trang này
	Items     []T   `json:"items" bson:"items"`
	Total     int64 `json:"total" bson:"total"`         // Tổng số mục match filter
	TotalPage int64 `json:"totalPage" bson:"totalPage"` // Tổng số trang, làm tròn lên
}
