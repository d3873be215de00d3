// Package models - Client thuộc domain CRM (clients).
// Lưu khách hàng (lead) theo pipeline bán hàng, mỗi record thuộc một tổ chức.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái pipeline của khách hàng.
const (
	ClientStatusNew         = "new"         // Mới tạo, chưa liên hệ
	ClientStatusContacted   = "contacted"   // Đã liên hệ lần đầu
	ClientStatusInterested  = "interested"  // Quan tâm, đang tư vấn
	ClientStatusVisit       = "visit"       // Đã hẹn / đi xem dự án
	ClientStatusNegotiation = "negotiation" // Đang thương lượng
	ClientStatusWon         = "won"         // Chốt thành công
	ClientStatusLost        = "lost"        // Mất khách
	ClientStatusPostponed   = "postponed"   // Hoãn, hẹn quay lại sau
)

// ClientStatuses liệt kê các trạng thái hợp lệ, dùng cho validate input.
var ClientStatuses = []string{
	ClientStatusNew, ClientStatusContacted, ClientStatusInterested,
	ClientStatusVisit, ClientStatusNegotiation, ClientStatusWon,
	ClientStatusLost, ClientStatusPostponed,
}

// IsValidClientStatus kiểm tra status có nằm trong danh sách cho phép không.
func IsValidClientStatus(status string) bool {
	for _, s := range ClientStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ClientComment một ghi chú kèm người ghi và thời điểm (mảng comments của Client).
type ClientComment struct {
	Text      string             `json:"text" bson:"text"`
	CreatedBy primitive.ObjectID `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt"` // Unix ms
}

// Client lưu khách hàng tiềm năng (clients).
// Số điện thoại duy nhất trong một tổ chức: service kiểm tra trùng trước khi insert
// để trả lỗi nghiệp vụ rõ ràng; unique index (org, phone) trong crm_indexes.go
// chặn race hai insert đồng thời lọt qua bước check.
type Client struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	// Liên hệ
	Name     string `json:"name" bson:"name" validate:"required"`
	Phone    string `json:"phone" bson:"phone" validate:"required" index:"single:1"` // Đã chuẩn hóa qua utility.NormalizePhone
	Email    string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Facebook string `json:"facebook,omitempty" bson:"facebook,omitempty"`

	// Vị trí
	Country string `json:"country,omitempty" bson:"country,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`

	// Thương mại
	ProjectID primitive.ObjectID `json:"projectId,omitempty" bson:"projectId,omitempty" index:"single:1"` // Dự án khách quan tâm
	Budget    string             `json:"budget,omitempty" bson:"budget,omitempty"`
	Campaign  string             `json:"campaign,omitempty" bson:"campaign,omitempty"`

	// Workflow
	Status        string             `json:"status" bson:"status" index:"single:1,compound:client_org_status"` // new|contacted|interested|visit|negotiation|won|lost|postponed
	ContactMethod string             `json:"contactMethod,omitempty" bson:"contactMethod,omitempty"`
	AssignedTo    primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty" index:"single:1,compound:client_org_assigned"` // Người phụ trách, rỗng = chưa gán
	CreatedBy     primitive.ObjectID `json:"createdBy,omitempty" bson:"createdBy,omitempty" index:"single:1"`

	// Lịch hẹn
	NextActionType string `json:"nextActionType,omitempty" bson:"nextActionType,omitempty"`
	NextActionDate int64  `json:"nextActionDate,omitempty" bson:"nextActionDate,omitempty" index:"single:1,compound:client_org_nextaction"` // Unix ms, 0 = chưa hẹn

	// Ghi chú
	Comment  string          `json:"comment,omitempty" bson:"comment,omitempty"`
	Comments []ClientComment `json:"comments,omitempty" bson:"comments,omitempty"`

	// Đánh giá 0-5
	Rating int `json:"rating" bson:"rating"`

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1,compound:client_org_status,compound:client_org_assigned,compound:client_org_nextaction"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt" index:"single:1"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt" index:"single:1"`
}
