// Package models - ClientInsight thuộc domain Insight (client_insights).
// Lưu bản tóm tắt đánh giá khách do rule engine sinh, mỗi khách một document.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tín hiệu chăm sóc khách.
const (
	AttentionSignalHot      = "hot"      // Đang thương lượng / đánh giá cao, ưu tiên chăm
	AttentionSignalWarm     = "warm"     // Đang tư vấn, giữ nhịp liên hệ
	AttentionSignalStale    = "stale"    // Lâu không tương tác, cần liên hệ lại
	AttentionSignalDormant  = "dormant"  // Hoãn hoặc mất, chỉ theo dõi
	AttentionSignalComplete = "complete" // Đã chốt, chuyển chăm sóc sau bán
)

// ClientInsight bản đánh giá tự động của một khách (client_insights).
type ClientInsight struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	ClientID primitive.ObjectID `json:"clientId" bson:"clientId" index:"single:1,compound:insight_org_client_unique"`

	// Kết quả rule engine
	Signal        string   `json:"signal" bson:"signal" index:"single:1"` // hot|warm|stale|dormant|complete
	Summary       string   `json:"summary" bson:"summary"`
	Suggestions   []string `json:"suggestions,omitempty" bson:"suggestions,omitempty"`
	StalenessDays int      `json:"stalenessDays" bson:"stalenessDays"` // Số ngày từ lần cập nhật cuối

	GeneratedAt int64 `json:"generatedAt" bson:"generatedAt"` // Unix ms thời điểm tính

	// Phân quyền
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1,compound:insight_org_client_unique"`

	// Metadata
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
