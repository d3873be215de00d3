// Package crmvc - Pipeline danh sách khách hàng: filter → paginate → selection.
// Các hàm ở đây thuần (không gọi DB) để service và test dùng chung một logic.
package crmvc

import (
	"strings"

	crmmodels "estate_crm/internal/api/crm/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RowsPerPageOptions các giá trị số dòng mỗi trang được phép.
var RowsPerPageOptions = []int{10, 25, 50, 100, 250, 500}

// IsValidRowsPerPage kiểm tra size có nằm trong danh sách cho phép không.
func IsValidRowsPerPage(size int) bool {
	for _, opt := range RowsPerPageOptions {
		if size == opt {
			return true
		}
	}
	return false
}

// ClientListFilter trạng thái filter của danh sách khách hàng.
type ClientListFilter struct {
	Query          string              // Tìm kiếm tự do trên name/phone/email
	SelectedUserID *primitive.ObjectID // nil = tất cả user
	FavoritesOnly  bool                // Chỉ hiện khách đã đánh dấu yêu thích
	Page           int                 // Trang hiện tại, 1-based
	RowsPerPage    int                 // Một trong RowsPerPageOptions
}

// MatchesQuery kiểm tra query có khớp khách hàng không: query rỗng (hoặc chỉ
// whitespace) luôn khớp; ngược lại so substring không phân biệt hoa thường
// trên name, phone, email.
func MatchesQuery(client *crmmodels.Client, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(client.Name), q) ||
		strings.Contains(strings.ToLower(client.Phone), q) ||
		strings.Contains(strings.ToLower(client.Email), q)
}

// ApplyFilter lọc danh sách khách theo filter, giữ nguyên thứ tự đầu vào.
// Một khách qua filter khi: khớp query AND (không chọn user HOẶC user là người
// phụ trách hoặc người tạo) AND (không bật favoritesOnly HOẶC id nằm trong favoriteIds).
func ApplyFilter(clients []crmmodels.Client, filter ClientListFilter, favoriteIds map[primitive.ObjectID]struct{}) []crmmodels.Client {
	result := make([]crmmodels.Client, 0, len(clients))
	for i := range clients {
		client := &clients[i]
		if !MatchesQuery(client, filter.Query) {
			continue
		}
		if filter.SelectedUserID != nil {
			uid := *filter.SelectedUserID
			if client.AssignedTo != uid && client.CreatedBy != uid {
				continue
			}
		}
		if filter.FavoritesOnly {
			if _, ok := favoriteIds[client.ID]; !ok {
				continue
			}
		}
		result = append(result, *client)
	}
	return result
}

// Paginate cắt trang từ danh sách đã lọc. Page được clamp về [1, totalPages]
// nên trang ngoài khoảng trả về trang gần nhất thay vì danh sách rỗng.
// totalPages tối thiểu là 1 kể cả khi danh sách rỗng.
func Paginate(filtered []crmmodels.Client, page, size int) (displayed []crmmodels.Client, clampedPage, totalPages int) {
	if size <= 0 {
		size = RowsPerPageOptions[0]
	}
	totalPages = (len(filtered) + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	clampedPage = page
	if clampedPage < 1 {
		clampedPage = 1
	}
	if clampedPage > totalPages {
		clampedPage = totalPages
	}
	start := (clampedPage - 1) * size
	if start >= len(filtered) {
		return []crmmodels.Client{}, clampedPage, totalPages
	}
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], clampedPage, totalPages
}

// SelectionState tập id khách đang được chọn trên trang hiển thị.
// Caller chịu trách nhiệm Clear khi đổi trang hoặc đổi filter.
type SelectionState struct {
	selected map[primitive.ObjectID]struct{}
}

// NewSelectionState tạo SelectionState rỗng.
func NewSelectionState() *SelectionState {
	return &SelectionState{selected: make(map[primitive.ObjectID]struct{})}
}

// SelectAll toggle giữa "chọn đúng các id đang hiển thị" và "bỏ chọn hết":
// nếu mọi id hiển thị đã được chọn thì xóa selection, ngược lại selection
// được THAY bằng đúng danh sách hiển thị (không gộp với trang trước).
func (s *SelectionState) SelectAll(displayedIds []primitive.ObjectID) {
	allSelected := len(displayedIds) > 0
	for _, id := range displayedIds {
		if _, ok := s.selected[id]; !ok {
			allSelected = false
			break
		}
	}
	if allSelected {
		s.Clear()
		return
	}
	s.selected = make(map[primitive.ObjectID]struct{}, len(displayedIds))
	for _, id := range displayedIds {
		s.selected[id] = struct{}{}
	}
}

// Toggle thêm id nếu chưa chọn, bỏ nếu đã chọn.
func (s *SelectionState) Toggle(id primitive.ObjectID) {
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return
	}
	s.selected[id] = struct{}{}
}

// Clear bỏ chọn tất cả.
func (s *SelectionState) Clear() {
	s.selected = make(map[primitive.ObjectID]struct{})
}

// IsSelected kiểm tra id có đang được chọn không.
func (s *SelectionState) IsSelected(id primitive.ObjectID) bool {
	_, ok := s.selected[id]
	return ok
}

// Count số id đang được chọn.
func (s *SelectionState) Count() int {
	return len(s.selected)
}

// IDs trả về danh sách id đang chọn (thứ tự không đảm bảo).
func (s *SelectionState) IDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	return ids
}
