// Package crmvc - Test pipeline danh sách khách: filter, phân trang (clamp), selection.
package crmvc

import (
	"testing"

	crmmodels "estate_crm/internal/api/crm/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func makeClients(n int) []crmmodels.Client {
	clients := make([]crmmodels.Client, 0, n)
	for i := 0; i < n; i++ {
		clients = append(clients, crmmodels.Client{
			ID:    primitive.NewObjectID(),
			Name:  "Khách " + string(rune('A'+i%26)),
			Phone: "0900000000",
		})
	}
	return clients
}

func TestMatchesQuery_SubstringKhongPhanBietHoaThuong(t *testing.T) {
	client := &crmmodels.Client{Name: "Ali Hassan", Phone: "0912345678", Email: "ali@example.com"}
	if !MatchesQuery(client, "ali") {
		t.Error("query 'ali' phải khớp tên 'Ali Hassan'")
	}
	if !MatchesQuery(client, "HASSAN") {
		t.Error("query không phân biệt hoa thường")
	}
	if !MatchesQuery(client, "912345") {
		t.Error("query phải khớp substring của phone")
	}
	if !MatchesQuery(client, "@example") {
		t.Error("query phải khớp substring của email")
	}
	if MatchesQuery(client, "Sara") {
		t.Error("query 'Sara' không được khớp 'Ali Hassan'")
	}
}

func TestMatchesQuery_QueryRongHoacWhitespace(t *testing.T) {
	client := &crmmodels.Client{Name: "Ali"}
	if !MatchesQuery(client, "") {
		t.Error("query rỗng phải khớp mọi khách")
	}
	if !MatchesQuery(client, "   ") {
		t.Error("query toàn whitespace coi như rỗng")
	}
}

func TestApplyFilter_TheoUserVaFavorites(t *testing.T) {
	userA := primitive.NewObjectID()
	userB := primitive.NewObjectID()
	assigned := crmmodels.Client{ID: primitive.NewObjectID(), Name: "Gán cho A", AssignedTo: userA}
	created := crmmodels.Client{ID: primitive.NewObjectID(), Name: "A tạo", CreatedBy: userA}
	other := crmmodels.Client{ID: primitive.NewObjectID(), Name: "Của B", AssignedTo: userB}
	clients := []crmmodels.Client{assigned, created, other}

	got := ApplyFilter(clients, ClientListFilter{SelectedUserID: &userA}, nil)
	if len(got) != 2 {
		t.Fatalf("filter theo user A phải trả 2 khách (được gán hoặc đã tạo), got %d", len(got))
	}
	if got[0].ID != assigned.ID || got[1].ID != created.ID {
		t.Error("filter phải giữ nguyên thứ tự đầu vào")
	}

	favorites := map[primitive.ObjectID]struct{}{other.ID: {}}
	got = ApplyFilter(clients, ClientListFilter{FavoritesOnly: true}, favorites)
	if len(got) != 1 || got[0].ID != other.ID {
		t.Errorf("favoritesOnly phải trả đúng khách trong favorites, got %d", len(got))
	}
}

func TestApplyFilter_DanhSachRong(t *testing.T) {
	got := ApplyFilter(nil, ClientListFilter{Query: "x"}, nil)
	if len(got) != 0 {
		t.Error("danh sách rỗng phải trả kết quả rỗng")
	}
}

func TestPaginate_GhepCacTrangPhaiDuKhongTrung(t *testing.T) {
	clients := makeClients(12)
	size := 5

	var all []primitive.ObjectID
	_, _, totalPages := Paginate(clients, 1, size)
	if totalPages != 3 {
		t.Fatalf("12 khách size 5 phải có 3 trang, got %d", totalPages)
	}
	wantSizes := []int{5, 5, 2}
	for page := 1; page <= totalPages; page++ {
		items, clamped, _ := Paginate(clients, page, size)
		if clamped != page {
			t.Errorf("trang %d trong khoảng không được clamp, got %d", page, clamped)
		}
		if len(items) != wantSizes[page-1] {
			t.Errorf("trang %d phải có %d khách, got %d", page, wantSizes[page-1], len(items))
		}
		for _, it := range items {
			all = append(all, it.ID)
		}
	}
	if len(all) != len(clients) {
		t.Fatalf("ghép các trang phải đủ %d khách, got %d", len(clients), len(all))
	}
	for i, id := range all {
		if id != clients[i].ID {
			t.Fatalf("ghép các trang phải đúng thứ tự gốc, lệch tại vị trí %d", i)
		}
	}
}

func TestPaginate_ClampPageNgoaiKhoang(t *testing.T) {
	clients := makeClients(12)

	items, page, _ := Paginate(clients, 99, 5)
	if page != 3 {
		t.Errorf("trang 99 phải clamp về 3, got %d", page)
	}
	if len(items) != 2 {
		t.Errorf("trang clamp về cuối phải có 2 khách, got %d", len(items))
	}

	items, page, _ = Paginate(clients, 0, 5)
	if page != 1 {
		t.Errorf("trang 0 phải clamp về 1, got %d", page)
	}
	if len(items) != 5 {
		t.Errorf("trang đầu phải có 5 khách, got %d", len(items))
	}
}

func TestPaginate_DanhSachRongVanCo1Trang(t *testing.T) {
	items, page, totalPages := Paginate(nil, 5, 10)
	if totalPages != 1 {
		t.Errorf("danh sách rỗng vẫn phải có totalPages = 1, got %d", totalPages)
	}
	if page != 1 {
		t.Errorf("page phải clamp về 1, got %d", page)
	}
	if len(items) != 0 {
		t.Error("danh sách rỗng trả trang rỗng")
	}
}

func TestPaginate_340KhachSize100Co4Trang(t *testing.T) {
	clients := makeClients(340)
	_, _, totalPages := Paginate(clients, 1, 100)
	if totalPages != 4 {
		t.Errorf("340 khách size 100 phải có 4 trang, got %d", totalPages)
	}
	items, _, _ := Paginate(clients, 4, 100)
	if len(items) != 40 {
		t.Errorf("trang cuối phải có 40 khách, got %d", len(items))
	}
}

func TestIsValidRowsPerPage(t *testing.T) {
	for _, size := range []int{10, 25, 50, 100, 250, 500} {
		if !IsValidRowsPerPage(size) {
			t.Errorf("size %d phải hợp lệ", size)
		}
	}
	for _, size := range []int{0, 1, 20, 99, 1000} {
		if IsValidRowsPerPage(size) {
			t.Errorf("size %d không được hợp lệ", size)
		}
	}
}

func TestSelectionState_SelectAllToggleHaiLanVeTrangThaiCu(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	s := NewSelectionState()

	s.SelectAll(ids)
	if s.Count() != 3 {
		t.Fatalf("sau SelectAll phải chọn đủ 3, got %d", s.Count())
	}
	s.SelectAll(ids)
	if s.Count() != 0 {
		t.Fatalf("SelectAll lần 2 phải bỏ chọn hết, got %d", s.Count())
	}
}

func TestSelectionState_SelectAllThayTheKhongGop(t *testing.T) {
	pageOne := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	pageTwo := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	s := NewSelectionState()

	s.SelectAll(pageOne)
	s.SelectAll(pageTwo)
	if s.Count() != 3 {
		t.Fatalf("SelectAll trang mới phải THAY selection cũ, got %d", s.Count())
	}
	for _, id := range pageOne {
		if s.IsSelected(id) {
			t.Error("id của trang cũ không được còn trong selection")
		}
	}
}

func TestSelectionState_SelectAllKhiDaChonMotPhan(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	s := NewSelectionState()
	s.Toggle(ids[0])

	// Chưa chọn đủ → SelectAll phải chọn đúng toàn bộ trang, không phải clear
	s.SelectAll(ids)
	if s.Count() != 3 {
		t.Fatalf("SelectAll khi chọn một phần phải chọn đủ trang, got %d", s.Count())
	}
}

func TestSelectionState_Toggle(t *testing.T) {
	id := primitive.NewObjectID()
	s := NewSelectionState()

	s.Toggle(id)
	if !s.IsSelected(id) {
		t.Error("Toggle lần 1 phải chọn id")
	}
	s.Toggle(id)
	if s.IsSelected(id) {
		t.Error("Toggle lần 2 phải bỏ chọn id")
	}
	s.Toggle(id)
	s.Clear()
	if s.Count() != 0 {
		t.Error("Clear phải bỏ chọn tất cả")
	}
}
