// Package notifsvc - Test checker nhắc lịch hẹn: dedup (user, client), fallback
// người nhận, lỗi từng khách không hủy chu kỳ.
package notifsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	crmmodels "estate_crm/internal/api/crm/models"
	notifmodels "estate_crm/internal/api/notification/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeDueSource struct {
	clients []crmmodels.Client
	err     error
}

func (f *fakeDueSource) FindDueNextAction(ctx context.Context, now int64) ([]crmmodels.Client, error) {
	return f.clients, f.err
}

type pairKey struct {
	user   primitive.ObjectID
	client primitive.ObjectID
}

type fakeStore struct {
	unread    map[pairKey]bool
	created   []notifmodels.Notification
	existsErr error
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{unread: make(map[pairKey]bool)}
}

func (f *fakeStore) HasUnreadDelayed(ctx context.Context, userID, clientID primitive.ObjectID) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.unread[pairKey{userID, clientID}], nil
}

func (f *fakeStore) CreateDelayed(ctx context.Context, userID, clientID, ownerOrgID primitive.ObjectID, clientName string) (*notifmodels.Notification, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	n := notifmodels.Notification{
		ID:                  primitive.NewObjectID(),
		UserID:              userID,
		Type:                notifmodels.NotificationTypeDelayedClient,
		ClientID:            clientID,
		OwnerOrganizationID: ownerOrgID,
		Read:                false,
	}
	f.created = append(f.created, n)
	f.unread[pairKey{userID, clientID}] = true
	return &n, nil
}

func dueClient(assignedTo, createdBy primitive.ObjectID) crmmodels.Client {
	return crmmodels.Client{
		ID:                  primitive.NewObjectID(),
		Name:                "Khách test",
		AssignedTo:          assignedTo,
		CreatedBy:           createdBy,
		NextActionType:      "call",
		NextActionDate:      time.Now().Add(-time.Minute).UnixMilli(),
		OwnerOrganizationID: primitive.NewObjectID(),
	}
}

func TestRunCycle_TaoThongBaoChoKhachToiHan(t *testing.T) {
	user := primitive.NewObjectID()
	client := dueClient(user, primitive.NilObjectID)
	store := newFakeStore()
	svc := NewNotificationCheckServiceWith(&fakeDueSource{clients: []crmmodels.Client{client}}, store, nil)

	result, err := svc.RunCycle(context.Background(), time.Now().UnixMilli())
	if err != nil {
		t.Fatalf("RunCycle lỗi: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("phải tạo 1 thông báo, got %d", result.Created)
	}
	if store.created[0].UserID != user || store.created[0].ClientID != client.ID {
		t.Error("thông báo phải gắn đúng (user, client)")
	}
}

func TestRunCycle_DedupKhongTaoThongBaoThuHai(t *testing.T) {
	user := primitive.NewObjectID()
	client := dueClient(user, primitive.NilObjectID)
	store := newFakeStore()
	svc := NewNotificationCheckServiceWith(&fakeDueSource{clients: []crmmodels.Client{client}}, store, nil)

	now := time.Now().UnixMilli()
	if _, err := svc.RunCycle(context.Background(), now); err != nil {
		t.Fatalf("chu kỳ 1 lỗi: %v", err)
	}
	result, err := svc.RunCycle(context.Background(), now+60_000)
	if err != nil {
		t.Fatalf("chu kỳ 2 lỗi: %v", err)
	}
	if result.Created != 0 {
		t.Errorf("cặp (user, client) đã có thông báo chưa đọc, không được tạo thêm, got %d", result.Created)
	}
	if result.Skipped != 1 {
		t.Errorf("khách đã có thông báo phải được đếm là skipped, got %d", result.Skipped)
	}
	if len(store.created) != 1 {
		t.Errorf("tổng thông báo phải là 1, got %d", len(store.created))
	}
}

func TestRunCycle_SauKhiDocThongBaoMoiDuocTaoLai(t *testing.T) {
	user := primitive.NewObjectID()
	client := dueClient(user, primitive.NilObjectID)
	store := newFakeStore()
	svc := NewNotificationCheckServiceWith(&fakeDueSource{clients: []crmmodels.Client{client}}, store, nil)

	now := time.Now().UnixMilli()
	if _, err := svc.RunCycle(context.Background(), now); err != nil {
		t.Fatalf("chu kỳ 1 lỗi: %v", err)
	}
	// User đọc thông báo → ràng buộc chỉ áp cho CHƯA đọc
	store.unread[pairKey{user, client.ID}] = false

	result, err := svc.RunCycle(context.Background(), now+60_000)
	if err != nil {
		t.Fatalf("chu kỳ 2 lỗi: %v", err)
	}
	if result.Created != 1 {
		t.Errorf("sau khi đã đọc, chu kỳ sau phải tạo thông báo mới, got %d", result.Created)
	}
}

func TestRunCycle_NguoiNhanFallbackVeNguoiTao(t *testing.T) {
	creator := primitive.NewObjectID()
	client := dueClient(primitive.NilObjectID, creator)
	store := newFakeStore()
	svc := NewNotificationCheckServiceWith(&fakeDueSource{clients: []crmmodels.Client{client}}, store, nil)

	if _, err := svc.RunCycle(context.Background(), time.Now().UnixMilli()); err != nil {
		t.Fatalf("RunCycle lỗi: %v", err)
	}
	if len(store.created) != 1 || store.created[0].UserID != creator {
		t.Error("không có người phụ trách thì người tạo phải nhận thông báo")
	}
}

func TestRunCycle_KhachKhongCoNguoiNhanBiBoQua(t *testing.T) {
	client := dueClient(primitive.NilObjectID, primitive.NilObjectID)
	store := newFakeStore()
	svc := NewNotificationCheckServiceWith(&fakeDueSource{clients: []crmmodels.Client{client}}, store, nil)

	result, err := svc.RunCycle(context.Background(), time.Now().UnixMilli())
	if err != nil {
		t.Fatalf("RunCycle lỗi: %v", err)
	}
	if result.Created != 0 || result.Skipped != 1 {
		t.Errorf("khách không có người nhận phải bị bỏ qua, created=%d skipped=%d", result.Created, result.Skipped)
	}
}

func TestRunCycle_LoiMotKhachKhongHuyCaChuKy(t *testing.T) {
	user := primitive.NewObjectID()
	clients := []crmmodels.Client{dueClient(user, primitive.NilObjectID), dueClient(user, primitive.NilObjectID)}
	store := newFakeStore()
	store.existsErr = errors.New("mongo timeout")
	svc := NewNotificationCheckServiceWith(&fakeDueSource{clients: clients}, store, nil)

	result, err := svc.RunCycle(context.Background(), time.Now().UnixMilli())
	if err != nil {
		t.Fatalf("lỗi từng khách không được trả về từ RunCycle: %v", err)
	}
	if result.Failed != 2 {
		t.Errorf("cả 2 khách lỗi phải được đếm là failed, got %d", result.Failed)
	}
}

func TestRunCycle_LoiTimKhachTraVeLoi(t *testing.T) {
	svc := NewNotificationCheckServiceWith(&fakeDueSource{err: errors.New("mongo down")}, newFakeStore(), nil)
	if _, err := svc.RunCycle(context.Background(), time.Now().UnixMilli()); err == nil {
		t.Fatal("lỗi truy vấn khách tới hạn phải trả về lỗi cho caller")
	}
}
