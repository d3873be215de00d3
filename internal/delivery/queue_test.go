// Package delivery - Test enqueue: chặn trùng trong cửa sổ 1 giờ và timestamp
// thống nhất Unix ms với phần còn lại của hệ thống.
package delivery

import (
	"context"
	"testing"
	"time"

	deliverymodels "estate_crm/internal/api/delivery/models"
)

type fakeQueueStore struct {
	duplicates []deliverymodels.DeliveryQueueItem
	windowSeen int64
	inserted   []deliverymodels.DeliveryQueueItem
}

func (f *fakeQueueStore) FindRecentDuplicates(ctx context.Context, eventType, recipient, channelType string, windowMillis int64) ([]deliverymodels.DeliveryQueueItem, error) {
	f.windowSeen = windowMillis
	return f.duplicates, nil
}

func (f *fakeQueueStore) InsertOne(ctx context.Context, item deliverymodels.DeliveryQueueItem) (deliverymodels.DeliveryQueueItem, error) {
	f.inserted = append(f.inserted, item)
	return item, nil
}

func (f *fakeQueueStore) InsertMany(ctx context.Context, items []deliverymodels.DeliveryQueueItem) ([]deliverymodels.DeliveryQueueItem, error) {
	f.inserted = append(f.inserted, items...)
	return items, nil
}

func (f *fakeQueueStore) FindPending(ctx context.Context, limit int) ([]deliverymodels.DeliveryQueueItem, error) {
	return nil, nil
}

func (f *fakeQueueStore) UpdateStatus(ctx context.Context, ids []interface{}, status string) error {
	return nil
}

func emailItem() *deliverymodels.DeliveryQueueItem {
	return &deliverymodels.DeliveryQueueItem{
		EventType:   "delayed_client",
		ChannelType: "email",
		Recipient:   "agent@example.com",
		Subject:     "Nhắc lịch hẹn",
	}
}

func TestEnqueue_CuaSoChanTrungLaMotGioTinhBangMs(t *testing.T) {
	store := &fakeQueueStore{}
	q := &Queue{queueService: store}

	if err := q.Enqueue(context.Background(), []*deliverymodels.DeliveryQueueItem{emailItem()}); err != nil {
		t.Fatalf("Enqueue lỗi: %v", err)
	}
	if store.windowSeen != time.Hour.Milliseconds() {
		t.Errorf("cửa sổ chặn trùng phải là 1 giờ tính bằng ms (%d), got %d", time.Hour.Milliseconds(), store.windowSeen)
	}
}

func TestEnqueue_TimestampLaUnixMs(t *testing.T) {
	store := &fakeQueueStore{}
	q := &Queue{queueService: store}

	if err := q.Enqueue(context.Background(), []*deliverymodels.DeliveryQueueItem{emailItem()}); err != nil {
		t.Fatalf("Enqueue lỗi: %v", err)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("phải insert 1 item, got %d", len(store.inserted))
	}
	// Giá trị tính bằng giây sẽ nhỏ hơn mốc này cả nghìn lần
	floor := time.Now().Add(-time.Minute).UnixMilli()
	if store.inserted[0].CreatedAt < floor {
		t.Errorf("createdAt phải là Unix ms (>= %d), got %d", floor, store.inserted[0].CreatedAt)
	}
}

func TestEnqueue_ItemTrungBiBoQua(t *testing.T) {
	store := &fakeQueueStore{
		duplicates: []deliverymodels.DeliveryQueueItem{{Status: "pending"}},
	}
	q := &Queue{queueService: store}

	if err := q.Enqueue(context.Background(), []*deliverymodels.DeliveryQueueItem{emailItem()}); err != nil {
		t.Fatalf("Enqueue lỗi: %v", err)
	}
	if len(store.inserted) != 0 {
		t.Errorf("item trùng phải bị bỏ qua, got %d inserted", len(store.inserted))
	}
}
