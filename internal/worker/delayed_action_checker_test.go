// Package worker - Test guard chống chồng chu kỳ của DelayedActionChecker.
package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	crmmodels "estate_crm/internal/api/crm/models"
	notifsvc "estate_crm/internal/api/notification/service"
	notifmodels "estate_crm/internal/api/notification/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// countingSource đếm số lần bị gọi, có thể block để giả lập chu kỳ chạy lâu.
type countingSource struct {
	calls   atomic.Int32
	release chan struct{} // nil = không block
}

func (f *countingSource) FindDueNextAction(ctx context.Context, now int64) ([]crmmodels.Client, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	return nil, nil
}

type noopStore struct{}

func (noopStore) HasUnreadDelayed(ctx context.Context, userID, clientID primitive.ObjectID) (bool, error) {
	return false, nil
}

func (noopStore) CreateDelayed(ctx context.Context, userID, clientID, ownerOrgID primitive.ObjectID, clientName string) (*notifmodels.Notification, error) {
	return &notifmodels.Notification{ID: primitive.NewObjectID()}, nil
}

func newTestChecker(source *countingSource) *DelayedActionChecker {
	return &DelayedActionChecker{
		checkService: notifsvc.NewNotificationCheckServiceWith(source, noopStore{}, nil),
		interval:     time.Minute,
	}
}

func TestRunCycle_ChayBinhThuongVaNhaGuard(t *testing.T) {
	source := &countingSource{}
	w := newTestChecker(source)

	w.runCycle(context.Background())
	w.runCycle(context.Background())
	if got := source.calls.Load(); got != 2 {
		t.Fatalf("hai lần gọi tuần tự phải chạy đủ 2 chu kỳ, got %d", got)
	}
	if w.inFlight.Load() {
		t.Error("guard phải được nhả sau khi chu kỳ xong")
	}
}

func TestRunCycle_BoQuaKhiChuKyTruocConChay(t *testing.T) {
	source := &countingSource{release: make(chan struct{})}
	w := newTestChecker(source)

	done := make(chan struct{})
	go func() {
		w.runCycle(context.Background())
		close(done)
	}()

	// Đợi chu kỳ 1 vào trong và giữ guard
	deadline := time.After(2 * time.Second)
	for source.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("chu kỳ 1 không khởi động")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// Tick đến khi chu kỳ trước còn chạy → phải bị bỏ qua
	w.runCycle(context.Background())
	if got := source.calls.Load(); got != 1 {
		t.Fatalf("tick chồng phải bị bỏ qua, số chu kỳ đã chạy = %d", got)
	}

	close(source.release)
	<-done

	// Guard đã nhả → tick sau chạy bình thường
	source.release = nil
	w.runCycle(context.Background())
	if got := source.calls.Load(); got != 2 {
		t.Fatalf("sau khi chu kỳ trước xong, tick mới phải chạy, got %d", got)
	}
}
