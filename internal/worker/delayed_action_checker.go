// Package worker - DelayedActionChecker quét khách có lịch hẹn đã tới hạn theo
// chu kỳ, tạo thông báo nhắc cho người phụ trách (hoặc người tạo).
package worker

import (
	"context"
	"sync/atomic"
	"time"

	notifsvc "estate_crm/internal/api/notification/service"
	"estate_crm/internal/logger"
)

// DelayedActionChecker worker chạy NotificationCheckService theo chu kỳ.
//
// Một chu kỳ: tìm khách có nextActionDate <= now → dedup với thông báo
// delayed_client chưa đọc theo cặp (user, client) → tạo thông báo mới.
// Guard inFlight đảm bảo hai chu kỳ không bao giờ chồng lên nhau: nếu chu kỳ
// trước còn chạy khi tick tiếp theo đến, tick đó bị bỏ qua.
type DelayedActionChecker struct {
	checkService *notifsvc.NotificationCheckService
	interval     time.Duration
	inFlight     atomic.Bool
}

// NewDelayedActionChecker tạo checker mới. Interval dưới 5s bị nâng về 60s.
func NewDelayedActionChecker(interval time.Duration) (*DelayedActionChecker, error) {
	checkService, err := notifsvc.NewNotificationCheckService()
	if err != nil {
		return nil, err
	}
	if interval < 5*time.Second {
		interval = time.Minute
	}
	return &DelayedActionChecker{
		checkService: checkService,
		interval:     interval,
	}, nil
}

// Start chạy worker trong vòng lặp đến khi ctx bị hủy.
func (w *DelayedActionChecker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
	}).Info("⏰ [DELAYED_CHECKER] Starting Delayed Action Checker...")

	// Chạy ngay lần đầu sau 1 phút (tránh chạy lúc startup)
	time.Sleep(time.Minute)
	w.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("⏰ [DELAYED_CHECKER] Delayed Action Checker stopped")
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// runCycle chạy một chu kỳ nếu không có chu kỳ nào đang chạy.
func (w *DelayedActionChecker) runCycle(ctx context.Context) {
	log := logger.GetAppLogger()

	if !w.inFlight.CompareAndSwap(false, true) {
		log.Warn("⏰ [DELAYED_CHECKER] Chu kỳ trước chưa xong, bỏ qua tick này")
		return
	}
	defer w.inFlight.Store(false)

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(map[string]interface{}{
				"panic": r,
			}).Error("⏰ [DELAYED_CHECKER] Panic khi xử lý, sẽ tiếp tục lần chạy tiếp theo")
		}
	}()

	result, err := w.checkService.RunCycle(ctx, time.Now().UnixMilli())
	if err != nil {
		log.WithError(err).Error("⏰ [DELAYED_CHECKER] Lỗi chạy chu kỳ kiểm tra")
		return
	}
	if result.Due > 0 {
		log.WithFields(map[string]interface{}{
			"due":     result.Due,
			"created": result.Created,
			"skipped": result.Skipped,
			"failed":  result.Failed,
		}).Info("⏰ [DELAYED_CHECKER] Đã xử lý khách tới hạn")
	}
}
