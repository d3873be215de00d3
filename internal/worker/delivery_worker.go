// Package worker - DeliveryWorker xử lý hàng đợi gửi email theo chu kỳ.
package worker

import (
	"context"
	"time"

	"estate_crm/internal/delivery"
	"estate_crm/internal/logger"
)

const deliveryBatchSize = 50

// DeliveryWorker lấy items pending từ delivery queue và gửi qua kênh tương ứng.
type DeliveryWorker struct {
	processor *delivery.Processor
	interval  time.Duration
}

// NewDeliveryWorker tạo worker mới. Interval dưới 5s bị nâng về 30s.
func NewDeliveryWorker(interval time.Duration) (*DeliveryWorker, error) {
	processor, err := delivery.NewProcessor()
	if err != nil {
		return nil, err
	}
	if interval < 5*time.Second {
		interval = 30 * time.Second
	}
	return &DeliveryWorker{
		processor: processor,
		interval:  interval,
	}, nil
}

// Start chạy worker trong vòng lặp đến khi ctx bị hủy.
func (w *DeliveryWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
	}).Info("📦 [DELIVERY] Starting Delivery Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("📦 [DELIVERY] Delivery Worker stopped")
			return
		case <-ticker.C:
			w.runBatch(ctx)
		}
	}
}

func (w *DeliveryWorker) runBatch(ctx context.Context) {
	log := logger.GetAppLogger()

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(map[string]interface{}{
				"panic": r,
			}).Error("📦 [DELIVERY] Panic khi xử lý batch, sẽ tiếp tục lần chạy tiếp theo")
		}
	}()

	sent, err := w.processor.ProcessBatch(ctx, deliveryBatchSize)
	if err != nil {
		log.WithError(err).Error("📦 [DELIVERY] Lỗi xử lý batch")
		return
	}
	if sent > 0 {
		log.WithFields(map[string]interface{}{
			"sent": sent,
		}).Info("📦 [DELIVERY] Đã gửi xong batch")
	}
}
