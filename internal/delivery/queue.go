package delivery

import (
	"context"
	"fmt"
	"time"

	deliverymodels "estate_crm/internal/api/delivery/models"
	deliverysvc "estate_crm/internal/api/delivery/service"
	"estate_crm/internal/logger"
)

// Khoảng thời gian chặn gửi trùng (cùng eventType + recipient + channel).
// Mọi timestamp trong delivery đều là Unix ms, cùng đơn vị với base service.
const duplicateWindow = time.Hour

// queueStore là phần data access mà Queue cần, tách interface để test được.
type queueStore interface {
	FindRecentDuplicates(ctx context.Context, eventType, recipient, channelType string, windowMillis int64) ([]deliverymodels.DeliveryQueueItem, error)
	InsertOne(ctx context.Context, item deliverymodels.DeliveryQueueItem) (deliverymodels.DeliveryQueueItem, error)
	InsertMany(ctx context.Context, items []deliverymodels.DeliveryQueueItem) ([]deliverymodels.DeliveryQueueItem, error)
	FindPending(ctx context.Context, limit int) ([]deliverymodels.DeliveryQueueItem, error)
	UpdateStatus(ctx context.Context, ids []interface{}, status string) error
}

// Queue xử lý việc enqueue và dequeue
type Queue struct {
	queueService queueStore
}

// NewQueue tạo mới Queue
func NewQueue() (*Queue, error) {
	queueService, err := deliverysvc.NewDeliveryQueueService()
	if err != nil {
		return nil, fmt.Errorf("failed to create queue service: %w", err)
	}

	return &Queue{
		queueService: queueService,
	}, nil
}

// Enqueue thêm items vào queue. Item trùng với một item pending/processing
// gần đây (cùng eventType + recipient + channel) bị bỏ qua để tránh spam.
func (q *Queue) Enqueue(ctx context.Context, items []*deliverymodels.DeliveryQueueItem) error {
	now := time.Now().UnixMilli()
	log := logger.GetAppLogger()

	itemsToInsert := make([]deliverymodels.DeliveryQueueItem, 0, len(items))
	skipped := 0
	for _, item := range items {
		duplicates, err := q.queueService.FindRecentDuplicates(ctx, item.EventType, item.Recipient, item.ChannelType, duplicateWindow.Milliseconds())
		if err == nil && len(duplicates) > 0 {
			skipped++
			continue
		}

		item.Status = "pending"
		item.RetryCount = 0
		if item.MaxRetries == 0 {
			item.MaxRetries = 3
		}
		if item.Priority == 0 {
			item.Priority = 3 // medium
		}
		item.CreatedAt = now
		item.UpdatedAt = now
		itemsToInsert = append(itemsToInsert, *item)
	}

	if len(itemsToInsert) == 0 {
		if skipped > 0 {
			log.WithField("skipped", skipped).Info("📦 [DELIVERY] Tất cả items đều trùng, không enqueue")
		}
		return nil
	}

	insertedItems, err := q.queueService.InsertMany(ctx, itemsToInsert)
	if err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"totalItems": len(itemsToInsert),
		}).Error("📦 [DELIVERY] Lỗi khi insert queue items vào database")
		return err
	}

	log.WithFields(map[string]interface{}{
		"totalItems":    len(items),
		"insertedCount": len(insertedItems),
		"skipped":       skipped,
	}).Info("📦 [DELIVERY] Đã insert queue items vào database")

	return nil
}

// EnqueueOne thêm một item và trả về bản ghi đã insert (có _id).
// Không áp dụng chặn trùng, dùng cho gửi trực tiếp qua API.
func (q *Queue) EnqueueOne(ctx context.Context, item deliverymodels.DeliveryQueueItem) (deliverymodels.DeliveryQueueItem, error) {
	now := time.Now().UnixMilli()
	item.Status = "pending"
	item.RetryCount = 0
	if item.MaxRetries == 0 {
		item.MaxRetries = 3
	}
	if item.Priority == 0 {
		item.Priority = 3
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	return q.queueService.InsertOne(ctx, item)
}

// Dequeue lấy items từ queue (status="pending", limit)
func (q *Queue) Dequeue(ctx context.Context, limit int) ([]*deliverymodels.DeliveryQueueItem, error) {
	items, err := q.queueService.FindPending(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	// Update status to "processing"
	ids := make([]interface{}, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	err = q.queueService.UpdateStatus(ctx, ids, "processing")
	if err != nil {
		return nil, err
	}

	result := make([]*deliverymodels.DeliveryQueueItem, len(items))
	for i := range items {
		result[i] = &items[i]
	}

	return result, nil
}
