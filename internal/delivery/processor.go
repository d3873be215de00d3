package delivery

import (
	"context"
	"fmt"
	"math"
	"time"

	deliverymodels "estate_crm/internal/api/delivery/models"
	deliverysvc "estate_crm/internal/api/delivery/service"
	"estate_crm/internal/delivery/channels"
	"estate_crm/internal/global"
	"estate_crm/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
)

// Processor xử lý queue items - chỉ lo việc gửi (như "bưu điện").
// Nhận recipient + nội dung đã render, gửi đi, ghi history.
type Processor struct {
	queueService   *deliverysvc.DeliveryQueueService
	historyService *deliverysvc.DeliveryHistoryService
	email          *channels.EmailChannel
}

// NewProcessor tạo mới Processor. email có thể nil nếu SMTP chưa cấu hình,
// khi đó item email sẽ bị đánh failed thay vì treo mãi ở pending.
func NewProcessor() (*Processor, error) {
	queueService, err := deliverysvc.NewDeliveryQueueService()
	if err != nil {
		return nil, fmt.Errorf("failed to create queue service: %w", err)
	}

	historyService, err := deliverysvc.NewDeliveryHistoryService()
	if err != nil {
		return nil, fmt.Errorf("failed to create history service: %w", err)
	}

	return &Processor{
		queueService:   queueService,
		historyService: historyService,
		email:          channels.NewEmailChannel(global.ServerConfig),
	}, nil
}

// handleRetryOrFail xử lý retry cho mọi error case.
// Chưa hết retry: tăng retryCount, set nextRetryAt (backoff mũ), reset về pending.
// Hết retry: đánh dấu failed, ghi history rồi xóa khỏi queue.
func (p *Processor) handleRetryOrFail(ctx context.Context, item *deliverymodels.DeliveryQueueItem, sendErr error) error {
	log := logger.GetAppLogger()

	item.RetryCount++

	if item.RetryCount < item.MaxRetries {
		backoff := time.Duration(math.Pow(2, float64(item.RetryCount))) * time.Second
		nextRetryAt := time.Now().Add(backoff).UnixMilli()

		update := bson.M{"$set": bson.M{
			"status":      "pending",
			"retryCount":  item.RetryCount,
			"nextRetryAt": nextRetryAt,
			"updatedAt":   time.Now().UnixMilli(),
			"error":       sendErr.Error(),
		}}
		if _, updateErr := p.queueService.UpdateOne(ctx, bson.M{"_id": item.ID}, update, nil); updateErr != nil {
			log.WithError(updateErr).WithField("queueItemId", item.ID.Hex()).Error("📦 [DELIVERY] Không cập nhật được queue item để retry")
			return fmt.Errorf("failed to update queue item for retry: %w", updateErr)
		}
		return sendErr
	}

	// Hết retry
	p.recordHistory(ctx, item, "failed", sendErr.Error())

	update := bson.M{"$set": bson.M{
		"status":    "failed",
		"error":     sendErr.Error(),
		"updatedAt": time.Now().UnixMilli(),
	}}
	if _, updateErr := p.queueService.UpdateOne(ctx, bson.M{"_id": item.ID}, update, nil); updateErr != nil {
		log.WithError(updateErr).WithField("queueItemId", item.ID.Hex()).Error("📦 [DELIVERY] Không đánh dấu được queue item failed")
		return fmt.Errorf("failed to mark queue item as failed: %w", updateErr)
	}

	return fmt.Errorf("max retries exceeded: %w", sendErr)
}

// recordHistory ghi lại kết quả gửi, lỗi ghi history không chặn pipeline.
func (p *Processor) recordHistory(ctx context.Context, item *deliverymodels.DeliveryQueueItem, status, errMsg string) {
	now := time.Now().UnixMilli()
	history := deliverymodels.DeliveryHistory{
		QueueItemID:         item.ID,
		EventType:           item.EventType,
		OwnerOrganizationID: item.OwnerOrganizationID,
		ChannelType:         item.ChannelType,
		Recipient:           item.Recipient,
		Subject:             item.Subject,
		Content:             item.Content,
		Status:              status,
		Error:               errMsg,
		RetryCount:          item.RetryCount,
		CreatedAt:           now,
	}
	if status == "sent" {
		history.SentAt = &now
	}
	if _, err := p.historyService.InsertOne(ctx, history); err != nil {
		logger.GetAppLogger().WithError(err).WithField("queueItemId", item.ID.Hex()).Warn("📦 [DELIVERY] Không ghi được delivery history")
	}
}

// ProcessQueueItem gửi một queue item qua kênh tương ứng.
func (p *Processor) ProcessQueueItem(ctx context.Context, item *deliverymodels.DeliveryQueueItem) error {
	log := logger.GetAppLogger()

	var sendErr error
	switch item.ChannelType {
	case "email":
		if p.email == nil {
			sendErr = fmt.Errorf("SMTP chưa được cấu hình")
		} else {
			sendErr = p.email.Send(item.Recipient, item.Subject, item.Content)
		}
	default:
		sendErr = fmt.Errorf("channel type không được hỗ trợ: %s", item.ChannelType)
	}

	if sendErr != nil {
		log.WithError(sendErr).WithFields(map[string]interface{}{
			"queueItemId": item.ID.Hex(),
			"channelType": item.ChannelType,
			"recipient":   item.Recipient,
		}).Warn("📦 [DELIVERY] Gửi thất bại")
		return p.handleRetryOrFail(ctx, item, sendErr)
	}

	p.recordHistory(ctx, item, "sent", "")

	// Gửi xong thì xóa khỏi queue, history là nguồn tra cứu
	if err := p.queueService.DeleteOne(ctx, bson.M{"_id": item.ID}); err != nil {
		log.WithError(err).WithField("queueItemId", item.ID.Hex()).Warn("📦 [DELIVERY] Không xóa được queue item đã gửi")
	}
	return nil
}

// ProcessBatch lấy một batch từ queue và xử lý tuần tự.
func (p *Processor) ProcessBatch(ctx context.Context, limit int) (int, error) {
	queue := &Queue{queueService: p.queueService}
	items, err := queue.Dequeue(ctx, limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, item := range items {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if err := p.ProcessQueueItem(ctx, item); err == nil {
			sent++
		}
	}
	return sent, nil
}
