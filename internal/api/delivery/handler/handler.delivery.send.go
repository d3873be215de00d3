// Package deliveryhdl chứa HTTP handler cho domain Delivery (send, history).
package deliveryhdl

import (
	"fmt"
	"time"

	basehdl "estate_crm/internal/api/base/handler"
	deliverydto "estate_crm/internal/api/delivery/dto"
	deliverymodels "estate_crm/internal/api/delivery/models"
	"estate_crm/internal/common"
	"estate_crm/internal/delivery"
	"estate_crm/internal/global"
	"estate_crm/internal/logger"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeliverySendHandler xử lý gửi notification trực tiếp qua queue.
type DeliverySendHandler struct {
	queue *delivery.Queue
}

// NewDeliverySendHandler tạo mới DeliverySendHandler
func NewDeliverySendHandler() (*DeliverySendHandler, error) {
	queue, err := delivery.NewQueue()
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery queue: %w", err)
	}
	return &DeliverySendHandler{queue: queue}, nil
}

// HandleSend nhận nội dung đã render và enqueue để delivery worker gửi.
func (h *DeliverySendHandler) HandleSend(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var req deliverydto.DeliverySendRequest
		if err := c.Bind().Body(&req); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code":    common.ErrCodeValidationFormat.Code,
				"message": fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				"status":  "error",
			})
			return nil
		}
		if err := global.Validate.Struct(&req); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code":    common.ErrCodeValidationInput.Code,
				"message": fmt.Sprintf("Dữ liệu gửi lên không hợp lệ. Chi tiết: %v", err),
				"status":  "error",
			})
			return nil
		}

		orgIDStr, _ := c.Locals("active_organization_id").(string)
		orgID, err := primitive.ObjectIDFromHex(orgIDStr)
		if err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code":    common.ErrCodeValidationInput.Code,
				"message": "Vui lòng chọn tổ chức",
				"status":  "error",
			})
			return nil
		}

		eventType := req.EventType
		if eventType == "" {
			eventType = "manual"
		}

		item, err := h.queue.EnqueueOne(c.Context(), deliverymodels.DeliveryQueueItem{
			EventType:           eventType,
			OwnerOrganizationID: orgID,
			ChannelType:         req.ChannelType,
			Recipient:           req.Recipient,
			Subject:             req.Subject,
			Content:             req.Content,
			Payload:             req.Metadata,
		})
		if err != nil {
			logger.GetAppLogger().WithError(err).Error("📦 [DELIVERY] Lỗi khi enqueue send request")
			c.Status(common.StatusInternalServerError).JSON(fiber.Map{
				"code":    common.ErrCodeDatabaseQuery.Code,
				"message": "Không thêm được vào hàng đợi gửi",
				"status":  "error",
			})
			return nil
		}

		c.Status(common.StatusOK).JSON(fiber.Map{
			"code":    common.StatusOK,
			"message": "Đã thêm vào hàng đợi gửi",
			"data": deliverydto.DeliverySendResponse{
				QueueItemID: item.ID.Hex(),
				Status:      "queued",
				QueuedAt:    time.Now().UnixMilli(),
			},
			"status": "success",
		})
		return nil
	})
}
