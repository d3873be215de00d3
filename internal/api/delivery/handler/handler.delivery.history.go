package deliveryhdl

import (
	"fmt"

	basehdl "estate_crm/internal/api/base/handler"
	deliverymodels "estate_crm/internal/api/delivery/models"
	deliverysvc "estate_crm/internal/api/delivery/service"
)

// DeliveryHistoryHandler phục vụ tra cứu lịch sử gửi qua CRUD chung (chỉ đọc).
type DeliveryHistoryHandler struct {
	*basehdl.BaseHandler[deliverymodels.DeliveryHistory, deliverymodels.DeliveryHistory, deliverymodels.DeliveryHistory]
}

// NewDeliveryHistoryHandler tạo mới DeliveryHistoryHandler
func NewDeliveryHistoryHandler() (*DeliveryHistoryHandler, error) {
	historyService, err := deliverysvc.NewDeliveryHistoryService()
	if err != nil {
		return nil, fmt.Errorf("failed to create history service: %w", err)
	}
	return &DeliveryHistoryHandler{
		BaseHandler: basehdl.NewBaseHandler[deliverymodels.DeliveryHistory, deliverymodels.DeliveryHistory, deliverymodels.DeliveryHistory](historyService),
	}, nil
}
