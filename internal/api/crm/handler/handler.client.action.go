// Package crmhdl - Handler lịch sử thao tác khách hàng (chỉ đọc qua CRUD chung).
package crmhdl

import (
	"fmt"

	basehdl "estate_crm/internal/api/base/handler"
	crmmodels "estate_crm/internal/api/crm/models"
	crmvc "estate_crm/internal/api/crm/service"
)

// ClientActionHandler đọc lịch sử thao tác qua các route CRUD chung.
type ClientActionHandler struct {
	*basehdl.BaseHandler[crmmodels.ClientAction, crmmodels.ClientAction, crmmodels.ClientAction]
}

// NewClientActionHandler tạo ClientActionHandler mới.
func NewClientActionHandler() (*ClientActionHandler, error) {
	actionService, err := crmvc.NewClientActionService()
	if err != nil {
		return nil, fmt.Errorf("tạo ClientActionService: %w", err)
	}
	return &ClientActionHandler{
		BaseHandler: basehdl.NewBaseHandler[crmmodels.ClientAction, crmmodels.ClientAction, crmmodels.ClientAction](actionService),
	}, nil
}
