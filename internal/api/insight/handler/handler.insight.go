// Package insighthdl - Handler insight khách hàng: xem và tính lại đánh giá.
package insighthdl

import (
	"fmt"

	basehdl "estate_crm/internal/api/base/handler"
	insightmodels "estate_crm/internal/api/insight/models"
	insightsvc "estate_crm/internal/api/insight/service"
	"estate_crm/internal/common"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InsightHandler xử lý request xem/tính lại insight của một khách.
type InsightHandler struct {
	*basehdl.BaseHandler[insightmodels.ClientInsight, insightmodels.ClientInsight, insightmodels.ClientInsight]
	insightService *insightsvc.InsightService
}

// NewInsightHandler tạo InsightHandler mới.
func NewInsightHandler() (*InsightHandler, error) {
	insightService, err := insightsvc.NewInsightService()
	if err != nil {
		return nil, fmt.Errorf("tạo InsightService: %w", err)
	}
	return &InsightHandler{
		BaseHandler:    basehdl.NewBaseHandler[insightmodels.ClientInsight, insightmodels.ClientInsight, insightmodels.ClientInsight](insightService),
		insightService: insightService,
	}, nil
}

func getActiveOrganizationID(c fiber.Ctx) (primitive.ObjectID, error) {
	orgIDStr, ok := c.Locals("active_organization_id").(string)
	if !ok || orgIDStr == "" {
		return primitive.NilObjectID, common.NewError(common.ErrCodeValidationInput, "Vui lòng chọn tổ chức", common.StatusBadRequest, nil)
	}
	orgID, err := primitive.ObjectIDFromHex(orgIDStr)
	if err != nil {
		return primitive.NilObjectID, common.ErrInvalidFormat
	}
	return orgID, nil
}

// HandleGetClientInsight GET /clients/:id/insights - insight hiện có của khách.
func (h *InsightHandler) HandleGetClientInsight(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, err := getActiveOrganizationID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		clientID, err := primitive.ObjectIDFromHex(h.GetIDFromContext(c))
		if err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		insight, err := h.insightService.Get(c.Context(), clientID, orgID)
		h.HandleResponse(c, insight, err)
		return nil
	})
}

// HandleRefreshClientInsight POST /clients/:id/insights/refresh - tính lại insight.
func (h *InsightHandler) HandleRefreshClientInsight(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, err := getActiveOrganizationID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		clientID, err := primitive.ObjectIDFromHex(h.GetIDFromContext(c))
		if err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		insight, err := h.insightService.Refresh(c.Context(), clientID, orgID)
		h.HandleResponse(c, insight, err)
		return nil
	})
}
