// Package crmhdl - Handler khách hàng: danh sách pipeline, tạo với kiểm tra
// trùng SĐT, thao tác hàng loạt, trạng thái, đánh giá, yêu thích, lịch sử.
package crmhdl

import (
	"fmt"
	"strconv"

	basehdl "estate_crm/internal/api/base/handler"
	crmdto "estate_crm/internal/api/crm/dto"
	crmmodels "estate_crm/internal/api/crm/models"
	crmvc "estate_crm/internal/api/crm/service"
	"estate_crm/internal/common"
	"estate_crm/internal/logger"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientHandler xử lý các request khách hàng. Embed BaseHandler để có sẵn
// các route CRUD chung, các route nghiệp vụ viết riêng bên dưới.
type ClientHandler struct {
	*basehdl.BaseHandler[crmmodels.Client, crmdto.ClientCreateInput, crmdto.ClientUpdateInput]
	clientService   *crmvc.ClientService
	favoriteService *crmvc.ClientFavoriteService
	actionService   *crmvc.ClientActionService
}

// NewClientHandler tạo ClientHandler mới.
func NewClientHandler() (*ClientHandler, error) {
	clientService, err := crmvc.NewClientService()
	if err != nil {
		return nil, fmt.Errorf("tạo ClientService: %w", err)
	}
	favoriteService, err := crmvc.NewClientFavoriteService()
	if err != nil {
		return nil, fmt.Errorf("tạo ClientFavoriteService: %w", err)
	}
	actionService, err := crmvc.NewClientActionService()
	if err != nil {
		return nil, fmt.Errorf("tạo ClientActionService: %w", err)
	}
	return &ClientHandler{
		BaseHandler:     basehdl.NewBaseHandler[crmmodels.Client, crmdto.ClientCreateInput, crmdto.ClientUpdateInput](clientService),
		clientService:   clientService,
		favoriteService: favoriteService,
		actionService:   actionService,
	}, nil
}

func getActiveOrganizationID(c fiber.Ctx) *primitive.ObjectID {
	orgIDStr, ok := c.Locals("active_organization_id").(string)
	if !ok || orgIDStr == "" {
		return nil
	}
	orgID, err := primitive.ObjectIDFromHex(orgIDStr)
	if err != nil {
		return nil
	}
	return &orgID
}

func getUserIDFromContext(c fiber.Ctx) *primitive.ObjectID {
	userIDStr, ok := c.Locals("user_id").(string)
	if !ok || userIDStr == "" {
		return nil
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		return nil
	}
	return &userID
}

// requestContext lấy (orgID, userID) từ context, trả lỗi chuẩn nếu thiếu.
func requestContext(c fiber.Ctx) (primitive.ObjectID, primitive.ObjectID, error) {
	orgID := getActiveOrganizationID(c)
	if orgID == nil || orgID.IsZero() {
		return primitive.NilObjectID, primitive.NilObjectID,
			common.NewError(common.ErrCodeValidationInput, "Vui lòng chọn tổ chức", common.StatusBadRequest, nil)
	}
	userID := getUserIDFromContext(c)
	if userID == nil {
		return primitive.NilObjectID, primitive.NilObjectID,
			common.NewError(common.ErrCodeAuthToken, "Chưa đăng nhập", common.StatusUnauthorized, nil)
	}
	return *orgID, *userID, nil
}

// parseClientIds chuyển danh sách id hex sang ObjectID, fail sớm nếu có id hỏng.
func parseClientIds(ids []string) ([]primitive.ObjectID, error) {
	objIds := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, common.NewError(common.ErrCodeValidationFormat, "clientIds chứa id không hợp lệ: "+id, common.StatusBadRequest, err)
		}
		objIds = append(objIds, objID)
	}
	return objIds, nil
}

// HandleList xử lý GET /clients — filter + phân trang, page đã clamp.
func (h *ClientHandler) HandleList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, userID, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var query crmdto.ClientListQuery
		if err := h.ParseRequestQuery(c, &query); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		result, err := h.clientService.List(c.Context(), &query, orgID, userID)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleCreate xử lý POST /clients — tạo khách với kiểm tra trùng SĐT trong tổ chức.
func (h *ClientHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, userID, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input crmdto.ClientCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		client, err := h.clientService.Create(c.Context(), &input, orgID, userID)
		h.HandleResponse(c, client, err)
		return nil
	})
}

// HandleBulkAssign xử lý POST /clients/bulk-assign.
func (h *ClientHandler) HandleBulkAssign(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, userID, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input crmdto.BulkAssignInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		clientIds, err := parseClientIds(input.ClientIds)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		targetUserID, err := primitive.ObjectIDFromHex(input.UserID)
		if err != nil {
			h.HandleResponse(c, nil, common.ErrNoUserSelected)
			return nil
		}
		result, err := h.clientService.BulkAssign(c.Context(), clientIds, targetUserID, orgID, userID)
		if err == nil {
			logger.LogBulkOperation("bulk_assign", input.ClientIds, c, map[string]interface{}{"target_user": input.UserID})
		}
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleBulkUnassign xử lý POST /clients/bulk-unassign.
func (h *ClientHandler) HandleBulkUnassign(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, userID, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input crmdto.BulkUnassignInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		clientIds, err := parseClientIds(input.ClientIds)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		result, err := h.clientService.BulkUnassign(c.Context(), clientIds, input.Confirm, orgID, userID)
		if err == nil {
			logger.LogBulkOperation("bulk_unassign", input.ClientIds, c, nil)
		}
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleBulkDelete xử lý POST /clients/bulk-delete. Confirm bắt buộc.
func (h *ClientHandler) HandleBulkDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, _, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		var input crmdto.BulkDeleteInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		clientIds, err := parseClientIds(input.ClientIds)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		result, err := h.clientService.BulkDelete(c.Context(), clientIds, input.Confirm, orgID)
		if err == nil {
			logger.LogBulkOperation("bulk_delete", input.ClientIds, c, nil)
		}
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleChangeStatus xử lý PUT /clients/:id/status.
func (h *ClientHandler) HandleChangeStatus(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, userID, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		clientID, err := primitive.ObjectIDFromHex(h.GetIDFromContext(c))
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Id khách không hợp lệ", common.StatusBadRequest, err))
			return nil
		}
		var input crmdto.ClientStatusInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		client, err := h.clientService.ChangeStatus(c.Context(), clientID, &input, orgID, userID)
		h.HandleResponse(c, client, err)
		return nil
	})
}

// HandleSetRating xử lý PUT /clients/:id/rating.
func (h *ClientHandler) HandleSetRating(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, userID, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		clientID, err := primitive.ObjectIDFromHex(h.GetIDFromContext(c))
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Id khách không hợp lệ", common.StatusBadRequest, err))
			return nil
		}
		var input crmdto.ClientRatingInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		client, err := h.clientService.SetRating(c.Context(), clientID, input.Rating, orgID, userID)
		h.HandleResponse(c, client, err)
		return nil
	})
}

// HandleAddComment xử lý POST /clients/:id/comments.
func (h *ClientHandler) HandleAddComment(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, userID, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		clientID, err := primitive.ObjectIDFromHex(h.GetIDFromContext(c))
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Id khách không hợp lệ", common.StatusBadRequest, err))
			return nil
		}
		var input crmdto.ClientCommentInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		client, err := h.clientService.AddComment(c.Context(), clientID, input.Text, orgID, userID)
		h.HandleResponse(c, client, err)
		return nil
	})
}

// HandleToggleFavorite xử lý POST /clients/:id/favorite.
func (h *ClientHandler) HandleToggleFavorite(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, userID, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		clientID, err := primitive.ObjectIDFromHex(h.GetIDFromContext(c))
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Id khách không hợp lệ", common.StatusBadRequest, err))
			return nil
		}
		favorited, err := h.favoriteService.Toggle(c.Context(), userID, clientID, orgID)
		h.HandleResponse(c, fiber.Map{"clientId": clientID.Hex(), "favorited": favorited}, err)
		return nil
	})
}

// HandleListFavorites xử lý GET /clients/favorites — id các khách user đã đánh dấu.
func (h *ClientHandler) HandleListFavorites(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, userID, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		ids, err := h.favoriteService.ListClientIDs(c.Context(), userID, orgID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		hexIds := make([]string, 0, len(ids))
		for _, id := range ids {
			hexIds = append(hexIds, id.Hex())
		}
		h.HandleResponse(c, hexIds, nil)
		return nil
	})
}

// HandleListActions xử lý GET /clients/:id/actions — lịch sử thao tác, mới nhất trước.
func (h *ClientHandler) HandleListActions(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, _, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		clientID, err := primitive.ObjectIDFromHex(h.GetIDFromContext(c))
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Id khách không hợp lệ", common.StatusBadRequest, err))
			return nil
		}
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		actions, err := h.actionService.FindByClient(c.Context(), clientID, orgID, limit)
		h.HandleResponse(c, actions, err)
		return nil
	})
}

// HandleClearNextAction xử lý DELETE /clients/:id/next-action — xóa lịch hẹn
// sau khi đã xử lý xong.
func (h *ClientHandler) HandleClearNextAction(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		orgID, userID, err := requestContext(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		clientID, err := primitive.ObjectIDFromHex(h.GetIDFromContext(c))
		if err != nil {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Id khách không hợp lệ", common.StatusBadRequest, err))
			return nil
		}
		if err := h.clientService.ClearNextAction(c.Context(), clientID, orgID); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.actionService.Log(c.Context(), clientID, crmmodels.ClientActionNote, "", "", "Đã xử lý lịch hẹn", orgID, userID)
		h.HandleResponse(c, fiber.Map{"clientId": clientID.Hex()}, nil)
		return nil
	})
}
