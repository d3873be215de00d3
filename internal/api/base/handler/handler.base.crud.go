package basehdl

// Các thao tác CRUD chung của BaseHandler. Mỗi route CRUD generic trong router
// map thẳng vào một method ở đây; mọi thao tác trên model có OwnerOrganizationID
// đều được scope theo tổ chức của active role.

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	authsvc "estate_crm/internal/api/auth/service"
	basesvc "estate_crm/internal/api/base/service"
	"estate_crm/internal/common"
	"estate_crm/internal/logger"
	"estate_crm/internal/utility"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// userContext trả về context của request, gắn kèm userID nếu middleware đã
// xác thực. Service cần userID trong context để kiểm tra quyền admin khi
// đụng tới dữ liệu system.
func userContext(c fiber.Ctx) context.Context {
	var ctx context.Context = c.Context()
	if userIDStr, ok := c.Locals("user_id").(string); ok && userIDStr != "" {
		if userID, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
			ctx = authsvc.SetUserIDToContext(ctx, userID)
		}
	}
	return ctx
}

// objectIDFromParams đọc và validate param "id" trên URI.
func (h *BaseHandler[T, CreateInput, UpdateInput]) objectIDFromParams(c fiber.Ctx) (primitive.ObjectID, error) {
	id := c.Params("id")
	if id == "" {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			"ID không được để trống trong URL params",
			common.StatusBadRequest,
			nil,
		)
	}

	if !primitive.IsValidObjectID(id) {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("ID '%s' không đúng định dạng MongoDB ObjectID (phải là chuỗi hex 24 ký tự)", id),
			common.StatusBadRequest,
			nil,
		)
	}

	return utility.String2ObjectID(id), nil
}

// parseCreateBody parse body thành CreateInput, validate rồi transform sang Model.
func (h *BaseHandler[T, CreateInput, UpdateInput]) parseCreateBody(c fiber.Ctx) (*T, error) {
	var input CreateInput
	if err := h.ParseRequestBody(c, &input); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON hoặc không khớp với cấu trúc yêu cầu. Chi tiết: %v", err),
			common.StatusBadRequest,
			err,
		)
	}

	if err := h.validateInput(&input); err != nil {
		return nil, err
	}

	model, err := h.transformCreateInputToModel(&input)
	if err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Lỗi transform dữ liệu: %v", err),
			common.StatusBadRequest,
			err,
		)
	}
	return model, nil
}

// parseUpdateBody parse body thành UpdateInput, validate rồi transform sang Model.
func (h *BaseHandler[T, CreateInput, UpdateInput]) parseUpdateBody(c fiber.Ctx) (*T, error) {
	var input UpdateInput
	if err := h.ParseRequestBody(c, &input); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Dữ liệu cập nhật không đúng định dạng JSON hoặc không khớp với cấu trúc yêu cầu. Chi tiết: %v", err),
			common.StatusBadRequest,
			err,
		)
	}

	if err := h.validateInput(&input); err != nil {
		return nil, err
	}

	model, err := h.transformUpdateInputToModel(&input)
	if err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Lỗi transform dữ liệu: %v", err),
			common.StatusBadRequest,
			err,
		)
	}
	return model, nil
}

// resolveOwnerOrg xử lý ownerOrganizationId khi ghi dữ liệu:
// body gửi kèm org thì phải có quyền với org đó, không gửi thì lấy org active từ context.
func (h *BaseHandler[T, CreateInput, UpdateInput]) resolveOwnerOrg(c fiber.Ctx, model interface{}) error {
	ownerOrgID := h.getOwnerOrganizationIDFromModel(model)
	if ownerOrgID != nil && !ownerOrgID.IsZero() {
		return h.ValidateUserHasAccessToOrg(c, *ownerOrgID)
	}

	activeOrgID := h.getActiveOrganizationID(c)
	if activeOrgID != nil && !activeOrgID.IsZero() {
		h.setOrganizationID(model, *activeOrgID)
	}
	return nil
}

// scopedFilter parse filter từ query string rồi scope theo tổ chức được phép.
func (h *BaseHandler[T, CreateInput, UpdateInput]) scopedFilter(c fiber.Ctx) (map[string]interface{}, error) {
	filter, err := h.processFilter(c)
	if err != nil {
		return nil, err
	}
	return h.applyOrganizationFilter(c, filter), nil
}

// InsertOne tạo mới một document từ request body (DTO CreateInput).
func (h *BaseHandler[T, CreateInput, UpdateInput]) InsertOne(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		model, err := h.parseCreateBody(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		if err := h.resolveOwnerOrg(c, model); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.BaseService.InsertOne(userContext(c), *model)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// InsertMany tạo nhiều document từ một mảng JSON trong request body.
func (h *BaseHandler[T, CreateInput, UpdateInput]) InsertMany(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var inputs []T
		if err := h.ParseRequestBody(c, &inputs); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên phải là một mảng JSON và các phần tử phải khớp với cấu trúc yêu cầu. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		for i := range inputs {
			if err := h.resolveOwnerOrg(c, &inputs[i]); err != nil {
				h.HandleResponse(c, nil, err)
				return nil
			}
		}

		data, err := h.BaseService.InsertMany(c.Context(), inputs)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// FindOne tìm một document theo filter và options trên query string (JSON).
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindOne(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.scopedFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		options, err := h.processMongoOptions(c, true)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.BaseService.FindOne(c.Context(), filter, options.(*mongoopts.FindOneOptions))
		h.HandleResponse(c, data, err)
		return nil
	})
}

// FindOneById tìm một document theo ID trên URI.
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindOneById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.objectIDFromParams(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		if err := h.validateOrganizationAccess(c, c.Params("id")); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.BaseService.FindOneById(c.Context(), id)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// FindManyByIds tìm nhiều document theo danh sách ID (mảng JSON trên query string).
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindManyByIds(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var ids []string
		idsStr := c.Query("ids", "[]")
		if err := json.Unmarshal([]byte(idsStr), &ids); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Danh sách ID phải là một mảng JSON. Giá trị nhận được: %s. Chi tiết lỗi: %v", idsStr, err),
				common.StatusBadRequest,
				nil,
			))
			return nil
		}

		objectIds := make([]primitive.ObjectID, len(ids))
		for i, id := range ids {
			if !primitive.IsValidObjectID(id) {
				h.HandleResponse(c, nil, common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("ID '%s' tại vị trí %d không đúng định dạng MongoDB ObjectID (phải là chuỗi hex 24 ký tự)", id, i),
					common.StatusBadRequest,
					nil,
				))
				return nil
			}
			objectIds[i] = utility.String2ObjectID(id)
		}

		data, err := h.BaseService.FindManyByIds(c.Context(), objectIds)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// FindWithPagination tìm nhiều document với phân trang.
// Query params: filter (JSON), options (JSON: projection/sort), page, limit.
// Skip/limit do service tính từ page/limit, không đọc từ options.
func (h *BaseHandler[T, CreateInput, UpdateInput]) FindWithPagination(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.scopedFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		options, err := h.processMongoOptions(c, false)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		page, err := strconv.ParseInt(c.Query("page", "1"), 10, 64)
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.ParseInt(c.Query("limit", "10"), 10, 64)
		if err != nil || limit <= 0 {
			limit = 10
		}

		data, err := h.BaseService.FindWithPagination(c.Context(), filter, page, limit, options.(*mongoopts.FindOptions))
		h.HandleResponse(c, data, err)
		return nil
	})
}

// Find tìm nhiều document theo filter và options trên query string (JSON).
// Options hỗ trợ projection/sort/limit/skip.
func (h *BaseHandler[T, CreateInput, UpdateInput]) Find(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.scopedFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		options, err := h.processMongoOptions(c, false)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.BaseService.Find(c.Context(), filter, options.(*mongoopts.FindOptions))
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		// Trả về mảng rỗng thay vì null khi không có kết quả
		if data == nil {
			data = []T{}
		}

		h.HandleResponse(c, data, nil)
		return nil
	})
}

// UpdateOne cập nhật một document theo filter (query string), dữ liệu trong body.
// Chỉ các field non-zero trong body được ghi, các field khác giữ nguyên.
func (h *BaseHandler[T, CreateInput, UpdateInput]) UpdateOne(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.scopedFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		model, err := h.parseUpdateBody(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		// Body đổi ownerOrganizationId thì phải có quyền với organization mới
		ownerOrgID := h.getOwnerOrganizationIDFromModel(model)
		if ownerOrgID != nil && !ownerOrgID.IsZero() {
			if err := h.ValidateUserHasAccessToOrg(c, *ownerOrgID); err != nil {
				h.HandleResponse(c, nil, err)
				return nil
			}
		}

		update, err := updateDataFromModel(model)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.BaseService.UpdateOne(c.Context(), filter, update, nil)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// UpdateById cập nhật một document theo ID trên URI, dữ liệu trong body.
// Chỉ các field non-zero trong body được ghi, các field khác giữ nguyên.
func (h *BaseHandler[T, CreateInput, UpdateInput]) UpdateById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.objectIDFromParams(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		// Phải có quyền với document hiện tại trước khi đụng tới nó
		if err := h.validateOrganizationAccess(c, c.Params("id")); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		model, err := h.parseUpdateBody(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		if err := h.resolveOwnerOrg(c, model); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		update, err := updateDataFromModel(model)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.BaseService.UpdateById(userContext(c), id, update)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// DeleteOne xóa một document theo filter trên query string.
func (h *BaseHandler[T, CreateInput, UpdateInput]) DeleteOne(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.scopedFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.BaseService.DeleteOne(c.Context(), filter)
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// DeleteById xóa một document theo ID trên URI.
func (h *BaseHandler[T, CreateInput, UpdateInput]) DeleteById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.objectIDFromParams(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.BaseService.DeleteById(userContext(c), id)
		if err == nil {
			logger.LogCRUD("delete", c.Path(), c.Params("id"), c, nil)
		}
		h.HandleResponse(c, nil, err)
		return nil
	})
}

// CountDocuments đếm số document theo filter trên query string.
func (h *BaseHandler[T, CreateInput, UpdateInput]) CountDocuments(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.scopedFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		count, err := h.BaseService.CountDocuments(c.Context(), filter)
		h.HandleResponse(c, count, err)
		return nil
	})
}

// Distinct lấy danh sách giá trị duy nhất của một trường (tên trường trên URI).
func (h *BaseHandler[T, CreateInput, UpdateInput]) Distinct(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		field := c.Params("field")
		if field == "" {
			h.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Tên trường không hợp lệ", common.StatusBadRequest, nil))
			return nil
		}

		filter, err := h.scopedFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.BaseService.Distinct(c.Context(), field, filter)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// Upsert tạo mới hoặc cập nhật một document theo filter trên query string.
// Body dùng DTO CreateInput + transform như InsertOne. Không match filter thì tạo mới.
func (h *BaseHandler[T, CreateInput, UpdateInput]) Upsert(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.scopedFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		model, err := h.parseCreateBody(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		if err := h.resolveOwnerOrg(c, model); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		// Điền filter từ model khi thiếu (vd: upsert cấu hình theo ownerOrganizationId + key)
		if h.hasOrganizationIDField() && filter["ownerOrganizationId"] == nil {
			oid := h.getOwnerOrganizationIDFromModel(*model)
			if oid != nil && !oid.IsZero() {
				filter["ownerOrganizationId"] = *oid
			}
		}
		if filter["key"] == nil {
			if key := getModelStringField(model, "Key"); key != "" {
				filter["key"] = key
			}
		}

		update, err := updateDataFromModel(model)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.BaseService.Upsert(c.Context(), filter, update)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// DocumentExists kiểm tra document match filter có tồn tại không.
func (h *BaseHandler[T, CreateInput, UpdateInput]) DocumentExists(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		filter, err := h.scopedFilter(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		exists, err := h.BaseService.DocumentExists(c.Context(), filter)
		h.HandleResponse(c, exists, err)
		return nil
	})
}

// updateDataFromModel gom các field non-zero của model vào $set (partial update).
// Dùng utility.ToMap để chuyển model sang map trước khi set.
func updateDataFromModel(model interface{}) (*basesvc.UpdateData, error) {
	modelMap, err := utility.ToMap(model)
	if err != nil {
		return nil, common.NewError(
			common.ErrCodeInternalServer,
			fmt.Sprintf("Lỗi convert model sang map (extract): %v", err),
			common.StatusInternalServerError,
			err,
		)
	}
	updateData := &basesvc.UpdateData{Set: make(map[string]interface{})}
	for k, v := range modelMap {
		if rv := reflect.ValueOf(v); rv.IsValid() && !rv.IsZero() {
			updateData.Set[k] = v
		}
	}
	return updateData, nil
}

// getModelStringField lấy giá trị string của field name từ model (dùng reflection).
// Trả về rỗng nếu không có field hoặc không phải string.
func getModelStringField(model interface{}, fieldName string) string {
	if model == nil {
		return ""
	}
	val := reflect.ValueOf(model)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return ""
	}
	f := val.FieldByName(fieldName)
	if !f.IsValid() || f.Kind() != reflect.String {
		return ""
	}
	return f.String()
}
