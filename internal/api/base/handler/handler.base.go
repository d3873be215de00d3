package basehdl

// Package basehdl chứa BaseHandler generic: lớp nền cho mọi handler HTTP,
// gom parse/validate request, phân quyền theo tổ chức và các thao tác CRUD chung.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	authsvc "estate_crm/internal/api/auth/service"
	basesvc "estate_crm/internal/api/base/service"
	"estate_crm/internal/common"
	"estate_crm/internal/global"
	"estate_crm/internal/utility"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// FilterOptions giới hạn filter/options mà client được gửi qua query string.
type FilterOptions struct {
	DeniedFields     []string // Field bị cấm xuất hiện trong filter/projection/sort
	AllowedOperators []string // Operator MongoDB được phép trong filter
	MaxFields        int      // Số field tối đa trong một filter
}

// Mặc định dùng khi handler không cấu hình riêng.
var (
	defaultDeniedFields = []string{"password", "token", "secret", "key", "hash"}

	defaultAllowedOperators = []string{"$eq", "$gt", "$gte", "$lt", "$lte", "$in", "$nin", "$exists"}
)

const defaultMaxFilterFields = 10

// BaseHandler là handler CRUD generic. Mỗi domain handler embed struct này
// với bộ ba type: Model, DTO tạo mới và DTO cập nhật.
type BaseHandler[T any, CreateInput any, UpdateInput any] struct {
	BaseService   basesvc.BaseServiceMongo[T]
	filterOptions FilterOptions
}

// NewBaseHandler tạo BaseHandler với chính sách filter mặc định.
func NewBaseHandler[T any, CreateInput any, UpdateInput any](baseService basesvc.BaseServiceMongo[T]) *BaseHandler[T, CreateInput, UpdateInput] {
	return &BaseHandler[T, CreateInput, UpdateInput]{
		BaseService: baseService,
		filterOptions: FilterOptions{
			DeniedFields:     defaultDeniedFields,
			AllowedOperators: defaultAllowedOperators,
			MaxFields:        defaultMaxFilterFields,
		},
	}
}

// SetFilterOptions ghi đè chính sách filter mặc định của handler.
func (h *BaseHandler[T, CreateInput, UpdateInput]) SetFilterOptions(opts FilterOptions) {
	h.filterOptions = opts
}

// ====================================
// PHÂN QUYỀN THEO TỔ CHỨC
// ====================================
// Model có field OwnerOrganizationID thì dữ liệu thuộc về một tổ chức:
// mọi thao tác đọc/ghi qua BaseHandler được scope theo các tổ chức mà
// active role của user được phép (gồm cả tổ chức được share).

// hasOrganizationIDField kiểm tra model T có field OwnerOrganizationID không.
func (h *BaseHandler[T, CreateInput, UpdateInput]) hasOrganizationIDField() bool {
	var zero T
	val := reflect.ValueOf(zero)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return false
	}
	return val.FieldByName("OwnerOrganizationID").IsValid()
}

// getActiveOrganizationID đọc tổ chức đang active từ context (middleware đã set).
func (h *BaseHandler[T, CreateInput, UpdateInput]) getActiveOrganizationID(c fiber.Ctx) *primitive.ObjectID {
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

// getPermissionNameFromRoute đọc permission name của route từ context (middleware đã set).
func (h *BaseHandler[T, CreateInput, UpdateInput]) getPermissionNameFromRoute(c fiber.Ctx) string {
	if permissionName, ok := c.Locals("permission_name").(string); ok && permissionName != "" {
		return permissionName
	}
	return ""
}

// allowedOrgIDsFromContext trả về danh sách tổ chức mà active role được phép
// với permission của route hiện tại. Lỗi khi context thiếu role hợp lệ.
func (h *BaseHandler[T, CreateInput, UpdateInput]) allowedOrgIDsFromContext(c fiber.Ctx) ([]primitive.ObjectID, error) {
	activeRoleIDStr, ok := c.Locals("active_role_id").(string)
	if !ok || activeRoleIDStr == "" {
		return nil, common.NewError(common.ErrCodeAuthRole, "Không có role context", common.StatusUnauthorized, nil)
	}
	activeRoleID, err := primitive.ObjectIDFromHex(activeRoleIDStr)
	if err != nil {
		return nil, common.NewError(common.ErrCodeAuthRole, "Role ID không hợp lệ", common.StatusUnauthorized, err)
	}

	permissionName := h.getPermissionNameFromRoute(c)
	return authsvc.GetAllowedOrganizationIDsFromRole(c.Context(), activeRoleID, permissionName)
}

// setOrganizationID gán ownerOrganizationId vào model qua reflection.
// Chỉ gán khi model có field OwnerOrganizationID và field đang zero;
// giá trị hợp lệ từ request body được giữ nguyên, không override.
// Không đụng tới field OrganizationID (nghiệp vụ), field đó do DTO/service set.
func (h *BaseHandler[T, CreateInput, UpdateInput]) setOrganizationID(model interface{}, orgID primitive.ObjectID) {
	if !h.hasOrganizationIDField() || orgID.IsZero() {
		return
	}

	val := reflect.ValueOf(model)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	field := val.FieldByName("OwnerOrganizationID")
	if !field.IsValid() || !field.CanSet() {
		return
	}

	if field.Kind() == reflect.Ptr {
		if !field.IsNil() {
			if current := field.Interface().(*primitive.ObjectID); current != nil && !current.IsZero() {
				return
			}
		}
		field.Set(reflect.ValueOf(&orgID))
		return
	}

	if current := field.Interface().(primitive.ObjectID); !current.IsZero() {
		return
	}
	field.Set(reflect.ValueOf(orgID))
}

// getOwnerOrganizationIDFromModel đọc ownerOrganizationId từ model qua reflection.
// Hỗ trợ cả primitive.ObjectID và *primitive.ObjectID; zero ObjectID coi như
// không có chủ sở hữu và trả về nil.
func (h *BaseHandler[T, CreateInput, UpdateInput]) getOwnerOrganizationIDFromModel(model interface{}) *primitive.ObjectID {
	if !h.hasOrganizationIDField() {
		return nil
	}

	val := reflect.ValueOf(model)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	field := val.FieldByName("OwnerOrganizationID")
	if !field.IsValid() {
		return nil
	}

	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return nil
		}
		orgID := field.Interface().(*primitive.ObjectID)
		if orgID != nil && !orgID.IsZero() {
			return orgID
		}
		return nil
	}

	orgID := field.Interface().(primitive.ObjectID)
	if orgID.IsZero() {
		return nil
	}
	return &orgID
}

// ValidateUserHasAccessToOrg kiểm tra active role có quyền với tổ chức orgID không.
// Dùng khi create/update gửi kèm ownerOrganizationId trong request body.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ValidateUserHasAccessToOrg(c fiber.Ctx, orgID primitive.ObjectID) error {
	allowedOrgIDs, err := h.allowedOrgIDsFromContext(c)
	if err != nil {
		return err
	}

	for _, allowedOrgID := range allowedOrgIDs {
		if allowedOrgID == orgID {
			return nil
		}
	}

	return common.NewError(
		common.ErrCodeAuthRole,
		"Không có quyền với organization này",
		common.StatusForbidden,
		nil,
	)
}

// applyOrganizationFilter scope baseFilter theo các tổ chức được phép,
// gồm cả tổ chức được share với tổ chức của user.
// Model không có OwnerOrganizationID, hoặc context không có role, thì giữ nguyên filter.
func (h *BaseHandler[T, CreateInput, UpdateInput]) applyOrganizationFilter(c fiber.Ctx, baseFilter bson.M) bson.M {
	if !h.hasOrganizationIDField() {
		return baseFilter
	}

	allowedOrgIDs, err := h.allowedOrgIDsFromContext(c)
	if err != nil || len(allowedOrgIDs) == 0 {
		return baseFilter
	}

	permissionName := h.getPermissionNameFromRoute(c)
	sharedOrgIDs, err := authsvc.GetSharedOrganizationIDs(c.Context(), allowedOrgIDs, permissionName)
	if err == nil && len(sharedOrgIDs) > 0 {
		seen := make(map[primitive.ObjectID]bool, len(allowedOrgIDs)+len(sharedOrgIDs))
		merged := make([]primitive.ObjectID, 0, len(allowedOrgIDs)+len(sharedOrgIDs))
		for _, orgID := range allowedOrgIDs {
			if !seen[orgID] {
				seen[orgID] = true
				merged = append(merged, orgID)
			}
		}
		for _, orgID := range sharedOrgIDs {
			if !seen[orgID] {
				seen[orgID] = true
				merged = append(merged, orgID)
			}
		}
		allowedOrgIDs = merged
	}

	orgFilter := bson.M{"ownerOrganizationId": bson.M{"$in": allowedOrgIDs}}
	if len(baseFilter) == 0 {
		return orgFilter
	}

	return bson.M{
		"$and": []bson.M{
			baseFilter,
			orgFilter,
		},
	}
}

// validateOrganizationAccess kiểm tra document (theo id trên URI) có thuộc
// tổ chức mà user được phép không. Model không có OwnerOrganizationID,
// hoặc document không gắn tổ chức, thì cho qua.
func (h *BaseHandler[T, CreateInput, UpdateInput]) validateOrganizationAccess(c fiber.Ctx, documentID string) error {
	if !h.hasOrganizationIDField() {
		return nil
	}

	id, err := primitive.ObjectIDFromHex(documentID)
	if err != nil {
		return common.NewError(common.ErrCodeValidationInput, "ID không hợp lệ", common.StatusBadRequest, err)
	}

	doc, err := h.BaseService.FindOneById(c.Context(), id)
	if err != nil {
		return err
	}

	docOrgID := h.getOwnerOrganizationIDFromModel(doc)
	if docOrgID == nil {
		return nil
	}

	allowedOrgIDs, err := h.allowedOrgIDsFromContext(c)
	if err != nil {
		return err
	}

	for _, allowedOrgID := range allowedOrgIDs {
		if allowedOrgID == *docOrgID {
			return nil
		}
	}

	return common.NewError(common.ErrCodeAuthRole, "Không có quyền truy cập", common.StatusForbidden, nil)
}

// ====================================
// PARSE VÀ VALIDATE REQUEST
// ====================================

// validateInput chạy validator toàn cục rồi kiểm tra thêm các struct tag
// maxLength (string) và min/max (số) trên input.
func (h *BaseHandler[T, CreateInput, UpdateInput]) validateInput(input interface{}) error {
	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err)
	}

	val := reflect.ValueOf(input)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if field.Kind() == reflect.String {
			if maxTag := fieldType.Tag.Get("maxLength"); maxTag != "" {
				maxLen, err := strconv.Atoi(maxTag)
				if err == nil && len(field.String()) > maxLen {
					return common.NewError(
						common.ErrCodeValidationInput,
						fmt.Sprintf("Trường %s vượt quá độ dài cho phép (%d ký tự)", fieldType.Name, maxLen),
						common.StatusBadRequest,
						nil,
					)
				}
			}
		}

		if field.Kind() == reflect.Int || field.Kind() == reflect.Int64 {
			if minTag := fieldType.Tag.Get("min"); minTag != "" {
				min, err := strconv.ParseInt(minTag, 10, 64)
				if err == nil && field.Int() < min {
					return common.NewError(
						common.ErrCodeValidationInput,
						fmt.Sprintf("Trường %s phải lớn hơn hoặc bằng %d", fieldType.Name, min),
						common.StatusBadRequest,
						nil,
					)
				}
			}
			if maxTag := fieldType.Tag.Get("max"); maxTag != "" {
				max, err := strconv.ParseInt(maxTag, 10, 64)
				if err == nil && field.Int() > max {
					return common.NewError(
						common.ErrCodeValidationInput,
						fmt.Sprintf("Trường %s phải nhỏ hơn hoặc bằng %d", fieldType.Name, max),
						common.StatusBadRequest,
						nil,
					)
				}
			}
		}
	}

	return nil
}

// ParseRequestBody parse JSON body vào input rồi validate.
// Decoder dùng UseNumber để không mất precision với số lớn.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseRequestBody(c fiber.Ctx, input interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err)
	}

	return h.validateInput(input)
}

// ParseRequestQuery parse tham số query "query" (JSON) vào input rồi validate.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseRequestQuery(c fiber.Ctx, input interface{}) error {
	query := c.Query("query", "")

	decoder := json.NewDecoder(bytes.NewReader([]byte(query)))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err)
	}

	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err)
	}

	return nil
}

// ParseRequestParams bind URI params vào input rồi validate.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseRequestParams(c fiber.Ctx, input interface{}) error {
	if err := c.Bind().URI(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err)
	}

	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err)
	}

	return nil
}

// ParsePagination đọc page/limit từ query string, giá trị không hợp lệ về mặc định (1/10).
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParsePagination(c fiber.Ctx) (int64, int64) {
	page := utility.P2Int64(c.Query("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit := utility.P2Int64(c.Query("limit", "10"))
	if limit <= 0 {
		limit = 10
	}

	return page, limit
}

// GetIDFromContext đọc param "id" từ URI.
func (h *BaseHandler[T, CreateInput, UpdateInput]) GetIDFromContext(c fiber.Ctx) string {
	return c.Params("id")
}

// ====================================
// FILTER VÀ OPTIONS TỪ QUERY STRING
// ====================================

// processFilter parse tham số "filter" (JSON), normalize ObjectId rồi validate
// theo chính sách của handler.
func (h *BaseHandler[T, CreateInput, UpdateInput]) processFilter(c fiber.Ctx) (map[string]interface{}, error) {
	var filter map[string]interface{}

	filterStr := c.Query("filter", "{}")
	if err := json.Unmarshal([]byte(filterStr), &filter); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Filter không đúng định dạng JSON. Chi tiết lỗi: %v. Giá trị filter nhận được: %s", err, filterStr),
			common.StatusBadRequest,
			err,
		)
	}

	filter = h.normalizeFilter(filter)

	if err := h.validateFilter(filter); err != nil {
		return nil, err
	}

	return filter, nil
}

// normalizeFilter đổi các string dạng ObjectId trong filter thành primitive.ObjectID.
// Field được coi là ID khi tên kết thúc bằng "id" (không phân biệt hoa thường).
func (h *BaseHandler[T, CreateInput, UpdateInput]) normalizeFilter(filter map[string]interface{}) map[string]interface{} {
	if filter == nil {
		return filter
	}

	normalized := make(map[string]interface{})
	for field, value := range filter {
		fieldLower := strings.ToLower(field)
		isIDField := strings.HasSuffix(fieldLower, "id") && len(fieldLower) > 2

		normalized[field] = h.normalizeFilterValue(value, isIDField)
	}

	return normalized
}

// normalizeFilterValue đổi một giá trị filter, đệ quy qua mảng và map operator.
// Hỗ trợ cả Extended JSON {"$oid": "..."}.
func (h *BaseHandler[T, CreateInput, UpdateInput]) normalizeFilterValue(value interface{}, isIDField bool) interface{} {
	if value == nil {
		return value
	}

	if mapValue, ok := value.(map[string]interface{}); ok {
		if oidValue, hasOid := mapValue["$oid"]; hasOid {
			if oidStr, ok := oidValue.(string); ok && primitive.IsValidObjectID(oidStr) {
				if objID, err := primitive.ObjectIDFromHex(oidStr); err == nil {
					return objID
				}
			}
			// $oid không hợp lệ thì giữ nguyên
			return value
		}
	}

	if strValue, ok := value.(string); ok && isIDField {
		if primitive.IsValidObjectID(strValue) {
			if objID, err := primitive.ObjectIDFromHex(strValue); err == nil {
				return objID
			}
		}
		return strValue
	}

	if arrValue, ok := value.([]interface{}); ok {
		normalizedArr := make([]interface{}, len(arrValue))
		for i, item := range arrValue {
			normalizedArr[i] = h.normalizeFilterValue(item, isIDField)
		}
		return normalizedArr
	}

	if mapValue, ok := value.(map[string]interface{}); ok {
		normalizedMap := make(map[string]interface{})
		for key, val := range mapValue {
			// $in/$nin trên ID field: đổi từng phần tử string thành ObjectID
			if (key == "$in" || key == "$nin") && isIDField {
				if arrVal, ok := val.([]interface{}); ok {
					normalizedArr := make([]interface{}, len(arrVal))
					for i, item := range arrVal {
						normalizedArr[i] = item
						if strItem, ok := item.(string); ok && primitive.IsValidObjectID(strItem) {
							if objID, err := primitive.ObjectIDFromHex(strItem); err == nil {
								normalizedArr[i] = objID
							}
						}
					}
					normalizedMap[key] = normalizedArr
				} else {
					normalizedMap[key] = val
				}
				continue
			}
			normalizedMap[key] = h.normalizeFilterValue(val, isIDField)
		}
		return normalizedMap
	}

	return value
}

// validateFilter áp chính sách filter: số field tối đa, field bị cấm, operator được phép.
func (h *BaseHandler[T, CreateInput, UpdateInput]) validateFilter(filter map[string]interface{}) error {
	deniedFields := h.filterOptions.DeniedFields
	if len(deniedFields) == 0 {
		deniedFields = defaultDeniedFields
	}

	allowedOperators := h.filterOptions.AllowedOperators
	if len(allowedOperators) == 0 {
		allowedOperators = defaultAllowedOperators
	}

	maxFields := h.filterOptions.MaxFields
	if maxFields == 0 {
		maxFields = defaultMaxFilterFields
	}

	if len(filter) > maxFields {
		return common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Filter vượt quá số lượng trường cho phép. Tối đa %d trường, hiện tại có %d trường. Vui lòng giảm số lượng trường trong filter.", maxFields, len(filter)),
			common.StatusBadRequest,
			nil,
		)
	}

	for field, value := range filter {
		if utility.Contains(deniedFields, field) {
			return common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Trường '%s' không được phép sử dụng trong filter vì lý do bảo mật. Vui lòng sử dụng các trường khác.", field),
				common.StatusBadRequest,
				nil,
			)
		}

		if mapValue, ok := value.(map[string]interface{}); ok {
			for op := range mapValue {
				if strings.HasPrefix(op, "$") && !utility.Contains(allowedOperators, op) {
					return common.NewError(
						common.ErrCodeValidationFormat,
						fmt.Sprintf("Toán tử MongoDB '%s' không được phép sử dụng. Các toán tử được phép: %v", op, allowedOperators),
						common.StatusBadRequest,
						nil,
					)
				}
			}
		}
	}

	return nil
}

// processMongoOptions parse tham số "options" (JSON: projection/sort/limit/skip)
// và trả về *options.FindOneOptions hoặc *options.FindOptions theo isFindOne.
// Thứ tự các key trong sort được giữ nguyên như JSON gốc (map Go không giữ thứ tự).
func (h *BaseHandler[T, CreateInput, UpdateInput]) processMongoOptions(c fiber.Ctx, isFindOne bool) (interface{}, error) {
	var rawOptions map[string]interface{}

	optionsStr := c.Query("options", "{}")
	if err := json.Unmarshal([]byte(optionsStr), &rawOptions); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Options không đúng định dạng JSON. Chi tiết lỗi: %v. Giá trị options nhận được: %s", err, optionsStr),
			common.StatusBadRequest,
			err,
		)
	}

	if err := h.validateMongoOptions(rawOptions); err != nil {
		return nil, err
	}

	var sortBson bson.D
	if sortMap, ok := rawOptions["sort"].(map[string]interface{}); ok {
		sortBson = parseSortPreservingOrder(sortMap, optionsStr)
	}

	if isFindOne {
		opts := mongoopts.FindOne()
		if projection, ok := rawOptions["projection"].(map[string]interface{}); ok {
			opts.SetProjection(projection)
		}
		if sortBson != nil {
			opts.SetSort(sortBson)
		}
		return opts, nil
	}

	opts := mongoopts.Find()
	if projection, ok := rawOptions["projection"].(map[string]interface{}); ok {
		opts.SetProjection(projection)
	}
	if sortBson != nil {
		opts.SetSort(sortBson)
	}
	if limit, ok := rawOptions["limit"].(float64); ok {
		opts.SetLimit(int64(limit))
	}
	if skip, ok := rawOptions["skip"].(float64); ok {
		opts.SetSkip(int64(skip))
	}
	return opts, nil
}

// parseSortPreservingOrder build bson.D cho sort, giữ nguyên thứ tự key
// trong JSON gốc bằng cách đọc lại token stream. Parse fail thì fallback
// về duyệt map (thứ tự không đảm bảo).
func parseSortPreservingOrder(sortMap map[string]interface{}, optionsJSON string) bson.D {
	fallback := func() bson.D {
		sortBson := bson.D{}
		for field, value := range sortMap {
			if v, ok := sortDirection(value); ok {
				sortBson = append(sortBson, bson.E{Key: field, Value: v})
			}
		}
		return sortBson
	}

	var tempOptions map[string]json.RawMessage
	if err := json.Unmarshal([]byte(optionsJSON), &tempOptions); err != nil {
		return fallback()
	}

	sortRaw, ok := tempOptions["sort"]
	if !ok {
		return bson.D{}
	}

	decoder := json.NewDecoder(bytes.NewReader(sortRaw))
	decoder.UseNumber()

	token, err := decoder.Token()
	if err != nil || token != json.Delim('{') {
		return fallback()
	}

	sortBson := bson.D{}
	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			break
		}
		field, ok := keyToken.(string)
		if !ok {
			continue
		}

		valueToken, err := decoder.Token()
		if err != nil {
			break
		}

		if v, ok := sortDirection(valueToken); ok {
			sortBson = append(sortBson, bson.E{Key: field, Value: v})
		}
	}
	_, _ = decoder.Token()

	if len(sortBson) == 0 {
		return fallback()
	}
	return sortBson
}

// sortDirection ép một giá trị sort về 1 hoặc -1; các giá trị khác bị loại.
func sortDirection(value interface{}) (int, bool) {
	var sortValue int
	switch v := value.(type) {
	case json.Number:
		intVal, err := v.Int64()
		if err != nil {
			floatVal, ferr := v.Float64()
			if ferr != nil {
				return 0, false
			}
			intVal = int64(floatVal)
		}
		sortValue = int(intVal)
	case float64:
		sortValue = int(v)
	case int:
		sortValue = v
	default:
		return 0, false
	}

	if sortValue != 1 && sortValue != -1 {
		return 0, false
	}
	return sortValue, true
}

// validateMongoOptions áp chính sách cho options: chỉ cho projection/sort/limit/skip,
// chặn field nhạy cảm, sort phải là 1/-1, limit trong (0, 1000], skip không âm.
func (h *BaseHandler[T, CreateInput, UpdateInput]) validateMongoOptions(options map[string]interface{}) error {
	deniedFields := h.filterOptions.DeniedFields
	if len(deniedFields) == 0 {
		deniedFields = defaultDeniedFields
	}

	allowedOptions := map[string]bool{
		"projection": true,
		"sort":       true,
		"limit":      true,
		"skip":       true,
	}

	for key := range options {
		if !allowedOptions[key] {
			return common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Option '%s' không được hỗ trợ. Các options được phép: projection, sort, limit, skip", key),
				common.StatusBadRequest,
				nil,
			)
		}
	}

	if projection, ok := options["projection"].(map[string]interface{}); ok {
		for field := range projection {
			if utility.Contains(deniedFields, field) {
				return common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("Trường '%s' không được phép sử dụng trong projection vì lý do bảo mật", field),
					common.StatusBadRequest,
					nil,
				)
			}
		}
	}

	if sort, ok := options["sort"].(map[string]interface{}); ok {
		for field, value := range sort {
			if utility.Contains(deniedFields, field) {
				return common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("Trường '%s' không được phép sử dụng trong sort vì lý do bảo mật", field),
					common.StatusBadRequest,
					nil,
				)
			}
			if v, ok := value.(float64); !ok || (v != 1 && v != -1) {
				return common.NewError(
					common.ErrCodeValidationFormat,
					fmt.Sprintf("Giá trị sort cho trường '%s' phải là 1 (tăng dần) hoặc -1 (giảm dần), giá trị hiện tại: %v", field, value),
					common.StatusBadRequest,
					nil,
				)
			}
		}
	}

	if limit, ok := options["limit"].(float64); ok {
		if limit <= 0 {
			return common.NewError(
				common.ErrCodeValidationFormat,
				"Giá trị limit phải lớn hơn 0",
				common.StatusBadRequest,
				nil,
			)
		}
		if limit > 1000 {
			return common.NewError(
				common.ErrCodeValidationFormat,
				"Giá trị limit không được vượt quá 1000 để đảm bảo hiệu năng hệ thống",
				common.StatusBadRequest,
				nil,
			)
		}
	}

	if skip, ok := options["skip"].(float64); ok {
		if skip < 0 {
			return common.NewError(
				common.ErrCodeValidationFormat,
				"Giá trị skip không được âm",
				common.StatusBadRequest,
				nil,
			)
		}
	}

	return nil
}

// ====================================
// TRANSFORM DTO SANG MODEL
// ====================================

// transformCreateInputToModel transform CreateInput (DTO) sang Model (T)
// theo struct tag `transform` (ví dụ: string → ObjectID, map=<field> để đổi tên field).
func (h *BaseHandler[T, CreateInput, UpdateInput]) transformCreateInputToModel(input *CreateInput) (*T, error) {
	return transformInputToModel[T](input)
}

// transformUpdateInputToModel transform UpdateInput (DTO) sang Model (T).
// Cùng cơ chế struct tag `transform` với create, dùng cho các handler update (partial update).
func (h *BaseHandler[T, CreateInput, UpdateInput]) transformUpdateInputToModel(input *UpdateInput) (*T, error) {
	return transformInputToModel[T](input)
}

// transformInputToModel duyệt các field của DTO, áp transform tag và đổ giá trị vào Model mới.
// Field không có tag được copy trực tiếp khi Model có field cùng tên và type tương thích.
func transformInputToModel[T any](input interface{}) (*T, error) {
	model := new(T)

	inputVal := reflect.ValueOf(input)
	if inputVal.Kind() == reflect.Ptr {
		inputVal = inputVal.Elem()
	}
	if inputVal.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input DTO phải là struct hoặc pointer đến struct")
	}

	modelVal := reflect.ValueOf(model).Elem()
	if modelVal.Kind() != reflect.Struct {
		return nil, fmt.Errorf("Model phải là struct hoặc pointer đến struct")
	}

	inputType := inputVal.Type()
	modelType := modelVal.Type()

	for i := 0; i < inputVal.NumField(); i++ {
		inputField := inputVal.Field(i)
		inputFieldType := inputType.Field(i)

		if !inputField.CanInterface() {
			continue
		}

		fieldValue := inputField.Interface()

		transformTag := inputFieldType.Tag.Get("transform")
		if transformTag == "" {
			// Không có transform tag: copy trực tiếp khi trùng tên và type tương thích
			targetFieldName := inputFieldType.Name
			if _, found := modelType.FieldByName(targetFieldName); !found {
				continue
			}

			modelFieldVal := modelVal.FieldByName(targetFieldName)
			if !modelFieldVal.IsValid() || !modelFieldVal.CanSet() {
				continue
			}

			inputValReflect := reflect.ValueOf(fieldValue)
			if inputValReflect.Type().AssignableTo(modelFieldVal.Type()) {
				modelFieldVal.Set(inputValReflect)
			} else if inputValReflect.Type().ConvertibleTo(modelFieldVal.Type()) {
				modelFieldVal.Set(inputValReflect.Convert(modelFieldVal.Type()))
			}
			continue
		}

		transformConfig, err := utility.ParseTransformTag(transformTag)
		if err != nil {
			return nil, fmt.Errorf("lỗi parse transform tag cho field %s: %w", inputFieldType.Name, err)
		}

		targetFieldName := inputFieldType.Name
		if transformConfig.MapTo != "" {
			targetFieldName = transformConfig.MapTo
		}

		modelField, found := modelType.FieldByName(targetFieldName)
		if !found {
			if transformConfig.Optional {
				continue
			}
			return nil, fmt.Errorf("không tìm thấy field '%s' trong Model (map từ field '%s' trong DTO)", targetFieldName, inputFieldType.Name)
		}

		transformedValue, err := utility.TransformFieldValue(fieldValue, transformConfig, modelField.Type)
		if err != nil {
			if transformConfig.Optional {
				continue
			}
			return nil, fmt.Errorf("lỗi transform field '%s' sang '%s': %w", inputFieldType.Name, targetFieldName, err)
		}

		modelFieldVal := modelVal.FieldByName(targetFieldName)
		if !modelFieldVal.IsValid() || !modelFieldVal.CanSet() {
			return nil, fmt.Errorf("không thể set giá trị vào field '%s' trong Model", targetFieldName)
		}

		if transformedValue == nil {
			// Optional với giá trị nil thì giữ zero value
			continue
		}

		transformedVal := reflect.ValueOf(transformedValue)
		if transformedVal.Type().AssignableTo(modelFieldVal.Type()) {
			modelFieldVal.Set(transformedVal)
		} else if transformedVal.Type().ConvertibleTo(modelFieldVal.Type()) {
			modelFieldVal.Set(transformedVal.Convert(modelFieldVal.Type()))
		} else {
			return nil, fmt.Errorf("không thể convert giá trị từ type %v sang type %v cho field '%s'", transformedVal.Type(), modelFieldVal.Type(), targetFieldName)
		}
	}

	return model, nil
}
