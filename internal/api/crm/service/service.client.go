// Package crmvc - Service khách hàng (clients): tạo với kiểm tra trùng SĐT,
// danh sách theo pipeline filter → paginate (page đã clamp), các thao tác hàng loạt.
package crmvc

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	crmdto "estate_crm/internal/api/crm/dto"
	crmmodels "estate_crm/internal/api/crm/models"
	basesvc "estate_crm/internal/api/base/service"
	"estate_crm/internal/common"
	"estate_crm/internal/global"
	"estate_crm/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// ClientService xử lý nghiệp vụ khách hàng.
type ClientService struct {
	*basesvc.BaseServiceMongoImpl[crmmodels.Client]
	userCollection    *mongo.Collection
	insightCollection *mongo.Collection
	favoriteService   *ClientFavoriteService
	actionService     *ClientActionService
}

// NewClientService tạo ClientService mới.
func NewClientService() (*ClientService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Clients)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Clients, common.ErrNotFound)
	}
	userColl, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Users, common.ErrNotFound)
	}
	insightColl, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ClientInsights)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.ClientInsights, common.ErrNotFound)
	}
	favoriteSvc, err := NewClientFavoriteService()
	if err != nil {
		return nil, fmt.Errorf("tạo ClientFavoriteService: %w", err)
	}
	actionSvc, err := NewClientActionService()
	if err != nil {
		return nil, fmt.Errorf("tạo ClientActionService: %w", err)
	}
	return &ClientService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[crmmodels.Client](coll),
		userCollection:       userColl,
		insightCollection:    insightColl,
		favoriteService:      favoriteSvc,
		actionService:        actionSvc,
	}, nil
}

// Create tạo khách hàng mới. SĐT được chuẩn hóa rồi kiểm tra trùng trong tổ chức
// TRƯỚC khi insert — trùng trả về ErrDuplicatePhone, không đụng tới DB.
func (s *ClientService) Create(ctx context.Context, input *crmdto.ClientCreateInput, ownerOrgID, createdBy primitive.ObjectID) (*crmmodels.Client, error) {
	phone := utility.NormalizePhone(input.Phone)
	if phone == "" {
		return nil, common.NewError(common.ErrCodeValidationInput, "Số điện thoại không hợp lệ", common.StatusBadRequest, nil)
	}
	exists, err := s.DocumentExists(ctx, bson.M{
		"phone":               phone,
		"ownerOrganizationId": ownerOrgID,
	})
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrDuplicatePhone
	}

	now := time.Now().UnixMilli()
	if input.NextActionDate != 0 && input.NextActionDate < now {
		return nil, common.ErrPastActionDate
	}

	status := input.Status
	if status == "" {
		status = crmmodels.ClientStatusNew
	}
	var projectID primitive.ObjectID
	if input.ProjectID != "" {
		projectID, err = primitive.ObjectIDFromHex(input.ProjectID)
		if err != nil {
			return nil, common.NewError(common.ErrCodeValidationFormat, "projectId không hợp lệ", common.StatusBadRequest, err)
		}
	}

	doc := crmmodels.Client{
		Name:                input.Name,
		Phone:               phone,
		Email:               input.Email,
		Facebook:            input.Facebook,
		Country:             input.Country,
		City:                input.City,
		ProjectID:           projectID,
		Budget:              input.Budget,
		Campaign:            input.Campaign,
		Status:              status,
		ContactMethod:       input.ContactMethod,
		CreatedBy:           createdBy,
		NextActionType:      input.NextActionType,
		NextActionDate:      input.NextActionDate,
		Comment:             input.Comment,
		Rating:              input.Rating,
		OwnerOrganizationID: ownerOrgID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	client, err := s.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// List trả về danh sách khách sau filter + phân trang. Cùng ngữ nghĩa với
// ApplyFilter/Paginate nhưng biên dịch thành filter Mongo để không kéo cả
// collection về server. Page luôn được clamp về [1, totalPages].
func (s *ClientService) List(ctx context.Context, query *crmdto.ClientListQuery, ownerOrgID, userID primitive.ObjectID) (*crmdto.ClientListResponse, error) {
	size := query.RowsPerPage
	if size == 0 {
		size = RowsPerPageOptions[0]
	}
	if !IsValidRowsPerPage(size) {
		return nil, common.ErrInvalidRowsPerPage
	}

	filter := bson.M{"ownerOrganizationId": ownerOrgID}
	if q := strings.TrimSpace(query.Query); q != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter["$or"] = []bson.M{
			{"name": pattern},
			{"phone": pattern},
			{"email": pattern},
		}
	}
	if query.Status != "" {
		filter["status"] = query.Status
	}
	if query.SelectedUser != "" {
		uid, err := primitive.ObjectIDFromHex(query.SelectedUser)
		if err != nil {
			return nil, common.NewError(common.ErrCodeValidationFormat, "userId không hợp lệ", common.StatusBadRequest, err)
		}
		filter["$and"] = []bson.M{
			{"$or": []bson.M{{"assignedTo": uid}, {"createdBy": uid}}},
		}
	}
	if query.FavoritesOnly {
		favoriteIds, err := s.favoriteService.ListClientIDs(ctx, userID, ownerOrgID)
		if err != nil {
			return nil, err
		}
		filter["_id"] = bson.M{"$in": favoriteIds}
	}

	total, err := s.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}
	totalPages := (total + int64(size) - 1) / int64(size)
	if totalPages < 1 {
		totalPages = 1
	}
	page := int64(query.Page)
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	opts := mongoopts.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	result, err := s.FindWithPagination(ctx, filter, page, int64(size), opts)
	if err != nil {
		return nil, err
	}
	return &crmdto.ClientListResponse{
		Items:       result.Items,
		Page:        page,
		RowsPerPage: int64(size),
		TotalPages:  totalPages,
		Total:       total,
	}, nil
}

// validateAssignableUser kiểm tra user tồn tại và chưa bị khóa trước khi gán.
func (s *ClientService) validateAssignableUser(ctx context.Context, userID primitive.ObjectID) error {
	var user struct {
		ID      primitive.ObjectID `bson:"_id"`
		IsBlock bool               `bson:"isBlock"`
	}
	err := s.userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return common.NewError(common.ErrCodeValidationInput, "Người dùng được gán không tồn tại", common.StatusBadRequest, nil)
		}
		return common.NewError(common.ErrCodeDatabaseQuery, "Lỗi truy vấn người dùng", common.StatusInternalServerError, err)
	}
	if user.IsBlock {
		return common.NewError(common.ErrCodeValidationInput, "Người dùng được gán đang bị khóa", common.StatusBadRequest, nil)
	}
	return nil
}

// BulkAssign gán người phụ trách cho danh sách khách bằng MỘT lệnh UpdateMany
// (atomic từ phía caller: hoặc tất cả được gán, hoặc không khách nào thay đổi).
// bulkAssignCommand validate đầu vào rồi dựng filter/update cho MỘT lệnh
// UpdateMany. Lỗi validate trả về trước khi có bất kỳ lệnh DB nào.
func bulkAssignCommand(clientIds []primitive.ObjectID, targetUserID, ownerOrgID primitive.ObjectID) (bson.M, bson.M, error) {
	if len(clientIds) == 0 {
		return nil, nil, common.ErrNoClientSelected
	}
	if targetUserID.IsZero() {
		return nil, nil, common.ErrNoUserSelected
	}
	filter := bson.M{
		"_id":                 bson.M{"$in": clientIds},
		"ownerOrganizationId": ownerOrgID,
	}
	update := bson.M{"$set": bson.M{
		"assignedTo": targetUserID,
		"updatedAt":  time.Now().UnixMilli(),
	}}
	return filter, update, nil
}

// bulkUnassignCommand dựng filter/update bỏ gán hàng loạt. Cần confirm=true.
func bulkUnassignCommand(clientIds []primitive.ObjectID, confirm bool, ownerOrgID primitive.ObjectID) (bson.M, bson.M, error) {
	if len(clientIds) == 0 {
		return nil, nil, common.ErrNoClientSelected
	}
	if !confirm {
		return nil, nil, common.ErrConfirmRequired
	}
	filter := bson.M{
		"_id":                 bson.M{"$in": clientIds},
		"ownerOrganizationId": ownerOrgID,
	}
	update := bson.M{
		"$unset": bson.M{"assignedTo": ""},
		"$set":   bson.M{"updatedAt": time.Now().UnixMilli()},
	}
	return filter, update, nil
}

// bulkDeleteCommand dựng filter xóa hàng loạt. Cần confirm=true.
func bulkDeleteCommand(clientIds []primitive.ObjectID, confirm bool, ownerOrgID primitive.ObjectID) (bson.M, error) {
	if len(clientIds) == 0 {
		return nil, common.ErrNoClientSelected
	}
	if !confirm {
		return nil, common.ErrConfirmRequired
	}
	return bson.M{
		"_id":                 bson.M{"$in": clientIds},
		"ownerOrganizationId": ownerOrgID,
	}, nil
}

// Validate "chưa chọn user/khách" chạy trước mọi lệnh DB.
func (s *ClientService) BulkAssign(ctx context.Context, clientIds []primitive.ObjectID, targetUserID primitive.ObjectID, ownerOrgID, actorID primitive.ObjectID) (*crmdto.BulkOperationResult, error) {
	filter, update, err := bulkAssignCommand(clientIds, targetUserID, ownerOrgID)
	if err != nil {
		return nil, err
	}
	if err := s.validateAssignableUser(ctx, targetUserID); err != nil {
		return nil, err
	}

	modified, err := s.UpdateMany(ctx, filter, update, nil)
	if err != nil {
		return nil, err
	}
	s.actionService.LogBulk(ctx, clientIds, crmmodels.ClientActionAssign, "", targetUserID.Hex(), ownerOrgID, actorID)
	return &crmdto.BulkOperationResult{Matched: int64(len(clientIds)), Modified: modified}, nil
}

// BulkUnassign bỏ gán người phụ trách cho danh sách khách. Cần confirm=true.
func (s *ClientService) BulkUnassign(ctx context.Context, clientIds []primitive.ObjectID, confirm bool, ownerOrgID, actorID primitive.ObjectID) (*crmdto.BulkOperationResult, error) {
	filter, update, err := bulkUnassignCommand(clientIds, confirm, ownerOrgID)
	if err != nil {
		return nil, err
	}

	modified, err := s.UpdateMany(ctx, filter, update, nil)
	if err != nil {
		return nil, err
	}
	s.actionService.LogBulk(ctx, clientIds, crmmodels.ClientActionUnassign, "", "", ownerOrgID, actorID)
	return &crmdto.BulkOperationResult{Matched: int64(len(clientIds)), Modified: modified}, nil
}

// BulkDelete xóa danh sách khách bằng MỘT lệnh DeleteMany. Confirm bắt buộc
// cho mọi thao tác hủy hàng loạt — thiếu confirm là lỗi validate, không gọi DB.
// Favorite và insight trỏ tới khách đã xóa được dọn kèm (best-effort).
func (s *ClientService) BulkDelete(ctx context.Context, clientIds []primitive.ObjectID, confirm bool, ownerOrgID primitive.ObjectID) (*crmdto.BulkOperationResult, error) {
	filter, err := bulkDeleteCommand(clientIds, confirm, ownerOrgID)
	if err != nil {
		return nil, err
	}

	deleted, err := s.DeleteMany(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.favoriteService.RemoveByClientIDs(ctx, clientIds, ownerOrgID)
	s.insightCollection.DeleteMany(ctx, bson.M{
		"clientId":            bson.M{"$in": clientIds},
		"ownerOrganizationId": ownerOrgID,
	})
	return &crmdto.BulkOperationResult{Matched: int64(len(clientIds)), Modified: deleted}, nil
}

// ChangeStatus đổi trạng thái pipeline và ghi lịch sử kèm giá trị cũ.
func (s *ClientService) ChangeStatus(ctx context.Context, clientID primitive.ObjectID, input *crmdto.ClientStatusInput, ownerOrgID, actorID primitive.ObjectID) (*crmmodels.Client, error) {
	if !crmmodels.IsValidClientStatus(input.Status) {
		return nil, common.ErrInvalidState
	}
	current, err := s.FindOne(ctx, bson.M{"_id": clientID, "ownerOrganizationId": ownerOrgID}, nil)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{
		"status":    input.Status,
		"updatedAt": time.Now().UnixMilli(),
	}}
	updated, err := s.UpdateOne(ctx, bson.M{"_id": clientID, "ownerOrganizationId": ownerOrgID}, update, nil)
	if err != nil {
		return nil, err
	}
	s.actionService.Log(ctx, clientID, crmmodels.ClientActionStatusChange, current.Status, input.Status, input.Note, ownerOrgID, actorID)
	return &updated, nil
}

// SetRating cập nhật đánh giá 0-5 và ghi lịch sử.
func (s *ClientService) SetRating(ctx context.Context, clientID primitive.ObjectID, rating int, ownerOrgID, actorID primitive.ObjectID) (*crmmodels.Client, error) {
	if rating < 0 || rating > 5 {
		return nil, common.ErrInvalidRating
	}
	current, err := s.FindOne(ctx, bson.M{"_id": clientID, "ownerOrganizationId": ownerOrgID}, nil)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{
		"rating":    rating,
		"updatedAt": time.Now().UnixMilli(),
	}}
	updated, err := s.UpdateOne(ctx, bson.M{"_id": clientID, "ownerOrganizationId": ownerOrgID}, update, nil)
	if err != nil {
		return nil, err
	}
	s.actionService.Log(ctx, clientID, crmmodels.ClientActionRating, fmt.Sprintf("%d", current.Rating), fmt.Sprintf("%d", rating), "", ownerOrgID, actorID)
	return &updated, nil
}

// AddComment thêm một ghi chú vào mảng comments của khách.
func (s *ClientService) AddComment(ctx context.Context, clientID primitive.ObjectID, text string, ownerOrgID, actorID primitive.ObjectID) (*crmmodels.Client, error) {
	now := time.Now().UnixMilli()
	comment := crmmodels.ClientComment{Text: text, CreatedBy: actorID, CreatedAt: now}
	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": now},
	}
	updated, err := s.UpdateOne(ctx, bson.M{"_id": clientID, "ownerOrganizationId": ownerOrgID}, update, nil)
	if err != nil {
		return nil, err
	}
	s.actionService.Log(ctx, clientID, crmmodels.ClientActionNote, "", "", text, ownerOrgID, actorID)
	return &updated, nil
}

// FindDueNextAction trả về các khách có lịch hẹn đã tới hạn (nextActionDate <= now),
// mọi tổ chức — dùng cho checker thông báo chạy nền.
func (s *ClientService) FindDueNextAction(ctx context.Context, now int64) ([]crmmodels.Client, error) {
	filter := bson.M{
		"nextActionType": bson.M{"$nin": bson.A{"", nil}},
		"nextActionDate": bson.M{"$gt": 0, "$lte": now},
	}
	return s.Find(ctx, filter, nil)
}

// ClearNextAction xóa lịch hẹn sau khi đã xử lý (đánh dấu đã nhắc).
// Filter luôn kèm ownerOrganizationId — user tổ chức khác không xóa được lịch
// của khách không thuộc tổ chức mình dù đoán đúng id.
func (s *ClientService) ClearNextAction(ctx context.Context, clientID, ownerOrgID primitive.ObjectID) error {
	filter, update := clearNextActionCommand(clientID, ownerOrgID)
	_, err := s.UpdateOne(ctx, filter, update, nil)
	return err
}

// clearNextActionCommand dựng filter/update cho ClearNextAction.
func clearNextActionCommand(clientID, ownerOrgID primitive.ObjectID) (bson.M, bson.M) {
	filter := bson.M{"_id": clientID, "ownerOrganizationId": ownerOrgID}
	update := bson.M{
		"$unset": bson.M{"nextActionType": "", "nextActionDate": ""},
		"$set":   bson.M{"updatedAt": time.Now().UnixMilli()},
	}
	return filter, update
}
