// package basesvc cung cấp service CRUD generic trên MongoDB cho mọi model.
// Mỗi domain service embed BaseServiceMongoImpl và chỉ viết thêm nghiệp vụ riêng.
package basesvc

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "estate_crm/internal/api/base/models"
	"estate_crm/internal/api/events"
	"estate_crm/internal/common"
	"estate_crm/internal/utility"
)

// isAdminFromContextFunc được gán từ auth domain (initsvc) để tránh import cycle services -> auth.
var isAdminFromContextFunc func(context.Context) (bool, error)

// SetIsAdminFromContextFunc đăng ký hàm kiểm tra user trong context có phải Administrator.
// Gọi từ initsvc.NewInitService hoặc nơi khởi tạo app (auth đã load).
func SetIsAdminFromContextFunc(fn func(context.Context) (bool, error)) {
	isAdminFromContextFunc = fn
}

// UpdateData mô tả một partial update, map trực tiếp sang các operator MongoDB.
type UpdateData struct {
	Set         map[string]interface{} `bson:"$set,omitempty"`         // Field cần ghi đè
	SetOnInsert map[string]interface{} `bson:"$setOnInsert,omitempty"` // Field chỉ set khi upsert tạo mới
	Unset       map[string]interface{} `bson:"$unset,omitempty"`       // Field cần xóa khỏi document
	Push        map[string]interface{} `bson:"$push,omitempty"`        // Thêm phần tử vào array
	AddToSet    map[string]interface{} `bson:"$addToSet,omitempty"`    // Thêm phần tử không trùng vào array
}

// ToUpdateData chuẩn hóa mọi dạng update (UpdateData, BSON raw, map có operator,
// map thường) về *UpdateData. Map thường được wrap trong $set.
func ToUpdateData(data interface{}) (*UpdateData, error) {
	if update, ok := data.(*UpdateData); ok {
		return update, nil
	}
	if update, ok := data.(UpdateData); ok {
		return &update, nil
	}
	if rawData, ok := data.([]byte); ok {
		update := &UpdateData{}
		if err := bson.Unmarshal(bson.Raw(rawData), update); err != nil {
			return nil, err
		}
		return update, nil
	}

	dataMap, err := utility.ToMap(data)
	if err != nil {
		return nil, err
	}

	// Map đã mang operator MongoDB: đọc từng operator ra UpdateData
	if _, hasSet := dataMap["$set"]; hasSet {
		update := &UpdateData{}
		if setVal, ok := dataMap["$set"].(map[string]interface{}); ok {
			update.Set = setVal
		}
		if unsetVal, ok := dataMap["$unset"].(map[string]interface{}); ok {
			update.Unset = unsetVal
		}
		if setOnInsertVal, ok := dataMap["$setOnInsert"].(map[string]interface{}); ok {
			update.SetOnInsert = setOnInsertVal
		}
		if pushVal, ok := dataMap["$push"].(map[string]interface{}); ok {
			update.Push = pushVal
		}
		if addToSetVal, ok := dataMap["$addToSet"].(map[string]interface{}); ok {
			update.AddToSet = addToSetVal
		}
		return update, nil
	}

	return &UpdateData{Set: dataMap}, nil
}

// BaseServiceMongo là interface CRUD generic mà các handler và domain service phụ thuộc vào.
type BaseServiceMongo[Model any] interface {
	// Insert
	InsertOne(ctx context.Context, data Model) (Model, error)
	InsertMany(ctx context.Context, data []Model) ([]Model, error)

	// Find
	FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (Model, error)
	Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]Model, error)
	FindOneById(ctx context.Context, id primitive.ObjectID) (Model, error)
	FindManyByIds(ctx context.Context, ids []primitive.ObjectID) ([]Model, error)
	FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[Model], error)

	// Update
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (Model, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (int64, error)
	UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (Model, error)

	// Delete
	DeleteOne(ctx context.Context, filter interface{}) error
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)
	DeleteById(ctx context.Context, id primitive.ObjectID) error

	// Upsert
	Upsert(ctx context.Context, filter interface{}, data interface{}) (Model, error)

	// Tiện ích
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error)
	DocumentExists(ctx context.Context, filter interface{}) (bool, error)
}

// BaseServiceMongoImpl triển khai BaseServiceMongo trên một collection cụ thể.
type BaseServiceMongoImpl[T any] struct {
	collection *mongo.Collection
}

// NewBaseServiceMongo tạo service CRUD cho collection.
func NewBaseServiceMongo[T any](collection *mongo.Collection) *BaseServiceMongoImpl[T] {
	return &BaseServiceMongoImpl[T]{
		collection: collection,
	}
}

// Collection trả về collection MongoDB (dùng bởi deliverysvc và các service auth khi cần aggregate/update trực tiếp)
func (s *BaseServiceMongoImpl[T]) Collection() *mongo.Collection {
	return s.collection
}

// orEmptyFilter chuẩn hóa filter nil hoặc map rỗng về bson.D{} (match tất cả).
func orEmptyFilter(filter interface{}) interface{} {
	if filter == nil {
		return bson.D{}
	}
	if filterMap, ok := filter.(map[string]interface{}); ok && len(filterMap) == 0 {
		return bson.D{}
	}
	return filter
}

// fetchExisting load document hiện tại theo filter, dùng trước update/delete
// để chạy các bước validate trên trạng thái hiện có.
func (s *BaseServiceMongoImpl[T]) fetchExisting(ctx context.Context, filter interface{}) (T, error) {
	var existing T
	err := s.collection.FindOne(ctx, filter).Decode(&existing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return existing, common.ErrNotFound
		}
		return existing, common.ConvertMongoError(err)
	}
	return existing, nil
}

// stampUpdatedAt gắn updatedAt (Unix ms) vào $set của update.
func stampUpdatedAt(updateData *UpdateData) {
	if updateData.Set == nil {
		updateData.Set = make(map[string]interface{})
	}
	updateData.Set["updatedAt"] = time.Now().UnixMilli()
}

// emitChange phát event thay đổi dữ liệu cho collection của service.
func (s *BaseServiceMongoImpl[T]) emitChange(ctx context.Context, op string, doc interface{}) {
	events.EmitDataChanged(ctx, events.DataChangeEvent{
		CollectionName: s.collection.Name(),
		Operation:      op,
		Document:       doc,
	})
}

// InsertOne tạo mới một document.
// Tự gắn createdAt/updatedAt (Unix ms) và áp default từ struct tag.
func (s *BaseServiceMongoImpl[T]) InsertOne(ctx context.Context, data T) (T, error) {
	var zero T

	if err := validateSystemDataInsert(ctx, data); err != nil {
		return zero, err
	}

	// Default từ struct tag, chỉ set field đang zero
	applyInsertDefaultsToModel(&data)

	dataMap, err := utility.ToMap(data)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}

	// Sparse unique index bỏ qua field không tồn tại nhưng KHÔNG bỏ qua empty string.
	// Bỏ các field rỗng khỏi document để hai bản ghi cùng thiếu email/phone không đụng index.
	for key, value := range dataMap {
		if strValue, ok := value.(string); ok && strValue == "" {
			delete(dataMap, key)
		}
	}

	now := time.Now().UnixMilli()
	dataMap["createdAt"] = now
	dataMap["updatedAt"] = now

	result, err := s.collection.InsertOne(ctx, dataMap)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}

	// Đọc lại document để trả về bản đầy đủ (gồm _id, timestamps, default)
	var created T
	err = s.collection.FindOne(ctx, bson.M{"_id": result.InsertedID}).Decode(&created)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}

	s.emitChange(ctx, events.OpInsert, created)
	return created, nil
}

// InsertMany tạo nhiều document, cùng quy tắc timestamps/default như InsertOne.
func (s *BaseServiceMongoImpl[T]) InsertMany(ctx context.Context, data []T) ([]T, error) {
	for _, item := range data {
		if err := validateSystemDataInsert(ctx, item); err != nil {
			return nil, err
		}
	}

	for i := range data {
		applyInsertDefaultsToModel(&data[i])
	}

	now := time.Now().UnixMilli()
	var documents []interface{}
	for _, item := range data {
		dataMap, err := utility.ToMap(item)
		if err != nil {
			return nil, common.ErrInvalidFormat
		}
		dataMap["createdAt"] = now
		dataMap["updatedAt"] = now
		documents = append(documents, dataMap)
	}

	result, err := s.collection.InsertMany(ctx, documents)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}

	var created []T
	filter := bson.M{"_id": bson.M{"$in": result.InsertedIDs}}
	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	if err = cursor.All(ctx, &created); err != nil {
		return nil, common.ConvertMongoError(err)
	}

	for i := range created {
		s.emitChange(ctx, events.OpInsert, created[i])
	}
	return created, nil
}

// FindOne tìm một document theo filter.
func (s *BaseServiceMongoImpl[T]) FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (T, error) {
	var zero T
	var result T

	filter = orEmptyFilter(filter)
	if opts == nil {
		opts = options.FindOne()
	}

	findResult := s.collection.FindOne(ctx, filter, opts)
	if err := findResult.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, common.ErrNotFound
		}
		return zero, common.ConvertMongoError(err)
	}

	if err := findResult.Decode(&result); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, common.ErrNotFound
		}
		// Decode fail là lỗi định dạng dữ liệu, không phải lỗi MongoDB command
		return zero, common.NewError(
			common.ErrCodeValidationFormat,
			"Lỗi định dạng dữ liệu khi decode từ MongoDB",
			common.StatusBadRequest,
			err,
		)
	}

	return result, nil
}

// Find tìm tất cả document theo filter, luôn trả về slice không nil.
func (s *BaseServiceMongoImpl[T]) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error) {
	filter = orEmptyFilter(filter)
	if opts == nil {
		opts = options.Find()
	}

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var results []T
	if err = cursor.All(ctx, &results); err != nil {
		return nil, common.ConvertMongoError(err)
	}

	if results == nil {
		results = []T{}
	}
	return results, nil
}

// FindOneById tìm một document theo ObjectId.
func (s *BaseServiceMongoImpl[T]) FindOneById(ctx context.Context, id primitive.ObjectID) (T, error) {
	return s.fetchExisting(ctx, bson.M{"_id": id})
}

// FindManyByIds tìm nhiều document theo danh sách ObjectId.
func (s *BaseServiceMongoImpl[T]) FindManyByIds(ctx context.Context, ids []primitive.ObjectID) ([]T, error) {
	filter := bson.M{"_id": bson.M{"$in": ids}}
	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var results []T
	if err = cursor.All(ctx, &results); err != nil {
		return nil, common.ConvertMongoError(err)
	}

	return results, nil
}

// FindWithPagination trả về một trang kết quả cùng tổng số bản ghi và tổng số trang.
// Service tự set skip/limit vào options; giá trị page/limit không hợp lệ được đưa về mặc định.
func (s *BaseServiceMongoImpl[T]) FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[T], error) {
	filter = orEmptyFilter(filter)
	if opts == nil {
		opts = options.Find()
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	skip := (page - 1) * limit
	opts.SetSkip(skip)
	opts.SetLimit(limit)

	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}

	var items []T
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &items); err != nil {
		return nil, common.ConvertMongoError(err)
	}

	// Tổng số trang làm tròn lên; 0 bản ghi thì 0 trang
	var totalPage int64
	if total > 0 {
		totalPage = (total + limit - 1) / limit
	}

	return &basemodels.PaginateResult[T]{
		Items:     items,
		Page:      page,
		Limit:     limit,
		ItemCount: int64(len(items)),
		Total:     total,
		TotalPage: totalPage,
	}, nil
}

// UpdateOne cập nhật một document theo filter và trả về bản sau cập nhật.
func (s *BaseServiceMongoImpl[T]) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (T, error) {
	var zero T

	filter = orEmptyFilter(filter)
	if opts == nil {
		opts = options.Update().SetUpsert(false)
	}

	existing, err := s.fetchExisting(ctx, filter)
	if err != nil {
		return zero, err
	}

	updateData, err := ToUpdateData(update)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}

	if err := validateSystemDataUpdate(ctx, existing, updateData); err != nil {
		return zero, err
	}

	stampUpdatedAt(updateData)

	result, err := s.collection.UpdateOne(ctx, filter, updateData, opts)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}

	if result.ModifiedCount == 0 && result.UpsertedCount == 0 {
		return zero, common.ErrNotFound
	}

	var updated T
	if result.UpsertedID != nil {
		err = s.collection.FindOne(ctx, bson.M{"_id": result.UpsertedID}).Decode(&updated)
	} else {
		err = s.collection.FindOne(ctx, filter).Decode(&updated)
	}
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}

	s.emitChange(ctx, events.OpUpdate, updated)
	return updated, nil
}

// UpdateMany cập nhật nhiều document, trả về số bản ghi đã sửa.
// Load trước các document match để validate system data trên từng bản ghi.
func (s *BaseServiceMongoImpl[T]) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (int64, error) {
	filter = orEmptyFilter(filter)
	if opts == nil {
		opts = options.Update().SetUpsert(false)
	}

	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var existingDocs []T
	if err := cursor.All(ctx, &existingDocs); err != nil {
		return 0, common.ConvertMongoError(err)
	}

	updateData, err := ToUpdateData(update)
	if err != nil {
		return 0, common.ErrInvalidFormat
	}

	for _, existing := range existingDocs {
		if err := validateSystemDataUpdate(ctx, existing, updateData); err != nil {
			return 0, err
		}
	}

	stampUpdatedAt(updateData)

	result, err := s.collection.UpdateMany(ctx, filter, updateData, opts)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}

	return result.ModifiedCount, nil
}

// UpdateById cập nhật một document theo ObjectId và trả về bản sau cập nhật.
func (s *BaseServiceMongoImpl[T]) UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (T, error) {
	var zero T
	filter := bson.M{"_id": id}

	existing, err := s.fetchExisting(ctx, filter)
	if err != nil {
		return zero, err
	}

	updateData, err := ToUpdateData(data)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}

	if err := validateSystemDataUpdate(ctx, existing, updateData); err != nil {
		return zero, err
	}

	stampUpdatedAt(updateData)

	result, err := s.collection.UpdateOne(ctx, filter, updateData, options.Update().SetUpsert(false))
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}

	if result.ModifiedCount == 0 {
		return zero, common.ErrNotFound
	}

	var updated T
	err = s.collection.FindOne(ctx, filter).Decode(&updated)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}

	s.emitChange(ctx, events.OpUpdate, updated)
	return updated, nil
}

// DeleteOne xóa một document theo filter.
// Document được load trước để chạy validate system data và relationship.
func (s *BaseServiceMongoImpl[T]) DeleteOne(ctx context.Context, filter interface{}) error {
	filter = orEmptyFilter(filter)

	existing, err := s.fetchExisting(ctx, filter)
	if err != nil {
		return err
	}

	if err := validateSystemDataDelete(ctx, existing); err != nil {
		return err
	}
	if err := validateRelationshipsDelete(ctx, existing); err != nil {
		return err
	}

	result, err := s.collection.DeleteOne(ctx, filter)
	if err != nil {
		return common.ConvertMongoError(err)
	}

	if result.DeletedCount == 0 {
		return common.ErrNotFound
	}

	s.emitChange(ctx, events.OpDelete, existing)
	return nil
}

// DeleteMany xóa nhiều document, trả về số bản ghi đã xóa.
// Từng document match được validate system data và relationship trước khi xóa.
func (s *BaseServiceMongoImpl[T]) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	filter = orEmptyFilter(filter)

	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var existingDocs []T
	if err := cursor.All(ctx, &existingDocs); err != nil {
		return 0, common.ConvertMongoError(err)
	}

	for _, existing := range existingDocs {
		if err := validateSystemDataDelete(ctx, existing); err != nil {
			return 0, err
		}
		if err := validateRelationshipsDelete(ctx, existing); err != nil {
			return 0, err
		}
	}

	result, err := s.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}

	return result.DeletedCount, nil
}

// DeleteById xóa một document theo ObjectId.
func (s *BaseServiceMongoImpl[T]) DeleteById(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id}

	existing, err := s.fetchExisting(ctx, filter)
	if err != nil {
		return err
	}

	if err := validateSystemDataDelete(ctx, existing); err != nil {
		return err
	}
	if err := validateRelationshipsDelete(ctx, existing); err != nil {
		return err
	}

	result, err := s.collection.DeleteOne(ctx, filter)
	if err != nil {
		return common.ConvertMongoError(err)
	}

	if result.DeletedCount == 0 {
		return common.ErrNotFound
	}

	s.emitChange(ctx, events.OpDelete, existing)
	return nil
}

// CountDocuments đếm số document match filter.
func (s *BaseServiceMongoImpl[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	filter = orEmptyFilter(filter)

	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}

	return count, nil
}

// Distinct trả về danh sách giá trị duy nhất của một field.
func (s *BaseServiceMongoImpl[T]) Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error) {
	filter = orEmptyFilter(filter)

	values, err := s.collection.Distinct(ctx, fieldName, filter)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}

	return values, nil
}

// DocumentExists kiểm tra có document nào match filter không.
func (s *BaseServiceMongoImpl[T]) DocumentExists(ctx context.Context, filter interface{}) (bool, error) {
	filter = orEmptyFilter(filter)

	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, common.ConvertMongoError(err)
	}

	return count > 0, nil
}

// Upsert update document match filter, hoặc tạo mới nếu chưa có.
// createdAt/updatedAt được gắn lại (Unix ms); default từ struct tag đi qua $setOnInsert.
func (s *BaseServiceMongoImpl[T]) Upsert(ctx context.Context, filter interface{}, data interface{}) (T, error) {
	var zero T

	logrus.WithFields(logrus.Fields{
		"collection": s.collection.Name(),
		"filter":     filter,
	}).Debug("Upsert: Bắt đầu upsert")

	// Load document hiện tại (nếu có) để biết đường validate update hay insert
	var existing T
	err := s.collection.FindOne(ctx, filter).Decode(&existing)
	isExisting := err == nil
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return zero, common.ConvertMongoError(err)
	}

	updateData, err := ToUpdateData(data)
	if err != nil {
		logrus.WithError(err).Error("Upsert: Lỗi chuyển đổi data thành UpdateData")
		return zero, common.ErrInvalidFormat
	}

	if isExisting {
		if err := validateSystemDataUpdate(ctx, existing, updateData); err != nil {
			return zero, err
		}
	} else {
		// Tạo mới: chặn IsSystem = true trừ khi context init cho phép
		if updateData.Set != nil {
			if isSystem, ok := updateData.Set["isSystem"].(bool); ok && isSystem {
				if !isSystemDataInsertAllowed(ctx) {
					return zero, common.NewError(
						common.ErrCodeBusinessOperation,
						"Không thể tạo dữ liệu với IsSystem = true. Chỉ hệ thống mới có thể tạo dữ liệu system",
						common.StatusForbidden,
						nil,
					)
				}
			}
		}
	}

	now := time.Now().UnixMilli()
	if updateData.Set == nil {
		updateData.Set = make(map[string]interface{})
	}
	updateData.Set["updatedAt"] = now
	updateData.Set["createdAt"] = now

	// Tạo mới: default từ struct tag đi qua $setOnInsert, không ghi đè giá trị đã có trong $set
	if !isExisting {
		defaults := getInsertDefaultsFromModelType(reflect.TypeOf(zero))
		if len(defaults) > 0 {
			if updateData.SetOnInsert == nil {
				updateData.SetOnInsert = make(map[string]interface{})
			}
			for k, v := range defaults {
				if _, inSet := updateData.Set[k]; !inSet {
					updateData.SetOnInsert[k] = v
				}
			}
		}
	}

	// Sparse unique index không bỏ qua empty string. Với email/phone:
	// giá trị rỗng hoặc thiếu trong $set phải chuyển sang $unset để khi upsert
	// tạo document mới, field hoàn toàn không tồn tại (null vẫn đụng index).
	removedFromSet := []string{}
	unsetFields := []string{}
	if updateData.Unset == nil {
		updateData.Unset = make(map[string]interface{})
	}

	for key, value := range updateData.Set {
		if strValue, ok := value.(string); ok && strValue == "" {
			if key == "email" || key == "phone" {
				delete(updateData.Set, key)
				removedFromSet = append(removedFromSet, key)
				updateData.Unset[key] = ""
				unsetFields = append(unsetFields, key)
			}
		}
	}

	sparseFields := []string{"email", "phone"}
	for _, field := range sparseFields {
		if _, exists := updateData.Set[field]; !exists {
			if _, alreadyUnset := updateData.Unset[field]; !alreadyUnset {
				updateData.Unset[field] = ""
				unsetFields = append(unsetFields, field)
			}
		}
	}

	if len(removedFromSet) > 0 || len(unsetFields) > 0 {
		logrus.WithFields(logrus.Fields{
			"removed_from_set": removedFromSet,
			"unset_fields":     unsetFields,
		}).Debug("Upsert: Đã xử lý các field sparse unique index (email/phone)")
	}

	// Sort theo _id để upsert luôn nhắm vào cùng một document khi filter match nhiều bản ghi
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	var upserted T
	err = s.collection.FindOneAndUpdate(ctx, filter, updateData, opts).Decode(&upserted)
	if err != nil {
		// Document cũ có phone/email = null vẫn đụng sparse index.
		// Gỡ field null khỏi các document cũ rồi thử lại một lần.
		if retried, retryErr := s.retryUpsertAfterNullCleanup(ctx, err, filter, updateData, opts); retryErr == nil && retried != nil {
			s.emitChange(ctx, events.OpUpsert, *retried)
			return *retried, nil
		}

		logrus.WithFields(logrus.Fields{
			"filter":      filter,
			"update_data": updateData.Set,
			"error":       err.Error(),
		}).Error("Upsert: Lỗi khi ghi document")
		return zero, common.ConvertMongoError(err)
	}

	logrus.WithFields(logrus.Fields{
		"collection": s.collection.Name(),
	}).Debug("Upsert: Upsert thành công")

	s.emitChange(ctx, events.OpUpsert, upserted)
	return upserted, nil
}

// retryUpsertAfterNullCleanup xử lý duplicate key error do document cũ có
// email/phone = null: unset field null trên các document cũ rồi chạy lại upsert.
// Trả về (nil, err gốc) nếu lỗi không thuộc dạng này hoặc retry vẫn fail.
func (s *BaseServiceMongoImpl[T]) retryUpsertAfterNullCleanup(ctx context.Context, origErr error, filter interface{}, updateData *UpdateData, opts *options.FindOneAndUpdateOptions) (*T, error) {
	mongoErr, ok := origErr.(mongo.WriteException)
	if !ok {
		return nil, origErr
	}

	for _, writeErr := range mongoErr.WriteErrors {
		if writeErr.Code != 11000 {
			continue
		}
		errMsg := writeErr.Message
		if !strings.Contains(errMsg, "null") {
			continue
		}

		var fieldToClean string
		if strings.Contains(errMsg, "phone") {
			fieldToClean = "phone"
		} else if strings.Contains(errMsg, "email") {
			fieldToClean = "email"
		}
		if fieldToClean == "" {
			continue
		}

		logrus.WithFields(logrus.Fields{
			"field": fieldToClean,
			"error": errMsg,
		}).Warn("Upsert: Duplicate key với field null, gỡ field khỏi document cũ và thử lại")

		cleanFilter := bson.M{fieldToClean: nil}
		cleanUpdate := bson.M{"$unset": bson.M{fieldToClean: ""}}
		if _, cleanErr := s.collection.UpdateMany(ctx, cleanFilter, cleanUpdate); cleanErr != nil {
			continue
		}

		var upserted T
		if err := s.collection.FindOneAndUpdate(ctx, filter, updateData, opts).Decode(&upserted); err == nil {
			return &upserted, nil
		}
	}

	return nil, origErr
}

// applyInsertDefaultsToModel áp dụng giá trị default từ struct tag lên model (chỉ set field đang zero).
// Dùng cho InsertOne/InsertMany để document tạo mới có đủ field có tag default.
// ptr phải là con trỏ tới struct (ví dụ &data).
func applyInsertDefaultsToModel(ptr interface{}) {
	if ptr == nil {
		return
	}
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr {
		return
	}
	struc := v.Elem()
	if struc.Kind() != reflect.Struct {
		return
	}
	rt := struc.Type()
	defaults := getInsertDefaultsFromModelType(rt)
	if len(defaults) == 0 {
		return
	}
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		bsonTag := f.Tag.Get("bson")
		if bsonTag == "" || bsonTag == "-" {
			continue
		}
		bsonKey := strings.TrimSpace(strings.Split(bsonTag, ",")[0])
		if bsonKey == "" {
			continue
		}
		defaultVal, ok := defaults[bsonKey]
		if !ok {
			continue
		}
		fieldVal := struc.Field(i)
		if !fieldVal.CanSet() || !fieldVal.IsZero() {
			continue
		}
		rv := reflect.ValueOf(defaultVal)
		if rv.Type().AssignableTo(fieldVal.Type()) {
			fieldVal.Set(rv)
		} else if rv.Type().ConvertibleTo(fieldVal.Type()) {
			fieldVal.Set(rv.Convert(fieldVal.Type()))
		}
	}
}

// getInsertDefaultsFromModelType đọc struct tag default trên model và trả về map[bsonKey]giá trị mặc định.
// Dùng cho Insert (applyInsertDefaultsToModel) và Upsert ($setOnInsert).
// Hỗ trợ: bool (true/false), int, int64, string.
func getInsertDefaultsFromModelType(rt reflect.Type) map[string]interface{} {
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil
	}
	out := make(map[string]interface{})
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		defaultStr := f.Tag.Get("default")
		if defaultStr == "" {
			continue
		}
		bsonTag := f.Tag.Get("bson")
		if bsonTag == "" || bsonTag == "-" {
			continue
		}
		bsonKey := strings.TrimSpace(strings.Split(bsonTag, ",")[0])
		if bsonKey == "" {
			continue
		}
		val := parseDefaultValue(defaultStr, f.Type)
		if val != nil {
			out[bsonKey] = val
		}
	}
	return out
}

// parseDefaultValue chuyển chuỗi default tag sang giá trị đúng kiểu (bool, int, int64, string).
func parseDefaultValue(s string, t reflect.Type) interface{} {
	switch t.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false
		}
		return b
	case reflect.Int, reflect.Int32:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return int32(0)
		}
		return int32(n)
	case reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return int64(0)
		}
		return n
	case reflect.String:
		return s
	default:
		return nil
	}
}

// getIDFromModel lấy ID từ model bằng reflection.
func getIDFromModel(data interface{}) (primitive.ObjectID, bool) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return primitive.NilObjectID, false
	}

	field := v.FieldByName("ID")
	if !field.IsValid() || !field.CanInterface() {
		return primitive.NilObjectID, false
	}

	if id, ok := field.Interface().(primitive.ObjectID); ok {
		return id, true
	}

	return primitive.NilObjectID, false
}

// ====================================
// BẢO VỆ DỮ LIỆU HỆ THỐNG (IsSystem)
// ====================================

// systemDataContextKey đánh dấu context được phép tạo system data (chỉ nội bộ basesvc).
type systemDataContextKey string

const allowSystemDataInsertKey systemDataContextKey = "allow_system_data_insert"

// WithSystemDataInsertAllowed tạo context cho phép insert system data (dùng trong quá trình init).
// Được gọi từ package initsvc khi chạy init; không dùng từ API thông thường.
func WithSystemDataInsertAllowed(ctx context.Context) context.Context {
	return context.WithValue(ctx, allowSystemDataInsertKey, true)
}

// isSystemDataInsertAllowed kiểm tra context có cho phép insert system data không.
func isSystemDataInsertAllowed(ctx context.Context) bool {
	allowed, ok := ctx.Value(allowSystemDataInsertKey).(bool)
	return ok && allowed
}

// getIsSystemValue đọc field IsSystem của model qua reflection.
// Bool thứ hai = false nghĩa là model không có field IsSystem.
func getIsSystemValue(data interface{}) (bool, bool) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return false, false
	}

	field := v.FieldByName("IsSystem")
	if !field.IsValid() || !field.CanInterface() {
		return false, false
	}

	if field.Kind() == reflect.Bool {
		return field.Bool(), true
	}

	return false, false
}

// setIsSystemValue ghi field IsSystem của model qua reflection.
func setIsSystemValue(data interface{}, value bool) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	field := v.FieldByName("IsSystem")
	if !field.IsValid() || !field.CanSet() {
		return
	}

	if field.Kind() == reflect.Bool {
		field.SetBool(value)
	}
}

// validateSystemDataInsert chặn user tạo dữ liệu với IsSystem = true.
// Context init (WithSystemDataInsertAllowed) được phép; model không có field IsSystem thì bỏ qua.
func validateSystemDataInsert(ctx context.Context, data interface{}) error {
	isSystem, hasField := getIsSystemValue(data)
	if !hasField {
		return nil
	}

	if isSystemDataInsertAllowed(ctx) {
		return nil
	}

	if isSystem {
		return common.NewError(
			common.ErrCodeBusinessOperation,
			"Không thể tạo dữ liệu với IsSystem = true. Chỉ hệ thống mới có thể tạo dữ liệu system",
			common.StatusForbidden,
			nil,
		)
	}

	// Luôn ghi rõ IsSystem = false khi tạo mới
	setIsSystemValue(data, false)
	return nil
}

// validateSystemDataDelete chặn xóa dữ liệu system, kể cả với admin.
func validateSystemDataDelete(ctx context.Context, data interface{}) error {
	isSystem, hasField := getIsSystemValue(data)
	if !hasField {
		return nil
	}

	if isSystem {
		modelType := reflect.TypeOf(data)
		if modelType.Kind() == reflect.Ptr {
			modelType = modelType.Elem()
		}

		return common.NewError(
			common.ErrCodeBusinessOperation,
			fmt.Sprintf("Không thể xóa %s vì đây là dữ liệu hệ thống mặc định", modelType.Name()),
			common.StatusForbidden,
			nil,
		)
	}

	return nil
}

// validateRelationshipsDelete đọc struct tag `relationship` và chặn xóa khi còn
// record khác đang tham chiếu tới record này. Relationship gắn cascade thì bỏ qua
// (cascade do domain service xử lý).
func validateRelationshipsDelete(ctx context.Context, data interface{}) error {
	modelType := reflect.TypeOf(data)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	relationships := ParseRelationshipTag(modelType)
	if len(relationships) == 0 {
		return nil
	}

	recordID, ok := getIDFromModel(data)
	if !ok {
		// Record chưa có ID thì không có gì tham chiếu tới nó
		return nil
	}

	checks := make([]RelationshipCheck, 0, len(relationships))
	for _, rel := range relationships {
		if rel.Cascade {
			continue
		}
		checks = append(checks, RelationshipCheck{
			CollectionName: rel.CollectionName,
			FieldName:      rel.FieldName,
			ErrorMessage:   rel.ErrorMessage,
			Optional:       rel.Optional,
		})
	}

	if len(checks) > 0 {
		return CheckRelationshipExists(ctx, recordID, checks)
	}

	return nil
}

// validateSystemDataUpdate bảo vệ dữ liệu system khi update:
// dữ liệu system chỉ admin được sửa (admin sửa được mọi field);
// dữ liệu thường không được set IsSystem = true.
func validateSystemDataUpdate(ctx context.Context, existingData interface{}, update *UpdateData) error {
	rejectSetIsSystem := func() error {
		if update.Set != nil {
			if isSystemVal, ok := update.Set["isSystem"].(bool); ok && isSystemVal {
				return common.NewError(
					common.ErrCodeBusinessOperation,
					"Không thể set IsSystem = true. Chỉ hệ thống mới có thể tạo dữ liệu system",
					common.StatusForbidden,
					nil,
				)
			}
			delete(update.Set, "isSystem")
		}
		return nil
	}

	isSystem, hasField := getIsSystemValue(existingData)
	if !hasField {
		return rejectSetIsSystem()
	}

	if !isSystem {
		return rejectSetIsSystem()
	}

	// Dữ liệu system: chỉ admin mới được sửa (callback đăng ký từ auth domain)
	var isAdmin bool
	if isAdminFromContextFunc != nil {
		isAdmin, _ = isAdminFromContextFunc(ctx)
	}
	if !isAdmin {
		return common.NewError(
			common.ErrCodeBusinessOperation,
			"Chỉ Administrator mới có thể sửa dữ liệu hệ thống",
			common.StatusForbidden,
			nil,
		)
	}

	return nil
}
