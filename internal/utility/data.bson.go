package utility

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// CustomBson dùng để tạo các bản đồ truy vấn bson tùy chỉnh
// ($set, $push, $unset, $addToSet) từ struct.
type CustomBson struct{}

// BsonWrapper bọc các toán tử cập nhật cơ bản của MongoDB.
// Gán struct dữ liệu vào trường tương ứng rồi ToMap để có bản đồ truy vấn.
type BsonWrapper struct {
	// Set thay giá trị của các trường. Mã hóa thành { $set : {...} }.
	Set interface{} `json:"$set,omitempty" bson:"$set,omitempty"`

	// Unset xóa một trường cụ thể. Nếu trường không tồn tại thì không làm gì.
	Unset interface{} `json:"$unset,omitempty" bson:"$unset,omitempty"`

	// Push thêm một giá trị vào trường mảng. Thất bại nếu trường không phải mảng.
	Push interface{} `json:"$push,omitempty" bson:"$push,omitempty"`

	// AddToSet thêm giá trị vào mảng nếu giá trị chưa có.
	AddToSet interface{} `json:"$addToSet,omitempty" bson:"$addToSet,omitempty"`
}

// ToMap chuyển đổi struct thành bản đồ qua bson marshal/unmarshal.
func ToMap(s interface{}) (map[string]interface{}, error) {
	var stringInterfaceMap map[string]interface{}
	itr, err := bson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("bson marshal failed: %w", err)
	}
	err = bson.Unmarshal(itr, &stringInterfaceMap)
	if err != nil {
		return nil, fmt.Errorf("bson unmarshal failed: %w", err)
	}
	return stringInterfaceMap, err
}

// Set tạo truy vấn thay thế giá trị của một trường bằng giá trị cụ thể
func (customBson *CustomBson) Set(data interface{}) (map[string]interface{}, error) {
	s := BsonWrapper{Set: data}
	return ToMap(s)
}

// Push tạo truy vấn thêm một giá trị vào một trường mảng
func (customBson *CustomBson) Push(data interface{}) (map[string]interface{}, error) {
	s := BsonWrapper{Push: data}
	return ToMap(s)
}

// Unset tạo truy vấn xóa một trường cụ thể
func (customBson *CustomBson) Unset(data interface{}) (map[string]interface{}, error) {
	s := BsonWrapper{Unset: data}
	return ToMap(s)
}

// AddToSet tạo truy vấn thêm một giá trị vào mảng trừ khi giá trị đã có.
func (customBson *CustomBson) AddToSet(data interface{}) (map[string]interface{}, error) {
	s := BsonWrapper{AddToSet: data}
	return ToMap(s)
}
