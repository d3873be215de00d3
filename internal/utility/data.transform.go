package utility

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// transformTagConfig là kết quả parse của một struct tag `transform` trên DTO.
type transformTagConfig struct {
	Type     string // Loại convert, đặt tên theo <kiểu vào>_<kiểu ra>: str_objectid, str_time, str_int64...
	Format   string // Layout thời gian cho str_time
	Default  string // Giá trị mặc định khi input rỗng
	Optional bool   // Input rỗng thì bỏ qua field
	Required bool   // Input rỗng thì báo lỗi
	MapTo    string // Đổ vào field khác tên trong Model (map=<tên field>)
}

const defaultTimeLayout = "2006-01-02T15:04:05"

// ParseTransformTag parse struct tag `transform` thành config.
// Cú pháp: "<type>[,format=<layout>][,default=<value>][,map=<field>][,optional|required]".
//
// Ví dụ:
//
//	transform:"str_objectid"                  string → primitive.ObjectID
//	transform:"str_objectid_ptr,optional"     string → *primitive.ObjectID, rỗng thì bỏ qua
//	transform:"str_time,format=2006-01-02"    string → timestamp ms theo layout
//	transform:"str_number,map=Price"          string → int64/float64, đổ vào field Price
func ParseTransformTag(tag string) (*transformTagConfig, error) {
	config := &transformTagConfig{
		Format: defaultTimeLayout,
	}

	if tag == "" {
		return config, nil
	}

	parts := strings.Split(tag, ",")
	config.Type = strings.TrimSpace(parts[0])

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
			continue
		case part == "optional":
			config.Optional = true
		case part == "required":
			config.Required = true
		case strings.Contains(part, "="):
			kv := strings.SplitN(part, "=", 2)
			key := strings.TrimSpace(kv[0])
			value := strings.TrimSpace(kv[1])
			switch key {
			case "format":
				config.Format = value
			case "default":
				config.Default = value
			case "map":
				config.MapTo = value
			}
		}
	}

	return config, nil
}

// TransformFieldValue convert giá trị một field DTO sang kiểu của field Model
// tương ứng, theo config đã parse từ tag. Input nil/rỗng được xử lý theo thứ
// tự: default → optional (bỏ qua) → required (lỗi) → nil.
func TransformFieldValue(value interface{}, config *transformTagConfig, targetFieldType reflect.Type) (interface{}, error) {
	empty := value == nil
	if strValue, ok := value.(string); ok && strValue == "" {
		empty = true
	}

	if empty {
		if config.Default != "" {
			return applyTransform(config.Default, config)
		}
		if config.Required {
			return nil, fmt.Errorf("field là required nhưng không có giá trị")
		}
		// Optional hoặc không khai báo gì thêm: giữ zero value của Model
		return nil, nil
	}

	return applyTransform(value, config)
}

// applyTransform dispatch theo transform type. Type rỗng hoặc không biết thì
// trả nguyên giá trị (caller copy trực tiếp nếu type tương thích).
func applyTransform(value interface{}, config *transformTagConfig) (interface{}, error) {
	switch config.Type {
	case "str_objectid":
		return toObjectID(value)
	case "str_objectid_ptr":
		return toObjectIDPtr(value)
	case "str_time":
		return toTimestampMs(value, config.Format)
	case "str_number":
		return toNumber(value)
	case "str_int64":
		return toInt64(value)
	case "str_bool":
		return toBool(value)
	}
	return value, nil
}

func toObjectID(value interface{}) (primitive.ObjectID, error) {
	strValue, err := asString(value)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if strValue == "" {
		return primitive.NilObjectID, nil
	}

	objID, err := primitive.ObjectIDFromHex(strValue)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("không thể convert string '%s' sang ObjectID: %w", strValue, err)
	}
	return objID, nil
}

func toObjectIDPtr(value interface{}) (*primitive.ObjectID, error) {
	strValue, err := asString(value)
	if err != nil {
		return nil, err
	}
	if strValue == "" {
		return nil, nil
	}

	objID, err := primitive.ObjectIDFromHex(strValue)
	if err != nil {
		return nil, fmt.Errorf("không thể convert string '%s' sang ObjectID: %w", strValue, err)
	}
	return &objID, nil
}

// toTimestampMs parse chuỗi thời gian theo layout và trả về Unix ms.
func toTimestampMs(value interface{}, layout string) (int64, error) {
	strValue, err := asString(value)
	if err != nil {
		return 0, err
	}
	if strValue == "" {
		return 0, nil
	}

	t, err := time.Parse(layout, strValue)
	if err != nil {
		return 0, fmt.Errorf("không thể parse time '%s' với format '%s': %w", strValue, layout, err)
	}
	return t.UnixMilli(), nil
}

// toNumber convert về int64 khi giá trị là số nguyên, float64 khi có phần lẻ.
// String không parse được thành số thì trả nguyên string.
func toNumber(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if intVal, err := strconv.ParseInt(v, 10, 64); err == nil {
			return intVal, nil
		}
		if floatVal, err := strconv.ParseFloat(v, 64); err == nil {
			return floatVal, nil
		}
		return v, nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		if v == float64(int64(v)) {
			return int64(v), nil
		}
		return v, nil
	}
	return fmt.Sprintf("%v", value), nil
}

func toInt64(value interface{}) (int64, error) {
	if value == nil {
		return 0, nil
	}

	if strValue, ok := value.(string); ok {
		return strconv.ParseInt(strValue, 10, 64)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float()), nil
	}
	return 0, fmt.Errorf("không thể convert %T sang int64", value)
}

func toBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	}
	return false, fmt.Errorf("không thể convert %T sang bool", value)
}

// asString ép value về string, lỗi khi không phải string (nil coi như rỗng).
func asString(value interface{}) (string, error) {
	if value == nil {
		return "", nil
	}
	strValue, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("giá trị không phải là string: %T", value)
	}
	return strValue, nil
}
