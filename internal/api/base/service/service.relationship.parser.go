package basesvc

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"estate_crm/internal/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RelationshipDefinition mo ta mot quan he tham chieu khai bao qua struct tag `relationship`.
// Nhieu quan he tren mot tag ngan cach boi "|", moi quan he la danh sach key:value ngan cach boi ",".
type RelationshipDefinition struct {
	CollectionName string
	FieldName      string
	ErrorMessage   string
	Optional       bool
	Cascade        bool
}

// ParseRelationshipTag doc tag `relationship` tu field _Relationships va moi field thuong cua struct.
func ParseRelationshipTag(structType reflect.Type) []RelationshipDefinition {
	var relationships []RelationshipDefinition
	if field, ok := structType.FieldByName("_Relationships"); ok {
		if tag := field.Tag.Get("relationship"); tag != "" {
			relationships = append(relationships, parseRelationshipTagValue(tag)...)
		}
	}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Name == "_Relationships" {
			continue
		}
		if tag := field.Tag.Get("relationship"); tag != "" {
			relationships = append(relationships, parseRelationshipTagValue(tag)...)
		}
	}
	return relationships
}

// setRelationshipField gan mot cap key:value vao definition. Key "message"/"msg"
// deu duoc chap nhan, boolean nhan "true" hoac "1".
func setRelationshipField(rel *RelationshipDefinition, key, value string) {
	switch key {
	case "collection":
		rel.CollectionName = value
	case "field":
		rel.FieldName = value
	case "message", "msg":
		rel.ErrorMessage = value
	case "optional":
		rel.Optional = value == "true" || value == "1"
	case "cascade":
		rel.Cascade = value == "true" || value == "1"
	}
}

func parseRelationshipTagValue(tagValue string) []RelationshipDefinition {
	var relationships []RelationshipDefinition
	for _, part := range strings.Split(tagValue, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rel := RelationshipDefinition{}
		for _, pair := range strings.Split(part, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			kv := strings.SplitN(pair, ":", 2)
			if len(kv) != 2 {
				continue
			}
			setRelationshipField(&rel, strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1]))
		}
		// Thieu collection hoac field thi dinh nghia khong dung duoc, bo qua.
		if rel.CollectionName == "" || rel.FieldName == "" {
			continue
		}
		if rel.ErrorMessage == "" {
			rel.ErrorMessage = fmt.Sprintf("Khong the xoa record vi co %%d record trong collection '%s' dang tham chieu toi.", rel.CollectionName)
		}
		relationships = append(relationships, rel)
	}
	return relationships
}

// ValidateRelationships kiem tra khong con record nao tham chieu toi recordID
// theo cac quan he khai bao trong struct tag. Quan he cascade khong chan xoa.
func ValidateRelationships(ctx context.Context, recordID primitive.ObjectID, structType reflect.Type) error {
	relationships := ParseRelationshipTag(structType)
	if len(relationships) == 0 {
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
	if len(checks) == 0 {
		return nil
	}
	return CheckRelationshipExists(ctx, recordID, checks)
}

// ValidateRelationshipsFromValue nhu ValidateRelationships nhung lay ID va type tu gia tri struct.
func ValidateRelationshipsFromValue(ctx context.Context, record interface{}, structType reflect.Type) error {
	recordID, ok := getIDFromModel(record)
	if !ok {
		return common.NewError(common.ErrCodeValidation, "Record khong co field ID", common.StatusBadRequest, nil)
	}
	if structType == nil {
		val := reflect.ValueOf(record)
		if val.Kind() == reflect.Ptr {
			val = val.Elem()
		}
		structType = val.Type()
	}
	return ValidateRelationships(ctx, recordID, structType)
}

// GetRelationshipDefinitions lay danh sach cac quan he duoc dinh nghia trong struct
func GetRelationshipDefinitions(structType reflect.Type) []RelationshipDefinition {
	return ParseRelationshipTag(structType)
}
