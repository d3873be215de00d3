// Package crmvc - Test thao tác hàng loạt: validate chạy trước DB, một lệnh
// UpdateMany/DeleteMany duy nhất, filter luôn scope theo tổ chức.
package crmvc

import (
	"testing"

	"estate_crm/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func someClientIds(n int) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, n)
	for i := range ids {
		ids[i] = primitive.NewObjectID()
	}
	return ids
}

func TestBulkAssignCommand_MotLenhUpdateManyChoToanBoIds(t *testing.T) {
	ids := someClientIds(3)
	user := primitive.NewObjectID()
	org := primitive.NewObjectID()

	filter, update, err := bulkAssignCommand(ids, user, org)
	if err != nil {
		t.Fatalf("bulkAssignCommand lỗi: %v", err)
	}

	idFilter, ok := filter["_id"].(bson.M)
	if !ok {
		t.Fatal("filter phải chứa _id dạng bson.M")
	}
	in, ok := idFilter["$in"].([]primitive.ObjectID)
	if !ok || len(in) != len(ids) {
		t.Fatalf("toàn bộ ids phải nằm trong một $in duy nhất, got %v", idFilter["$in"])
	}
	if filter["ownerOrganizationId"] != org {
		t.Error("filter phải scope theo ownerOrganizationId")
	}
	set, ok := update["$set"].(bson.M)
	if !ok || set["assignedTo"] != user {
		t.Errorf("update phải $set assignedTo = user đích, got %v", update)
	}
}

func TestBulkAssignCommand_LoiValidateTruocMoiLenhDB(t *testing.T) {
	org := primitive.NewObjectID()

	if _, _, err := bulkAssignCommand(nil, primitive.NewObjectID(), org); err != common.ErrNoClientSelected {
		t.Errorf("chưa chọn khách phải trả ErrNoClientSelected, got %v", err)
	}
	if _, _, err := bulkAssignCommand(someClientIds(2), primitive.NilObjectID, org); err != common.ErrNoUserSelected {
		t.Errorf("chưa chọn user phải trả ErrNoUserSelected, got %v", err)
	}
}

func TestBulkUnassignCommand_ThieuConfirmLaLoiValidate(t *testing.T) {
	ids := someClientIds(2)
	org := primitive.NewObjectID()

	if _, _, err := bulkUnassignCommand(ids, false, org); err != common.ErrConfirmRequired {
		t.Fatalf("thiếu confirm phải trả ErrConfirmRequired, got %v", err)
	}

	filter, update, err := bulkUnassignCommand(ids, true, org)
	if err != nil {
		t.Fatalf("bulkUnassignCommand lỗi: %v", err)
	}
	if filter["ownerOrganizationId"] != org {
		t.Error("filter phải scope theo ownerOrganizationId")
	}
	unset, ok := update["$unset"].(bson.M)
	if !ok {
		t.Fatal("update phải có $unset")
	}
	if _, ok := unset["assignedTo"]; !ok {
		t.Error("update phải $unset assignedTo")
	}
}

func TestBulkDeleteCommand_CanConfirmVaScopeToChuc(t *testing.T) {
	ids := someClientIds(2)
	org := primitive.NewObjectID()

	if _, err := bulkDeleteCommand(ids, false, org); err != common.ErrConfirmRequired {
		t.Fatalf("thiếu confirm phải trả ErrConfirmRequired, got %v", err)
	}
	if _, err := bulkDeleteCommand(nil, true, org); err != common.ErrNoClientSelected {
		t.Fatalf("chưa chọn khách phải trả ErrNoClientSelected, got %v", err)
	}

	filter, err := bulkDeleteCommand(ids, true, org)
	if err != nil {
		t.Fatalf("bulkDeleteCommand lỗi: %v", err)
	}
	if filter["ownerOrganizationId"] != org {
		t.Error("filter xóa phải scope theo ownerOrganizationId")
	}
}

func TestClearNextActionCommand_LuonScopeToChuc(t *testing.T) {
	clientID := primitive.NewObjectID()
	org := primitive.NewObjectID()

	filter, update := clearNextActionCommand(clientID, org)
	if filter["_id"] != clientID {
		t.Error("filter phải nhắm đúng khách")
	}
	if filter["ownerOrganizationId"] != org {
		t.Error("filter phải kèm ownerOrganizationId, không cho xóa lịch của tổ chức khác")
	}
	unset, ok := update["$unset"].(bson.M)
	if !ok {
		t.Fatal("update phải có $unset")
	}
	for _, field := range []string{"nextActionType", "nextActionDate"} {
		if _, ok := unset[field]; !ok {
			t.Errorf("update phải $unset %s", field)
		}
	}
}
