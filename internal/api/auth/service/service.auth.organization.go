// Package authsvc - service tổ chức (Organization).
package authsvc

import (
	"context"
	"fmt"

	models "estate_crm/internal/api/auth/models"
	basesvc "estate_crm/internal/api/base/service"
	"estate_crm/internal/common"
	"estate_crm/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrganizationService quản lý cây tổ chức: path/level, kiểm tra ràng buộc khi xóa.
type OrganizationService struct {
	*basesvc.BaseServiceMongoImpl[models.Organization]
	roleService *RoleService
}

// NewOrganizationService tạo mới OrganizationService
func NewOrganizationService() (*OrganizationService, error) {
	col, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Organizations)
	if !exist {
		return nil, fmt.Errorf("failed to get organizations collection: %v", common.ErrNotFound)
	}

	roleService, err := NewRoleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create role service: %v", err)
	}

	return &OrganizationService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Organization](col),
		roleService:          roleService,
	}, nil
}

// GetChildrenIDs trả về ID của chính tổ chức và toàn bộ tổ chức con đang hoạt động (Scope = 1).
// Cây được duyệt bằng prefix trên path nên không cần đệ quy theo parentId.
func (s *OrganizationService) GetChildrenIDs(ctx context.Context, parentID primitive.ObjectID) ([]primitive.ObjectID, error) {
	parent, err := s.BaseServiceMongoImpl.FindOneById(ctx, parentID)
	if err != nil {
		return nil, err
	}

	orgs, err := s.BaseServiceMongoImpl.Find(ctx, bson.M{
		"path":     bson.M{"$regex": "^" + parent.Path},
		"isActive": true,
	}, nil)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(orgs))
	for _, org := range orgs {
		ids = append(ids, org.ID)
	}
	return ids, nil
}

// GetParentIDs đi ngược chuỗi parentId từ tổ chức con lên gốc.
// Mắt xích bị đứt (parent đã xóa) thì dừng tại đó thay vì báo lỗi.
func (s *OrganizationService) GetParentIDs(ctx context.Context, childID primitive.ObjectID) ([]primitive.ObjectID, error) {
	child, err := s.BaseServiceMongoImpl.FindOneById(ctx, childID)
	if err != nil {
		return nil, err
	}

	parentIDs := make([]primitive.ObjectID, 0)
	currentID := child.ParentID
	for currentID != nil {
		parent, err := s.BaseServiceMongoImpl.FindOneById(ctx, *currentID)
		if err != nil {
			break
		}
		parentIDs = append(parentIDs, parent.ID)
		currentID = parent.ParentID
	}
	return parentIDs, nil
}

// isRootSystemOrg nhận diện tổ chức System gốc - nơi gắn role Administrator.
func isRootSystemOrg(org models.Organization) bool {
	return org.Type == models.OrganizationTypeSystem && org.Code == "SYSTEM" && org.Level == -1
}

// validateBeforeDelete chặn xóa khi: là System gốc, còn tổ chức con, hoặc còn role trực thuộc.
func (s *OrganizationService) validateBeforeDelete(ctx context.Context, orgID primitive.ObjectID) error {
	org, err := s.BaseServiceMongoImpl.FindOneById(ctx, orgID)
	if err != nil {
		return err
	}

	if isRootSystemOrg(org) {
		return common.NewError(
			common.ErrCodeBusinessOperation,
			"Không thể xóa System organization. Đây là tổ chức cấp cao nhất chứa Administrator và không thể xóa.",
			common.StatusForbidden,
			nil,
		)
	}

	children, err := s.BaseServiceMongoImpl.Find(ctx, bson.M{
		"$or": []bson.M{
			{"parentId": org.ID},
			{"path": bson.M{"$regex": "^" + org.Path + "/"}},
		},
	}, nil)
	if err != nil && err != common.ErrNotFound {
		return err
	}
	if len(children) > 0 {
		return common.NewError(
			common.ErrCodeBusinessOperation,
			fmt.Sprintf("Không thể xóa tổ chức '%s' vì có %d tổ chức con. Vui lòng xóa hoặc di chuyển các tổ chức con trước.", org.Name, len(children)),
			common.StatusConflict,
			nil,
		)
	}

	roles, err := s.roleService.BaseServiceMongoImpl.Find(ctx, bson.M{"organizationId": org.ID}, nil)
	if err != nil && err != common.ErrNotFound {
		return err
	}
	if len(roles) > 0 {
		return common.NewError(
			common.ErrCodeBusinessOperation,
			fmt.Sprintf("Không thể xóa tổ chức '%s' vì có %d role trực thuộc. Vui lòng xóa hoặc di chuyển các role trước.", org.Name, len(roles)),
			common.StatusConflict,
			nil,
		)
	}
	return nil
}

// DeleteOne override để kiểm tra ràng buộc cây tổ chức trước khi xóa
func (s *OrganizationService) DeleteOne(ctx context.Context, filter interface{}) error {
	org, err := s.BaseServiceMongoImpl.FindOne(ctx, filter, nil)
	if err != nil {
		return err
	}
	if err := s.validateBeforeDelete(ctx, org.ID); err != nil {
		return err
	}
	return s.BaseServiceMongoImpl.DeleteOne(ctx, filter)
}

// DeleteById override
func (s *OrganizationService) DeleteById(ctx context.Context, id primitive.ObjectID) error {
	if err := s.validateBeforeDelete(ctx, id); err != nil {
		return err
	}
	return s.BaseServiceMongoImpl.DeleteById(ctx, id)
}

// DeleteMany override - kiểm tra từng tổ chức khớp filter, một tổ chức không xóa được thì hủy cả lô
func (s *OrganizationService) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	orgs, err := s.BaseServiceMongoImpl.Find(ctx, filter, nil)
	if err != nil && err != common.ErrNotFound {
		return 0, err
	}
	for _, org := range orgs {
		if err := s.validateBeforeDelete(ctx, org.ID); err != nil {
			return 0, err
		}
	}
	return s.BaseServiceMongoImpl.DeleteMany(ctx, filter)
}

// CalculatePathAndLevel suy ra Path và Level từ parent (nếu có) hoặc từ loại tổ chức.
// System và Group là hai loại duy nhất được phép đứng ở gốc cây.
func (s *OrganizationService) CalculatePathAndLevel(ctx context.Context, org models.Organization) (string, int, error) {
	if org.ParentID != nil && !org.ParentID.IsZero() {
		parent, err := s.BaseServiceMongoImpl.FindOneById(ctx, *org.ParentID)
		if err != nil {
			return "", 0, common.NewError(
				common.ErrCodeBusinessOperation,
				fmt.Sprintf("Không tìm thấy tổ chức cha với ID: %s", org.ParentID.Hex()),
				common.StatusBadRequest,
				err,
			)
		}
		return parent.Path + "/" + org.Code, s.calculateLevel(org.Type, parent.Level), nil
	}

	switch org.Type {
	case models.OrganizationTypeSystem:
		return "/" + org.Code, -1, nil
	case models.OrganizationTypeGroup:
		return "/" + org.Code, 0, nil
	}
	return "", 0, common.NewError(
		common.ErrCodeBusinessOperation,
		fmt.Sprintf("Loại tổ chức '%s' phải có parent. Chỉ 'system' và 'group' mới có thể không có parent.", org.Type),
		common.StatusBadRequest,
		nil,
	)
}

// calculateLevel: các loại chuẩn có level cố định, team và loại tùy biến nằm ngay dưới parent.
func (s *OrganizationService) calculateLevel(orgType string, parentLevel int) int {
	switch orgType {
	case models.OrganizationTypeSystem:
		return -1
	case models.OrganizationTypeGroup:
		return 0
	case models.OrganizationTypeCompany:
		return 1
	case models.OrganizationTypeDepartment:
		return 2
	case models.OrganizationTypeDivision:
		return 3
	default:
		return parentLevel + 1
	}
}

// InsertOne override để tính Path/Level trước khi insert
func (s *OrganizationService) InsertOne(ctx context.Context, data models.Organization) (models.Organization, error) {
	path, level, err := s.CalculatePathAndLevel(ctx, data)
	if err != nil {
		return data, err
	}
	data.Path = path
	data.Level = level
	return s.BaseServiceMongoImpl.InsertOne(ctx, data)
}
