// Package catalogsvc - Service danh mục: chủ đầu tư (companies).
package catalogsvc

import (
	"fmt"

	basesvc "estate_crm/internal/api/base/service"
	catalogmodels "estate_crm/internal/api/catalog/models"
	"estate_crm/internal/common"
	"estate_crm/internal/global"
)

// CompanyService CRUD chủ đầu tư qua base service.
type CompanyService struct {
	*basesvc.BaseServiceMongoImpl[catalogmodels.Company]
}

// NewCompanyService tạo CompanyService mới.
func NewCompanyService() (*CompanyService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Companies)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Companies, common.ErrNotFound)
	}
	return &CompanyService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[catalogmodels.Company](coll),
	}, nil
}
