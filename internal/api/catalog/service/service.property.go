// Package catalogsvc - Service bất động sản lẻ (properties).
package catalogsvc

import (
	"fmt"

	basesvc "estate_crm/internal/api/base/service"
	catalogmodels "estate_crm/internal/api/catalog/models"
	"estate_crm/internal/common"
	"estate_crm/internal/global"
)

// PropertyService CRUD bất động sản lẻ qua base service.
type PropertyService struct {
	*basesvc.BaseServiceMongoImpl[catalogmodels.Property]
}

// NewPropertyService tạo PropertyService mới.
func NewPropertyService() (*PropertyService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Properties)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Properties, common.ErrNotFound)
	}
	return &PropertyService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[catalogmodels.Property](coll),
	}, nil
}
