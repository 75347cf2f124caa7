package repository

import (
	"context"

	"wheats/internal/domain/model"

	"gorm.io/gorm"
)

// stores / menus を読むだけ。書き込みはカタログ側の管理画面が持つ。
type CatalogGormRepository struct {
	db *gorm.DB
}

// DI
func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

func (r *CatalogGormRepository) ResolveMenu(ctx context.Context, menuID int64) (model.Menu, error) {
	var m model.Menu
	err := r.db.WithContext(ctx).First(&m, menuID).Error
	return m, translate(err)
}

func (r *CatalogGormRepository) ResolveStore(ctx context.Context, storeID int64) (model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).First(&s, storeID).Error
	return s, translate(err)
}
