package repository

import (
	"context"
	"errors"

	"wheats/internal/domain/model"
	repo "wheats/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartLineGormRepository struct {
	db *gorm.DB
}

func NewCartLineGormRepository(db *gorm.DB) *CartLineGormRepository {
	return &CartLineGormRepository{db: db}
}

// ACTIVEな明細を一覧取得
func (r *CartLineGormRepository) ListActiveByCartID(ctx context.Context, cartID int64) ([]model.CartLine, error) {
	var lines []model.CartLine

	if err := r.db.WithContext(ctx).
		Where("cart_id = ? AND status = ?", cartID, model.CartLineStatusActive).
		Order("id asc").
		Find(&lines).Error; err != nil {
		return []model.CartLine{}, err
	}

	return lines, nil
}

func (r *CartLineGormRepository) LockByID(ctx context.Context, lineID int64) (model.CartLine, error) {
	var line model.CartLine
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", lineID).
		First(&line).Error
	return line, translate(err)
}

func (r *CartLineGormRepository) FindActiveByCartAndMenu(ctx context.Context, cartID, menuID int64) (model.CartLine, error) {
	var line model.CartLine
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cart_id = ? AND menu_id = ? AND status = ?", cartID, menuID, model.CartLineStatusActive).
		First(&line).Error
	return line, translate(err)
}

func (r *CartLineGormRepository) Create(ctx context.Context, line model.CartLine) (model.CartLine, error) {
	if line.Quantity <= 0 {
		return model.CartLine{}, errors.New("invalid quantity")
	}
	if err := r.db.WithContext(ctx).Create(&line).Error; err != nil {
		return model.CartLine{}, err
	}
	return line, nil
}

// 明細の数量を更新
func (r *CartLineGormRepository) UpdateQuantity(ctx context.Context, lineID int64, qty int64) error {
	if qty <= 0 {
		return errors.New("invalid quantity")
	}

	res := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartLineGormRepository) UpdateStatus(ctx context.Context, lineID int64, status model.CartLineStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("id = ?", lineID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 0件でもエラーにしない（明細が無いカートもある）
func (r *CartLineGormRepository) UpdateStatusByCartID(ctx context.Context, cartID int64, from, to model.CartLineStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("cart_id = ? AND status = ?", cartID, from).
		Update("status", to).Error
}
