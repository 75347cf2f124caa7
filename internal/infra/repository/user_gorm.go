package repository

import (
	"context"

	"wheats/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserGormRepository struct {
	db *gorm.DB
}

// DI
func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

// IDでユーザーを1件取得
func (r *UserGormRepository) FindByID(ctx context.Context, userID int64) (model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error
	return u, translate(err)
}

// ユーザー行を FOR UPDATE で押さえる。
// 同じユーザーのカート操作・注文はここで順番待ちになる。
func (r *UserGormRepository) LockByID(ctx context.Context, userID int64) error {
	var u model.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", userID).
		First(&u).Error
	return translate(err)
}
