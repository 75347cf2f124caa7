package repository

import (
	"context"
	"errors"
	"time"

	"wheats/internal/domain/model"
	repo "wheats/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 呼び出し側のトランザクション内で使うこと（注文作成と同じTxで確定させる）。
type LedgerGormRepository struct {
	db *gorm.DB
}

func NewLedgerGormRepository(db *gorm.DB) *LedgerGormRepository {
	return &LedgerGormRepository{db: db}
}

// 残高が足りるときだけ減らす
func (r *LedgerGormRepository) Debit(ctx context.Context, userID int64, amount int64, note string) (int64, error) {
	if amount < 0 {
		return 0, errors.New("invalid amount")
	}

	//口座行をロック
	var acc model.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 口座なしは残高0扱い
		if amount == 0 {
			return 0, nil
		}
		return 0, repo.ErrInsufficientBalance
	}
	if err != nil {
		return 0, err
	}

	if acc.Balance < amount {
		return acc.Balance, repo.ErrInsufficientBalance
	}

	res := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return acc.Balance, repo.ErrInsufficientBalance
	}

	//履歴
	if err := r.db.WithContext(ctx).Create(&model.AccountTransaction{
		UserID:    userID,
		Amount:    -amount,
		Type:      model.AccountTransactionOrder,
		Note:      note,
		CreatedAt: time.Now(),
	}).Error; err != nil {
		return 0, err
	}

	return acc.Balance - amount, nil
}
