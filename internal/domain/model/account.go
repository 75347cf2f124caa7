package model

import "time"

// ユーザーごとのポイント残高（1ユーザー1行）。
type Account struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	Balance   int64     `gorm:"not null" json:"balance"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type AccountTransactionType string

const (
	AccountTransactionOrder  AccountTransactionType = "ORDER"
	AccountTransactionCharge AccountTransactionType = "CHARGE"
)

// 残高の増減履歴。Amountは入金が正、出金が負。
type AccountTransaction struct {
	ID        int64                  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64                  `gorm:"not null;index" json:"user_id"`
	Amount    int64                  `gorm:"not null" json:"amount"`
	Type      AccountTransactionType `gorm:"type:varchar(20);not null;index" json:"type"`
	Note      string                 `gorm:"type:varchar(255)" json:"note"`
	CreatedAt time.Time              `gorm:"not null;index" json:"created_at"`
}
