package repository

import (
	"context"

	"wheats/internal/domain/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
	// ユーザー行をロックして同一ユーザーの更新系を直列化する
	LockByID(ctx context.Context, userID int64) error
}
