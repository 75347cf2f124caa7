package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// 残高不足（Debitで返す）
	ErrInsufficientBalance = errors.New("insufficient balance")
)
