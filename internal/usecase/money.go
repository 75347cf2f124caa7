package usecase

import (
	"errors"
	"math"
)

// 1明細あたりの上限数量
const MaxLineQuantity int64 = 99

var errAmountOverflow = errors.New("amount overflows int64")

// unitPrice × quantity。どちらも0以上が前提。
func linePrice(unitPrice, quantity int64) (int64, error) {
	if unitPrice < 0 || quantity < 0 {
		return 0, errAmountOverflow
	}
	if quantity != 0 && unitPrice > math.MaxInt64/quantity {
		return 0, errAmountOverflow
	}
	return unitPrice * quantity, nil
}

func addAmount(a, b int64) (int64, error) {
	if a < 0 || b < 0 || a > math.MaxInt64-b {
		return 0, errAmountOverflow
	}
	return a + b, nil
}
