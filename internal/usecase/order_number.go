package usecase

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type OrderNumberGenerator interface {
	Next(now time.Time) string
}

// ORD-YYYYMMDD-<uuid先頭8byteのhex>
// ミリ秒だけだと同時刻で衝突するのでランダム部を持たせる。UNIQUE制約が最後の砦。
type UUIDOrderNumbers struct{}

func (UUIDOrderNumbers) Next(now time.Time) string {
	id := uuid.New()
	return "ORD-" + now.Format("20060102") + "-" + hex.EncodeToString(id[:8])
}
