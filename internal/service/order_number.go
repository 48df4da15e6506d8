package service

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderNumberFunc 生成订单号；唯一性由数据库唯一索引兜底
type OrderNumberFunc func(now time.Time) string

// DefaultOrderNumber 形如 20261016123045-4821：秒级时间戳 + 4 位随机后缀
func DefaultOrderNumber(now time.Time) string {
	u := uuid.New()
	suffix := binary.BigEndian.Uint32(u[:4]) % 10000
	return fmt.Sprintf("%s-%04d", now.Format("20060102150405"), suffix)
}
