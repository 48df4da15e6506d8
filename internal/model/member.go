package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member 会员：预存余额 + 消费统计
type Member struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name" gorm:"type:varchar(64);not null"`
	Phone          string          `json:"phone" gorm:"type:varchar(20);uniqueIndex;not null"`
	Balance        decimal.Decimal `json:"balance" gorm:"type:decimal(12,2);not null"`
	TotalSpent     decimal.Decimal `json:"total_spent" gorm:"type:decimal(12,2);not null"`
	TotalRecharged decimal.Decimal `json:"total_recharged" gorm:"type:decimal(12,2);not null"`
	VisitCount     int             `json:"visit_count" gorm:"not null;default:0"`
	LastVisit      *time.Time      `json:"last_visit,omitempty"`
	Status         Lifecycle       `json:"status" gorm:"type:varchar(16);index;not null;default:'active'"`
	// 乐观锁版本号，每次余额变动 +1
	Version   int       `json:"-" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Member) TableName() string { return "members" }
