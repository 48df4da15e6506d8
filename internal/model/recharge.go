package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RechargeRecord 充值流水，只追加不修改
// after_balance = before_balance + amount
type RechargeRecord struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	MemberID      uint            `json:"member_id" gorm:"index;not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	BeforeBalance decimal.Decimal `json:"before_balance" gorm:"type:decimal(12,2);not null"`
	AfterBalance  decimal.Decimal `json:"after_balance" gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `json:"payment_method" gorm:"type:varchar(16);not null"`
	OperatorID    uint            `json:"operator_id" gorm:"index;not null"`
	Remark        string          `json:"remark" gorm:"type:varchar(255)"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
}

func (RechargeRecord) TableName() string { return "recharge_records" }
