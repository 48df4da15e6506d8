package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 订单状态，线性流转 pending -> confirmed -> preparing -> ready -> completed
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderFlow = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusCompleted,
}

// Next 返回线性流程中的下一个状态；终态返回 false
func (s OrderStatus) Next() (OrderStatus, bool) {
	for i, st := range orderFlow {
		if st == s && i+1 < len(orderFlow) {
			return orderFlow[i+1], true
		}
	}
	return "", false
}

// Cancellable 只有厨房尚未开工的订单可以取消
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

func (s OrderStatus) Valid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	for _, st := range orderFlow {
		if st == s {
			return true
		}
	}
	return false
}

// Order 订单
type Order struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	OrderNumber   string          `json:"order_number" gorm:"type:varchar(32);uniqueIndex;not null"`
	TableID       uint            `json:"table_id" gorm:"index;not null"`
	Table         *Table          `json:"table,omitempty" gorm:"foreignKey:TableID"`
	MemberID      *uint           `json:"member_id,omitempty" gorm:"index"`
	Member        *Member         `json:"member,omitempty" gorm:"foreignKey:MemberID"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(16);index;not null;default:'pending'"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Discount      decimal.Decimal `json:"discount" gorm:"type:decimal(12,2);not null"`
	FinalAmount   decimal.Decimal `json:"final_amount" gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `json:"payment_method" gorm:"type:varchar(16);not null"`
	BalanceUsed   decimal.Decimal `json:"balance_used" gorm:"type:decimal(12,2);not null"`
	CashAmount    decimal.Decimal `json:"cash_amount" gorm:"type:decimal(12,2);not null"`
	Remark        string          `json:"remark" gorm:"type:varchar(255)"`
	Items         []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单明细，单价与小计在下单时冻结
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"order_id" gorm:"index;not null"`
	DishID    uint            `json:"dish_id" gorm:"index;not null"`
	DishName  string          `json:"dish_name" gorm:"type:varchar(64);not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
}

func (OrderItem) TableName() string { return "order_items" }
