package model

import "time"

// Table 餐桌（点餐位置），订单流程只读
type Table struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Number    string    `json:"number" gorm:"type:varchar(16);uniqueIndex;not null"`
	Seats     int       `json:"seats" gorm:"not null;default:4"`
	Status    Lifecycle `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Table) TableName() string { return "tables" }
