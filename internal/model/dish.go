package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnlimitedStock 库存不限
const UnlimitedStock = -1

// Dish 菜品
type Dish struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	Name        string           `json:"name" gorm:"type:varchar(64);not null"`
	Description string           `json:"description" gorm:"type:text"`
	ImageURL    string           `json:"image_url" gorm:"type:varchar(255)"`
	Price       decimal.Decimal  `json:"price" gorm:"type:decimal(10,2);not null"`
	MemberPrice *decimal.Decimal `json:"member_price,omitempty" gorm:"type:decimal(10,2)"`
	SoldCount   int              `json:"sold_count" gorm:"not null;default:0"`
	Stock       int              `json:"stock" gorm:"not null"` // -1 表示不限量
	SortOrder   int              `json:"sort_order" gorm:"not null;default:0"`
	Status      Lifecycle        `json:"status" gorm:"type:varchar(16);index;not null;default:'active'"`
	Categories  []Category       `json:"categories,omitempty" gorm:"many2many:dish_categories;"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (Dish) TableName() string { return "dishes" }

// HasStock 库存是否足够 qty 份
func (d *Dish) HasStock(qty int) bool {
	return d.Stock == UnlimitedStock || d.Stock >= qty
}

// UnitPriceFor 会员价仅在有会员且设置了会员价时生效
func (d *Dish) UnitPriceFor(isMember bool) decimal.Decimal {
	if isMember && d.MemberPrice != nil {
		return *d.MemberPrice
	}
	return d.Price
}

// Category 菜品分类
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(32);uniqueIndex;not null"`
	SortOrder int       `json:"sort_order" gorm:"not null;default:0"`
	Status    Lifecycle `json:"status" gorm:"type:varchar(16);index;not null;default:'active'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string { return "categories" }
