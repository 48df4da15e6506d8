package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

// OrderFilter 订单列表查询条件
type OrderFilter struct {
	Statuses []model.OrderStatus
	TableID  uint
	MemberID uint
	// From/To 下单时间区间 [From, To)
	From   *time.Time
	To     *time.Time
	Offset int
	Limit  int
	// OldestFirst 按下单时间正序（后厨队列）
	OldestFirst bool
}

// DishSales 菜品销量汇总
type DishSales struct {
	DishID   uint   `json:"dish_id"`
	DishName string `json:"dish_name"`
	Quantity int64  `json:"quantity"`
}

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Create 创建订单及其明细
	Create(ctx context.Context, order *model.Order) error

	// GetByID 根据ID查询订单（含明细与餐桌）
	GetByID(ctx context.Context, id uint) (*model.Order, error)

	// GetByOrderNumber 根据订单号查询
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error)

	// List 分页查询订单
	List(ctx context.Context, f OrderFilter) ([]*model.Order, int64, error)

	// GetByMemberID 查询会员最近订单
	GetByMemberID(ctx context.Context, memberID uint, limit int) ([]*model.Order, error)

	// UpdateStatus 以当前状态为条件推进状态，未命中返回 ErrStaleVersion
	UpdateStatus(ctx context.Context, id uint, from, to model.OrderStatus) error

	// Count 按条件统计订单数量（忽略分页）
	Count(ctx context.Context, f OrderFilter) (int64, error)

	// SumFinalAmount 按条件汇总实付金额
	SumFinalAmount(ctx context.Context, f OrderFilter) (decimal.Decimal, error)

	// TopDishes 按明细数量汇总菜品销量，取前 limit 名
	TopDishes(ctx context.Context, f OrderFilter, limit int) ([]DishSales, error)
}
