package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

// gormOrderRepository 单库订单仓储实现
type gormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

// Create 创建订单，明细随 Items 关联一并插入
func (r *gormOrderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// GetByID 根据ID查询订单
func (r *gormOrderRepository) GetByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Table").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Table").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// applyFilter 列名带 orders. 前缀，联表查询时不会歧义
func applyFilter(q *gorm.DB, f OrderFilter) *gorm.DB {
	if len(f.Statuses) > 0 {
		q = q.Where("orders.status IN ?", f.Statuses)
	}
	if f.TableID != 0 {
		q = q.Where("orders.table_id = ?", f.TableID)
	}
	if f.MemberID != 0 {
		q = q.Where("orders.member_id = ?", f.MemberID)
	}
	if f.From != nil {
		q = q.Where("orders.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("orders.created_at < ?", *f.To)
	}
	return q
}

// List 分页查询订单
func (r *gormOrderRepository) List(ctx context.Context, f OrderFilter) ([]*model.Order, int64, error) {
	q := applyFilter(r.db.WithContext(ctx).Model(&model.Order{}), f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}

	sort := "orders.created_at DESC, orders.id DESC"
	if f.OldestFirst {
		sort = "orders.created_at ASC, orders.id ASC"
	}
	var orders []*model.Order
	err := q.Preload("Items").Preload("Table").
		Order(sort).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// GetByMemberID 根据会员ID查询订单列表
func (r *gormOrderRepository) GetByMemberID(ctx context.Context, memberID uint, limit int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus 更新订单状态
func (r *gormOrderRepository) UpdateStatus(ctx context.Context, id uint, from, to model.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

// Count 统计订单数量
func (r *gormOrderRepository) Count(ctx context.Context, f OrderFilter) (int64, error) {
	var count int64
	err := applyFilter(r.db.WithContext(ctx).Model(&model.Order{}), f).Count(&count).Error
	return count, err
}

// SumFinalAmount 逐行取出后用 decimal 累加，不依赖数据库的浮点 SUM
func (r *gormOrderRepository) SumFinalAmount(ctx context.Context, f OrderFilter) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := applyFilter(r.db.WithContext(ctx).Model(&model.Order{}), f).
		Pluck("orders.final_amount", &amounts).Error
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	return sum.Round(2), nil
}

func (r *gormOrderRepository) TopDishes(ctx context.Context, f OrderFilter, limit int) ([]DishSales, error) {
	if limit <= 0 {
		limit = 10
	}
	q := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.dish_id AS dish_id, dishes.name AS dish_name, SUM(order_items.quantity) AS quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN dishes ON dishes.id = order_items.dish_id")
	var res []DishSales
	err := applyFilter(q, f).
		Group("order_items.dish_id, dishes.name").
		Order("quantity DESC, order_items.dish_id ASC").
		Limit(limit).
		Scan(&res).Error
	if err != nil {
		return nil, err
	}
	return res, nil
}
