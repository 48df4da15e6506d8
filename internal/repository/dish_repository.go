package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

// ErrStockInsufficient 有限库存不足以扣减
var ErrStockInsufficient = errors.New("stock insufficient")

// DishFilter 菜品查询条件
type DishFilter struct {
	CategoryID      uint
	IncludeInactive bool
	Keyword         string
	Offset          int
	Limit           int
}

// DishRepository 菜品仓储接口
type DishRepository interface {
	Create(ctx context.Context, d *model.Dish) error
	GetByID(ctx context.Context, id uint) (*model.Dish, error)
	// GetByIDs 批量读取，按 id 建索引；不存在的 id 不在结果中
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*model.Dish, error)
	List(ctx context.Context, f DishFilter) ([]*model.Dish, int64, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	ReplaceCategories(ctx context.Context, d *model.Dish, categories []model.Category) error
	SetStatus(ctx context.Context, id uint, status model.Lifecycle) error
	IncrementSold(ctx context.Context, id uint, qty int) error
	DecrementSold(ctx context.Context, id uint, qty int) error
	// DecrementStock 仅对有限库存生效，库存不足返回 ErrStockInsufficient
	DecrementStock(ctx context.Context, id uint, qty int) error
	RestoreStock(ctx context.Context, id uint, qty int) error
}

type dishRepository struct{ db *gorm.DB }

func NewDishRepository(db *gorm.DB) DishRepository { return &dishRepository{db: db} }

func (r *dishRepository) Create(ctx context.Context, d *model.Dish) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *dishRepository) GetByID(ctx context.Context, id uint) (*model.Dish, error) {
	var d model.Dish
	if err := r.db.WithContext(ctx).Preload("Categories").First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *dishRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*model.Dish, error) {
	var dishes []*model.Dish
	if len(ids) == 0 {
		return map[uint]*model.Dish{}, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&dishes).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]*model.Dish, len(dishes))
	for _, d := range dishes {
		out[d.ID] = d
	}
	return out, nil
}

func (r *dishRepository) List(ctx context.Context, f DishFilter) ([]*model.Dish, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Dish{})
	if !f.IncludeInactive {
		q = q.Where("dishes.status = ?", model.LifecycleActive)
	}
	if f.CategoryID != 0 {
		q = q.Joins("JOIN dish_categories dc ON dc.dish_id = dishes.id").
			Where("dc.category_id = ?", f.CategoryID)
	}
	if f.Keyword != "" {
		q = q.Where("dishes.name LIKE ?", "%"+f.Keyword+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	var res []*model.Dish
	err := q.Preload("Categories").
		Order("dishes.sort_order ASC, dishes.id ASC").
		Find(&res).Error
	return res, total, err
}

func (r *dishRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.Dish{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *dishRepository) ReplaceCategories(ctx context.Context, d *model.Dish, categories []model.Category) error {
	return r.db.WithContext(ctx).Model(d).Association("Categories").Replace(categories)
}

func (r *dishRepository) SetStatus(ctx context.Context, id uint, status model.Lifecycle) error {
	return r.Update(ctx, id, map[string]any{"status": status})
}

func (r *dishRepository) IncrementSold(ctx context.Context, id uint, qty int) error {
	return r.db.WithContext(ctx).
		Model(&model.Dish{}).
		Where("id = ?", id).
		UpdateColumn("sold_count", gorm.Expr("sold_count + ?", qty)).Error
}

func (r *dishRepository) DecrementSold(ctx context.Context, id uint, qty int) error {
	return r.db.WithContext(ctx).
		Model(&model.Dish{}).
		Where("id = ?", id).
		UpdateColumn("sold_count", gorm.Expr("CASE WHEN sold_count >= ? THEN sold_count - ? ELSE 0 END", qty, qty)).Error
}

func (r *dishRepository) DecrementStock(ctx context.Context, id uint, qty int) error {
	res := r.db.WithContext(ctx).
		Model(&model.Dish{}).
		Where("id = ? AND stock >= 0", id).
		Where("stock >= ?", qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	// 未命中：要么不限量，要么库存不足
	var stocks []int
	if err := r.db.WithContext(ctx).Model(&model.Dish{}).Where("id = ?", id).Pluck("stock", &stocks).Error; err != nil {
		return err
	}
	if len(stocks) == 0 {
		return gorm.ErrRecordNotFound
	}
	if stocks[0] == model.UnlimitedStock {
		return nil
	}
	return ErrStockInsufficient
}

func (r *dishRepository) RestoreStock(ctx context.Context, id uint, qty int) error {
	return r.db.WithContext(ctx).
		Model(&model.Dish{}).
		Where("id = ? AND stock >= 0", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}
