package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/d60-Lab/restaurant-pos/internal/cache"
	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
	"github.com/d60-Lab/restaurant-pos/pkg/logger"
)

// MenuService 菜品、分类管理与前台菜单
type MenuService struct {
	store *repository.Store
	cache *cache.MenuCache
}

// NewMenuService menuCache 可以为 nil
func NewMenuService(store *repository.Store, menuCache *cache.MenuCache) *MenuService {
	return &MenuService{store: store, cache: menuCache}
}

// ActiveMenu 前台菜单：在售分类 + 在售菜品，优先读缓存
func (s *MenuService) ActiveMenu(ctx context.Context) (*cache.Menu, error) {
	if m, ok := s.cache.Get(ctx); ok {
		return m, nil
	}
	cats, err := s.store.Categories.List(ctx, false)
	if err != nil {
		return nil, storeErr(err)
	}
	dishes, _, err := s.store.Dishes.List(ctx, repository.DishFilter{})
	if err != nil {
		return nil, storeErr(err)
	}
	m := &cache.Menu{Categories: cats, Dishes: dishes, BuiltAt: time.Now()}
	if err := s.cache.Set(ctx, m); err != nil {
		logger.Warn("menu cache set failed", zap.Error(err))
	}
	return m, nil
}

func (s *MenuService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("menu cache invalidate failed", zap.Error(err))
	}
}

// DishInput 新建菜品；CategoryIDs 为空表示不归类
type DishInput struct {
	Name        string
	Description string
	ImageURL    string
	Price       decimal.Decimal
	MemberPrice *decimal.Decimal
	Stock       int
	SortOrder   int
	CategoryIDs []uint
}

// DishUpdate nil 字段不修改；CategoryIDs 非 nil 时整体替换
type DishUpdate struct {
	Name        *string
	Description *string
	ImageURL    *string
	Price       *decimal.Decimal
	MemberPrice *decimal.Decimal
	Stock       *int
	SortOrder   *int
	CategoryIDs []uint
}

func validatePrice(p decimal.Decimal) error {
	if p.IsNegative() || !p.Equal(p.Round(2)) {
		return ErrInvalidAmount
	}
	return nil
}

func validateStock(stock int) error {
	if stock < model.UnlimitedStock {
		return ErrInvalidAmount
	}
	return nil
}

// ListDishes 后台菜品列表，可包含已下架
func (s *MenuService) ListDishes(ctx context.Context, f repository.DishFilter) ([]*model.Dish, int64, error) {
	res, total, err := s.store.Dishes.List(ctx, f)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return res, total, nil
}

func (s *MenuService) GetDish(ctx context.Context, id uint) (*model.Dish, error) {
	d, err := s.store.Dishes.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, withID(ErrDishNotFound, id)
		}
		return nil, storeErr(err)
	}
	return d, nil
}

func (s *MenuService) CreateDish(ctx context.Context, in DishInput) (*model.Dish, error) {
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	if in.MemberPrice != nil {
		if err := validatePrice(*in.MemberPrice); err != nil {
			return nil, err
		}
	}
	if err := validateStock(in.Stock); err != nil {
		return nil, err
	}
	d := &model.Dish{
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Price:       in.Price,
		MemberPrice: in.MemberPrice,
		Stock:       in.Stock,
		SortOrder:   in.SortOrder,
		Status:      model.LifecycleActive,
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		cats, err := s.loadCategories(ctx, tx, in.CategoryIDs)
		if err != nil {
			return err
		}
		d.Categories = cats
		if err := tx.Dishes.Create(ctx, d); err != nil {
			return storeErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return d, nil
}

func (s *MenuService) UpdateDish(ctx context.Context, id uint, in DishUpdate) (*model.Dish, error) {
	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.ImageURL != nil {
		updates["image_url"] = *in.ImageURL
	}
	if in.Price != nil {
		if err := validatePrice(*in.Price); err != nil {
			return nil, err
		}
		updates["price"] = *in.Price
	}
	if in.MemberPrice != nil {
		if err := validatePrice(*in.MemberPrice); err != nil {
			return nil, err
		}
		updates["member_price"] = *in.MemberPrice
	}
	if in.Stock != nil {
		if err := validateStock(*in.Stock); err != nil {
			return nil, err
		}
		updates["stock"] = *in.Stock
	}
	if in.SortOrder != nil {
		updates["sort_order"] = *in.SortOrder
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		d, err := tx.Dishes.GetByID(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return withID(ErrDishNotFound, id)
			}
			return storeErr(err)
		}
		if len(updates) > 0 {
			if err := tx.Dishes.Update(ctx, id, updates); err != nil {
				return storeErr(err)
			}
		}
		if in.CategoryIDs != nil {
			cats, err := s.loadCategories(ctx, tx, in.CategoryIDs)
			if err != nil {
				return err
			}
			if err := tx.Dishes.ReplaceCategories(ctx, d, cats); err != nil {
				return storeErr(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.GetDish(ctx, id)
}

// SetDishActive 上架或下架；下架菜品不能再被点，历史明细保留冻结价格
func (s *MenuService) SetDishActive(ctx context.Context, id uint, active bool) (*model.Dish, error) {
	if err := s.store.Dishes.SetStatus(ctx, id, lifecycleOf(active)); err != nil {
		if repository.IsNotFound(err) {
			return nil, withID(ErrDishNotFound, id)
		}
		return nil, storeErr(err)
	}
	s.invalidate(ctx)
	return s.GetDish(ctx, id)
}

func (s *MenuService) loadCategories(ctx context.Context, tx *repository.Store, ids []uint) ([]model.Category, error) {
	if len(ids) == 0 {
		return []model.Category{}, nil
	}
	uniq := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		uniq[id] = struct{}{}
	}
	cats, err := tx.Categories.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err)
	}
	if len(cats) != len(uniq) {
		return nil, ErrCategoryNotFound
	}
	return cats, nil
}

// ListCategories 分类列表
func (s *MenuService) ListCategories(ctx context.Context, includeInactive bool) ([]*model.Category, error) {
	res, err := s.store.Categories.List(ctx, includeInactive)
	if err != nil {
		return nil, storeErr(err)
	}
	return res, nil
}

func (s *MenuService) CreateCategory(ctx context.Context, name string, sortOrder int) (*model.Category, error) {
	c := &model.Category{Name: name, SortOrder: sortOrder, Status: model.LifecycleActive}
	if err := s.store.Categories.Create(ctx, c); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrNameTaken
		}
		return nil, storeErr(err)
	}
	s.invalidate(ctx)
	return c, nil
}

// UpdateCategory nil 字段不修改
func (s *MenuService) UpdateCategory(ctx context.Context, id uint, name *string, sortOrder *int, active *bool) (*model.Category, error) {
	updates := map[string]any{}
	if name != nil {
		updates["name"] = *name
	}
	if sortOrder != nil {
		updates["sort_order"] = *sortOrder
	}
	if active != nil {
		updates["status"] = lifecycleOf(*active)
	}
	if len(updates) > 0 {
		if err := s.store.Categories.Update(ctx, id, updates); err != nil {
			switch {
			case repository.IsNotFound(err):
				return nil, withID(ErrCategoryNotFound, id)
			case repository.IsDuplicateKey(err):
				return nil, ErrNameTaken
			default:
				return nil, storeErr(err)
			}
		}
		s.invalidate(ctx)
	}
	c, err := s.store.Categories.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, withID(ErrCategoryNotFound, id)
		}
		return nil, storeErr(err)
	}
	return c, nil
}

func lifecycleOf(active bool) model.Lifecycle {
	if active {
		return model.LifecycleActive
	}
	return model.LifecycleInactive
}
