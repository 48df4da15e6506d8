// Package seed 首次启动时写入默认账号、餐桌与演示菜单，可重复执行
package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/d60-Lab/restaurant-pos/config"
	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/pkg/logger"
)

const tableCount = 10

type demoDish struct {
	name     string
	category string
	price    string
}

var demoCategories = []string{"热菜", "凉菜", "汤类", "主食", "饮料", "小吃"}

var demoDishes = []demoDish{
	{"宫保鸡丁", "热菜", "28.00"},
	{"麻婆豆腐", "热菜", "18.00"},
	{"红烧肉", "热菜", "35.00"},
	{"西红柿鸡蛋", "热菜", "15.00"},
	{"酸辣土豆丝", "凉菜", "12.00"},
	{"紫菜蛋花汤", "汤类", "8.00"},
	{"米饭", "主食", "2.00"},
	{"可乐", "饮料", "5.00"},
	{"雪花啤酒", "饮料", "8.00"},
	{"春卷", "小吃", "6.00"},
}

// Run 账号表为空时创建 admin / kitchen；餐桌与菜单只在对应表为空时写入
func Run(ctx context.Context, cfg config.SeedConfig, store *repository.Store, users *service.AuthService, menu *service.MenuService, tables *service.TableService) error {
	n, err := store.Users.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := users.CreateUser(ctx, "admin", cfg.AdminPassword, "系统管理员", model.RoleAdmin); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if _, err := users.CreateUser(ctx, "kitchen", cfg.KitchenPassword, "厨房", model.RoleKitchen); err != nil {
			return fmt.Errorf("seed kitchen: %w", err)
		}
		logger.Info("seeded system users")
	}

	existing, err := tables.List(ctx, true)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		for i := 1; i <= tableCount; i++ {
			if _, err := tables.Create(ctx, fmt.Sprintf("T%02d", i), 4); err != nil {
				return fmt.Errorf("seed table: %w", err)
			}
		}
		logger.Info("seeded tables", zap.Int("count", tableCount))
	}

	cats, err := menu.ListCategories(ctx, true)
	if err != nil {
		return err
	}
	if len(cats) > 0 {
		return nil
	}
	ids := make(map[string]uint, len(demoCategories))
	for i, name := range demoCategories {
		c, err := menu.CreateCategory(ctx, name, i+1)
		if err != nil {
			return fmt.Errorf("seed category: %w", err)
		}
		ids[name] = c.ID
	}
	for i, d := range demoDishes {
		_, err := menu.CreateDish(ctx, service.DishInput{
			Name:        d.name,
			Price:       decimal.RequireFromString(d.price),
			Stock:       model.UnlimitedStock,
			SortOrder:   i + 1,
			CategoryIDs: []uint{ids[d.category]},
		})
		if err != nil {
			return fmt.Errorf("seed dish %s: %w", d.name, err)
		}
	}
	logger.Info("seeded demo menu", zap.Int("dishes", len(demoDishes)))
	return nil
}
