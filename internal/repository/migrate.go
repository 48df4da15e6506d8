package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

// AutoMigrate 初始化数据库表结构
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.SystemUser{},
		&model.Table{},
		&model.Category{},
		&model.Dish{},
		&model.Member{},
		&model.Order{},
		&model.OrderItem{},
		&model.RechargeRecord{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
