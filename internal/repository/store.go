package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrStaleVersion 条件更新未命中（版本号或状态已被并发修改）
var ErrStaleVersion = errors.New("row was modified concurrently")

// Store 聚合所有仓储；在事务内由 tx 重新构造，保证同一事务共享连接
type Store struct {
	db *gorm.DB

	Members    MemberRepository
	Dishes     DishRepository
	Categories CategoryRepository
	Tables     TableRepository
	Orders     OrderRepository
	Recharges  RechargeRepository
	Users      UserRepository
}

// NewStore 基于 db（或 tx）创建仓储集合
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Members:    NewMemberRepository(db),
		Dishes:     NewDishRepository(db),
		Categories: NewCategoryRepository(db),
		Tables:     NewTableRepository(db),
		Orders:     NewOrderRepository(db),
		Recharges:  NewRechargeRepository(db),
		Users:      NewUserRepository(db),
	}
}

// DB 底层连接
func (s *Store) DB() *gorm.DB { return s.db }

// Transaction 在单个事务内执行 fn；fn 返回错误或 panic 时整体回滚
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// IsNotFound 记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey 唯一约束冲突
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 未开启 TranslateError 的连接兜底
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
