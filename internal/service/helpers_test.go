package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setupStore(tb testing.TB) (*repository.Store, *gorm.DB) {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })
	if err := repository.AutoMigrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return repository.NewStore(db), db
}

// fixture 一张桌子、三道菜、一个余额为 0 的会员
type fixture struct {
	store  *repository.Store
	db     *gorm.DB
	table  *model.Table
	dishA  *model.Dish // 28.00
	dishB  *model.Dish // 18.00
	dishC  *model.Dish // 40.00
	member *model.Member
}

func newFixture(tb testing.TB) *fixture {
	tb.Helper()
	store, db := setupStore(tb)
	ctx := context.Background()
	f := &fixture{store: store, db: db}

	f.table = &model.Table{Number: "T01", Seats: 4, Status: model.LifecycleActive}
	mustCreate(tb, store.Tables.Create(ctx, f.table))
	f.dishA = seedDish(tb, store, "braised fish", "28.00", model.UnlimitedStock)
	f.dishB = seedDish(tb, store, "mapo tofu", "18.00", model.UnlimitedStock)
	f.dishC = seedDish(tb, store, "duck", "40.00", model.UnlimitedStock)

	f.member = &model.Member{Name: "alice", Phone: "13800000001", Status: model.LifecycleActive}
	mustCreate(tb, store.Members.Create(ctx, f.member))
	return f
}

func mustCreate(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatalf("create: %v", err)
	}
}

func seedDish(tb testing.TB, store *repository.Store, name, price string, stock int) *model.Dish {
	tb.Helper()
	d := &model.Dish{Name: name, Price: dec(price), Stock: stock, Status: model.LifecycleActive}
	mustCreate(tb, store.Dishes.Create(context.Background(), d))
	return d
}

func (f *fixture) setBalance(tb testing.TB, balance string) {
	tb.Helper()
	err := f.db.Model(&model.Member{}).Where("id = ?", f.member.ID).Update("balance", dec(balance)).Error
	mustCreate(tb, err)
}

func (f *fixture) reloadMember(tb testing.TB) *model.Member {
	tb.Helper()
	m, err := f.store.Members.GetByID(context.Background(), f.member.ID)
	mustCreate(tb, err)
	return m
}

func (f *fixture) reloadDish(tb testing.TB, id uint) *model.Dish {
	tb.Helper()
	d, err := f.store.Dishes.GetByID(context.Background(), id)
	mustCreate(tb, err)
	return d
}

func (f *fixture) orderCount(tb testing.TB) int64 {
	tb.Helper()
	n, err := f.store.Orders.Count(context.Background(), repository.OrderFilter{})
	mustCreate(tb, err)
	return n
}

// seqNumbers 并发安全的顺序订单号
func seqNumbers() OrderNumberFunc {
	var n atomic.Int64
	return func(time.Time) string {
		return fmt.Sprintf("T%010d", n.Add(1))
	}
}

func memberID(id uint) *uint { return &id }
