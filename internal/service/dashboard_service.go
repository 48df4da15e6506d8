package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
)

const topDishLimit = 10

// 计入营业额的状态，已取消的订单不算
var revenueStatuses = []model.OrderStatus{
	model.OrderStatusPending,
	model.OrderStatusConfirmed,
	model.OrderStatusPreparing,
	model.OrderStatusReady,
	model.OrderStatusCompleted,
}

// Dashboard 后台首页统计
type Dashboard struct {
	Date          string                 `json:"date"`
	OrderCount    int64                  `json:"order_count"`
	Revenue       decimal.Decimal        `json:"revenue"`
	ActiveMembers int64                  `json:"active_members"`
	MemberBalance decimal.Decimal        `json:"member_balance"`
	TopDishes     []repository.DishSales `json:"top_dishes"`
}

// DashboardService 只读统计
type DashboardService struct {
	store *repository.Store
	now   func() time.Time
}

func NewDashboardService(store *repository.Store) *DashboardService {
	return &DashboardService{store: store, now: time.Now}
}

// Summary 今日订单数与营业额、在用会员数与余额合计、热销菜品前十
func (s *DashboardService) Summary(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, 1)
	today := repository.OrderFilter{Statuses: revenueStatuses, From: &from, To: &to}

	d := &Dashboard{Date: from.Format("2006-01-02")}
	var err error
	if d.OrderCount, err = s.store.Orders.Count(ctx, today); err != nil {
		return nil, storeErr(err)
	}
	if d.Revenue, err = s.store.Orders.SumFinalAmount(ctx, today); err != nil {
		return nil, storeErr(err)
	}
	if d.ActiveMembers, d.MemberBalance, err = s.store.Members.ActiveTotals(ctx); err != nil {
		return nil, storeErr(err)
	}
	d.TopDishes, err = s.store.Orders.TopDishes(ctx, repository.OrderFilter{Statuses: revenueStatuses}, topDishLimit)
	if err != nil {
		return nil, storeErr(err)
	}
	if d.TopDishes == nil {
		d.TopDishes = []repository.DishSales{}
	}
	return d, nil
}
