package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/payment"
)

func TestDashboardSummary(t *testing.T) {
	f := newFixture(t)
	f.setBalance(t, "100.00")
	svc := NewOrderService(f.store, nil, WithOrderNumber(seqNumbers()))
	ctx := context.Background()

	place := func(dish *model.Dish, qty int, method payment.Method, member *uint) *model.Order {
		t.Helper()
		o, err := svc.CreateOrder(ctx, CreateOrderInput{
			TableID:       f.table.ID,
			MemberID:      member,
			Items:         []CartItem{{DishID: dish.ID, Quantity: qty}},
			PaymentMethod: method,
		})
		require.NoError(t, err)
		return o
	}

	place(f.dishA, 2, payment.MethodCash, nil)                      // 56.00
	place(f.dishB, 1, payment.MethodBalance, memberID(f.member.ID)) // 18.00
	cancelled := place(f.dishC, 3, payment.MethodCash, nil)         // 120.00
	_, err := svc.CancelOrder(ctx, cancelled.ID)
	require.NoError(t, err)
	old := place(f.dishB, 1, payment.MethodCash, nil)
	require.NoError(t, f.db.Model(&model.Order{}).Where("id = ?", old.ID).
		Update("created_at", time.Now().AddDate(0, 0, -2)).Error)

	retired := &model.Member{Name: "bob", Phone: "13800000002", Balance: dec("500.00"), Status: model.LifecycleInactive}
	mustCreate(t, f.store.Members.Create(ctx, retired))

	d, err := NewDashboardService(f.store).Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, time.Now().Format("2006-01-02"), d.Date)
	assert.EqualValues(t, 2, d.OrderCount)
	assert.Equal(t, "74.00", d.Revenue.StringFixed(2))
	assert.EqualValues(t, 1, d.ActiveMembers)
	assert.Equal(t, "82.00", d.MemberBalance.StringFixed(2))

	// 热销榜不限日期，已取消订单的菜品不上榜
	require.Len(t, d.TopDishes, 2)
	assert.Equal(t, f.dishA.ID, d.TopDishes[0].DishID)
	assert.EqualValues(t, 2, d.TopDishes[0].Quantity)
	assert.Equal(t, f.dishB.ID, d.TopDishes[1].DishID)
	assert.EqualValues(t, 2, d.TopDishes[1].Quantity)
}

func TestDashboardSummary_Empty(t *testing.T) {
	store, _ := setupStore(t)

	d, err := NewDashboardService(store).Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, d.OrderCount)
	assert.True(t, d.Revenue.IsZero())
	assert.Zero(t, d.ActiveMembers)
	assert.NotNil(t, d.TopDishes)
	assert.Empty(t, d.TopDishes)
}
