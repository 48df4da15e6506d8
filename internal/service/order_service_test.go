package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/payment"
	"github.com/d60-Lab/restaurant-pos/internal/pricing"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
)

func TestCreateOrder_CashCart(t *testing.T) {
	f := newFixture(t)
	svc := NewOrderService(f.store, nil, WithOrderNumber(seqNumbers()))

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		TableID: f.table.ID,
		Items: []CartItem{
			{DishID: f.dishA.ID, Quantity: 2},
			{DishID: f.dishB.ID, Quantity: 1},
		},
		PaymentMethod: payment.MethodCash,
	})
	require.NoError(t, err)

	assert.Equal(t, "74.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", order.Discount.StringFixed(2))
	assert.Equal(t, "74.00", order.FinalAmount.StringFixed(2))
	assert.Equal(t, "74.00", order.CashAmount.StringFixed(2))
	assert.True(t, order.BalanceUsed.IsZero())
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.NotEmpty(t, order.OrderNumber)

	got, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "56.00", got.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "28.00", got.Items[0].Price.StringFixed(2))
	assert.Equal(t, "T01", got.Table.Number)

	assert.Equal(t, 2, f.reloadDish(t, f.dishA.ID).SoldCount)
	assert.Equal(t, 1, f.reloadDish(t, f.dishB.ID).SoldCount)

	// 现金支付不动会员统计
	m := f.reloadMember(t)
	assert.Equal(t, 0, m.VisitCount)
}

func TestCreateOrder_InsufficientBalanceLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	f.setBalance(t, "50.00")
	svc := NewOrderService(f.store, nil, WithOrderNumber(seqNumbers()))

	before := f.reloadMember(t)
	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		TableID:  f.table.ID,
		MemberID: memberID(f.member.ID),
		Items: []CartItem{
			{DishID: f.dishA.ID, Quantity: 2},
			{DishID: f.dishB.ID, Quantity: 1},
		},
		PaymentMethod: payment.MethodBalance,
	})
	require.ErrorIs(t, err, payment.ErrInsufficientBalance)

	assert.EqualValues(t, 0, f.orderCount(t))
	after := f.reloadMember(t)
	assert.True(t, before.Balance.Equal(after.Balance))
	assert.True(t, before.TotalSpent.Equal(after.TotalSpent))
	assert.Equal(t, before.VisitCount, after.VisitCount)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, 0, f.reloadDish(t, f.dishA.ID).SoldCount)
	assert.Equal(t, 0, f.reloadDish(t, f.dishB.ID).SoldCount)

	var items int64
	require.NoError(t, f.db.Model(&model.OrderItem{}).Count(&items).Error)
	assert.Zero(t, items)
}

func TestCreateOrder_BalancePayment(t *testing.T) {
	f := newFixture(t)
	f.setBalance(t, "50.00")
	svc := NewOrderService(f.store, nil, WithOrderNumber(seqNumbers()))

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		TableID:       f.table.ID,
		MemberID:      memberID(f.member.ID),
		Items:         []CartItem{{DishID: f.dishC.ID, Quantity: 1}},
		PaymentMethod: payment.MethodBalance,
	})
	require.NoError(t, err)
	assert.Equal(t, "40.00", order.BalanceUsed.StringFixed(2))
	assert.True(t, order.CashAmount.IsZero())
	assert.True(t, order.BalanceUsed.Add(order.CashAmount).Equal(order.FinalAmount))

	m := f.reloadMember(t)
	assert.Equal(t, "10.00", m.Balance.StringFixed(2))
	assert.Equal(t, "40.00", m.TotalSpent.StringFixed(2))
	assert.Equal(t, 1, m.VisitCount)
	assert.NotNil(t, m.LastVisit)
	assert.Equal(t, 1, m.Version)
}

func TestCreateOrder_MixedPayment(t *testing.T) {
	f := newFixture(t)
	f.setBalance(t, "30.00")
	svc := NewOrderService(f.store, nil, WithOrderNumber(seqNumbers()))

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		TableID:  f.table.ID,
		MemberID: memberID(f.member.ID),
		Items: []CartItem{
			{DishID: f.dishA.ID, Quantity: 2},
			{DishID: f.dishB.ID, Quantity: 1},
		},
		PaymentMethod: payment.MethodMixed,
		BalanceUsed:   dec("30.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "30.00", order.BalanceUsed.StringFixed(2))
	assert.Equal(t, "44.00", order.CashAmount.StringFixed(2))
	assert.True(t, f.reloadMember(t).Balance.IsZero())

	// 提议的余额超过实际余额时事务内拒绝
	_, err = svc.CreateOrder(context.Background(), CreateOrderInput{
		TableID:       f.table.ID,
		MemberID:      memberID(f.member.ID),
		Items:         []CartItem{{DishID: f.dishA.ID, Quantity: 1}},
		PaymentMethod: payment.MethodMixed,
		BalanceUsed:   dec("10.00"),
	})
	require.ErrorIs(t, err, payment.ErrInsufficientBalance)
	assert.EqualValues(t, 1, f.orderCount(t))
}

func TestCreateOrder_MemberPrice(t *testing.T) {
	f := newFixture(t)
	mp := dec("25.00")
	_, err := NewMenuService(f.store, nil).UpdateDish(context.Background(), f.dishA.ID, DishUpdate{MemberPrice: &mp})
	require.NoError(t, err)
	svc := NewOrderService(f.store, nil, WithOrderNumber(seqNumbers()))

	withMember, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		TableID:       f.table.ID,
		MemberID:      memberID(f.member.ID),
		Items:         []CartItem{{DishID: f.dishA.ID, Quantity: 2}},
		PaymentMethod: payment.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "50.00", withMember.FinalAmount.StringFixed(2))

	walkIn, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		TableID:       f.table.ID,
		Items:         []CartItem{{DishID: f.dishA.ID, Quantity: 2}},
		PaymentMethod: payment.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "56.00", walkIn.FinalAmount.StringFixed(2))
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	svc := NewOrderService(f.store, nil, WithOrderNumber(seqNumbers()))
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateOrderInput
		want error
	}{
		{"empty cart", CreateOrderInput{TableID: f.table.ID, PaymentMethod: payment.MethodCash}, pricing.ErrEmptyCart},
		{"zero quantity", CreateOrderInput{TableID: f.table.ID, PaymentMethod: payment.MethodCash,
			Items: []CartItem{{DishID: f.dishA.ID, Quantity: 0}}}, pricing.ErrInvalidQuantity},
		{"unknown method", CreateOrderInput{TableID: f.table.ID, PaymentMethod: "card",
			Items: []CartItem{{DishID: f.dishA.ID, Quantity: 1}}}, payment.ErrUnknownMethod},
		{"balance without member", CreateOrderInput{TableID: f.table.ID, PaymentMethod: payment.MethodBalance,
			Items: []CartItem{{DishID: f.dishA.ID, Quantity: 1}}}, payment.ErrMemberRequired},
		{"missing dish", CreateOrderInput{TableID: f.table.ID, PaymentMethod: payment.MethodCash,
			Items: []CartItem{{DishID: 9999, Quantity: 1}}}, ErrDishNotFound},
		{"missing table", CreateOrderInput{TableID: 9999, PaymentMethod: payment.MethodCash,
			Items: []CartItem{{DishID: f.dishA.ID, Quantity: 1}}}, ErrTableNotFound},
		{"missing member", CreateOrderInput{TableID: f.table.ID, MemberID: memberID(9999), PaymentMethod: payment.MethodCash,
			Items: []CartItem{{DishID: f.dishA.ID, Quantity: 1}}}, ErrMemberNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOrder(ctx, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
	assert.EqualValues(t, 0, f.orderCount(t))
}

func TestCreateOrder_InactiveDishRollsBack(t *testing.T) {
	f := newFixture(t)
	svc := NewOrderService(f.store, nil, WithOrderNumber(seqNumbers()))
	_, err := NewMenuService(f.store, nil).SetDishActive(context.Background(), f.dishB.ID, false)
	require.NoError(t, err)

	_, err = svc.CreateOrder(context.Background(), CreateOrderInput{
		TableID: f.table.ID,
		Items: []CartItem{
			{DishID: f.dishA.ID, Quantity: 1},
			{DishID: f.dishB.ID, Quantity: 1},
		},
		PaymentMethod: payment.MethodCash,
	})
	require.ErrorIs(t, err, ErrDishInactive)
	assert.EqualValues(t, 0, f.orderCount(t))
	assert.Equal(t, 0, f.reloadDish(t, f.dishA.ID).SoldCount)
}

func TestCreateOrder_Stock(t *testing.T) {
	f := newFixture(t)
	limited := seedDish(t, f.store, "crab", "88.00", 3)
	svc := NewOrderService(f.store, nil, WithOrderNumber(seqNumbers()))
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, CreateOrderInput{
		TableID:       f.table.ID,
		Items:         []CartItem{{DishID: limited.ID, Quantity: 2}},
		PaymentMethod: payment.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.reloadDish(t, limited.ID).Stock)

	_, err = svc.CreateOrder(ctx, CreateOrderInput{
		TableID: f.table.ID,
		Items: []CartItem{
			{DishID: f.dishA.ID, Quantity: 1},
			{DishID: limited.ID, Quantity: 2},
		},
		PaymentMethod: payment.MethodCash,
	})
	require.ErrorIs(t, err, ErrOutOfStock)

	d := f.reloadDish(t, limited.ID)
	assert.Equal(t, 1, d.Stock)
	assert.Equal(t, 2, d.SoldCount)
	assert.Equal(t, 0, f.reloadDish(t, f.dishA.ID).SoldCount)
	assert.EqualValues(t, 1, f.orderCount(t))
}

func TestCreateOrder_OrderNumberCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := CreateOrderInput{
		TableID:       f.table.ID,
		Items:         []CartItem{{DishID: f.dishA.ID, Quantity: 1}},
		PaymentMethod: payment.MethodCash,
	}

	// 第一次生成的号已被占用，重试换号成功
	numbers := []string{"N1", "N1", "N2"}
	var i int
	svc := NewOrderService(f.store, nil, WithOrderNumber(func(_ time.Time) string {
		n := numbers[i%len(numbers)]
		i++
		return n
	}))
	first, err := svc.CreateOrder(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "N1", first.OrderNumber)
	second, err := svc.CreateOrder(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "N2", second.OrderNumber)

	// 重试后仍冲突则返回瞬时错误，不留半条数据
	stuck := NewOrderService(f.store, nil, WithOrderNumber(func(time.Time) string { return "N1" }))
	_, err = stuck.CreateOrder(ctx, in)
	require.ErrorIs(t, err, ErrOrderNumberCollision)
	assert.EqualValues(t, 2, f.orderCount(t))
	assert.Equal(t, 2, f.reloadDish(t, f.dishA.ID).SoldCount)
}

func TestCreateOrder_ConcurrentBalanceNeverOverdraws(t *testing.T) {
	f := newFixture(t)
	f.setBalance(t, "100.00")
	svc := NewOrderService(f.store, nil, WithOrderNumber(seqNumbers()))
	recharge := NewRechargeService(f.store)

	const orders = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		recharged int
	)
	for i := 0; i < orders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
				TableID:       f.table.ID,
				MemberID:      memberID(f.member.ID),
				Items:         []CartItem{{DishID: f.dishC.ID, Quantity: 1}},
				PaymentMethod: payment.MethodBalance,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, payment.ErrInsufficientBalance)
			}
		}()
	}
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := recharge.RechargeMember(context.Background(), RechargeInput{
				MemberID:      f.member.ID,
				Amount:        dec("20.00"),
				PaymentMethod: payment.MethodCash,
				OperatorID:    1,
			})
			mu.Lock()
			defer mu.Unlock()
			if assert.NoError(t, err) {
				recharged++
			}
		}()
	}
	wg.Wait()

	m := f.reloadMember(t)
	expected := dec("100.00").
		Add(decimal.NewFromInt(int64(recharged * 20))).
		Sub(decimal.NewFromInt(int64(succeeded * 40)))
	assert.True(t, expected.Equal(m.Balance), "balance %s, expected %s", m.Balance, expected)
	assert.False(t, m.Balance.IsNegative())
	assert.Equal(t, succeeded, m.VisitCount)
	assert.EqualValues(t, succeeded, f.orderCount(t))
	assert.Equal(t, succeeded, f.reloadDish(t, f.dishC.ID).SoldCount)
	assert.GreaterOrEqual(t, succeeded, 2)
	assert.LessOrEqual(t, succeeded, 4)
}

func TestAdvanceStatus(t *testing.T) {
	f := newFixture(t)
	svc := NewOrderService(f.store, nil, WithOrderNumber(seqNumbers()))
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		TableID:       f.table.ID,
		Items:         []CartItem{{DishID: f.dishA.ID, Quantity: 1}},
		PaymentMethod: payment.MethodCash,
	})
	require.NoError(t, err)

	_, err = svc.AdvanceStatus(ctx, order.ID, model.OrderStatusReady)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)

	for _, to := range []model.OrderStatus{
		model.OrderStatusConfirmed,
		model.OrderStatusPreparing,
		model.OrderStatusReady,
		model.OrderStatusCompleted,
	} {
		got, err := svc.AdvanceStatus(ctx, order.ID, to)
		require.NoError(t, err)
		assert.Equal(t, to, got.Status)
	}

	_, err = svc.AdvanceStatus(ctx, order.ID, model.OrderStatusCancelled)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)
	_, err = svc.AdvanceStatus(ctx, 9999, model.OrderStatusConfirmed)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelOrder_RefundsBalance(t *testing.T) {
	f := newFixture(t)
	f.setBalance(t, "100.00")
	limited := seedDish(t, f.store, "crab", "30.00", 5)
	svc := NewOrderService(f.store, nil, WithOrderNumber(seqNumbers()))
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		TableID:  f.table.ID,
		MemberID: memberID(f.member.ID),
		Items: []CartItem{
			{DishID: f.dishC.ID, Quantity: 1},
			{DishID: limited.ID, Quantity: 2},
		},
		PaymentMethod: payment.MethodMixed,
		BalanceUsed:   dec("60.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "40.00", f.reloadMember(t).Balance.StringFixed(2))
	assert.Equal(t, 3, f.reloadDish(t, limited.ID).Stock)

	cancelled, err := svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)

	m := f.reloadMember(t)
	assert.Equal(t, "100.00", m.Balance.StringFixed(2))
	assert.True(t, m.TotalSpent.IsZero())
	assert.Equal(t, 0, m.VisitCount)

	d := f.reloadDish(t, limited.ID)
	assert.Equal(t, 5, d.Stock)
	assert.Equal(t, 0, d.SoldCount)
	assert.Equal(t, 0, f.reloadDish(t, f.dishC.ID).SoldCount)

	_, err = svc.CancelOrder(ctx, order.ID)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestKitchenQueueOldestFirst(t *testing.T) {
	f := newFixture(t)
	svc := NewOrderService(f.store, nil, WithOrderNumber(seqNumbers()))
	ctx := context.Background()

	var ids []uint
	for i := 0; i < 3; i++ {
		o, err := svc.CreateOrder(ctx, CreateOrderInput{
			TableID:       f.table.ID,
			Items:         []CartItem{{DishID: f.dishA.ID, Quantity: 1}},
			PaymentMethod: payment.MethodWechat,
		})
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}
	_, err := svc.CancelOrder(ctx, ids[1])
	require.NoError(t, err)

	queue, err := svc.KitchenQueue(ctx, 0)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, ids[0], queue[0].ID)
	assert.Equal(t, ids[2], queue[1].ID)

	list, total, err := svc.ListOrders(ctx, OrderQuery{Status: model.OrderStatusCancelled})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, ids[1], list[0].ID)
}

func TestCreateOrder_ExhaustedRetryErrors(t *testing.T) {
	assert.ErrorIs(t, afterRetries(errOrderNumberTaken), ErrOrderNumberCollision)

	stale := afterRetries(repository.ErrStaleVersion)
	assert.ErrorIs(t, stale, ErrConcurrentUpdate)
	assert.ErrorIs(t, stale, repository.ErrStaleVersion)
	assert.NotErrorIs(t, stale, ErrOrderNumberCollision)

	assert.ErrorIs(t, afterRetries(ErrDishInactive), ErrDishInactive)
	assert.NoError(t, afterRetries(nil))
}

func TestCancelOrder_MissingMember(t *testing.T) {
	f := newFixture(t)
	f.setBalance(t, "100.00")
	svc := NewOrderService(f.store, nil, WithOrderNumber(seqNumbers()))
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		TableID:       f.table.ID,
		MemberID:      memberID(f.member.ID),
		Items:         []CartItem{{DishID: f.dishA.ID, Quantity: 1}},
		PaymentMethod: payment.MethodBalance,
	})
	require.NoError(t, err)

	require.NoError(t, f.db.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, f.db.Exec("DELETE FROM members WHERE id = ?", f.member.ID).Error)

	_, err = svc.CancelOrder(ctx, order.ID)
	require.ErrorIs(t, err, ErrMemberNotFound)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)

	got, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.Equal(t, 1, f.reloadDish(t, f.dishA.ID).SoldCount)
}

func TestListOrders_UnknownStatus(t *testing.T) {
	f := newFixture(t)
	svc := NewOrderService(f.store, nil)

	_, _, err := svc.ListOrders(context.Background(), OrderQuery{Status: "bogus"})
	require.ErrorIs(t, err, ErrInvalidStatus)
	assert.NotErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestGetOrderByNumber(t *testing.T) {
	f := newFixture(t)
	svc := NewOrderService(f.store, nil, WithOrderNumber(func(time.Time) string { return "20261016120000-0042" }))
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		TableID:       f.table.ID,
		Items:         []CartItem{{DishID: f.dishB.ID, Quantity: 2}},
		PaymentMethod: payment.MethodAlipay,
	})
	require.NoError(t, err)

	got, err := svc.GetOrderByNumber(ctx, "20261016120000-0042")
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "36.00", got.FinalAmount.StringFixed(2))

	_, err = svc.GetOrderByNumber(ctx, "nope")
	require.ErrorIs(t, err, ErrOrderNotFound)
}
