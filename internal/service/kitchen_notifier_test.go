package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/restaurant-pos/internal/cache"
	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/payment"
)

type recordingSink struct {
	mu     sync.Mutex
	events []cache.KitchenEvent
	fail   bool
}

func (s *recordingSink) Publish(_ context.Context, ev cache.KitchenEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink down")
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestKitchenNotifier_DropsWhenFull(t *testing.T) {
	sink := &recordingSink{}
	n := NewKitchenNotifier(sink, 1)

	// 未启动 worker：第一条入队，第二条被丢弃
	n.Notify(&model.Order{ID: 1, OrderNumber: "a"})
	n.Notify(&model.Order{ID: 2, OrderNumber: "b"})
	assert.Equal(t, 1, n.QueueLen())

	stop := n.Start(1)
	require.Eventually(t, func() bool { return sink.len() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, stop(context.Background()))
	assert.Equal(t, "a", sink.events[0].OrderNumber)

	// 每条成功推送记录一次入队到推送完成的耗时
	select {
	case d := <-n.Metrics():
		assert.GreaterOrEqual(t, d, time.Duration(0))
	case <-time.After(time.Second):
		t.Fatal("no delivery latency recorded")
	}

	var nilNotifier *KitchenNotifier
	nilNotifier.Notify(&model.Order{ID: 3})
}

func TestKitchenNotifier_PublishFailureDoesNotBlock(t *testing.T) {
	sink := &recordingSink{fail: true}
	n := NewKitchenNotifier(sink, 4)
	stop := n.Start(1)
	n.Notify(&model.Order{ID: 1, OrderNumber: "a"})
	require.Eventually(t, func() bool { return n.QueueLen() == 0 }, time.Second, 10*time.Millisecond)
	require.NoError(t, stop(context.Background()))
	assert.Zero(t, sink.len())
	assert.Zero(t, len(n.Metrics()))
}

func TestOrderService_NotifiesKitchenFeed(t *testing.T) {
	f := newFixture(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	feed := cache.NewKitchenFeed(client)
	notifier := NewKitchenNotifier(feed, 16)
	stop := notifier.Start(2)
	defer func() { _ = stop(context.Background()) }()

	svc := NewOrderService(f.store, notifier, WithOrderNumber(seqNumbers()))
	ctx := context.Background()
	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		TableID:       f.table.ID,
		Items:         []CartItem{{DishID: f.dishA.ID, Quantity: 1}},
		PaymentMethod: payment.MethodAlipay,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		recent, err := feed.Recent(ctx, 10)
		return err == nil && len(recent) == 1
	}, 2*time.Second, 20*time.Millisecond)

	recent, err := feed.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, recent[0].OrderNumber)
	assert.Equal(t, "T01", recent[0].TableNumber)
	assert.Equal(t, string(model.OrderStatusPending), recent[0].Status)
}
