// orderbench 对同一会员并发下单与充值，校验最终余额与已提交操作的算术结果一致
package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/d60-Lab/restaurant-pos/config"
	"github.com/d60-Lab/restaurant-pos/internal/cache"
	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/payment"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

// discardSink redis 关闭时只测入队到推送完成的耗时
type discardSink struct{}

func (discardSink) Publish(context.Context, cache.KitchenEvent) error { return nil }

type op struct {
	recharge bool
}

type result struct {
	recharge bool
	err      error
	d        time.Duration
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	if err := repository.AutoMigrate(db); err != nil {
		panic(err)
	}
	store := repository.NewStore(db)
	ctx := context.Background()

	N := envInt("N", 200)
	RECHARGES := envInt("RECHARGES", 50)
	CONC := envInt("CONC", 8)
	price := decimal.NewFromInt(int64(envInt("PRICE", 30)))
	topUp := decimal.NewFromInt(int64(envInt("TOPUP", 50)))
	initial := decimal.NewFromInt(int64(envInt("BALANCE", 500)))

	// 独立的桌、菜、会员，避免与已有数据互相影响
	tag := uuid.NewString()[:8]
	table := &model.Table{Number: "B" + tag, Seats: 4, Status: model.LifecycleActive}
	mustDo(store.Tables.Create(ctx, table))
	dish := &model.Dish{Name: "bench-" + tag, Price: price, Stock: model.UnlimitedStock, Status: model.LifecycleActive}
	mustDo(store.Dishes.Create(ctx, dish))
	member := &model.Member{Name: "bench-" + tag, Phone: "bench-" + tag, Balance: initial, Status: model.LifecycleActive}
	mustDo(store.Members.Create(ctx, member))

	var sink service.KitchenSink = discardSink{}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer func() { _ = rdb.Close() }()
		sink = cache.NewKitchenFeed(rdb)
	}
	notifier := service.NewKitchenNotifier(sink, N+1)
	stopNotifier := notifier.Start(2)

	orders := service.NewOrderService(store, notifier)
	recharges := service.NewRechargeService(store)

	feed := make(chan op, N+RECHARGES)
	// 按比例交错投递，让充值与下单真正并发
	for i, r := 0, 0; i < N || r < RECHARGES; {
		if i < N && (r >= RECHARGES || i*RECHARGES <= r*N) {
			feed <- op{}
			i++
			continue
		}
		feed <- op{recharge: true}
		r++
	}
	close(feed)

	results := make(chan result, N+RECHARGES)
	var wg sync.WaitGroup
	t0 := time.Now()
	for w := 0; w < CONC; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for o := range feed {
				st := time.Now()
				var err error
				if o.recharge {
					_, err = recharges.RechargeMember(ctx, service.RechargeInput{
						MemberID:      member.ID,
						Amount:        topUp,
						PaymentMethod: payment.MethodCash,
						OperatorID:    1,
						Remark:        "orderbench",
					})
				} else {
					_, err = orders.CreateOrder(ctx, service.CreateOrderInput{
						TableID:       table.ID,
						MemberID:      &member.ID,
						Items:         []service.CartItem{{DishID: dish.ID, Quantity: 1}},
						PaymentMethod: payment.MethodBalance,
					})
				}
				results <- result{recharge: o.recharge, err: err, d: time.Since(st)}
			}
		}()
	}
	wg.Wait()
	close(results)
	total := time.Since(t0)

	sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	mustDo(stopNotifier(sctx))
	cancel()
	var kitchenLat []time.Duration
	for drained := false; !drained; {
		select {
		case d := <-notifier.Metrics():
			kitchenLat = append(kitchenLat, d)
		default:
			drained = true
		}
	}

	var (
		orderLat, rechargeLat []time.Duration
		committedOrders       int
		committedRecharges    int
		rejected, failed      int
	)
	for r := range results {
		switch {
		case r.err == nil && r.recharge:
			committedRecharges++
			rechargeLat = append(rechargeLat, r.d)
		case r.err == nil:
			committedOrders++
			orderLat = append(orderLat, r.d)
		case errors.Is(r.err, payment.ErrInsufficientBalance):
			rejected++
		default:
			failed++
			fmt.Printf("error: %v\n", r.err)
		}
	}

	final := must(store.Members.GetByID(ctx, member.ID))
	expected := initial.
		Add(topUp.Mul(decimal.NewFromInt(int64(committedRecharges)))).
		Sub(price.Mul(decimal.NewFromInt(int64(committedOrders))))

	fmt.Printf("N=%d, RECHARGES=%d, CONC=%d, total=%v\n", N, RECHARGES, CONC, total)
	fmt.Printf("orders: committed=%d rejected(insufficient)=%d failed=%d p50=%v p95=%v p99=%v\n",
		committedOrders, rejected, failed, pct(orderLat, 0.50), pct(orderLat, 0.95), pct(orderLat, 0.99))
	fmt.Printf("recharges: committed=%d p50=%v p95=%v\n",
		committedRecharges, pct(rechargeLat, 0.50), pct(rechargeLat, 0.95))
	fmt.Printf("kitchen events: delivered=%d p50=%v p95=%v\n",
		len(kitchenLat), pct(kitchenLat, 0.50), pct(kitchenLat, 0.95))
	fmt.Printf("balance: final=%s expected=%s visits=%d\n",
		final.Balance.StringFixed(2), expected.StringFixed(2), final.VisitCount)

	if !final.Balance.Equal(expected) || final.Balance.IsNegative() || final.VisitCount != committedOrders {
		fmt.Println("FAIL: lost update detected")
		os.Exit(1)
	}
	fmt.Println("OK: no lost updates")
}
