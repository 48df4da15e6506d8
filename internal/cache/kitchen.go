package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	KitchenChannel = "pos:kitchen:events"
	kitchenRecent  = "pos:kitchen:recent"
	recentKeep     = 100
)

// KitchenEvent 推送给后厨的订单事件
type KitchenEvent struct {
	OrderID     uint      `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	TableNumber string    `json:"table_number"`
	Status      string    `json:"status"`
	ItemCount   int       `json:"item_count"`
	At          time.Time `json:"at"`
}

// KitchenFeed 通过 redis pub/sub 推送事件，并保留最近 100 条供后厨屏幕补拉
type KitchenFeed struct {
	client *redis.Client
}

func NewKitchenFeed(client *redis.Client) *KitchenFeed {
	return &KitchenFeed{client: client}
}

// Publish 发布事件并写入最近列表
func (f *KitchenFeed) Publish(ctx context.Context, ev KitchenEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pipe := f.client.Pipeline()
	pipe.Publish(ctx, KitchenChannel, payload)
	pipe.LPush(ctx, kitchenRecent, payload)
	pipe.LTrim(ctx, kitchenRecent, 0, recentKeep-1)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent 返回最近 n 条事件，新事件在前
func (f *KitchenFeed) Recent(ctx context.Context, n int) ([]KitchenEvent, error) {
	if n <= 0 || n > recentKeep {
		n = recentKeep
	}
	raw, err := f.client.LRange(ctx, kitchenRecent, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]KitchenEvent, 0, len(raw))
	for _, s := range raw {
		var ev KitchenEvent
		if err := json.Unmarshal([]byte(s), &ev); err == nil {
			out = append(out, ev)
		}
	}
	return out, nil
}

// Subscribe 订阅实时事件；调用方负责 Close
func (f *KitchenFeed) Subscribe(ctx context.Context) *redis.PubSub {
	return f.client.Subscribe(ctx, KitchenChannel)
}
