package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/restaurant-pos/internal/cache"
	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/pkg/logger"
)

// KitchenSink 后厨事件的落地方（redis 频道）
type KitchenSink interface {
	Publish(ctx context.Context, ev cache.KitchenEvent) error
}

type kitchenJob struct {
	event cache.KitchenEvent
	enqAt time.Time
}

// KitchenNotifier 本地异步推送器：订单提交后入队，由 worker 推送到后厨频道。
// 队列满时丢弃事件，不影响已提交的订单。
type KitchenNotifier struct {
	sink      KitchenSink
	ch        chan kitchenJob
	metricsCh chan time.Duration
}

func NewKitchenNotifier(sink KitchenSink, queueSize int) *KitchenNotifier {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &KitchenNotifier{sink: sink, ch: make(chan kitchenJob, queueSize), metricsCh: make(chan time.Duration, 4096)}
}

// Start 启动 workers 个消费者，返回的函数用于停止并等待队列排空
func (n *KitchenNotifier) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case job := <-n.ch:
					n.deliver(job)
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		// 停止后把剩余事件同步推完，直到 ctx 到期
		for {
			select {
			case job := <-n.ch:
				n.deliver(job)
			case <-ctx.Done():
				return ctx.Err()
			default:
				return nil
			}
		}
	}
}

func (n *KitchenNotifier) deliver(job kitchenJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := n.sink.Publish(ctx, job.event); err != nil {
		logger.Warn("kitchen event publish failed",
			zap.String("order_number", job.event.OrderNumber),
			zap.String("status", job.event.Status),
			zap.Error(err))
		return
	}
	select {
	case n.metricsCh <- time.Since(job.enqAt):
	default:
	}
}

// Notify 入队一个订单事件；nil 接收者是空操作
func (n *KitchenNotifier) Notify(order *model.Order) {
	if n == nil || order == nil {
		return
	}
	ev := cache.KitchenEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		ItemCount:   len(order.Items),
		At:          time.Now(),
	}
	if order.Table != nil {
		ev.TableNumber = order.Table.Number
	}
	select {
	case n.ch <- kitchenJob{event: ev, enqAt: time.Now()}:
	default:
		logger.Warn("kitchen queue full, drop event",
			zap.String("order_number", order.OrderNumber),
			zap.String("status", ev.Status))
	}
}

// Metrics 返回推送耗时的只读通道（每成功推送一条发送一次）
func (n *KitchenNotifier) Metrics() <-chan time.Duration { return n.metricsCh }

// QueueLen 当前队列长度（采样值）
func (n *KitchenNotifier) QueueLen() int { return len(n.ch) }
