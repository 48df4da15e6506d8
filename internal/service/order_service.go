package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/payment"
	"github.com/d60-Lab/restaurant-pos/internal/pricing"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
	"github.com/d60-Lab/restaurant-pos/pkg/logger"
)

var tracer = otel.Tracer("github.com/d60-Lab/restaurant-pos/internal/service")

// CartItem 购物车中的一行
type CartItem struct {
	DishID   uint
	Quantity int
}

// CreateOrderInput 下单请求。BalanceUsed 仅对 mixed 有意义，是客户端的提议，
// 事务内会重新校验。
type CreateOrderInput struct {
	TableID       uint
	MemberID      *uint
	Items         []CartItem
	PaymentMethod payment.Method
	BalanceUsed   decimal.Decimal
	Remark        string
}

// OrderQuery 订单列表条件
type OrderQuery struct {
	Status   model.OrderStatus
	TableID  uint
	MemberID uint
	Page     int
	PageSize int
}

// OrderService 下单、状态流转、取消退款
type OrderService struct {
	store    *repository.Store
	notifier *KitchenNotifier
	numberFn OrderNumberFunc
	now      func() time.Time
}

// OrderOption 可选配置
type OrderOption func(*OrderService)

// WithOrderNumber 替换订单号生成器
func WithOrderNumber(fn OrderNumberFunc) OrderOption {
	return func(s *OrderService) { s.numberFn = fn }
}

// WithClock 替换时钟
func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

// NewOrderService notifier 可以为 nil
func NewOrderService(store *repository.Store, notifier *KitchenNotifier, opts ...OrderOption) *OrderService {
	s := &OrderService{store: store, notifier: notifier, numberFn: DefaultOrderNumber, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder 在单个事务内创建订单、明细、扣减余额、累计销量与库存。
// 订单号冲突或会员行并发修改时换号重试一次。
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()
	span.SetAttributes(
		attribute.Int("pos.table_id", int(in.TableID)),
		attribute.String("pos.payment_method", string(in.PaymentMethod)),
		attribute.Int("pos.lines", len(in.Items)),
	)

	if err := validateCart(in); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var (
		order *model.Order
		err   error
	)
	for attempt := 1; attempt <= 2; attempt++ {
		order, err = s.createOnce(ctx, in, s.numberFn(s.now()))
		if !retryable(err) {
			break
		}
		logger.Warn("create order retry", zap.Int("attempt", attempt), zap.Error(err))
	}
	if err = afterRetries(err); err != nil {
		span.SetStatus(codes.Error, err.Error())
		logRejected("create order", err)
		return nil, err
	}

	span.SetAttributes(attribute.String("pos.order_number", order.OrderNumber))
	logger.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("final_amount", order.FinalAmount.StringFixed(2)),
		zap.String("balance_used", order.BalanceUsed.StringFixed(2)),
		zap.String("payment_method", order.PaymentMethod))
	s.notifier.Notify(order)
	return order, nil
}

func validateCart(in CreateOrderInput) error {
	if len(in.Items) == 0 {
		return pricing.ErrEmptyCart
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return pricing.ErrInvalidQuantity
		}
	}
	if _, err := payment.ParseMethod(string(in.PaymentMethod)); err != nil {
		return err
	}
	if in.PaymentMethod.UsesBalance() && in.MemberID == nil {
		return payment.ErrMemberRequired
	}
	return nil
}

func retryable(err error) bool {
	return errors.Is(err, errOrderNumberTaken) || errors.Is(err, repository.ErrStaleVersion)
}

var errOrderNumberTaken = errors.New("order number taken")

// afterRetries 把重试耗尽后仍可重试的内部错误换成对外的瞬时错误
func afterRetries(err error) error {
	switch {
	case errors.Is(err, errOrderNumberTaken):
		return ErrOrderNumberCollision
	case errors.Is(err, repository.ErrStaleVersion):
		return fmt.Errorf("%w: %w", ErrConcurrentUpdate, err)
	}
	return err
}

func (s *OrderService) createOnce(ctx context.Context, in CreateOrderInput, number string) (*model.Order, error) {
	var created *model.Order
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		table, err := tx.Tables.GetByID(ctx, in.TableID)
		if err != nil {
			if repository.IsNotFound(err) {
				return withID(ErrTableNotFound, in.TableID)
			}
			return storeErr(err)
		}
		if !table.Status.IsActive() {
			return withID(ErrTableInactive, in.TableID)
		}

		var member *model.Member
		if in.MemberID != nil {
			member, err = tx.Members.GetByIDForUpdate(ctx, *in.MemberID)
			if err != nil {
				if repository.IsNotFound(err) {
					return withID(ErrMemberNotFound, *in.MemberID)
				}
				return storeErr(err)
			}
			if !member.Status.IsActive() {
				return withID(ErrMemberInactive, member.ID)
			}
		}

		ids := make([]uint, 0, len(in.Items))
		for _, it := range in.Items {
			ids = append(ids, it.DishID)
		}
		dishes, err := tx.Dishes.GetByIDs(ctx, ids)
		if err != nil {
			return storeErr(err)
		}

		lines := make([]pricing.Line, 0, len(in.Items))
		items := make([]model.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			d, ok := dishes[it.DishID]
			if !ok {
				return withID(ErrDishNotFound, it.DishID)
			}
			if !d.Status.IsActive() {
				return withID(ErrDishInactive, it.DishID)
			}
			line := pricing.Line{DishID: d.ID, UnitPrice: d.UnitPriceFor(member != nil), Quantity: it.Quantity}
			lines = append(lines, line)
			items = append(items, model.OrderItem{
				DishID:   d.ID,
				DishName: d.Name,
				Price:    pricing.Round(line.UnitPrice),
				Quantity: it.Quantity,
				Subtotal: line.LineTotal(),
			})
		}

		totals, err := pricing.Calculate(lines)
		if err != nil {
			return err
		}

		// 会员行已在本事务内读取，这里的余额校验是权威的
		breakdown, err := payment.Resolve(totals.FinalAmount, member, payment.Request{
			Method:        in.PaymentMethod,
			BalanceAmount: in.BalanceUsed,
		})
		if err != nil {
			return err
		}
		if err := breakdown.Check(totals.FinalAmount); err != nil {
			return err
		}

		order := &model.Order{
			OrderNumber:   number,
			TableID:       table.ID,
			MemberID:      in.MemberID,
			Status:        model.OrderStatusPending,
			Subtotal:      totals.Subtotal,
			Discount:      totals.Discount,
			FinalAmount:   totals.FinalAmount,
			PaymentMethod: string(breakdown.Method),
			BalanceUsed:   breakdown.BalanceUsed,
			CashAmount:    breakdown.CashAmount,
			Remark:        in.Remark,
			Items:         items,
		}
		if err := tx.Orders.Create(ctx, order); err != nil {
			if repository.IsDuplicateKey(err) {
				return errOrderNumberTaken
			}
			return storeErr(err)
		}

		if member != nil && breakdown.BalanceUsed.IsPositive() {
			member.Balance = member.Balance.Sub(breakdown.BalanceUsed)
			if member.Balance.IsNegative() {
				return payment.ErrInsufficientBalance
			}
			now := s.now()
			member.TotalSpent = member.TotalSpent.Add(totals.FinalAmount)
			member.VisitCount++
			member.LastVisit = &now
			if err := tx.Members.SaveAccount(ctx, member); err != nil {
				if errors.Is(err, repository.ErrStaleVersion) {
					return err
				}
				return storeErr(err)
			}
		}

		for _, it := range order.Items {
			if err := tx.Dishes.DecrementStock(ctx, it.DishID, it.Quantity); err != nil {
				if errors.Is(err, repository.ErrStockInsufficient) {
					return withID(ErrOutOfStock, it.DishID)
				}
				return storeErr(err)
			}
			if err := tx.Dishes.IncrementSold(ctx, it.DishID, it.Quantity); err != nil {
				return storeErr(err)
			}
		}

		order.Table = table
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetOrder 只读查询
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	order, err := s.store.Orders.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, withID(ErrOrderNotFound, id)
		}
		return nil, storeErr(err)
	}
	return order, nil
}

// GetOrderByNumber 按小票上的订单号查询
func (s *OrderService) GetOrderByNumber(ctx context.Context, number string) (*model.Order, error) {
	order, err := s.store.Orders.GetByOrderNumber(ctx, number)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: number=%s", ErrOrderNotFound, number)
		}
		return nil, storeErr(err)
	}
	return order, nil
}

// ListOrders 分页查询，新订单在前
func (s *OrderService) ListOrders(ctx context.Context, q OrderQuery) ([]*model.Order, int64, error) {
	page, size := normalizePage(q.Page, q.PageSize)
	f := repository.OrderFilter{
		TableID:  q.TableID,
		MemberID: q.MemberID,
		Offset:   (page - 1) * size,
		Limit:    size,
	}
	if q.Status != "" {
		if !q.Status.Valid() {
			return nil, 0, fmt.Errorf("%w: %q", ErrInvalidStatus, q.Status)
		}
		f.Statuses = []model.OrderStatus{q.Status}
	}
	orders, total, err := s.store.Orders.List(ctx, f)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return orders, total, nil
}

// KitchenQueue 后厨待处理订单，先下单的在前
func (s *OrderService) KitchenQueue(ctx context.Context, limit int) ([]*model.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	orders, _, err := s.store.Orders.List(ctx, repository.OrderFilter{
		Statuses: []model.OrderStatus{
			model.OrderStatusPending,
			model.OrderStatusConfirmed,
			model.OrderStatusPreparing,
			model.OrderStatusReady,
		},
		Limit:       limit,
		OldestFirst: true,
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return orders, nil
}

// AdvanceStatus 按线性流程推进到下一状态；to 为 cancelled 时走取消退款
func (s *OrderService) AdvanceStatus(ctx context.Context, id uint, to model.OrderStatus) (*model.Order, error) {
	if to == model.OrderStatusCancelled {
		return s.CancelOrder(ctx, id)
	}
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	next, ok := order.Status.Next()
	if !ok || next != to {
		return nil, invalidTransition(order.Status, to)
	}
	if err := s.store.Orders.UpdateStatus(ctx, id, order.Status, to); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, invalidTransition(order.Status, to)
		}
		return nil, storeErr(err)
	}
	order.Status = to
	logger.Info("order status advanced", zap.String("order_number", order.OrderNumber), zap.String("status", string(to)))
	s.notifier.Notify(order)
	return order, nil
}

// CancelOrder 取消未开工的订单：退回余额、回滚会员统计、销量与库存，整体原子
func (s *OrderService) CancelOrder(ctx context.Context, id uint) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.CancelOrder")
	defer span.End()

	var cancelled *model.Order
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		order, err := tx.Orders.GetByID(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return withID(ErrOrderNotFound, id)
			}
			return storeErr(err)
		}
		if !order.Status.Cancellable() {
			return invalidTransition(order.Status, model.OrderStatusCancelled)
		}
		if err := tx.Orders.UpdateStatus(ctx, id, order.Status, model.OrderStatusCancelled); err != nil {
			if errors.Is(err, repository.ErrStaleVersion) {
				return invalidTransition(order.Status, model.OrderStatusCancelled)
			}
			return storeErr(err)
		}

		if order.MemberID != nil && order.BalanceUsed.IsPositive() {
			member, err := tx.Members.GetByIDForUpdate(ctx, *order.MemberID)
			if err != nil {
				if repository.IsNotFound(err) {
					return withID(ErrMemberNotFound, *order.MemberID)
				}
				return storeErr(err)
			}
			member.Balance = member.Balance.Add(order.BalanceUsed)
			member.TotalSpent = decimal.Max(member.TotalSpent.Sub(order.FinalAmount), decimal.Zero)
			if member.VisitCount > 0 {
				member.VisitCount--
			}
			if err := tx.Members.SaveAccount(ctx, member); err != nil {
				return storeErr(err)
			}
		}

		for _, it := range order.Items {
			if err := tx.Dishes.DecrementSold(ctx, it.DishID, it.Quantity); err != nil {
				return storeErr(err)
			}
			if err := tx.Dishes.RestoreStock(ctx, it.DishID, it.Quantity); err != nil {
				return storeErr(err)
			}
		}

		order.Status = model.OrderStatusCancelled
		cancelled = order
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logRejected("cancel order", err)
		return nil, err
	}
	logger.Info("order cancelled",
		zap.String("order_number", cancelled.OrderNumber),
		zap.String("refunded", cancelled.BalanceUsed.StringFixed(2)))
	s.notifier.Notify(cancelled)
	return cancelled, nil
}

func invalidTransition(from, to model.OrderStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, from, to)
}

// logRejected 业务拒绝记 warn，基础设施错误记 error
func logRejected(op string, err error) {
	if errors.Is(err, ErrStoreUnavailable) {
		logger.Error(op+" failed", zap.Error(err))
		return
	}
	logger.Warn(op+" rejected", zap.Error(err))
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
