package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/payment"
	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

type cartItemRequest struct {
	DishID   uint `json:"dish_id" binding:"required"`
	Quantity int  `json:"quantity"`
}

type createOrderRequest struct {
	TableID       uint              `json:"table_id" binding:"required"`
	MemberID      *uint             `json:"member_id"`
	Items         []cartItemRequest `json:"items" binding:"dive"`
	PaymentMethod string            `json:"payment_method" binding:"required"`
	// BalanceUsed 仅 mixed 使用，服务端会重新校验
	BalanceUsed decimal.Decimal `json:"balance_used" swaggertype:"string"`
	Remark      string          `json:"remark" binding:"max=255"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateOrder 下单
// @Summary 创建订单（原子扣余额、累计销量）
// @Tags 订单
// @Accept json
// @Produce json
// @Param request body createOrderRequest true "购物车与支付方式"
// @Success 201 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/v1/orders [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	items := make([]service.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.CartItem{DishID: it.DishID, Quantity: it.Quantity})
	}
	order, err := h.orders.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		TableID:       req.TableID,
		MemberID:      req.MemberID,
		Items:         items,
		PaymentMethod: payment.Method(req.PaymentMethod),
		BalanceUsed:   req.BalanceUsed,
		Remark:        req.Remark,
	})
	if err != nil {
		renderError(c, err)
		return
	}
	response.Created(c, order)
}

// GetOrder 查询订单
// @Summary 订单详情
// @Tags 订单
// @Produce json
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 404 {object} response.Response
// @Router /api/v1/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, order)
}

// LookupOrder 按订单号查询
// @Summary 按小票订单号查询订单
// @Tags 订单
// @Produce json
// @Param number query string true "订单号"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 404 {object} response.Response
// @Router /api/v1/orders/lookup [get]
func (h *Handler) LookupOrder(c *gin.Context) {
	number := c.Query("number")
	if number == "" {
		response.BadRequest(c, "number is required")
		return
	}
	order, err := h.orders.GetOrderByNumber(c.Request.Context(), number)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders 订单列表
// @Summary 订单列表（后台）
// @Tags 订单
// @Produce json
// @Security BearerAuth
// @Param status query string false "状态"
// @Param table_id query int false "餐桌ID"
// @Param member_id query int false "会员ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=pageResult}
// @Router /api/v1/admin/orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := pageParams(c)
	tableID, _ := strconv.ParseUint(c.Query("table_id"), 10, 64)
	memberID, _ := strconv.ParseUint(c.Query("member_id"), 10, 64)
	list, total, err := h.orders.ListOrders(c.Request.Context(), service.OrderQuery{
		Status:   model.OrderStatus(c.Query("status")),
		TableID:  uint(tableID),
		MemberID: uint(memberID),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, pageResult{Page: page, PageSize: pageSize, Total: total, List: list})
}

// CancelOrder 取消订单并退回余额
// @Summary 取消订单（仅待确认/已确认）
// @Tags 订单
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 409 {object} response.Response
// @Router /api/v1/admin/orders/{id}/cancel [post]
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.CancelOrder(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, order)
}

// KitchenQueue 后厨队列
// @Summary 后厨待处理订单（先到先做）
// @Tags 后厨
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.Order}
// @Router /api/v1/kitchen/queue [get]
func (h *Handler) KitchenQueue(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	orders, err := h.orders.KitchenQueue(c.Request.Context(), limit)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, orders)
}

// AdvanceOrderStatus 推进订单状态
// @Summary 推进订单状态（pending→confirmed→preparing→ready→completed）
// @Tags 后厨
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Param request body statusRequest true "目标状态"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 409 {object} response.Response
// @Router /api/v1/kitchen/orders/{id}/status [post]
func (h *Handler) AdvanceOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	to := model.OrderStatus(req.Status)
	if !to.Valid() {
		response.BadRequest(c, "unknown status")
		return
	}
	order, err := h.orders.AdvanceStatus(c.Request.Context(), id, to)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, order)
}

// KitchenRecent 最近的后厨事件
// @Summary 最近 100 条后厨事件（断线补拉）
// @Tags 后厨
// @Produce json
// @Security BearerAuth
// @Param limit query int false "条数" default(50)
// @Success 200 {object} response.Response{data=[]cache.KitchenEvent}
// @Router /api/v1/kitchen/events [get]
func (h *Handler) KitchenRecent(c *gin.Context) {
	if h.kitchen == nil {
		response.Success(c, []any{})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := h.kitchen.Recent(c.Request.Context(), limit)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, events)
}
