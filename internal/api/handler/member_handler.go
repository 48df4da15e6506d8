package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/d60-Lab/restaurant-pos/internal/payment"
	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

type registerMemberRequest struct {
	Name  string `json:"name" binding:"required,max=64"`
	Phone string `json:"phone" binding:"required,mobile"`
}

type updateMemberRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=64"`
	Phone *string `json:"phone" binding:"omitempty,mobile"`
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type rechargeRequest struct {
	Amount        decimal.Decimal `json:"amount" swaggertype:"string"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	Remark        string          `json:"remark" binding:"max=255"`
}

// LookupMember 按手机号查会员
// @Summary 会员登录（按手机号）
// @Tags 会员
// @Produce json
// @Param phone query string true "手机号"
// @Success 200 {object} response.Response{data=model.Member}
// @Failure 404 {object} response.Response
// @Router /api/v1/members/lookup [get]
func (h *Handler) LookupMember(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		response.BadRequest(c, "phone required")
		return
	}
	m, err := h.members.GetByPhone(c.Request.Context(), phone)
	if err != nil {
		renderError(c, err)
		return
	}
	if !m.Status.IsActive() {
		renderError(c, service.ErrMemberInactive)
		return
	}
	response.Success(c, m)
}

// RegisterMember 新建会员
// @Summary 新建会员
// @Tags 会员
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body registerMemberRequest true "会员信息"
// @Success 201 {object} response.Response{data=model.Member}
// @Failure 409 {object} response.Response
// @Router /api/v1/admin/members [post]
func (h *Handler) RegisterMember(c *gin.Context) {
	var req registerMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	m, err := h.members.Register(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Created(c, m)
}

// ListMembers 会员列表
// @Summary 会员列表
// @Tags 会员
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "姓名或手机号"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=pageResult}
// @Router /api/v1/admin/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, total, err := h.members.List(c.Request.Context(), c.Query("keyword"), page, pageSize)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, pageResult{Page: page, PageSize: pageSize, Total: total, List: list})
}

// GetMember 会员详情
// @Summary 会员详情
// @Tags 会员
// @Produce json
// @Security BearerAuth
// @Param id path int true "会员ID"
// @Success 200 {object} response.Response{data=model.Member}
// @Router /api/v1/admin/members/{id} [get]
func (h *Handler) GetMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	m, err := h.members.Get(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, m)
}

// UpdateMember 修改会员资料
// @Summary 修改会员资料
// @Tags 会员
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "会员ID"
// @Param request body updateMemberRequest true "修改内容"
// @Success 200 {object} response.Response{data=model.Member}
// @Router /api/v1/admin/members/{id} [put]
func (h *Handler) UpdateMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	m, err := h.members.Update(c.Request.Context(), id, service.UpdateMemberInput{Name: req.Name, Phone: req.Phone})
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, m)
}

// SetMemberActive 停用或恢复会员
// @Summary 停用/恢复会员
// @Tags 会员
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "会员ID"
// @Param request body activeRequest true "是否启用"
// @Success 200 {object} response.Response{data=model.Member}
// @Router /api/v1/admin/members/{id}/status [put]
func (h *Handler) SetMemberActive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	m, err := h.members.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, m)
}

// RechargeMember 会员充值
// @Summary 会员充值（余额与充值记录原子写入）
// @Tags 会员
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "会员ID"
// @Param request body rechargeRequest true "充值信息"
// @Success 200 {object} response.Response{data=service.RechargeResult}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/admin/members/{id}/recharge [post]
func (h *Handler) RechargeMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req rechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.recharges.RechargeMember(c.Request.Context(), service.RechargeInput{
		MemberID:      id,
		Amount:        req.Amount,
		PaymentMethod: payment.Method(req.PaymentMethod),
		OperatorID:    operatorID(c),
		Remark:        req.Remark,
	})
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, res)
}

// ListRecharges 充值记录
// @Summary 会员充值记录
// @Tags 会员
// @Produce json
// @Security BearerAuth
// @Param id path int true "会员ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=pageResult}
// @Router /api/v1/admin/members/{id}/recharges [get]
func (h *Handler) ListRecharges(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	list, total, err := h.recharges.ListRecharges(c.Request.Context(), id, page, pageSize)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, pageResult{Page: page, PageSize: pageSize, Total: total, List: list})
}

// MemberOrders 会员最近订单
// @Summary 会员最近订单
// @Tags 会员
// @Produce json
// @Security BearerAuth
// @Param id path int true "会员ID"
// @Param limit query int false "条数" default(20)
// @Success 200 {object} response.Response{data=[]model.Order}
// @Router /api/v1/admin/members/{id}/orders [get]
func (h *Handler) MemberOrders(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	orders, err := h.members.RecentOrders(c.Request.Context(), id, limit)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, orders)
}
