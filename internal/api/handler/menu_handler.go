package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/d60-Lab/restaurant-pos/internal/repository"
	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

type dishRequest struct {
	Name        string           `json:"name" binding:"required,max=64"`
	Description string           `json:"description"`
	ImageURL    string           `json:"image_url" binding:"omitempty,max=255"`
	Price       decimal.Decimal  `json:"price" swaggertype:"string"`
	MemberPrice *decimal.Decimal `json:"member_price" swaggertype:"string"`
	Stock       *int             `json:"stock"`
	SortOrder   int              `json:"sort_order"`
	CategoryIDs []uint           `json:"category_ids"`
}

type dishUpdateRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=64"`
	Description *string          `json:"description"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,max=255"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string"`
	MemberPrice *decimal.Decimal `json:"member_price" swaggertype:"string"`
	Stock       *int             `json:"stock"`
	SortOrder   *int             `json:"sort_order"`
	CategoryIDs []uint           `json:"category_ids"`
}

type categoryRequest struct {
	Name      *string `json:"name" binding:"omitempty,max=32"`
	SortOrder *int    `json:"sort_order"`
	Active    *bool   `json:"active"`
}

// Menu 前台菜单
// @Summary 在售菜单（分类 + 菜品）
// @Tags 菜单
// @Produce json
// @Success 200 {object} response.Response{data=cache.Menu}
// @Router /api/v1/menu [get]
func (h *Handler) Menu(c *gin.Context) {
	m, err := h.menu.ActiveMenu(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, m)
}

// ListDishes 后台菜品列表
// @Summary 菜品列表（含下架）
// @Tags 菜单
// @Produce json
// @Security BearerAuth
// @Param category_id query int false "分类ID"
// @Param keyword query string false "名称关键字"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=pageResult}
// @Router /api/v1/admin/dishes [get]
func (h *Handler) ListDishes(c *gin.Context) {
	page, pageSize := pageParams(c)
	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)
	list, total, err := h.menu.ListDishes(c.Request.Context(), repository.DishFilter{
		CategoryID:      uint(categoryID),
		IncludeInactive: true,
		Keyword:         c.Query("keyword"),
		Offset:          (page - 1) * pageSize,
		Limit:           pageSize,
	})
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, pageResult{Page: page, PageSize: pageSize, Total: total, List: list})
}

// CreateDish 新建菜品
// @Summary 新建菜品
// @Tags 菜单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dishRequest true "菜品信息，stock 缺省为 -1（不限量）"
// @Success 201 {object} response.Response{data=model.Dish}
// @Router /api/v1/admin/dishes [post]
func (h *Handler) CreateDish(c *gin.Context) {
	var req dishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	stock := -1
	if req.Stock != nil {
		stock = *req.Stock
	}
	d, err := h.menu.CreateDish(c.Request.Context(), service.DishInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		MemberPrice: req.MemberPrice,
		Stock:       stock,
		SortOrder:   req.SortOrder,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		renderError(c, err)
		return
	}
	response.Created(c, d)
}

// UpdateDish 修改菜品
// @Summary 修改菜品（不影响历史订单的冻结价格）
// @Tags 菜单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "菜品ID"
// @Param request body dishUpdateRequest true "修改内容"
// @Success 200 {object} response.Response{data=model.Dish}
// @Router /api/v1/admin/dishes/{id} [put]
func (h *Handler) UpdateDish(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dishUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	d, err := h.menu.UpdateDish(c.Request.Context(), id, service.DishUpdate{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		MemberPrice: req.MemberPrice,
		Stock:       req.Stock,
		SortOrder:   req.SortOrder,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, d)
}

// SetDishActive 上下架
// @Summary 菜品上架/下架
// @Tags 菜单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "菜品ID"
// @Param request body activeRequest true "是否上架"
// @Success 200 {object} response.Response{data=model.Dish}
// @Router /api/v1/admin/dishes/{id}/status [put]
func (h *Handler) SetDishActive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	d, err := h.menu.SetDishActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, d)
}

// ListCategories 分类列表
// @Summary 分类列表（含停用）
// @Tags 菜单
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.Category}
// @Router /api/v1/admin/categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	list, err := h.menu.ListCategories(c.Request.Context(), true)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, list)
}

// CreateCategory 新建分类
// @Summary 新建分类
// @Tags 菜单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body categoryRequest true "分类信息"
// @Success 201 {object} response.Response{data=model.Category}
// @Router /api/v1/admin/categories [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Name == nil || *req.Name == "" {
		response.BadRequest(c, "name required")
		return
	}
	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}
	cat, err := h.menu.CreateCategory(c.Request.Context(), *req.Name, sortOrder)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Created(c, cat)
}

// UpdateCategory 修改分类
// @Summary 修改分类（含停用）
// @Tags 菜单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Param request body categoryRequest true "修改内容"
// @Success 200 {object} response.Response{data=model.Category}
// @Router /api/v1/admin/categories/{id} [put]
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cat, err := h.menu.UpdateCategory(c.Request.Context(), id, req.Name, req.SortOrder, req.Active)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, cat)
}
