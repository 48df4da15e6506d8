package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

type tableRequest struct {
	Number string `json:"number" binding:"required,max=16"`
	Seats  int    `json:"seats" binding:"omitempty,min=1,max=64"`
}

// ListTables 可点餐的餐桌
// @Summary 餐桌列表
// @Tags 餐桌
// @Produce json
// @Success 200 {object} response.Response{data=[]model.Table}
// @Router /api/v1/tables [get]
func (h *Handler) ListTables(c *gin.Context) {
	list, err := h.tables.List(c.Request.Context(), false)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, list)
}

// ListAllTables 后台餐桌列表
// @Summary 餐桌列表（含停用）
// @Tags 餐桌
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.Table}
// @Router /api/v1/admin/tables [get]
func (h *Handler) ListAllTables(c *gin.Context) {
	list, err := h.tables.List(c.Request.Context(), true)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, list)
}

// CreateTable 新建餐桌
// @Summary 新建餐桌
// @Tags 餐桌
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body tableRequest true "桌号与座位数"
// @Success 201 {object} response.Response{data=model.Table}
// @Failure 409 {object} response.Response
// @Router /api/v1/admin/tables [post]
func (h *Handler) CreateTable(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, err := h.tables.Create(c.Request.Context(), req.Number, req.Seats)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Created(c, t)
}

// SetTableActive 停用或恢复餐桌
// @Summary 停用/恢复餐桌
// @Tags 餐桌
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "餐桌ID"
// @Param request body activeRequest true "是否启用"
// @Success 200 {object} response.Response{data=model.Table}
// @Router /api/v1/admin/tables/{id}/status [put]
func (h *Handler) SetTableActive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, err := h.tables.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, t)
}
