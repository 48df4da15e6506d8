package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

// Dashboard 后台首页统计
// @Summary 今日营业额、会员余额与热销菜品
// @Tags 后台
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.Dashboard}
// @Router /api/v1/admin/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, d)
}
