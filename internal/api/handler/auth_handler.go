package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=32"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name" binding:"max=64"`
	Role        string `json:"role" binding:"required,oneof=admin cashier kitchen"`
}

// Login 后台登录
// @Summary 登录并获取 JWT
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body loginRequest true "账号密码"
// @Success 200 {object} response.Response{data=service.LoginResult}
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, res)
}

// Me 当前登录用户
// @Summary 当前登录用户
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=model.SystemUser}
// @Router /api/v1/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	u, err := h.users.Me(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, u)
}

// CreateUser 新建后台账号
// @Summary 新建后台账号
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createUserRequest true "账号信息"
// @Success 201 {object} response.Response{data=model.SystemUser}
// @Router /api/v1/admin/users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.users.CreateUser(c.Request.Context(), req.Username, req.Password, req.DisplayName, model.Role(req.Role))
	if err != nil {
		renderError(c, err)
		return
	}
	response.Created(c, u)
}

// ListUsers 后台账号列表
// @Summary 后台账号列表
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.SystemUser}
// @Router /api/v1/admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	list, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, list)
}
