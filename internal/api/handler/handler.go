package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/restaurant-pos/internal/auth"
	"github.com/d60-Lab/restaurant-pos/internal/cache"
	"github.com/d60-Lab/restaurant-pos/internal/payment"
	"github.com/d60-Lab/restaurant-pos/internal/pricing"
	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/pkg/monitoring"
	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

// Handler 所有 HTTP 接口的入口
type Handler struct {
	orders    *service.OrderService
	recharges *service.RechargeService
	members   *service.MemberService
	menu      *service.MenuService
	tables    *service.TableService
	users     *service.AuthService
	dashboard *service.DashboardService
	kitchen   *cache.KitchenFeed
}

// Deps 构造 Handler 所需的服务；Kitchen 为 nil 时后厨补拉接口返回空列表
type Deps struct {
	Orders    *service.OrderService
	Recharges *service.RechargeService
	Members   *service.MemberService
	Menu      *service.MenuService
	Tables    *service.TableService
	Auth      *service.AuthService
	Dashboard *service.DashboardService
	Kitchen   *cache.KitchenFeed
}

func New(d Deps) *Handler {
	return &Handler{
		orders:    d.Orders,
		recharges: d.Recharges,
		members:   d.Members,
		menu:      d.Menu,
		tables:    d.Tables,
		users:     d.Auth,
		dashboard: d.Dashboard,
		kitchen:   d.Kitchen,
	}
}

type errorRule struct {
	target error
	status int
	reason string
}

// 错误到 HTTP 状态的映射，按顺序匹配
var errorRules = []errorRule{
	{pricing.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
	{pricing.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{pricing.ErrInvalidPrice, http.StatusBadRequest, "invalid_price"},
	{pricing.ErrInvalidDiscount, http.StatusBadRequest, "invalid_discount"},
	{payment.ErrUnknownMethod, http.StatusBadRequest, "unknown_payment_method"},
	{payment.ErrInvalidBalanceAmount, http.StatusBadRequest, "invalid_balance_amount"},
	{payment.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{service.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{service.ErrInvalidRechargeMethod, http.StatusBadRequest, "invalid_recharge_method"},
	{service.ErrOperatorRequired, http.StatusBadRequest, "operator_required"},
	{service.ErrInvalidRole, http.StatusBadRequest, "invalid_role"},
	{service.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},

	{service.ErrTableNotFound, http.StatusNotFound, "table_not_found"},
	{service.ErrDishNotFound, http.StatusNotFound, "dish_not_found"},
	{service.ErrMemberNotFound, http.StatusNotFound, "member_not_found"},
	{service.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{service.ErrCategoryNotFound, http.StatusNotFound, "category_not_found"},

	{service.ErrMemberPhoneTaken, http.StatusConflict, "phone_taken"},
	{service.ErrNameTaken, http.StatusConflict, "name_taken"},
	{service.ErrInvalidStatusTransition, http.StatusConflict, "invalid_status_transition"},

	{payment.ErrInsufficientBalance, http.StatusUnprocessableEntity, "insufficient_balance"},
	{payment.ErrMemberRequired, http.StatusUnprocessableEntity, "member_required"},
	{service.ErrDishInactive, http.StatusUnprocessableEntity, "dish_inactive"},
	{service.ErrOutOfStock, http.StatusUnprocessableEntity, "out_of_stock"},
	{service.ErrMemberInactive, http.StatusUnprocessableEntity, "member_inactive"},
	{service.ErrTableInactive, http.StatusUnprocessableEntity, "table_inactive"},

	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{service.ErrUserInactive, http.StatusForbidden, "user_inactive"},

	{service.ErrOrderNumberCollision, http.StatusServiceUnavailable, "order_number_collision"},
	{service.ErrConcurrentUpdate, http.StatusServiceUnavailable, "concurrent_update"},
}

// renderError 业务错误带 reason 返回；其余按 500 处理并上报
func renderError(c *gin.Context, err error) {
	for _, r := range errorRules {
		if errors.Is(err, r.target) {
			response.Fail(c, r.status, r.reason, err.Error())
			return
		}
	}
	monitoring.CaptureError(c.Request.Context(), err)
	response.InternalError(c, err)
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func operatorID(c *gin.Context) uint {
	if p, ok := auth.PrincipalFrom(c.Request.Context()); ok {
		return p.UserID
	}
	return 0
}

// pageResult 列表接口统一结构
type pageResult struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	List     any   `json:"list"`
}
