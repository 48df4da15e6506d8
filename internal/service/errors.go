package service

import (
	"errors"
	"fmt"
)

// 业务错误，调用方用 errors.Is 判断
var (
	ErrTableNotFound           = errors.New("table not found")
	ErrTableInactive           = errors.New("table is not in service")
	ErrDishNotFound            = errors.New("dish not found")
	ErrDishInactive            = errors.New("dish is not on sale")
	ErrOutOfStock              = errors.New("dish out of stock")
	ErrMemberNotFound          = errors.New("member not found")
	ErrMemberInactive          = errors.New("member is deactivated")
	ErrMemberPhoneTaken        = errors.New("phone already registered")
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrInvalidStatus           = errors.New("unknown order status")
	ErrInvalidAmount           = errors.New("amount must be positive with at most 2 decimal places")
	ErrInvalidRechargeMethod   = errors.New("recharge accepts cash, wechat or alipay")
	ErrOperatorRequired        = errors.New("operator required")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrNameTaken               = errors.New("name already exists")
	ErrInvalidCredentials      = errors.New("invalid username or password")
	ErrUserInactive            = errors.New("user is disabled")
	ErrInvalidRole             = errors.New("invalid role")

	// ErrOrderNumberCollision 订单号重试一次后仍冲突，属于可重试的瞬时错误
	ErrOrderNumberCollision = errors.New("order number collision, please retry")
	// ErrConcurrentUpdate 会员账户在重试后仍被并发修改
	ErrConcurrentUpdate = errors.New("member account changed concurrently, please retry")
	// ErrStoreUnavailable 存储层 I/O 错误，原始错误通过 %w 一并保留
	ErrStoreUnavailable = errors.New("store unavailable")
)

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func withID(sentinel error, id uint) error {
	return fmt.Errorf("%w: id=%d", sentinel, id)
}
