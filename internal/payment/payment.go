// Package payment 决定订单的支付构成（现金 / 会员余额 / 混合），只做判断不落库。
package payment

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

// Method 支付方式
type Method string

const (
	MethodCash    Method = "cash"
	MethodWechat  Method = "wechat"
	MethodAlipay  Method = "alipay"
	MethodBalance Method = "balance"
	MethodMixed   Method = "mixed"
)

var (
	ErrUnknownMethod        = errors.New("unknown payment method")
	ErrMemberRequired       = errors.New("member required for balance payment")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInvalidBalanceAmount = errors.New("mixed payment balance amount must be between 0 and final amount")
	ErrInvalidAmount        = errors.New("amount must be positive")
	// ErrBreakdownMismatch balance_used + cash_amount != final_amount
	ErrBreakdownMismatch = errors.New("payment breakdown does not add up to final amount")
)

// ParseMethod 解析支付方式字符串
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	switch m {
	case MethodCash, MethodWechat, MethodAlipay, MethodBalance, MethodMixed:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// UsesBalance 是否动用会员余额
func (m Method) UsesBalance() bool {
	return m == MethodBalance || m == MethodMixed
}

// External 微信/支付宝只记标签，不做外部结算
func (m Method) External() bool {
	return m == MethodWechat || m == MethodAlipay
}

// RechargeAllowed 充值只接受现金/微信/支付宝
func (m Method) RechargeAllowed() bool {
	return m == MethodCash || m.External()
}

// Request 客户端提出的支付方案（仅作为提议）
type Request struct {
	Method Method
	// BalanceAmount 混合支付时使用的余额部分
	BalanceAmount decimal.Decimal
}

// Breakdown 最终支付构成
type Breakdown struct {
	Method      Method
	BalanceUsed decimal.Decimal
	CashAmount  decimal.Decimal
}

// Check 校验 balance_used + cash_amount == final_amount
func (b Breakdown) Check(finalAmount decimal.Decimal) error {
	if !b.BalanceUsed.Add(b.CashAmount).Equal(finalAmount) {
		return fmt.Errorf("%w: balance=%s cash=%s final=%s", ErrBreakdownMismatch,
			b.BalanceUsed.StringFixed(2), b.CashAmount.StringFixed(2), finalAmount.StringFixed(2))
	}
	if b.BalanceUsed.IsNegative() || b.CashAmount.IsNegative() {
		return ErrBreakdownMismatch
	}
	return nil
}

// Resolve 根据应付金额、会员（可为 nil）和支付请求得出支付构成
func Resolve(finalAmount decimal.Decimal, member *model.Member, req Request) (Breakdown, error) {
	if finalAmount.IsNegative() {
		return Breakdown{}, ErrInvalidAmount
	}

	switch req.Method {
	case MethodCash, MethodWechat, MethodAlipay:
		return Breakdown{Method: req.Method, BalanceUsed: decimal.Zero, CashAmount: finalAmount}, nil

	case MethodBalance:
		if member == nil {
			return Breakdown{}, ErrMemberRequired
		}
		if !finalAmount.IsPositive() {
			return Breakdown{}, ErrInvalidAmount
		}
		if member.Balance.LessThan(finalAmount) {
			return Breakdown{}, insufficient(member.Balance, finalAmount)
		}
		return Breakdown{Method: MethodBalance, BalanceUsed: finalAmount, CashAmount: decimal.Zero}, nil

	case MethodMixed:
		if member == nil {
			return Breakdown{}, ErrMemberRequired
		}
		part := req.BalanceAmount.Round(2)
		if !part.IsPositive() || !part.LessThan(finalAmount) {
			return Breakdown{}, ErrInvalidBalanceAmount
		}
		if member.Balance.LessThan(part) {
			return Breakdown{}, insufficient(member.Balance, part)
		}
		return Breakdown{Method: MethodMixed, BalanceUsed: part, CashAmount: finalAmount.Sub(part)}, nil
	}
	return Breakdown{}, fmt.Errorf("%w: %q", ErrUnknownMethod, req.Method)
}

func insufficient(have, need decimal.Decimal) error {
	return fmt.Errorf("%w: balance %s, need %s", ErrInsufficientBalance, have.StringFixed(2), need.StringFixed(2))
}
