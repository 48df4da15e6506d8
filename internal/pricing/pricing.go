// Package pricing 将购物车换算为订单金额，纯函数无副作用。
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// 金额统一保留两位小数
const Scale = 2

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrInvalidDiscount = errors.New("discount must be between 0 and subtotal")
	// ErrTotalsMismatch final_amount 与 subtotal - discount 不一致
	ErrTotalsMismatch = errors.New("final amount does not equal subtotal minus discount")
)

// Line 购物车中的一行
type Line struct {
	DishID    uint
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal 单行小计 = 单价 × 数量
func (l Line) LineTotal() decimal.Decimal {
	return Round(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
}

// Totals 订单金额
type Totals struct {
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	FinalAmount decimal.Decimal
}

// Check 校验 final = subtotal - discount，下游只校验不重算
func (t Totals) Check() error {
	if !t.FinalAmount.Equal(t.Subtotal.Sub(t.Discount)) {
		return fmt.Errorf("%w: subtotal=%s discount=%s final=%s",
			ErrTotalsMismatch, t.Subtotal.StringFixed(Scale), t.Discount.StringFixed(Scale), t.FinalAmount.StringFixed(Scale))
	}
	return nil
}

// Validate 校验单行输入
func (l Line) Validate() error {
	if l.Quantity < 1 {
		return fmt.Errorf("%w: dish %d quantity %d", ErrInvalidQuantity, l.DishID, l.Quantity)
	}
	if l.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: dish %d", ErrInvalidPrice, l.DishID)
	}
	return nil
}

// Calculate 计算小计；折扣目前恒为 0，留作促销扩展点
func Calculate(lines []Line) (Totals, error) {
	return CalculateWithDiscount(lines, decimal.Zero)
}

// CalculateWithDiscount 计算小计并套用折扣
func CalculateWithDiscount(lines []Line, discount decimal.Decimal) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, ErrEmptyCart
	}
	subtotal := decimal.Zero
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return Totals{}, err
		}
		subtotal = subtotal.Add(l.LineTotal())
	}
	subtotal = Round(subtotal)
	discount = Round(discount)
	if discount.IsNegative() || discount.GreaterThan(subtotal) {
		return Totals{}, ErrInvalidDiscount
	}
	t := Totals{
		Subtotal:    subtotal,
		Discount:    discount,
		FinalAmount: subtotal.Sub(discount),
	}
	return t, t.Check()
}

// Round 四舍五入到分
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}
