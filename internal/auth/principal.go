package auth

import (
	"context"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

// Principal 当前请求的已认证操作员
type Principal struct {
	UserID   uint       `json:"user_id"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

// HasRole 是否具备任一角色；admin 拥有全部权限
func (p Principal) HasRole(roles ...model.Role) bool {
	if p.Role == model.RoleAdmin {
		return true
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

type principalKey struct{}

// WithPrincipal 把操作员放入请求上下文，由调用层显式传递
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom 读取上下文中的操作员
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
