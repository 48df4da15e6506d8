package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
)

// MemberService 会员档案。余额只能经由下单与充值变动
type MemberService struct {
	store *repository.Store
}

func NewMemberService(store *repository.Store) *MemberService {
	return &MemberService{store: store}
}

// Register 新建会员，余额从 0 开始
func (s *MemberService) Register(ctx context.Context, name, phone string) (*model.Member, error) {
	m := &model.Member{
		Name:           strings.TrimSpace(name),
		Phone:          strings.TrimSpace(phone),
		Balance:        decimal.Zero,
		TotalSpent:     decimal.Zero,
		TotalRecharged: decimal.Zero,
		Status:         model.LifecycleActive,
	}
	if err := s.store.Members.Create(ctx, m); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrMemberPhoneTaken
		}
		return nil, storeErr(err)
	}
	return m, nil
}

func (s *MemberService) Get(ctx context.Context, id uint) (*model.Member, error) {
	m, err := s.store.Members.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, withID(ErrMemberNotFound, id)
		}
		return nil, storeErr(err)
	}
	return m, nil
}

// GetByPhone 收银台按手机号查会员
func (s *MemberService) GetByPhone(ctx context.Context, phone string) (*model.Member, error) {
	m, err := s.store.Members.GetByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrMemberNotFound
		}
		return nil, storeErr(err)
	}
	return m, nil
}

func (s *MemberService) List(ctx context.Context, keyword string, page, pageSize int) ([]*model.Member, int64, error) {
	page, size := normalizePage(page, pageSize)
	res, total, err := s.store.Members.List(ctx, strings.TrimSpace(keyword), (page-1)*size, size)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return res, total, nil
}

// UpdateMemberInput nil 字段不修改
type UpdateMemberInput struct {
	Name  *string
	Phone *string
}

func (s *MemberService) Update(ctx context.Context, id uint, in UpdateMemberInput) (*model.Member, error) {
	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if len(updates) > 0 {
		if err := s.store.Members.UpdateProfile(ctx, id, updates); err != nil {
			return nil, s.mapWriteErr(err, id)
		}
	}
	return s.Get(ctx, id)
}

// SetActive 停用或恢复会员；停用后不能下单、不能充值，历史订单保留
func (s *MemberService) SetActive(ctx context.Context, id uint, active bool) (*model.Member, error) {
	status := model.LifecycleInactive
	if active {
		status = model.LifecycleActive
	}
	if err := s.store.Members.UpdateProfile(ctx, id, map[string]any{"status": status}); err != nil {
		return nil, s.mapWriteErr(err, id)
	}
	return s.Get(ctx, id)
}

// RecentOrders 会员最近订单
func (s *MemberService) RecentOrders(ctx context.Context, id uint, limit int) ([]*model.Order, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	orders, err := s.store.Orders.GetByMemberID(ctx, id, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	return orders, nil
}

func (s *MemberService) mapWriteErr(err error, id uint) error {
	switch {
	case repository.IsNotFound(err):
		return withID(ErrMemberNotFound, id)
	case repository.IsDuplicateKey(err):
		return ErrMemberPhoneTaken
	default:
		return storeErr(err)
	}
}
