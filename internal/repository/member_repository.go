package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

// MemberRepository 会员仓储接口
type MemberRepository interface {
	Create(ctx context.Context, m *model.Member) error
	GetByID(ctx context.Context, id uint) (*model.Member, error)
	// GetByIDForUpdate 事务内读取并加行锁（sqlite 依赖 IMMEDIATE 事务串行化）
	GetByIDForUpdate(ctx context.Context, id uint) (*model.Member, error)
	GetByPhone(ctx context.Context, phone string) (*model.Member, error)
	List(ctx context.Context, keyword string, offset, limit int) ([]*model.Member, int64, error)
	UpdateProfile(ctx context.Context, id uint, updates map[string]any) error
	// SaveAccount 以版本号为条件写回余额与统计字段
	SaveAccount(ctx context.Context, m *model.Member) error
	// ActiveTotals 在用会员数与余额合计
	ActiveTotals(ctx context.Context) (int64, decimal.Decimal, error)
}

type memberRepository struct{ db *gorm.DB }

func NewMemberRepository(db *gorm.DB) MemberRepository { return &memberRepository{db: db} }

func (r *memberRepository) Create(ctx context.Context, m *model.Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *memberRepository) GetByID(ctx context.Context, id uint) (*model.Member, error) {
	var m model.Member
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepository) GetByIDForUpdate(ctx context.Context, id uint) (*model.Member, error) {
	var m model.Member
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepository) GetByPhone(ctx context.Context, phone string) (*model.Member, error) {
	var m model.Member
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepository) List(ctx context.Context, keyword string, offset, limit int) ([]*model.Member, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Member{})
	if keyword != "" {
		like := "%" + keyword + "%"
		q = q.Where("name LIKE ? OR phone LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var res []*model.Member
	err := q.Order("id DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, total, err
}

func (r *memberRepository) UpdateProfile(ctx context.Context, id uint, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.Member{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *memberRepository) SaveAccount(ctx context.Context, m *model.Member) error {
	res := r.db.WithContext(ctx).
		Model(&model.Member{}).
		Where("id = ? AND version = ?", m.ID, m.Version).
		Updates(map[string]any{
			"balance":         m.Balance,
			"total_spent":     m.TotalSpent,
			"total_recharged": m.TotalRecharged,
			"visit_count":     m.VisitCount,
			"last_visit":      m.LastVisit,
			"version":         gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	m.Version++
	return nil
}

func (r *memberRepository) ActiveTotals(ctx context.Context) (int64, decimal.Decimal, error) {
	var balances []decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.Member{}).
		Where("status = ?", model.LifecycleActive).
		Pluck("balance", &balances).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b)
	}
	return int64(len(balances)), sum.Round(2), nil
}
