package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

// RechargeRepository 充值流水只提供追加与查询
type RechargeRepository interface {
	Create(ctx context.Context, rec *model.RechargeRecord) error
	ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*model.RechargeRecord, int64, error)
}

type rechargeRepository struct{ db *gorm.DB }

func NewRechargeRepository(db *gorm.DB) RechargeRepository { return &rechargeRepository{db: db} }

func (r *rechargeRepository) Create(ctx context.Context, rec *model.RechargeRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *rechargeRepository) ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*model.RechargeRecord, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.RechargeRecord{}).Where("member_id = ?", memberID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var res []*model.RechargeRecord
	err := q.Order("id DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, total, err
}
