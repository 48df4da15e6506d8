package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

type TableRepository interface {
	Create(ctx context.Context, t *model.Table) error
	GetByID(ctx context.Context, id uint) (*model.Table, error)
	GetByNumber(ctx context.Context, number string) (*model.Table, error)
	List(ctx context.Context, includeInactive bool) ([]*model.Table, error)
	SetStatus(ctx context.Context, id uint, status model.Lifecycle) error
}

type tableRepository struct{ db *gorm.DB }

func NewTableRepository(db *gorm.DB) TableRepository { return &tableRepository{db: db} }

func (r *tableRepository) Create(ctx context.Context, t *model.Table) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tableRepository) GetByID(ctx context.Context, id uint) (*model.Table, error) {
	var t model.Table
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tableRepository) GetByNumber(ctx context.Context, number string) (*model.Table, error) {
	var t model.Table
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tableRepository) List(ctx context.Context, includeInactive bool) ([]*model.Table, error) {
	q := r.db.WithContext(ctx).Model(&model.Table{})
	if !includeInactive {
		q = q.Where("status = ?", model.LifecycleActive)
	}
	var res []*model.Table
	err := q.Order("number ASC").Find(&res).Error
	return res, err
}

func (r *tableRepository) SetStatus(ctx context.Context, id uint, status model.Lifecycle) error {
	res := r.db.WithContext(ctx).Model(&model.Table{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
