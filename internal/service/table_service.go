package service

import (
	"context"
	"strings"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
)

// TableService 餐桌管理
type TableService struct {
	store *repository.Store
}

func NewTableService(store *repository.Store) *TableService {
	return &TableService{store: store}
}

func (s *TableService) Create(ctx context.Context, number string, seats int) (*model.Table, error) {
	if seats <= 0 {
		seats = 4
	}
	t := &model.Table{Number: strings.TrimSpace(number), Seats: seats, Status: model.LifecycleActive}
	if err := s.store.Tables.Create(ctx, t); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrNameTaken
		}
		return nil, storeErr(err)
	}
	return t, nil
}

func (s *TableService) List(ctx context.Context, includeInactive bool) ([]*model.Table, error) {
	res, err := s.store.Tables.List(ctx, includeInactive)
	if err != nil {
		return nil, storeErr(err)
	}
	return res, nil
}

func (s *TableService) SetActive(ctx context.Context, id uint, active bool) (*model.Table, error) {
	if err := s.store.Tables.SetStatus(ctx, id, lifecycleOf(active)); err != nil {
		if repository.IsNotFound(err) {
			return nil, withID(ErrTableNotFound, id)
		}
		return nil, storeErr(err)
	}
	t, err := s.store.Tables.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return t, nil
}
