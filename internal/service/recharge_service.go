package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/payment"
	"github.com/d60-Lab/restaurant-pos/internal/pricing"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
	"github.com/d60-Lab/restaurant-pos/pkg/logger"
)

// RechargeInput 充值请求，OperatorID 由调用方从请求上下文中的登录用户取得
type RechargeInput struct {
	MemberID      uint
	Amount        decimal.Decimal
	PaymentMethod payment.Method
	OperatorID    uint
	Remark        string
}

// RechargeResult 充值后的余额与审计记录
type RechargeResult struct {
	Balance decimal.Decimal       `json:"balance"`
	Record  *model.RechargeRecord `json:"record"`
}

// RechargeService 会员充值
type RechargeService struct {
	store *repository.Store
}

func NewRechargeService(store *repository.Store) *RechargeService {
	return &RechargeService{store: store}
}

// RechargeMember 在一个事务内写回会员余额、累计充值并插入充值记录
func (s *RechargeService) RechargeMember(ctx context.Context, in RechargeInput) (*RechargeResult, error) {
	ctx, span := tracer.Start(ctx, "RechargeService.RechargeMember")
	defer span.End()
	span.SetAttributes(attribute.Int("pos.member_id", int(in.MemberID)))

	if !in.Amount.IsPositive() || !in.Amount.Equal(pricing.Round(in.Amount)) {
		return nil, ErrInvalidAmount
	}
	if !in.PaymentMethod.RechargeAllowed() {
		return nil, ErrInvalidRechargeMethod
	}
	if in.OperatorID == 0 {
		return nil, ErrOperatorRequired
	}

	var (
		res *RechargeResult
		err error
	)
	for attempt := 1; attempt <= 2; attempt++ {
		res, err = s.rechargeOnce(ctx, in)
		if !errors.Is(err, repository.ErrStaleVersion) {
			break
		}
	}
	if errors.Is(err, repository.ErrStaleVersion) {
		err = fmt.Errorf("%w: %w", ErrConcurrentUpdate, err)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logRejected("recharge", err)
		return nil, err
	}
	logger.Info("member recharged",
		zap.Uint("member_id", in.MemberID),
		zap.String("amount", in.Amount.StringFixed(2)),
		zap.String("after_balance", res.Balance.StringFixed(2)),
		zap.Uint("operator_id", in.OperatorID))
	return res, nil
}

func (s *RechargeService) rechargeOnce(ctx context.Context, in RechargeInput) (*RechargeResult, error) {
	var res *RechargeResult
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		member, err := tx.Members.GetByIDForUpdate(ctx, in.MemberID)
		if err != nil {
			if repository.IsNotFound(err) {
				return withID(ErrMemberNotFound, in.MemberID)
			}
			return storeErr(err)
		}
		if !member.Status.IsActive() {
			return withID(ErrMemberInactive, member.ID)
		}

		before := member.Balance
		after := before.Add(in.Amount)
		member.Balance = after
		member.TotalRecharged = member.TotalRecharged.Add(in.Amount)
		if err := tx.Members.SaveAccount(ctx, member); err != nil {
			if errors.Is(err, repository.ErrStaleVersion) {
				return err
			}
			return storeErr(err)
		}

		rec := &model.RechargeRecord{
			MemberID:      member.ID,
			Amount:        in.Amount,
			BeforeBalance: before,
			AfterBalance:  after,
			PaymentMethod: string(in.PaymentMethod),
			OperatorID:    in.OperatorID,
			Remark:        in.Remark,
		}
		if err := tx.Recharges.Create(ctx, rec); err != nil {
			return storeErr(err)
		}
		res = &RechargeResult{Balance: after, Record: rec}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListRecharges 会员充值记录，新记录在前
func (s *RechargeService) ListRecharges(ctx context.Context, memberID uint, page, pageSize int) ([]*model.RechargeRecord, int64, error) {
	if _, err := s.store.Members.GetByID(ctx, memberID); err != nil {
		if repository.IsNotFound(err) {
			return nil, 0, withID(ErrMemberNotFound, memberID)
		}
		return nil, 0, storeErr(err)
	}
	page, size := normalizePage(page, pageSize)
	recs, total, err := s.store.Recharges.ListByMember(ctx, memberID, (page-1)*size, size)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return recs, total, nil
}
