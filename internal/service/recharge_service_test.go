package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/internal/payment"
)

func TestRechargeMember_FromZero(t *testing.T) {
	f := newFixture(t)
	svc := NewRechargeService(f.store)

	res, err := svc.RechargeMember(context.Background(), RechargeInput{
		MemberID:      f.member.ID,
		Amount:        dec("100.00"),
		PaymentMethod: payment.MethodCash,
		OperatorID:    7,
		Remark:        "opening",
	})
	require.NoError(t, err)
	assert.Equal(t, "100.00", res.Balance.StringFixed(2))
	assert.Equal(t, "0.00", res.Record.BeforeBalance.StringFixed(2))
	assert.Equal(t, "100.00", res.Record.AfterBalance.StringFixed(2))
	assert.EqualValues(t, 7, res.Record.OperatorID)

	m := f.reloadMember(t)
	assert.Equal(t, "100.00", m.Balance.StringFixed(2))
	assert.Equal(t, "100.00", m.TotalRecharged.StringFixed(2))

	recs, total, err := svc.ListRecharges(context.Background(), f.member.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].AfterBalance.Equal(recs[0].BeforeBalance.Add(recs[0].Amount)))
}

func TestRechargeMember_Rejections(t *testing.T) {
	f := newFixture(t)
	svc := NewRechargeService(f.store)
	ctx := context.Background()

	tests := []struct {
		name string
		in   RechargeInput
		want error
	}{
		{"zero amount", RechargeInput{MemberID: f.member.ID, Amount: dec("0"), PaymentMethod: payment.MethodCash, OperatorID: 1}, ErrInvalidAmount},
		{"negative amount", RechargeInput{MemberID: f.member.ID, Amount: dec("-5"), PaymentMethod: payment.MethodCash, OperatorID: 1}, ErrInvalidAmount},
		{"sub-cent amount", RechargeInput{MemberID: f.member.ID, Amount: dec("1.005"), PaymentMethod: payment.MethodCash, OperatorID: 1}, ErrInvalidAmount},
		{"balance method", RechargeInput{MemberID: f.member.ID, Amount: dec("10"), PaymentMethod: payment.MethodBalance, OperatorID: 1}, ErrInvalidRechargeMethod},
		{"no operator", RechargeInput{MemberID: f.member.ID, Amount: dec("10"), PaymentMethod: payment.MethodAlipay}, ErrOperatorRequired},
		{"unknown member", RechargeInput{MemberID: 9999, Amount: dec("10"), PaymentMethod: payment.MethodWechat, OperatorID: 1}, ErrMemberNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RechargeMember(ctx, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}

	_, err := NewMemberService(f.store).SetActive(ctx, f.member.ID, false)
	require.NoError(t, err)
	_, err = svc.RechargeMember(ctx, RechargeInput{MemberID: f.member.ID, Amount: dec("10"), PaymentMethod: payment.MethodCash, OperatorID: 1})
	require.ErrorIs(t, err, ErrMemberInactive)

	var n int64
	require.NoError(t, f.db.Model(&model.RechargeRecord{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.True(t, f.reloadMember(t).Balance.IsZero())
}
