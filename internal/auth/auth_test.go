package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{UserID: 7, Username: "bob", Role: model.RoleCashier})
	p, ok := PrincipalFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, uint(7), p.UserID)
	assert.True(t, p.HasRole(model.RoleCashier))
	assert.False(t, p.HasRole(model.RoleKitchen))

	admin := Principal{Role: model.RoleAdmin}
	assert.True(t, admin.HasRole(model.RoleKitchen))
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	tok, exp, err := m.Issue(Principal{UserID: 3, Username: "chef", Role: model.RoleKitchen})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	p, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: 3, Username: "chef", Role: model.RoleKitchen}, p)
}

func TestTokenRejected(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	tok, _, err := m.Issue(Principal{UserID: 1, Username: "a", Role: model.RoleAdmin})
	require.NoError(t, err)

	other := NewTokenManager("other", time.Hour)
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
