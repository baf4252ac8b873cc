package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrace(t *testing.T) {
	kept := NewTrace(OriginHTTP, "trace-1", "req-1")
	assert.Equal(t, &Trace{TraceID: "trace-1", RequestID: "req-1", Origin: OriginHTTP}, kept)

	generated := NewTrace(OriginOutboxRelay, "", "")
	assert.NotEmpty(t, generated.TraceID)
	assert.NotEmpty(t, generated.RequestID)
	assert.NotEqual(t, generated.TraceID, generated.RequestID)
	assert.Equal(t, OriginOutboxRelay, generated.Origin)
}

func TestTraceRoundTrip(t *testing.T) {
	assert.Nil(t, GetTrace(context.Background()))

	tr := NewTrace(OriginCleanup, "", "")
	got := GetTrace(WithTrace(context.Background(), tr))
	require.NotNil(t, got)
	assert.Same(t, tr, got)
}

func TestHasRole(t *testing.T) {
	ctx := context.Background()
	assert.False(t, HasRole(ctx, RoleCashier), "anonymous")

	cashier := WithUser(ctx, &UserContext{UserID: "u1", Role: RoleCashier, BranchID: "b1"})
	assert.True(t, HasRole(cashier, RoleCashier, RoleManager))
	assert.False(t, HasRole(cashier, RoleManager))
	assert.Equal(t, "b1", GetBranchID(cashier))

	admin := WithUser(ctx, &UserContext{UserID: "root", Role: RoleAdmin})
	assert.True(t, HasRole(admin, RoleManager))
	assert.Equal(t, "root", GetUserID(admin))
}
