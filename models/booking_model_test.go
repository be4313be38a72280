package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	all := []PaymentStatus{StatusPending, StatusCompleted, StatusFailed, StatusCancelled}
	allowed := map[[2]PaymentStatus]bool{
		{StatusPending, StatusCompleted}:   true,
		{StatusPending, StatusFailed}:      true,
		{StatusPending, StatusCancelled}:   true,
		{StatusCompleted, StatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]PaymentStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusCompleted.IsTerminal())
}

func TestHoldActive(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	exp := now.Add(5 * time.Minute)
	b := Booking{PaymentStatus: StatusPending, HoldExpiresAt: &exp}

	assert.True(t, b.HoldActive(now))
	assert.False(t, b.HoldActive(exp))
	b.PaymentStatus = StatusCompleted
	assert.False(t, b.HoldActive(now))
}

func TestCommissionAmount(t *testing.T) {
	assert.Equal(t, 100.0, CommissionSettings{Type: CommissionPercentage, Value: 10}.Amount(1000))
	assert.Equal(t, 50.0, CommissionSettings{Type: CommissionFlat, Value: 50}.Amount(1000))
	assert.Equal(t, 30.0, CommissionSettings{Type: CommissionFlat, Value: 50}.Amount(30))
	assert.Equal(t, 0.0, CommissionSettings{}.Amount(1000))
}

func TestPartnerCommissionRoundTrip(t *testing.T) {
	var p Partner
	cs, err := p.Commission()
	require.NoError(t, err)
	assert.Equal(t, CommissionSettings{}, cs)

	require.NoError(t, p.SetCommission(CommissionSettings{Type: CommissionPercentage, Value: 12.5}))
	cs, err = p.Commission()
	require.NoError(t, err)
	assert.Equal(t, CommissionSettings{Type: CommissionPercentage, Value: 12.5}, cs)
}

func TestPartnerCommissionRejectsCorruptSettings(t *testing.T) {
	p := Partner{CommissionSettings: []byte(`{"type":"flat","value":"fifty"}`)}
	cs, err := p.Commission()
	assert.Error(t, err)
	assert.Equal(t, CommissionSettings{}, cs)
}
