package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		name    string
		current RequestStatus
		action  LifecycleAction
		want    RequestStatus
		ok      bool
	}{
		{"supplier confirms pending", StatusInProcess, ActionSupplierConfirm, StatusConfirmed, true},
		{"supplier rejects pending", StatusInProcess, ActionSupplierReject, StatusRejected, true},
		{"admin advances pending", StatusInProcess, ActionAdminAdvance, StatusConfirmed, true},
		{"admin advances confirmed", StatusConfirmed, ActionAdminAdvance, StatusWaitingForPayment, true},
		{"admin completes payment", StatusWaitingForPayment, ActionAdminAdvance, StatusCompleted, true},
		{"logist completes payment", StatusWaitingForPayment, ActionLogistConfirm, StatusCompleted, true},

		{"supplier cannot reject confirmed", StatusConfirmed, ActionSupplierReject, "", false},
		{"supplier cannot confirm twice", StatusConfirmed, ActionSupplierConfirm, "", false},
		{"logist cannot confirm pending", StatusInProcess, ActionLogistConfirm, "", false},
		{"logist cannot confirm confirmed", StatusConfirmed, ActionLogistConfirm, "", false},
		{"nothing leaves completed", StatusCompleted, ActionAdminAdvance, "", false},
		{"nothing leaves rejected", StatusRejected, ActionSupplierConfirm, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, ok := Transition(tc.current, tc.action)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, next)
			}
		})
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []RequestStatus{StatusInProcess, StatusConfirmed, StatusWaitingForPayment, StatusCompleted, StatusRejected} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, RequestStatus("SHIPPED").Valid())
	assert.False(t, RequestStatus("").Valid())
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusInProcess.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
	assert.False(t, StatusWaitingForPayment.Terminal())
	assert.False(t, RequestStatus("SHIPPED").Terminal())
}
