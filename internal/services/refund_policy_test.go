package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paylink_backend/internal/models"
)

func TestComputeRefundDueTime_AskAndRefund(t *testing.T) {
	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	due := ComputeRefundDueTime(paidAt, models.KindAskAndRefund)

	require.NotNil(t, due)
	assert.Equal(t, paidAt.Add(30*24*time.Hour), *due)
}

func TestComputeRefundDueTime_OtherKindsHaveNoObligation(t *testing.T) {
	paidAt := time.Now().UTC()

	assert.Nil(t, ComputeRefundDueTime(paidAt, models.KindAskPayment))
	assert.Nil(t, ComputeRefundDueTime(paidAt, models.KindSubscription))
}
