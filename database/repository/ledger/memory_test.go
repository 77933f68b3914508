package ledgerRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"tutorbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTransactionRollsBackOnError(t *testing.T) {
	repo := NewMemoryLedgerRepo()
	ctx := context.Background()
	start := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)

	boom := errors.New("abort")
	err := repo.WithTransaction(ctx, func(txCtx context.Context) error {
		require.NoError(t, repo.InsertAppointment(txCtx, &models.Appointment{
			ID:      "appt-1",
			TutorID: "tutor-1",
			Start:   start,
			End:     start.Add(time.Hour),
			Status:  models.AppointmentScheduled,
		}))
		require.NoError(t, repo.InsertHold(txCtx, &models.Hold{
			ID:        "hold-1",
			TutorID:   "tutor-1",
			Start:     start,
			End:       start.Add(time.Hour),
			ExpiresAt: start,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Writes from the failed unit must not survive, matching the Mongo abort.
	_, err = repo.GetAppointment(ctx, "appt-1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetHold(ctx, "hold-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithTransactionCommitsOnSuccess(t *testing.T) {
	repo := NewMemoryLedgerRepo()
	ctx := context.Background()

	err := repo.WithTransaction(ctx, func(txCtx context.Context) error {
		return repo.InsertOrder(txCtx, &models.Order{ID: "order-1", PaymentRef: "pi_1"})
	})
	require.NoError(t, err)

	order, err := repo.GetOrderByPaymentRef(ctx, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)
}
