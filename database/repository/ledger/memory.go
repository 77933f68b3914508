package ledgerRepo

import (
	"context"
	"sync"
	"time"

	"tutorbook/models"
)

// MemoryLedgerRepo is an in-memory LedgerRepository for tests and local
// development. Transactional units are serialized by a dedicated mutex, which
// mirrors the exclusion the Mongo implementation gets from its transactions
// and unique indexes, and a failed unit restores the pre-transaction snapshot
// to mirror the Mongo abort. Not for production: a process-local map cannot
// provide cross-process mutual exclusion.
type MemoryLedgerRepo struct {
	txMu sync.Mutex
	mu   sync.Mutex

	holds  map[string]models.Hold
	appts  map[string]models.Appointment
	orders map[string]models.Order // keyed by payment_ref
	recons []models.ReconciliationCase
}

// NewMemoryLedgerRepo constructs an empty in-memory ledger.
func NewMemoryLedgerRepo() *MemoryLedgerRepo {
	return &MemoryLedgerRepo{
		holds:  make(map[string]models.Hold),
		appts:  make(map[string]models.Appointment),
		orders: make(map[string]models.Order),
	}
}

func (repo *MemoryLedgerRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	repo.txMu.Lock()
	defer repo.txMu.Unlock()

	snapHolds, snapAppts, snapOrders, snapRecons := repo.snapshot()
	if err := fn(ctx); err != nil {
		repo.restore(snapHolds, snapAppts, snapOrders, snapRecons)
		return err
	}
	return nil
}

func (repo *MemoryLedgerRepo) snapshot() (map[string]models.Hold, map[string]models.Appointment, map[string]models.Order, []models.ReconciliationCase) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	holds := make(map[string]models.Hold, len(repo.holds))
	for k, v := range repo.holds {
		holds[k] = v
	}
	appts := make(map[string]models.Appointment, len(repo.appts))
	for k, v := range repo.appts {
		appts[k] = v
	}
	orders := make(map[string]models.Order, len(repo.orders))
	for k, v := range repo.orders {
		orders[k] = v
	}
	recons := make([]models.ReconciliationCase, len(repo.recons))
	copy(recons, repo.recons)
	return holds, appts, orders, recons
}

func (repo *MemoryLedgerRepo) restore(holds map[string]models.Hold, appts map[string]models.Appointment, orders map[string]models.Order, recons []models.ReconciliationCase) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.holds = holds
	repo.appts = appts
	repo.orders = orders
	repo.recons = recons
}

func (repo *MemoryLedgerRepo) InsertHold(_ context.Context, hold *models.Hold) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, h := range repo.holds {
		if h.TutorID == hold.TutorID && h.Start.Equal(hold.Start) {
			return ErrDuplicateHold
		}
	}
	repo.holds[hold.ID] = *hold
	return nil
}

func (repo *MemoryLedgerRepo) GetHold(_ context.Context, holdID string) (*models.Hold, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	h, ok := repo.holds[holdID]
	if !ok {
		return nil, ErrNotFound
	}
	out := h
	return &out, nil
}

func (repo *MemoryLedgerRepo) UpdateHoldCheckout(_ context.Context, holdID string, details models.CheckoutDetails) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	h, ok := repo.holds[holdID]
	if !ok {
		return ErrNotFound
	}
	h.Checkout = &details
	repo.holds[holdID] = h
	return nil
}

func (repo *MemoryLedgerRepo) DeleteHold(_ context.Context, holdID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.holds, holdID)
	return nil
}

func (repo *MemoryLedgerRepo) PurgeExpiredHolds(_ context.Context, now time.Time) ([]models.Hold, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var purged []models.Hold
	for id, h := range repo.holds {
		if now.After(h.ExpiresAt) {
			purged = append(purged, h)
			delete(repo.holds, id)
		}
	}
	return purged, nil
}

func (repo *MemoryLedgerRepo) FindOverlappingHold(_ context.Context, tutorID string, start, end, now time.Time) (*models.Hold, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, h := range repo.holds {
		if h.TutorID == tutorID && !now.After(h.ExpiresAt) && models.Overlaps(h.Start, h.End, start, end) {
			out := h
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (repo *MemoryLedgerRepo) ListActiveHolds(_ context.Context, tutorID string, from, to, now time.Time) ([]models.Hold, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var holds []models.Hold
	for _, h := range repo.holds {
		if h.TutorID == tutorID && !now.After(h.ExpiresAt) && models.Overlaps(h.Start, h.End, from, to) {
			holds = append(holds, h)
		}
	}
	return holds, nil
}

func (repo *MemoryLedgerRepo) CountActiveHoldsForClaimant(_ context.Context, claimantID string, now time.Time) (int64, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var n int64
	for _, h := range repo.holds {
		if h.ClaimantID == claimantID && !now.After(h.ExpiresAt) {
			n++
		}
	}
	return n, nil
}

func (repo *MemoryLedgerRepo) InsertAppointment(_ context.Context, appt *models.Appointment) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.appts[appt.ID] = *appt
	return nil
}

func (repo *MemoryLedgerRepo) GetAppointment(_ context.Context, apptID string) (*models.Appointment, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	a, ok := repo.appts[apptID]
	if !ok {
		return nil, ErrNotFound
	}
	out := a
	return &out, nil
}

func (repo *MemoryLedgerRepo) FindOverlappingAppointment(_ context.Context, tutorID string, start, end time.Time) (*models.Appointment, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, a := range repo.appts {
		if a.TutorID == tutorID && a.Status == models.AppointmentScheduled && models.Overlaps(a.Start, a.End, start, end) {
			out := a
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (repo *MemoryLedgerRepo) ListScheduledAppointments(_ context.Context, tutorID string, from, to time.Time) ([]models.Appointment, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var appts []models.Appointment
	for _, a := range repo.appts {
		if a.TutorID == tutorID && a.Status == models.AppointmentScheduled && models.Overlaps(a.Start, a.End, from, to) {
			appts = append(appts, a)
		}
	}
	return appts, nil
}

func (repo *MemoryLedgerRepo) CountAppointmentsForUser(_ context.Context, userID string) (int64, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var n int64
	for _, a := range repo.appts {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (repo *MemoryLedgerRepo) InsertOrder(_ context.Context, order *models.Order) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, exists := repo.orders[order.PaymentRef]; exists {
		return ErrDuplicateOrder
	}
	repo.orders[order.PaymentRef] = *order
	return nil
}

func (repo *MemoryLedgerRepo) GetOrderByPaymentRef(_ context.Context, paymentRef string) (*models.Order, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	o, ok := repo.orders[paymentRef]
	if !ok {
		return nil, ErrNotFound
	}
	out := o
	return &out, nil
}

func (repo *MemoryLedgerRepo) FlagReconciliation(_ context.Context, rc *models.ReconciliationCase) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.recons = append(repo.recons, *rc)
	return nil
}

// ReconciliationCases returns a snapshot of flagged cases. Test helper.
func (repo *MemoryLedgerRepo) ReconciliationCases() []models.ReconciliationCase {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	out := make([]models.ReconciliationCase, len(repo.recons))
	copy(out, repo.recons)
	return out
}
