package hold

import (
	"context"

	"tutorbook/utils"

	"go.uber.org/zap"
)

// SweepExpired is the background safety net behind the inline purge that
// CreateHold already performs: it deletes expired holds and reaps orphaned
// guest identities even when no new hold traffic arrives.
func (svc *DefaultHoldService) SweepExpired(ctx context.Context) (int, error) {
	purged, err := svc.Ledger.PurgeExpiredHolds(ctx, svc.now())
	if err != nil {
		return 0, err
	}
	svc.reapGuestsOf(ctx, purged)
	if len(purged) > 0 {
		utils.GetLogger().Info("expired holds swept", zap.Int("count", len(purged)))
	}
	return len(purged), nil
}
