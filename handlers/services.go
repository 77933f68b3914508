package handlers

import (
	"time"

	"tutorbook/config"
	availabilityRepo "tutorbook/database/repository/availability"
	identityRepo "tutorbook/database/repository/identity"
	ledgerRepo "tutorbook/database/repository/ledger"
	"tutorbook/services/availability"
	"tutorbook/services/finalize"
	"tutorbook/services/hold"
	"tutorbook/services/payment"
	"tutorbook/utils"
)

var (
	AvailabilitySvc availability.AvailabilityService
	HoldSvc         hold.HoldService
	FinalizeSvc     finalize.FinalizeService
	PaymentSvc      payment.PaymentService
)

// InitServices wires the handler-level services. Called once from main after
// the database and cache connections are up.
func InitServices() {
	rules := availabilityRepo.NewMongoAvailabilityRepo()
	ledger := ledgerRepo.NewMongoLedgerRepo()
	identities := identityRepo.NewMongoIdentityRepo()

	holdTTL := config.AppConfig.HoldTTL
	if holdTTL <= 0 {
		holdTTL = 15 * time.Minute
	}
	cacheTTL := config.AppConfig.AvailabilityCacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	AvailabilitySvc = &availability.DefaultAvailabilityService{
		Rules:        rules,
		Ledger:       ledger,
		Cache:        utils.GetAvailabilityCacheClient(),
		CacheTTL:     cacheTTL,
		GridStepMins: config.AppConfig.SlotGridStepMins,
	}
	HoldSvc = &hold.DefaultHoldService{
		Ledger:       ledger,
		Identities:   identities,
		Rules:        rules,
		TTL:          holdTTL,
		GridStepMins: config.AppConfig.SlotGridStepMins,
	}
	FinalizeSvc = &finalize.DefaultFinalizeService{
		Ledger:     ledger,
		Identities: identities,
	}
	PaymentSvc = &payment.DefaultPaymentService{
		Holds:         HoldSvc,
		WebhookSecret: config.AppConfig.StripeWebhookSecret,
	}
}
