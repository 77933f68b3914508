package cron

import (
	"context"
	"log"
	"time"

	"tutorbook/config"
	"tutorbook/services/hold"
	"tutorbook/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeHoldSweep = "holds:sweep"

// InitSweepWorker runs the background hold sweeper: an asynq server handling
// sweep tasks plus a scheduler that enqueues one every sweep interval. The
// sweeper is the safety net behind the purge that hold creation performs
// inline, so an idle system still frees expired holds.
func InitSweepWorker(holdSvc hold.HoldService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisWorkerDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeHoldSweep, handleSweepTask(holdSvc))

	go func() {
		log.Println("[HoldSweeper] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[HoldSweeper] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[HoldSweeper] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go runSweepScheduler(redisOpts)
}

func handleSweepTask(holdSvc hold.HoldService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		purged, err := holdSvc.SweepExpired(ctx)
		if err != nil {
			utils.GetLogger().Error("hold sweep failed", zap.Error(err))
			return err
		}
		if purged > 0 {
			utils.GetLogger().Info("hold sweep done", zap.Int("purged", purged))
		}
		return nil
	}
}

func runSweepScheduler(redisOpts asynq.RedisClientOpt) {
	interval := config.AppConfig.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{})
	if _, err := scheduler.Register("@every "+interval.String(), asynq.NewTask(TypeHoldSweep, nil)); err != nil {
		log.Printf("[HoldSweeper] failed to register sweep schedule: %v", err)
		return
	}
	if err := scheduler.Run(); err != nil {
		log.Printf("[HoldSweeper] scheduler stopped: %v", err)
	}
}
