package cron

import (
	"context"
	"log"
	"time"

	"homefix/config"
	"homefix/services/dispatch"

	"github.com/hibiken/asynq"
)

const TypeDispatchRecover = "dispatch:recover"

// recoveryInterval is how often stuck SEARCHING bookings are re-scanned. The
// boot-time scan covers restarts; this covers anything that slips past it.
const recoveryInterval = "@every 1m"

// InitRecoveryWorker runs the async worker and its periodic scheduler in the
// background.
func InitRecoveryWorker(registry *dispatch.Registry) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisRecoveryQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeDispatchRecover, handleRecoverTask(registry))

	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register(recoveryInterval, asynq.NewTask(TypeDispatchRecover, nil)); err != nil {
		log.Fatalf("[RecoveryWorker] failed to register periodic recovery task: %v", err)
	}

	// Start worker and scheduler with retry logic.
	go runWithRetry("worker", func() error { return srv.Run(mux) })
	go runWithRetry("scheduler", func() error { return scheduler.Run() })
}

func runWithRetry(name string, run func() error) {
	const maxAttempts = 5
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err := run()
		if err == nil {
			return
		}
		log.Printf("[RecoveryWorker] attempt %d/%d: %s failed: %v", attempts, maxAttempts, name, err)
		if attempts == maxAttempts {
			log.Fatalf("[RecoveryWorker] max retry attempts reached for %s", name)
		}
		time.Sleep(time.Duration(attempts*2) * time.Second)
	}
}

func handleRecoverTask(registry *dispatch.Registry) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		recovered, err := registry.RecoverOnStartup(ctx)
		if err != nil {
			log.Printf("[RecoveryHandler] recovery scan failed: %v", err)
			return err
		}
		if recovered > 0 {
			log.Printf("[RecoveryHandler] re-registered %d stuck dispatches", recovered)
		}
		return nil
	}
}
