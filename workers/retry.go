package workers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"salonflow/config"
	"salonflow/services/scheduling"
)

const TypeBookingRetry = "booking:retry"

// retryDelay spaces the first re-attempt out so a brief backend blip has time
// to clear.
const retryDelay = 30 * time.Second

// RetryPayload identifies the degraded session to re-submit.
type RetryPayload struct {
	SessionID string `json:"sessionId"`
}

// Enqueuer schedules booking retries on the asynq queue.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer builds an enqueuer over the retry queue's Redis DB.
func NewEnqueuer() *Enqueuer {
	return &Enqueuer{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisRetryQueueDB,
		}),
	}
}

// EnqueueBookingRetry schedules a deferred re-submission of a locally
// persisted booking payload.
func (e *Enqueuer) EnqueueBookingRetry(ctx context.Context, sessionID string) error {
	payload, err := json.Marshal(RetryPayload{SessionID: sessionID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeBookingRetry, payload)
	_, err = e.client.EnqueueContext(ctx, task,
		asynq.ProcessIn(retryDelay),
		asynq.MaxRetry(10),
	)
	return err
}

// InitRetryWorker runs the async worker in background.
func InitRetryWorker(svc *scheduling.DefaultSchedulingService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisRetryQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingRetry, handleRetryTask(svc))

	// Start async worker with retry logic
	go func() {
		log.Println("[BookingRetryWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[BookingRetryWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[BookingRetryWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleRetryTask(svc *scheduling.DefaultSchedulingService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p RetryPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[BookingRetryHandler] Invalid payload: %v", err)
			return err
		}

		err := svc.ResubmitLocal(ctx, p.SessionID)
		switch {
		case err == nil:
			log.Printf("[BookingRetryHandler] Local booking %s submitted", p.SessionID)
			return nil
		case errors.Is(err, scheduling.ErrSessionNotFound):
			// Session expired or was abandoned; nothing left to submit.
			log.Printf("[BookingRetryHandler] Session %s gone, dropping retry", p.SessionID)
			return nil
		default:
			log.Printf("[BookingRetryHandler] Retry for session %s failed: %v", p.SessionID, err)
			return err
		}
	}
}
