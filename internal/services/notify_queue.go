package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/civicrules/civicpulse/internal/config"
	"github.com/civicrules/civicpulse/pkg/logger"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TaskTypeNotify = "notify:grievance"
)

var nqlog = logger.Component("notify_queue")

// NotifyTask represents a citizen notification to be delivered when a
// grievance moves through its lifecycle.
type NotifyTask struct {
	DeliveryID  string `json:"delivery_id"`
	GrievanceID uint   `json:"grievance_id"`
	CitizenID   uint   `json:"citizen_id"`
	Event       string `json:"event"` // verified, assigned, status_changed, feedback, reopened
	Detail      string `json:"detail"`
}

// NewNotifyTask builds a task with a fresh delivery id.
func NewNotifyTask(grievanceID, citizenID uint, event, detail string) *NotifyTask {
	return &NotifyTask{
		DeliveryID:  uuid.New().String(),
		GrievanceID: grievanceID,
		CitizenID:   citizenID,
		Event:       event,
		Detail:      detail,
	}
}

// NotifyQueue defines the interface for notification delivery.
type NotifyQueue interface {
	// Enqueue adds a notification to the queue
	Enqueue(task *NotifyTask) error
	// IsAsync returns true if the queue delivers asynchronously via Redis
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global notify queue instance
var (
	globalNotifyQueue NotifyQueue
	notifyQueueOnce   sync.Once
)

// InitNotifyQueue initializes the global notify queue based on config.
func InitNotifyQueue(cfg *config.Config) NotifyQueue {
	notifyQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncNotifyQueue(&cfg.Redis)
			if err != nil {
				nqlog.Warn().Err(err).Msg("Redis unavailable, falling back to log-only delivery")
				globalNotifyQueue = NewLogNotifyQueue()
			} else {
				nqlog.Info().Str("addr", cfg.Redis.Addr).Msg("async queue initialized")
				globalNotifyQueue = queue
			}
		} else {
			nqlog.Info().Msg("log-only delivery (Redis disabled)")
			globalNotifyQueue = NewLogNotifyQueue()
		}
	})
	return globalNotifyQueue
}

// GetNotifyQueue returns the global notify queue instance.
func GetNotifyQueue() NotifyQueue {
	return globalNotifyQueue
}

// Notify enqueues a notification on the global queue, if initialized.
func Notify(task *NotifyTask) {
	if globalNotifyQueue == nil {
		return
	}
	if err := globalNotifyQueue.Enqueue(task); err != nil {
		nqlog.Error().Err(err).Msg("enqueue failed")
	}
}

// AsyncNotifyQueue implements NotifyQueue using asynq (Redis-based)
type AsyncNotifyQueue struct {
	client *asynq.Client
}

// NewAsyncNotifyQueue creates a new Redis-based async queue
func NewAsyncNotifyQueue(cfg *config.RedisConfig) (*AsyncNotifyQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async delivery
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncNotifyQueue{client: client}, nil
}

// Enqueue adds a notification task to the async queue
func (q *AsyncNotifyQueue) Enqueue(task *NotifyTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeNotify, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	nqlog.Info().Str("task_id", info.ID).Str("delivery", task.DeliveryID).Msg("task enqueued")
	return nil
}

func (q *AsyncNotifyQueue) IsAsync() bool {
	return true
}

func (q *AsyncNotifyQueue) Close() error {
	return q.client.Close()
}

// LogNotifyQueue implements NotifyQueue without Redis; deliveries are
// handed to an optional processor in a goroutine, or just logged.
type LogNotifyQueue struct {
	processor func(context.Context, *NotifyTask) error
}

// NewLogNotifyQueue creates a queue that logs deliveries locally.
func NewLogNotifyQueue() *LogNotifyQueue {
	return &LogNotifyQueue{}
}

// SetProcessor sets the function invoked for each notification.
func (q *LogNotifyQueue) SetProcessor(processor func(context.Context, *NotifyTask) error) {
	q.processor = processor
}

// Enqueue processes the notification immediately without blocking the caller.
func (q *LogNotifyQueue) Enqueue(task *NotifyTask) error {
	if q.processor == nil {
		nqlog.Info().
			Str("delivery", task.DeliveryID).
			Uint("grievance_id", task.GrievanceID).
			Uint("citizen_id", task.CitizenID).
			Str("event", task.Event).
			Msg("notification delivered to log")
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.processor(ctx, task); err != nil {
			nqlog.Error().Err(err).Msg("delivery failed")
		}
	}()

	return nil
}

func (q *LogNotifyQueue) IsAsync() bool {
	return false
}

func (q *LogNotifyQueue) Close() error {
	return nil
}
