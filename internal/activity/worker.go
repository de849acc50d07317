package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rentdesk/rentdesk/internal/metrics"
	"github.com/rentdesk/rentdesk/internal/model"
)

const (
	// ConsumerGroup is the Redis consumer group name.
	ConsumerGroup = "notification_workers"

	// DefaultBatchSize is the max events per batch.
	DefaultBatchSize = 100

	// DefaultBlockTimeout is how long to block waiting for messages.
	DefaultBlockTimeout = 5 * time.Second

	// DefaultMaxRetries is the max retries for batch processing.
	DefaultMaxRetries = 3

	// DefaultClaimInterval is how often to scan pending messages.
	DefaultClaimInterval = 10 * time.Second

	// DefaultClaimIdle is the idle time before reclaiming pending messages.
	DefaultClaimIdle = 30 * time.Second
)

// NotificationStore persists the notifications produced from events.
type NotificationStore interface {
	CreateNotifications(ctx context.Context, eventID string, notifications []*model.Notification) (int64, error)
}

// streamEvent is an event paired with the stream ID it was read from.
type streamEvent struct {
	id    string
	event Event
}

// Worker turns activity events into notification rows.
type Worker struct {
	redis         *redis.Client
	store         NotificationStore
	logger        *slog.Logger
	metrics       metrics.Recorder
	consumerID    string
	batchSize     int
	blockTimeout  time.Duration
	maxRetries    int
	retryBackoff  time.Duration
	claimInterval time.Duration
	claimIdle     time.Duration
	claimStartID  string
	lastClaim     time.Time

	started  bool
	draining bool
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
}

// NewWorker creates a new notification worker.
func NewWorker(client *redis.Client, store NotificationStore, logger *slog.Logger, consumerID string, recorder metrics.Recorder) *Worker {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Worker{
		redis:         client,
		store:         store,
		logger:        logger.With("component", "activity.worker", "consumer_id", consumerID),
		metrics:       recorder,
		consumerID:    consumerID,
		batchSize:     DefaultBatchSize,
		blockTimeout:  DefaultBlockTimeout,
		maxRetries:    DefaultMaxRetries,
		retryBackoff:  time.Second,
		claimInterval: DefaultClaimInterval,
		claimIdle:     DefaultClaimIdle,
		claimStartID:  "0-0",
	}
}

// Run starts the worker loop. Blocks until context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("worker already started")
	}
	w.started = true
	w.done = make(chan struct{})
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	defer close(w.done)

	if err := w.ensureConsumerGroup(ctx); err != nil {
		return fmt.Errorf("ensure consumer group: %w", err)
	}

	w.logger.Info("activity worker started")

	for {
		w.mu.Lock()
		draining := w.draining
		w.mu.Unlock()

		if draining {
			w.logger.Info("activity worker draining, stopping")
			return nil
		}

		select {
		case <-ctx.Done():
			w.logger.Info("activity worker stopping")
			return ctx.Err()
		default:
			if err := w.ProcessOnce(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.logger.Error("process error", "error", err)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Shutdown gracefully stops the worker, completing any in-flight batch.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil
	}
	w.draining = true
	cancel := w.cancel
	done := w.done
	w.mu.Unlock()

	w.logger.Info("activity worker shutdown initiated")

	if cancel != nil {
		cancel()
	}

	if done != nil {
		select {
		case <-done:
			w.logger.Info("activity worker shutdown complete")
			return nil
		case <-ctx.Done():
			w.logger.Warn("activity worker shutdown timed out")
			return ctx.Err()
		}
	}
	return nil
}

// SetBatchSize overrides the default batch size.
func (w *Worker) SetBatchSize(size int) {
	if size > 0 {
		w.batchSize = size
	}
}

// SetBlockTimeout overrides the default blocking timeout.
func (w *Worker) SetBlockTimeout(timeout time.Duration) {
	if timeout > 0 {
		w.blockTimeout = timeout
	}
}

// SetClaimIdle overrides the default pending idle threshold.
func (w *Worker) SetClaimIdle(idle time.Duration) {
	if idle > 0 {
		w.claimIdle = idle
	}
}

// SetRetryBackoff overrides the base delay between batch retries.
func (w *Worker) SetRetryBackoff(d time.Duration) {
	if d > 0 {
		w.retryBackoff = d
	}
}

func (w *Worker) ensureConsumerGroup(ctx context.Context) error {
	err := w.redis.XGroupCreateMkStream(ctx, StreamKey, ConsumerGroup, "0").Err()
	if err != nil && !isConsumerGroupExistsError(err) {
		return err
	}
	return nil
}

// ProcessOnce reads and handles a single batch. Messages are acknowledged
// only after their notifications are stored.
func (w *Worker) ProcessOnce(ctx context.Context) error {
	claimed, err := w.maybeClaimPending(ctx)
	if err != nil {
		w.logger.Warn("failed to claim pending messages", "error", err)
	}

	messages := claimed
	if len(messages) == 0 {
		messages, err = w.readBatch(ctx)
		if err != nil {
			return err
		}
	}
	if len(messages) == 0 {
		return nil
	}

	events, messageIDs := w.parseMessages(ctx, messages)
	if len(events) > 0 {
		if err := w.processBatchWithRetry(ctx, events); err != nil {
			w.logger.Error("batch processing failed after retries",
				"batch_size", len(events),
				"error", err,
			)
			return err
		}
	}

	return w.ackMessages(ctx, messageIDs)
}

func (w *Worker) maybeClaimPending(ctx context.Context) ([]redis.XMessage, error) {
	if w.claimInterval <= 0 || w.claimIdle <= 0 {
		return nil, nil
	}
	if !w.lastClaim.IsZero() && time.Since(w.lastClaim) < w.claimInterval {
		return nil, nil
	}

	w.lastClaim = time.Now()
	messages, start, err := w.redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   StreamKey,
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		MinIdle:  w.claimIdle,
		Start:    w.claimStartID,
		Count:    int64(w.batchSize),
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("xautoclaim: %w", err)
	}
	if start != "" {
		w.claimStartID = start
	}
	return messages, nil
}

func (w *Worker) readBatch(ctx context.Context) ([]redis.XMessage, error) {
	streams, err := w.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		Streams:  []string{StreamKey, ">"},
		Count:    int64(w.batchSize),
		Block:    w.blockTimeout,
	}).Result()
	if errors.Is(err, redis.Nil) || len(streams) == 0 {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}
	return streams[0].Messages, nil
}

// parseMessages decodes stream entries. Malformed or invalid entries are
// moved to the dead-letter stream; their IDs are still returned for ACK.
func (w *Worker) parseMessages(ctx context.Context, messages []redis.XMessage) ([]streamEvent, []string) {
	events := make([]streamEvent, 0, len(messages))
	messageIDs := make([]string, 0, len(messages))

	for _, msg := range messages {
		messageIDs = append(messageIDs, msg.ID)

		event, reason, err := decodeMessage(msg)
		if err != nil {
			w.deadLetterMessage(ctx, msg, reason, err.Error())
			continue
		}
		events = append(events, streamEvent{id: msg.ID, event: event})
	}

	return events, messageIDs
}

func decodeMessage(msg redis.XMessage) (Event, string, error) {
	var event Event
	payload, ok := msg.Values["payload"].(string)
	if !ok {
		return event, "invalid_format", errors.New("payload field missing or not a string")
	}
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return event, "unmarshal_error", err
	}
	if err := Validate(event); err != nil {
		return event, "validation_error", err
	}
	return event, "", nil
}

func (w *Worker) deadLetterMessage(ctx context.Context, msg redis.XMessage, reason, detail string) {
	w.logger.Warn("dead-lettering poison message",
		"message_id", msg.ID,
		"reason", reason,
		"detail", detail,
	)

	_, err := w.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: DeadLetterStreamKey,
		MaxLen: 10000,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"original_id":      msg.ID,
			"original_stream":  StreamKey,
			"reason":           reason,
			"detail":           detail,
			"payload":          msg.Values["payload"],
			"dead_lettered_at": time.Now().UTC().Format(time.RFC3339),
		},
	}).Result()
	if err != nil {
		w.logger.Error("failed to write to dead-letter queue",
			"message_id", msg.ID,
			"error", err,
		)
	}

	w.metrics.IncActivityEventProcessed("dead_letter")
}

func (w *Worker) processBatchWithRetry(ctx context.Context, events []streamEvent) error {
	var lastErr error

	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		err := w.processBatch(ctx, events)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt == w.maxRetries {
			break
		}

		backoff := w.retryBackoff * time.Duration(1<<attempt)
		w.logger.Warn("batch processing failed, retrying",
			"attempt", attempt,
			"backoff_seconds", backoff.Seconds(),
			"error", err,
		)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	for range events {
		w.metrics.IncActivityEventProcessed("failed")
	}
	return lastErr
}

// processBatch stores notifications for each event. Inserts are keyed by
// stream ID and recipient, so replaying a partly stored batch is safe.
func (w *Worker) processBatch(ctx context.Context, events []streamEvent) error {
	start := time.Now()
	var inserted int64

	for _, se := range events {
		notifications := BuildNotifications(se.event)
		if len(notifications) == 0 {
			continue
		}
		n, err := w.store.CreateNotifications(ctx, se.id, notifications)
		if err != nil {
			return fmt.Errorf("create notifications for %s: %w", se.id, err)
		}
		inserted += n
	}

	w.logger.Info("batch processed",
		"events_count", len(events),
		"notifications_inserted", inserted,
		"duration_ms", float64(time.Since(start).Microseconds())/1000,
	)

	w.metrics.ObserveActivityBatchSize(len(events))
	for range events {
		w.metrics.IncActivityEventProcessed("success")
	}
	return nil
}

// BuildNotifications renders one notification per resolved recipient.
func BuildNotifications(e Event) []*model.Notification {
	recipients := ResolveRecipients(e)
	if len(recipients) == 0 {
		return nil
	}

	title, body := Render(e)
	createdAt := time.UnixMilli(e.OccurredAt).UTC()
	out := make([]*model.Notification, 0, len(recipients))
	for _, userID := range recipients {
		out = append(out, &model.Notification{
			ID:         ulid.Make().String(),
			UserID:     userID,
			Kind:       e.Type,
			Title:      title,
			Body:       body,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			CreatedAt:  createdAt,
		})
	}
	return out
}

func (w *Worker) ackMessages(ctx context.Context, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if _, err := w.redis.XAck(ctx, StreamKey, ConsumerGroup, messageIDs...).Result(); err != nil {
		return fmt.Errorf("xack: %w", err)
	}
	return nil
}

func isConsumerGroupExistsError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}
