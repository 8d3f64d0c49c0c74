package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MaturityMaxing/sportns/models"
	"github.com/MaturityMaxing/sportns/push"
	"github.com/MaturityMaxing/sportns/repositories"
)

// WorkerResult aggregates one worker run. Individual item failures never
// surface as an error; only a failure to read the queue does.
type WorkerResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// NotificationWorker drains the durable notification queue: it resolves
// destination tokens, fails items with unusable destinations, and hands the
// rest to the push provider in one batch call.
//
// The worker is safe under overlapping invocations. A pending row picked up
// twice degrades to a duplicate push, which the at-least-once contract
// accepts; it can never corrupt item state because status moves pending →
// sent|failed exactly once.
type NotificationWorker struct {
	queue      repositories.NotificationRepository
	users      repositories.UserRepository
	sender     push.Sender
	batchLimit int
	logger     *slog.Logger
	now        func() time.Time
}

func NewNotificationWorker(
	queue repositories.NotificationRepository,
	users repositories.UserRepository,
	sender push.Sender,
	batchLimit int,
	logger *slog.Logger,
) *NotificationWorker {
	if batchLimit <= 0 {
		batchLimit = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationWorker{
		queue:      queue,
		users:      users,
		sender:     sender,
		batchLimit: batchLimit,
		logger:     logger,
		now:        time.Now,
	}
}

// Run processes one batch. An empty queue is an empty result, not an error.
//
// Provider-level failure leaves the dispatched items pending; there is no
// in-process retry or backoff, the next scheduled run simply picks the same
// rows up again. Items whose destination token is absent or malformed are
// failed terminally without ever calling the provider.
func (w *NotificationWorker) Run(ctx context.Context) (WorkerResult, error) {
	var result WorkerResult

	items, err := w.queue.SelectPendingBatch(ctx, w.batchLimit, w.now())
	if err != nil {
		return result, fmt.Errorf("failed to read notification queue: %w", err)
	}
	if len(items) == 0 {
		return result, nil
	}
	result.Processed = len(items)

	userIDs := make([]int, 0, len(items))
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		if !seen[item.UserID] {
			seen[item.UserID] = true
			userIDs = append(userIDs, item.UserID)
		}
	}
	tokens, err := w.users.PushTokensByIDs(ctx, userIDs)
	if err != nil {
		return result, fmt.Errorf("failed to resolve destination tokens: %w", err)
	}

	var (
		messages      []push.Message
		dispatchedIDs []int
		invalidIDs    []int
	)
	for _, item := range items {
		token, ok := tokens[item.UserID]
		if !ok || token == nil || !push.ValidToken(*token) {
			invalidIDs = append(invalidIDs, item.ID)
			continue
		}
		messages = append(messages, push.Message{
			To:    *token,
			Title: item.Title,
			Body:  item.Body,
			Data:  item.Payload,
		})
		dispatchedIDs = append(dispatchedIDs, item.ID)
	}

	// Invalid destinations are terminal regardless of how the provider call
	// goes; they were classified without contacting it.
	if len(invalidIDs) > 0 {
		if err := w.queue.MarkFailed(ctx, invalidIDs, w.now()); err != nil {
			w.logger.Error("failed to mark invalid-destination items",
				slog.Int("count", len(invalidIDs)), slog.Any("error", err))
		} else {
			result.Failed = len(invalidIDs)
			w.logger.Info("notifications failed on invalid destination",
				slog.Int("count", len(invalidIDs)), slog.Any("error", ErrInvalidDestination))
		}
	}

	if len(messages) == 0 {
		return result, nil
	}

	if err := w.sender.SendBatch(ctx, messages); err != nil {
		// Transient by assumption: items stay pending and the next run
		// retries them. Not raised to the invoker.
		w.logger.Warn("push provider call failed, batch left pending",
			slog.Int("count", len(messages)),
			slog.Any("error", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)))
		return result, nil
	}

	if err := w.queue.MarkSent(ctx, dispatchedIDs, w.now()); err != nil {
		// The provider accepted the batch but the status write failed; the
		// rows stay pending and will be delivered again. At-least-once.
		w.logger.Error("failed to mark dispatched items sent, duplicates possible",
			slog.Int("count", len(dispatchedIDs)), slog.Any("error", err))
		return result, nil
	}
	result.Sent = len(dispatchedIDs)

	w.logger.Info("notification batch processed",
		slog.Int("processed", result.Processed),
		slog.Int("sent", result.Sent),
		slog.Int("failed", result.Failed))
	return result, nil
}
