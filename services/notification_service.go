package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/MaturityMaxing/sportns/models"
	"github.com/MaturityMaxing/sportns/repositories"
)

// NotificationService writes push-notification intents into the durable
// queue. Delivery happens later, in the worker; producers never wait for it.
type NotificationService struct {
	repo   repositories.NotificationRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewNotificationService(repo repositories.NotificationRepository, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Enqueue inserts one pending queue item. A zero scheduledFor means eligible
// immediately.
func (s *NotificationService) Enqueue(ctx context.Context, userID int, title, body string, payload map[string]interface{}, scheduledFor time.Time) error {
	var payloadJSON json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal notification payload: %w", err)
		}
		payloadJSON = raw
	}
	if scheduledFor.IsZero() {
		scheduledFor = s.now()
	}

	item := &models.NotificationQueueItem{
		UserID:       userID,
		Title:        title,
		Body:         body,
		Payload:      payloadJSON,
		ScheduledFor: scheduledFor,
		Status:       models.NotificationPending,
	}
	if err := s.repo.Create(ctx, nil, item); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

// EnqueueForUsers enqueues the same notification for several recipients.
// Failures are logged per recipient and do not stop the rest: the channel is
// best-effort and a producer must never fail its own operation over it.
func (s *NotificationService) EnqueueForUsers(ctx context.Context, userIDs []int, title, body string, payload map[string]interface{}, scheduledFor time.Time) {
	for _, userID := range userIDs {
		if err := s.Enqueue(ctx, userID, title, body, payload, scheduledFor); err != nil {
			s.logger.Error("failed to enqueue notification",
				slog.Int("user_id", userID), slog.String("title", title), slog.Any("error", err))
		}
	}
}
