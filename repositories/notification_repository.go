package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/MaturityMaxing/sportns/models"
)

var ErrNotificationUserInvalid = errors.New("notification user reference invalid")

type NotificationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, item *models.NotificationQueueItem) error
	// SelectPendingBatch returns up to limit pending items whose scheduled_for
	// is not after now, oldest first.
	SelectPendingBatch(ctx context.Context, limit int, now time.Time) ([]models.NotificationQueueItem, error)
	MarkSent(ctx context.Context, ids []int, sentAt time.Time) error
	MarkFailed(ctx context.Context, ids []int, failedAt time.Time) error
}

type postgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresNotificationRepository) Create(ctx context.Context, exec SQLExecutor, item *models.NotificationQueueItem) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO notification_queue (user_id, title, body, payload, scheduled_for, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		item.UserID, item.Title, item.Body, item.Payload, item.ScheduledFor, item.Status,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		if isPqCode(err, pqForeignKeyViolation) {
			return ErrNotificationUserInvalid
		}
		return fmt.Errorf("failed to enqueue notification for user %d: %w", item.UserID, err)
	}
	return nil
}

func (r *postgresNotificationRepository) SelectPendingBatch(ctx context.Context, limit int, now time.Time) ([]models.NotificationQueueItem, error) {
	query := `
		SELECT id, user_id, title, body, payload, scheduled_for, status, sent_at, created_at
		FROM notification_queue
		WHERE status = 'pending' AND scheduled_for <= $1
		ORDER BY scheduled_for, id
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending notifications: %w", err)
	}
	defer rows.Close()

	items := make([]models.NotificationQueueItem, 0, limit)
	for rows.Next() {
		var item models.NotificationQueueItem
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Title, &item.Body, &item.Payload,
			&item.ScheduledFor, &item.Status, &item.SentAt, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *postgresNotificationRepository) MarkSent(ctx context.Context, ids []int, sentAt time.Time) error {
	return r.markStatus(ctx, ids, models.NotificationSent, sentAt)
}

func (r *postgresNotificationRepository) MarkFailed(ctx context.Context, ids []int, failedAt time.Time) error {
	return r.markStatus(ctx, ids, models.NotificationFailed, failedAt)
}

func (r *postgresNotificationRepository) markStatus(ctx context.Context, ids []int, status models.NotificationStatus, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE notification_queue SET status = $1, sent_at = $2 WHERE id = ANY($3) AND status = 'pending'`
	_, err := r.db.ExecContext(ctx, query, status, at, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to mark notifications %s: %w", status, err)
	}
	return nil
}
