package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MaturityMaxing/sportns/models"
)

var ErrChatGameInvalid = errors.New("chat message game or sender reference invalid")

type ChatRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	// ListByGame returns messages in creation order (created_at, then insertion id).
	ListByGame(ctx context.Context, gameID, limit int) ([]models.ChatMessage, error)
}

type postgresChatRepository struct {
	db *sql.DB
}

func NewPostgresChatRepository(db *sql.DB) ChatRepository {
	return &postgresChatRepository{db: db}
}

func (r *postgresChatRepository) Create(ctx context.Context, m *models.ChatMessage) error {
	query := `INSERT INTO chat_messages (game_id, sender_id, body) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, m.GameID, m.SenderID, m.Body).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if isPqCode(err, pqForeignKeyViolation) {
			return ErrChatGameInvalid
		}
		return fmt.Errorf("failed to create chat message (game %d): %w", m.GameID, err)
	}
	return nil
}

func (r *postgresChatRepository) ListByGame(ctx context.Context, gameID, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT cm.id, cm.game_id, cm.sender_id, cm.body, cm.created_at,
		       u.id, u.name, u.avatar_key
		FROM chat_messages cm
		JOIN users u ON u.id = cm.sender_id
		WHERE cm.game_id = $1
		ORDER BY cm.created_at, cm.id`

	args := []interface{}{gameID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages of game %d: %w", gameID, err)
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		var m models.ChatMessage
		var sender models.User
		if err := rows.Scan(&m.ID, &m.GameID, &m.SenderID, &m.Body, &m.CreatedAt,
			&sender.ID, &sender.Name, &sender.AvatarKey); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		m.Sender = &sender
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
