package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/MaturityMaxing/sportns/models"
	"github.com/MaturityMaxing/sportns/realtime"
	"github.com/MaturityMaxing/sportns/repositories"
)

const maxChatBodyLength = 2000

// ChatService appends messages to a game's chat and fans them out: a live
// broadcast to the game's room, plus queued pushes for the other members.
type ChatService struct {
	chats         repositories.ChatRepository
	games         repositories.GameRepository
	roster        repositories.RosterRepository
	users         repositories.UserRepository
	notifier      ChangeNotifier
	notifications *NotificationService
	logger        *slog.Logger
}

func NewChatService(
	chats repositories.ChatRepository,
	games repositories.GameRepository,
	roster repositories.RosterRepository,
	users repositories.UserRepository,
	notifier ChangeNotifier,
	notifications *NotificationService,
	logger *slog.Logger,
) *ChatService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		chats:         chats,
		games:         games,
		roster:        roster,
		users:         users,
		notifier:      notifier,
		notifications: notifications,
		logger:        logger,
	}
}

// PostMessage appends one message. The sender must be on the game's roster.
func (s *ChatService) PostMessage(ctx context.Context, gameID, senderID int, body string) (*models.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrChatBodyRequired
	}
	if len(body) > maxChatBodyLength {
		body = body[:maxChatBodyLength]
	}

	if _, err := s.games.GetByID(ctx, nil, gameID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	member, err := s.roster.Exists(ctx, nil, gameID, senderID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrChatNotMember
	}

	message := &models.ChatMessage{GameID: gameID, SenderID: senderID, Body: body}
	if err := s.chats.Create(ctx, message); err != nil {
		return nil, err
	}
	if sender, err := s.users.GetByID(ctx, senderID); err == nil {
		sender.PasswordHash = ""
		message.Sender = sender
	}

	s.notifier.Publish(realtime.GameRoom(gameID), realtime.TypeChatMessage, message)
	s.notifyMembers(ctx, gameID, senderID, message)
	return message, nil
}

// ListMessages returns the game's chat in creation order.
func (s *ChatService) ListMessages(ctx context.Context, gameID, limit int) ([]models.ChatMessage, error) {
	if _, err := s.games.GetByID(ctx, nil, gameID); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return s.chats.ListByGame(ctx, gameID, limit)
}

func (s *ChatService) notifyMembers(ctx context.Context, gameID, senderID int, message *models.ChatMessage) {
	if s.notifications == nil {
		return
	}
	memberIDs, err := s.roster.ListPlayerIDs(ctx, nil, gameID)
	if err != nil {
		s.logger.Error("failed to list members for chat push",
			slog.Int("game_id", gameID), slog.Any("error", err))
		return
	}
	recipients := make([]int, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id != senderID {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return
	}

	title := "New message"
	if message.Sender != nil {
		title = message.Sender.Name
	}
	payload := map[string]interface{}{"game_id": gameID, "message_id": message.ID}
	s.notifications.EnqueueForUsers(ctx, recipients, title, message.Body, payload, time.Time{})
}
