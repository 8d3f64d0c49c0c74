package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MaturityMaxing/sportns/config"
	"github.com/MaturityMaxing/sportns/models"
	"github.com/MaturityMaxing/sportns/realtime"
	"github.com/MaturityMaxing/sportns/repositories"
)

// GameService owns the game event lifecycle: posting, join/leave admission,
// automatic confirmation, explicit termination and the stale-event sweep.
// It keeps no in-process state; every mutation is an atomic conditional write
// against the store, so the service is safe to invoke concurrently from many
// clients and processes.
type GameService struct {
	tx            repositories.TxManager
	games         repositories.GameRepository
	roster        repositories.RosterRepository
	sports        repositories.SportRepository
	users         repositories.UserRepository
	notifier      ChangeNotifier
	notifications *NotificationService
	policy        config.Policy
	logger        *slog.Logger
	now           func() time.Time
}

func NewGameService(
	tx repositories.TxManager,
	games repositories.GameRepository,
	roster repositories.RosterRepository,
	sports repositories.SportRepository,
	users repositories.UserRepository,
	notifier ChangeNotifier,
	notifications *NotificationService,
	policy config.Policy,
	logger *slog.Logger,
) *GameService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GameService{
		tx:            tx,
		games:         games,
		roster:        roster,
		sports:        sports,
		users:         users,
		notifier:      notifier,
		notifications: notifications,
		policy:        policy,
		logger:        logger,
		now:           time.Now,
	}
}

type CreateGameInput struct {
	SportID       int             `json:"sport_id"`
	MinPlayers    int             `json:"min_players"`
	MaxPlayers    int             `json:"max_players"`
	SkillMin      *int            `json:"skill_min,omitempty"`
	SkillMax      *int            `json:"skill_max,omitempty"`
	ScheduledTime time.Time       `json:"scheduled_time"`
	TimeType      models.TimeType `json:"time_type"`
	// TimeOfDay names an option from the policy table when TimeType is
	// "time_of_day"; the hour overrides the one in ScheduledTime.
	TimeOfDay string `json:"time_of_day,omitempty"`
}

// ListGamesFilter narrows ListActiveGames. A Skill value keeps only games
// whose skill range admits it.
type ListGamesFilter struct {
	SportID *int
	Skill   *int
	Limit   int
	Offset  int
}

// CreateGame posts a new event and enrolls the creator as the first roster
// member in the same transaction.
func (s *GameService) CreateGame(ctx context.Context, creatorID int, input CreateGameInput) (*models.GameEvent, error) {
	if input.MinPlayers < 2 || input.MinPlayers > input.MaxPlayers {
		return nil, ErrGameInvalidPlayerBounds
	}
	if err := s.validateSkillRange(input.SkillMin, input.SkillMax); err != nil {
		return nil, err
	}
	scheduled, err := s.resolveScheduledTime(input)
	if err != nil {
		return nil, err
	}
	if _, err := s.sports.GetByID(ctx, input.SportID); err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to check sport: %w", err)
	}

	game := &models.GameEvent{
		SportID:       input.SportID,
		CreatorID:     creatorID,
		MinPlayers:    input.MinPlayers,
		MaxPlayers:    input.MaxPlayers,
		SkillMin:      input.SkillMin,
		SkillMax:      input.SkillMax,
		ScheduledTime: scheduled,
		TimeType:      input.TimeType,
		Status:        models.StatusWaiting,
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.games.Create(ctx, exec, game); err != nil {
			return err
		}
		entry := &models.RosterEntry{GameID: game.ID, PlayerID: creatorID}
		if err := s.roster.Insert(ctx, exec, entry); err != nil {
			return fmt.Errorf("failed to enroll creator: %w", err)
		}
		game.PlayerCount = 1
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	s.notifier.Publish(realtime.LobbyRoom, realtime.TypeGameCreated, game)
	return game, nil
}

// JoinGame admits a player onto the roster. The capacity check and the roster
// insert run as one atomic unit against the store: the event row is locked for
// the duration, so two players racing for the last slot cannot both win.
func (s *GameService) JoinGame(ctx context.Context, gameID, playerID int) (*models.GameEvent, error) {
	var game *models.GameEvent
	var becameConfirmed bool

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		g, err := s.games.GetByIDForUpdate(ctx, exec, gameID)
		if err != nil {
			return err
		}
		if g.Status.IsTerminal() {
			return ErrEventClosed
		}

		count, err := s.roster.Count(ctx, exec, gameID)
		if err != nil {
			return err
		}
		if count >= g.MaxPlayers {
			return ErrCapacityExceeded
		}

		entry := &models.RosterEntry{GameID: gameID, PlayerID: playerID}
		if err := s.roster.Insert(ctx, exec, entry); err != nil {
			if errors.Is(err, repositories.ErrRosterDuplicate) {
				return ErrAlreadyJoined
			}
			return err
		}
		count++

		if next := deriveStatus(g.Status, count, g.MinPlayers); next != g.Status {
			if err := s.games.UpdateStatus(ctx, exec, gameID, next); err != nil {
				return err
			}
			g.Status = next
			becameConfirmed = true
		}
		g.PlayerCount = count
		game = g
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	s.publishRosterChange(game)
	if becameConfirmed {
		s.notifier.Publish(realtime.GameRoom(gameID), realtime.TypeStatusChanged, game)
		s.notifyConfirmed(ctx, game)
	}
	s.notifyCreatorOfRosterChange(ctx, game, playerID, "joined")
	return game, nil
}

// LeaveGame removes the player's roster entry if present. Leaving is
// idempotent: a player who was never a member gets a success, not an error.
// Leaving never reverts confirmed back to waiting; confirmation is a ratchet.
func (s *GameService) LeaveGame(ctx context.Context, gameID, playerID int) (*models.GameEvent, error) {
	var game *models.GameEvent
	var removed bool

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		g, err := s.games.GetByIDForUpdate(ctx, exec, gameID)
		if err != nil {
			return err
		}

		removed, err = s.roster.Delete(ctx, exec, gameID, playerID)
		if err != nil {
			return err
		}
		count, err := s.roster.Count(ctx, exec, gameID)
		if err != nil {
			return err
		}

		// deriveStatus never demotes, so attrition below min_players leaves a
		// confirmed game confirmed.
		if next := deriveStatus(g.Status, count, g.MinPlayers); next != g.Status {
			if err := s.games.UpdateStatus(ctx, exec, gameID, next); err != nil {
				return err
			}
			g.Status = next
		}
		g.PlayerCount = count
		game = g
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	if removed {
		s.publishRosterChange(game)
		s.notifyCreatorOfRosterChange(ctx, game, playerID, "left")
	}
	return game, nil
}

// EndGame terminates the event as completed. Idempotent.
func (s *GameService) EndGame(ctx context.Context, gameID int) (*models.GameEvent, error) {
	return s.terminate(ctx, gameID, models.StatusCompleted)
}

// CancelGame terminates the event as cancelled. Idempotent.
func (s *GameService) CancelGame(ctx context.Context, gameID int) (*models.GameEvent, error) {
	return s.terminate(ctx, gameID, models.StatusCancelled)
}

func (s *GameService) terminate(ctx context.Context, gameID int, kind models.GameEventStatus) (*models.GameEvent, error) {
	if !kind.IsTerminal() {
		return nil, fmt.Errorf("terminate called with non-terminal status %q", kind)
	}

	var game *models.GameEvent
	var changed bool

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		g, err := s.games.GetByIDForUpdate(ctx, exec, gameID)
		if err != nil {
			return err
		}
		// Terminating an already-terminal event is a no-op, not an error.
		if g.Status.IsTerminal() {
			game = g
			return nil
		}
		if err := s.games.UpdateStatus(ctx, exec, gameID, kind); err != nil {
			return err
		}
		g.Status = kind
		game = g
		changed = true
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	if changed {
		s.notifier.Publish(realtime.GameRoom(gameID), realtime.TypeStatusChanged, game)
		s.notifier.Publish(realtime.LobbyRoom, realtime.TypeGameUpdated, game)
		if kind == models.StatusCancelled {
			s.notifyCancelled(ctx, game)
		}
	}
	return game, nil
}

// SweepStale retires every non-terminal event whose scheduled time plus the
// policy horizon is in the past, terminating it as completed. Termination is
// idempotent, so overlapping or repeated sweeps are harmless; this runs both
// on a timer and as a redundant client-triggered fallback.
func (s *GameService) SweepStale(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.policy.SweepHorizon)
	expired, err := s.games.ListExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale games: %w", err)
	}

	swept := 0
	for _, g := range expired {
		if _, err := s.terminate(ctx, g.ID, models.StatusCompleted); err != nil {
			// A racing sweep or user action may have beaten us; keep going.
			s.logger.Warn("failed to retire stale game",
				slog.Int("game_id", g.ID), slog.Any("error", err))
			continue
		}
		swept++
	}
	if swept > 0 {
		s.logger.Info("stale games retired", slog.Int("count", swept))
	}
	return swept, nil
}

// GetGame returns one event with its roster and sport attached.
func (s *GameService) GetGame(ctx context.Context, gameID int) (*models.GameEvent, error) {
	game, err := s.games.GetByID(ctx, nil, gameID)
	if err != nil {
		return nil, s.mapStoreError(err)
	}
	roster, err := s.roster.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	game.Roster = roster
	game.PlayerCount = len(roster)

	if sport, err := s.sports.GetByID(ctx, game.SportID); err == nil {
		game.Sport = sport
	} else {
		s.logger.Warn("failed to populate sport details",
			slog.Int("game_id", game.ID), slog.Int("sport_id", game.SportID), slog.Any("error", err))
	}
	return game, nil
}

// ListActiveGames returns waiting and confirmed events, newest first.
func (s *GameService) ListActiveGames(ctx context.Context, filter ListGamesFilter) ([]models.GameEvent, error) {
	if filter.Skill != nil && !s.policy.ValidSkill(*filter.Skill) {
		return nil, ErrInvalidSkillLevel
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.games.ListActive(ctx, repositories.ListGamesFilter{
		SportID: filter.SportID,
		Skill:   filter.Skill,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

// deriveStatus is the single rule governing automatic confirmation: a waiting
// event with a full-enough roster confirms. Nothing else changes
// automatically, and the rule is idempotent.
func deriveStatus(current models.GameEventStatus, rosterCount, minPlayers int) models.GameEventStatus {
	if current == models.StatusWaiting && rosterCount >= minPlayers {
		return models.StatusConfirmed
	}
	return current
}

func (s *GameService) validateSkillRange(min, max *int) error {
	if min != nil && !s.policy.ValidSkill(*min) {
		return ErrGameInvalidSkillRange
	}
	if max != nil && !s.policy.ValidSkill(*max) {
		return ErrGameInvalidSkillRange
	}
	if min != nil && max != nil && *min > *max {
		return ErrGameInvalidSkillRange
	}
	return nil
}

func (s *GameService) resolveScheduledTime(input CreateGameInput) (time.Time, error) {
	switch input.TimeType {
	case models.TimeTypeNow:
		return s.now(), nil
	case models.TimeTypePrecise:
		if input.ScheduledTime.IsZero() {
			return time.Time{}, ErrGameScheduleRequired
		}
		return input.ScheduledTime, nil
	case models.TimeTypeTimeOfDay:
		if input.ScheduledTime.IsZero() {
			return time.Time{}, ErrGameScheduleRequired
		}
		for _, opt := range s.policy.TimeOfDayOptions {
			if opt.Name == input.TimeOfDay {
				d := input.ScheduledTime
				return time.Date(d.Year(), d.Month(), d.Day(), opt.Hour, 0, 0, 0, d.Location()), nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: unknown time of day %q", ErrGameInvalidTimeType, input.TimeOfDay)
	default:
		return time.Time{}, ErrGameInvalidTimeType
	}
}

func (s *GameService) publishRosterChange(game *models.GameEvent) {
	s.notifier.Publish(realtime.GameRoom(game.ID), realtime.TypeRosterUpdated, game)
	s.notifier.Publish(realtime.LobbyRoom, realtime.TypeGameUpdated, game)
}

// notifyConfirmed enqueues a confirmation push for every roster member plus a
// pre-game reminder when the scheduled time is far enough out.
func (s *GameService) notifyConfirmed(ctx context.Context, game *models.GameEvent) {
	if s.notifications == nil {
		return
	}
	memberIDs, err := s.roster.ListPlayerIDs(ctx, nil, game.ID)
	if err != nil {
		s.logger.Error("failed to list members for confirmation push",
			slog.Int("game_id", game.ID), slog.Any("error", err))
		return
	}
	payload := map[string]interface{}{"game_id": game.ID, "status": string(game.Status)}
	s.notifications.EnqueueForUsers(ctx, memberIDs,
		"Game on!", "Your game has enough players and is confirmed.", payload, time.Time{})

	reminderAt := game.ScheduledTime.Add(-s.policy.ReminderLead)
	if reminderAt.After(s.now()) {
		s.notifications.EnqueueForUsers(ctx, memberIDs,
			"Game reminder", "Your game starts soon.", payload, reminderAt)
	}
}

func (s *GameService) notifyCancelled(ctx context.Context, game *models.GameEvent) {
	if s.notifications == nil {
		return
	}
	memberIDs, err := s.roster.ListPlayerIDs(ctx, nil, game.ID)
	if err != nil {
		s.logger.Error("failed to list members for cancellation push",
			slog.Int("game_id", game.ID), slog.Any("error", err))
		return
	}
	payload := map[string]interface{}{"game_id": game.ID, "status": string(game.Status)}
	s.notifications.EnqueueForUsers(ctx, memberIDs,
		"Game cancelled", "A game you joined was cancelled.", payload, time.Time{})
}

func (s *GameService) notifyCreatorOfRosterChange(ctx context.Context, game *models.GameEvent, playerID int, action string) {
	if s.notifications == nil || playerID == game.CreatorID {
		return
	}
	player, err := s.users.GetByID(ctx, playerID)
	if err != nil {
		s.logger.Warn("failed to load player for roster push",
			slog.Int("player_id", playerID), slog.Any("error", err))
		return
	}
	payload := map[string]interface{}{"game_id": game.ID, "player_id": playerID}
	body := fmt.Sprintf("%s %s your game (%d/%d players).", player.Name, action, game.PlayerCount, game.MaxPlayers)
	if err := s.notifications.Enqueue(ctx, game.CreatorID, "Roster update", body, payload, time.Time{}); err != nil {
		s.logger.Error("failed to enqueue roster push",
			slog.Int("game_id", game.ID), slog.Any("error", err))
	}
}

func (s *GameService) mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrGameNotFound):
		return ErrGameNotFound
	case errors.Is(err, repositories.ErrSerialization):
		return ErrStoreConflict
	default:
		return err
	}
}
