package services

import (
	"context"
	"sync"
	"time"

	"github.com/MaturityMaxing/sportns/models"
	"github.com/MaturityMaxing/sportns/repositories"
)

// memStore is a shared in-memory backend for the fake repositories. A single
// mutex guards all state; the fake transaction manager additionally serializes
// whole transactions so admission checks observe committed state only, the way
// the row lock does in Postgres.
type memStore struct {
	mu sync.Mutex

	games  map[int]*models.GameEvent
	roster map[int]map[int]time.Time
	sports map[int]*models.Sport
	users  map[int]*models.User
	queue  []*models.NotificationQueueItem
	chats  []*models.ChatMessage

	nextGameID int
	nextItemID int
	nextChatID int
}

func newMemStore() *memStore {
	return &memStore{
		games:      make(map[int]*models.GameEvent),
		roster:     make(map[int]map[int]time.Time),
		sports:     make(map[int]*models.Sport),
		users:      make(map[int]*models.User),
		nextGameID: 1,
		nextItemID: 1,
		nextChatID: 1,
	}
}

func (s *memStore) addSport(id int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sports[id] = &models.Sport{ID: id, Name: name}
}

func (s *memStore) addUser(id int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = &models.User{ID: id, Name: name, Email: name + "@example.com"}
}

func (s *memStore) addGame(game models.GameEvent) *models.GameEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game.ID == 0 {
		game.ID = s.nextGameID
	}
	if game.ID >= s.nextGameID {
		s.nextGameID = game.ID + 1
	}
	s.games[game.ID] = &game
	if s.roster[game.ID] == nil {
		s.roster[game.ID] = make(map[int]time.Time)
	}
	return &game
}

func (s *memStore) addMember(gameID, playerID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roster[gameID] == nil {
		s.roster[gameID] = make(map[int]time.Time)
	}
	s.roster[gameID][playerID] = time.Now()
}

func (s *memStore) gameStatus(gameID int) models.GameEventStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games[gameID].Status
}

func (s *memStore) rosterSize(gameID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.roster[gameID])
}

func (s *memStore) queuedItems() []models.NotificationQueueItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.NotificationQueueItem, 0, len(s.queue))
	for _, item := range s.queue {
		out = append(out, *item)
	}
	return out
}

// memTxManager serializes transaction bodies with a dedicated lock, emulating
// the row lock the real store takes on the game event.
type memTxManager struct {
	txMu sync.Mutex
}

func (m *memTxManager) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(nil)
}

type fakeGameRepo struct{ store *memStore }

func (r *fakeGameRepo) Create(_ context.Context, _ repositories.SQLExecutor, game *models.GameEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	game.ID = r.store.nextGameID
	r.store.nextGameID++
	game.CreatedAt = time.Now()
	copied := *game
	r.store.games[game.ID] = &copied
	r.store.roster[game.ID] = make(map[int]time.Time)
	return nil
}

func (r *fakeGameRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.GameEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	game, ok := r.store.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	copied := *game
	return &copied, nil
}

func (r *fakeGameRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.GameEvent, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *fakeGameRepo) ListActive(_ context.Context, filter repositories.ListGamesFilter) ([]models.GameEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.GameEvent
	for _, game := range r.store.games {
		if game.Status.IsTerminal() {
			continue
		}
		if filter.SportID != nil && game.SportID != *filter.SportID {
			continue
		}
		out = append(out, *game)
	}
	return out, nil
}

func (r *fakeGameRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.GameEventStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	game, ok := r.store.games[id]
	if !ok {
		return repositories.ErrGameNotFound
	}
	game.Status = status
	return nil
}

func (r *fakeGameRepo) ListExpired(_ context.Context, cutoff time.Time) ([]models.GameEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.GameEvent
	for _, game := range r.store.games {
		if !game.Status.IsTerminal() && game.ScheduledTime.Before(cutoff) {
			out = append(out, *game)
		}
	}
	return out, nil
}

type fakeRosterRepo struct{ store *memStore }

func (r *fakeRosterRepo) Insert(_ context.Context, _ repositories.SQLExecutor, entry *models.RosterEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	members := r.store.roster[entry.GameID]
	if members == nil {
		members = make(map[int]time.Time)
		r.store.roster[entry.GameID] = members
	}
	if _, ok := members[entry.PlayerID]; ok {
		return repositories.ErrRosterDuplicate
	}
	members[entry.PlayerID] = time.Now()
	return nil
}

func (r *fakeRosterRepo) Delete(_ context.Context, _ repositories.SQLExecutor, gameID, playerID int) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	members := r.store.roster[gameID]
	if _, ok := members[playerID]; !ok {
		return false, nil
	}
	delete(members, playerID)
	return true, nil
}

func (r *fakeRosterRepo) Count(_ context.Context, _ repositories.SQLExecutor, gameID int) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.roster[gameID]), nil
}

func (r *fakeRosterRepo) Exists(_ context.Context, _ repositories.SQLExecutor, gameID, playerID int) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.roster[gameID][playerID]
	return ok, nil
}

func (r *fakeRosterRepo) ListByGame(_ context.Context, gameID int) ([]models.RosterEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.RosterEntry
	for playerID, joinedAt := range r.store.roster[gameID] {
		out = append(out, models.RosterEntry{GameID: gameID, PlayerID: playerID, JoinedAt: joinedAt})
	}
	return out, nil
}

func (r *fakeRosterRepo) ListPlayerIDs(_ context.Context, _ repositories.SQLExecutor, gameID int) ([]int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []int
	for playerID := range r.store.roster[gameID] {
		out = append(out, playerID)
	}
	return out, nil
}

type fakeSportRepo struct{ store *memStore }

func (r *fakeSportRepo) Create(_ context.Context, sport *models.Sport) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.sports {
		if existing.Name == sport.Name {
			return repositories.ErrSportNameConflict
		}
	}
	sport.ID = len(r.store.sports) + 1
	copied := *sport
	r.store.sports[sport.ID] = &copied
	return nil
}

func (r *fakeSportRepo) GetByID(_ context.Context, id int) (*models.Sport, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sport, ok := r.store.sports[id]
	if !ok {
		return nil, repositories.ErrSportNotFound
	}
	copied := *sport
	return &copied, nil
}

func (r *fakeSportRepo) List(_ context.Context) ([]models.Sport, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Sport
	for _, sport := range r.store.sports {
		out = append(out, *sport)
	}
	return out, nil
}

func (r *fakeSportRepo) UpdateIconKey(_ context.Context, id int, key *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sport, ok := r.store.sports[id]
	if !ok {
		return repositories.ErrSportNotFound
	}
	sport.IconKey = key
	return nil
}

type fakeUserRepo struct{ store *memStore }

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = len(r.store.users) + 1
	user.CreatedAt = time.Now()
	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdatePushToken(_ context.Context, id int, token *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.PushToken = token
	return nil
}

func (r *fakeUserRepo) UpdateAvatarKey(_ context.Context, id int, key *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.AvatarKey = key
	return nil
}

func (r *fakeUserRepo) PushTokensByIDs(_ context.Context, ids []int) (map[int]*string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make(map[int]*string, len(ids))
	for _, id := range ids {
		if user, ok := r.store.users[id]; ok {
			out[id] = user.PushToken
		}
	}
	return out, nil
}

type fakeNotificationRepo struct{ store *memStore }

func (r *fakeNotificationRepo) Create(_ context.Context, _ repositories.SQLExecutor, item *models.NotificationQueueItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	item.ID = r.store.nextItemID
	r.store.nextItemID++
	item.CreatedAt = time.Now()
	copied := *item
	r.store.queue = append(r.store.queue, &copied)
	return nil
}

func (r *fakeNotificationRepo) SelectPendingBatch(_ context.Context, limit int, now time.Time) ([]models.NotificationQueueItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.NotificationQueueItem
	for _, item := range r.store.queue {
		if item.Status == models.NotificationPending && !item.ScheduledFor.After(now) {
			out = append(out, *item)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkSent(_ context.Context, ids []int, sentAt time.Time) error {
	return r.markStatus(ids, models.NotificationSent, sentAt)
}

func (r *fakeNotificationRepo) MarkFailed(_ context.Context, ids []int, failedAt time.Time) error {
	return r.markStatus(ids, models.NotificationFailed, failedAt)
}

func (r *fakeNotificationRepo) markStatus(ids []int, status models.NotificationStatus, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, item := range r.store.queue {
		for _, id := range ids {
			if item.ID == id && item.Status == models.NotificationPending {
				item.Status = status
				t := at
				item.SentAt = &t
			}
		}
	}
	return nil
}

type fakeChatRepo struct{ store *memStore }

func (r *fakeChatRepo) Create(_ context.Context, message *models.ChatMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	message.ID = r.store.nextChatID
	r.store.nextChatID++
	message.CreatedAt = time.Now()
	copied := *message
	r.store.chats = append(r.store.chats, &copied)
	return nil
}

func (r *fakeChatRepo) ListByGame(_ context.Context, gameID, limit int) ([]models.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.ChatMessage
	for _, message := range r.store.chats {
		if message.GameID == gameID {
			out = append(out, *message)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// recordingNotifier captures published realtime events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Room string
	Type string
}

func (n *recordingNotifier) Publish(roomID, messageType string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{Room: roomID, Type: messageType})
}

func (n *recordingNotifier) published() []publishedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]publishedEvent, len(n.events))
	copy(out, n.events)
	return out
}
