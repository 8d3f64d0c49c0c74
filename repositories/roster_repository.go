package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MaturityMaxing/sportns/models"
)

var (
	ErrRosterDuplicate   = errors.New("player is already on the roster")
	ErrRosterGameInvalid = errors.New("roster game or player reference invalid")
)

type RosterRepository interface {
	// Insert fails with ErrRosterDuplicate when the (game, player) pair exists.
	Insert(ctx context.Context, exec SQLExecutor, entry *models.RosterEntry) error
	// Delete is idempotent; removed reports whether a row actually went away.
	Delete(ctx context.Context, exec SQLExecutor, gameID, playerID int) (removed bool, err error)
	Count(ctx context.Context, exec SQLExecutor, gameID int) (int, error)
	Exists(ctx context.Context, exec SQLExecutor, gameID, playerID int) (bool, error)
	ListByGame(ctx context.Context, gameID int) ([]models.RosterEntry, error)
	ListPlayerIDs(ctx context.Context, exec SQLExecutor, gameID int) ([]int, error)
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRosterRepository) Insert(ctx context.Context, exec SQLExecutor, entry *models.RosterEntry) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO roster_entries (game_id, player_id) VALUES ($1, $2) RETURNING id, joined_at`
	err := executor.QueryRowContext(ctx, query, entry.GameID, entry.PlayerID).Scan(&entry.ID, &entry.JoinedAt)
	if err != nil {
		switch {
		case isPqCode(err, pqUniqueViolation):
			return ErrRosterDuplicate
		case isPqCode(err, pqForeignKeyViolation):
			return ErrRosterGameInvalid
		case isSerializationError(err):
			return ErrSerialization
		}
		return fmt.Errorf("failed to insert roster entry (game %d, player %d): %w", entry.GameID, entry.PlayerID, err)
	}
	return nil
}

func (r *postgresRosterRepository) Delete(ctx context.Context, exec SQLExecutor, gameID, playerID int) (bool, error) {
	executor := r.getExecutor(exec)
	query := `DELETE FROM roster_entries WHERE game_id = $1 AND player_id = $2`
	result, err := executor.ExecContext(ctx, query, gameID, playerID)
	if err != nil {
		if isSerializationError(err) {
			return false, ErrSerialization
		}
		return false, fmt.Errorf("failed to delete roster entry (game %d, player %d): %w", gameID, playerID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *postgresRosterRepository) Count(ctx context.Context, exec SQLExecutor, gameID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx, `SELECT count(*) FROM roster_entries WHERE game_id = $1`, gameID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count roster of game %d: %w", gameID, err)
	}
	return count, nil
}

func (r *postgresRosterRepository) Exists(ctx context.Context, exec SQLExecutor, gameID, playerID int) (bool, error) {
	executor := r.getExecutor(exec)
	var exists bool
	err := executor.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM roster_entries WHERE game_id = $1 AND player_id = $2)`,
		gameID, playerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check roster membership (game %d, player %d): %w", gameID, playerID, err)
	}
	return exists, nil
}

func (r *postgresRosterRepository) ListByGame(ctx context.Context, gameID int) ([]models.RosterEntry, error) {
	query := `
		SELECT re.id, re.game_id, re.player_id, re.joined_at,
		       u.id, u.name, u.email, u.skill_level, u.avatar_key, u.created_at
		FROM roster_entries re
		JOIN users u ON u.id = re.player_id
		WHERE re.game_id = $1
		ORDER BY re.joined_at, re.id`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster of game %d: %w", gameID, err)
	}
	defer rows.Close()

	entries := make([]models.RosterEntry, 0)
	for rows.Next() {
		var entry models.RosterEntry
		var player models.User
		if err := rows.Scan(
			&entry.ID, &entry.GameID, &entry.PlayerID, &entry.JoinedAt,
			&player.ID, &player.Name, &player.Email, &player.SkillLevel, &player.AvatarKey, &player.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan roster entry: %w", err)
		}
		entry.Player = &player
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *postgresRosterRepository) ListPlayerIDs(ctx context.Context, exec SQLExecutor, gameID int) ([]int, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT player_id FROM roster_entries WHERE game_id = $1 ORDER BY joined_at, id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player ids of game %d: %w", gameID, err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan player id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
