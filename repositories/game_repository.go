package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MaturityMaxing/sportns/models"
)

var (
	ErrGameNotFound       = errors.New("game event not found")
	ErrGameInvalidSport   = errors.New("invalid sport reference")
	ErrGameInvalidCreator = errors.New("invalid creator reference")
)

// ListGamesFilter narrows the active-games listing. Nil fields are ignored.
type ListGamesFilter struct {
	SportID *int
	Skill   *int
	Limit   int
	Offset  int
}

type GameRepository interface {
	Create(ctx context.Context, exec SQLExecutor, game *models.GameEvent) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.GameEvent, error)
	// GetByIDForUpdate locks the event row for the lifetime of the enclosing
	// transaction. Admission checks and the roster insert race against this lock.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.GameEvent, error)
	ListActive(ctx context.Context, filter ListGamesFilter) ([]models.GameEvent, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.GameEventStatus) error
	// ListExpired returns non-terminal events whose scheduled time predates the cutoff.
	ListExpired(ctx context.Context, cutoff time.Time) ([]models.GameEvent, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const gameColumns = `id, sport_id, creator_id, min_players, max_players, skill_min, skill_max,
	scheduled_time, time_type, status, created_at`

func scanGame(row interface {
	Scan(dest ...interface{}) error
}, g *models.GameEvent) error {
	return row.Scan(
		&g.ID, &g.SportID, &g.CreatorID, &g.MinPlayers, &g.MaxPlayers,
		&g.SkillMin, &g.SkillMax, &g.ScheduledTime, &g.TimeType, &g.Status, &g.CreatedAt,
	)
}

func (r *postgresGameRepository) Create(ctx context.Context, exec SQLExecutor, g *models.GameEvent) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO game_events (
			sport_id, creator_id, min_players, max_players, skill_min, skill_max,
			scheduled_time, time_type, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		g.SportID, g.CreatorID, g.MinPlayers, g.MaxPlayers, g.SkillMin, g.SkillMax,
		g.ScheduledTime, g.TimeType, g.Status,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		if isPqCode(err, pqForeignKeyViolation) {
			return fmt.Errorf("create game event: %w", ErrGameInvalidSport)
		}
		return fmt.Errorf("failed to create game event: %w", err)
	}
	return nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.GameEvent, error) {
	return r.get(ctx, r.getExecutor(exec), id, false)
}

func (r *postgresGameRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.GameEvent, error) {
	return r.get(ctx, r.getExecutor(exec), id, true)
}

func (r *postgresGameRepository) get(ctx context.Context, executor SQLExecutor, id int, forUpdate bool) (*models.GameEvent, error) {
	query := `SELECT ` + gameColumns + ` FROM game_events WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var g models.GameEvent
	err := scanGame(executor.QueryRowContext(ctx, query, id), &g)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		if isSerializationError(err) {
			return nil, ErrSerialization
		}
		return nil, fmt.Errorf("failed to get game event %d: %w", id, err)
	}
	return &g, nil
}

func (r *postgresGameRepository) ListActive(ctx context.Context, filter ListGamesFilter) ([]models.GameEvent, error) {
	query := `
		SELECT g.id, g.sport_id, g.creator_id, g.min_players, g.max_players, g.skill_min, g.skill_max,
		       g.scheduled_time, g.time_type, g.status, g.created_at,
		       (SELECT count(*) FROM roster_entries re WHERE re.game_id = g.id) AS player_count
		FROM game_events g
		WHERE g.status IN ('waiting', 'confirmed')`

	args := make([]interface{}, 0, 4)
	argPos := 1
	if filter.SportID != nil {
		query += fmt.Sprintf(" AND g.sport_id = $%d", argPos)
		args = append(args, *filter.SportID)
		argPos++
	}
	if filter.Skill != nil {
		query += fmt.Sprintf(" AND (g.skill_min IS NULL OR g.skill_min <= $%d)", argPos)
		args = append(args, *filter.Skill)
		argPos++
		query += fmt.Sprintf(" AND (g.skill_max IS NULL OR g.skill_max >= $%d)", argPos)
		args = append(args, *filter.Skill)
		argPos++
	}
	query += " ORDER BY g.created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
		argPos++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list active game events: %w", err)
	}
	defer rows.Close()

	games := make([]models.GameEvent, 0)
	for rows.Next() {
		var g models.GameEvent
		if err := rows.Scan(
			&g.ID, &g.SportID, &g.CreatorID, &g.MinPlayers, &g.MaxPlayers,
			&g.SkillMin, &g.SkillMax, &g.ScheduledTime, &g.TimeType, &g.Status, &g.CreatedAt,
			&g.PlayerCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game event: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (r *postgresGameRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.GameEventStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE game_events SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		if isSerializationError(err) {
			return ErrSerialization
		}
		return fmt.Errorf("failed to update status of game event %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) ListExpired(ctx context.Context, cutoff time.Time) ([]models.GameEvent, error) {
	query := `SELECT ` + gameColumns + `
		FROM game_events
		WHERE status IN ('waiting', 'confirmed') AND scheduled_time < $1
		ORDER BY scheduled_time`

	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired game events: %w", err)
	}
	defer rows.Close()

	games := make([]models.GameEvent, 0)
	for rows.Next() {
		var g models.GameEvent
		if err := scanGame(rows, &g); err != nil {
			return nil, fmt.Errorf("failed to scan expired game event: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}
