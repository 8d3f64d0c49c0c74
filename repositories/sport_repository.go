package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MaturityMaxing/sportns/models"
)

var (
	ErrSportNotFound     = errors.New("sport not found")
	ErrSportNameConflict = errors.New("sport name is already in use")
)

type SportRepository interface {
	Create(ctx context.Context, sport *models.Sport) error
	GetByID(ctx context.Context, id int) (*models.Sport, error)
	List(ctx context.Context) ([]models.Sport, error)
	UpdateIconKey(ctx context.Context, id int, key *string) error
}

type postgresSportRepository struct {
	db *sql.DB
}

func NewPostgresSportRepository(db *sql.DB) SportRepository {
	return &postgresSportRepository{db: db}
}

func (r *postgresSportRepository) Create(ctx context.Context, s *models.Sport) error {
	query := `INSERT INTO sports (name) VALUES ($1) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, s.Name).Scan(&s.ID)
	if err != nil {
		if isPqCode(err, pqUniqueViolation) {
			return ErrSportNameConflict
		}
		return fmt.Errorf("failed to create sport: %w", err)
	}
	return nil
}

func (r *postgresSportRepository) GetByID(ctx context.Context, id int) (*models.Sport, error) {
	var s models.Sport
	err := r.db.QueryRowContext(ctx, `SELECT id, name, icon_key FROM sports WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.IconKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to get sport %d: %w", id, err)
	}
	return &s, nil
}

func (r *postgresSportRepository) List(ctx context.Context) ([]models.Sport, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, icon_key FROM sports ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sports: %w", err)
	}
	defer rows.Close()

	sports := make([]models.Sport, 0)
	for rows.Next() {
		var s models.Sport
		if err := rows.Scan(&s.ID, &s.Name, &s.IconKey); err != nil {
			return nil, fmt.Errorf("failed to scan sport: %w", err)
		}
		sports = append(sports, s)
	}
	return sports, rows.Err()
}

func (r *postgresSportRepository) UpdateIconKey(ctx context.Context, id int, key *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE sports SET icon_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("failed to update icon key of sport %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrSportNotFound)
}
