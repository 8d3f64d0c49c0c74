package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/MaturityMaxing/sportns/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("email address is already in use")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePushToken(ctx context.Context, id int, token *string) error
	UpdateAvatarKey(ctx context.Context, id int, key *string) error
	// PushTokensByIDs resolves destination tokens for a set of users. Users
	// without a token are present in the map with a nil value.
	PushTokensByIDs(ctx context.Context, ids []int) (map[int]*string, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, skill_level, push_token, avatar_key, created_at, last_seen_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.SkillLevel,
		&u.PushToken, &u.AvatarKey, &u.CreatedAt, &u.LastSeenAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *postgresUserRepository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, skill_level)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.SkillLevel).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isPqCode(err, pqUniqueViolation) {
			return ErrUserEmailConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

func (r *postgresUserRepository) Update(ctx context.Context, u *models.User) error {
	query := `UPDATE users SET name = $1, email = $2, skill_level = $3, last_seen_at = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, u.Name, u.Email, u.SkillLevel, u.LastSeenAt, u.ID)
	if err != nil {
		if isPqCode(err, pqUniqueViolation) {
			return ErrUserEmailConflict
		}
		return fmt.Errorf("failed to update user %d: %w", u.ID, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdatePushToken(ctx context.Context, id int, token *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET push_token = $1 WHERE id = $2`, token, id)
	if err != nil {
		return fmt.Errorf("failed to update push token of user %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateAvatarKey(ctx context.Context, id int, key *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET avatar_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("failed to update avatar key of user %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) PushTokensByIDs(ctx context.Context, ids []int) (map[int]*string, error) {
	tokens := make(map[int]*string, len(ids))
	if len(ids) == 0 {
		return tokens, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, push_token FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve push tokens: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var token *string
		if err := rows.Scan(&id, &token); err != nil {
			return nil, fmt.Errorf("failed to scan push token: %w", err)
		}
		tokens[id] = token
	}
	return tokens, rows.Err()
}
