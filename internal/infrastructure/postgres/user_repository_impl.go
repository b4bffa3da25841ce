package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
	"github.com/oksasatya/campus-resource-tracker/internal/domain/repository"
)

const userNotFoundMessage = "user not found"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create relies on the unique constraints, so concurrent registrations of
// the same username or email cannot both succeed.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, lower($2), $3)
		RETURNING id::text, email, created_at
	`, u.Username, u.Email, u.PasswordHash)

	return classify(row.Scan(&u.ID, &u.Email, &u.CreatedAt), userNotFoundMessage)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, username, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`, id)

	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, classify(err, userNotFoundMessage)
	}
	return u, nil
}

func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, username, email, password_hash, created_at
		FROM users
		WHERE username = $1 OR email = lower($1)
		ORDER BY (username = $1) DESC
		LIMIT 1
	`, identifier)

	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, classify(err, userNotFoundMessage)
	}
	return u, nil
}

func (r *UserRepository) GetUsernames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, strings.ToLower(id))
		}
	}
	if len(valid) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id::text, username FROM users WHERE id = ANY($1::uuid[])`, valid)
	if err != nil {
		return nil, classify(err, userNotFoundMessage)
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, classify(err, userNotFoundMessage)
		}
		out[id] = name
	}
	return out, classify(rows.Err(), userNotFoundMessage)
}

var _ repository.UserRepository = (*UserRepository)(nil)
