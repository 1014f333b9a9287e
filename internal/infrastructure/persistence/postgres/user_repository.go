package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
)

const (
	insertUserSQL = `INSERT INTO users
		(id, first_name, last_name, email, password_hash, date_of_birth, gender, country, street, number, role, blocked_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	selectUserSQL = `SELECT id, first_name, last_name, email, password_hash, date_of_birth, gender, country, street, number, role, blocked_until, created_at, updated_at
		FROM users`

	updateUserSQL = `UPDATE users SET
		first_name = $2, last_name = $3, email = $4, password_hash = $5, gender = $6,
		country = $7, street = $8, number = $9, role = $10, blocked_until = $11, updated_at = $12
		WHERE id = $1`

	deleteUserSQL = `DELETE FROM users WHERE id = $1`
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.pool.Exec(ctx, insertUserSQL,
		user.ID.UUID, user.FirstName, user.LastName, user.Email, user.PasswordHash,
		user.DateOfBirth, user.Gender, user.Country, user.Street, user.Number,
		user.Role, user.BlockedUntil, user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, selectUserSQL+" WHERE email = $1", email)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, selectUserSQL+" WHERE id = $1", userID.UUID)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context, filter ports.UserFilter) ([]*domain.User, int64, error) {
	where, args := buildUserFilter(filter)
	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf("%s%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		selectUserSQL, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func buildUserFilter(filter ports.UserFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+strings.ToLower(s)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(email) LIKE $%d)", n, n, n))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		clauses = append(clauses, fmt.Sprintf("role = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	tag, err := r.pool.Exec(ctx, updateUserSQL,
		user.ID.UUID, user.FirstName, user.LastName, user.Email, user.PasswordHash,
		user.Gender, user.Country, user.Street, user.Number, user.Role,
		user.BlockedUntil, user.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, userID domain.UserID) error {
	_, err := r.pool.Exec(ctx, deleteUserSQL, userID.UUID)
	return err
}

func (r *UserRepository) Stats(ctx context.Context) (*ports.UserStats, error) {
	stats := &ports.UserStats{ByRole: make(map[string]int64)}
	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		var count int64
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		stats.ByRole[role] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE blocked_until IS NOT NULL AND blocked_until > NOW()`).
		Scan(&stats.Blocked)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var blockedUntil *time.Time
	err := row.Scan(&u.ID.UUID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.DateOfBirth, &u.Gender, &u.Country, &u.Street, &u.Number, &u.Role,
		&blockedUntil, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	u.BlockedUntil = blockedUntil
	return &u, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
