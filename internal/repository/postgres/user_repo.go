package postgres

import (
	"context"
	"fmt"
	"time"

	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const userColumns = `id, name, email, password_hash, role, coach_id, created_at, updated_at`

// userRow is the flat storage shape of domain.User.
type userRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CoachID      *string   `db:"coach_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toDomain() (domain.User, error) {
	acc := domain.Account{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	u, err := domain.NewUser(acc, domain.Role(r.Role), r.CoachID)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", r.ID, err)
	}
	return u, nil
}

type pgUserRepository struct {
	db *DB
}

// NewUserRepository creates a users repository on the shared pool.
func NewUserRepository(db *DB) repository.UserRepository {
	return &pgUserRepository{db: db}
}

// Create inserts a user and assigns its ID and timestamps.
func (r *pgUserRepository) Create(ctx context.Context, user domain.User) (string, error) {
	acc := user.Base()
	acc.ID = uuid.NewString()
	now := time.Now().UTC()
	acc.CreatedAt = now
	acc.UpdatedAt = now

	query := `
		INSERT INTO users (id, name, email, password_hash, role, coach_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		_, err := conn.ExecContext(ctx, query,
			acc.ID, acc.Name, acc.Email, acc.PasswordHash, string(user.Role()), domain.CoachIDOf(user), acc.CreatedAt, acc.UpdatedAt)
		return err
	})
	if err != nil {
		return "", err
	}
	return acc.ID, nil
}

func (r *pgUserRepository) getOne(ctx context.Context, query string, args ...interface{}) (domain.User, error) {
	var row userRow
	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, &row, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (r *pgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *pgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByIDs returns the users found among ids, keyed by ID. Unknown IDs are skipped.
func (r *pgUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.User, error) {
	users := make(map[string]domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	var rows []userRow
	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, pq.Array(ids))
	})
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		u, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		users[row.ID] = u
	}
	return users, nil
}

func (r *pgUserRepository) GetClientOfCoach(ctx context.Context, coachID, clientID string) (*domain.Client, error) {
	u, err := r.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND role = 'client' AND coach_id = $2`,
		clientID, coachID)
	if err != nil {
		return nil, err
	}
	client, ok := u.(*domain.Client)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return client, nil
}

func (r *pgUserRepository) ListClients(ctx context.Context, coachID string) ([]*domain.Client, error) {
	var rows []userRow
	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &rows,
			`SELECT `+userColumns+` FROM users WHERE role = 'client' AND coach_id = $1 ORDER BY name`, coachID)
	})
	if err != nil {
		return nil, err
	}
	clients := make([]*domain.Client, 0, len(rows))
	for _, row := range rows {
		u, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		if c, ok := u.(*domain.Client); ok {
			clients = append(clients, c)
		}
	}
	return clients, nil
}

func (r *pgUserRepository) ListCoaches(ctx context.Context) ([]*domain.Coach, error) {
	var rows []userRow
	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users WHERE role = 'coach' ORDER BY name`)
	})
	if err != nil {
		return nil, err
	}
	coaches := make([]*domain.Coach, 0, len(rows))
	for _, row := range rows {
		u, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		if c, ok := u.(*domain.Coach); ok {
			coaches = append(coaches, c)
		}
	}
	return coaches, nil
}

func (r *pgUserRepository) UpdateName(ctx context.Context, id, name string) (domain.User, error) {
	return r.getOne(ctx,
		`UPDATE users SET name = $2, updated_at = $3 WHERE id = $1 RETURNING `+userColumns,
		id, name, time.Now().UTC())
}
