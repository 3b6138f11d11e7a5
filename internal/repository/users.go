// Package repository provides the PostgreSQL-backed user directory that
// maps certificate logins to vault uids.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNoFreeUID is returned when every vault uid is already assigned.
	ErrNoFreeUID = errors.New("repository: no free vault uid")
	// ErrUserExists is returned when registering a login twice.
	ErrUserExists = errors.New("repository: user already exists")
	// ErrUserNotFound is returned when a login is not registered.
	ErrUserNotFound = errors.New("repository: user not found")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const registerQuery = `
	INSERT INTO users (login, uid)
	SELECT $1, COALESCE(MAX(uid), 0) + 1 FROM users
	HAVING COALESCE(MAX(uid), 0) < $2
	RETURNING uid
`

// PostgresUserRepository implements user directory operations against a
// PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the
// given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// UserExists checks whether a user with the specified login exists.
func (s *PostgresUserRepository) UserExists(ctx context.Context, login string) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE login = $1)`,
		login,
	).Scan(&exists)
	return exists, err
}

// RegisterUser stores login with the next unassigned uid and returns it.
// uids are handed out densely from 1; once maxUID is taken it returns
// ErrNoFreeUID.
//
//	ctx:    context for cancellation and deadlines
//	login:  certificate Common Name of the new user
//	maxUID: highest uid the vault can hold
func (s *PostgresUserRepository) RegisterUser(ctx context.Context, login string, maxUID int) (int, error) {
	var uid int
	err := s.DB.QueryRowContext(ctx, registerQuery, login, maxUID).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoFreeUID
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return 0, ErrUserExists
	}
	if err != nil {
		return 0, fmt.Errorf("register user: %w", err)
	}
	return uid, nil
}

// LookupUID returns the vault uid assigned to login.
func (s *PostgresUserRepository) LookupUID(ctx context.Context, login string) (int, error) {
	var uid int
	err := s.DB.QueryRowContext(ctx, `SELECT uid FROM users WHERE login = $1`, login).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup uid: %w", err)
	}
	return uid, nil
}
