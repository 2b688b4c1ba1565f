package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("database: record not found")
	ErrDuplicateEmail = errors.New("database: email already registered")
)

// uniqueViolation es el código de Postgres para violación de UNIQUE
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
