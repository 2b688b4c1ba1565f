package database

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(fmt.Errorf("inserting user: %w", unique)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}

func TestLogFilterWhere(t *testing.T) {
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(48 * time.Hour)

	tests := []struct {
		name     string
		filter   LogFilter
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "email only",
			filter:   LogFilter{Email: "ana@example.com"},
			wantSQL:  "WHERE email = $1",
			wantArgs: []interface{}{"ana@example.com"},
		},
		{
			name: "all filters",
			filter: LogFilter{
				Email:  "ana@example.com",
				Level:  "error",
				Method: "post",
				Path:   "history",
				From:   from,
				To:     to,
			},
			wantSQL:  "WHERE email = $1 AND log_level = $2 AND method = $3 AND strpos(lower(path), lower($4)) > 0 AND created_at >= $5 AND created_at < $6",
			wantArgs: []interface{}{"ana@example.com", "error", "POST", "history", from, to},
		},
		{
			name:     "placeholders stay contiguous",
			filter:   LogFilter{Email: "ana@example.com", Path: "/auth", To: to},
			wantSQL:  "WHERE email = $1 AND strpos(lower(path), lower($2)) > 0 AND created_at < $3",
			wantArgs: []interface{}{"ana@example.com", "/auth", to},
		},
		{
			name:     "path wildcards are literal",
			filter:   LogFilter{Email: "ana@example.com", Path: "%_"},
			wantSQL:  "WHERE email = $1 AND strpos(lower(path), lower($2)) > 0",
			wantArgs: []interface{}{"ana@example.com", "%_"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.filter.where()
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
