package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lizet96/medibot-backend/models"
)

// RequestLogStore persiste los logs de peticiones HTTP y eventos de auditoría
type RequestLogStore struct {
	pool *pgxpool.Pool
}

func NewRequestLogStore(pool *pgxpool.Pool) *RequestLogStore {
	return &RequestLogStore{pool: pool}
}

func (s *RequestLogStore) Insert(ctx context.Context, l models.RequestLog) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO request_logs (
			method, path, status_code, response_time, user_agent, ip,
			body, query, email, log_level, environment, pid, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		l.Method, l.Path, l.StatusCode, l.ResponseTime, l.UserAgent, l.IP,
		l.Body, l.Query, l.Email, l.LogLevel, l.Environment, l.PID, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting request log: %w", err)
	}
	return nil
}

// LogFilter selecciona entradas de request_logs. Email siempre es obligatorio.
type LogFilter struct {
	Email  string
	Level  string
	Method string
	Path   string
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// where construye el WHERE dinámico con placeholders numerados
func (f LogFilter) where() (string, []interface{}) {
	conditions := []string{"email = $1"}
	args := []interface{}{f.Email}

	add := func(cond string, v interface{}) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if f.Level != "" {
		add("log_level = $%d", f.Level)
	}
	if f.Method != "" {
		add("method = $%d", strings.ToUpper(f.Method))
	}
	if f.Path != "" {
		// subcadena literal: % y _ del usuario no actúan como comodines
		add("strpos(lower(path), lower($%d)) > 0", f.Path)
	}
	if !f.From.IsZero() {
		add("created_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("created_at < $%d", f.To)
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// List devuelve una página de entradas (más recientes primero) y el total que cumple el filtro
func (s *RequestLogStore) List(ctx context.Context, f LogFilter) ([]models.RequestLog, int, error) {
	where, args := f.where()

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM request_logs "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting request logs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, method, path, status_code, response_time, user_agent, ip,
		       body, query, email, log_level, environment, pid, created_at
		FROM request_logs %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	rows, err := s.pool.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing request logs: %w", err)
	}
	defer rows.Close()

	logs := []models.RequestLog{}
	for rows.Next() {
		var l models.RequestLog
		if err := rows.Scan(
			&l.ID, &l.Method, &l.Path, &l.StatusCode, &l.ResponseTime, &l.UserAgent, &l.IP,
			&l.Body, &l.Query, &l.Email, &l.LogLevel, &l.Environment, &l.PID, &l.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning request log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

// Stats resume la actividad del usuario desde since
func (s *RequestLogStore) Stats(ctx context.Context, email string, since time.Time) (*models.LogStats, error) {
	stats := &models.LogStats{
		ByLevel:  map[string]int{},
		ByStatus: map[string]int{},
		Since:    since,
	}

	groups := []struct {
		expr string
		dst  map[string]int
	}{
		{"log_level", stats.ByLevel},
		{`CASE
			WHEN status_code >= 200 AND status_code < 300 THEN 'success'
			WHEN status_code >= 300 AND status_code < 400 THEN 'redirect'
			WHEN status_code >= 400 AND status_code < 500 THEN 'client_error'
			WHEN status_code >= 500 THEN 'server_error'
			ELSE 'other'
		END`, stats.ByStatus},
	}
	for i, g := range groups {
		rows, err := s.pool.Query(ctx, fmt.Sprintf(`
			SELECT %s AS bucket, COUNT(*)
			FROM request_logs
			WHERE email = $1 AND created_at >= $2
			GROUP BY bucket`, g.expr), email, since)
		if err != nil {
			return nil, fmt.Errorf("grouping request logs: %w", err)
		}
		for rows.Next() {
			var bucket string
			var count int
			if err := rows.Scan(&bucket, &count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning request log stats: %w", err)
			}
			g.dst[bucket] = count
			if i == 0 {
				stats.Total += count
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("grouping request logs: %w", err)
		}
	}
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(AVG(response_time), 0)
		FROM request_logs
		WHERE email = $1 AND created_at >= $2 AND response_time IS NOT NULL`,
		email, since).Scan(&stats.AvgResponseTime)
	if err != nil {
		return nil, fmt.Errorf("averaging response time: %w", err)
	}
	return stats, nil
}

// Purge elimina las entradas anteriores a before
func (s *RequestLogStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM request_logs WHERE created_at < $1", before)
	if err != nil {
		return 0, fmt.Errorf("purging request logs: %w", err)
	}
	return tag.RowsAffected(), nil
}
