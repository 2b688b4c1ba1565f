package models

import (
	"time"
)

// RequestLog representa la tabla request_logs
type RequestLog struct {
	ID           int64     `json:"id" db:"id"`
	Method       string    `json:"method" db:"method"`
	Path         string    `json:"path" db:"path"`
	StatusCode   int       `json:"status_code" db:"status_code"`
	ResponseTime *int      `json:"response_time" db:"response_time"`
	UserAgent    *string   `json:"user_agent" db:"user_agent"`
	IP           string    `json:"ip" db:"ip"`
	Body         *string   `json:"body" db:"body"`
	Query        *string   `json:"query" db:"query"`
	Email        *string   `json:"email" db:"email"`
	LogLevel     string    `json:"log_level" db:"log_level"`
	Environment  string    `json:"environment" db:"environment"`
	PID          int       `json:"pid" db:"pid"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// LogStats resume la actividad reciente de un usuario
type LogStats struct {
	Total           int            `json:"total"`
	ByLevel         map[string]int `json:"by_level"`
	ByStatus        map[string]int `json:"by_status"`
	AvgResponseTime float64        `json:"avg_response_time"`
	Since           time.Time      `json:"since"`
}

// Constantes para niveles de log
const (
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
	LogLevelSuccess = "success"
)

// Constantes para ambientes
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
	EnvironmentTesting     = "testing"
)
