package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/lizet96/medibot-backend/consultation"
	"github.com/lizet96/medibot-backend/database"
	"github.com/lizet96/medibot-backend/models"
	"github.com/lizet96/medibot-backend/storage"
)

// Version se reporta en /health y /api/status
const Version = "2.0.0"

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error)
	SetMFA(ctx context.Context, id string, enabled bool, secret string) error
}

// SessionCache revoca tokens e invalida perfiles cacheados (cache.Cache)
type SessionCache interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	DeleteProfile(ctx context.Context, userID string)
}

// Consultations es implementado por consultation.Service
type Consultations interface {
	Process(ctx context.Context, email string, audio, image consultation.Upload) (*models.ConsultationResult, error)
	History(ctx context.Context, email string) ([]models.HistoryRecord, error)
	Create(ctx context.Context, email string, req models.DiagnosisCreateRequest) (*models.Diagnosis, error)
	Update(ctx context.Context, email, id string, req models.DiagnosisUpdateRequest) (*models.Diagnosis, error)
	Delete(ctx context.Context, email, id string) error
	Media(ctx context.Context, email, blobID string) (*storage.Object, error)
}

// ActivityLog consulta request_logs (database.RequestLogStore)
type ActivityLog interface {
	List(ctx context.Context, f database.LogFilter) ([]models.RequestLog, int, error)
	Stats(ctx context.Context, email string, since time.Time) (*models.LogStats, error)
}

// Auditor registra eventos de negocio (middleware.RequestLogger)
type Auditor interface {
	Event(level, message, userEmail string, data map[string]interface{})
}

type Config struct {
	Users         UserRepository
	Sessions      SessionCache
	Consultations Consultations
	Audit         Auditor
	Activity      ActivityLog
	Logger        *slog.Logger
	JWTSecret     []byte
	TokenTTL      time.Duration
	MFAIssuer     string
	Environment   string
}

type Handler struct {
	users         UserRepository
	sessions      SessionCache
	consultations Consultations
	audit         Auditor
	activity      ActivityLog
	logger        *slog.Logger
	jwtSecret     []byte
	tokenTTL      time.Duration
	mfaIssuer     string
	environment   string
}

func New(cfg Config) *Handler {
	return &Handler{
		users:         cfg.Users,
		sessions:      cfg.Sessions,
		consultations: cfg.Consultations,
		audit:         cfg.Audit,
		activity:      cfg.Activity,
		logger:        cfg.Logger,
		jwtSecret:     cfg.JWTSecret,
		tokenTTL:      cfg.TokenTTL,
		mfaIssuer:     cfg.MFAIssuer,
		environment:   cfg.Environment,
	}
}

func (h *Handler) event(level, message, email string, data map[string]interface{}) {
	if h.audit != nil {
		h.audit.Event(level, message, email, data)
	}
}
