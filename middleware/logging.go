package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/lizet96/medibot-backend/models"
)

// LogSink persiste entradas de log (database.RequestLogStore)
type LogSink interface {
	Insert(ctx context.Context, l models.RequestLog) error
}

// RequestLogger registra cada petición y los eventos de auditoría.
// Con sink nil solo escribe en slog.
type RequestLogger struct {
	sink        LogSink
	environment string
	logger      *slog.Logger
	pid         int
	wg          sync.WaitGroup
}

func NewRequestLogger(sink LogSink, environment string, logger *slog.Logger) *RequestLogger {
	if environment == "" {
		environment = models.EnvironmentDevelopment
	}
	return &RequestLogger{
		sink:        sink,
		environment: environment,
		logger:      logger,
		pid:         os.Getpid(),
	}
}

// Handler captura y registra todas las peticiones HTTP
func (l *RequestLogger) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			// el ErrorHandler todavía no corrió; se aplica aquí para registrar el status real
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		responseTime := int(time.Since(start).Milliseconds())
		entry := l.createLogEntry(c, responseTime)
		l.save(entry)

		return nil
	}
}

func (l *RequestLogger) createLogEntry(c *fiber.Ctx, responseTime int) models.RequestLog {
	var email *string
	if e := UserEmail(c); e != "" {
		email = &e
	}

	// La entrada se guarda en otra goroutine y fasthttp reutiliza sus buffers
	// al terminar la petición: todo string sacado del contexto se copia.

	// IP real del cliente
	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		ip = realIP
	}

	var userAgent *string
	if ua := c.Get(fiber.HeaderUserAgent); ua != "" {
		ua = utils.CopyString(ua)
		userAgent = &ua
	}

	// Body solo para POST, PUT y PATCH; las cargas multipart no se guardan
	var body *string
	if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut || c.Method() == fiber.MethodPatch {
		if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			b := "[multipart]"
			body = &b
		} else if raw := string(c.Body()); raw != "" {
			b := filterSensitiveData(raw)
			body = &b
		}
	}

	var query *string
	if q := string(c.Request().URI().QueryString()); q != "" {
		q = filterQuery(q)
		query = &q
	}

	status := c.Response().StatusCode()
	return models.RequestLog{
		Method:       utils.CopyString(c.Method()),
		Path:         utils.CopyString(c.Path()),
		StatusCode:   status,
		ResponseTime: &responseTime,
		UserAgent:    userAgent,
		IP:           utils.CopyString(ip),
		Body:         body,
		Query:        query,
		Email:        email,
		LogLevel:     determineLogLevel(status),
		Environment:  l.environment,
		PID:          l.pid,
		CreatedAt:    time.Now().UTC(),
	}
}

// save escribe en slog y guarda en base de datos de forma asíncrona
func (l *RequestLogger) save(entry models.RequestLog) {
	level := slog.LevelInfo
	switch entry.LogLevel {
	case models.LogLevelWarning:
		level = slog.LevelWarn
	case models.LogLevelError:
		level = slog.LevelError
	}
	l.logger.Log(context.Background(), level, "request",
		"method", entry.Method,
		"path", entry.Path,
		"status", entry.StatusCode,
		"ip", entry.IP)

	if l.sink == nil {
		return
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.sink.Insert(ctx, entry); err != nil {
			l.logger.Warn("saving request log", "error", err)
		}
	}()
}

// Event registra un evento de auditoría (consulta procesada, perfil actualizado, ...)
func (l *RequestLogger) Event(level, message, userEmail string, data map[string]interface{}) {
	entry := models.RequestLog{
		Method:      "EVENT",
		Path:        "/audit",
		StatusCode:  fiber.StatusOK,
		IP:          "127.0.0.1",
		LogLevel:    level,
		Environment: l.environment,
		PID:         l.pid,
		CreatedAt:   time.Now().UTC(),
	}
	if userEmail != "" {
		entry.Email = &userEmail
	}

	payload := map[string]interface{}{"message": message}
	for k, v := range data {
		payload[k] = v
	}
	bodyJSON, _ := json.Marshal(payload)
	body := string(bodyJSON)
	entry.Body = &body

	l.save(entry)
}

// Wait espera a que terminen las escrituras pendientes
func (l *RequestLogger) Wait() {
	l.wg.Wait()
}

var sensitiveFields = []string{"password", "new_password", "mfa_code", "code", "secret", "token"}

// filterSensitiveData filtra información sensible del body
func filterSensitiveData(body string) string {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return truncateLog(body)
	}

	for _, field := range sensitiveFields {
		if _, exists := data[field]; exists {
			data[field] = "[FILTERED]"
		}
	}

	filteredJSON, _ := json.Marshal(data)
	return truncateLog(string(filteredJSON))
}

// filterQuery oculta el token que los archivos multimedia reciben por query string
func filterQuery(q string) string {
	parts := strings.Split(q, "&")
	for i, p := range parts {
		if strings.HasPrefix(p, "token=") {
			parts[i] = "token=[FILTERED]"
		}
	}
	return strings.Join(parts, "&")
}

func truncateLog(s string) string {
	if len(s) > 1000 {
		return s[:1000] + "...[truncated]"
	}
	return s
}

// determineLogLevel determina el nivel de log basado en el status code
func determineLogLevel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return models.LogLevelSuccess
	case statusCode >= 300 && statusCode < 400:
		return models.LogLevelInfo
	case statusCode >= 400 && statusCode < 500:
		return models.LogLevelWarning
	case statusCode >= 500:
		return models.LogLevelError
	default:
		return models.LogLevelInfo
	}
}
