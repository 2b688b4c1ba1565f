package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lizet96/medibot-backend/consultation"
	"github.com/lizet96/medibot-backend/database"
	"github.com/lizet96/medibot-backend/handlers"
	"github.com/lizet96/medibot-backend/middleware"
	"github.com/lizet96/medibot-backend/models"
	"github.com/lizet96/medibot-backend/storage"
)

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[string]*models.User
	fail  error
	moved map[string]string
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*models.User{}, moved: map[string]string{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return database.ErrDuplicateEmail
		}
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id, name, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	if u.Email != email {
		f.moved[u.Email] = email
	}
	u.Name, u.Email = name, email
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) SetMFA(_ context.Context, id string, enabled bool, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return database.ErrNotFound
	}
	u.MFAEnabled, u.MFASecret = enabled, secret
	return nil
}

type fakeSessions struct {
	revoked map[string]time.Duration
	evicted []string
}

func (f *fakeSessions) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	f.revoked[jti] = ttl
	return nil
}

func (f *fakeSessions) DeleteProfile(_ context.Context, id string) { f.evicted = append(f.evicted, id) }

type fakeConsultations struct {
	processErr error
	gotAudio   consultation.Upload
	gotImage   consultation.Upload
	history    []models.HistoryRecord
	updateErr  error
	deleteErr  error
	media      map[string]*storage.Object
}

func (f *fakeConsultations) Process(_ context.Context, _ string, audio, image consultation.Upload) (*models.ConsultationResult, error) {
	f.gotAudio, f.gotImage = audio, image
	if f.processErr != nil {
		return nil, f.processErr
	}
	return &models.ConsultationResult{
		Message:        consultation.MessageSaved,
		DiagnosisID:    "d-1",
		Transcription:  "my skin itches",
		DoctorResponse: "With what I see, I think you have eczema.",
		ImageURL:       "http://api.test/medibot/image/img-1",
		AnalysisSource: "groq",
	}, nil
}

func (f *fakeConsultations) History(context.Context, string) ([]models.HistoryRecord, error) {
	return f.history, nil
}

func (f *fakeConsultations) Create(_ context.Context, email string, req models.DiagnosisCreateRequest) (*models.Diagnosis, error) {
	if req.Transcription == "" && req.DoctorResponse == "" {
		return nil, consultation.ErrEmptyRecord
	}
	return &models.Diagnosis{ID: "d-2", UserEmail: email}, nil
}

func (f *fakeConsultations) Update(_ context.Context, email, id string, req models.DiagnosisUpdateRequest) (*models.Diagnosis, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &models.Diagnosis{ID: id, UserEmail: email, Transcription: *req.Transcription}, nil
}

func (f *fakeConsultations) Delete(context.Context, string, string) error { return f.deleteErr }

func (f *fakeConsultations) Media(_ context.Context, _ string, id string) (*storage.Object, error) {
	if id == "none" {
		return nil, storage.ErrInvalidID
	}
	obj, ok := f.media[id]
	if !ok {
		return nil, storage.ErrNoObject
	}
	return obj, nil
}

type fakeActivity struct {
	filter database.LogFilter
	since  time.Time
}

func (f *fakeActivity) List(_ context.Context, filter database.LogFilter) ([]models.RequestLog, int, error) {
	f.filter = filter
	return []models.RequestLog{{ID: 7, Method: "GET", Path: "/medibot/history", StatusCode: 200}}, 1, nil
}

func (f *fakeActivity) Stats(_ context.Context, _ string, since time.Time) (*models.LogStats, error) {
	f.since = since
	return &models.LogStats{Total: 3, ByLevel: map[string]int{"info": 3}, ByStatus: map[string]int{"success": 3}}, nil
}

type env struct {
	app      *fiber.App
	users    *fakeUsers
	sessions *fakeSessions
	consult  *fakeConsultations
	activity *fakeActivity
}

var ana = &models.User{ID: "u-1", Name: "Ana", Email: "ana@example.com"}

func hash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// fakeAuth deja en el contexto al usuario u-1, como lo haría JWTMiddleware
func fakeAuth(users *fakeUsers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := users.FindByID(c.UserContext(), "u-1")
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		c.Locals(middleware.LocalUserID, u.ID)
		c.Locals(middleware.LocalUserEmail, u.Email)
		c.Locals(middleware.LocalTokenID, "jti-1")
		c.Locals(middleware.LocalTokenExp, time.Now().Add(time.Hour))
		return c.Next()
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	u := *ana
	u.PasswordHash = hash(t, "secret123")
	e := &env{
		users:    newFakeUsers(&u),
		sessions: &fakeSessions{revoked: map[string]time.Duration{}},
		consult:  &fakeConsultations{media: map[string]*storage.Object{}},
		activity: &fakeActivity{},
	}
	h := handlers.New(handlers.Config{
		Users:         e.users,
		Sessions:      e.sessions,
		Consultations: e.consult,
		Activity:      e.activity,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		JWTSecret:     []byte("test-secret"),
		TokenTTL:      time.Hour,
		MFAIssuer:     "Medibot",
		Environment:   "testing",
	})

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	auth := fakeAuth(e.users)
	app.Get("/health", h.Health)
	app.Get("/api/status", h.APIStatus)
	app.Post("/auth/signup", h.Signup)
	app.Post("/auth/login", h.Login)
	app.Post("/auth/logout", auth, h.Logout)
	app.Get("/auth/profile", auth, h.GetProfile)
	app.Put("/auth/profile", auth, h.UpdateProfile)
	app.Get("/auth/activity", auth, h.GetActivity)
	app.Get("/auth/activity/stats", auth, h.GetActivityStats)
	app.Post("/auth/mfa/setup", auth, h.SetupMFA)
	app.Post("/auth/mfa/verify", auth, h.VerifyMFA)
	app.Post("/auth/mfa/disable", auth, h.DisableMFA)
	app.Post("/medibot/process", auth, h.Process)
	app.Get("/medibot/history", auth, h.GetHistory)
	app.Post("/medibot/history", auth, h.CreateHistory)
	app.Put("/medibot/history/:id", auth, h.UpdateHistory)
	app.Delete("/medibot/history/:id", auth, h.DeleteHistory)
	app.Get("/medibot/image/:id", auth, h.GetImage)
	app.Get("/medibot/audio/:id", auth, h.GetAudio)
	app.Use(handlers.NotFound)
	e.app = app
	return e
}

func (e *env) do(t *testing.T, method, path string, body any) (int, handlers.StandardResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out handlers.StandardResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func data(t *testing.T, r handlers.StandardResponse) map[string]any {
	t.Helper()
	require.Len(t, r.Body.Data, 1)
	m, ok := r.Body.Data[0].(map[string]any)
	require.True(t, ok)
	return m
}

func TestSignup(t *testing.T) {
	e := newEnv(t)

	status, resp := e.do(t, http.MethodPost, "/auth/signup", fiber.Map{"name": "Leo", "email": " Leo@Example.com ", "password": "hunter22"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "S01", resp.Body.IntCode)
	d := data(t, resp)
	assert.NotEmpty(t, d["token"])
	assert.Equal(t, "leo@example.com", d["user"].(map[string]any)["email"])

	stored, err := e.users.FindByEmail(context.Background(), "leo@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")))

	tests := []struct {
		name string
		body fiber.Map
		want int
	}{
		{"duplicate", fiber.Map{"name": "Ana", "email": "ana@example.com", "password": "hunter22"}, http.StatusConflict},
		{"missing name", fiber.Map{"email": "x@example.com", "password": "hunter22"}, http.StatusBadRequest},
		{"bad email", fiber.Map{"name": "X", "email": "not-an-email", "password": "hunter22"}, http.StatusBadRequest},
		{"short password", fiber.Map{"name": "X", "email": "x@example.com", "password": "123"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := e.do(t, http.MethodPost, "/auth/signup", tt.body)
			assert.Equal(t, tt.want, status)
			assert.Equal(t, "F01", resp.Body.IntCode)
		})
	}
}

func TestLogin(t *testing.T) {
	e := newEnv(t)

	status, resp := e.do(t, http.MethodPost, "/auth/login", fiber.Map{"email": "ANA@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, status)
	token := data(t, resp)["token"].(string)

	claims, err := middleware.ParseJWT([]byte("test-secret"), token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)

	status, _ = e.do(t, http.MethodPost, "/auth/login", fiber.Map{"email": "ana@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.do(t, http.MethodPost, "/auth/login", fiber.Map{"email": "nobody@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusForbidden, status)

	e.users.fail = errors.New("db down")
	status, _ = e.do(t, http.MethodPost, "/auth/login", fiber.Map{"email": "ana@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestMFAFlow(t *testing.T) {
	e := newEnv(t)

	status, resp := e.do(t, http.MethodPost, "/auth/mfa/setup", fiber.Map{"password": "wrong"})
	require.Equal(t, http.StatusForbidden, status)

	status, resp = e.do(t, http.MethodPost, "/auth/mfa/setup", fiber.Map{"password": "secret123"})
	require.Equal(t, http.StatusOK, status)
	mfa := data(t, resp)["mfa"].(map[string]any)
	secret := mfa["secret"].(string)
	assert.Contains(t, mfa["otpauth_url"], "otpauth://totp/Medibot")

	// aún no está activo: login sin código funciona
	status, _ = e.do(t, http.MethodPost, "/auth/login", fiber.Map{"email": "ana@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, http.MethodPost, "/auth/mfa/verify", fiber.Map{"code": "000000"})
	assert.Equal(t, http.StatusUnauthorized, status)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	status, _ = e.do(t, http.MethodPost, "/auth/mfa/verify", fiber.Map{"code": code})
	require.Equal(t, http.StatusOK, status)

	status, resp = e.do(t, http.MethodPost, "/auth/login", fiber.Map{"email": "ana@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, true, data(t, resp)["requires_mfa"])

	status, _ = e.do(t, http.MethodPost, "/auth/login", fiber.Map{"email": "ana@example.com", "password": "secret123", "mfa_code": code})
	assert.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, http.MethodPost, "/auth/mfa/disable", fiber.Map{"code": code})
	require.Equal(t, http.StatusOK, status)
	u, _ := e.users.FindByID(context.Background(), "u-1")
	assert.False(t, u.MFAEnabled)
	assert.Empty(t, u.MFASecret)
}

func TestLogout(t *testing.T) {
	e := newEnv(t)

	status, _ := e.do(t, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, status)
	ttl, ok := e.sessions.revoked["jti-1"]
	require.True(t, ok)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)
	assert.Contains(t, e.sessions.evicted, "u-1")
}

func TestProfile(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.users.Create(context.Background(), &models.User{ID: "u-2", Name: "Eve", Email: "eve@example.com"}))

	status, resp := e.do(t, http.MethodGet, "/auth/profile", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ana", data(t, resp)["user"].(map[string]any)["name"])

	tests := []struct {
		name string
		body fiber.Map
		want int
	}{
		{"missing name", fiber.Map{"name": " ", "email": "ana@example.com"}, http.StatusBadRequest},
		{"bad email", fiber.Map{"name": "Ana", "email": "ana@"}, http.StatusBadRequest},
		{"no change", fiber.Map{"name": "Ana", "email": "ANA@example.com"}, http.StatusBadRequest},
		{"email taken", fiber.Map{"name": "Ana", "email": "eve@example.com"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := e.do(t, http.MethodPut, "/auth/profile", tt.body)
			assert.Equal(t, tt.want, status)
		})
	}

	status, resp = e.do(t, http.MethodPut, "/auth/profile", fiber.Map{"name": "Ana María", "email": "ana.maria@example.com"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "S05", resp.Body.IntCode)
	assert.Equal(t, "ana.maria@example.com", e.users.moved["ana@example.com"])
	assert.Contains(t, e.sessions.evicted, "u-1")
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for field, content := range files {
		part, err := w.CreateFormFile(field, field+".bin")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestProcess(t *testing.T) {
	e := newEnv(t)

	body, contentType := multipartBody(t, map[string][]byte{
		"audio": []byte("ID3-audio"),
		"image": {0xFF, 0xD8, 0xFF},
	})
	req := httptest.NewRequest(http.MethodPost, "/medibot/process", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out handlers.StandardResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.Equal(t, "S10", out.Body.IntCode)
	result := data(t, out)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "Record saved successfully", result["message"])
	assert.Equal(t, "http://api.test/medibot/image/img-1", result["image_url"])
	assert.NotContains(t, result, "audio_url")
	assert.Equal(t, []byte("ID3-audio"), e.consult.gotAudio.Data)
	assert.Equal(t, "image.bin", e.consult.gotImage.Filename)

	t.Run("missing image", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string][]byte{"audio": []byte("a")})
		req := httptest.NewRequest(http.MethodPost, "/medibot/process", body)
		req.Header.Set("Content-Type", contentType)
		resp, err := e.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("storage failure", func(t *testing.T) {
		e.consult.processErr = errors.New("gridfs unavailable")
		defer func() { e.consult.processErr = nil }()

		body, contentType := multipartBody(t, map[string][]byte{"audio": []byte("a"), "image": []byte("i")})
		req := httptest.NewRequest(http.MethodPost, "/medibot/process", body)
		req.Header.Set("Content-Type", contentType)
		resp, err := e.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestHistoryEndpoints(t *testing.T) {
	e := newEnv(t)
	img := "medibot/image/img-1"
	e.consult.history = []models.HistoryRecord{{ID: "d-1", UserEmail: "ana@example.com", ImagePath: &img}}

	status, resp := e.do(t, http.MethodGet, "/medibot/history", nil)
	require.Equal(t, http.StatusOK, status)
	history := data(t, resp)["history"].([]any)
	require.Len(t, history, 1)
	assert.Equal(t, "medibot/image/img-1", history[0].(map[string]any)["imagePath"])

	status, resp = e.do(t, http.MethodPost, "/medibot/history", fiber.Map{"transcription": "note", "doctorResponse": "answer"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "d-2", data(t, resp)["id"])

	status, _ = e.do(t, http.MethodPost, "/medibot/history", fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, resp = e.do(t, http.MethodPut, "/medibot/history/d-1", fiber.Map{"transcription": "edited"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "edited", data(t, resp)["record"].(map[string]any)["transcription"])

	for _, tc := range []struct {
		err  error
		want int
	}{
		{consultation.ErrEmptyUpdate, http.StatusBadRequest},
		{consultation.ErrNoChanges, http.StatusBadRequest},
		{consultation.ErrInvalidID, http.StatusBadRequest},
		{consultation.ErrNotFound, http.StatusNotFound},
	} {
		e.consult.updateErr = tc.err
		status, _ := e.do(t, http.MethodPut, "/medibot/history/d-1", fiber.Map{"transcription": "x"})
		assert.Equal(t, tc.want, status, tc.err.Error())
	}

	status, _ = e.do(t, http.MethodDelete, "/medibot/history/d-1", nil)
	assert.Equal(t, http.StatusOK, status)

	e.consult.deleteErr = consultation.ErrNotFound
	status, resp = e.do(t, http.MethodDelete, "/medibot/history/d-1", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "F14", resp.Body.IntCode)
}

func TestMedia(t *testing.T) {
	e := newEnv(t)
	e.consult.media["img-1"] = &storage.Object{ID: "img-1", Data: []byte{0xFF, 0xD8, 0xFF}, ContentType: "image/jpeg"}
	e.consult.media["out-1"] = &storage.Object{ID: "out-1", Data: []byte("raw"), ContentType: "application/octet-stream"}

	resp, err := e.app.Test(httptest.NewRequest(http.MethodGet, "/medibot/image/img-1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, raw)

	resp, err = e.app.Test(httptest.NewRequest(http.MethodGet, "/medibot/audio/out-1", nil))
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))

	resp, err = e.app.Test(httptest.NewRequest(http.MethodGet, "/medibot/image/none", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = e.app.Test(httptest.NewRequest(http.MethodGet, "/medibot/audio/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusAndNotFound(t *testing.T) {
	e := newEnv(t)

	resp, err := e.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, handlers.Version, health["version"])

	resp, err = e.app.Test(httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(raw), `"environment":"testing"`))

	status, out := e.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "/nope", data(t, out)["path"])
}

func TestActivity(t *testing.T) {
	e := newEnv(t)

	status, resp := e.do(t, http.MethodGet, "/auth/activity?page=3&limit=10&log_level=error&from=2024-05-01&to=2024-05-02", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "S20", resp.Body.IntCode)
	assert.EqualValues(t, 1, data(t, resp)["total"])

	f := e.activity.filter
	assert.Equal(t, "ana@example.com", f.Email)
	assert.Equal(t, "error", f.Level)
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, 20, f.Offset)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), f.From)
	assert.Equal(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), f.To, "to includes the whole day")

	status, _ = e.do(t, http.MethodGet, "/auth/activity?limit=100000", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 200, e.activity.filter.Limit, "limit is capped, not reset")

	status, _ = e.do(t, http.MethodGet, "/auth/activity?limit=0", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 50, e.activity.filter.Limit)

	status, _ = e.do(t, http.MethodGet, "/auth/activity?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, resp = e.do(t, http.MethodGet, "/auth/activity/stats", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "24 hours", data(t, resp)["period"])
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), e.activity.since, time.Minute)
}
