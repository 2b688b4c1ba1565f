package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/lizet96/medibot-backend/models"
)

// ProfileTTL es cuánto vive un perfil cacheado
const ProfileTTL = 10 * time.Minute

// Cache guarda tokens revocados y perfiles. Con client nil (Redis sin configurar
// o caído) todas las operaciones son no-op y las lecturas fallan como cache miss.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

// New conecta a Redis usando REDIS_URL. Si no se puede, devuelve un Cache deshabilitado.
func New(ctx context.Context, url string, logger *slog.Logger) *Cache {
	if url == "" {
		logger.Info("redis not configured, token revocation and profile cache disabled")
		return &Cache{logger: logger}
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("invalid REDIS_URL, cache disabled", "error", err)
		return &Cache{logger: logger}
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis connection failed, cache disabled", "error", err)
		_ = client.Close()
		return &Cache{logger: logger}
	}

	logger.Info("connected to redis", "addr", opt.Addr)
	return &Cache{client: client, logger: logger}
}

// NewWithClient envuelve un cliente ya creado
func NewWithClient(client *redis.Client, logger *slog.Logger) *Cache {
	return &Cache{client: client, logger: logger}
}

// Enabled indica si hay un Redis detrás
func (c *Cache) Enabled() bool {
	return c.client != nil
}

// RevokeToken marca el jti como revocado hasta que el token expire
func (c *Cache) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if c.client == nil || ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, "revoked:"+jti, "1", ttl).Err()
}

// IsRevoked consulta si el jti fue revocado. Ante errores de Redis se considera no revocado.
func (c *Cache) IsRevoked(ctx context.Context, jti string) bool {
	if c.client == nil {
		return false
	}
	n, err := c.client.Exists(ctx, "revoked:"+jti).Result()
	if err != nil {
		c.logger.Warn("checking token revocation", "error", err)
		return false
	}
	return n > 0
}

func (c *Cache) SetProfile(ctx context.Context, user *models.User) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(cachedProfile{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		MFAEnabled: user.MFAEnabled,
	})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, "profile:"+user.ID, data, ProfileTTL).Err(); err != nil {
		c.logger.Warn("caching profile", "error", err, "user_id", user.ID)
	}
}

// GetProfile devuelve el perfil cacheado o (nil, false)
func (c *Cache) GetProfile(ctx context.Context, userID string) (*models.User, bool) {
	if c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, "profile:"+userID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("reading cached profile", "error", err, "user_id", userID)
		}
		return nil, false
	}
	var p cachedProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	return &models.User{ID: p.ID, Name: p.Name, Email: p.Email, MFAEnabled: p.MFAEnabled}, true
}

func (c *Cache) DeleteProfile(ctx context.Context, userID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, "profile:"+userID).Err(); err != nil {
		c.logger.Warn("evicting profile", "error", err, "user_id", userID)
	}
}

func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// cachedProfile no incluye el hash de contraseña ni el secreto MFA
type cachedProfile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	MFAEnabled bool   `json:"mfa_enabled"`
}
