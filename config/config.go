package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config agrupa toda la configuración del servicio.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Blob     BlobConfig     `yaml:"blob"`
	NATS     NATSConfig     `yaml:"nats"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	AI       AIConfig       `yaml:"ai"`
}

type ServerConfig struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	BaseURL     string `yaml:"base_url"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
	CORSOrigins string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// BlobConfig selects where uploaded audio, images and synthesized answers live.
type BlobConfig struct {
	Backend    string `yaml:"backend"` // gridfs | s3 | memory
	S3Bucket   string `yaml:"s3_bucket"`
	S3Endpoint string `yaml:"s3_endpoint"`
	S3Prefix   string `yaml:"s3_prefix"`
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	MFAIssuer string        `yaml:"mfa_issuer"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// RetentionDays borra request_logs más viejos. Negativo los conserva.
	RetentionDays int `yaml:"retention_days"`
}

type AIConfig struct {
	Groq        GroqConfig        `yaml:"groq"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	ElevenLabs  ElevenLabsConfig  `yaml:"elevenlabs"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	VoiceRSS    VoiceRSSConfig    `yaml:"voicerss"`

	// TTSOrder lists text-to-speech providers in the order they are tried.
	TTSOrder []string `yaml:"tts_order"`
	// GoogleTTSPerMinute throttles the free Google Translate endpoint. 0 disables throttling.
	GoogleTTSPerMinute int `yaml:"google_tts_per_minute"`

	STTTimeout    time.Duration `yaml:"stt_timeout"`
	VisionTimeout time.Duration `yaml:"vision_timeout"`
	TTSTimeout    time.Duration `yaml:"tts_timeout"`
}

type GroqConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	STTModel    string `yaml:"stt_model"`
	VisionModel string `yaml:"vision_model"`
	Language    string `yaml:"language"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	STTModel string `yaml:"stt_model"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type ElevenLabsConfig struct {
	APIKey  string `yaml:"api_key"`
	VoiceID string `yaml:"voice_id"`
	Model   string `yaml:"model"`
}

type HuggingFaceConfig struct {
	Token string `yaml:"token"`
	Model string `yaml:"model"`
}

type VoiceRSSConfig struct {
	APIKey string `yaml:"api_key"`
}

// Proveedores de TTS conocidos.
const (
	TTSElevenLabs  = "elevenlabs"
	TTSHuggingFace = "huggingface"
	TTSGoogle      = "google"
	TTSVoiceRSS    = "voicerss"
)

const (
	BlobGridFS = "gridfs"
	BlobS3     = "s3"
	BlobMemory = "memory"
)

const EnvironmentDevelopment = "development"

// Load lee el archivo YAML (si existe), aplica variables de entorno y valores por defecto.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// sin archivo: solo entorno y defaults
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg.applyEnv()
	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.Environment, "ENVIRONMENT")
	setString(&c.Server.BaseURL, "BASE_URL")
	setInt(&c.Server.MaxUploadMB, "MAX_UPLOAD_MB")
	setString(&c.Server.CORSOrigins, "CORS_ORIGINS")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setInt(&c.Log.RetentionDays, "LOG_RETENTION_DAYS")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.Mongo.URI, "MONGO_CONN")
	setString(&c.Mongo.Database, "MONGO_DB")
	setString(&c.Blob.Backend, "BLOB_BACKEND")
	setString(&c.Blob.S3Bucket, "S3_BUCKET")
	setString(&c.Blob.S3Endpoint, "S3_ENDPOINT")
	setString(&c.Blob.S3Prefix, "S3_PREFIX")
	setString(&c.NATS.URL, "NATS_URL")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setDuration(&c.Auth.TokenTTL, "TOKEN_TTL")
	setString(&c.AI.Groq.APIKey, "GROQ_API_KEY")
	setString(&c.AI.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.AI.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.AI.ElevenLabs.APIKey, "ELEVENLABS_API_KEY")
	setString(&c.AI.ElevenLabs.VoiceID, "ELEVENLABS_VOICE_ID")
	setString(&c.AI.HuggingFace.Token, "HF_TOKEN")
	setString(&c.AI.VoiceRSS.APIKey, "VOICERSS_API_KEY")
	if order := os.Getenv("TTS_ORDER"); order != "" {
		c.AI.TTSOrder = splitList(order)
	}
}

func (c *Config) setDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.Environment == "" {
		c.Server.Environment = EnvironmentDevelopment
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:" + c.Server.Port
	}
	c.Server.BaseURL = strings.TrimSuffix(c.Server.BaseURL, "/")
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 25
	}
	if c.Server.CORSOrigins == "" {
		c.Server.CORSOrigins = "http://localhost:5173"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.RetentionDays == 0 {
		c.Log.RetentionDays = 30
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "test"
	}
	if c.Blob.Backend == "" {
		c.Blob.Backend = BlobGridFS
	}
	if c.Blob.S3Prefix == "" {
		c.Blob.S3Prefix = "medibot"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Auth.MFAIssuer == "" {
		c.Auth.MFAIssuer = "Medibot"
	}
	if c.Auth.JWTSecret == "" && c.Server.Environment == EnvironmentDevelopment {
		c.Auth.JWTSecret = "development-secret-change-me"
	}

	ai := &c.AI
	if ai.Groq.BaseURL == "" {
		ai.Groq.BaseURL = "https://api.groq.com/openai/v1"
	}
	if ai.Groq.STTModel == "" {
		ai.Groq.STTModel = "whisper-large-v3"
	}
	if ai.Groq.VisionModel == "" {
		ai.Groq.VisionModel = "meta-llama/llama-4-scout-17b-16e-instruct"
	}
	if ai.Groq.Language == "" {
		ai.Groq.Language = "en"
	}
	if ai.OpenAI.BaseURL == "" {
		ai.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if ai.OpenAI.STTModel == "" {
		ai.OpenAI.STTModel = "whisper-1"
	}
	if ai.Gemini.BaseURL == "" {
		ai.Gemini.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if ai.Gemini.Model == "" {
		ai.Gemini.Model = "gemini-2.0-flash"
	}
	if ai.ElevenLabs.VoiceID == "" {
		ai.ElevenLabs.VoiceID = "pMsXgVXv3BLzUgSXRplE"
	}
	if ai.ElevenLabs.Model == "" {
		ai.ElevenLabs.Model = "eleven_monolingual_v1"
	}
	if ai.HuggingFace.Model == "" {
		ai.HuggingFace.Model = "facebook/mms-tts-eng"
	}
	if len(ai.TTSOrder) == 0 {
		ai.TTSOrder = []string{TTSElevenLabs, TTSHuggingFace, TTSGoogle, TTSVoiceRSS}
	}
	if ai.GoogleTTSPerMinute == 0 {
		ai.GoogleTTSPerMinute = 30
	}
	if ai.STTTimeout == 0 {
		ai.STTTimeout = 30 * time.Second
	}
	if ai.VisionTimeout == 0 {
		ai.VisionTimeout = 30 * time.Second
	}
	if ai.TTSTimeout == 0 {
		ai.TTSTimeout = 15 * time.Second
	}
}

// Validate revisa combinaciones inválidas antes de arrancar el servidor.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	switch c.Blob.Backend {
	case BlobGridFS:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGO_CONN is required for the gridfs blob backend"))
		}
	case BlobS3:
		if c.Blob.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 blob backend"))
		}
	case BlobMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown blob backend %q", c.Blob.Backend))
	}
	for _, name := range c.AI.TTSOrder {
		switch name {
		case TTSElevenLabs, TTSHuggingFace, TTSGoogle, TTSVoiceRSS:
		default:
			errs = append(errs, fmt.Errorf("unknown tts provider %q", name))
		}
	}
	return errors.Join(errs...)
}

// IsProduction indica si el servicio corre en producción.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(strings.ToLower(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
