package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/lizet96/medibot-backend/ai/stt"
	"github.com/lizet96/medibot-backend/ai/tts"
	"github.com/lizet96/medibot-backend/ai/vision"
	"github.com/lizet96/medibot-backend/cache"
	"github.com/lizet96/medibot-backend/config"
	"github.com/lizet96/medibot-backend/consultation"
	"github.com/lizet96/medibot-backend/database"
	"github.com/lizet96/medibot-backend/events"
	"github.com/lizet96/medibot-backend/handlers"
	"github.com/lizet96/medibot-backend/middleware"
	"github.com/lizet96/medibot-backend/routes"
	"github.com/lizet96/medibot-backend/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Cargar variables de entorno
	if err := godotenv.Load(); err != nil {
		slog.Warn("no se pudo cargar el archivo .env")
	}

	defaultConfig := os.Getenv("CONFIG_FILE")
	if defaultConfig == "" {
		defaultConfig = "config.yaml"
	}
	configPath := flag.String("config", defaultConfig, "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Conectar a la base de datos
	pool, err := database.Connect(ctx, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	sessions := cache.New(ctx, cfg.Redis.URL, logger)
	defer sessions.Close()

	blobs, closeBlobs, err := openBlobStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeBlobs()

	publisher, closeEvents := openPublisher(cfg.NATS.URL, logger)
	defer closeEvents()

	users := database.NewUserStore(pool)
	requestLogs := database.NewRequestLogStore(pool)
	requestLogger := middleware.NewRequestLogger(requestLogs, cfg.Server.Environment, logger)
	defer requestLogger.Wait()

	if cfg.Log.RetentionDays > 0 {
		go purgeRequestLogs(ctx, requestLogs, time.Duration(cfg.Log.RetentionDays)*24*time.Hour, logger)
	}

	service := consultation.NewService(consultation.Options{
		Blobs:     blobs,
		Diagnoses: database.NewDiagnosisStore(pool),
		STT:       buildSTT(cfg.AI, logger),
		Vision:    buildVision(cfg.AI, logger),
		TTS:       buildTTS(cfg.AI, logger),
		Events:    publisher,
		Logger:    logger,
		BaseURL:   cfg.Server.BaseURL,
	})

	secret := []byte(cfg.Auth.JWTSecret)
	h := handlers.New(handlers.Config{
		Users:         users,
		Sessions:      sessions,
		Consultations: service,
		Audit:         requestLogger,
		Activity:      requestLogs,
		Logger:        logger,
		JWTSecret:     secret,
		TokenTTL:      cfg.Auth.TokenTTL,
		MFAIssuer:     cfg.Auth.MFAIssuer,
		Environment:   cfg.Server.Environment,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    cfg.Server.MaxUploadMB << 20,
		AppName:      "Medibot API v" + handlers.Version,
	})

	routes.SetupRoutes(app, routes.Deps{
		Handler:       h,
		Auth:          middleware.JWTMiddleware(secret, users, sessions),
		RequestLogger: requestLogger,
		CORSOrigins:   cfg.Server.CORSOrigins,
		AccessLog:     !cfg.IsProduction(),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting medibot api",
			"port", cfg.Server.Port,
			"environment", cfg.Server.Environment,
			"blob_backend", cfg.Blob.Backend,
			"tts_order", cfg.AI.TTSOrder,
		)
		errCh <- app.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

// purgeRequestLogs borra request_logs más viejos que retention, una vez al arrancar y luego cada día
func purgeRequestLogs(ctx context.Context, store *database.RequestLogStore, retention time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		n, err := store.Purge(ctx, time.Now().UTC().Add(-retention))
		if err != nil {
			logger.Warn("purging request logs", "error", err)
		} else if n > 0 {
			logger.Info("purged request logs", "rows", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func openBlobStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, func(), error) {
	switch cfg.Blob.Backend {
	case config.BlobGridFS:
		g, err := storage.ConnectGridFS(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, err
		}
		return g, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := g.Close(closeCtx); err != nil {
				logger.Warn("closing mongo", "error", err)
			}
		}, nil
	case config.BlobS3:
		s, err := storage.NewS3(ctx, cfg.Blob.S3Bucket, cfg.Blob.S3Prefix, cfg.Blob.S3Endpoint)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	default:
		logger.Warn("using in-memory blob store, uploads are lost on restart")
		return storage.NewMemory(), func() {}, nil
	}
}

func openPublisher(url string, logger *slog.Logger) (events.Publisher, func()) {
	if url == "" {
		return events.NoopPublisher{}, func() {}
	}
	p, err := events.ConnectNATS(url, logger)
	if err != nil {
		logger.Warn("nats unavailable, diagnosis events disabled", "error", err)
		return events.NoopPublisher{}, func() {}
	}
	return p, p.Close
}

func buildSTT(cfg config.AIConfig, logger *slog.Logger) *stt.Chain {
	return stt.NewChain(logger, cfg.STTTimeout,
		stt.NewWhisperClient("groq", cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.Groq.STTModel, cfg.Groq.Language),
		stt.NewWhisperClient("openai", cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.STTModel, cfg.Groq.Language),
	)
}

func buildVision(cfg config.AIConfig, logger *slog.Logger) *vision.Chain {
	return vision.NewChain(logger, cfg.VisionTimeout,
		vision.NewGroqClient(cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.Groq.VisionModel),
		vision.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.Gemini.Model),
	)
}

func buildTTS(cfg config.AIConfig, logger *slog.Logger) *tts.Chain {
	var providers []tts.Synthesizer
	for _, name := range cfg.TTSOrder {
		switch name {
		case config.TTSElevenLabs:
			providers = append(providers, tts.NewElevenLabs(cfg.ElevenLabs.APIKey, cfg.ElevenLabs.VoiceID, cfg.ElevenLabs.Model))
		case config.TTSHuggingFace:
			providers = append(providers, tts.NewHuggingFace(cfg.HuggingFace.Token, cfg.HuggingFace.Model))
		case config.TTSGoogle:
			var google tts.Synthesizer = tts.NewGoogleTranslate()
			if n := cfg.GoogleTTSPerMinute; n > 0 {
				google = tts.NewThrottled(google, rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n))
			}
			providers = append(providers, google)
		case config.TTSVoiceRSS:
			providers = append(providers, tts.NewVoiceRSS(cfg.VoiceRSS.APIKey))
		}
	}
	return tts.NewChain(logger, cfg.TTSTimeout, providers...)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
