package app

import (
	"strings"
	"time"

	"github.com/audifyai/callaudit-backend/internal/platform/envutil"
	"github.com/audifyai/callaudit-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Mode        string
	CORSOrigins []string

	UploadDir           string
	MaxFileSize         int64
	MaxFilesPerRequest  int
	AllowedAudioFormats []string
	ParametersFile      string

	GoogleAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string
	GeminiTimeout    time.Duration
	GeminiMaxRetries int

	MaxParamConcurrency int

	RedisAddr    string
	RedisChannel string
}

func LoadConfig(log *logger.Logger) Config {
	corsOrigins := strings.Split(envutil.GetEnv("CORS_ORIGINS",
		"http://localhost:5173,http://localhost:3000,http://localhost:8080", log), ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}

	allowedFormats := strings.Split(envutil.GetEnv("ALLOWED_AUDIO_FORMATS",
		".mp3,.wav,.m4a,.aac,.flac", log), ",")
	for i := range allowedFormats {
		allowedFormats[i] = strings.TrimSpace(allowedFormats[i])
	}

	return Config{
		Port:        envutil.GetEnv("PORT", "8080", log),
		Mode:        envutil.GetEnv("LOG_MODE", "development", log),
		CORSOrigins: corsOrigins,

		UploadDir:           envutil.GetEnv("UPLOAD_DIR", "uploads", log),
		MaxFileSize:         envutil.GetEnvAsInt64("MAX_FILE_SIZE", 50*1024*1024, log),
		MaxFilesPerRequest:  envutil.GetEnvAsInt("MAX_FILES_PER_REQUEST", 10, log),
		AllowedAudioFormats: allowedFormats,
		ParametersFile:      envutil.GetEnv("PARAMETERS_FILE", "", log),

		GoogleAPIKey:     envutil.GetEnv("GOOGLE_API_KEY", "", log),
		GeminiModel:      envutil.GetEnv("GEMINI_MODEL", "gemini-1.5-pro", log),
		GeminiBaseURL:    envutil.GetEnv("GEMINI_BASE_URL", "", log),
		GeminiTimeout:    time.Duration(envutil.GetEnvAsInt("GEMINI_TIMEOUT_SECONDS", 120, log)) * time.Second,
		GeminiMaxRetries: envutil.GetEnvAsInt("GEMINI_MAX_RETRIES", 3, log),

		MaxParamConcurrency: envutil.GetEnvAsInt("MAX_PARAM_CONCURRENCY", 3, log),

		RedisAddr:    envutil.GetEnv("REDIS_ADDR", "", log),
		RedisChannel: envutil.GetEnv("REDIS_CHANNEL", "audit-events", log),
	}
}
