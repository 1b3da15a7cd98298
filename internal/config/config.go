package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Editor   EditorConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LogLevel           string
	SurfaceLogFilePath string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	InstanceID         string
}

type DatabaseConfig struct {
	Connection   string
	MaxOpenConns int
	MaxIdleConns int
	SlowQuery    time.Duration
	TraceSQL     bool
}

// EditorConfig holds the session timing knobs. The defaults mirror what the
// mobile editor shipped with; none of them is derived from anything else.
type EditorConfig struct {
	DebounceDelay  time.Duration
	ProbeTimeout   time.Duration
	ProbeInterval  time.Duration // 0 disables the background liveness loop
	FlushTimeout   time.Duration
	UnlockTimeout  time.Duration
	VaultUnlockTTL time.Duration
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	SampleRatio float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			SurfaceLogFilePath: getEnv("SURFACE_LOG_FILE_PATH", "logs/surface.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			InstanceID:         getEnv("INSTANCE_ID", hostname()),
		},
		Database: DatabaseConfig{
			Connection:   getEnv("DB_CONNECTION_STRING", ""),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			SlowQuery:    getEnvAsMillis("DB_SLOW_QUERY_MS", 200),
			TraceSQL:     getEnv("DB_TRACE_SQL", "false") == "true",
		},
		Editor: EditorConfig{
			DebounceDelay:  getEnvAsMillis("EDITOR_DEBOUNCE_MS", 300),
			ProbeTimeout:   getEnvAsMillis("EDITOR_PROBE_TIMEOUT_MS", 1000),
			ProbeInterval:  getEnvAsMillis("EDITOR_PROBE_INTERVAL_MS", 4000),
			FlushTimeout:   getEnvAsMillis("EDITOR_FLUSH_TIMEOUT_MS", 4000),
			UnlockTimeout:  getEnvAsMillis("EDITOR_UNLOCK_TIMEOUT_MS", 60000),
			VaultUnlockTTL: getEnvAsMillis("VAULT_UNLOCK_TTL_MS", 15*60*1000),
		},
		Tracing: TracingConfig{
			Enabled:     getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1.0),
		},
	}
}

// DefaultEditorConfig is what Load produces with an empty environment.
func DefaultEditorConfig() EditorConfig {
	return EditorConfig{
		DebounceDelay:  300 * time.Millisecond,
		ProbeTimeout:   time.Second,
		ProbeInterval:  4 * time.Second,
		FlushTimeout:   4 * time.Second,
		UnlockTimeout:  time.Minute,
		VaultUnlockTTL: 15 * time.Minute,
	}
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "local"
	}
	return name
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Millisecond
}
