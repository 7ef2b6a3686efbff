package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port             string
	Env              string
	CORSAllowOrigin  []string
	TrustedProxies   []string
	SessionIdleTTL   time.Duration
	SessionInboxSize int
	WSWriteTimeout   time.Duration
	ShutdownTimeout  time.Duration
	SessionMax       int

	// Token buckets for the builder routes. A zero rate disables a bucket.
	SessionCreateRate  float64
	SessionCreateBurst int
	CommandRate        float64
	CommandBurst       int
	ReadRate           float64
	ReadBurst          int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Port:             getEnv("PORT", "8080"),
		Env:              normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin:  splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		TrustedProxies:   splitAndTrim(getEnv("TRUSTED_PROXIES", "")),
		SessionIdleTTL:   getDuration("SESSION_IDLE_TTL", 30*time.Minute),
		SessionInboxSize: getInt("SESSION_INBOX_SIZE", 64),
		WSWriteTimeout:   getDuration("WS_WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout:  getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		SessionMax:       getInt("SESSION_MAX", 10000),

		SessionCreateRate:  getFloat("RATE_LIMIT_SESSIONS_RPS", 0.5),
		SessionCreateBurst: getInt("RATE_LIMIT_SESSIONS_BURST", 20),
		CommandRate:        getFloat("RATE_LIMIT_COMMANDS_RPS", 20),
		CommandBurst:       getInt("RATE_LIMIT_COMMANDS_BURST", 60),
		ReadRate:           getFloat("RATE_LIMIT_READS_RPS", 10),
		ReadBurst:          getInt("RATE_LIMIT_READS_BURST", 30),
	}
}

// loadEnvFiles loads the files that exist. Variables already present in
// the environment win.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			log.Printf("config: ignoring %s: %v", path, err)
		}
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("config: invalid %s=%q, using %s", key, raw, def)
		return def
	}
	return d
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("config: invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		log.Printf("config: invalid %s=%q, using %g", key, raw, def)
		return def
	}
	return f
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
