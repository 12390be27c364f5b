package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionBackendMongo = "mongo"
	SessionBackendRedis = "redis"
)

type Config struct {
	Env        string
	Port       string
	MongoURI   string
	DBName     string
	CORSOrigin string

	AccessTokenSecret  string
	AccessTokenTTL     time.Duration
	RefreshTokenSecret string
	RefreshTokenTTL    time.Duration

	CookieSameSite       http.SameSite
	RevokeSessionOnReuse bool
	BcryptCost           int

	SessionBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
	UploadTmpDir    string
}

// Load reads the process configuration from the environment, after applying
// a .env file when one is present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn(".env not loaded", "error", err)
	}

	sameSite, err := parseSameSite(getEnvOrDefault("COOKIE_SAME_SITE", "lax"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Env:        getEnvOrDefault("ENV", "development"),
		Port:       getEnvOrDefault("PORT", "8000"),
		MongoURI:   getEnvOrDefault("MONGO_URI", ""),
		DBName:     getEnvOrDefault("DB_NAME", "videohub"),
		CORSOrigin: getEnvOrDefault("CORS_ORIGIN", "*"),

		AccessTokenSecret:  getEnvOrDefault("ACCESS_TOKEN_SECRET", ""),
		AccessTokenTTL:     getDurationEnv("ACCESS_TOKEN_TTL", 15, time.Minute),
		RefreshTokenSecret: getEnvOrDefault("REFRESH_TOKEN_SECRET", ""),
		RefreshTokenTTL:    getDurationEnv("REFRESH_TOKEN_TTL", 10, 24*time.Hour),

		CookieSameSite:       sameSite,
		RevokeSessionOnReuse: getBoolEnv("REVOKE_SESSION_ON_REUSE", false),
		BcryptCost:           getIntEnv("BCRYPT_COST", 10),

		SessionBackend: strings.ToLower(getEnvOrDefault("SESSION_BACKEND", SessionBackendMongo)),
		RedisAddr:      getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:        getIntEnv("REDIS_DB", 0),

		S3Bucket:        getEnvOrDefault("S3_BUCKET", ""),
		S3Region:        getEnvOrDefault("S3_REGION", "us-east-1"),
		S3Endpoint:      getEnvOrDefault("S3_ENDPOINT", ""),
		S3AccessKey:     getEnvOrDefault("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnvOrDefault("S3_SECRET_KEY", ""),
		S3PublicBaseURL: getEnvOrDefault("S3_PUBLIC_BASE_URL", ""),
		UploadTmpDir:    getEnvOrDefault("UPLOAD_TMP_DIR", filepath.Join(os.TempDir(), "videohub-uploads")),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var missing []string
	if c.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if c.AccessTokenSecret == "" {
		missing = append(missing, "ACCESS_TOKEN_SECRET")
	}
	if c.RefreshTokenSecret == "" {
		missing = append(missing, "REFRESH_TOKEN_SECRET")
	}
	if c.S3Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: required env missing: %s", strings.Join(missing, ", "))
	}

	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("config: ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	switch c.SessionBackend {
	case SessionBackendMongo, SessionBackendRedis:
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	return nil
}

func parseSameSite(value string) (http.SameSite, error) {
	switch strings.ToLower(value) {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("config: unknown COOKIE_SAME_SITE %q", value)
	}
}
