package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"videohub/internal/auth"
	"videohub/internal/config"
	"videohub/internal/database"
	"videohub/internal/handlers"
	"videohub/internal/logging"
	"videohub/internal/media"
	"videohub/internal/middleware"
	"videohub/internal/password"
	"videohub/internal/profile"
	"videohub/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	db := client.Database(cfg.DBName)
	logger.Info("mongodb connected", "db", db.Name())

	if err := database.EnsureUserIndexes(ctx, db); err != nil {
		logger.Warn("user index warning", "error", err)
	}
	if err := database.EnsureSubscriptionIndexes(ctx, db); err != nil {
		logger.Warn("subscription index warning", "error", err)
	}

	var sessions auth.SessionStore
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		rdb, err := database.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = store.NewRedisSessions(rdb, "", cfg.RefreshTokenTTL)
		logger.Info("session store", "backend", "redis", "addr", cfg.RedisAddr)
	default:
		sessions = store.NewMongoSessions(db)
		logger.Info("session store", "backend", "mongo")
	}

	s3Cfg := media.S3Config{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	}
	s3Client, err := media.NewS3Client(ctx, s3Cfg)
	if err != nil {
		return err
	}
	uploader := media.NewUploader(s3Client, s3Cfg)
	stager := media.NewStager(cfg.UploadTmpDir)

	users := store.NewUserRepository(db)
	hasher := password.NewHasher(cfg.BcryptCost)
	codec := auth.NewCodec(
		auth.KindConfig{Secret: []byte(cfg.AccessTokenSecret), TTL: cfg.AccessTokenTTL},
		auth.KindConfig{Secret: []byte(cfg.RefreshTokenSecret), TTL: cfg.RefreshTokenTTL},
	)
	authSvc := auth.NewService(users, sessions, hasher, codec, auth.Options{
		RevokeOnReuse: cfg.RevokeSessionOnReuse,
	})
	profileSvc := profile.NewService(users, uploader, hasher)
	cookies := handlers.CookieConfig{SameSite: cfg.CookieSameSite, Secure: true}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestid.New(), middleware.RequestLogger(logger))
	r.Use(cors.New(corsConfig(cfg.CORSOrigin)), gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", handlers.Health(db))

	api := r.Group("/api/v1/users")
	api.POST("/register", handlers.Register(profileSvc, stager))
	api.POST("/login", handlers.Login(authSvc, cookies))
	api.POST("/refresh-token", handlers.Refresh(authSvc, cookies))

	secured := api.Group("")
	secured.Use(middleware.AccessGuard(authSvc))
	{
		secured.POST("/logout", handlers.Logout(authSvc, cookies))
		secured.POST("/update-password", handlers.ChangePassword(authSvc))
		secured.GET("/current-user", handlers.CurrentUser(profileSvc))
		secured.PATCH("/update-account", handlers.UpdateAccount(profileSvc))
		secured.PATCH("/avatar", handlers.UpdateAvatar(profileSvc, stager))
		secured.PATCH("/cover-image", handlers.UpdateCoverImage(profileSvc, stager))
		secured.GET("/c/:username", handlers.ChannelProfile(profileSvc))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// corsConfig allows credentials for the configured origin. "*" reflects the
// request origin.
func corsConfig(origin string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origin == "" || origin == "*" {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = []string{origin}
	}
	return cfg
}
