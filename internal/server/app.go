// Package server wires the imagekeeper server: storage backends, the
// pending-registration store, mail delivery, the HTTP API, the gRPC health
// endpoint and the expiry sweeper. It handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/imagekeeper/internal/filex"
	"github.com/dmitrijs2005/imagekeeper/internal/logging"
	"github.com/dmitrijs2005/imagekeeper/internal/server/auth"
	"github.com/dmitrijs2005/imagekeeper/internal/server/config"
	"github.com/dmitrijs2005/imagekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/imagekeeper/internal/server/notify"
	"github.com/dmitrijs2005/imagekeeper/internal/server/otp"
	"github.com/dmitrijs2005/imagekeeper/internal/server/pending"
	"github.com/dmitrijs2005/imagekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/imagekeeper/internal/server/services"
	"github.com/dmitrijs2005/imagekeeper/internal/server/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/imagekeeper/internal/server/grpc"
	hs "github.com/dmitrijs2005/imagekeeper/internal/server/http"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	pending pending.Store
	router  http.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "imagekeeper",
		Environment: c.Environment,
		Level:       c.LogLevel,
	})

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		app.pending = pending.NewRedisStore(app.redis)
		logger.Info(ctx, "pending registrations kept in redis", "address", c.RedisAddr)
	} else {
		app.pending = pending.NewMemoryStore()
	}

	var notifier notify.Notifier
	if c.MailerConfigured() {
		n, err := notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:      c.SMTPHost,
			Port:      c.SMTPPort,
			Username:  c.SMTPUser,
			Password:  c.SMTPPassword,
			From:      c.SMTPFrom,
			RateLimit: c.MailerRateLimit,
		})
		if err != nil {
			app.close()
			return nil, err
		}
		notifier = n
	} else {
		logger.Warn(ctx, "no SMTP host configured, OTP emails will not be sent")
	}

	media, err := storage.NewS3MediaHost(ctx, storage.S3Config{
		Region:        c.S3Region,
		AccessKey:     c.S3RootUser,
		SecretKey:     c.S3RootPassword,
		BaseEndpoint:  c.S3BaseEndpoint,
		Bucket:        c.S3Bucket,
		PublicBaseURL: c.S3PublicBaseURL,
	})
	if err != nil {
		app.close()
		return nil, err
	}

	uploadDir, err := filex.EnsureSubdDir(c.UploadDir)
	if err != nil {
		app.close()
		return nil, err
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	tokens := auth.NewIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration)

	us := services.NewUserService(db, rm, c, services.UserDeps{
		Pending:    app.pending,
		OTP:        otp.NewGenerator(c.OTPLength),
		Tokens:     tokens,
		Dispatcher: notify.NewDispatcher(notifier, c.NotifyAttempts, c.NotifyBackoff, c.NotifyTimeout),
		Media:      media,
		Logger:     logger,
	})
	is := services.NewImageService(db, rm, media, logger)

	app.router = hs.NewRouter(hs.Deps{
		Users:          us,
		Images:         is,
		Tokens:         tokens,
		DB:             db,
		Logger:         logger,
		UploadDir:      uploadDir,
		MaxUploadBytes: c.MaxUploadBytes,
		CORSOrigins:    c.CORSOrigins,
		Development:    c.IsDevelopment(),
	})

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := hs.NewServer(app.config.EndpointAddrHTTP, app.router, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db, app.config.HealthCheckInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		pending.NewSweeper(app.pending, app.config.SweepInterval, app.logger).Run(ctx)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}
