// Package app собирает сервер: хранилище, сервисы, HTTP роутер,
// фоновую очистку отозванных токенов и корректную остановку.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/iudanet/budgetkeeper/internal/crypto"
	"github.com/iudanet/budgetkeeper/internal/server/cleanup"
	"github.com/iudanet/budgetkeeper/internal/server/config"
	"github.com/iudanet/budgetkeeper/internal/server/handlers"
	"github.com/iudanet/budgetkeeper/internal/server/middleware"
	"github.com/iudanet/budgetkeeper/internal/server/notify"
	"github.com/iudanet/budgetkeeper/internal/server/reports"
	"github.com/iudanet/budgetkeeper/internal/server/services"
	"github.com/iudanet/budgetkeeper/internal/server/storage/sqlstore"
	"github.com/iudanet/budgetkeeper/internal/server/token"
)

// App собранный сервер
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *sqlstore.Storage
	limiter *middleware.RateLimiter
	cleaner *cleanup.Loop
	handler http.Handler
}

// Options необязательные зависимости; пустые поля заполняются из конфигурации
type Options struct {
	Notifier notify.Sender
	Uploader services.ReportUploader
	Version  string
	// BcryptCost стоимость хеширования паролей; 0 - bcrypt.DefaultCost
	BcryptCost int
}

// New открывает хранилище, применяет миграции и собирает HTTP обработчик
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	store, err := sqlstore.New(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = newNotifier(cfg, logger)
	}

	uploader := opts.Uploader
	if uploader == nil && cfg.ExportEnabled() {
		s3, err := reports.NewS3Uploader(ctx, reports.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			URLExpiry: cfg.S3.URLExpiry,
		})
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to configure report export: %w", err)
		}
		uploader = s3
		logger.Info("report export enabled", slog.String("bucket", cfg.S3.Bucket))
	}

	issuer := token.NewIssuer(token.Config{
		Secret:        []byte(cfg.JWTSecret),
		Issuer:        cfg.JWTIssuer,
		Audience:      cfg.JWTAudience,
		ExpiryMinutes: cfg.JWTExpiryMinutes,
	})

	accounts := services.NewAccountService(logger, store, store, issuer,
		crypto.NewHasher(opts.BcryptCost), notifier, cfg.ActivationURL())

	budgets := services.NewBudgetService(logger, store, uploader)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, logger)

	a := &App{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		limiter: limiter,
		cleaner: cleanup.New(logger, store, cfg.CleanupInterval),
	}

	a.handler = newRouter(routerDeps{
		logger:    logger,
		validator: issuer,
		revoked:   store,
		limiter:   limiter,
		auth:      handlers.NewAuthHandler(logger, accounts),
		admin:     handlers.NewAdminHandler(logger, accounts, budgets),
		budget:    handlers.NewBudgetHandler(logger, budgets),
		health:    handlers.NewHealthHandler(logger, store, opts.Version),
	})

	return a, nil
}

func newNotifier(cfg *config.Config, logger *slog.Logger) notify.Sender {
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP is not configured, activation mail will be logged only")
		return notify.NewLogSender(logger)
	}

	return notify.NewSMTPSender(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
}

// Handler HTTP обработчик приложения
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run обслуживает HTTP запросы на cfg.Addr до отмены ctx
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve обслуживает запросы на ln. При отмене ctx останавливает цикл очистки,
// дожидается завершения активных запросов (не дольше ShutdownTimeout) и закрывает хранилище.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.cleaner.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down server")
	case err := <-serveErr:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server forced to shutdown", slog.Any("error", err))
	}

	a.cleaner.Stop()
	wg.Wait()

	if err := a.Close(); err != nil && runErr == nil {
		runErr = err
	}

	a.logger.Info("server stopped")
	return runErr
}

// Close освобождает ресурсы без запуска сервера
func (a *App) Close() error {
	a.limiter.Stop()
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}

func jsonEncode(w io.Writer, v interface{}) error {
	return json.NewEncoder(w).Encode(v)
}
