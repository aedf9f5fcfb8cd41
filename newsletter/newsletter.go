// Package newsletter serves the site's newsletter endpoints: a public
// subscribe form handler and an API-key protected subscriber export,
// backed by SQLite and optionally notifying a mailbox through Resend.
package newsletter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

// Config holds the newsletter server configuration.
type Config struct {
	Addr         string `toml:"addr"`     // listen address (default ":8788")
	DatabasePath string `toml:"database"` // SQLite path (default "data/newsletter.db")

	AdminAPIKey       string `toml:"admin_api_key"`      // required for the export endpoint
	ResendAPIKey      string `toml:"resend_api_key"`     // enables notification emails
	NotificationEmail string `toml:"notification_email"` // recipient of notification emails
	FromEmail         string `toml:"from_email"`         // sender (default "Withstain Newsletter <onboarding@resend.dev>")

	AllowOrigin string        `toml:"allow_origin"` // CORS origin for subscribe (default "*")
	RateLimit   int           `toml:"rate_limit"`   // subscribe requests per window per IP (default 5)
	RateWindow  time.Duration `toml:"rate_window"`  // default 1m
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":8788"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/newsletter.db"
	}
	if c.FromEmail == "" {
		c.FromEmail = "Withstain Newsletter <onboarding@resend.dev>"
	}
	if c.AllowOrigin == "" {
		c.AllowOrigin = "*"
	}
	if c.RateLimit == 0 {
		c.RateLimit = 5
	}
	if c.RateWindow == 0 {
		c.RateWindow = time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the logger for request and error logging.
func WithLogger(l *log.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithNotifier replaces the notifier derived from the configuration.
func WithNotifier(n Notifier) Option {
	return func(a *App) {
		a.notifier = n
	}
}

// WithClock sets the time source used for notification timestamps and
// export file names.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// App wires together the store, limiter, notifier, middleware and routes.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store

	logger   *log.Logger
	limiter  *Limiter
	notifier Notifier
	now      func() time.Time
}

// New opens the subscriber database and builds the HTTP handler. Call
// Close when done.
func New(cfg Config, opts ...Option) (*App, error) {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		logger: log.Default(),
		now:    time.Now,
	}
	if cfg.ResendAPIKey != "" && cfg.NotificationEmail != "" {
		a.notifier = NewResendNotifier(cfg.ResendAPIKey, cfg.FromEmail, cfg.NotificationEmail)
	}
	for _, opt := range opts {
		opt(a)
	}

	store, err := NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("newsletter: init store: %w", err)
	}
	a.Store = store
	a.limiter = NewLimiter(cfg.RateLimit, cfg.RateWindow)

	a.Echo.HideBanner = true
	a.Echo.HidePort = true
	a.setupMiddleware()
	a.setupRoutes()
	return a, nil
}

func (a *App) setupRoutes() {
	e := a.Echo
	e.POST("/api/subscribe", a.handleSubscribe)
	e.GET("/api/subscribers", a.handleSubscribers)
}

// Start serves HTTP on Config.Addr until ctx is canceled, then shuts down
// gracefully.
func (a *App) Start(ctx context.Context) error {
	if a.Config.AdminAPIKey == "" {
		a.logger.Warn("ADMIN_API_KEY is not set; subscriber export is disabled")
	}
	if a.notifier == nil {
		a.logger.Info("notification email disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("newsletter server listening", "addr", a.Config.Addr)
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("newsletter: shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Close releases the database and limiter.
func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
