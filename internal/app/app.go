package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/atvirokodosprendimai/regintake/internal/adapters/auditlog"
	"github.com/atvirokodosprendimai/regintake/internal/adapters/events"
	"github.com/atvirokodosprendimai/regintake/internal/adapters/httpapi"
	"github.com/atvirokodosprendimai/regintake/internal/adapters/mail"
	sqliteadapter "github.com/atvirokodosprendimai/regintake/internal/adapters/sqlite"
	"github.com/atvirokodosprendimai/regintake/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/regintake/internal/core/ports"
	"github.com/atvirokodosprendimai/regintake/internal/core/usecase"
	"github.com/atvirokodosprendimai/regintake/internal/observability/metrics"
	"github.com/atvirokodosprendimai/regintake/migrations"
)

const (
	AuditSinkFile   = "file"
	AuditSinkSQLite = "sqlite"
	AuditSinkMemory = "memory"
)

type Config struct {
	Addr string

	AuditSink     string
	AuditLogPath  string
	AuditMaxBytes int64
	DBPath        string

	// RateLimit is the per-client submission rate in requests per second; 0 disables it.
	RateLimit  float64
	RateBurst  int
	TrustProxy bool

	WebhookURL    string
	WebhookSecret string

	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	MailFrom         string
	SendConfirmation bool

	Logger *slog.Logger
}

type resourceCloser struct {
	closers []io.Closer
}

func (r resourceCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewServer(ctx context.Context, cfg Config) (*http.Server, io.Closer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, closer, err := openAuditStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []usecase.Option{
		usecase.WithLogger(logger),
		usecase.WithPublisher(newPublisher(cfg, logger)),
	}
	if cfg.SendConfirmation {
		mailer, err := mail.NewConfirmationMailer(mail.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		if err != nil {
			_ = closer.Close()
			return nil, nil, fmt.Errorf("create confirmation mailer: %w", err)
		}
		opts = append(opts, usecase.WithConfirmationSender(mailer))
	}
	registrations := usecase.NewRegistrationService(store, opts...)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var limiter *httpapi.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = httpapi.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.TrustProxy)
	}

	handler := httpapi.NewHandler(registrations, httpapi.Config{
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Limiter:  limiter,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, closer, nil
}

func openAuditStore(ctx context.Context, cfg Config) (ports.AuditLogStore, io.Closer, error) {
	switch cfg.AuditSink {
	case "", AuditSinkFile:
		return auditlog.NewFileStore(cfg.AuditLogPath, cfg.AuditMaxBytes), resourceCloser{}, nil
	case AuditSinkMemory:
		return auditlog.NewMemoryStore(cfg.AuditMaxBytes), resourceCloser{}, nil
	case AuditSinkSQLite:
		db, err := gormsqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open audit sqlite: %w", err)
		}

		writeSQLDB, err := db.WriteSQLDB()
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("resolve writer sql db: %w", err)
		}

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := migrations.Up(ctx, writeSQLDB); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqliteadapter.NewAuditLogRepository(db, cfg.AuditMaxBytes), resourceCloser{closers: []io.Closer{db}}, nil
	default:
		return nil, nil, fmt.Errorf("unknown audit sink %q", cfg.AuditSink)
	}
}

func newPublisher(cfg Config, logger *slog.Logger) ports.EventPublisher {
	if cfg.WebhookURL != "" {
		return events.NewWebhookPublisher(cfg.WebhookURL, cfg.WebhookSecret, 5*time.Second)
	}
	return events.NewLogPublisher(logger)
}
