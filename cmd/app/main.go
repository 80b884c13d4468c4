package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/atvirokodosprendimai/regintake/internal/adapters/auditlog"
	"github.com/atvirokodosprendimai/regintake/internal/app"
	"github.com/atvirokodosprendimai/regintake/internal/observability/logging"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("load .env", "error", err)
	}

	cmd := &cli.Command{
		Name:  "regintake",
		Usage: "Registration form intake service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":8080",
				Sources: cli.EnvVars("REGINTAKE_ADDR"),
				Usage:   "HTTP listen address",
			},
			&cli.StringFlag{
				Name:    "audit-sink",
				Value:   app.AuditSinkFile,
				Sources: cli.EnvVars("REGINTAKE_AUDIT_SINK"),
				Usage:   "Audit log sink: file, sqlite or memory",
			},
			&cli.StringFlag{
				Name:    "audit-log-path",
				Value:   "./registrations_log.txt",
				Sources: cli.EnvVars("REGINTAKE_AUDIT_LOG_PATH"),
				Usage:   "Audit log file path for the file sink",
			},
			&cli.Int64Flag{
				Name:    "audit-max-bytes",
				Value:   auditlog.DefaultMaxBytes,
				Sources: cli.EnvVars("REGINTAKE_AUDIT_MAX_BYTES"),
				Usage:   "Audit log size above which it is emptied before the next append",
			},
			&cli.StringFlag{
				Name:    "db-path",
				Value:   "./regintake.sqlite",
				Sources: cli.EnvVars("REGINTAKE_DB_PATH"),
				Usage:   "SQLite file path for the sqlite sink",
			},
			&cli.Float64Flag{
				Name:    "rate-limit",
				Sources: cli.EnvVars("REGINTAKE_RATE_LIMIT"),
				Usage:   "Submissions per second allowed per client IP (0 disables)",
			},
			&cli.IntFlag{
				Name:    "rate-burst",
				Value:   5,
				Sources: cli.EnvVars("REGINTAKE_RATE_BURST"),
				Usage:   "Burst size for the per-client rate limit",
			},
			&cli.BoolFlag{
				Name:    "trust-proxy",
				Sources: cli.EnvVars("REGINTAKE_TRUST_PROXY"),
				Usage:   "Resolve client IPs from X-Real-IP / X-Forwarded-For",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars("REGINTAKE_LOG_LEVEL"),
				Usage:   "Log level: debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:    "env",
				Value:   "development",
				Sources: cli.EnvVars("REGINTAKE_ENV"),
				Usage:   "Deployment environment reported in logs",
			},
			&cli.StringFlag{
				Name:    "webhook-url",
				Sources: cli.EnvVars("REGINTAKE_WEBHOOK_URL"),
				Usage:   "Target URL for registration.accepted events (logged when empty)",
			},
			&cli.StringFlag{
				Name:    "webhook-secret",
				Sources: cli.EnvVars("REGINTAKE_WEBHOOK_SECRET"),
				Usage:   "HMAC-SHA256 signing secret for outbound webhook requests",
			},
			&cli.StringFlag{
				Name:    "smtp-host",
				Sources: cli.EnvVars("REGINTAKE_SMTP_HOST"),
				Usage:   "SMTP host for confirmation emails",
			},
			&cli.IntFlag{
				Name:    "smtp-port",
				Value:   587,
				Sources: cli.EnvVars("REGINTAKE_SMTP_PORT"),
				Usage:   "SMTP port",
			},
			&cli.StringFlag{
				Name:    "smtp-user",
				Sources: cli.EnvVars("REGINTAKE_SMTP_USER"),
				Usage:   "SMTP username",
			},
			&cli.StringFlag{
				Name:    "smtp-password",
				Sources: cli.EnvVars("REGINTAKE_SMTP_PASSWORD"),
				Usage:   "SMTP password",
			},
			&cli.StringFlag{
				Name:    "mail-from",
				Value:   "noreply@registration.com",
				Sources: cli.EnvVars("REGINTAKE_MAIL_FROM"),
				Usage:   "Sender address for confirmation emails",
			},
			&cli.BoolFlag{
				Name:    "send-confirmation",
				Sources: cli.EnvVars("REGINTAKE_SEND_CONFIRMATION"),
				Usage:   "Send a confirmation email after each accepted registration",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.NewLogger(logging.Config{
				ServiceName: "regintake",
				Environment: c.String("env"),
				Level:       c.String("log-level"),
			})
			slog.SetDefault(logger)

			cfg := app.Config{
				Addr:             c.String("addr"),
				AuditSink:        c.String("audit-sink"),
				AuditLogPath:     c.String("audit-log-path"),
				AuditMaxBytes:    c.Int64("audit-max-bytes"),
				DBPath:           c.String("db-path"),
				RateLimit:        c.Float64("rate-limit"),
				RateBurst:        c.Int("rate-burst"),
				TrustProxy:       c.Bool("trust-proxy"),
				WebhookURL:       c.String("webhook-url"),
				WebhookSecret:    c.String("webhook-secret"),
				SMTPHost:         c.String("smtp-host"),
				SMTPPort:         c.Int("smtp-port"),
				SMTPUser:         c.String("smtp-user"),
				SMTPPassword:     c.String("smtp-password"),
				MailFrom:         c.String("mail-from"),
				SendConfirmation: c.Bool("send-confirmation"),
				Logger:           logger,
			}

			server, closer, err := app.NewServer(ctx, cfg)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			defer func() {
				if closeErr := closer.Close(); closeErr != nil {
					logger.Error("close resources", "error", closeErr)
				}
			}()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.Addr, "audit_sink", cfg.AuditSink)
				errCh <- server.ListenAndServe()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			case sig := <-sigCh:
				logger.Info("received signal", "signal", sig.String())
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("regintake exited", "error", err)
		os.Exit(1)
	}
}
