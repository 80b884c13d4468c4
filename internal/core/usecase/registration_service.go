package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/atvirokodosprendimai/regintake/internal/core/domain"
	"github.com/atvirokodosprendimai/regintake/internal/core/ports"
	"github.com/atvirokodosprendimai/regintake/internal/observability/requestctx"
)

// RegistrationService validates a submitted registration form and records
// accepted submissions in the audit log.
type RegistrationService struct {
	audit     ports.AuditLogStore
	publisher ports.EventPublisher
	mailer    ports.ConfirmationSender
	clock     func() time.Time
	logger    *slog.Logger
	checks    []check
}

type Option func(*RegistrationService)

// WithClock overrides the time source used for age checks and timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *RegistrationService) { s.clock = clock }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *RegistrationService) { s.logger = logger }
}

// WithPublisher announces accepted registrations as registration.accepted events.
func WithPublisher(publisher ports.EventPublisher) Option {
	return func(s *RegistrationService) { s.publisher = publisher }
}

// WithConfirmationSender enables confirmation emails. Without it none are sent.
func WithConfirmationSender(mailer ports.ConfirmationSender) Option {
	return func(s *RegistrationService) { s.mailer = mailer }
}

func NewRegistrationService(audit ports.AuditLogStore, opts ...Option) *RegistrationService {
	s := &RegistrationService{
		audit:  audit,
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.checks = []check{
		checkRequired,
		checkEmail,
		checkPhone,
		checkDateOfBirth,
		ageCheck(s.clock),
		checkNames,
	}
	return s
}

// Handle runs the intake pipeline for one submission. Checks run in a fixed
// order and the first failure is returned as a *domain.ValidationError together
// with the matching failure Result. Audit, event and email side effects are best
// effort and never change the outcome.
func (s *RegistrationService) Handle(ctx context.Context, form domain.RawForm, method string) (domain.Result, error) {
	if method != http.MethodPost {
		return s.reject(ctx, domain.NewValidationError(domain.KindInvalidMethod, "", reasonInvalidMethod))
	}

	sub := &submission{reg: domain.NewRegistration(form)}
	for _, c := range s.checks {
		if err := c(sub); err != nil {
			return s.reject(ctx, err)
		}
	}

	at := s.clock()
	s.appendAudit(ctx, domain.NewAuditRecord(sub.reg, at))
	// Accepted registrations are not persisted anywhere else; a database insert
	// of sub.reg would go here.
	s.publishAccepted(ctx, sub.reg, at)
	s.sendConfirmation(ctx, sub.reg)

	return domain.Succeeded(), nil
}

func (s *RegistrationService) reject(ctx context.Context, err error) (domain.Result, error) {
	attrs := []any{"request_id", requestctx.RequestID(ctx), "kind", domain.KindOf(err), "reason", err.Error()}
	if verr, ok := err.(*domain.ValidationError); ok && len(verr.Details) > 0 {
		attrs = append(attrs, "field", verr.Field, "details", verr.Details)
	}
	s.logger.InfoContext(ctx, "registration rejected", attrs...)
	return domain.Failed(err), err
}

func (s *RegistrationService) appendAudit(ctx context.Context, record domain.AuditRecord) {
	if err := s.audit.Append(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "audit log append failed", "request_id", requestctx.RequestID(ctx), "error", err)
	}
}

func (s *RegistrationService) publishAccepted(ctx context.Context, reg domain.Registration, at time.Time) {
	if s.publisher == nil {
		return
	}
	event, err := newRegistrationEvent(reg, requestctx.RequestID(ctx), at)
	if err == nil {
		err = s.publisher.Publish(ctx, domain.RegistrationTopic, event)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "publish registration event failed", "request_id", requestctx.RequestID(ctx), "error", err)
	}
}

func (s *RegistrationService) sendConfirmation(ctx context.Context, reg domain.Registration) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.SendConfirmation(ctx, reg.Email, domain.Unescape(reg.FullName())); err != nil {
		s.logger.WarnContext(ctx, "send confirmation failed", "request_id", requestctx.RequestID(ctx), "error", err)
	}
}
