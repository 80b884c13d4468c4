package mail

import (
	"context"
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

const (
	DefaultFrom         = "noreply@registration.com"
	confirmationSubject = "Registration Confirmation"
)

var ErrNoHost = errors.New("smtp host is required")

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// ConfirmationMailer sends the plain-text registration confirmation over SMTP.
type ConfirmationMailer struct {
	client *gomail.Client
	from   string
}

func NewConfirmationMailer(cfg Config) (*ConfirmationMailer, error) {
	if cfg.Host == "" {
		return nil, ErrNoHost
	}
	opts := []gomail.Option{gomail.WithTLSPortPolicy(gomail.TLSOpportunistic)}
	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = DefaultFrom
	}
	return &ConfirmationMailer{client: client, from: from}, nil
}

// Compose builds the confirmation message without sending it.
func (m *ConfirmationMailer) Compose(to, name string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set to: %w", err)
	}
	msg.Subject(confirmationSubject)
	msg.SetBodyString(gomail.TypeTextPlain, confirmationBody(name))
	return msg, nil
}

func (m *ConfirmationMailer) SendConfirmation(ctx context.Context, to, name string) error {
	msg, err := m.Compose(to, name)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	return nil
}

func confirmationBody(name string) string {
	return "Hello " + name + ",\n\n" +
		"Thank you for registering with us!\n\n" +
		"We have received your registration and will process it shortly.\n\n" +
		"Best regards,\n" +
		"Registration Team"
}
