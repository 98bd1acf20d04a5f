package mail

import (
	"context"
	"fmt"

	"github.com/go-otp-auth/internal/config"
	gomail "github.com/wneessen/go-mail"
)

// Dispatcher delivers a message to an address. The auth engine treats
// delivery as fire-and-forget for state correctness: a failed send is an
// infrastructure error, never a state rollback.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPDispatcher sends mail through an SMTP relay.
type SMTPDispatcher struct {
	cfg *config.Config
}

func NewSMTPDispatcher(cfg *config.Config) (*SMTPDispatcher, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.SMTPFrom == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	return &SMTPDispatcher{cfg: cfg}, nil
}

func (d *SMTPDispatcher) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()

	if d.cfg.SMTPFromName != "" {
		if err := msg.FromFormat(d.cfg.SMTPFromName, d.cfg.SMTPFrom); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(d.cfg.SMTPFrom); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	opts := []gomail.Option{
		gomail.WithPort(d.cfg.SMTPPort),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if d.cfg.SMTPUsername != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(d.cfg.SMTPUsername),
			gomail.WithPassword(d.cfg.SMTPPassword),
		)
	}

	client, err := gomail.NewClient(d.cfg.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
