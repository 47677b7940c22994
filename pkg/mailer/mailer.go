package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/vrisetechno/vrise-api/config"
	"github.com/vrisetechno/vrise-api/pkg/circuitbreaker"
	"github.com/vrisetechno/vrise-api/pkg/logger"
	"github.com/vrisetechno/vrise-api/pkg/metrics"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Attachment is a binary MIME part
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a single HTML email
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers one message
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Transport is a resolved SMTP endpoint
type Transport struct {
	Host        string
	Port        int
	ImplicitTLS bool
}

var knownServices = map[string]Transport{
	"gmail":   {Host: "smtp.gmail.com", Port: 465, ImplicitTLS: true},
	"outlook": {Host: "smtp-mail.outlook.com", Port: 587},
	"hotmail": {Host: "smtp-mail.outlook.com", Port: 587},
	"yahoo":   {Host: "smtp.mail.yahoo.com", Port: 465, ImplicitTLS: true},
}

// ResolveTransport picks the SMTP endpoint. An explicit host wins over a service name.
func ResolveTransport(cfg config.EmailConfig) (Transport, error) {
	if cfg.Host != "" {
		port := cfg.Port
		if port == 0 {
			port = 587
		}
		return Transport{Host: cfg.Host, Port: port, ImplicitTLS: port == 465}, nil
	}

	transport, ok := knownServices[strings.ToLower(cfg.Service)]
	if !ok {
		return Transport{}, fmt.Errorf("unknown email service %q", cfg.Service)
	}
	if cfg.Port != 0 {
		transport.Port = cfg.Port
		transport.ImplicitTLS = cfg.Port == 465
	}
	return transport, nil
}

type smtpClient interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPSender sends mail through an authenticated SMTP relay
type SMTPSender struct {
	client  smtpClient
	from    string
	breaker *gobreaker.CircuitBreaker
}

// NewSMTPSender builds a sender for the configured relay
func NewSMTPSender(cfg config.EmailConfig) (*SMTPSender, error) {
	transport, err := ResolveTransport(cfg)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	// The TLS options rewrite the default port, so the configured port goes last
	var opts []mail.Option
	if transport.ImplicitTLS {
		opts = append(opts, mail.WithSSLPort(false))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}
	opts = append(opts,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(timeout),
		mail.WithPort(transport.Port),
	)

	client, err := mail.NewClient(transport.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	logger.Info("SMTP sender initialized",
		zap.String("host", transport.Host),
		zap.Int("port", transport.Port),
		zap.Bool("implicit_tls", transport.ImplicitTLS))

	return newSMTPSender(client, cfg.From), nil
}

func newSMTPSender(client smtpClient, from string) *SMTPSender {
	breakerCfg := circuitbreaker.DefaultConfig("smtp")
	breakerCfg.IsSuccessful = func(err error) bool {
		return err == nil || isRecipientRejection(err)
	}

	return &SMTPSender{
		client:  client,
		from:    from,
		breaker: circuitbreaker.NewCircuitBreaker(breakerCfg),
	}
}

// isRecipientRejection reports a permanent RCPT TO refusal of the submitted address
func isRecipientRejection(err error) bool {
	var sendErr *mail.SendError
	return errors.As(err, &sendErr) && sendErr.Reason == mail.ErrSMTPRcptTo && !sendErr.IsTemp()
}

// Send builds the MIME message and hands it to the relay
func (s *SMTPSender) Send(ctx context.Context, message *Message) error {
	msg, err := s.build(message)
	if err != nil {
		return err
	}

	start := time.Now()
	err = circuitbreaker.Run(s.breaker, func() error {
		return s.client.DialAndSendWithContext(ctx, msg)
	})
	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.EmailSendDuration.WithLabelValues("error").Observe(duration)
		logger.LogAPICall("smtp", "send", "error", duration, zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	metrics.EmailSendDuration.WithLabelValues("success").Observe(duration)
	logger.LogAPICall("smtp", "send", "success", duration,
		zap.Int("attachments", len(message.Attachments)))
	return nil
}

func (s *SMTPSender) build(message *Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(message.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(message.Subject)
	msg.SetBodyString(mail.TypeTextHTML, message.HTML)

	for _, attachment := range message.Attachments {
		contentType := attachment.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := msg.AttachReader(attachment.Filename, bytes.NewReader(attachment.Data),
			mail.WithFileContentType(mail.ContentType(contentType))); err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", attachment.Filename, err)
		}
	}

	return msg, nil
}
