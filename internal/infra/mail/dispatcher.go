package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/infra/metrics"
	"github.com/sirupsen/logrus"
)

// Client is the subset of *smtp.Client the dispatcher drives.
type Client interface {
	Extension(ext string) (bool, string)
	StartTLS(cfg *tls.Config) error
	Auth(a smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// DialFunc opens an SMTP session to addr. The returned client must already
// carry the connection deadline.
type DialFunc func(ctx context.Context, addr, host string, timeout time.Duration) (Client, error)

// Settings is the resolved SMTP configuration for one send.
type Settings struct {
	Server   string
	Port     int
	User     string
	Password string
	FromName string
	UseTLS   bool
	Timeout  time.Duration
}

const (
	resultSent       = "sent"
	resultConfig     = "config"
	resultTimeout    = "timeout"
	resultConnect    = "connect"
	resultAuth       = "auth"
	resultRecipient  = "recipient_refused"
	resultDisconnect = "disconnected"
	resultTLS        = "tls_unsupported"
	resultUnexpected = "unexpected"
)

type Dispatcher struct {
	configs  repository.EmailConfigRepository
	fallback config.Mail
	dial     DialFunc
	log      *logrus.Logger
	now      func() time.Time
}

type Option func(*Dispatcher)

func WithDialer(dial DialFunc) Option {
	return func(d *Dispatcher) { d.dial = dial }
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher reads the active email config row on every send and falls
// back to the static settings. configs may be nil.
func NewDispatcher(configs repository.EmailConfigRepository, fallback config.Mail, log *logrus.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		configs:  configs,
		fallback: fallback,
		dial:     dialSMTP,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send delivers one message and reports whether the server accepted it.
// Failures are logged and never returned.
func (d *Dispatcher) Send(ctx context.Context, to []string, subject, html, plain string) bool {
	return d.send(ctx, "custom", to, subject, html, plain)
}

func (d *Dispatcher) send(ctx context.Context, template string, to []string, subject, html, plain string) bool {
	settings := d.settings(ctx)
	entry := d.log.WithFields(logrus.Fields{
		"template":   template,
		"smtp":       net.JoinHostPort(settings.Server, strconv.Itoa(settings.Port)),
		"tls":        settings.UseTLS,
		"recipients": len(to),
	})

	if settings.User == "" || settings.Password == "" {
		entry.Error("mail: credentials not configured")
		metrics.Emails.WithLabelValues(template, resultConfig).Inc()
		return false
	}
	if len(to) == 0 {
		entry.Error("mail: no recipients")
		metrics.Emails.WithLabelValues(template, resultConfig).Inc()
		return false
	}

	msg, err := buildMessage(settings, to, subject, html, plain, d.now())
	if err != nil {
		entry.WithError(err).Error("mail: build message failed")
		metrics.Emails.WithLabelValues(template, resultUnexpected).Inc()
		return false
	}

	if err := d.deliver(ctx, settings, to, msg); err != nil {
		result := classify(err)
		entry.WithError(err).Error(failureMessage(result, settings.Timeout))
		metrics.Emails.WithLabelValues(template, result).Inc()
		return false
	}

	entry.Info("mail: sent")
	metrics.Emails.WithLabelValues(template, resultSent).Inc()
	return true
}

func (d *Dispatcher) settings(ctx context.Context) Settings {
	s := Settings{
		Server:   d.fallback.SMTPServer,
		Port:     d.fallback.SMTPPort,
		User:     d.fallback.User,
		Password: d.fallback.Password,
		FromName: d.fallback.FromName,
		UseTLS:   d.fallback.UseTLS,
		Timeout:  d.fallback.Timeout,
	}
	if d.configs == nil {
		return s
	}
	row, err := d.configs.Active(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			d.log.WithError(err).Warn("mail: load email config failed, using defaults")
		}
		return s
	}
	s.Server = row.SMTPServer
	s.Port = row.SMTPPort
	s.User = row.EmailUser
	s.Password = row.EmailPassword
	s.UseTLS = row.UseTLS
	if row.FromName != "" {
		s.FromName = row.FromName
	}
	return s
}

// ErrStartTLSUnsupported stops a send configured for TLS before the
// credentials go out in plaintext.
var ErrStartTLSUnsupported = errors.New("smtp server does not advertise STARTTLS")

type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func (d *Dispatcher) deliver(ctx context.Context, s Settings, to []string, msg []byte) error {
	addr := net.JoinHostPort(s.Server, strconv.Itoa(s.Port))
	client, err := d.dial(ctx, addr, s.Server, s.Timeout)
	if err != nil {
		return &stageError{"dial", err}
	}
	defer func() { _ = client.Close() }()

	if s.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return &stageError{"starttls", ErrStartTLSUnsupported}
		}
		if err := client.StartTLS(&tls.Config{ServerName: s.Server}); err != nil {
			return &stageError{"starttls", err}
		}
	}
	if err := client.Auth(smtp.PlainAuth("", s.User, s.Password, s.Server)); err != nil {
		return &stageError{"auth", err}
	}
	if err := client.Mail(s.User); err != nil {
		return &stageError{"mail", err}
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return &stageError{"rcpt", err}
		}
	}
	w, err := client.Data()
	if err != nil {
		return &stageError{"data", err}
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return &stageError{"data", err}
	}
	if err := w.Close(); err != nil {
		return &stageError{"data", err}
	}
	if err := client.Quit(); err != nil {
		d.log.WithError(err).Debug("mail: quit after delivery failed")
	}
	return nil
}

func classify(err error) string {
	if errors.Is(err, ErrStartTLSUnsupported) {
		return resultTLS
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return resultTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return resultTimeout
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return resultDisconnect
	}
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) && (protoErr.Code == 534 || protoErr.Code == 535) {
		return resultAuth
	}
	var se *stageError
	if errors.As(err, &se) {
		switch se.stage {
		case "dial":
			return resultConnect
		case "auth":
			return resultAuth
		case "rcpt":
			return resultRecipient
		}
	}
	return resultUnexpected
}

func failureMessage(result string, timeout time.Duration) string {
	switch result {
	case resultTimeout:
		return "mail: smtp timeout after " + timeout.String()
	case resultConnect:
		return "mail: smtp connect error, check server and port"
	case resultAuth:
		return "mail: smtp authentication error, use an app password for gmail"
	case resultRecipient:
		return "mail: recipient refused"
	case resultDisconnect:
		return "mail: server disconnected"
	case resultTLS:
		return "mail: tls required but server does not support STARTTLS"
	}
	return "mail: unexpected error"
}

func dialSMTP(ctx context.Context, addr, host string, timeout time.Duration) (Client, error) {
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(timeout))
	}
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}
