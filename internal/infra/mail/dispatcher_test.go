package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"mime"
	netmail "net/mail"
	"net/smtp"
	"net/textproto"
	"testing"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type clientMock struct {
	mock.Mock
}

func (m *clientMock) Extension(ext string) (bool, string) {
	args := m.Called(ext)
	return args.Bool(0), args.String(1)
}

func (m *clientMock) StartTLS(cfg *tls.Config) error { return m.Called(cfg).Error(0) }
func (m *clientMock) Auth(a smtp.Auth) error         { return m.Called(a).Error(0) }
func (m *clientMock) Mail(from string) error         { return m.Called(from).Error(0) }
func (m *clientMock) Rcpt(to string) error           { return m.Called(to).Error(0) }
func (m *clientMock) Quit() error                    { return m.Called().Error(0) }
func (m *clientMock) Close() error                   { return m.Called().Error(0) }

func (m *clientMock) Data() (io.WriteCloser, error) {
	args := m.Called()
	w, _ := args.Get(0).(io.WriteCloser)
	return w, args.Error(1)
}

type bufferCloser struct {
	bytes.Buffer
}

func (b *bufferCloser) Close() error { return nil }

type emailConfigStub struct {
	row entity.EmailConfig
	err error
}

func (s emailConfigStub) Active(context.Context) (entity.EmailConfig, error) {
	return s.row, s.err
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type DispatcherSuite struct {
	suite.Suite
	client   *clientMock
	body     *bufferCloser
	dialAddr string
	dialErr  error
	fallback config.Mail
	log      *logrus.Logger
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.client = &clientMock{}
	s.body = &bufferCloser{}
	s.dialAddr = ""
	s.dialErr = nil
	s.fallback = config.Mail{
		SMTPServer: "smtp.example.com",
		SMTPPort:   587,
		User:       "helpdesk@example.com",
		Password:   "secret",
		FromName:   "Sistema Helpdesk Aurum",
		UseTLS:     false,
		Timeout:    5 * time.Second,
	}
	s.log = logrus.New()
	s.log.SetOutput(io.Discard)
}

func (s *DispatcherSuite) dispatcher(configs repository.EmailConfigRepository) *Dispatcher {
	dial := func(_ context.Context, addr, _ string, _ time.Duration) (Client, error) {
		s.dialAddr = addr
		if s.dialErr != nil {
			return nil, s.dialErr
		}
		return s.client, nil
	}
	fixed := func() time.Time { return time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC) }
	return NewDispatcher(configs, s.fallback, s.log, WithDialer(dial), WithClock(fixed))
}

func (s *DispatcherSuite) expectHappyPath(rcpts ...string) {
	s.client.On("Extension", "STARTTLS").Return(false, "").Maybe()
	s.client.On("Auth", mock.Anything).Return(nil)
	s.client.On("Mail", s.fallback.User).Return(nil)
	for _, r := range rcpts {
		s.client.On("Rcpt", r).Return(nil)
	}
	s.client.On("Data").Return(s.body, nil)
	s.client.On("Quit").Return(nil)
	s.client.On("Close").Return(nil)
}

func (s *DispatcherSuite) TestSendSuccess() {
	s.expectHappyPath("a@example.com", "b@example.com")

	ok := s.dispatcher(nil).Send(context.Background(), []string{"a@example.com", "b@example.com"}, "Olá", "<p>Oi <b>você</b></p>", "")

	s.True(ok)
	s.Equal("smtp.example.com:587", s.dialAddr)
	s.client.AssertExpectations(s.T())

	msg, err := netmail.ReadMessage(bytes.NewReader(s.body.Bytes()))
	s.Require().NoError(err)
	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	s.Require().NoError(err)
	s.Equal("Olá", subject)
	s.Contains(msg.Header.Get("Content-Type"), "multipart/alternative")
	s.Contains(msg.Header.Get("From"), "helpdesk@example.com")
	s.Contains(s.body.String(), "text/plain")
	s.Contains(s.body.String(), "text/html")
}

func (s *DispatcherSuite) TestActiveConfigRowWins() {
	s.fallback.User = ""
	row := entity.EmailConfig{
		SMTPServer:    "mail.internal",
		SMTPPort:      2525,
		EmailUser:     "row@example.com",
		EmailPassword: "pw",
		IsActive:      true,
	}
	s.client.On("Auth", mock.Anything).Return(nil)
	s.client.On("Mail", "row@example.com").Return(nil)
	s.client.On("Rcpt", "a@example.com").Return(nil)
	s.client.On("Data").Return(s.body, nil)
	s.client.On("Quit").Return(nil)
	s.client.On("Close").Return(nil)

	ok := s.dispatcher(emailConfigStub{row: row}).Send(context.Background(), []string{"a@example.com"}, "x", "<p>x</p>", "x")

	s.True(ok)
	s.Equal("mail.internal:2525", s.dialAddr)
}

func (s *DispatcherSuite) TestMissingCredentialsSkipsDial() {
	s.fallback.Password = ""

	ok := s.dispatcher(emailConfigStub{err: repository.ErrNotFound}).Send(context.Background(), []string{"a@example.com"}, "x", "<p>x</p>", "")

	s.False(ok)
	s.Empty(s.dialAddr)
}

func (s *DispatcherSuite) TestAuthFailureClosesClient() {
	s.client.On("Auth", mock.Anything).Return(&textproto.Error{Code: 535, Msg: "bad credentials"})
	s.client.On("Close").Return(nil)

	ok := s.dispatcher(nil).Send(context.Background(), []string{"a@example.com"}, "x", "<p>x</p>", "")

	s.False(ok)
	s.client.AssertCalled(s.T(), "Close")
	s.client.AssertNotCalled(s.T(), "Mail", mock.Anything)
}

func (s *DispatcherSuite) TestRecipientRefused() {
	s.client.On("Auth", mock.Anything).Return(nil)
	s.client.On("Mail", mock.Anything).Return(nil)
	s.client.On("Rcpt", "nobody@example.com").Return(&textproto.Error{Code: 550, Msg: "no such user"})
	s.client.On("Close").Return(nil)

	ok := s.dispatcher(nil).Send(context.Background(), []string{"nobody@example.com"}, "x", "<p>x</p>", "")

	s.False(ok)
	s.client.AssertNotCalled(s.T(), "Data")
}

func (s *DispatcherSuite) TestDialFailure() {
	s.dialErr = errors.New("connection refused")

	ok := s.dispatcher(nil).Send(context.Background(), []string{"a@example.com"}, "x", "<p>x</p>", "")

	s.False(ok)
}

func (s *DispatcherSuite) TestTLSRequiredWithoutStartTLS() {
	s.fallback.UseTLS = true
	s.client.On("Extension", "STARTTLS").Return(false, "")
	s.client.On("Close").Return(nil)

	ok := s.dispatcher(nil).Send(context.Background(), []string{"a@example.com"}, "x", "<p>x</p>", "")

	s.False(ok)
	s.client.AssertNotCalled(s.T(), "StartTLS", mock.Anything)
	s.client.AssertNotCalled(s.T(), "Auth", mock.Anything)
	s.client.AssertCalled(s.T(), "Close")
}

func (s *DispatcherSuite) TestTLSUpgradeBeforeAuth() {
	s.fallback.UseTLS = true
	s.client.On("Extension", "STARTTLS").Return(true, "")
	s.client.On("StartTLS", mock.MatchedBy(func(cfg *tls.Config) bool {
		return cfg.ServerName == "smtp.example.com"
	})).Return(nil).Once()
	s.expectHappyPath("a@example.com")

	ok := s.dispatcher(nil).Send(context.Background(), []string{"a@example.com"}, "x", "<p>x</p>", "")

	s.True(ok)
	s.client.AssertExpectations(s.T())
}

func (s *DispatcherSuite) TestTicketMailerSubjects() {
	s.expectHappyPath("tech@example.com")
	mailer := NewTicketMailer(s.dispatcher(nil))
	ticket := entity.Ticket{
		ID:        12,
		Title:     "Impressora",
		Priority:  entity.PriorityHigh,
		Status:    entity.StatusOpen,
		CreatedAt: time.Date(2026, 5, 10, 13, 30, 0, 0, time.UTC),
	}

	ok := mailer.TicketAssignedToTechnician(context.Background(), ticket,
		entity.User{Name: "Tec", Email: "tech@example.com"},
		entity.User{Name: "Cliente", Email: "c@example.com"}, nil)

	s.True(ok)
	msg, err := netmail.ReadMessage(bytes.NewReader(s.body.Bytes()))
	s.Require().NoError(err)
	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	s.Require().NoError(err)
	s.Equal("Chamado #12 Atribuído a Você", subject)
}

func (s *DispatcherSuite) TestStaffMailWithoutEmailsFails() {
	mailer := NewTicketMailer(s.dispatcher(nil))

	ok := mailer.TicketCreatedToStaff(context.Background(), entity.Ticket{ID: 1}, entity.User{}, nil, []entity.User{{Name: "no email"}})

	s.False(ok)
	s.Empty(s.dialAddr)
}

func TestClassify(t *testing.T) {
	cases := map[string]error{
		resultTimeout:    &stageError{"dial", timeoutErr{}},
		resultConnect:    &stageError{"dial", errors.New("refused")},
		resultAuth:       &stageError{"mail", &textproto.Error{Code: 534}},
		resultRecipient:  &stageError{"rcpt", &textproto.Error{Code: 550}},
		resultDisconnect: &stageError{"data", io.EOF},
		resultUnexpected: &stageError{"data", errors.New("boom")},
		resultTLS:        &stageError{"starttls", ErrStartTLSUnsupported},
	}
	for want, err := range cases {
		if got := classify(err); got != want {
			t.Errorf("classify(%v) = %s, want %s", err, got, want)
		}
	}
}

func TestTicketView(t *testing.T) {
	d := NewDispatcher(nil, config.Mail{}, logrus.New(), WithClock(func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	}))
	m := NewTicketMailer(d)
	view := m.view(entity.Ticket{
		Priority:  entity.PriorityMedium,
		Status:    entity.StatusInProgress,
		CreatedAt: time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC),
	}, entity.User{Name: "Ana"}, nil)

	if view.OpenedAt != "02/01/2026 às 09:00" {
		t.Errorf("OpenedAt = %q", view.OpenedAt)
	}
	if view.SentAt != "02/01/2026 às 00:04" {
		t.Errorf("SentAt = %q", view.SentAt)
	}
	if view.StatusLabel != "Em Andamento" || view.PriorityUpper != "MEDIA" || view.Company != "N/A" {
		t.Errorf("unexpected view %+v", view)
	}
}

func TestPlainFromHTML(t *testing.T) {
	got := plainFromHTML("<html><style>p{}</style><p>Olá &amp; bem-vindo</p><br/><div>  linha   dois </div></html>")
	want := "Olá & bem-vindo\n\nlinha dois"
	if got != want {
		t.Errorf("plainFromHTML = %q, want %q", got, want)
	}
}
