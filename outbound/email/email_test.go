package email

import (
	"errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"
	"net/smtp"
	"testing"
	"time"
)

type EmailOutboundTestSuite struct {
	suite.Suite

	out  *EmailOutbound
	addr string
	from string
	to   []string
	msg  []byte
	err  error
}

func (s *EmailOutboundTestSuite) SetupTest() {
	cfg := viper.New()
	cfg.Set("email.user", "events@example.org")
	cfg.Set("email.from_name", "Student Association")
	cfg.Set("email.host", "smtp.example.org")
	cfg.Set("email.port", 587)

	s.err = nil
	s.out = &EmailOutbound{
		Cfg: cfg,
		SendMail: func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			s.addr, s.from, s.to, s.msg = addr, from, to, msg
			return s.err
		},
		Now: func() time.Time { return time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC) },
	}
	s.out.Init()
}

func TestEmailOutboundTestSuite(t *testing.T) {
	suite.Run(t, new(EmailOutboundTestSuite))
}

func (s *EmailOutboundTestSuite) TestSend() {
	err := s.out.Send([]string{"asha@example.com"}, "Registration Confirmed", "Amount Paid: ₹ 500.00")
	s.Require().NoError(err)

	s.Equal("smtp.example.org:587", s.addr)
	s.Equal("events@example.org", s.from)
	s.Equal([]string{"asha@example.com"}, s.to)

	msg := string(s.msg)
	s.Contains(msg, "From: Student Association <events@example.org>\r\n")
	s.Contains(msg, "To: asha@example.com\r\n")
	s.Contains(msg, "Subject: Registration Confirmed\r\n")
	s.Contains(msg, "Date: Sun, 01 Feb 2026 10:00:00 +0000\r\n")
	s.Contains(msg, "Content-Type: text/plain; charset=\"utf-8\"\r\n\r\nAmount Paid: ₹ 500.00")
}

func (s *EmailOutboundTestSuite) TestSendErrors() {
	s.Error(s.out.Send(nil, "subject", "body"))

	s.err = errors.New("connection refused")
	err := s.out.Send([]string{"asha@example.com"}, "subject", "body")
	s.ErrorIs(err, s.err)
}
