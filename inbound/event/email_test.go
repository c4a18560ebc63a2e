package event

import (
	"context"
	"encoding/json"
	"errors"
	"event-ticket/model"
	"github.com/stretchr/testify/suite"
	"testing"
	"time"
)

type fakeSender struct {
	to      []string
	subject string
	body    string
	calls   int
	err     error
}

func (f *fakeSender) Send(to []string, subject string, body string) error {
	f.calls++
	f.to, f.subject, f.body = to, subject, body
	return f.err
}

type EmailEventTestSuite struct {
	suite.Suite
	sender     *fakeSender
	emailEvent EmailEvent
}

func (s *EmailEventTestSuite) SetupTest() {
	s.sender = &fakeSender{}
	s.emailEvent = EmailEvent{EmailOutbound: s.sender, Timeout: 10 * time.Second}
}

func TestEmailEventTestSuite(t *testing.T) {
	suite.Run(t, new(EmailEventTestSuite))
}

func (s *EmailEventTestSuite) TestSendEmailHandler() {
	msg, err := json.Marshal(model.SendEmailEventMessage{To: "asha@example.com", Subject: "Hi", Body: "Body"})
	s.Require().NoError(err)

	s.Run("success", func() {
		s.NoError(s.emailEvent.SendEmailHandler(context.Background(), msg))
		s.Equal([]string{"asha@example.com"}, s.sender.to)
		s.Equal("Hi", s.sender.subject)
		s.Equal("Body", s.sender.body)
	})

	s.Run("send error is retried by the queue", func() {
		s.sender.err = errors.New("smtp down")
		s.Error(s.emailEvent.SendEmailHandler(context.Background(), msg))
		s.sender.err = nil
	})

	s.Run("malformed message is dropped", func() {
		calls := s.sender.calls
		s.NoError(s.emailEvent.SendEmailHandler(context.Background(), []byte(`{`)))
		s.Equal(calls, s.sender.calls)
	})

	s.Run("missing recipient is dropped", func() {
		calls := s.sender.calls
		s.NoError(s.emailEvent.SendEmailHandler(context.Background(), []byte(`{"subject":"Hi"}`)))
		s.Equal(calls, s.sender.calls)
	})
}
