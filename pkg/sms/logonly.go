package sms

import (
	"sync"

	"go.uber.org/zap"
)

type LoggedMessage struct {
	To   string
	Body string
}

// LogSender records messages instead of sending them. The development
// provider, and the fake used in tests.
type LogSender struct {
	logger *zap.Logger

	mu   sync.Mutex
	sent []LoggedMessage
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

var _ Sender = (*LogSender)(nil)

func (s *LogSender) Send(to, body string) error {
	s.mu.Lock()
	s.sent = append(s.sent, LoggedMessage{To: to, Body: body})
	s.mu.Unlock()

	s.logger.Info("sms (log provider)", zap.String("to", to))
	return nil
}

func (s *LogSender) Sent() []LoggedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LoggedMessage, len(s.sent))
	copy(out, s.sent)
	return out
}
