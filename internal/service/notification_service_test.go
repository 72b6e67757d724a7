package service

import (
	"strings"
	"sync"
	"testing"
	"time"

	"barangay-hub/pkg/mailer"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *captureMailer) Send(msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

func TestRenderTemplate_EscapesHTMLInNames(t *testing.T) {
	t.Parallel()

	svc := NewNotificationService(&captureMailer{}, nil, "https://hub.example.com/residents/verify", nil)

	body, err := svc.renderTemplate(EmailVerify, map[string]string{
		"FirstName": `<script>alert("x")</script>`,
		"VerifyURL": "https://hub.example.com/residents/verify?token=abc",
	})
	if err != nil {
		t.Fatalf("renderTemplate returned error: %v", err)
	}

	if strings.Contains(body, "<script>") {
		t.Fatalf("rendered email contains unescaped markup: %s", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Fatalf("expected escaped name in body: %s", body)
	}
	if !strings.Contains(body, "token=abc") {
		t.Fatalf("expected verification link in body: %s", body)
	}
}

func TestSendVerificationEmail_DeliversOnce(t *testing.T) {
	t.Parallel()

	mail := &captureMailer{}
	svc := NewNotificationService(mail, nil, "https://hub.example.com/residents/verify", nil)
	svc.retryDelays = []time.Duration{0}

	svc.sendVerificationEmail("maria@example.com", "Maria", "tok123")
	svc.Wait()

	sent := mail.messages()
	if len(sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sent))
	}
	if sent[0].To != "maria@example.com" {
		t.Fatalf("expected recipient maria@example.com, got %s", sent[0].To)
	}
	if !strings.Contains(sent[0].HTML, "token=tok123") {
		t.Fatalf("expected verify link in body: %s", sent[0].HTML)
	}
}
