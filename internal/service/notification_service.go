package service

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"
	"time"

	"go.uber.org/zap"

	"barangay-hub/internal/event"
	"barangay-hub/internal/metrics"
	"barangay-hub/pkg/mailer"
	"barangay-hub/pkg/sms"
	tplfs "barangay-hub/templates"
)

type EmailTemplate string

const (
	EmailVerify            EmailTemplate = "verify_email"
	EmailSubmissionReceipt EmailTemplate = "submission_receipt"
)

var emailTemplateFiles = map[EmailTemplate]string{
	EmailVerify:            "emails/verify_email.tmpl",
	EmailSubmissionReceipt: "emails/submission_receipt.tmpl",
}

// NotificationService listens on the event bus and fans registration and
// submission events out to email and SMS. Delivery is best-effort with a
// short retry ladder; a failed notification never fails the request that
// triggered it.
type NotificationService struct {
	mail      mailer.Mailer
	texter    sms.Sender
	verifyURL string
	logger    *zap.Logger

	templateMu sync.RWMutex
	templates  map[EmailTemplate]*template.Template

	retryDelays []time.Duration
	wg          sync.WaitGroup
}

func NewNotificationService(mail mailer.Mailer, texter sms.Sender, verifyURL string, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NotificationService{
		mail:        mail,
		texter:      texter,
		verifyURL:   verifyURL,
		logger:      logger,
		templates:   make(map[EmailTemplate]*template.Template),
		retryDelays: []time.Duration{0, 5 * time.Second, 15 * time.Second, 60 * time.Second},
	}
}

// SubscribeTo wires the service to the bus. Call once during startup.
func (s *NotificationService) SubscribeTo(bus *event.Bus) {
	bus.Subscribe(event.EventResidentRegistered, func(payload any) {
		if p, ok := payload.(event.ResidentRegisteredPayload); ok {
			s.sendVerificationEmail(p.Email, p.FirstName, p.Token)
			if p.Phone != "" && s.texter != nil {
				s.deliverSMS(p.Phone, fmt.Sprintf("Welcome to Barangay Hub, %s! Check your email to verify your account.", p.FirstName))
			}
		}
	})
	bus.Subscribe(event.EventVerificationRequested, func(payload any) {
		if p, ok := payload.(event.VerificationRequestedPayload); ok {
			s.sendVerificationEmail(p.Email, p.FirstName, p.Token)
		}
	})
	bus.Subscribe(event.EventSubmissionCreated, func(payload any) {
		if p, ok := payload.(event.SubmissionCreatedPayload); ok {
			s.sendSubmissionReceipt(p)
		}
	})
}

// Wait blocks until in-flight deliveries finish. Tests use it; the server
// calls it during shutdown with a bounded context upstream.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

func (s *NotificationService) sendVerificationEmail(email, firstName, token string) {
	body, err := s.renderTemplate(EmailVerify, map[string]string{
		"FirstName": firstName,
		"VerifyURL": fmt.Sprintf("%s?token=%s", s.verifyURL, token),
	})
	if err != nil {
		s.logger.Error("render verification email failed", zap.Error(err))
		return
	}

	s.deliverEmail(mailer.Message{
		To:      email,
		ToName:  firstName,
		Subject: "Verify your Barangay Hub account",
		HTML:    body,
	}, string(EmailVerify))
}

func (s *NotificationService) sendSubmissionReceipt(p event.SubmissionCreatedPayload) {
	if p.Email != "" {
		body, err := s.renderTemplate(EmailSubmissionReceipt, map[string]string{
			"SubmissionType": p.SubmissionType,
			"ReferenceID":    p.ReferenceID,
		})
		if err != nil {
			s.logger.Error("render submission receipt failed", zap.Error(err))
		} else {
			s.deliverEmail(mailer.Message{
				To:      p.Email,
				Subject: fmt.Sprintf("We received your %s (%s)", p.SubmissionType, p.ReferenceID),
				HTML:    body,
			}, string(EmailSubmissionReceipt))
		}
	}

	if p.SMSRequested && p.Phone != "" && s.texter != nil {
		text := fmt.Sprintf("Barangay Hub: your %s was received. Tracking no: %s.", p.SubmissionType, p.ReferenceID)
		s.deliverSMS(p.Phone, text)
	}
}

func (s *NotificationService) deliverEmail(msg mailer.Message, templateName string) {
	if s.mail == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		var sendErr error
		for i, delay := range s.retryDelays {
			if i > 0 {
				time.Sleep(delay)
			}
			sendErr = s.mail.Send(msg)
			if sendErr == nil {
				metrics.CountNotification("email", nil)
				return
			}
		}

		metrics.CountNotification("email", sendErr)
		s.logger.Error("send email notification failed",
			zap.String("template", templateName),
			zap.Error(sendErr),
		)
	}()
}

func (s *NotificationService) deliverSMS(phone, text string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		var sendErr error
		for i, delay := range s.retryDelays {
			if i > 0 {
				time.Sleep(delay)
			}
			sendErr = s.texter.Send(phone, text)
			if sendErr == nil {
				metrics.CountNotification("sms", nil)
				return
			}
		}

		metrics.CountNotification("sms", sendErr)
		s.logger.Error("send sms notification failed", zap.Error(sendErr))
	}()
}

func (s *NotificationService) renderTemplate(name EmailTemplate, vars map[string]string) (string, error) {
	tpl, err := s.loadTemplate(name)
	if err != nil {
		return "", err
	}

	buf := bytes.NewBuffer(nil)
	if err := tpl.Execute(buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *NotificationService) loadTemplate(name EmailTemplate) (*template.Template, error) {
	s.templateMu.RLock()
	if tpl, ok := s.templates[name]; ok {
		s.templateMu.RUnlock()
		return tpl, nil
	}
	s.templateMu.RUnlock()

	file, ok := emailTemplateFiles[name]
	if !ok {
		return nil, fmt.Errorf("email template not found: %s", name)
	}

	raw, err := tplfs.EmailTemplateFS.ReadFile(file)
	if err != nil {
		return nil, err
	}

	tpl, err := template.New(file).Parse(string(raw))
	if err != nil {
		return nil, err
	}

	s.templateMu.Lock()
	s.templates[name] = tpl
	s.templateMu.Unlock()
	return tpl, nil
}
