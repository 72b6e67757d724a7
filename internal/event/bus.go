package event

import (
	"strings"
	"sync"
	"time"
)

const (
	EventResidentRegistered    = "resident.registered"
	EventVerificationRequested = "resident.verification.requested"
	EventSubmissionCreated     = "submission.created"
)

type ResidentRegisteredPayload struct {
	ResidentID string `json:"resident_id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	Phone      string `json:"phone"`
	Token      string `json:"token"`
}

type VerificationRequestedPayload struct {
	ResidentID string `json:"resident_id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	Token      string `json:"token"`
}

type SubmissionCreatedPayload struct {
	SubmissionID   string    `json:"submission_id"`
	ReferenceID    string    `json:"reference_id"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	SubmissionType string    `json:"submission_type"`
	SMSRequested   bool      `json:"sms_requested"`
	CreatedAt      time.Time `json:"created_at"`
}

// Bus is a minimal in-process pub/sub. Handlers run on their own goroutines
// so a slow subscriber never blocks the publisher; delivery is best-effort.
type Bus struct {
	handlers sync.Map
	mu       sync.Mutex
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(event string, handler func(payload any)) {
	if b == nil || handler == nil {
		return
	}

	eventName := strings.TrimSpace(event)
	if eventName == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := make([]func(payload any), 0, 1)
	if current, ok := b.handlers.Load(eventName); ok {
		if casted, valid := current.([]func(payload any)); valid {
			handlers = append(handlers, casted...)
		}
	}
	handlers = append(handlers, handler)
	b.handlers.Store(eventName, handlers)
}

func (b *Bus) Publish(event string, payload any) {
	if b == nil {
		return
	}

	eventName := strings.TrimSpace(event)
	if eventName == "" {
		return
	}

	current, ok := b.handlers.Load(eventName)
	if !ok {
		return
	}

	handlers, ok := current.([]func(payload any))
	if !ok || len(handlers) == 0 {
		return
	}

	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		go handler(payload)
	}
}
