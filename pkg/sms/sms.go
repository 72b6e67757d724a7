package sms

// Sender delivers one text message synchronously. Callers own retry policy.
type Sender interface {
	Send(to, body string) error
}
