package mailer

import "errors"

type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers one message synchronously. Callers own retry policy.
type Mailer interface {
	Send(msg Message) error
}

var ErrInvalidMessage = errors.New("mail message is missing recipient or content")

func (m Message) validate() error {
	if m.To == "" || m.Subject == "" || (m.HTML == "" && m.Text == "") {
		return ErrInvalidMessage
	}
	return nil
}
