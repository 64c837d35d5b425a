// Package notify delivers best-effort push notifications. Delivery failures
// are the caller's to ignore; nothing here retries.
package notify

import "github.com/gregdel/pushover"

// Notifier sends a short message to the homeowner.
type Notifier interface {
	Send(message, title string) error
}

// PushoverNotifier sends via the Pushover service. With empty credentials it
// degrades to a silent no-op, mirroring an unconfigured installation.
type PushoverNotifier struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
}

func NewPushoverNotifier(apiToken, userKey string) *PushoverNotifier {
	n := &PushoverNotifier{}
	if apiToken != "" && userKey != "" {
		n.app = pushover.New(apiToken)
		n.recipient = pushover.NewRecipient(userKey)
	}
	return n
}

var _ Notifier = (*PushoverNotifier)(nil)

func (n *PushoverNotifier) Send(message, title string) error {
	if n.app == nil {
		return nil
	}
	msg := pushover.NewMessageWithTitle(message, title)
	_, err := n.app.SendMessage(msg, n.recipient)
	return err
}
