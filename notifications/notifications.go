package notifications

import (
	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"liskpool/config"
)

type Category int

const (
	STARTUP Category = iota + 1
	PAYOUTS
	STATE
)

const (
	TELEGRAM = "telegram"
)

type Notifier interface {
	IsEnabled() bool
	Send(string) error
}

type NotificationHandler struct {
	notifiers map[string]Notifier
}

// NewHandler builds a handler with every notifier present in the config.
// Notifiers that are configured but disabled are kept, and skipped on send.
func NewHandler(nc config.NotificationsConfig) (*NotificationHandler, error) {

	n := &NotificationHandler{
		notifiers: make(map[string]Notifier, 1),
	}

	if nc.Telegram.APIKey != "" {
		nt, err := NewTelegram(nc.Telegram)
		if err != nil {
			return n, errors.Wrap(err, "Unable to init telegram")
		}
		n.notifiers[TELEGRAM] = nt
	}

	return n, nil
}

// AddNotifier registers (or replaces) a notifier under name
func (n *NotificationHandler) AddNotifier(name string, notifier Notifier) {
	n.notifiers[name] = notifier
}

// SendNotification delivers message to every enabled notifier. Failures are
// logged and do not stop delivery to the others.
func (n *NotificationHandler) SendNotification(message string, category Category) {

	if n == nil {
		return
	}

	for name, notifier := range n.notifiers {

		if !notifier.IsEnabled() {
			continue
		}

		if err := notifier.Send(message); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"Notifier": name, "Category": category,
			}).Error("Unable to send notification")
		}
	}
}
