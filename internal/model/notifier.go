package model

// Notifier delivers out-of-band notifications for high-severity alerts.
type Notifier interface {
	Send(subject, body string) error
}
