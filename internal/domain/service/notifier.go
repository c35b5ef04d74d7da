package service

// Notifier delivers transactional email. Send never blocks the caller and never
// reports failure upward; delivery problems are logged by the implementation.
type Notifier interface {
	Send(to, subject, body string)
}
