package mail

import (
	"sync"

	"citywatch/internal/domain/service"
	"citywatch/pkg/logger"
)

type message struct {
	to      string
	subject string
	body    string
}

// Dispatcher hands mail off to a background worker so workflows never wait on
// the mail server. No retry: a failed or dropped send is logged and forgotten.
type Dispatcher struct {
	mailer Mailer
	queue  chan message
	wg     sync.WaitGroup
	once   sync.Once
}

func NewDispatcher(mailer Mailer, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Dispatcher{
		mailer: mailer,
		queue:  make(chan message, queueSize),
	}
}

var _ service.Notifier = (*Dispatcher)(nil)

func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for msg := range d.queue {
			if err := d.mailer.SendMail(msg.to, msg.subject, msg.body); err != nil {
				logger.Error("Failed to send mail to %s: %v", msg.to, err)
			} else {
				logger.Debug("Mail sent to %s: %s", msg.to, msg.subject)
			}
		}
	}()
}

// Send enqueues without blocking; when the queue is full the notification is dropped.
func (d *Dispatcher) Send(to, subject, body string) {
	select {
	case d.queue <- message{to: to, subject: subject, body: body}:
	default:
		logger.Warn("Mail queue full, dropping notification to %s", to)
	}
}

// Stop drains the queue and waits for the worker to finish.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
