package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/siamcode/standupstrip-backend/pkg/config"
	"github.com/siamcode/standupstrip-backend/pkg/logger"
	"github.com/siamcode/standupstrip-backend/pkg/metrics"
)

// Pool delivers messages on a bounded set of workers. Enqueue never blocks
// the request path: when the queue is full the message is dropped and logged.
type Pool struct {
	sender  Sender
	logg    *logger.Logger
	email   *metrics.EmailMetrics
	queue   chan Message
	timeout time.Duration

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewPool starts cfg.Workers goroutines draining a queue of cfg.QueueSize.
func NewPool(cfg config.MailerConfig, sender Sender, logg *logger.Logger, email *metrics.EmailMetrics) *Pool {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize < 1 {
		queueSize = 1
	}

	p := &Pool{
		sender:  sender,
		logg:    logg,
		email:   email,
		queue:   make(chan Message, queueSize),
		timeout: 30 * time.Second,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Enqueue hands the message to a worker. It reports false when the queue is
// full; the message is not delivered in that case.
func (p *Pool) Enqueue(ctx context.Context, msg Message) bool {
	select {
	case p.queue <- msg:
		return true
	default:
		p.email.IncDropped(msg.Kind)
		p.logg.Warn(p.logg.WithField(ctx, "to", msg.To), "mail queue full, dropping message")
		return false
	}
}

// Close stops accepting work and waits for in-flight sends to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for msg := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.sender.Send(ctx, msg); err != nil {
			p.email.IncFailed(msg.Kind)
			p.logg.Error(p.logg.WithField(ctx, "to", msg.To), "async mail delivery failed", err)
		} else {
			p.email.IncSent(msg.Kind)
		}
		cancel()
	}
}
