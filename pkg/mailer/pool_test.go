package mailer

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/siamcode/standupstrip-backend/pkg/config"
	"github.com/siamcode/standupstrip-backend/pkg/logger"
	"github.com/siamcode/standupstrip-backend/pkg/metrics"
)

type stubSender struct {
	mu    sync.Mutex
	sent  []Message
	err   error
	block chan struct{}
}

func (s *stubSender) Send(_ context.Context, msg Message) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *stubSender) sentMessages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestPoolDeliversEnqueuedMessages(t *testing.T) {
	sender := &stubSender{}
	pool := NewPool(config.MailerConfig{Workers: 2, QueueSize: 8}, sender, testLogger(), metrics.NewEmailMetrics(nil))

	for i := 0; i < 5; i++ {
		if !pool.Enqueue(context.Background(), Message{To: "member@example.com", Subject: "invite", Kind: "invitation"}) {
			t.Fatalf("enqueue %d rejected", i)
		}
	}
	pool.Close()

	if got := len(sender.sentMessages()); got != 5 {
		t.Fatalf("expected 5 deliveries, got %d", got)
	}
}

func TestPoolDropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	sender := &stubSender{block: block}
	pool := NewPool(config.MailerConfig{Workers: 1, QueueSize: 1}, sender, testLogger(), metrics.NewEmailMetrics(nil))

	// First message occupies the worker, second fills the queue. Give the
	// worker a moment to pick up the first one.
	if !pool.Enqueue(context.Background(), Message{To: "a@example.com", Kind: "invitation"}) {
		t.Fatal("first enqueue rejected")
	}
	deadline := time.After(time.Second)
	for len(pool.queue) != 0 {
		select {
		case <-deadline:
			t.Fatal("worker never picked up first message")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if !pool.Enqueue(context.Background(), Message{To: "b@example.com", Kind: "invitation"}) {
		t.Fatal("second enqueue rejected")
	}
	if pool.Enqueue(context.Background(), Message{To: "c@example.com", Kind: "invitation"}) {
		t.Fatal("expected enqueue to reject when queue is full")
	}

	close(block)
	pool.Close()

	if got := len(sender.sentMessages()); got != 2 {
		t.Fatalf("expected 2 deliveries, got %d", got)
	}
}

func TestPoolKeepsDrainingAfterSendFailure(t *testing.T) {
	sender := &stubSender{err: errors.New("smtp down")}
	pool := NewPool(config.MailerConfig{Workers: 1, QueueSize: 4}, sender, testLogger(), metrics.NewEmailMetrics(nil))

	pool.Enqueue(context.Background(), Message{To: "a@example.com", Kind: "invitation"})
	pool.Enqueue(context.Background(), Message{To: "b@example.com", Kind: "invitation"})
	pool.Close()

	if got := len(sender.sentMessages()); got != 2 {
		t.Fatalf("expected both messages attempted, got %d", got)
	}
}
