package worker

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spec-kit/hr-service/internal/events"
)

// ErrNotificationQueueFull is returned to the dispatcher when an event is dropped.
var ErrNotificationQueueFull = errors.New("notification queue full")

// Notifier delivers the notifications of one event.
type Notifier interface {
	Events() []events.EventType
	Notify(ctx context.Context, event events.Event) error
}

// NotificationWorker moves notification delivery off the request path. Events are buffered
// and dropped, never blocked on, when the buffer is full.
type NotificationWorker struct {
	notifier Notifier
	queue    chan events.Event
	dropped  atomic.Int64
	logger   *zap.Logger
}

// NewNotificationWorker builds a worker with room for buffer pending events.
func NewNotificationWorker(notifier Notifier, buffer int, logger *zap.Logger) *NotificationWorker {
	if buffer <= 0 {
		buffer = 256
	}
	return &NotificationWorker{
		notifier: notifier,
		queue:    make(chan events.Event, buffer),
		logger:   logger.With(zap.String("component", "notification_worker")),
	}
}

// Subscribe registers the worker for every event type its notifier handles.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher) {
	for _, eventType := range w.notifier.Events() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
		return nil
	default:
		w.dropped.Add(1)
		return ErrNotificationQueueFull
	}
}

// Dropped returns how many events were discarded because the buffer was full.
func (w *NotificationWorker) Dropped() int64 {
	return w.dropped.Load()
}

// Run delivers queued events until ctx is done. Events still buffered at shutdown are
// delivered with a context that is no longer cancelled.
func (w *NotificationWorker) Run(ctx context.Context) {
	w.logger.Info("notification worker started", zap.Int("buffer", cap(w.queue)))
	for {
		select {
		case <-ctx.Done():
			w.drain(context.WithoutCancel(ctx))
			w.logger.Info("notification worker stopped", zap.Int64("dropped", w.Dropped()))
			return
		case event := <-w.queue:
			w.deliver(ctx, event)
		}
	}
}

func (w *NotificationWorker) drain(ctx context.Context) {
	for {
		select {
		case event := <-w.queue:
			w.deliver(ctx, event)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, event events.Event) {
	if err := w.notifier.Notify(ctx, event); err != nil {
		w.logger.Warn("notification failed",
			zap.String("event_type", string(event.Type)),
			zap.String("entity", event.Entity.String()),
			zap.Error(err))
	}
}
