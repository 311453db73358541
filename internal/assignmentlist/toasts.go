package assignmentlist

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// ToastKind classifies a notification.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a transient, non-blocking notification.
type Toast struct {
	Kind    ToastKind
	Message string
}

// Notifier receives the notifications raised by a view.
type Notifier interface {
	Notify(Toast)
}

const maxQueuedToasts = 20

// Toasts is a Notifier that queues sanitized messages until the renderer drains them.
type Toasts struct {
	mu     sync.Mutex
	queue  []Toast
	policy *bluemonday.Policy
	logger zerolog.Logger
}

// NewToasts creates an empty queue. Messages are reduced to plain text and HTML-escaped.
func NewToasts(logger zerolog.Logger) *Toasts {
	return &Toasts{
		policy: bluemonday.StrictPolicy(),
		logger: logger.With().Str("component", "toasts").Logger(),
	}
}

// Notify queues the toast, dropping the oldest entry once the queue is full.
func (t *Toasts) Notify(toast Toast) {
	toast.Message = t.policy.Sanitize(toast.Message)

	event := t.logger.Info()
	if toast.Kind == ToastError {
		event = t.logger.Warn()
	}
	event.Str("kind", string(toast.Kind)).Str("message", toast.Message).Msg("toast raised")

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.queue) >= maxQueuedToasts {
		t.queue = t.queue[1:]
	}
	t.queue = append(t.queue, toast)
}

// Drain returns the queued toasts in order and empties the queue.
func (t *Toasts) Drain() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	drained := t.queue
	t.queue = nil
	return drained
}
