package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bazaar/marketplace-api/internal/core/domain"
	"github.com/bazaar/marketplace-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Failure reasons passed to the failure hook.
const (
	FailureQueueFull = "queue_full"
	FailureClosed    = "closed"
	FailureStore     = "store"
)

// AuditDispatcher routes auth events to a fixed set of workers using
// consistent hashing on the event key, preserving per-account ordering.
// Recording never blocks the caller: when a worker queue is full the event
// is dropped and reported through the failure hook.
type AuditDispatcher struct {
	workers   []chan domain.AuthEvent
	repo      ports.AuthEventRepository
	log       zerolog.Logger
	onFailure func(reason string)

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type Option func(*AuditDispatcher)

// WithFailureHook registers fn to be called whenever an event is dropped or
// fails to persist.
func WithFailureHook(fn func(reason string)) Option {
	return func(d *AuditDispatcher) { d.onFailure = fn }
}

// NewAuditDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.AuthEventRepository, log zerolog.Logger, opts ...Option) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers:   make([]chan domain.AuthEvent, numWorkers),
		repo:      repo,
		log:       log,
		onFailure: func(string) {},
	}
	for _, opt := range opts {
		opt(d)
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuthEvent, channelBuffer)
	}
	return d
}

var _ ports.AuditRecorder = (*AuditDispatcher)(nil)

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or after Close has drained their queues.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues an event for the worker responsible for its key.
func (d *AuditDispatcher) Record(event domain.AuthEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.onFailure(FailureClosed)
		return
	}

	select {
	case d.workers[d.shardIndex(event.Key())] <- event:
	default:
		d.onFailure(FailureQueueFull)
		d.log.Warn().Str("event", string(event.Type)).Msg("audit queue full, dropping event")
	}
}

// Close stops accepting events and waits for workers to flush what is queued.
func (d *AuditDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps an event key deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuthEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.repo.Insert(ctx, &event); err != nil {
				d.onFailure(FailureStore)
				d.log.Error().Err(err).
					Str("event", string(event.Type)).
					Str("user_id", event.UserID).
					Int("worker_id", id).
					Msg("audit event persistence failed")
			}
		}
	}
}
