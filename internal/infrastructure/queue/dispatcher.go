package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmguardian/farm-guardian/internal/api/metrics"
	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	publishTimeout = 5 * time.Second
)

// Dispatcher routes domain events to a fixed set of workers using consistent
// hashing on the aggregate id, guaranteeing per-aggregate publish ordering.
type Dispatcher struct {
	workers   []chan domain.Event
	publisher ports.EventPublisher
	log       zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher ports.EventPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.Event, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Event, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Each publish runs under a child of ctx.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Emit hands event to the worker responsible for its aggregate. It never
// blocks: when that worker's buffer is full the event is dropped and counted.
func (d *Dispatcher) Emit(event domain.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		metrics.EventsPublishedTotal.WithLabelValues(event.Type, "dropped").Inc()
		return
	}

	idx := d.shardIndex(event.AggregateID)
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.EventsPublishedTotal.WithLabelValues(event.Type, "dropped").Inc()
		d.log.Warn().
			Str("type", event.Type).
			Str("aggregate_id", event.AggregateID).
			Int("worker_id", idx).
			Msg("event queue full, dropping event")
	}
}

// Stop refuses new events, lets the workers drain what is queued and waits
// for them to finish or for ctx to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps an aggregate id deterministically to a worker index.
func (d *Dispatcher) shardIndex(aggregateID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(aggregateID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Event) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for event := range ch {
		metrics.EventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

		start := time.Now()
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		err := d.publisher.Publish(pubCtx, event)
		cancel()
		metrics.EventPublishDuration.WithLabelValues(event.Type).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.EventsPublishedTotal.WithLabelValues(event.Type, "error").Inc()
			d.log.Error().Err(err).
				Str("type", event.Type).
				Str("aggregate_id", event.AggregateID).
				Int("worker_id", id).
				Msg("event publish failed")
			continue
		}
		metrics.EventsPublishedTotal.WithLabelValues(event.Type, "ok").Inc()
	}
}
