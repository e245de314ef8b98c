package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event names published by the form service.
const (
	SchemaChanged  = "schema.changed"
	SchemaReset    = "schema.reset"
	RecordAppended = "record.appended"
	RecordsReset   = "records.reset"
)

// Event represents a notification payload.
type Event struct {
	Name string    `json:"name"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
	ID   string    `json:"id"`
}

// New returns an event stamped with a fresh ID and the current time.
func New(name string, data any) Event {
	return Event{Name: name, Time: time.Now().UTC(), Data: data, ID: uuid.NewString()}
}

// Sink publishes events.
type Sink interface {
	Emit(ctx context.Context, e Event) error
}

// DLQ stores failed events.
type DLQ interface {
	Store(ctx context.Context, e Event, attempts int, lastErr string) error
}

// Dispatcher broadcasts events to multiple sinks with retries.
type Dispatcher struct {
	sinks        []Sink
	maxAttempts  int
	initialDelay time.Duration
	dlq          DLQ
	wg           sync.WaitGroup
}

// Config provides dispatcher settings.
type Config struct {
	Sinks struct {
		Webhook WebhookConfig `yaml:"webhook"`
		Redis   RedisConfig   `yaml:"redis"`
		Kafka   KafkaConfig   `yaml:"kafka"`
	} `yaml:"sinks"`
	Retry RetryConfig `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

// NewDispatcher creates a dispatcher from sinks and retry config.
func NewDispatcher(cfg Config, dlq DLQ, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{maxAttempts: 3, initialDelay: time.Second}
	if cfg.Retry.MaxAttempts > 0 {
		d.maxAttempts = cfg.Retry.MaxAttempts
	}
	if cfg.Retry.InitialDelay > 0 {
		d.initialDelay = cfg.Retry.InitialDelay
	}
	d.sinks = append(d.sinks, sinks...)
	d.dlq = dlq
	return d
}

// Len returns the number of configured sinks.
func (d *Dispatcher) Len() int { return len(d.sinks) }

// Dispatch sends the event to all sinks asynchronously.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) {
	for _, s := range d.sinks {
		sink := s
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.retrySend(ctx, sink, e)
		}()
	}
}

// Wait blocks until every dispatched event has been delivered or dead-lettered.
func (d *Dispatcher) Wait() { d.wg.Wait() }

func (d *Dispatcher) retrySend(ctx context.Context, s Sink, e Event) {
	delay := d.initialDelay
	var err error
	attempts := 0
	for attempts < d.maxAttempts {
		attempts++
		if err = s.Emit(ctx, e); err == nil {
			return
		}
		if attempts == d.maxAttempts {
			break
		}
		if werr := sleep(ctx, delay); werr != nil {
			err = werr
			break
		}
		delay *= 2
	}
	if d.dlq != nil {
		_ = d.dlq.Store(context.WithoutCancel(ctx), e, attempts, err.Error())
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogDLQ records failed events in the log.
type LogDLQ struct {
	Logger *zap.SugaredLogger
}

// Store logs the failed event.
func (q *LogDLQ) Store(_ context.Context, e Event, attempts int, lastErr string) error {
	if q == nil || q.Logger == nil {
		return nil
	}
	q.Logger.Errorw("event delivery failed", "event", e.Name, "id", e.ID, "attempts", attempts, "error", lastErr)
	return nil
}
