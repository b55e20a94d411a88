// Package outbox buffers roster events in memory and delivers them to Kafka.
package outbox

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// SchemaRegistrar resolves the schema id for a subject.
type SchemaRegistrar interface {
	EnsureSchema(context.Context, string, string) (int, error)
}

// DispatcherConfig contains tunables for the Dispatcher.
type DispatcherConfig struct {
	PollInterval time.Duration
	BatchSize    int
	FlushTimeout time.Duration
}

// Dispatcher drains the queue and delivers events to Kafka using Schema Registry framing.
type Dispatcher struct {
	queue            *Queue
	producer         messageWriter
	registry         SchemaRegistrar
	dead             *DeadLetters
	cfg              DispatcherConfig
	logger           logrus.FieldLogger
	schemaIDCache    sync.Map
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(queue *Queue, producer messageWriter, registry SchemaRegistrar, dead *DeadLetters, cfg DispatcherConfig, logger logrus.FieldLogger) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 5 * time.Second
	}
	if registry == nil {
		registry = StaticRegistry{}
	}
	return &Dispatcher{
		queue:            queue,
		producer:         producer,
		registry:         registry,
		dead:             dead,
		cfg:              cfg,
		logger:           logger,
		shutdownComplete: make(chan struct{}),
	}
}

// Start launches the polling loop. It should be called in a goroutine. Once
// ctx is cancelled the remaining queue is flushed within FlushTimeout.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	for {
		if err := d.drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.WithError(err).Error("outbox dispatcher error")
		}

		select {
		case <-ctx.Done():
			d.flush()
			return
		case <-ticker.C:
		}
	}
}

// Wait waits until dispatcher stops.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

func (d *Dispatcher) flush() {
	if d.queue.Len() == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.FlushTimeout)
	defer cancel()
	if err := d.drain(ctx); err != nil {
		d.logger.WithError(err).WithField("pending", d.queue.Len()).Warn("outbox flush incomplete")
	}
}

// drain delivers batches until the queue is empty or a batch fails.
func (d *Dispatcher) drain(ctx context.Context) error {
	for d.queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.processBatch(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) processBatch(ctx context.Context) error {
	messages := d.queue.Claim(d.cfg.BatchSize)
	if len(messages) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	if err := d.deliver(ctx, messages); err != nil {
		failedCounter.Add(float64(len(messages)))
		d.moveToDLQ(messages, err.Error())
		return fmt.Errorf("deliver %d events: %w", len(messages), err)
	}

	deliveredCounter.Add(float64(len(messages)))
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, messages []Message) error {
	batches := make(map[string][]kafka.Message)
	for _, msg := range messages {
		schemaID, err := d.schemaID(ctx, msg)
		if err != nil {
			return err
		}

		record := kafka.Message{
			Key:   []byte(msg.PartitionKey),
			Value: encodeWireFormat(schemaID, msg.Payload),
			Time:  msg.EnqueuedAt,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(msg.EventType)},
				{Key: "event_id", Value: []byte(msg.EventID)},
				{Key: "schema_subject", Value: []byte(msg.SchemaSubject)},
			},
		}
		batches[msg.Topic] = append(batches[msg.Topic], record)
	}

	for topic, batch := range batches {
		if err := d.producer.WriteMessages(ctx, topic, batch...); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) schemaID(ctx context.Context, msg Message) (int, error) {
	meta, ok := schemaCatalog[msg.EventType]
	if !ok {
		return 0, fmt.Errorf("no schema metadata for event_type=%s", msg.EventType)
	}

	if cached, found := d.schemaIDCache.Load(msg.SchemaSubject); found {
		return cached.(int), nil
	}
	id, err := d.registry.EnsureSchema(ctx, msg.SchemaSubject, meta.Schema)
	if err != nil {
		return 0, err
	}
	d.schemaIDCache.Store(msg.SchemaSubject, id)
	return id, nil
}

func (d *Dispatcher) moveToDLQ(messages []Message, reason string) {
	for _, msg := range messages {
		d.dead.Add(msg, fmt.Sprintf("%s (topic=%s)", reason, msg.Topic))
		dlqCounter.WithLabelValues(msg.Topic).Inc()
	}
}

// encodeWireFormat applies Confluent framing for Schema Registry aware payloads.
func encodeWireFormat(schemaID int, payload []byte) []byte {
	frame := make([]byte, 5+len(payload))
	frame[0] = 0
	binary.BigEndian.PutUint32(frame[1:5], uint32(schemaID))
	copy(frame[5:], payload)
	return frame
}
