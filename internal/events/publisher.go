// Package events fans issuance events out to Kafka for downstream consumers
// (reporting, the records system, dashboards). Publishing is fire-and-forget:
// the audit log in Postgres is the system of record, Kafka only mirrors it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"trichluc/internal/allocation/models"
)

// Publisher emits allocation lifecycle events.
type Publisher interface {
	AllocationIssued(ctx context.Context, record models.AllocationRecord)
	CounterOverwritten(ctx context.Context, scopeKey string, value int64, operator string)
	Close()
}

// KafkaPublisher publishes to a single topic keyed by scope ward so events
// for one ward stay ordered.
type KafkaPublisher struct {
	client *kgo.Client
	logger *slog.Logger
}

func NewKafka(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, logger: logger}, nil
}

type issuedEvent struct {
	Type             string    `json:"type"`
	ID               string    `json:"id"`
	Ward             string    `json:"ward"`
	Year             int       `json:"year"`
	Sheet            string    `json:"sheet"`
	Plot             string    `json:"plot"`
	IssuedNumber     int64     `json:"issued_number"`
	IssuedAt         time.Time `json:"issued_at"`
	IssuedBy         string    `json:"issued_by"`
	LinkedRecordCode string    `json:"linked_record_code,omitempty"`
}

type overwriteEvent struct {
	Type     string    `json:"type"`
	ScopeKey string    `json:"scope_key"`
	Value    int64     `json:"value"`
	Operator string    `json:"operator"`
	At       time.Time `json:"at"`
}

func (p *KafkaPublisher) AllocationIssued(ctx context.Context, record models.AllocationRecord) {
	event := issuedEvent{
		Type:             "allocation.issued",
		ID:               record.ID.String(),
		Ward:             record.Ward,
		Year:             record.Year,
		Sheet:            record.Sheet,
		Plot:             record.Plot,
		IssuedNumber:     record.IssuedNumber,
		IssuedAt:         record.IssuedAt,
		IssuedBy:         record.IssuedBy,
		LinkedRecordCode: record.LinkedRecordCode,
	}
	p.produce(ctx, record.Ward, event)
}

func (p *KafkaPublisher) CounterOverwritten(ctx context.Context, scopeKey string, value int64, operator string) {
	event := overwriteEvent{
		Type:     "counter.overwritten",
		ScopeKey: scopeKey,
		Value:    value,
		Operator: operator,
		At:       time.Now(),
	}
	p.produce(ctx, scopeKey, event)
}

func (p *KafkaPublisher) produce(ctx context.Context, key string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal event", "error", err)
		return
	}
	p.client.Produce(ctx, &kgo.Record{Key: []byte(key), Value: payload}, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("publish event failed", "error", err)
		}
	})
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// NoopPublisher is used when Kafka is not configured.
type NoopPublisher struct{}

func (NoopPublisher) AllocationIssued(context.Context, models.AllocationRecord) {}
func (NoopPublisher) CounterOverwritten(context.Context, string, int64, string) {}
func (NoopPublisher) Close()                                                    {}
