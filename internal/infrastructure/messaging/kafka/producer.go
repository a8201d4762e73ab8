package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/shelfswap/shelfswap/internal/application/analytics"
	"github.com/shelfswap/shelfswap/internal/application/valuation"
	"github.com/shelfswap/shelfswap/internal/infrastructure/monitoring/logging"
	"github.com/shelfswap/shelfswap/pkg/errors"
)

// ProducerConfig holds configuration for the Producer.
type ProducerConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RequiredAcks string        `mapstructure:"required_acks"`
}

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes engine events. It satisfies the valuation engine's
// EventPublisher port.
type Producer struct {
	writer writerInterface
	logger logging.Logger
	closed atomic.Bool
}

// NewProducer constructs a Producer over the configured brokers.
func NewProducer(cfg ProducerConfig, log logging.Logger) *Producer {
	acks := kafka.RequireOne
	if cfg.RequiredAcks == "all" {
		acks = kafka.RequireAll
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: acks,
	}
	return &Producer{writer: writer, logger: log}
}

// newProducerWithWriter exists for tests.
func newProducerWithWriter(w writerInterface, log logging.Logger) *Producer {
	return &Producer{writer: w, logger: log}
}

// PublishBookValued announces a persisted revaluation. Messages are keyed by
// book ID so consumers see revaluations of one book in order.
func (p *Producer) PublishBookValued(ctx context.Context, v *valuation.Valuation) error {
	if p.closed.Load() {
		return errors.New(errors.ErrCodeInternal, "producer closed")
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode valuation payload")
	}
	envelope, err := json.Marshal(NewEnvelope(TopicBookValued, v.ComputedAt, payload))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode event envelope")
	}

	msg := kafka.Message{
		Topic: TopicBookValued,
		Key:   []byte(v.BookID.String()),
		Value: envelope,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "publish book.valued event")
	}

	p.logger.Debug("published book.valued event",
		logging.String("book_id", v.BookID.String()),
		logging.Int("points", v.Points),
	)
	return nil
}

// analyticsViewedPayload is the wire shape of a book.analytics_viewed event.
// Dashboards consume it to track which books readers are researching.
type analyticsViewedPayload struct {
	BookID         string    `json:"book_id"`
	FailedSections []string  `json:"failed_sections,omitempty"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// PublishAnalyticsViewed announces a served analytics overview.
func (p *Producer) PublishAnalyticsViewed(ctx context.Context, view *analytics.BookAnalytics) error {
	if p.closed.Load() {
		return errors.New(errors.ErrCodeInternal, "producer closed")
	}

	payload, err := json.Marshal(analyticsViewedPayload{
		BookID:         view.BookID.String(),
		FailedSections: view.FailedSections,
		GeneratedAt:    view.GeneratedAt,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode analytics view payload")
	}
	envelope, err := json.Marshal(NewEnvelope(TopicAnalyticsViewed, view.GeneratedAt, payload))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode event envelope")
	}

	msg := kafka.Message{
		Topic: TopicAnalyticsViewed,
		Key:   []byte(view.BookID.String()),
		Value: envelope,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "publish book.analytics_viewed event")
	}
	return nil
}

// Close flushes and closes the underlying writer. Idempotent.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "close kafka writer")
	}
	p.logger.Info("closed Kafka producer")
	return nil
}
