package kafka

import (
	"Warbler/internal/api/config"
	"Warbler/internal/pkg/logger"
	"Warbler/internal/pkg/metrics"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Publisher 领域事件发布者，业务只在事务提交后调用
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// SyncPublisher 基于 sarama.SyncProducer 的实现
type SyncPublisher struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

// NewPublisher 根据配置返回 Kafka 发布者，未启用时返回 NoopPublisher
func NewPublisher(cfg config.KafkaConfig) (Publisher, error) {
	if !cfg.Enable {
		log.Info("Kafka publisher disabled")
		return NoopPublisher{}, nil
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka enabled but no brokers configured")
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, newSaramaConfig(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "create kafka producer")
	}

	log.Info("Kafka publisher started", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return NewSyncPublisher(producer, cfg.Topic), nil
}

func NewSyncPublisher(producer sarama.SyncProducer, topic string) *SyncPublisher {
	return &SyncPublisher{
		producer: producer,
		topic:    topic,
		now:      time.Now,
	}
}

// Publish 以 ActorID 为 key 发送，同一用户的事件落在同一分区
func (p *SyncPublisher) Publish(ctx context.Context, event *Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.TraceID == "" {
		event.TraceID = logger.TraceID(ctx)
	}

	value, err := json.Marshal(event)
	if err != nil {
		metrics.EventsPublished.WithLabelValues(event.Name, "error").Inc()
		return errors.Wrapf(err, "marshal event %s", event.Name)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(event.ActorID, 10)),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event"), Value: []byte(event.Name)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		metrics.EventsPublished.WithLabelValues(event.Name, "error").Inc()
		return errors.Wrapf(err, "publish event %s", event.Name)
	}

	metrics.EventsPublished.WithLabelValues(event.Name, "ok").Inc()
	log.DebugContext(ctx, "Event published", "event", event.Name, "partition", partition, "offset", offset)
	return nil
}

func (p *SyncPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher 未配置 Kafka 时使用，丢弃所有事件
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *Event) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
