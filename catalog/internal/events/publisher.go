package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Astemirdum/local-library/pkg/circuit_breaker"
	"github.com/Astemirdum/local-library/pkg/kafka"
)

const (
	EntityAuthor       = "author"
	EntityGenre        = "genre"
	EntityBook         = "book"
	EntityBookInstance = "bookinstance"
)

//go:generate go run github.com/golang/mock/mockgen -source=publisher.go -destination=mocks/mock.go

// Publisher announces catalog writes. Publishing never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, entity string, action kafka.Action, id string)
}

type nopPublisher struct{}

func NewNop() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, kafka.Action, string) {}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	cb       circuit_breaker.CircuitBreaker
	log      *zap.Logger
	now      func() time.Time
}

func NewKafkaPublisher(producer sarama.SyncProducer, log *zap.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		cb: circuit_breaker.New(circuit_breaker.Settings{
			Window:       10,
			Cooldown:     30 * time.Second,
			FailureRatio: 0.5,
			Probes:       3,
		}),
		log: log.Named("events"),
		now: time.Now,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, entity string, action kafka.Action, id string) {
	if err := ctx.Err(); err != nil {
		p.log.Warn("publish catalog event skipped",
			zap.String("entity", entity),
			zap.String("id", id),
			zap.Error(err))
		return
	}
	event := kafka.EventCatalog{
		Timestamp: p.now().UTC(),
		Entity:    entity,
		Action:    action,
		ID:        id,
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error("json.Marshal", zap.Error(err))
		return
	}
	err = p.cb.Call(func() error {
		_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
			Topic: kafka.CatalogTopic,
			Key:   sarama.StringEncoder(id),
			Value: sarama.ByteEncoder(data),
		})
		return err
	})
	if err != nil {
		p.log.Warn("publish catalog event",
			zap.String("entity", entity),
			zap.String("action", string(action)),
			zap.String("id", id),
			zap.Error(err))
	}
}
