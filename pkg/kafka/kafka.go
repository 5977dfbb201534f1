package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

const CatalogTopic = "catalog-events"

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
	// Timeout bounds dialing, each network read and write, and the broker ack.
	Timeout time.Duration `envconfig:"KAFKA_TIMEOUT" default:"3s"`
}

func (c Config) Enabled() bool {
	return len(c.Addrs) > 0
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	return sarama.NewSyncProducer(cfg.Addrs, producerConfig(cfg))
}

func producerConfig(cfg Config) *sarama.Config {
	defaultCfg := sarama.NewConfig()

	if cfg.Timeout > 0 {
		defaultCfg.Net.DialTimeout = cfg.Timeout
		defaultCfg.Net.ReadTimeout = cfg.Timeout
		defaultCfg.Net.WriteTimeout = cfg.Timeout
		defaultCfg.Producer.Timeout = cfg.Timeout
	}

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Retry.Max = 0
	defaultCfg.Metadata.Retry.Max = 0

	return defaultCfg
}

type Action string

const (
	ActionCreated Action = "CREATED"
	ActionUpdated Action = "UPDATED"
	ActionDeleted Action = "DELETED"
)

// EventCatalog is the payload written to CatalogTopic.
type EventCatalog struct {
	Timestamp time.Time `json:"timestamp"`
	Entity    string    `json:"entity"`
	Action    Action    `json:"action"`
	ID        string    `json:"id"`
}
