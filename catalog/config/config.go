package config

import (
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/local-library/pkg/kafka"
	"github.com/Astemirdum/local-library/pkg/logger"
	"github.com/Astemirdum/local-library/pkg/mongodb"
	"github.com/Astemirdum/local-library/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"3000"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
}

type Driver string

const (
	DriverMongo    Driver = "mongo"
	DriverPostgres Driver = "postgres"
)

const EnvProduction = "production"

type Config struct {
	Server   HTTPServer     `yaml:"server"`
	Driver   Driver         `yaml:"driver" envconfig:"STORAGE_DRIVER" default:"mongo"`
	Mongo    mongodb.Config `yaml:"mongo"`
	Database postgres.DB    `yaml:"db"`
	Kafka    kafka.Config   `yaml:"kafka"`
	Log      logger.Log     `yaml:"log"`
	Env      string         `yaml:"env" envconfig:"APP_ENV" default:"development"`
}

func (c *Config) Production() bool {
	return c.Env == EnvProduction
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment. Options set values that the
// environment does not override.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
	})

	return cfg
}
