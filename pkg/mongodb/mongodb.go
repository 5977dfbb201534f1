package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	URI      string        `yaml:"uri" envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database string        `yaml:"database" envconfig:"MONGO_DB" default:"local_library"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"MONGO_CONNECT_TIMEOUT" default:"10s"`
}

// NewMongoDB connects to the server and pings the primary before handing
// out the database handle.
func NewMongoDB(ctx context.Context, cfg Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(err, "mongo.Connect")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "mongo.Ping")
	}
	return client.Database(cfg.Database), nil
}
