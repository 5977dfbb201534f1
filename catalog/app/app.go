package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/local-library/catalog/config"
	"github.com/Astemirdum/local-library/catalog/internal/events"
	"github.com/Astemirdum/local-library/catalog/internal/handler"
	"github.com/Astemirdum/local-library/catalog/internal/repository"
	"github.com/Astemirdum/local-library/catalog/internal/server"
	"github.com/Astemirdum/local-library/catalog/internal/service"
	"github.com/Astemirdum/local-library/catalog/migrations"
	"github.com/Astemirdum/local-library/pkg/kafka"
	"github.com/Astemirdum/local-library/pkg/logger"
	"github.com/Astemirdum/local-library/pkg/mongodb"
	"github.com/Astemirdum/local-library/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "catalog")
	repo, closeRepo, err := newRepository(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("repository init", zap.Error(err), zap.String("driver", string(cfg.Driver)))
	}

	publisher, closePublisher, err := newPublisher(cfg.Kafka, log)
	if err != nil {
		log.Fatal("publisher init", zap.Error(err))
	}

	svc := service.NewService(repo, publisher, log)
	h, err := handler.New(svc, log, cfg.Production())
	if err != nil {
		log.Fatal("handler init", zap.Error(err))
	}
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	closePublisher()
	closeRepo(closeCtx)
	log.Info("Graceful shutdown finished")
}

func newRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Repository, func(context.Context), error) {
	switch cfg.Driver {
	case config.DriverMongo:
		db, err := mongodb.NewMongoDB(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func(ctx context.Context) {
			if err := db.Client().Disconnect(ctx); err != nil {
				log.Error("mongo disconnect", zap.Error(err))
			}
		}
		return repository.NewMongoRepository(db, log), closeFn, nil
	case config.DriverPostgres:
		db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresRepository(db, log), func(context.Context) { db.Close() }, nil
	default:
		return nil, nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func newPublisher(cfg kafka.Config, log *zap.Logger) (events.Publisher, func(), error) {
	if !cfg.Enabled() {
		log.Info("kafka brokers not configured, change events disabled")
		return events.NewNop(), func() {}, nil
	}
	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := producer.Close(); err != nil {
			log.Error("kafka producer close", zap.Error(err))
		}
	}
	return events.NewKafkaPublisher(producer, log), closeFn, nil
}
