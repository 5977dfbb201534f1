package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/local-library/catalog/internal/errs"
	"github.com/Astemirdum/local-library/catalog/internal/events"
	"github.com/Astemirdum/local-library/catalog/internal/model"
	"github.com/Astemirdum/local-library/catalog/internal/repository"
	"github.com/Astemirdum/local-library/pkg/kafka"
)

type Service struct {
	log       *zap.Logger
	repo      repository.Repository
	publisher events.Publisher
}

func NewService(repo repository.Repository, publisher events.Publisher, log *zap.Logger) *Service {
	return &Service{
		log:       log.Named("service"),
		repo:      repo,
		publisher: publisher,
	}
}

func (s *Service) ValidID(id string) bool {
	return s.repo.ValidID(id)
}

func (s *Service) checkID(id string) error {
	if !s.repo.ValidID(id) {
		return errs.ErrInvalidID
	}
	return nil
}

func (s *Service) publish(ctx context.Context, entity string, action kafka.Action, id string) {
	s.publisher.Publish(ctx, entity, action, id)
}

func (s *Service) Counts(ctx context.Context) (model.Counts, error) {
	var c model.Counts
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		c.Books, err = s.repo.CountBooks(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.BookInstances, err = s.repo.CountBookInstances(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		c.BookInstancesAvailable, err = s.repo.CountBookInstances(ctx, model.StatusAvailable)
		return err
	})
	g.Go(func() (err error) {
		c.Authors, err = s.repo.CountAuthors(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.Genres, err = s.repo.CountGenres(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Counts{}, err
	}
	return c, nil
}
