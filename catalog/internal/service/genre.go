package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/local-library/catalog/internal/errs"
	"github.com/Astemirdum/local-library/catalog/internal/events"
	"github.com/Astemirdum/local-library/catalog/internal/model"
	"github.com/Astemirdum/local-library/pkg/kafka"
)

func (s *Service) ListGenres(ctx context.Context) ([]model.Genre, error) {
	return s.repo.ListGenres(ctx)
}

func (s *Service) GetGenre(ctx context.Context, id string) (model.Genre, error) {
	if err := s.checkID(id); err != nil {
		return model.Genre{}, err
	}
	return s.repo.GetGenre(ctx, id)
}

func (s *Service) GenreDetail(ctx context.Context, id string) (model.GenreDetail, error) {
	if err := s.checkID(id); err != nil {
		return model.GenreDetail{}, err
	}
	var d model.GenreDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Genre, err = s.repo.GetGenre(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		d.Books, err = s.repo.BooksByGenre(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.GenreDetail{}, err
	}
	return d, nil
}

// CreateGenre returns the existing genre with the same name instead of
// inserting a duplicate; created reports whether a record was inserted.
// The lookup and the insert are not atomic and no unique index backs them,
// so concurrent identical submissions can still both insert.
func (s *Service) CreateGenre(ctx context.Context, genre model.Genre) (_ model.Genre, created bool, _ error) {
	existing, err := s.repo.FindGenreByName(ctx, genre.Name)
	switch {
	case err == nil:
		s.log.Debug("genre exists", zap.String("name", genre.Name), zap.String("id", existing.ID))
		return existing, false, nil
	case !errors.Is(err, errs.ErrNotFound):
		return model.Genre{}, false, err
	}

	g, err := s.repo.CreateGenre(ctx, genre)
	if err != nil {
		return model.Genre{}, false, err
	}
	s.publish(ctx, events.EntityGenre, kafka.ActionCreated, g.ID)
	return g, true, nil
}

func (s *Service) UpdateGenre(ctx context.Context, genre model.Genre) error {
	if err := s.checkID(genre.ID); err != nil {
		return err
	}
	if err := s.repo.UpdateGenre(ctx, genre); err != nil {
		return err
	}
	s.publish(ctx, events.EntityGenre, kafka.ActionUpdated, genre.ID)
	return nil
}

func (s *Service) DeleteGenre(ctx context.Context, id string) (model.GenreDetail, error) {
	d, err := s.GenreDetail(ctx, id)
	if err != nil {
		return model.GenreDetail{}, err
	}
	if len(d.Books) > 0 {
		return d, errs.ErrHasDependents
	}
	if err := s.repo.DeleteGenre(ctx, id); err != nil {
		return d, err
	}
	s.publish(ctx, events.EntityGenre, kafka.ActionDeleted, id)
	return d, nil
}
