package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/local-library/catalog/internal/errs"
	"github.com/Astemirdum/local-library/catalog/internal/events"
	"github.com/Astemirdum/local-library/catalog/internal/model"
	"github.com/Astemirdum/local-library/pkg/kafka"
)

func (s *Service) ListAuthors(ctx context.Context) ([]model.Author, error) {
	return s.repo.ListAuthors(ctx)
}

func (s *Service) GetAuthor(ctx context.Context, id string) (model.Author, error) {
	if err := s.checkID(id); err != nil {
		return model.Author{}, err
	}
	return s.repo.GetAuthor(ctx, id)
}

// AuthorDetail fetches the author and the books written by them.
func (s *Service) AuthorDetail(ctx context.Context, id string) (model.AuthorDetail, error) {
	if err := s.checkID(id); err != nil {
		return model.AuthorDetail{}, err
	}
	var d model.AuthorDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Author, err = s.repo.GetAuthor(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		d.Books, err = s.repo.BooksByAuthor(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.AuthorDetail{}, err
	}
	return d, nil
}

func (s *Service) CreateAuthor(ctx context.Context, author model.Author) (model.Author, error) {
	created, err := s.repo.CreateAuthor(ctx, author)
	if err != nil {
		return model.Author{}, err
	}
	s.publish(ctx, events.EntityAuthor, kafka.ActionCreated, created.ID)
	return created, nil
}

func (s *Service) UpdateAuthor(ctx context.Context, author model.Author) error {
	if err := s.checkID(author.ID); err != nil {
		return err
	}
	if err := s.repo.UpdateAuthor(ctx, author); err != nil {
		return err
	}
	s.publish(ctx, events.EntityAuthor, kafka.ActionUpdated, author.ID)
	return nil
}

// DeleteAuthor removes the author unless books still reference it, in which
// case the detail is returned with errs.ErrHasDependents.
func (s *Service) DeleteAuthor(ctx context.Context, id string) (model.AuthorDetail, error) {
	d, err := s.AuthorDetail(ctx, id)
	if err != nil {
		return model.AuthorDetail{}, err
	}
	if len(d.Books) > 0 {
		return d, errs.ErrHasDependents
	}
	if err := s.repo.DeleteAuthor(ctx, id); err != nil {
		return d, err
	}
	s.publish(ctx, events.EntityAuthor, kafka.ActionDeleted, id)
	return d, nil
}
