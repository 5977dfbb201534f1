package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/local-library/catalog/internal/events"
	"github.com/Astemirdum/local-library/catalog/internal/model"
	"github.com/Astemirdum/local-library/pkg/kafka"
)

func (s *Service) ListBookInstances(ctx context.Context) ([]model.BookInstance, error) {
	return s.repo.ListBookInstances(ctx)
}

func (s *Service) BookInstanceDetail(ctx context.Context, id string) (model.BookInstance, error) {
	if err := s.checkID(id); err != nil {
		return model.BookInstance{}, err
	}
	return s.repo.GetBookInstance(ctx, id)
}

func (s *Service) BookInstanceForm(ctx context.Context, bi model.BookInstance) (model.BookInstanceForm, error) {
	books, err := s.repo.ListBooks(ctx)
	if err != nil {
		return model.BookInstanceForm{}, err
	}
	return model.BookInstanceForm{BookInstance: bi, Books: books}, nil
}

func (s *Service) EditBookInstanceForm(ctx context.Context, id string) (model.BookInstanceForm, error) {
	if err := s.checkID(id); err != nil {
		return model.BookInstanceForm{}, err
	}
	var f model.BookInstanceForm
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		f.BookInstance, err = s.repo.GetBookInstance(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		f.Books, err = s.repo.ListBooks(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.BookInstanceForm{}, err
	}
	return f, nil
}

func (s *Service) CreateBookInstance(ctx context.Context, bi model.BookInstance) (model.BookInstance, error) {
	created, err := s.repo.CreateBookInstance(ctx, bi)
	if err != nil {
		return model.BookInstance{}, err
	}
	s.publish(ctx, events.EntityBookInstance, kafka.ActionCreated, created.ID)
	return created, nil
}

func (s *Service) UpdateBookInstance(ctx context.Context, bi model.BookInstance) error {
	if err := s.checkID(bi.ID); err != nil {
		return err
	}
	if err := s.repo.UpdateBookInstance(ctx, bi); err != nil {
		return err
	}
	s.publish(ctx, events.EntityBookInstance, kafka.ActionUpdated, bi.ID)
	return nil
}

// DeleteBookInstance deletes unconditionally: nothing references a copy.
func (s *Service) DeleteBookInstance(ctx context.Context, id string) error {
	if err := s.checkID(id); err != nil {
		return err
	}
	if err := s.repo.DeleteBookInstance(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.EntityBookInstance, kafka.ActionDeleted, id)
	return nil
}
