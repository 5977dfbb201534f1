package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/local-library/catalog/internal/errs"
	"github.com/Astemirdum/local-library/catalog/internal/events"
	"github.com/Astemirdum/local-library/catalog/internal/model"
	"github.com/Astemirdum/local-library/pkg/kafka"
)

func (s *Service) ListBooks(ctx context.Context) ([]model.Book, error) {
	return s.repo.ListBooks(ctx)
}

func (s *Service) BookDetail(ctx context.Context, id string) (model.BookDetail, error) {
	if err := s.checkID(id); err != nil {
		return model.BookDetail{}, err
	}
	var d model.BookDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Book, err = s.repo.GetBook(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		d.Instances, err = s.repo.InstancesByBook(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.BookDetail{}, err
	}
	return d, nil
}

// BookForm loads the authors and genres offered by the book form; genres
// already on book are checked.
func (s *Service) BookForm(ctx context.Context, book model.Book) (model.BookForm, error) {
	var (
		authors []model.Author
		genres  []model.Genre
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		authors, err = s.repo.ListAuthors(gctx)
		return err
	})
	g.Go(func() (err error) {
		genres, err = s.repo.ListGenres(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.BookForm{}, err
	}
	return model.BookForm{
		Book:    book,
		Authors: authors,
		Genres:  model.GenreOptions(genres, book.GenreIDs),
	}, nil
}

// EditBookForm is BookForm for a stored book.
func (s *Service) EditBookForm(ctx context.Context, id string) (model.BookForm, error) {
	if err := s.checkID(id); err != nil {
		return model.BookForm{}, err
	}
	var (
		book    model.Book
		authors []model.Author
		genres  []model.Genre
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		book, err = s.repo.GetBook(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		authors, err = s.repo.ListAuthors(gctx)
		return err
	})
	g.Go(func() (err error) {
		genres, err = s.repo.ListGenres(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.BookForm{}, err
	}
	return model.BookForm{
		Book:    book,
		Authors: authors,
		Genres:  model.GenreOptions(genres, book.GenreIDs),
	}, nil
}

func (s *Service) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	created, err := s.repo.CreateBook(ctx, book)
	if err != nil {
		return model.Book{}, err
	}
	s.publish(ctx, events.EntityBook, kafka.ActionCreated, created.ID)
	return created, nil
}

func (s *Service) UpdateBook(ctx context.Context, book model.Book) error {
	if err := s.checkID(book.ID); err != nil {
		return err
	}
	if err := s.repo.UpdateBook(ctx, book); err != nil {
		return err
	}
	s.publish(ctx, events.EntityBook, kafka.ActionUpdated, book.ID)
	return nil
}

// DeleteBook refuses with errs.ErrHasDependents while copies of the book exist.
func (s *Service) DeleteBook(ctx context.Context, id string) (model.BookDetail, error) {
	d, err := s.BookDetail(ctx, id)
	if err != nil {
		return model.BookDetail{}, err
	}
	if len(d.Instances) > 0 {
		return d, errs.ErrHasDependents
	}
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return d, err
	}
	s.publish(ctx, events.EntityBook, kafka.ActionDeleted, id)
	return d, nil
}
