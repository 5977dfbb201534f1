package handler

import (
	"context"

	"github.com/Astemirdum/local-library/catalog/internal/model"
	"github.com/Astemirdum/local-library/catalog/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CatalogService interface {
	ValidID(id string) bool
	Counts(ctx context.Context) (model.Counts, error)

	ListAuthors(ctx context.Context) ([]model.Author, error)
	GetAuthor(ctx context.Context, id string) (model.Author, error)
	AuthorDetail(ctx context.Context, id string) (model.AuthorDetail, error)
	CreateAuthor(ctx context.Context, author model.Author) (model.Author, error)
	UpdateAuthor(ctx context.Context, author model.Author) error
	DeleteAuthor(ctx context.Context, id string) (model.AuthorDetail, error)

	ListGenres(ctx context.Context) ([]model.Genre, error)
	GetGenre(ctx context.Context, id string) (model.Genre, error)
	GenreDetail(ctx context.Context, id string) (model.GenreDetail, error)
	CreateGenre(ctx context.Context, genre model.Genre) (model.Genre, bool, error)
	UpdateGenre(ctx context.Context, genre model.Genre) error
	DeleteGenre(ctx context.Context, id string) (model.GenreDetail, error)

	ListBooks(ctx context.Context) ([]model.Book, error)
	BookDetail(ctx context.Context, id string) (model.BookDetail, error)
	BookForm(ctx context.Context, book model.Book) (model.BookForm, error)
	EditBookForm(ctx context.Context, id string) (model.BookForm, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	UpdateBook(ctx context.Context, book model.Book) error
	DeleteBook(ctx context.Context, id string) (model.BookDetail, error)

	ListBookInstances(ctx context.Context) ([]model.BookInstance, error)
	BookInstanceDetail(ctx context.Context, id string) (model.BookInstance, error)
	BookInstanceForm(ctx context.Context, bi model.BookInstance) (model.BookInstanceForm, error)
	EditBookInstanceForm(ctx context.Context, id string) (model.BookInstanceForm, error)
	CreateBookInstance(ctx context.Context, bi model.BookInstance) (model.BookInstance, error)
	UpdateBookInstance(ctx context.Context, bi model.BookInstance) error
	DeleteBookInstance(ctx context.Context, id string) error
}

var _ CatalogService = (*service.Service)(nil)
