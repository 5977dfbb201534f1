package repository

import (
	"context"

	"github.com/Astemirdum/local-library/catalog/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

// Repository is the data-access handle shared by all catalog operations.
// Get* methods return errs.ErrNotFound for a missing record; Update* and
// Delete* return it when nothing matched the id.
type Repository interface {
	// ValidID reports whether id is a well-formed record reference for this store.
	ValidID(id string) bool

	AuthorRepository
	GenreRepository
	BookRepository
	BookInstanceRepository
}

type AuthorRepository interface {
	ListAuthors(ctx context.Context) ([]model.Author, error)
	GetAuthor(ctx context.Context, id string) (model.Author, error)
	CreateAuthor(ctx context.Context, author model.Author) (model.Author, error)
	UpdateAuthor(ctx context.Context, author model.Author) error
	DeleteAuthor(ctx context.Context, id string) error
	CountAuthors(ctx context.Context) (int64, error)
}

type GenreRepository interface {
	ListGenres(ctx context.Context) ([]model.Genre, error)
	GetGenre(ctx context.Context, id string) (model.Genre, error)
	FindGenreByName(ctx context.Context, name string) (model.Genre, error)
	CreateGenre(ctx context.Context, genre model.Genre) (model.Genre, error)
	UpdateGenre(ctx context.Context, genre model.Genre) error
	DeleteGenre(ctx context.Context, id string) error
	CountGenres(ctx context.Context) (int64, error)
}

type BookRepository interface {
	// ListBooks returns books ordered by title with Author resolved.
	ListBooks(ctx context.Context) ([]model.Book, error)
	// GetBook returns the book with Author and Genres resolved.
	GetBook(ctx context.Context, id string) (model.Book, error)
	BooksByAuthor(ctx context.Context, authorID string) ([]model.Book, error)
	BooksByGenre(ctx context.Context, genreID string) ([]model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	UpdateBook(ctx context.Context, book model.Book) error
	DeleteBook(ctx context.Context, id string) error
	CountBooks(ctx context.Context) (int64, error)
}

type BookInstanceRepository interface {
	// ListBookInstances returns every copy with Book resolved.
	ListBookInstances(ctx context.Context) ([]model.BookInstance, error)
	GetBookInstance(ctx context.Context, id string) (model.BookInstance, error)
	InstancesByBook(ctx context.Context, bookID string) ([]model.BookInstance, error)
	CreateBookInstance(ctx context.Context, bi model.BookInstance) (model.BookInstance, error)
	UpdateBookInstance(ctx context.Context, bi model.BookInstance) error
	DeleteBookInstance(ctx context.Context, id string) error
	// CountBookInstances counts copies in the given status, or all copies for "".
	CountBookInstances(ctx context.Context, status model.Status) (int64, error)
}
