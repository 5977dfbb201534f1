package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/local-library/catalog/internal/errs"
	"github.com/Astemirdum/local-library/catalog/internal/model"
	"github.com/Astemirdum/local-library/catalog/internal/repository"
	"github.com/Astemirdum/local-library/catalog/migrations"
	"github.com/Astemirdum/local-library/pkg/postgres"
)

// newPostgresRepository connects to the database named by TEST_DB_* and
// empties the catalog tables. Without TEST_DB_HOST the test is skipped.
func newPostgresRepository(t *testing.T) repository.Repository {
	t.Helper()
	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("TEST_DB_HOST is not set")
	}
	var cfg postgres.DB
	require.NoError(t, envconfig.Process("TEST", &cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := postgres.NewPostgresDB(ctx, &cfg, migrations.MigrationFiles)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Exec(ctx, "truncate book_instances, book_genres, books, genres, authors")
	require.NoError(t, err)
	return repository.NewPostgresRepository(db, zap.NewNop())
}

type postgresFixture struct {
	author          model.Author
	fiction, poetry model.Genre
	book            model.Book
}

func seedPostgres(t *testing.T, repo repository.Repository) postgresFixture {
	t.Helper()
	ctx := context.Background()
	var (
		f   postgresFixture
		err error
	)
	f.author, err = repo.CreateAuthor(ctx, model.Author{FirstName: "Ursula", LastName: "LeGuin"})
	require.NoError(t, err)
	f.fiction, err = repo.CreateGenre(ctx, model.Genre{Name: "Fiction"})
	require.NoError(t, err)
	f.poetry, err = repo.CreateGenre(ctx, model.Genre{Name: "Poetry"})
	require.NoError(t, err)
	f.book, err = repo.CreateBook(ctx, model.Book{
		Title:    "The Dispossessed",
		AuthorID: f.author.ID,
		Summary:  "Anarres",
		ISBN:     "9780061054884",
		GenreIDs: []string{f.poetry.ID, f.fiction.ID},
	})
	require.NoError(t, err)
	return f
}

func TestPostgresRepository_Book(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()
	f := seedPostgres(t, repo)

	t.Run("genres keep submission order", func(t *testing.T) {
		got, err := repo.GetBook(ctx, f.book.ID)
		require.NoError(t, err)
		require.Equal(t, []string{f.poetry.ID, f.fiction.ID}, got.GenreIDs)
		require.Equal(t, []model.Genre{f.poetry, f.fiction}, got.Genres)
		require.Equal(t, "LeGuin, Ursula", got.Author.Name())
	})

	t.Run("update missing", func(t *testing.T) {
		err := repo.UpdateBook(ctx, model.Book{ID: uuid.NewString(), Title: "x", AuthorID: f.author.ID})
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("unknown genre rolls the update back", func(t *testing.T) {
		book := f.book
		book.Title = "Changed"
		book.GenreIDs = []string{uuid.NewString()}
		err := repo.UpdateBook(ctx, book)

		var refErr *errs.ReferenceError
		require.True(t, errors.As(err, &refErr))
		require.Equal(t, "genre", refErr.Field)

		got, err := repo.GetBook(ctx, f.book.ID)
		require.NoError(t, err)
		require.Equal(t, "The Dispossessed", got.Title)
		require.Equal(t, []string{f.poetry.ID, f.fiction.ID}, got.GenreIDs)
	})

	t.Run("unknown author", func(t *testing.T) {
		_, err := repo.CreateBook(ctx, model.Book{Title: "x", AuthorID: uuid.NewString()})
		var refErr *errs.ReferenceError
		require.True(t, errors.As(err, &refErr))
		require.Equal(t, "author", refErr.Field)
	})

	t.Run("by genre", func(t *testing.T) {
		books, err := repo.BooksByGenre(ctx, f.fiction.ID)
		require.NoError(t, err)
		require.Len(t, books, 1)
		require.Equal(t, f.book.ID, books[0].ID)
	})
}

func TestPostgresRepository_Delete(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()
	f := seedPostgres(t, repo)

	require.ErrorIs(t, repo.DeleteAuthor(ctx, f.author.ID), errs.ErrHasDependents)
	require.ErrorIs(t, repo.DeleteGenre(ctx, f.fiction.ID), errs.ErrHasDependents)
	require.ErrorIs(t, repo.DeleteAuthor(ctx, uuid.NewString()), errs.ErrNotFound)

	bi, err := repo.CreateBookInstance(ctx, model.BookInstance{
		BookID: f.book.ID, Imprint: "Harper", Status: model.StatusAvailable, DueBack: time.Now(),
	})
	require.NoError(t, err)
	require.ErrorIs(t, repo.DeleteBook(ctx, f.book.ID), errs.ErrHasDependents)

	n, err := repo.CountBookInstances(ctx, model.StatusAvailable)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	require.NoError(t, repo.DeleteBookInstance(ctx, bi.ID))
	require.ErrorIs(t, repo.DeleteBookInstance(ctx, bi.ID), errs.ErrNotFound)
	require.NoError(t, repo.DeleteBook(ctx, f.book.ID))
	require.NoError(t, repo.DeleteGenre(ctx, f.fiction.ID))
	require.NoError(t, repo.DeleteAuthor(ctx, f.author.ID))
}

func TestPostgresRepository_BookInstance(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()
	f := seedPostgres(t, repo)

	_, err := repo.CreateBookInstance(ctx, model.BookInstance{
		BookID: uuid.NewString(), Imprint: "x", Status: model.StatusLoaned, DueBack: time.Now(),
	})
	var refErr *errs.ReferenceError
	require.True(t, errors.As(err, &refErr))
	require.Equal(t, "book", refErr.Field)

	err = repo.UpdateBookInstance(ctx, model.BookInstance{
		ID: uuid.NewString(), BookID: f.book.ID, Imprint: "x", Status: model.StatusLoaned, DueBack: time.Now(),
	})
	require.ErrorIs(t, err, errs.ErrNotFound)
}
