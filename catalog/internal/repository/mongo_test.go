package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"

	"github.com/Astemirdum/local-library/catalog/internal/errs"
	"github.com/Astemirdum/local-library/catalog/internal/model"
	"github.com/Astemirdum/local-library/catalog/internal/repository"
)

func TestMongoRepository_Authors(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}
	ctx := context.Background()
	oid := primitive.NewObjectID()
	born := time.Date(1971, 12, 16, 0, 0, 0, 0, time.UTC)

	mt.Run("get", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "library.authors", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "firstName", Value: "Jim"},
			{Key: "lastName", Value: "Jones"},
			{Key: "dateOfBirth", Value: born},
		}))

		a, err := repo.GetAuthor(ctx, oid.Hex())
		require.NoError(t, err)
		require.Equal(t, oid.Hex(), a.ID)
		require.Equal(t, "Jones, Jim", a.Name())
		require.NotNil(t, a.DateOfBirth)
		require.True(t, a.DateOfBirth.Equal(born))
		require.Nil(t, a.DateOfDeath)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "library.authors", mtest.FirstBatch))

		_, err := repo.GetAuthor(ctx, oid.Hex())
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	mt.Run("get invalid id", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())

		require.False(t, repo.ValidID("not-an-id"))
		_, err := repo.GetAuthor(ctx, "not-an-id")
		require.ErrorIs(t, err, errs.ErrInvalidID)
	})

	mt.Run("create", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		a, err := repo.CreateAuthor(ctx, model.Author{FirstName: "Jim", LastName: "Jones"})
		require.NoError(t, err)
		require.True(t, repo.ValidID(a.ID))
		require.Equal(t, "/catalog/author/"+a.ID, a.URL())
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		require.ErrorIs(t, repo.DeleteAuthor(ctx, oid.Hex()), errs.ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(t, repo.DeleteAuthor(ctx, oid.Hex()))
	})

	mt.Run("count", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "library.authors", mtest.FirstBatch, bson.D{
			{Key: "n", Value: int32(4)},
		}))

		n, err := repo.CountAuthors(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(4), n)
	})
}

func TestMongoRepository_Genres(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}
	ctx := context.Background()
	fantasy, poetry := primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("list", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "library.genres", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: fantasy}, {Key: "name", Value: "Fantasy"}},
			bson.D{{Key: "_id", Value: poetry}, {Key: "name", Value: "Poetry"}},
		))

		genres, err := repo.ListGenres(ctx)
		require.NoError(t, err)
		require.Equal(t, []model.Genre{
			{ID: fantasy.Hex(), Name: "Fantasy"},
			{ID: poetry.Hex(), Name: "Poetry"},
		}, genres)
	})

	mt.Run("list empty", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "library.genres", mtest.FirstBatch))

		genres, err := repo.ListGenres(ctx)
		require.NoError(t, err)
		require.Empty(t, genres)
	})

	mt.Run("find by name", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "library.genres", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: fantasy}, {Key: "name", Value: "Fantasy"}},
		))

		g, err := repo.FindGenreByName(ctx, "Fantasy")
		require.NoError(t, err)
		require.Equal(t, fantasy.Hex(), g.ID)
	})

	mt.Run("create", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		g, err := repo.CreateGenre(ctx, model.Genre{Name: "Fantasy"})
		require.NoError(t, err)
		require.Equal(t, "Fantasy", g.Name)
		require.True(t, repo.ValidID(g.ID))
	})

	mt.Run("create fails", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := repo.CreateGenre(ctx, model.Genre{Name: "Fantasy"})
		require.Error(t, err)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		require.ErrorIs(t, repo.UpdateGenre(ctx, model.Genre{ID: fantasy.Hex(), Name: "Fantasy"}), errs.ErrNotFound)
	})
}

func TestMongoRepository_GetBook(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}
	ctx := context.Background()
	bookID, authorID := primitive.NewObjectID(), primitive.NewObjectID()
	fantasy, poetry := primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("resolves author and keeps genre order", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "library.books", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: bookID},
			{Key: "title", Value: "The Name of the Wind"},
			{Key: "author", Value: authorID},
			{Key: "summary", Value: "Kvothe"},
			{Key: "isbn", Value: "9780756404079"},
			{Key: "genre", Value: bson.A{poetry, fantasy}},
			{Key: "authorDocs", Value: bson.A{bson.D{
				{Key: "_id", Value: authorID},
				{Key: "firstName", Value: "Patrick"},
				{Key: "lastName", Value: "Rothfuss"},
			}}},
			{Key: "genreDocs", Value: bson.A{
				bson.D{{Key: "_id", Value: fantasy}, {Key: "name", Value: "Fantasy"}},
				bson.D{{Key: "_id", Value: poetry}, {Key: "name", Value: "Poetry"}},
			}},
		}))

		b, err := repo.GetBook(ctx, bookID.Hex())
		require.NoError(t, err)
		require.Equal(t, authorID.Hex(), b.AuthorID)
		require.NotNil(t, b.Author)
		require.Equal(t, "Rothfuss, Patrick", b.Author.Name())
		require.Equal(t, []string{poetry.Hex(), fantasy.Hex()}, b.GenreIDs)
		require.Equal(t, []model.Genre{
			{ID: poetry.Hex(), Name: "Poetry"},
			{ID: fantasy.Hex(), Name: "Fantasy"},
		}, b.Genres)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "library.books", mtest.FirstBatch))

		_, err := repo.GetBook(ctx, bookID.Hex())
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	mt.Run("create rejects bad genre reference", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())

		_, err := repo.CreateBook(ctx, model.Book{Title: "T", AuthorID: authorID.Hex(), GenreIDs: []string{"x"}})
		require.ErrorIs(t, err, errs.ErrInvalidID)
	})
}

func TestMongoRepository_BookInstances(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	if mt.Client != nil {
		defer mt.Client.Disconnect(context.Background())
	}
	ctx := context.Background()
	copyID, bookID := primitive.NewObjectID(), primitive.NewObjectID()
	due := time.Date(2023, 10, 6, 0, 0, 0, 0, time.UTC)

	mt.Run("list", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "library.bookinstances", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: copyID},
			{Key: "book", Value: bookID},
			{Key: "imprint", Value: "Gollancz, 2011"},
			{Key: "status", Value: "Loaned"},
			{Key: "due_back", Value: due},
			{Key: "bookDocs", Value: bson.A{bson.D{
				{Key: "_id", Value: bookID},
				{Key: "title", Value: "The Wise Man's Fear"},
			}}},
		}))

		instances, err := repo.ListBookInstances(ctx)
		require.NoError(t, err)
		require.Len(t, instances, 1)
		bi := instances[0]
		require.Equal(t, model.StatusLoaned, bi.Status)
		require.True(t, bi.DueBack.Equal(due))
		require.NotNil(t, bi.Book)
		require.Equal(t, "The Wise Man's Fear", bi.Book.Title)
	})

	mt.Run("count available", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "library.bookinstances", mtest.FirstBatch, bson.D{
			{Key: "n", Value: int32(2)},
		}))

		n, err := repo.CountBookInstances(ctx, model.StatusAvailable)
		require.NoError(t, err)
		require.Equal(t, int64(2), n)
	})

	mt.Run("count empty collection", func(mt *mtest.T) {
		repo := repository.NewMongoRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "library.bookinstances", mtest.FirstBatch))

		n, err := repo.CountBookInstances(ctx, "")
		require.NoError(t, err)
		require.Zero(t, n)
	})
}
