package service_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/local-library/catalog/internal/errs"
	"github.com/Astemirdum/local-library/catalog/internal/events"
	"github.com/Astemirdum/local-library/catalog/internal/model"
	"github.com/Astemirdum/local-library/catalog/internal/service"
	"github.com/Astemirdum/local-library/pkg/kafka"

	event_mocks "github.com/Astemirdum/local-library/catalog/internal/events/mocks"
	repo_mocks "github.com/Astemirdum/local-library/catalog/internal/repository/mocks"
)

const (
	authorID = "64b7f0c2a1b2c3d4e5f60718"
	genreID  = "64b7f0c2a1b2c3d4e5f60719"
	bookID   = "64b7f0c2a1b2c3d4e5f6071a"
	copyID   = "64b7f0c2a1b2c3d4e5f6071b"
)

func newService(t *testing.T) (*service.Service, *repo_mocks.MockRepository, *event_mocks.MockPublisher) {
	t.Helper()
	c := gomock.NewController(t)
	repo := repo_mocks.NewMockRepository(c)
	pub := event_mocks.NewMockPublisher(c)
	return service.NewService(repo, pub, zap.NewExample().Named("test")), repo, pub
}

func TestService_Counts(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		dbErr   error
		want    model.Counts
		wantErr bool
	}{
		{
			name: "ok",
			want: model.Counts{Books: 3, BookInstances: 5, BookInstancesAvailable: 2, Authors: 4, Genres: 1},
		},
		{
			name:    "err. count fails",
			dbErr:   errors.New("db internal"),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, repo, _ := newService(t)
			repo.EXPECT().CountBooks(gomock.Any()).Return(tt.want.Books, nil).AnyTimes()
			repo.EXPECT().CountBookInstances(gomock.Any(), model.Status("")).Return(tt.want.BookInstances, nil).AnyTimes()
			repo.EXPECT().CountBookInstances(gomock.Any(), model.StatusAvailable).Return(tt.want.BookInstancesAvailable, nil).AnyTimes()
			repo.EXPECT().CountAuthors(gomock.Any()).Return(tt.want.Authors, nil).AnyTimes()
			repo.EXPECT().CountGenres(gomock.Any()).Return(tt.want.Genres, tt.dbErr).AnyTimes()

			got, err := svc.Counts(context.Background())
			if tt.wantErr {
				require.ErrorIs(t, err, tt.dbErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestService_AuthorDetail(t *testing.T) {
	t.Parallel()
	t.Run("ok", func(t *testing.T) {
		svc, repo, _ := newService(t)
		author := model.Author{ID: authorID, FirstName: "Patrick", LastName: "Rothfuss"}
		books := []model.Book{{ID: bookID, Title: "The Name of the Wind"}}
		repo.EXPECT().ValidID(authorID).Return(true)
		repo.EXPECT().GetAuthor(gomock.Any(), authorID).Return(author, nil)
		repo.EXPECT().BooksByAuthor(gomock.Any(), authorID).Return(books, nil)

		d, err := svc.AuthorDetail(context.Background(), authorID)
		require.NoError(t, err)
		require.Equal(t, model.AuthorDetail{Author: author, Books: books}, d)
	})
	t.Run("err. invalid id", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().ValidID("nope").Return(false)

		_, err := svc.AuthorDetail(context.Background(), "nope")
		require.ErrorIs(t, err, errs.ErrInvalidID)
	})
	t.Run("err. not found", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().ValidID(authorID).Return(true)
		repo.EXPECT().GetAuthor(gomock.Any(), authorID).Return(model.Author{}, errs.ErrNotFound)
		repo.EXPECT().BooksByAuthor(gomock.Any(), authorID).Return(nil, nil).AnyTimes()

		_, err := svc.AuthorDetail(context.Background(), authorID)
		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestService_CreateAuthor(t *testing.T) {
	t.Parallel()
	svc, repo, pub := newService(t)
	in := model.Author{FirstName: "Ben", LastName: "Bova"}
	out := in
	out.ID = authorID
	repo.EXPECT().CreateAuthor(gomock.Any(), in).Return(out, nil)
	pub.EXPECT().Publish(gomock.Any(), events.EntityAuthor, kafka.ActionCreated, authorID)

	got, err := svc.CreateAuthor(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, out, got)
}

func TestService_UpdateAuthor(t *testing.T) {
	t.Parallel()
	t.Run("ok", func(t *testing.T) {
		svc, repo, pub := newService(t)
		a := model.Author{ID: authorID, FirstName: "Ben", LastName: "Bova"}
		repo.EXPECT().ValidID(authorID).Return(true)
		repo.EXPECT().UpdateAuthor(gomock.Any(), a).Return(nil)
		pub.EXPECT().Publish(gomock.Any(), events.EntityAuthor, kafka.ActionUpdated, authorID)

		require.NoError(t, svc.UpdateAuthor(context.Background(), a))
	})
	t.Run("err. missing record", func(t *testing.T) {
		svc, repo, _ := newService(t)
		a := model.Author{ID: authorID}
		repo.EXPECT().ValidID(authorID).Return(true)
		repo.EXPECT().UpdateAuthor(gomock.Any(), a).Return(errs.ErrNotFound)

		require.ErrorIs(t, svc.UpdateAuthor(context.Background(), a), errs.ErrNotFound)
	})
}

func TestService_DeleteAuthor(t *testing.T) {
	t.Parallel()
	author := model.Author{ID: authorID, FirstName: "Isaac", LastName: "Asimov"}
	tests := []struct {
		name         string
		mockBehavior func(r *repo_mocks.MockRepository, p *event_mocks.MockPublisher)
		wantBooks    int
		wantErr      error
	}{
		{
			name: "ok",
			mockBehavior: func(r *repo_mocks.MockRepository, p *event_mocks.MockPublisher) {
				r.EXPECT().ValidID(authorID).Return(true)
				r.EXPECT().GetAuthor(gomock.Any(), authorID).Return(author, nil)
				r.EXPECT().BooksByAuthor(gomock.Any(), authorID).Return(nil, nil)
				r.EXPECT().DeleteAuthor(gomock.Any(), authorID).Return(nil)
				p.EXPECT().Publish(gomock.Any(), events.EntityAuthor, kafka.ActionDeleted, authorID)
			},
		},
		{
			name: "err. has books",
			mockBehavior: func(r *repo_mocks.MockRepository, p *event_mocks.MockPublisher) {
				r.EXPECT().ValidID(authorID).Return(true)
				r.EXPECT().GetAuthor(gomock.Any(), authorID).Return(author, nil)
				r.EXPECT().BooksByAuthor(gomock.Any(), authorID).Return([]model.Book{{ID: bookID}}, nil)
			},
			wantBooks: 1,
			wantErr:   errs.ErrHasDependents,
		},
		{
			name: "err. missing",
			mockBehavior: func(r *repo_mocks.MockRepository, p *event_mocks.MockPublisher) {
				r.EXPECT().ValidID(authorID).Return(true)
				r.EXPECT().GetAuthor(gomock.Any(), authorID).Return(model.Author{}, errs.ErrNotFound)
				r.EXPECT().BooksByAuthor(gomock.Any(), authorID).Return(nil, nil).AnyTimes()
			},
			wantErr: errs.ErrNotFound,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, repo, pub := newService(t)
			tt.mockBehavior(repo, pub)

			d, err := svc.DeleteAuthor(context.Background(), authorID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Len(t, d.Books, tt.wantBooks)
				return
			}
			require.NoError(t, err)
			require.Equal(t, author, d.Author)
		})
	}
}

func TestService_CreateGenre(t *testing.T) {
	t.Parallel()
	t.Run("new", func(t *testing.T) {
		svc, repo, pub := newService(t)
		repo.EXPECT().FindGenreByName(gomock.Any(), "Fantasy").Return(model.Genre{}, errs.ErrNotFound)
		repo.EXPECT().CreateGenre(gomock.Any(), model.Genre{Name: "Fantasy"}).Return(model.Genre{ID: genreID, Name: "Fantasy"}, nil)
		pub.EXPECT().Publish(gomock.Any(), events.EntityGenre, kafka.ActionCreated, genreID)

		g, created, err := svc.CreateGenre(context.Background(), model.Genre{Name: "Fantasy"})
		require.NoError(t, err)
		require.True(t, created)
		require.Equal(t, genreID, g.ID)
	})
	t.Run("existing", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().FindGenreByName(gomock.Any(), "Fantasy").Return(model.Genre{ID: genreID, Name: "Fantasy"}, nil)

		g, created, err := svc.CreateGenre(context.Background(), model.Genre{Name: "Fantasy"})
		require.NoError(t, err)
		require.False(t, created)
		require.Equal(t, genreID, g.ID)
	})
	t.Run("err. lookup", func(t *testing.T) {
		svc, repo, _ := newService(t)
		dbErr := errors.New("db internal")
		repo.EXPECT().FindGenreByName(gomock.Any(), "Fantasy").Return(model.Genre{}, dbErr)

		_, _, err := svc.CreateGenre(context.Background(), model.Genre{Name: "Fantasy"})
		require.ErrorIs(t, err, dbErr)
	})
}

func TestService_DeleteGenre(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newService(t)
	repo.EXPECT().ValidID(genreID).Return(true)
	repo.EXPECT().GetGenre(gomock.Any(), genreID).Return(model.Genre{ID: genreID, Name: "Poetry"}, nil)
	repo.EXPECT().BooksByGenre(gomock.Any(), genreID).Return([]model.Book{{ID: bookID}}, nil)

	d, err := svc.DeleteGenre(context.Background(), genreID)
	require.ErrorIs(t, err, errs.ErrHasDependents)
	require.Equal(t, "Poetry", d.Genre.Name)
	require.Len(t, d.Books, 1)
}

func TestService_BookForm(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newService(t)
	authors := []model.Author{{ID: authorID}}
	genres := []model.Genre{{ID: genreID, Name: "Fantasy"}, {ID: "other", Name: "Poetry"}}
	repo.EXPECT().ListAuthors(gomock.Any()).Return(authors, nil)
	repo.EXPECT().ListGenres(gomock.Any()).Return(genres, nil)

	f, err := svc.BookForm(context.Background(), model.Book{Title: "T", GenreIDs: []string{genreID}})
	require.NoError(t, err)
	require.Equal(t, authors, f.Authors)
	require.Equal(t, []model.GenreOption{
		{Genre: genres[0], Checked: true},
		{Genre: genres[1]},
	}, f.Genres)
}

func TestService_EditBookForm(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newService(t)
	book := model.Book{ID: bookID, Title: "T", AuthorID: authorID, GenreIDs: []string{genreID}}
	repo.EXPECT().ValidID(bookID).Return(true)
	repo.EXPECT().GetBook(gomock.Any(), bookID).Return(book, nil)
	repo.EXPECT().ListAuthors(gomock.Any()).Return([]model.Author{{ID: authorID}}, nil)
	repo.EXPECT().ListGenres(gomock.Any()).Return([]model.Genre{{ID: genreID}}, nil)

	f, err := svc.EditBookForm(context.Background(), bookID)
	require.NoError(t, err)
	require.Equal(t, book, f.Book)
	require.True(t, f.Genres[0].Checked)
}

func TestService_DeleteBook(t *testing.T) {
	t.Parallel()
	t.Run("err. has copies", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().ValidID(bookID).Return(true)
		repo.EXPECT().GetBook(gomock.Any(), bookID).Return(model.Book{ID: bookID}, nil)
		repo.EXPECT().InstancesByBook(gomock.Any(), bookID).Return([]model.BookInstance{{ID: copyID}}, nil)

		d, err := svc.DeleteBook(context.Background(), bookID)
		require.ErrorIs(t, err, errs.ErrHasDependents)
		require.Len(t, d.Instances, 1)
	})
	t.Run("ok", func(t *testing.T) {
		svc, repo, pub := newService(t)
		repo.EXPECT().ValidID(bookID).Return(true)
		repo.EXPECT().GetBook(gomock.Any(), bookID).Return(model.Book{ID: bookID}, nil)
		repo.EXPECT().InstancesByBook(gomock.Any(), bookID).Return(nil, nil)
		repo.EXPECT().DeleteBook(gomock.Any(), bookID).Return(nil)
		pub.EXPECT().Publish(gomock.Any(), events.EntityBook, kafka.ActionDeleted, bookID)

		_, err := svc.DeleteBook(context.Background(), bookID)
		require.NoError(t, err)
	})
}

func TestService_DeleteBookInstance(t *testing.T) {
	t.Parallel()
	t.Run("ok", func(t *testing.T) {
		svc, repo, pub := newService(t)
		repo.EXPECT().ValidID(copyID).Return(true)
		repo.EXPECT().DeleteBookInstance(gomock.Any(), copyID).Return(nil)
		pub.EXPECT().Publish(gomock.Any(), events.EntityBookInstance, kafka.ActionDeleted, copyID)

		require.NoError(t, svc.DeleteBookInstance(context.Background(), copyID))
	})
	t.Run("err. invalid id", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.EXPECT().ValidID("x").Return(false)

		require.ErrorIs(t, svc.DeleteBookInstance(context.Background(), "x"), errs.ErrInvalidID)
	})
}

func TestService_EditBookInstanceForm(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newService(t)
	bi := model.BookInstance{ID: copyID, BookID: bookID, Imprint: "Gollancz, 2011", Status: model.StatusLoaned}
	books := []model.Book{{ID: bookID}}
	repo.EXPECT().ValidID(copyID).Return(true)
	repo.EXPECT().GetBookInstance(gomock.Any(), copyID).Return(bi, nil)
	repo.EXPECT().ListBooks(gomock.Any()).Return(books, nil)

	f, err := svc.EditBookInstanceForm(context.Background(), copyID)
	require.NoError(t, err)
	require.Equal(t, model.BookInstanceForm{BookInstance: bi, Books: books}, f)
}

func TestService_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	genre := model.Genre{ID: genreID, Name: "Poetry"}
	book := model.Book{ID: bookID, Title: "Dune", AuthorID: authorID, GenreIDs: []string{genreID}}
	bi := model.BookInstance{ID: copyID, BookID: bookID, Imprint: "Ace", Status: model.StatusLoaned}

	type mockBehavior func(repo *repo_mocks.MockRepository, pub *event_mocks.MockPublisher)
	tests := []struct {
		name         string
		mockBehavior mockBehavior
		update       func(svc *service.Service) error
		wantErr      error
		wantField    string
	}{
		{
			// FindGenreByName is not expected: renaming never dedupes
			name: "genre",
			mockBehavior: func(repo *repo_mocks.MockRepository, pub *event_mocks.MockPublisher) {
				repo.EXPECT().ValidID(genreID).Return(true)
				repo.EXPECT().UpdateGenre(gomock.Any(), genre).Return(nil)
				pub.EXPECT().Publish(gomock.Any(), events.EntityGenre, kafka.ActionUpdated, genreID)
			},
			update: func(svc *service.Service) error { return svc.UpdateGenre(ctx, genre) },
		},
		{
			name: "err. genre missing",
			mockBehavior: func(repo *repo_mocks.MockRepository, pub *event_mocks.MockPublisher) {
				repo.EXPECT().ValidID(genreID).Return(true)
				repo.EXPECT().UpdateGenre(gomock.Any(), genre).Return(errs.ErrNotFound)
			},
			update:  func(svc *service.Service) error { return svc.UpdateGenre(ctx, genre) },
			wantErr: errs.ErrNotFound,
		},
		{
			name: "err. genre invalid id",
			mockBehavior: func(repo *repo_mocks.MockRepository, pub *event_mocks.MockPublisher) {
				repo.EXPECT().ValidID("nope").Return(false)
			},
			update:  func(svc *service.Service) error { return svc.UpdateGenre(ctx, model.Genre{ID: "nope", Name: "Poetry"}) },
			wantErr: errs.ErrInvalidID,
		},
		{
			name: "book",
			mockBehavior: func(repo *repo_mocks.MockRepository, pub *event_mocks.MockPublisher) {
				repo.EXPECT().ValidID(bookID).Return(true)
				repo.EXPECT().UpdateBook(gomock.Any(), book).Return(nil)
				pub.EXPECT().Publish(gomock.Any(), events.EntityBook, kafka.ActionUpdated, bookID)
			},
			update: func(svc *service.Service) error { return svc.UpdateBook(ctx, book) },
		},
		{
			name: "err. book missing",
			mockBehavior: func(repo *repo_mocks.MockRepository, pub *event_mocks.MockPublisher) {
				repo.EXPECT().ValidID(bookID).Return(true)
				repo.EXPECT().UpdateBook(gomock.Any(), book).Return(errs.ErrNotFound)
			},
			update:  func(svc *service.Service) error { return svc.UpdateBook(ctx, book) },
			wantErr: errs.ErrNotFound,
		},
		{
			name: "err. book invalid id",
			mockBehavior: func(repo *repo_mocks.MockRepository, pub *event_mocks.MockPublisher) {
				repo.EXPECT().ValidID("nope").Return(false)
			},
			update:  func(svc *service.Service) error { return svc.UpdateBook(ctx, model.Book{ID: "nope"}) },
			wantErr: errs.ErrInvalidID,
		},
		{
			name: "bookinstance",
			mockBehavior: func(repo *repo_mocks.MockRepository, pub *event_mocks.MockPublisher) {
				repo.EXPECT().ValidID(copyID).Return(true)
				repo.EXPECT().UpdateBookInstance(gomock.Any(), bi).Return(nil)
				pub.EXPECT().Publish(gomock.Any(), events.EntityBookInstance, kafka.ActionUpdated, copyID)
			},
			update: func(svc *service.Service) error { return svc.UpdateBookInstance(ctx, bi) },
		},
		{
			name: "err. bookinstance missing",
			mockBehavior: func(repo *repo_mocks.MockRepository, pub *event_mocks.MockPublisher) {
				repo.EXPECT().ValidID(copyID).Return(true)
				repo.EXPECT().UpdateBookInstance(gomock.Any(), bi).Return(errs.ErrNotFound)
			},
			update:  func(svc *service.Service) error { return svc.UpdateBookInstance(ctx, bi) },
			wantErr: errs.ErrNotFound,
		},
		{
			name: "err. bookinstance invalid id",
			mockBehavior: func(repo *repo_mocks.MockRepository, pub *event_mocks.MockPublisher) {
				repo.EXPECT().ValidID("nope").Return(false)
			},
			update:  func(svc *service.Service) error { return svc.UpdateBookInstance(ctx, model.BookInstance{ID: "nope"}) },
			wantErr: errs.ErrInvalidID,
		},
		{
			name: "err. bookinstance unknown book",
			mockBehavior: func(repo *repo_mocks.MockRepository, pub *event_mocks.MockPublisher) {
				repo.EXPECT().ValidID(copyID).Return(true)
				repo.EXPECT().UpdateBookInstance(gomock.Any(), bi).
					Return(&errs.ReferenceError{Field: "book", Err: errors.New("fk")})
			},
			update:    func(svc *service.Service) error { return svc.UpdateBookInstance(ctx, bi) },
			wantField: "book",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, repo, pub := newService(t)
			tt.mockBehavior(repo, pub)

			err := tt.update(svc)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantField != "":
				var refErr *errs.ReferenceError
				require.True(t, errors.As(err, &refErr))
				require.Equal(t, tt.wantField, refErr.Field)
			default:
				require.NoError(t, err)
			}
		})
	}
}
