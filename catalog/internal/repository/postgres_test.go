package repository

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/local-library/catalog/internal/errs"
	"github.com/Astemirdum/local-library/catalog/internal/model"
)

func TestPostgresRepository_ValidID(t *testing.T) {
	r := NewPostgresRepository(nil, zap.NewNop())
	tests := []struct {
		id   string
		want bool
	}{
		{id: uuid.NewString(), want: true},
		{id: "6BA7B810-9DAD-11D1-80B4-00C04FD430C8", want: true},
		{id: "64b7f0c2a1b2c3d4e5f60718", want: false},
		{id: "", want: false},
		{id: "urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8", want: false},
		{id: "{6ba7b810-9dad-11d1-80b4-00c04fd430c8}", want: false},
		{id: "6ba7b8109dad11d180b400c04fd430c8", want: false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, r.ValidID(tt.id), tt.id)
	}
}

func TestReference(t *testing.T) {
	fk := func(constraint string) error {
		return errors.Wrap(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: constraint}, "insert books")
	}
	tests := []struct {
		name      string
		err       error
		wantField string
	}{
		{name: "author", err: fk("books_author_id_fkey"), wantField: "author"},
		{name: "genre", err: fk("book_genres_genre_id_fkey"), wantField: "genre"},
		{name: "book", err: fk("book_instances_book_id_fkey"), wantField: "book"},
		{name: "unknown constraint", err: fk("other_fkey")},
		{name: "other code", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation}},
		{name: "nil", err: nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := reference(tt.err)
			var refErr *errs.ReferenceError
			if tt.wantField == "" {
				require.False(t, errors.As(got, &refErr))
				require.Equal(t, tt.err, got)
				return
			}
			require.True(t, errors.As(got, &refErr))
			require.Equal(t, tt.wantField, refErr.Field)
		})
	}
}

func TestBookSelect(t *testing.T) {
	query, args, err := bookSelect().Where(sq.Eq{"b.author_id": "a1"}).ToSql()
	require.NoError(t, err)
	require.Contains(t, query, "JOIN authors a on a.id = b.author_id")
	require.Contains(t, query, "LEFT JOIN book_genres bg on bg.book_id = b.id")
	require.Contains(t, query, "WHERE b.author_id = $1")
	require.Contains(t, query, "ORDER BY b.title")
	require.Equal(t, []interface{}{"a1"}, args)
}

func TestBookRow_Model(t *testing.T) {
	b := bookRow{ID: "b1", Title: "Dune", AuthorID: "a1", AuthorFirstName: "Frank", AuthorLastName: "Herbert"}.model()
	require.Equal(t, []string{}, b.GenreIDs)
	require.Equal(t, "Herbert, Frank", b.Author.Name())
	require.Equal(t, "/catalog/book/b1", b.URL())
}

func TestBookInstanceRow_Model(t *testing.T) {
	bi := bookInstanceRow{ID: "i1", BookID: "b1", Status: "Reserved", BookTitle: "Dune"}.model()
	require.Equal(t, model.StatusReserved, bi.Status)
	require.Equal(t, "Dune", bi.Book.Title)
}
