package repository

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/local-library/catalog/internal/errs"
	"github.com/Astemirdum/local-library/catalog/internal/model"
)

const (
	authorsTableName       = `authors`
	genresTableName        = `genres`
	booksTableName         = `books`
	bookGenresTableName    = `book_genres`
	bookInstancesTableName = `book_instances`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type postgresRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

var _ Repository = (*postgresRepository)(nil)

func NewPostgresRepository(db *pgxpool.Pool, log *zap.Logger) *postgresRepository {
	return &postgresRepository{
		db:  db,
		log: log.Named("repo"),
	}
}

type authorRow struct {
	ID          string     `db:"id"`
	FirstName   string     `db:"first_name"`
	LastName    string     `db:"last_name"`
	DateOfBirth *time.Time `db:"date_of_birth"`
	DateOfDeath *time.Time `db:"date_of_death"`
}

func (r authorRow) model() model.Author {
	return model.Author{
		ID:          r.ID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: r.DateOfBirth,
		DateOfDeath: r.DateOfDeath,
	}
}

type genreRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

type bookRow struct {
	ID                string     `db:"id"`
	Title             string     `db:"title"`
	AuthorID          string     `db:"author_id"`
	Summary           string     `db:"summary"`
	ISBN              string     `db:"isbn"`
	GenreIDs          []string   `db:"genre_ids"`
	AuthorFirstName   string     `db:"author_first_name"`
	AuthorLastName    string     `db:"author_last_name"`
	AuthorDateOfBirth *time.Time `db:"author_date_of_birth"`
	AuthorDateOfDeath *time.Time `db:"author_date_of_death"`
}

func (r bookRow) model() model.Book {
	genreIDs := r.GenreIDs
	if genreIDs == nil {
		genreIDs = []string{}
	}
	return model.Book{
		ID:       r.ID,
		Title:    r.Title,
		AuthorID: r.AuthorID,
		Summary:  r.Summary,
		ISBN:     r.ISBN,
		GenreIDs: genreIDs,
		Author: &model.Author{
			ID:          r.AuthorID,
			FirstName:   r.AuthorFirstName,
			LastName:    r.AuthorLastName,
			DateOfBirth: r.AuthorDateOfBirth,
			DateOfDeath: r.AuthorDateOfDeath,
		},
	}
}

type bookInstanceRow struct {
	ID        string    `db:"id"`
	BookID    string    `db:"book_id"`
	Imprint   string    `db:"imprint"`
	Status    string    `db:"status"`
	DueBack   time.Time `db:"due_back"`
	BookTitle string    `db:"book_title"`
}

func (r bookInstanceRow) model() model.BookInstance {
	return model.BookInstance{
		ID:      r.ID,
		BookID:  r.BookID,
		Imprint: r.Imprint,
		Status:  model.Status(r.Status),
		DueBack: r.DueBack,
		Book:    &model.Book{ID: r.BookID, Title: r.BookTitle},
	}
}

// ValidID accepts only the canonical hyphenated form; uuid.Parse also takes
// urn:uuid:, braced and bare-hex forms that the uuid column type rejects.
func (r *postgresRepository) ValidID(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.String() == strings.ToLower(id)
}

func collect[T any](ctx context.Context, db *pgxpool.Pool, q sq.Sqlizer) ([]T, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "db.Query")
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, errors.Wrap(err, "pgx.CollectRows")
	}
	return items, nil
}

func collectOne[T any](ctx context.Context, db *pgxpool.Pool, q sq.Sqlizer) (T, error) {
	var zero T
	query, args, err := q.ToSql()
	if err != nil {
		return zero, err
	}
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return zero, errors.Wrap(err, "db.Query")
	}
	defer rows.Close()

	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, errs.ErrNotFound
		}
		return zero, errors.Wrap(err, "pgx.CollectOneRow")
	}
	return item, nil
}

// exec runs a write and reports ErrNotFound when no row was affected.
func (r *postgresRepository) exec(ctx context.Context, q sq.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "db.Exec")
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// delete removes a row by id. A foreign key violation means another row
// still references it.
func (r *postgresRepository) delete(ctx context.Context, table, id string) error {
	err := r.exec(ctx, qb.Delete(table).Where(sq.Eq{"id": id}))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return errs.ErrHasDependents
	}
	return err
}

// referenceFields maps the foreign keys a write can violate to the form
// field naming the missing record.
var referenceFields = map[string]string{
	"books_author_id_fkey":        "author",
	"book_genres_genre_id_fkey":   "genre",
	"book_instances_book_id_fkey": "book",
}

// reference turns a foreign key violation on insert or update into
// *errs.ReferenceError.
func reference(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.ForeignKeyViolation {
		return err
	}
	field, ok := referenceFields[pgErr.ConstraintName]
	if !ok {
		return err
	}
	return &errs.ReferenceError{Field: field, Err: err}
}

func (r *postgresRepository) count(ctx context.Context, q sq.SelectBuilder) (int64, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count")
	}
	return n, nil
}

func authorSelect() sq.SelectBuilder {
	return qb.Select("id", "first_name", "last_name", "date_of_birth", "date_of_death").
		From(authorsTableName)
}

func (r *postgresRepository) ListAuthors(ctx context.Context) ([]model.Author, error) {
	rows, err := collect[authorRow](ctx, r.db, authorSelect().OrderBy("last_name"))
	if err != nil {
		return nil, err
	}
	authors := make([]model.Author, 0, len(rows))
	for _, row := range rows {
		authors = append(authors, row.model())
	}
	return authors, nil
}

func (r *postgresRepository) GetAuthor(ctx context.Context, id string) (model.Author, error) {
	row, err := collectOne[authorRow](ctx, r.db, authorSelect().Where(sq.Eq{"id": id}).Limit(1))
	if err != nil {
		return model.Author{}, err
	}
	return row.model(), nil
}

func (r *postgresRepository) CreateAuthor(ctx context.Context, author model.Author) (model.Author, error) {
	author.ID = uuid.NewString()
	q := qb.Insert(authorsTableName).
		Columns("id", "first_name", "last_name", "date_of_birth", "date_of_death").
		Values(author.ID, author.FirstName, author.LastName, author.DateOfBirth, author.DateOfDeath)
	if err := r.exec(ctx, q); err != nil {
		r.log.Error("CreateAuthor", zap.Error(err))
		return model.Author{}, err
	}
	return author, nil
}

func (r *postgresRepository) UpdateAuthor(ctx context.Context, author model.Author) error {
	return r.exec(ctx, qb.Update(authorsTableName).
		Set("first_name", author.FirstName).
		Set("last_name", author.LastName).
		Set("date_of_birth", author.DateOfBirth).
		Set("date_of_death", author.DateOfDeath).
		Where(sq.Eq{"id": author.ID}))
}

func (r *postgresRepository) DeleteAuthor(ctx context.Context, id string) error {
	return r.delete(ctx, authorsTableName, id)
}

func (r *postgresRepository) CountAuthors(ctx context.Context) (int64, error) {
	return r.count(ctx, qb.Select("count(*)").From(authorsTableName))
}

func genreSelect() sq.SelectBuilder {
	return qb.Select("id", "name").From(genresTableName)
}

func genresFrom(rows []genreRow) []model.Genre {
	genres := make([]model.Genre, 0, len(rows))
	for _, row := range rows {
		genres = append(genres, model.Genre{ID: row.ID, Name: row.Name})
	}
	return genres
}

func (r *postgresRepository) ListGenres(ctx context.Context) ([]model.Genre, error) {
	rows, err := collect[genreRow](ctx, r.db, genreSelect().OrderBy("name"))
	if err != nil {
		return nil, err
	}
	return genresFrom(rows), nil
}

func (r *postgresRepository) GetGenre(ctx context.Context, id string) (model.Genre, error) {
	row, err := collectOne[genreRow](ctx, r.db, genreSelect().Where(sq.Eq{"id": id}).Limit(1))
	if err != nil {
		return model.Genre{}, err
	}
	return model.Genre{ID: row.ID, Name: row.Name}, nil
}

func (r *postgresRepository) FindGenreByName(ctx context.Context, name string) (model.Genre, error) {
	row, err := collectOne[genreRow](ctx, r.db, genreSelect().Where(sq.Eq{"name": name}).Limit(1))
	if err != nil {
		return model.Genre{}, err
	}
	return model.Genre{ID: row.ID, Name: row.Name}, nil
}

func (r *postgresRepository) CreateGenre(ctx context.Context, genre model.Genre) (model.Genre, error) {
	genre.ID = uuid.NewString()
	q := qb.Insert(genresTableName).Columns("id", "name").Values(genre.ID, genre.Name)
	if err := r.exec(ctx, q); err != nil {
		r.log.Error("CreateGenre", zap.Error(err))
		return model.Genre{}, err
	}
	return genre, nil
}

func (r *postgresRepository) UpdateGenre(ctx context.Context, genre model.Genre) error {
	return r.exec(ctx, qb.Update(genresTableName).Set("name", genre.Name).Where(sq.Eq{"id": genre.ID}))
}

func (r *postgresRepository) DeleteGenre(ctx context.Context, id string) error {
	return r.delete(ctx, genresTableName, id)
}

func (r *postgresRepository) CountGenres(ctx context.Context) (int64, error) {
	return r.count(ctx, qb.Select("count(*)").From(genresTableName))
}

func bookSelect() sq.SelectBuilder {
	return qb.Select(
		"b.id", "b.title", "b.author_id", "b.summary", "b.isbn",
		"coalesce(array_agg(bg.genre_id::text order by bg.position) filter (where bg.genre_id is not null), '{}') as genre_ids",
		"a.first_name as author_first_name",
		"a.last_name as author_last_name",
		"a.date_of_birth as author_date_of_birth",
		"a.date_of_death as author_date_of_death",
	).
		From(booksTableName + " b").
		Join(authorsTableName + " a on a.id = b.author_id").
		LeftJoin(bookGenresTableName + " bg on bg.book_id = b.id").
		GroupBy("b.id", "a.id").
		OrderBy("b.title")
}

func (r *postgresRepository) books(ctx context.Context, q sq.SelectBuilder) ([]model.Book, error) {
	rows, err := collect[bookRow](ctx, r.db, q)
	if err != nil {
		return nil, err
	}
	books := make([]model.Book, 0, len(rows))
	for _, row := range rows {
		books = append(books, row.model())
	}
	return books, nil
}

func (r *postgresRepository) ListBooks(ctx context.Context) ([]model.Book, error) {
	return r.books(ctx, bookSelect())
}

func (r *postgresRepository) GetBook(ctx context.Context, id string) (model.Book, error) {
	row, err := collectOne[bookRow](ctx, r.db, bookSelect().Where(sq.Eq{"b.id": id}))
	if err != nil {
		return model.Book{}, err
	}
	book := row.model()

	genres, err := collect[genreRow](ctx, r.db, qb.Select("g.id", "g.name").
		From(genresTableName+" g").
		Join(bookGenresTableName+" bg on bg.genre_id = g.id").
		Where(sq.Eq{"bg.book_id": id}).
		OrderBy("bg.position"))
	if err != nil {
		return model.Book{}, err
	}
	book.Genres = genresFrom(genres)
	return book, nil
}

func (r *postgresRepository) BooksByAuthor(ctx context.Context, authorID string) ([]model.Book, error) {
	return r.books(ctx, bookSelect().Where(sq.Eq{"b.author_id": authorID}))
}

func (r *postgresRepository) BooksByGenre(ctx context.Context, genreID string) ([]model.Book, error) {
	return r.books(ctx, bookSelect().Where(sq.Expr(
		"exists (select 1 from "+bookGenresTableName+" x where x.book_id = b.id and x.genre_id = ?)", genreID)))
}

func insertBookGenres(ctx context.Context, tx pgx.Tx, bookID string, genreIDs []string) error {
	if len(genreIDs) == 0 {
		return nil
	}
	q := qb.Insert(bookGenresTableName).Columns("book_id", "genre_id", "position")
	seen := make(map[string]struct{}, len(genreIDs))
	for i, id := range genreIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		q = q.Values(bookID, id, i)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return errors.Wrap(err, "insert book_genres")
	}
	return nil
}

func (r *postgresRepository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	book.ID = uuid.NewString()
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query, args, err := qb.Insert(booksTableName).
			Columns("id", "title", "author_id", "summary", "isbn").
			Values(book.ID, book.Title, book.AuthorID, book.Summary, book.ISBN).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return errors.Wrap(err, "insert books")
		}
		return insertBookGenres(ctx, tx, book.ID, book.GenreIDs)
	})
	if err != nil {
		r.log.Error("CreateBook", zap.Error(err))
		return model.Book{}, reference(err)
	}
	return book, nil
}

func (r *postgresRepository) UpdateBook(ctx context.Context, book model.Book) error {
	return reference(r.updateBook(ctx, book))
}

func (r *postgresRepository) updateBook(ctx context.Context, book model.Book) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query, args, err := qb.Update(booksTableName).
			Set("title", book.Title).
			Set("author_id", book.AuthorID).
			Set("summary", book.Summary).
			Set("isbn", book.ISBN).
			Where(sq.Eq{"id": book.ID}).
			ToSql()
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return errors.Wrap(err, "update books")
		}
		if tag.RowsAffected() == 0 {
			return errs.ErrNotFound
		}

		query, args, err = qb.Delete(bookGenresTableName).Where(sq.Eq{"book_id": book.ID}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return errors.Wrap(err, "delete book_genres")
		}
		return insertBookGenres(ctx, tx, book.ID, book.GenreIDs)
	})
}

func (r *postgresRepository) DeleteBook(ctx context.Context, id string) error {
	return r.delete(ctx, booksTableName, id)
}

func (r *postgresRepository) CountBooks(ctx context.Context) (int64, error) {
	return r.count(ctx, qb.Select("count(*)").From(booksTableName))
}

func bookInstanceSelect() sq.SelectBuilder {
	return qb.Select("bi.id", "bi.book_id", "bi.imprint", "bi.status", "bi.due_back", "b.title as book_title").
		From(bookInstancesTableName + " bi").
		Join(booksTableName + " b on b.id = bi.book_id")
}

func (r *postgresRepository) instances(ctx context.Context, q sq.SelectBuilder) ([]model.BookInstance, error) {
	rows, err := collect[bookInstanceRow](ctx, r.db, q)
	if err != nil {
		return nil, err
	}
	instances := make([]model.BookInstance, 0, len(rows))
	for _, row := range rows {
		instances = append(instances, row.model())
	}
	return instances, nil
}

func (r *postgresRepository) ListBookInstances(ctx context.Context) ([]model.BookInstance, error) {
	return r.instances(ctx, bookInstanceSelect())
}

func (r *postgresRepository) GetBookInstance(ctx context.Context, id string) (model.BookInstance, error) {
	row, err := collectOne[bookInstanceRow](ctx, r.db, bookInstanceSelect().Where(sq.Eq{"bi.id": id}).Limit(1))
	if err != nil {
		return model.BookInstance{}, err
	}
	return row.model(), nil
}

func (r *postgresRepository) InstancesByBook(ctx context.Context, bookID string) ([]model.BookInstance, error) {
	return r.instances(ctx, bookInstanceSelect().Where(sq.Eq{"bi.book_id": bookID}))
}

func (r *postgresRepository) CreateBookInstance(ctx context.Context, bi model.BookInstance) (model.BookInstance, error) {
	bi.ID = uuid.NewString()
	q := qb.Insert(bookInstancesTableName).
		Columns("id", "book_id", "imprint", "status", "due_back").
		Values(bi.ID, bi.BookID, bi.Imprint, string(bi.Status), bi.DueBack)
	if err := r.exec(ctx, q); err != nil {
		r.log.Error("CreateBookInstance", zap.Error(err))
		return model.BookInstance{}, reference(err)
	}
	return bi, nil
}

func (r *postgresRepository) UpdateBookInstance(ctx context.Context, bi model.BookInstance) error {
	return reference(r.exec(ctx, qb.Update(bookInstancesTableName).
		Set("book_id", bi.BookID).
		Set("imprint", bi.Imprint).
		Set("status", string(bi.Status)).
		Set("due_back", bi.DueBack).
		Where(sq.Eq{"id": bi.ID})))
}

func (r *postgresRepository) DeleteBookInstance(ctx context.Context, id string) error {
	return r.delete(ctx, bookInstancesTableName, id)
}

func (r *postgresRepository) CountBookInstances(ctx context.Context, status model.Status) (int64, error) {
	q := qb.Select("count(*)").From(bookInstancesTableName)
	if status != "" {
		q = q.Where(sq.Eq{"status": string(status)})
	}
	return r.count(ctx, q)
}
