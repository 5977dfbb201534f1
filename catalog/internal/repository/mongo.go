package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Astemirdum/local-library/catalog/internal/errs"
	"github.com/Astemirdum/local-library/catalog/internal/model"
)

const (
	authorsCollection       = "authors"
	genresCollection        = "genres"
	booksCollection         = "books"
	bookInstancesCollection = "bookinstances"
)

type mongoRepository struct {
	db  *mongo.Database
	log *zap.Logger
}

var _ Repository = (*mongoRepository)(nil)

func NewMongoRepository(db *mongo.Database, log *zap.Logger) *mongoRepository {
	return &mongoRepository{
		db:  db,
		log: log.Named("repo"),
	}
}

type authorDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	FirstName   string             `bson:"firstName"`
	LastName    string             `bson:"lastName"`
	DateOfBirth *time.Time         `bson:"dateOfBirth,omitempty"`
	DateOfDeath *time.Time         `bson:"dateOfDeath,omitempty"`
}

func (d authorDoc) model() model.Author {
	return model.Author{
		ID:          d.ID.Hex(),
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		DateOfBirth: d.DateOfBirth,
		DateOfDeath: d.DateOfDeath,
	}
}

type genreDoc struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

func (d genreDoc) model() model.Genre {
	return model.Genre{ID: d.ID.Hex(), Name: d.Name}
}

type bookDoc struct {
	ID      primitive.ObjectID   `bson:"_id,omitempty"`
	Title   string               `bson:"title"`
	Author  primitive.ObjectID   `bson:"author"`
	Summary string               `bson:"summary"`
	ISBN    string               `bson:"isbn"`
	Genre   []primitive.ObjectID `bson:"genre"`

	// filled by $lookup stages
	AuthorDocs []authorDoc `bson:"authorDocs,omitempty"`
	GenreDocs  []genreDoc  `bson:"genreDocs,omitempty"`
}

func (d bookDoc) model() model.Book {
	b := model.Book{
		ID:       d.ID.Hex(),
		Title:    d.Title,
		AuthorID: d.Author.Hex(),
		Summary:  d.Summary,
		ISBN:     d.ISBN,
		GenreIDs: make([]string, 0, len(d.Genre)),
	}
	for _, g := range d.Genre {
		b.GenreIDs = append(b.GenreIDs, g.Hex())
	}
	if len(d.AuthorDocs) > 0 {
		a := d.AuthorDocs[0].model()
		b.Author = &a
	}
	if d.GenreDocs != nil {
		// $lookup does not keep the order of the genre array.
		byID := make(map[primitive.ObjectID]genreDoc, len(d.GenreDocs))
		for _, g := range d.GenreDocs {
			byID[g.ID] = g
		}
		b.Genres = make([]model.Genre, 0, len(d.GenreDocs))
		for _, id := range d.Genre {
			if g, ok := byID[id]; ok {
				b.Genres = append(b.Genres, g.model())
			}
		}
	}
	return b
}

type bookInstanceDoc struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Book    primitive.ObjectID `bson:"book"`
	Imprint string             `bson:"imprint"`
	Status  string             `bson:"status"`
	DueBack time.Time          `bson:"due_back"`

	BookDocs []bookDoc `bson:"bookDocs,omitempty"`
}

func (d bookInstanceDoc) model() model.BookInstance {
	bi := model.BookInstance{
		ID:      d.ID.Hex(),
		BookID:  d.Book.Hex(),
		Imprint: d.Imprint,
		Status:  model.Status(d.Status),
		DueBack: d.DueBack,
	}
	if len(d.BookDocs) > 0 {
		b := d.BookDocs[0].model()
		bi.Book = &b
	}
	return bi
}

func (r *mongoRepository) ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errs.ErrInvalidID
	}
	return oid, nil
}

func objectIDs(ids []string) ([]primitive.ObjectID, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := objectID(id)
		if err != nil {
			return nil, err
		}
		oids = append(oids, oid)
	}
	return oids, nil
}

func lookup(from, localField, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: as},
	}}}
}

func matchID(oid primitive.ObjectID) bson.D {
	return bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: oid}}}}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "%s.Find", coll.Name())
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "%s.Find cursor", coll.Name())
	}
	return docs, nil
}

func aggregateAll[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrapf(err, "%s.Aggregate", coll.Name())
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "%s.Aggregate cursor", coll.Name())
	}
	return docs, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) (T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, errs.ErrNotFound
		}
		return doc, errors.Wrapf(err, "%s.FindOne", coll.Name())
	}
	return doc, nil
}

func replaceByID(ctx context.Context, coll *mongo.Collection, oid primitive.ObjectID, doc interface{}) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return errors.Wrapf(err, "%s.ReplaceOne", coll.Name())
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Wrapf(err, "%s.DeleteOne", coll.Name())
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func count(ctx context.Context, coll *mongo.Collection, filter interface{}) (int64, error) {
	n, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Wrapf(err, "%s.CountDocuments", coll.Name())
	}
	return n, nil
}

func (r *mongoRepository) ListAuthors(ctx context.Context) ([]model.Author, error) {
	docs, err := findAll[authorDoc](ctx, r.db.Collection(authorsCollection), bson.D{},
		options.Find().SetSort(bson.D{{Key: "lastName", Value: 1}}))
	if err != nil {
		return nil, err
	}
	authors := make([]model.Author, 0, len(docs))
	for _, d := range docs {
		authors = append(authors, d.model())
	}
	return authors, nil
}

func (r *mongoRepository) GetAuthor(ctx context.Context, id string) (model.Author, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Author{}, err
	}
	doc, err := findOne[authorDoc](ctx, r.db.Collection(authorsCollection), bson.M{"_id": oid})
	if err != nil {
		return model.Author{}, err
	}
	return doc.model(), nil
}

func (r *mongoRepository) CreateAuthor(ctx context.Context, author model.Author) (model.Author, error) {
	doc := authorDoc{
		ID:          primitive.NewObjectID(),
		FirstName:   author.FirstName,
		LastName:    author.LastName,
		DateOfBirth: author.DateOfBirth,
		DateOfDeath: author.DateOfDeath,
	}
	if _, err := r.db.Collection(authorsCollection).InsertOne(ctx, doc); err != nil {
		r.log.Error("CreateAuthor", zap.Error(err))
		return model.Author{}, errors.Wrap(err, "authors.InsertOne")
	}
	return doc.model(), nil
}

func (r *mongoRepository) UpdateAuthor(ctx context.Context, author model.Author) error {
	oid, err := objectID(author.ID)
	if err != nil {
		return err
	}
	return replaceByID(ctx, r.db.Collection(authorsCollection), oid, authorDoc{
		ID:          oid,
		FirstName:   author.FirstName,
		LastName:    author.LastName,
		DateOfBirth: author.DateOfBirth,
		DateOfDeath: author.DateOfDeath,
	})
}

func (r *mongoRepository) DeleteAuthor(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db.Collection(authorsCollection), id)
}

func (r *mongoRepository) CountAuthors(ctx context.Context) (int64, error) {
	return count(ctx, r.db.Collection(authorsCollection), bson.D{})
}

func (r *mongoRepository) ListGenres(ctx context.Context) ([]model.Genre, error) {
	docs, err := findAll[genreDoc](ctx, r.db.Collection(genresCollection), bson.D{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	genres := make([]model.Genre, 0, len(docs))
	for _, d := range docs {
		genres = append(genres, d.model())
	}
	return genres, nil
}

func (r *mongoRepository) GetGenre(ctx context.Context, id string) (model.Genre, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Genre{}, err
	}
	doc, err := findOne[genreDoc](ctx, r.db.Collection(genresCollection), bson.M{"_id": oid})
	if err != nil {
		return model.Genre{}, err
	}
	return doc.model(), nil
}

func (r *mongoRepository) FindGenreByName(ctx context.Context, name string) (model.Genre, error) {
	doc, err := findOne[genreDoc](ctx, r.db.Collection(genresCollection), bson.M{"name": name})
	if err != nil {
		return model.Genre{}, err
	}
	return doc.model(), nil
}

func (r *mongoRepository) CreateGenre(ctx context.Context, genre model.Genre) (model.Genre, error) {
	doc := genreDoc{ID: primitive.NewObjectID(), Name: genre.Name}
	if _, err := r.db.Collection(genresCollection).InsertOne(ctx, doc); err != nil {
		r.log.Error("CreateGenre", zap.Error(err))
		return model.Genre{}, errors.Wrap(err, "genres.InsertOne")
	}
	return doc.model(), nil
}

func (r *mongoRepository) UpdateGenre(ctx context.Context, genre model.Genre) error {
	oid, err := objectID(genre.ID)
	if err != nil {
		return err
	}
	return replaceByID(ctx, r.db.Collection(genresCollection), oid, genreDoc{ID: oid, Name: genre.Name})
}

func (r *mongoRepository) DeleteGenre(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db.Collection(genresCollection), id)
}

func (r *mongoRepository) CountGenres(ctx context.Context) (int64, error) {
	return count(ctx, r.db.Collection(genresCollection), bson.D{})
}

func (r *mongoRepository) booksFrom(docs []bookDoc) []model.Book {
	books := make([]model.Book, 0, len(docs))
	for _, d := range docs {
		books = append(books, d.model())
	}
	return books
}

func (r *mongoRepository) ListBooks(ctx context.Context) ([]model.Book, error) {
	docs, err := aggregateAll[bookDoc](ctx, r.db.Collection(booksCollection), mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "title", Value: 1}}}},
		lookup(authorsCollection, "author", "authorDocs"),
	})
	if err != nil {
		return nil, err
	}
	return r.booksFrom(docs), nil
}

func (r *mongoRepository) GetBook(ctx context.Context, id string) (model.Book, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Book{}, err
	}
	docs, err := aggregateAll[bookDoc](ctx, r.db.Collection(booksCollection), mongo.Pipeline{
		matchID(oid),
		{{Key: "$limit", Value: 1}},
		lookup(authorsCollection, "author", "authorDocs"),
		lookup(genresCollection, "genre", "genreDocs"),
	})
	if err != nil {
		return model.Book{}, err
	}
	if len(docs) == 0 {
		return model.Book{}, errs.ErrNotFound
	}
	return docs[0].model(), nil
}

func (r *mongoRepository) BooksByAuthor(ctx context.Context, authorID string) ([]model.Book, error) {
	oid, err := objectID(authorID)
	if err != nil {
		return nil, err
	}
	docs, err := findAll[bookDoc](ctx, r.db.Collection(booksCollection), bson.M{"author": oid},
		options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return r.booksFrom(docs), nil
}

func (r *mongoRepository) BooksByGenre(ctx context.Context, genreID string) ([]model.Book, error) {
	oid, err := objectID(genreID)
	if err != nil {
		return nil, err
	}
	docs, err := findAll[bookDoc](ctx, r.db.Collection(booksCollection), bson.M{"genre": oid},
		options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return r.booksFrom(docs), nil
}

func newBookDoc(book model.Book) (bookDoc, error) {
	author, err := objectID(book.AuthorID)
	if err != nil {
		return bookDoc{}, err
	}
	genres, err := objectIDs(book.GenreIDs)
	if err != nil {
		return bookDoc{}, err
	}
	return bookDoc{
		Title:   book.Title,
		Author:  author,
		Summary: book.Summary,
		ISBN:    book.ISBN,
		Genre:   genres,
	}, nil
}

func (r *mongoRepository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	doc, err := newBookDoc(book)
	if err != nil {
		return model.Book{}, err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := r.db.Collection(booksCollection).InsertOne(ctx, doc); err != nil {
		r.log.Error("CreateBook", zap.Error(err))
		return model.Book{}, errors.Wrap(err, "books.InsertOne")
	}
	return doc.model(), nil
}

func (r *mongoRepository) UpdateBook(ctx context.Context, book model.Book) error {
	oid, err := objectID(book.ID)
	if err != nil {
		return err
	}
	doc, err := newBookDoc(book)
	if err != nil {
		return err
	}
	doc.ID = oid
	return replaceByID(ctx, r.db.Collection(booksCollection), oid, doc)
}

func (r *mongoRepository) DeleteBook(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db.Collection(booksCollection), id)
}

func (r *mongoRepository) CountBooks(ctx context.Context) (int64, error) {
	return count(ctx, r.db.Collection(booksCollection), bson.D{})
}

func (r *mongoRepository) instancesFrom(docs []bookInstanceDoc) []model.BookInstance {
	instances := make([]model.BookInstance, 0, len(docs))
	for _, d := range docs {
		instances = append(instances, d.model())
	}
	return instances
}

func (r *mongoRepository) ListBookInstances(ctx context.Context) ([]model.BookInstance, error) {
	docs, err := aggregateAll[bookInstanceDoc](ctx, r.db.Collection(bookInstancesCollection), mongo.Pipeline{
		lookup(booksCollection, "book", "bookDocs"),
	})
	if err != nil {
		return nil, err
	}
	return r.instancesFrom(docs), nil
}

func (r *mongoRepository) GetBookInstance(ctx context.Context, id string) (model.BookInstance, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.BookInstance{}, err
	}
	docs, err := aggregateAll[bookInstanceDoc](ctx, r.db.Collection(bookInstancesCollection), mongo.Pipeline{
		matchID(oid),
		{{Key: "$limit", Value: 1}},
		lookup(booksCollection, "book", "bookDocs"),
	})
	if err != nil {
		return model.BookInstance{}, err
	}
	if len(docs) == 0 {
		return model.BookInstance{}, errs.ErrNotFound
	}
	return docs[0].model(), nil
}

func (r *mongoRepository) InstancesByBook(ctx context.Context, bookID string) ([]model.BookInstance, error) {
	oid, err := objectID(bookID)
	if err != nil {
		return nil, err
	}
	docs, err := findAll[bookInstanceDoc](ctx, r.db.Collection(bookInstancesCollection), bson.M{"book": oid})
	if err != nil {
		return nil, err
	}
	return r.instancesFrom(docs), nil
}

func newBookInstanceDoc(bi model.BookInstance) (bookInstanceDoc, error) {
	book, err := objectID(bi.BookID)
	if err != nil {
		return bookInstanceDoc{}, err
	}
	return bookInstanceDoc{
		Book:    book,
		Imprint: bi.Imprint,
		Status:  string(bi.Status),
		DueBack: bi.DueBack,
	}, nil
}

func (r *mongoRepository) CreateBookInstance(ctx context.Context, bi model.BookInstance) (model.BookInstance, error) {
	doc, err := newBookInstanceDoc(bi)
	if err != nil {
		return model.BookInstance{}, err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := r.db.Collection(bookInstancesCollection).InsertOne(ctx, doc); err != nil {
		r.log.Error("CreateBookInstance", zap.Error(err))
		return model.BookInstance{}, errors.Wrap(err, "bookinstances.InsertOne")
	}
	return doc.model(), nil
}

func (r *mongoRepository) UpdateBookInstance(ctx context.Context, bi model.BookInstance) error {
	oid, err := objectID(bi.ID)
	if err != nil {
		return err
	}
	doc, err := newBookInstanceDoc(bi)
	if err != nil {
		return err
	}
	doc.ID = oid
	return replaceByID(ctx, r.db.Collection(bookInstancesCollection), oid, doc)
}

func (r *mongoRepository) DeleteBookInstance(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db.Collection(bookInstancesCollection), id)
}

func (r *mongoRepository) CountBookInstances(ctx context.Context, status model.Status) (int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}
	return count(ctx, r.db.Collection(bookInstancesCollection), filter)
}
