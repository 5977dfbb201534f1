package model

type Counts struct {
	Books                  int64
	BookInstances          int64
	BookInstancesAvailable int64
	Authors                int64
	Genres                 int64
}

type AuthorDetail struct {
	Author Author
	Books  []Book
}

type GenreDetail struct {
	Genre Genre
	Books []Book
}

type BookDetail struct {
	Book      Book
	Instances []BookInstance
}

type BookForm struct {
	Book    Book
	Authors []Author
	Genres  []GenreOption
}

type BookInstanceForm struct {
	BookInstance BookInstance
	Books        []Book
}
