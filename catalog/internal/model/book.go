package model

type Book struct {
	ID       string
	Title    string
	AuthorID string
	Summary  string
	ISBN     string
	GenreIDs []string

	// Author and Genres are filled in only by reads that resolve references.
	Author *Author
	Genres []Genre
}

func (b Book) URL() string {
	return "/catalog/book/" + b.ID
}
