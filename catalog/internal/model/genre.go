package model

type Genre struct {
	ID   string
	Name string
}

func (g Genre) URL() string {
	return "/catalog/genre/" + g.ID
}

// GenreOption is a genre offered on the book form.
type GenreOption struct {
	Genre
	Checked bool
}

// GenreOptions marks every genre whose id is in selected as checked.
func GenreOptions(genres []Genre, selected []string) []GenreOption {
	set := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		set[id] = struct{}{}
	}
	opts := make([]GenreOption, 0, len(genres))
	for _, g := range genres {
		_, ok := set[g.ID]
		opts = append(opts, GenreOption{Genre: g, Checked: ok})
	}
	return opts
}
