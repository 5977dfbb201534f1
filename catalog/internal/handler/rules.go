package handler

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/Astemirdum/local-library/catalog/internal/errs"
	"github.com/Astemirdum/local-library/catalog/internal/form"
	"github.com/Astemirdum/local-library/catalog/internal/model"
)

func (h *Handler) authorForm() form.Pipeline {
	return form.Pipeline{
		form.Validate(h.validator,
			form.Field("firstName").Trim().
				Check("min=1", "First name must be specified.").
				Escape().
				Check("alphanum", "First name has non-alphanumeric characters.").
				Check("max=100", "First name must be at most 100 characters."),
			form.Field("lastName").Trim().
				Check("min=1", "Family name must be specified.").
				Escape().
				Check("alphanum", "Family name has non-alphanumeric characters.").
				Check("max=100", "Family name must be at most 100 characters."),
			form.Field("dateOfBirth").Optional().Check("iso8601", "Invalid date of birth"),
			form.Field("dateOfDeath").Optional().Check("iso8601", "Invalid date of death"),
		),
		form.Check,
	}
}

func authorFrom(sub *form.Submission) model.Author {
	return model.Author{
		FirstName:   sub.Get("firstName"),
		LastName:    sub.Get("lastName"),
		DateOfBirth: sub.Date("dateOfBirth"),
		DateOfDeath: sub.Date("dateOfDeath"),
	}
}

func (h *Handler) genreForm() form.Pipeline {
	return form.Pipeline{
		form.Validate(h.validator,
			form.Field("name").Trim().
				Check("min=1", "Genre name required").
				Escape().
				Check("min=3,max=100", "Genre name must contain 3 to 100 characters"),
		),
		form.Check,
	}
}

func genreFrom(sub *form.Submission) model.Genre {
	return model.Genre{Name: sub.Get("name")}
}

const (
	msgAuthorReference = "Author must be a valid reference."
	msgGenreReference  = "Genre must be a valid reference."
	msgBookReference   = "Book must be a valid reference"
)

var referenceMessages = map[string]string{
	"author": msgAuthorReference,
	"genre":  msgGenreReference,
	"book":   msgBookReference,
}

// rejectReference reports a reference to a record the store does not have
// as a field error, the same way a malformed reference is reported.
func rejectReference(err error) error {
	var refErr *errs.ReferenceError
	if !errors.As(err, &refErr) {
		return err
	}
	msg, ok := referenceMessages[refErr.Field]
	if !ok {
		return err
	}
	return &form.ValidationError{Fields: []form.FieldError{{Field: refErr.Field, Message: msg}}}
}

func (h *Handler) bookForm() form.Pipeline {
	return form.Pipeline{
		form.Multi("genre"),
		form.Validate(h.validator,
			form.Field("title").Trim().Check("min=1", "Title must not be empty.").Escape(),
			form.Field("author").Trim().Check("min=1", "Author must not be empty.").Escape().
				Is(h.svc.ValidID, msgAuthorReference),
			form.Field("summary").Trim().Check("min=1", "Summary must not be empty.").Escape(),
			form.Field("isbn").Trim().Check("min=1", "ISBN must not be empty").Escape(),
			form.Field("genre").Escape().Is(h.svc.ValidID, msgGenreReference),
		),
		form.Check,
	}
}

func bookFrom(sub *form.Submission) model.Book {
	return model.Book{
		Title:    sub.Get("title"),
		AuthorID: sub.Get("author"),
		Summary:  sub.Get("summary"),
		ISBN:     sub.Get("isbn"),
		GenreIDs: sub.All("genre"),
	}
}

func (h *Handler) bookInstanceForm() form.Pipeline {
	return form.Pipeline{
		form.Validate(h.validator,
			form.Field("book").Trim().Check("min=1", "Book must be specified").Escape().
				Is(h.svc.ValidID, msgBookReference),
			form.Field("imprint").Trim().Check("min=1", "Imprint must be specified").Escape(),
			form.Field("status").Escape().Optional().Check(statusTag(), "Invalid status"),
			form.Field("due_back").Optional().Check("iso8601", "Invalid date"),
		),
		form.Check,
	}
}

func (h *Handler) bookInstanceFrom(sub *form.Submission) model.BookInstance {
	return model.NewBookInstance(
		sub.Get("book"),
		sub.Get("imprint"),
		model.Status(sub.Get("status")),
		sub.Date("due_back"),
		h.now(),
	)
}

func statusTag() string {
	statuses := model.Statuses()
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}
	return "oneof=" + strings.Join(names, " ")
}
