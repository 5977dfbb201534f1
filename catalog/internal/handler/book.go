package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Astemirdum/local-library/catalog/internal/errs"
	"github.com/Astemirdum/local-library/catalog/internal/model"
	"github.com/Astemirdum/local-library/catalog/internal/view"
)

const booksURL = "/catalog/books"

func (h *Handler) BookList(c echo.Context) error {
	books, err := h.svc.ListBooks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "book_list", view.Page{Title: "Book List", Data: books})
}

func (h *Handler) BookDetail(c echo.Context) error {
	d, err := h.svc.BookDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFound(err, "Book not found")
	}
	return c.Render(http.StatusOK, "book_detail", view.Page{Title: d.Book.Title, Data: d})
}

func (h *Handler) BookCreateForm(c echo.Context) error {
	f, err := h.svc.BookForm(c.Request().Context(), model.Book{})
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "book_form", view.Page{Title: "Create Book", Data: f})
}

func (h *Handler) BookCreate(c echo.Context) error {
	ctx := c.Request().Context()
	values, err := formValues(c)
	if err != nil {
		return err
	}
	sub, err := h.bookForm().Run(values)
	book := bookFrom(sub)
	if err != nil {
		return h.rejectBook(c, err, book, "Create Book")
	}

	created, err := h.svc.CreateBook(ctx, book)
	if err != nil {
		return h.rejectBook(c, rejectReference(err), book, "Create Book")
	}
	return c.Redirect(http.StatusSeeOther, created.URL())
}

func (h *Handler) BookUpdateForm(c echo.Context) error {
	f, err := h.svc.EditBookForm(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFound(err, "Book not found")
	}
	return c.Render(http.StatusOK, "book_form", view.Page{Title: "Update Book", Data: f})
}

func (h *Handler) BookUpdate(c echo.Context) error {
	ctx := c.Request().Context()
	values, err := formValues(c)
	if err != nil {
		return err
	}
	sub, err := h.bookForm().Run(values)
	book := bookFrom(sub)
	book.ID = c.Param("id")
	if err != nil {
		return h.rejectBook(c, err, book, "Update Book")
	}

	if err := h.svc.UpdateBook(ctx, book); err != nil {
		if missing(err) {
			return notFound(err, "Book not found")
		}
		return h.rejectBook(c, rejectReference(err), book, "Update Book")
	}
	return c.Redirect(http.StatusSeeOther, book.URL())
}

// rejectBook shows the book form again for a *form.ValidationError.
func (h *Handler) rejectBook(c echo.Context, err error, book model.Book, title string) error {
	if !rejected(err) {
		return err
	}
	f, fErr := h.svc.BookForm(c.Request().Context(), book)
	if fErr != nil {
		return fErr
	}
	return invalid(c, err, "book_form", view.Page{Title: title, Data: f})
}

func (h *Handler) BookDeleteForm(c echo.Context) error {
	d, err := h.svc.BookDetail(c.Request().Context(), c.Param("id"))
	if missing(err) {
		return c.Redirect(http.StatusFound, booksURL)
	}
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "book_delete", view.Page{Title: "Delete Book", Data: d})
}

func (h *Handler) BookDelete(c echo.Context) error {
	d, err := h.svc.DeleteBook(c.Request().Context(), c.Param("id"))
	switch {
	case missing(err):
	case errors.Is(err, errs.ErrHasDependents):
		return c.Render(http.StatusOK, "book_delete", view.Page{Title: "Delete Book", Data: d})
	case err != nil:
		return err
	}
	return c.Redirect(http.StatusSeeOther, booksURL)
}
