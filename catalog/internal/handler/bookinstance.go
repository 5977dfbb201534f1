package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/local-library/catalog/internal/model"
	"github.com/Astemirdum/local-library/catalog/internal/view"
)

const bookInstancesURL = "/catalog/bookinstances"

func (h *Handler) BookInstanceList(c echo.Context) error {
	instances, err := h.svc.ListBookInstances(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "bookinstance_list", view.Page{Title: "Book Instance List", Data: instances})
}

func (h *Handler) BookInstanceDetail(c echo.Context) error {
	bi, err := h.svc.BookInstanceDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFound(err, "Book copy not found")
	}
	title := "Copy"
	if bi.Book != nil {
		title = "Copy: " + bi.Book.Title
	}
	return c.Render(http.StatusOK, "bookinstance_detail", view.Page{Title: title, Data: bi})
}

func (h *Handler) BookInstanceCreateForm(c echo.Context) error {
	f, err := h.svc.BookInstanceForm(c.Request().Context(), model.BookInstance{})
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "bookinstance_form", view.Page{Title: "Create BookInstance", Data: f})
}

func (h *Handler) BookInstanceCreate(c echo.Context) error {
	ctx := c.Request().Context()
	values, err := formValues(c)
	if err != nil {
		return err
	}
	sub, err := h.bookInstanceForm().Run(values)
	bi := h.bookInstanceFrom(sub)
	if err != nil {
		return h.rejectBookInstance(c, err, bi, "Create BookInstance")
	}

	created, err := h.svc.CreateBookInstance(ctx, bi)
	if err != nil {
		return h.rejectBookInstance(c, rejectReference(err), bi, "Create BookInstance")
	}
	return c.Redirect(http.StatusSeeOther, created.URL())
}

func (h *Handler) BookInstanceUpdateForm(c echo.Context) error {
	f, err := h.svc.EditBookInstanceForm(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFound(err, "Book copy not found")
	}
	return c.Render(http.StatusOK, "bookinstance_form", view.Page{Title: "Update Book Instance", Data: f})
}

func (h *Handler) BookInstanceUpdate(c echo.Context) error {
	ctx := c.Request().Context()
	values, err := formValues(c)
	if err != nil {
		return err
	}
	sub, err := h.bookInstanceForm().Run(values)
	bi := h.bookInstanceFrom(sub)
	bi.ID = c.Param("id")
	if err != nil {
		return h.rejectBookInstance(c, err, bi, "Update Book Instance")
	}

	if err := h.svc.UpdateBookInstance(ctx, bi); err != nil {
		if missing(err) {
			return notFound(err, "Book copy not found")
		}
		return h.rejectBookInstance(c, rejectReference(err), bi, "Update Book Instance")
	}
	return c.Redirect(http.StatusSeeOther, bi.URL())
}

func (h *Handler) rejectBookInstance(c echo.Context, err error, bi model.BookInstance, title string) error {
	if !rejected(err) {
		return err
	}
	f, fErr := h.svc.BookInstanceForm(c.Request().Context(), bi)
	if fErr != nil {
		return fErr
	}
	return invalid(c, err, "bookinstance_form", view.Page{Title: title, Data: f})
}

func (h *Handler) BookInstanceDeleteForm(c echo.Context) error {
	bi, err := h.svc.BookInstanceDetail(c.Request().Context(), c.Param("id"))
	if missing(err) {
		return c.Redirect(http.StatusFound, bookInstancesURL)
	}
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "bookinstance_delete", view.Page{Title: "Delete Book Instance", Data: bi})
}

// BookInstanceDelete has no dependency check; nothing references a copy.
func (h *Handler) BookInstanceDelete(c echo.Context) error {
	if err := h.svc.DeleteBookInstance(c.Request().Context(), c.Param("id")); err != nil && !missing(err) {
		return err
	}
	return c.Redirect(http.StatusSeeOther, bookInstancesURL)
}
