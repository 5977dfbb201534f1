package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Astemirdum/local-library/catalog/internal/errs"
	"github.com/Astemirdum/local-library/catalog/internal/model"
	"github.com/Astemirdum/local-library/catalog/internal/view"
)

const authorsURL = "/catalog/authors"

func (h *Handler) AuthorList(c echo.Context) error {
	authors, err := h.svc.ListAuthors(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "author_list", view.Page{Title: "Author List", Data: authors})
}

func (h *Handler) AuthorDetail(c echo.Context) error {
	d, err := h.svc.AuthorDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFound(err, "Author not found")
	}
	return c.Render(http.StatusOK, "author_detail", view.Page{Title: d.Author.Name(), Data: d})
}

func (h *Handler) AuthorCreateForm(c echo.Context) error {
	return c.Render(http.StatusOK, "author_form", view.Page{Title: "Create Author", Data: model.Author{}})
}

func (h *Handler) AuthorCreate(c echo.Context) error {
	values, err := formValues(c)
	if err != nil {
		return err
	}
	sub, err := h.authorForm().Run(values)
	author := authorFrom(sub)
	if err != nil {
		return invalid(c, err, "author_form", view.Page{Title: "Create Author", Data: author})
	}

	created, err := h.svc.CreateAuthor(c.Request().Context(), author)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, created.URL())
}

func (h *Handler) AuthorUpdateForm(c echo.Context) error {
	author, err := h.svc.GetAuthor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFound(err, "Author not found")
	}
	return c.Render(http.StatusOK, "author_form", view.Page{Title: "Update Author", Data: author})
}

func (h *Handler) AuthorUpdate(c echo.Context) error {
	values, err := formValues(c)
	if err != nil {
		return err
	}
	sub, err := h.authorForm().Run(values)
	author := authorFrom(sub)
	author.ID = c.Param("id")
	if err != nil {
		return invalid(c, err, "author_form", view.Page{Title: "Update Author", Data: author})
	}

	if err := h.svc.UpdateAuthor(c.Request().Context(), author); err != nil {
		return notFound(err, "Author not found")
	}
	return c.Redirect(http.StatusSeeOther, author.URL())
}

func (h *Handler) AuthorDeleteForm(c echo.Context) error {
	d, err := h.svc.AuthorDetail(c.Request().Context(), c.Param("id"))
	if missing(err) {
		return c.Redirect(http.StatusFound, authorsURL)
	}
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "author_delete", view.Page{Title: "Delete Author", Data: d})
}

func (h *Handler) AuthorDelete(c echo.Context) error {
	d, err := h.svc.DeleteAuthor(c.Request().Context(), c.Param("id"))
	switch {
	case missing(err):
	case errors.Is(err, errs.ErrHasDependents):
		return c.Render(http.StatusOK, "author_delete", view.Page{Title: "Delete Author", Data: d})
	case err != nil:
		return err
	}
	return c.Redirect(http.StatusSeeOther, authorsURL)
}
