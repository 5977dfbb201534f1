package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Astemirdum/local-library/catalog/internal/errs"
	"github.com/Astemirdum/local-library/catalog/internal/model"
	"github.com/Astemirdum/local-library/catalog/internal/view"
)

const genresURL = "/catalog/genres"

func (h *Handler) GenreList(c echo.Context) error {
	genres, err := h.svc.ListGenres(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "genre_list", view.Page{Title: "Genre List", Data: genres})
}

func (h *Handler) GenreDetail(c echo.Context) error {
	d, err := h.svc.GenreDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFound(err, "Genre not found")
	}
	return c.Render(http.StatusOK, "genre_detail", view.Page{Title: "Genre Detail", Data: d})
}

func (h *Handler) GenreCreateForm(c echo.Context) error {
	return c.Render(http.StatusOK, "genre_form", view.Page{Title: "Create Genre", Data: model.Genre{}})
}

// GenreCreate redirects to an existing genre of the same name instead of
// creating a duplicate.
func (h *Handler) GenreCreate(c echo.Context) error {
	values, err := formValues(c)
	if err != nil {
		return err
	}
	sub, err := h.genreForm().Run(values)
	genre := genreFrom(sub)
	if err != nil {
		return invalid(c, err, "genre_form", view.Page{Title: "Create Genre", Data: genre})
	}

	g, _, err := h.svc.CreateGenre(c.Request().Context(), genre)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, g.URL())
}

func (h *Handler) GenreUpdateForm(c echo.Context) error {
	genre, err := h.svc.GetGenre(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFound(err, "Genre not found")
	}
	return c.Render(http.StatusOK, "genre_form", view.Page{Title: "Update Genre", Data: genre})
}

func (h *Handler) GenreUpdate(c echo.Context) error {
	values, err := formValues(c)
	if err != nil {
		return err
	}
	sub, err := h.genreForm().Run(values)
	genre := genreFrom(sub)
	genre.ID = c.Param("id")
	if err != nil {
		return invalid(c, err, "genre_form", view.Page{Title: "Update Genre", Data: genre})
	}

	if err := h.svc.UpdateGenre(c.Request().Context(), genre); err != nil {
		return notFound(err, "Genre not found")
	}
	return c.Redirect(http.StatusSeeOther, genre.URL())
}

func (h *Handler) GenreDeleteForm(c echo.Context) error {
	d, err := h.svc.GenreDetail(c.Request().Context(), c.Param("id"))
	if missing(err) {
		return c.Redirect(http.StatusFound, genresURL)
	}
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "genre_delete", view.Page{Title: "Delete Genre", Data: d})
}

func (h *Handler) GenreDelete(c echo.Context) error {
	d, err := h.svc.DeleteGenre(c.Request().Context(), c.Param("id"))
	switch {
	case missing(err):
	case errors.Is(err, errs.ErrHasDependents):
		return c.Render(http.StatusOK, "genre_delete", view.Page{Title: "Delete Genre", Data: d})
	case err != nil:
		return err
	}
	return c.Redirect(http.StatusSeeOther, genresURL)
}
