package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/local-library/catalog/internal/errs"
	"github.com/Astemirdum/local-library/catalog/internal/form"
	"github.com/Astemirdum/local-library/catalog/internal/view"
	md "github.com/Astemirdum/local-library/pkg/middleware"
	"github.com/Astemirdum/local-library/pkg/validate"
)

type Handler struct {
	svc        CatalogService
	validator  *validate.CustomValidator
	renderer   *view.Renderer
	log        *zap.Logger
	production bool
	now        func() time.Time
}

func New(svc CatalogService, log *zap.Logger, production bool) (*Handler, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Handler{
		svc:        svc,
		validator:  validate.NewCustomValidator(),
		renderer:   renderer,
		log:        log.Named("handler"),
		production: production,
		now:        time.Now,
	}, nil
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS    = 10
		catalogRPS = 100
	)
	e.HideBanner = true
	e.Renderer = h.renderer
	e.Validator = h.validator
	e.HTTPErrorHandler = h.errorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(md.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)))
	e.Use(middleware.Secure())
	e.Use(middleware.Gzip())

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/catalog")
	})

	catalog := e.Group("/catalog", md.NewRateLimiter(catalogRPS))
	catalog.GET("", h.Index)

	catalog.GET("/authors", h.AuthorList)
	catalog.GET("/author/create", h.AuthorCreateForm)
	catalog.POST("/author/create", h.AuthorCreate)
	catalog.GET("/author/:id", h.AuthorDetail)
	catalog.GET("/author/:id/update", h.AuthorUpdateForm)
	catalog.POST("/author/:id/update", h.AuthorUpdate)
	catalog.GET("/author/:id/delete", h.AuthorDeleteForm)
	catalog.POST("/author/:id/delete", h.AuthorDelete)

	catalog.GET("/genres", h.GenreList)
	catalog.GET("/genre/create", h.GenreCreateForm)
	catalog.POST("/genre/create", h.GenreCreate)
	catalog.GET("/genre/:id", h.GenreDetail)
	catalog.GET("/genre/:id/update", h.GenreUpdateForm)
	catalog.POST("/genre/:id/update", h.GenreUpdate)
	catalog.GET("/genre/:id/delete", h.GenreDeleteForm)
	catalog.POST("/genre/:id/delete", h.GenreDelete)

	catalog.GET("/books", h.BookList)
	catalog.GET("/book/create", h.BookCreateForm)
	catalog.POST("/book/create", h.BookCreate)
	catalog.GET("/book/:id", h.BookDetail)
	catalog.GET("/book/:id/update", h.BookUpdateForm)
	catalog.POST("/book/:id/update", h.BookUpdate)
	catalog.GET("/book/:id/delete", h.BookDeleteForm)
	catalog.POST("/book/:id/delete", h.BookDelete)

	catalog.GET("/bookinstances", h.BookInstanceList)
	catalog.GET("/bookinstance/create", h.BookInstanceCreateForm)
	catalog.POST("/bookinstance/create", h.BookInstanceCreate)
	catalog.GET("/bookinstance/:id", h.BookInstanceDetail)
	catalog.GET("/bookinstance/:id/update", h.BookInstanceUpdateForm)
	catalog.POST("/bookinstance/:id/update", h.BookInstanceUpdate)
	catalog.GET("/bookinstance/:id/delete", h.BookInstanceDeleteForm)
	catalog.POST("/bookinstance/:id/delete", h.BookInstanceDelete)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) Index(c echo.Context) error {
	counts, err := h.svc.Counts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "index", view.Page{Title: "Local Library Home", Data: counts})
}

// errorHandler renders the error page. Outside production it includes the
// full error chain with stack.
func (h *Handler) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	data := view.ErrorData{
		Status:  http.StatusInternalServerError,
		Message: http.StatusText(http.StatusInternalServerError),
	}
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		data.Status = he.Code
		data.Message = fmt.Sprint(he.Message)
	case missing(err):
		data.Status = http.StatusNotFound
		data.Message = http.StatusText(http.StatusNotFound)
	}
	if !h.production {
		data.Detail = fmt.Sprintf("%+v", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(data.Status)
	} else {
		err = c.Render(data.Status, "error", view.Page{Title: "Error", Data: data})
	}
	if err != nil {
		h.log.Error("render error page", zap.Error(err))
	}
}

func missing(err error) bool {
	return errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrInvalidID)
}

// notFound turns a missing record into a 404 carrying msg.
func notFound(err error, msg string) error {
	if missing(err) {
		return echo.NewHTTPError(http.StatusNotFound, msg).SetInternal(err)
	}
	return err
}

func formValues(c echo.Context) (url.Values, error) {
	values, err := c.FormParams()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return values, nil
}

func rejected(err error) bool {
	var vErr *form.ValidationError
	return errors.As(err, &vErr)
}

// invalid re-renders a form with the field errors of a rejected submission.
// Errors other than *form.ValidationError are returned unchanged.
func invalid(c echo.Context, err error, name string, page view.Page) error {
	var vErr *form.ValidationError
	if !errors.As(err, &vErr) {
		return err
	}
	page.Errors = vErr.Fields
	return c.Render(http.StatusOK, name, page)
}
