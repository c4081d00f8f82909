package brandkit

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/editor"
	"github.com/eringen/brandkit/record"
)

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "backend": a.Config.Backend})
}

// handlePresentation serves the global settings to document previews.
func (a *App) handlePresentation(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Cache.Get(c.Request().Context()))
}

// httpError maps domain and store errors onto HTTP statuses.
func httpError(err error) error {
	var he *echo.HTTPError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &he):
		return he
	case errors.Is(err, domain.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, record.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found").SetInternal(err)
	case errors.Is(err, record.ErrVersionConflict), errors.Is(err, editor.ErrSaveInProgress):
		return echo.NewHTTPError(http.StatusConflict, err.Error()).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		he = httpError(err).(*echo.HTTPError)
	}
	if he.Code >= 500 {
		c.Logger().Errorf("server error: %v", err)
	}
	if wantsJSON(c) {
		msg := he.Message
		if he.Code >= 500 {
			msg = http.StatusText(he.Code)
		}
		_ = c.JSON(he.Code, map[string]interface{}{"error": msg})
		return
	}
	switch {
	case he.Code == http.StatusNotFound:
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	case he.Code >= 500:
		_ = RenderStatus(c, he.Code, a.Views.ServerError())
	default:
		a.Echo.DefaultHTTPErrorHandler(he, c)
	}
}
