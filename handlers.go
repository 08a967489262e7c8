package pubfeed

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleArtifact(art Artifact) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := a.Generator.Build(c.Request().Context(), art.Name)
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, art.ContentType, body)
	}
}

func handleStylesheet(c echo.Context) error {
	return c.Blob(http.StatusOK, "text/xsl; charset=utf-8", feedStylesheet)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		a.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}
	code := http.StatusInternalServerError
	if he != nil {
		code = he.Code
	}
	a.Logger.Error("Server error", slog.String(KeyPath, c.Request().URL.Path), logError(err))
	_ = c.String(code, http.StatusText(code))
}
