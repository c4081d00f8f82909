package brandkit

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/storage"
)

// loadedJSON is the envelope for every API read.
type loadedJSON struct {
	Value    any    `json:"value"`
	Source   string `json:"source"`
	Degraded bool   `json:"degraded"`
}

func envelope[T any](l storage.Loaded[T]) loadedJSON {
	return loadedJSON{Value: l.Value, Source: l.Source.String(), Degraded: l.Degraded()}
}

func parseGroupParam(c echo.Context) (storage.Group, error) {
	g, err := storage.ParseGroup(c.Param("group"))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return g, nil
}

func parseTypeParam(c echo.Context) (domain.DocumentType, error) {
	t, ok := domain.ParseDocumentType(c.Param("type"))
	if !ok {
		return "", echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown document type %q", c.Param("type")))
	}
	return t, nil
}

func bindJSON(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}

func (a *App) apiGetSettings(c echo.Context) error {
	g, err := parseGroupParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	switch g {
	case storage.GroupFooter:
		return c.JSON(http.StatusOK, envelope(a.Storage.LoadFooterSettings(ctx)))
	case storage.GroupHeader:
		return c.JSON(http.StatusOK, envelope(a.Storage.LoadHeaderSettings(ctx)))
	case storage.GroupHero:
		return c.JSON(http.StatusOK, envelope(a.Storage.LoadHeroSettings(ctx)))
	default:
		return c.JSON(http.StatusOK, envelope(a.Storage.LoadPreferences(ctx)))
	}
}

// apiPutSettings writes a whole settings group straight to storage. It does
// not touch any admin session's draft.
func (a *App) apiPutSettings(c echo.Context) error {
	g, err := parseGroupParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	var saved any
	switch g {
	case storage.GroupFooter:
		var f domain.FooterSettings
		if err := bindJSON(c, &f); err != nil {
			return err
		}
		saved, err = f, a.Storage.SaveFooterSettings(ctx, f)
	case storage.GroupHeader:
		var h domain.HeaderSettings
		if err := bindJSON(c, &h); err != nil {
			return err
		}
		saved, err = h, a.Storage.SaveHeaderSettings(ctx, h)
	case storage.GroupHero:
		var h domain.HeroSettings
		if err := bindJSON(c, &h); err != nil {
			return err
		}
		saved, err = h, a.Storage.SaveHeroSettings(ctx, h)
	default:
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "preferences are written per document type")
	}
	if err != nil {
		return httpError(err)
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, map[string]any{"value": saved})
}

func (a *App) apiResetSettings(c echo.Context) error {
	g, err := parseGroupParam(c)
	if err != nil {
		return err
	}
	if err := a.Storage.ResetSettings(c.Request().Context(), g); err != nil {
		return httpError(err)
	}
	a.Cache.Invalidate()
	return c.NoContent(http.StatusNoContent)
}

func (a *App) apiListAssets(c echo.Context) error {
	l := a.Storage.LoadAssets(c.Request().Context())
	if raw := c.QueryParam("type"); raw != "" {
		t, ok := domain.ParseAssetType(raw)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown asset type %q", raw))
		}
		filtered := make([]domain.Asset, 0, len(l.Value))
		for _, as := range l.Value {
			if as.Type == t {
				filtered = append(filtered, as)
			}
		}
		l.Value = filtered
	}
	return c.JSON(http.StatusOK, envelope(l))
}

type createAssetRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	DataURL string `json:"dataUrl"`
}

func (a *App) apiCreateAsset(c echo.Context) error {
	var req createAssetRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	t, ok := domain.ParseAssetType(req.Type)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown asset type %q", req.Type))
	}
	ctx := c.Request().Context()
	asset := a.Storage.NewAsset(req.Name, t, req.DataURL)
	if _, err := a.Storage.SaveAsset(ctx, asset); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, asset)
}

func (a *App) apiDeleteAsset(c echo.Context) error {
	if _, err := a.Storage.DeleteAsset(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) apiListPreferences(c echo.Context) error {
	return c.JSON(http.StatusOK, envelope(a.Storage.LoadPreferences(c.Request().Context())))
}

func (a *App) apiGetPreferences(c echo.Context) error {
	t, err := parseTypeParam(c)
	if err != nil {
		return err
	}
	s, ok := a.Storage.GetTypePreferences(c.Request().Context(), t)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no preferences for %s", t))
	}
	return c.JSON(http.StatusOK, s)
}

func (a *App) apiPutPreferences(c echo.Context) error {
	t, err := parseTypeParam(c)
	if err != nil {
		return err
	}
	var s domain.LogoSettings
	if err := bindJSON(c, &s); err != nil {
		return err
	}
	if err := a.Storage.SaveTypePreferences(c.Request().Context(), t, s); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (a *App) apiDeletePreferences(c echo.Context) error {
	t, err := parseTypeParam(c)
	if err != nil {
		return err
	}
	if err := a.Storage.DeleteTypePreferences(c.Request().Context(), t); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) apiListDocuments(c echo.Context) error {
	return c.JSON(http.StatusOK, envelope(a.Storage.LoadDocuments(c.Request().Context())))
}

// apiSaveDocument upserts a document. Unless applyPreferences=false, logo
// fields the document leaves unset come from its type's preferences.
func (a *App) apiSaveDocument(c echo.Context) error {
	var d domain.Document
	if err := bindJSON(c, &d); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	ctx := c.Request().Context()
	if c.QueryParam("applyPreferences") != "false" {
		a.Storage.ApplyTypePreferences(ctx, &d)
	}
	docs, err := a.Storage.SaveDocument(ctx, d)
	if err != nil {
		return httpError(err)
	}
	for _, saved := range docs {
		if saved.ID == d.ID {
			return c.JSON(http.StatusOK, saved)
		}
	}
	return c.JSON(http.StatusOK, d)
}

func (a *App) apiDeleteDocument(c echo.Context) error {
	if _, err := a.Storage.DeleteDocument(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
