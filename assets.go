package brandkit

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/brandkit/editor"
	"github.com/eringen/brandkit/views"
)

func (a *App) assetsPage(c echo.Context, lib *editor.AssetLibrary, flash *views.Flash) views.AssetsPage {
	return views.AssetsPage{
		Page:     a.page(c, "assets"),
		Tab:      lib.Tab(),
		Counts:   lib.Counts(),
		Assets:   lib.Filtered(),
		Busy:     lib.Busy(),
		Degraded: lib.LoadErr() != nil,
		Flash:    flash,
	}
}

func (a *App) renderAssets(c echo.Context, lib *editor.AssetLibrary, code int, flash *views.Flash) error {
	p := a.assetsPage(c, lib, flash)
	if isHTMX(c) {
		return RenderStatus(c, code, a.Views.AssetGrid(p))
	}
	return RenderStatus(c, code, a.Views.AssetLibrary(p))
}

func parseTab(raw string) (editor.Tab, error) {
	tab, ok := editor.ParseTab(raw)
	if !ok {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown asset tab %q", raw))
	}
	return tab, nil
}

func (a *App) handleAssetList(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	tab, err := parseTab(c.QueryParam("tab"))
	if err != nil {
		return err
	}
	ws, err := a.sessionWorkspace(c)
	if err != nil {
		return err
	}
	ws.Library.SetTab(tab)
	if err := ws.Library.Mount(c.Request().Context()); err != nil && !errors.Is(err, editor.ErrSaveInProgress) {
		return err
	}
	return a.renderAssets(c, ws.Library, http.StatusOK, nil)
}

// readUploads reads every file of the "files" field. Files over the size
// limit are skipped and reported.
func (a *App) readUploads(c echo.Context) ([]editor.File, []string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "No files provided")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "No files provided")
	}
	var files []editor.File
	var rejected []string
	for _, fh := range headers {
		if fh.Size > a.Config.MaxUploadSize {
			rejected = append(rejected, fh.Filename+" (too large)")
			continue
		}
		src, err := fh.Open()
		if err != nil {
			return nil, nil, err
		}
		data, err := io.ReadAll(io.LimitReader(src, a.Config.MaxUploadSize+1))
		src.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
		}
		if int64(len(data)) > a.Config.MaxUploadSize {
			rejected = append(rejected, fh.Filename+" (too large)")
			continue
		}
		files = append(files, editor.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, rejected, nil
}

// handleAssetUpload stores the files typed after the tab the form was
// rendered for, whatever tab the session has switched to since.
func (a *App) handleAssetUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ctx := c.Request().Context()
	tab, err := parseTab(c.FormValue("tab"))
	if err != nil {
		return err
	}
	ws, err := a.sessionWorkspace(c)
	if err != nil {
		return err
	}
	lib := ws.Library
	if err := ensureReady(ctx, lib); err != nil {
		return err
	}
	files, rejected, err := a.readUploads(c)
	if err != nil {
		return err
	}

	lib.SetTab(tab)
	stored, err := lib.Upload(ctx, tab, files)
	if errors.Is(err, editor.ErrSaveInProgress) {
		return a.renderAssets(c, lib, http.StatusConflict, &views.Flash{Message: "An upload is already running."})
	}

	total := len(files) + len(rejected)
	flash := &views.Flash{OK: err == nil && len(rejected) == 0, Message: fmt.Sprintf("Uploaded %d of %d files.", stored, total)}
	if len(rejected) > 0 {
		flash.Message += fmt.Sprintf(" Skipped: %v.", rejected)
	}
	if err != nil {
		c.Logger().Errorf("asset upload: %v", err)
		flash.Message += " Some files could not be saved."
	}
	code := http.StatusOK
	if stored == 0 {
		code = http.StatusBadRequest
		if err != nil {
			code = http.StatusBadGateway
		}
	}
	return a.renderAssets(c, lib, code, flash)
}

func (a *App) handleAssetDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ctx := c.Request().Context()
	ws, err := a.sessionWorkspace(c)
	if err != nil {
		return err
	}
	lib := ws.Library
	if err := ensureReady(ctx, lib); err != nil {
		return err
	}
	if raw := c.FormValue("tab"); raw != "" {
		tab, err := parseTab(raw)
		if err != nil {
			return err
		}
		lib.SetTab(tab)
	}
	id := c.Param("id")
	if id == "" {
		return c.String(http.StatusBadRequest, "Asset id required")
	}
	if err := lib.Delete(ctx, id); err != nil {
		if errors.Is(err, editor.ErrSaveInProgress) {
			return a.renderAssets(c, lib, http.StatusConflict, &views.Flash{Message: "An upload is already running."})
		}
		return a.renderAssets(c, lib, http.StatusBadGateway, &views.Flash{Message: "Delete failed: " + err.Error()})
	}
	return a.renderAssets(c, lib, http.StatusOK, &views.Flash{OK: true, Message: "Asset deleted."})
}
