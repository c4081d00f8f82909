package brandkit

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/brandkit/editor"
	"github.com/eringen/brandkit/storage"
	"github.com/eringen/brandkit/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(a.page(c, ""), false))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		a.loginLimiter.Reset(ip)
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	c.Logger().Warnf("failed admin login from %s", ip)
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(a.page(c, ""), true))
}

func (a *App) handleAdminLogout(c echo.Context) error {
	id, err := clearAdminSession(c)
	if err != nil {
		return err
	}
	if id != "" {
		a.workspaces.Drop(id)
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func groupStatus[T any](name, path string, l storage.Loaded[T]) views.GroupStatus {
	return views.GroupStatus{
		Name:     name,
		Path:     path,
		Source:   l.Source.String(),
		Degraded: l.Degraded(),
	}
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	ctx := c.Request().Context()
	s := a.Storage

	ws, err := a.sessionWorkspace(c)
	if err != nil {
		return err
	}
	if err := ws.Library.Mount(ctx); err != nil && !errors.Is(err, editor.ErrSaveInProgress) {
		return err
	}
	prefs := s.LoadPreferences(ctx)

	d := views.Dashboard{
		Page: a.page(c, "dashboard"),
		Groups: []views.GroupStatus{
			groupStatus("footer", "/admin/settings/footer/", s.LoadFooterSettings(ctx)),
			groupStatus("header", "/admin/settings/header/", s.LoadHeaderSettings(ctx)),
			groupStatus("hero", "/admin/settings/hero/", s.LoadHeroSettings(ctx)),
			groupStatus("preferences", "/admin/api/preferences", prefs),
		},
		AssetCounts: ws.Library.Counts(),
		Preferences: prefs.Value.TypeSettings,
		Documents:   len(s.LoadDocuments(ctx).Value),
		Message:     msg,
	}
	return Render(c, a.Views.AdminDashboard(d))
}
