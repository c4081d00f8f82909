package brandkit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/editor"
	"github.com/eringen/brandkit/views"
)

type mountable interface {
	State() editor.State
	Mount(ctx context.Context) error
}

type draftEditor interface {
	mountable
	Dirty() bool
}

// ensureLoaded mounts ed on first use. Later visits keep unsaved edits and
// otherwise reload, so another session's save shows up.
func ensureLoaded(ctx context.Context, ed draftEditor) error {
	if ed.State() != editor.Idle && ed.Dirty() {
		return nil
	}
	if err := ed.Mount(ctx); err != nil && !errors.Is(err, editor.ErrSaveInProgress) {
		return err
	}
	return nil
}

// ensureReady mounts ed only when it has never been loaded.
func ensureReady(ctx context.Context, ed mountable) error {
	if ed.State() != editor.Idle {
		return nil
	}
	return ed.Mount(ctx)
}

func flashFor(o *editor.Outcome, saved string) *views.Flash {
	if o == nil {
		return nil
	}
	if o.OK() {
		return &views.Flash{OK: true, Message: saved}
	}
	return &views.Flash{Message: "Not saved: " + o.Err.Error()}
}

// statusFor picks the response code for a page rendered after a save.
func statusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var he *echo.HTTPError
	if errors.As(httpError(err), &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

func (a *App) handleFooterEditor(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ws, err := a.sessionWorkspace(c)
	if err != nil {
		return err
	}
	if err := ensureLoaded(c.Request().Context(), ws.Footer); err != nil {
		return err
	}
	return Render(c, a.Views.FooterEditor(views.FooterPage{
		Page:   a.page(c, "footer"),
		Editor: ws.Footer.Snapshot(),
	}))
}

func (a *App) handleFooterSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ctx := c.Request().Context()
	ws, err := a.sessionWorkspace(c)
	if err != nil {
		return err
	}
	if err := ensureReady(ctx, ws.Footer); err != nil {
		return err
	}
	f, err := parseFooterForm(c)
	if err == nil {
		err = ws.Footer.Replace(f)
	}
	if err == nil {
		err = ws.Footer.Save(ctx)
	}
	flash := flashFor(ws.Footer.TakeOutcome(), "Footer saved.")
	if flash == nil && err != nil {
		flash = &views.Flash{Message: "Not saved: " + err.Error()}
	}
	return RenderStatus(c, statusFor(err), a.Views.FooterEditor(views.FooterPage{
		Page:   a.page(c, "footer"),
		Editor: ws.Footer.Snapshot(),
		Flash:  flash,
	}))
}

func parseFooterForm(c echo.Context) (domain.FooterSettings, error) {
	f := domain.FooterSettings{
		Address:   strings.TrimSpace(c.FormValue("address")),
		Email:     strings.TrimSpace(c.FormValue("email")),
		Phone1:    strings.TrimSpace(c.FormValue("phone1")),
		Phone2:    strings.TrimSpace(c.FormValue("phone2")),
		Website:   strings.TrimSpace(c.FormValue("website")),
		Alignment: domain.ParseAlignment(c.FormValue("alignment")),
	}
	for _, field := range domain.FooterFields {
		icon := strings.TrimSpace(c.FormValue(string(field) + "Icon"))
		if icon == domain.DefaultIcon(field) {
			icon = ""
		}
		if err := f.SetIcon(field, icon); err != nil {
			return f, err
		}
	}
	nums := []struct {
		name string
		dst  **float64
	}{
		{"bottomOffset", &f.BottomOffset},
		{"topPadding", &f.TopPadding},
		{"horizontalPadding", &f.HorizontalPadding},
		{"lineSpacing", &f.LineSpacing},
		{"fontSize", &f.FontSize},
		{"iconSize", &f.IconSize},
		{"spacing", &f.Spacing},
		{"marginTop", &f.MarginTop},
		{"paddingTop", &f.PaddingTop},
	}
	for _, n := range nums {
		v, err := optionalNum(c.FormValue(n.name))
		if err != nil {
			return f, &domain.ValidationError{Field: n.name, Reason: "must be a number"}
		}
		*n.dst = v
	}
	return f, nil
}

func (a *App) handleHeaderEditor(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ws, err := a.sessionWorkspace(c)
	if err != nil {
		return err
	}
	if err := ensureLoaded(c.Request().Context(), ws.Header); err != nil {
		return err
	}
	return Render(c, a.Views.HeaderEditor(views.HeaderPage{
		Page:   a.page(c, "header"),
		Editor: ws.Header.Snapshot(),
	}))
}

func (a *App) handleHeaderSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ctx := c.Request().Context()
	ws, err := a.sessionWorkspace(c)
	if err != nil {
		return err
	}
	if err := ensureReady(ctx, ws.Header); err != nil {
		return err
	}
	h, err := parseHeaderForm(c)
	if err == nil {
		err = ws.Header.Replace(h)
	}
	if err == nil {
		err = ws.Header.Save(ctx)
	}
	flash := flashFor(ws.Header.TakeOutcome(), "Header saved.")
	if flash == nil && err != nil {
		flash = &views.Flash{Message: "Not saved: " + err.Error()}
	}
	return RenderStatus(c, statusFor(err), a.Views.HeaderEditor(views.HeaderPage{
		Page:   a.page(c, "header"),
		Editor: ws.Header.Snapshot(),
		Flash:  flash,
	}))
}

func parseHeaderForm(c echo.Context) (domain.HeaderSettings, error) {
	h := domain.HeaderSettings{
		Text:       c.FormValue("text"),
		FontFamily: domain.FontFamily(strings.ToLower(strings.TrimSpace(c.FormValue("fontFamily")))),
		Alignment:  domain.ParseAlignment(c.FormValue("alignment")),
		IsItalic:   c.FormValue("isItalic") != "",
	}
	size, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue("fontSize")), 64)
	if err != nil {
		return h, &domain.ValidationError{Field: "fontSize", Reason: "must be a number"}
	}
	h.FontSize = size
	return h, nil
}

func (a *App) heroPage(c echo.Context, ws *workspace, flash *views.Flash) views.HeroPage {
	snap := ws.Hero.Snapshot()
	candidates := a.Storage.HeroCandidates()
	return views.HeroPage{
		Page:       a.page(c, "hero"),
		Editor:     snap,
		Candidates: candidates,
		Retired:    snap.Draft.Retired(candidates),
		Flash:      flash,
	}
}

func (a *App) handleHeroEditor(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ws, err := a.sessionWorkspace(c)
	if err != nil {
		return err
	}
	if err := ensureLoaded(c.Request().Context(), ws.Hero); err != nil {
		return err
	}
	return Render(c, a.Views.HeroEditor(a.heroPage(c, ws, nil)))
}

// handleHeroToggle adds or removes one image from the draft selection. The
// selection is only written on save. An image that left the candidate pool
// can still be removed, never added.
func (a *App) handleHeroToggle(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ws, err := a.sessionWorkspace(c)
	if err != nil {
		return err
	}
	if err := ensureReady(c.Request().Context(), ws.Hero); err != nil {
		return err
	}
	img := c.FormValue("image")
	if !slices.Contains(a.Storage.HeroCandidates(), img) && !ws.Hero.Draft().IsSelected(img) {
		return c.String(http.StatusBadRequest, fmt.Sprintf("unknown hero image %q", img))
	}
	if err := ws.Hero.Edit(func(h *domain.HeroSettings) { h.Toggle(img) }); err != nil {
		return httpError(err)
	}
	if isHTMX(c) {
		return Render(c, a.Views.HeroImages(a.heroPage(c, ws, nil)))
	}
	return Render(c, a.Views.HeroEditor(a.heroPage(c, ws, nil)))
}

func (a *App) handleHeroSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ctx := c.Request().Context()
	ws, err := a.sessionWorkspace(c)
	if err != nil {
		return err
	}
	if err := ensureReady(ctx, ws.Hero); err != nil {
		return err
	}
	effect := domain.TransitionEffect(strings.ToLower(strings.TrimSpace(c.FormValue("transitionEffect"))))
	interval, err := strconv.Atoi(strings.TrimSpace(c.FormValue("interval")))
	if err != nil {
		err = &domain.ValidationError{Field: "interval", Reason: "must be a whole number of milliseconds"}
	}
	if err == nil {
		err = ws.Hero.Edit(func(h *domain.HeroSettings) {
			h.TransitionEffect = effect
			h.Interval = interval
		})
	}
	if err == nil {
		err = ws.Hero.Save(ctx)
	}
	flash := flashFor(ws.Hero.TakeOutcome(), "Hero banner saved.")
	if flash == nil && err != nil {
		flash = &views.Flash{Message: "Not saved: " + err.Error()}
	}
	return RenderStatus(c, statusFor(err), a.Views.HeroEditor(a.heroPage(c, ws, flash)))
}
