// Package brandkit is the admin backend for the logos, icons, signatures and
// product images of a business-document generator, and for the global
// header, footer and hero settings its documents are rendered with.
//
// It wires a record store, the persistence adapter, per-session settings
// editors and the presentation cache behind an Echo server with templ pages
// and a JSON API.
package brandkit

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/brandkit/record"
	"github.com/eringen/brandkit/storage"
	"github.com/eringen/brandkit/views"
)

// ViewFuncs holds the templ components the handlers render. DefaultViews
// returns the built-in set; any entry may be swapped with WithViews.
type ViewFuncs struct {
	AdminLogin     func(p views.Page, showError bool) templ.Component
	AdminDashboard func(d views.Dashboard) templ.Component
	FooterEditor   func(p views.FooterPage) templ.Component
	HeaderEditor   func(p views.HeaderPage) templ.Component
	HeroEditor     func(p views.HeroPage) templ.Component
	HeroImages     func(p views.HeroPage) templ.Component
	AssetLibrary   func(p views.AssetsPage) templ.Component
	AssetGrid      func(p views.AssetsPage) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// DefaultViews returns the components of the views package.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		AdminLogin:     views.AdminLogin,
		AdminDashboard: views.AdminDashboard,
		FooterEditor:   views.FooterEditor,
		HeaderEditor:   views.HeaderEditor,
		HeroEditor:     views.HeroEditor,
		HeroImages:     views.HeroImages,
		AssetLibrary:   views.AssetLibrary,
		AssetGrid:      views.AssetGrid,
		NotFound:       views.NotFound,
		ServerError:    views.ServerError,
	}
}

// App is the central brandkit application.
type App struct {
	Config  Config
	Echo    *echo.Echo
	Store   record.Store
	Storage *storage.Adapter
	Cache   *PresentationCache
	Views   ViewFuncs

	workspaces   *workspaces
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
	openOnce     sync.Once
	openErr      error
	routed       bool
}

// New creates an App. Nothing is opened until Open or Start.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetPrefix("brandkit")
	e.Logger.SetLevel(cfg.logLevel())

	a := &App{
		Config:    cfg,
		Echo:      e,
		Views:     DefaultViews(),
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Open connects the record store and builds the adapter and cache.
// It is safe to call more than once.
func (a *App) Open() error {
	a.openOnce.Do(func() {
		a.openErr = a.open()
	})
	return a.openErr
}

func (a *App) open() error {
	if a.Store == nil {
		store, err := OpenStore(a.Config)
		if err != nil {
			return fmt.Errorf("brandkit: open store: %w", err)
		}
		a.Store = store
	}

	storageLog := log.New("storage")
	storageLog.SetLevel(a.Config.logLevel())
	a.Storage = storage.NewAdapter(a.Store,
		storage.WithLogger(storageLog),
		storage.WithHeroCandidates(a.Config.HeroCandidates),
	)

	a.Cache = NewPresentationCache(a.Storage, a.Config.PresentationCacheTTL)

	a.workspaces = newWorkspaces(sessionMaxAge, a.newWorkspace)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	return nil
}

// Prepare opens the app and registers middleware and routes. Start calls
// it; tests call it to serve requests without listening.
func (a *App) Prepare() error {
	if err := a.Config.Validate(); err != nil {
		return err
	}
	if err := a.Open(); err != nil {
		return err
	}
	if a.routed {
		return nil
	}
	a.routed = true

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start prepares the app and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Prepare(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("brandkit listening on %s (%s backend)", a.Config.Addr, a.Config.Backend)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/healthz", a.handleHealth)
	e.GET("/api/presentation", a.handlePresentation)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", a.handleAdminLogout)

	e.GET("/admin/settings/footer/", a.handleFooterEditor)
	e.POST("/admin/settings/footer/", a.handleFooterSave)
	e.GET("/admin/settings/header/", a.handleHeaderEditor)
	e.POST("/admin/settings/header/", a.handleHeaderSave)
	e.GET("/admin/settings/hero/", a.handleHeroEditor)
	e.POST("/admin/settings/hero/", a.handleHeroSave)
	e.POST("/admin/settings/hero/toggle/", a.handleHeroToggle)

	e.GET("/admin/assets/", a.handleAssetList)
	e.POST("/admin/assets/upload/", a.handleAssetUpload)
	e.DELETE("/admin/assets/:id/", a.handleAssetDelete)
	e.POST("/admin/assets/:id/delete/", a.handleAssetDelete)

	api := e.Group("/admin/api", requireAdminAPI)
	api.GET("/settings/:group", a.apiGetSettings)
	api.PUT("/settings/:group", a.apiPutSettings)
	api.DELETE("/settings/:group", a.apiResetSettings)
	api.GET("/assets", a.apiListAssets)
	api.POST("/assets", a.apiCreateAsset)
	api.DELETE("/assets/:id", a.apiDeleteAsset)
	api.GET("/preferences", a.apiListPreferences)
	api.GET("/preferences/:type", a.apiGetPreferences)
	api.PUT("/preferences/:type", a.apiPutPreferences)
	api.DELETE("/preferences/:type", a.apiDeletePreferences)
	api.GET("/documents", a.apiListDocuments)
	api.PUT("/documents", a.apiSaveDocument)
	api.DELETE("/documents/:id", a.apiDeleteDocument)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.workspaces != nil {
		a.workspaces.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
