package brandkit

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/editor"
)

const workspaceKey = "workspace"

// workspace holds the drafts of one admin session. Unsaved edits in one
// browser never show up in, or get saved by, another.
type workspace struct {
	Footer  *editor.Editor[domain.FooterSettings]
	Header  *editor.Editor[domain.HeaderSettings]
	Hero    *editor.Editor[domain.HeroSettings]
	Library *editor.AssetLibrary

	lastUsed time.Time
}

// workspaces maps session workspace ids to their editors. Entries unused
// for longer than the session lifetime are evicted.
type workspaces struct {
	mu       sync.Mutex
	byID     map[string]*workspace
	ttl      time.Duration
	build    func(id string) *workspace
	stop     chan struct{}
	stopOnce sync.Once
}

// newWorkspaces starts the eviction loop. Call Stop to end it.
func newWorkspaces(ttl time.Duration, build func(id string) *workspace) *workspaces {
	w := &workspaces{
		byID:  make(map[string]*workspace),
		ttl:   ttl,
		build: build,
		stop:  make(chan struct{}),
	}
	go w.cleanup()
	return w
}

func (w *workspaces) cleanup() {
	ticker := time.NewTicker(w.ttl / 4)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.prune(time.Now().Add(-w.ttl))
		}
	}
}

func (w *workspaces) prune(cutoff time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, ws := range w.byID {
		if ws.lastUsed.Before(cutoff) {
			delete(w.byID, id)
		}
	}
}

// get returns the workspace for id, building it on first use.
func (w *workspaces) get(id string) *workspace {
	w.mu.Lock()
	defer w.mu.Unlock()
	ws, ok := w.byID[id]
	if !ok {
		ws = w.build(id)
		w.byID[id] = ws
	}
	ws.lastUsed = time.Now()
	return ws
}

// Drop forgets id's drafts.
func (w *workspaces) Drop(id string) {
	w.mu.Lock()
	delete(w.byID, id)
	w.mu.Unlock()
}

// Len is the number of live workspaces.
func (w *workspaces) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.byID)
}

// Stop ends the eviction loop.
func (w *workspaces) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// newWorkspace builds the editors of one session. Saves invalidate the
// presentation cache.
func (a *App) newWorkspace(id string) *workspace {
	ws := &workspace{
		Footer:  editor.New("footer", a.Storage.LoadFooterSettings, a.Storage.SaveFooterSettings),
		Header:  editor.New("header", a.Storage.LoadHeaderSettings, a.Storage.SaveHeaderSettings),
		Hero:    editor.New("hero", a.Storage.LoadHeroSettings, a.Storage.SaveHeroSettings),
		Library: editor.NewAssetLibrary(a.Storage),
	}
	ws.Footer.OnSaved(func(domain.FooterSettings) { a.Cache.Invalidate() })
	ws.Header.OnSaved(func(domain.HeaderSettings) { a.Cache.Invalidate() })
	ws.Hero.OnSaved(func(domain.HeroSettings) { a.Cache.Invalidate() })

	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	logTransitions := func(name string) editor.TransitionFunc {
		return func(from, to editor.State) {
			a.Echo.Logger.Debugf("editor %s/%s: %s -> %s", short, name, from, to)
		}
	}
	ws.Footer.OnTransition(logTransitions("footer"))
	ws.Header.OnTransition(logTransitions("header"))
	ws.Hero.OnTransition(logTransitions("hero"))
	ws.Library.OnTransition(logTransitions("assets"))
	return ws
}

// sessionWorkspace returns the editors of the current admin session. A session
// without a workspace id, such as one from before the id was issued, gets
// a fresh one.
func (a *App) sessionWorkspace(c echo.Context) (*workspace, error) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return nil, err
	}
	id, _ := sess.Values[workspaceKey].(string)
	if id == "" {
		id = uuid.NewString()
		sess.Values[workspaceKey] = id
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return nil, err
		}
	}
	return a.workspaces.get(id), nil
}
