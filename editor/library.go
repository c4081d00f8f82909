package editor

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/storage"
)

// AssetStore is what the library needs from the persistence adapter.
type AssetStore interface {
	LoadAssets(ctx context.Context) storage.Loaded[[]domain.Asset]
	SaveAsset(ctx context.Context, a domain.Asset) ([]domain.Asset, error)
	DeleteAsset(ctx context.Context, id string) ([]domain.Asset, error)
	NewAsset(name string, t domain.AssetType, dataURL string) domain.Asset
}

// Tab filters the library view. TabAll shows every type.
type Tab string

const TabAll Tab = "ALL"

// Tabs lists the tabs in display order.
func Tabs() []Tab {
	tabs := []Tab{TabAll}
	for _, t := range domain.AssetTypes {
		tabs = append(tabs, Tab(t))
	}
	return tabs
}

// ParseTab accepts ALL or any asset type, case-insensitively.
func ParseTab(s string) (Tab, bool) {
	if s == "" {
		return TabAll, true
	}
	if t, ok := domain.ParseAssetType(s); ok {
		return Tab(t), true
	}
	if Tab(s) == TabAll || s == "all" {
		return TabAll, true
	}
	return "", false
}

// UploadType is the asset type given to files uploaded from this tab.
func (t Tab) UploadType() domain.AssetType {
	if t == TabAll {
		return domain.AssetLogo
	}
	return domain.AssetType(t)
}

// File is one selected upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// mediaType is the declared type, falling back to the extension's type and
// then to sniffing. Parameters are dropped.
func (f File) mediaType() string {
	typ := f.ContentType
	if typ == "" || typ == "application/octet-stream" {
		typ = mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name)))
	}
	if typ == "" {
		typ = http.DetectContentType(f.Data)
	}
	if mt, _, err := mime.ParseMediaType(typ); err == nil {
		return mt
	}
	typ, _, _ = strings.Cut(typ, ";")
	return strings.TrimSpace(typ)
}

// AssetLibrary is the editor behind the asset browser.
type AssetLibrary struct {
	store AssetStore

	mu          sync.Mutex
	state       State
	assets      []domain.Asset
	tab         Tab
	loadErr     error
	transitions []TransitionFunc
	listeners   []func([]domain.Asset)
}

// NewAssetLibrary returns an Idle library on the ALL tab.
func NewAssetLibrary(store AssetStore) *AssetLibrary {
	return &AssetLibrary{store: store, tab: TabAll}
}

// OnTransition registers fn for every state change.
func (l *AssetLibrary) OnTransition(fn TransitionFunc) {
	l.mu.Lock()
	l.transitions = append(l.transitions, fn)
	l.mu.Unlock()
}

// OnChanged registers fn to run with the new list after uploads and deletes.
func (l *AssetLibrary) OnChanged(fn func([]domain.Asset)) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

func (l *AssetLibrary) move(to State) []TransitionFunc {
	l.state = to
	return l.transitions
}

// Mount loads the list.
func (l *AssetLibrary) Mount(ctx context.Context) error {
	l.mu.Lock()
	if l.state == Saving {
		l.mu.Unlock()
		return ErrSaveInProgress
	}
	from := l.state
	hooks := l.move(Loading)
	l.mu.Unlock()
	fire(hooks, [2]State{from, Loading})

	loaded := l.store.LoadAssets(ctx)

	l.mu.Lock()
	l.assets = loaded.Value
	l.loadErr = loaded.Err
	hooks = l.move(Ready)
	l.mu.Unlock()
	fire(hooks, [2]State{Loading, Ready})
	return nil
}

// Busy reports whether a load or upload is running.
func (l *AssetLibrary) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == Loading || l.state == Saving
}

// State returns the current state.
func (l *AssetLibrary) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// LoadErr is the masked error of the last load, if any.
func (l *AssetLibrary) LoadErr() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadErr
}

// SetTab switches the active filter.
func (l *AssetLibrary) SetTab(t Tab) {
	l.mu.Lock()
	l.tab = t
	l.mu.Unlock()
}

func (l *AssetLibrary) Tab() Tab {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tab
}

// Assets returns a copy of the whole list.
func (l *AssetLibrary) Assets() []domain.Asset {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Asset(nil), l.assets...)
}

// Filtered returns the assets visible on the active tab.
func (l *AssetLibrary) Filtered() []domain.Asset {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Asset, 0, len(l.assets))
	for _, a := range l.assets {
		if l.tab == TabAll || Tab(a.Type) == l.tab {
			out = append(out, a)
		}
	}
	return out
}

// Counts returns the number of assets per tab.
func (l *AssetLibrary) Counts() map[Tab]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	counts := map[Tab]int{TabAll: len(l.assets)}
	for _, t := range domain.AssetTypes {
		counts[Tab(t)] = 0
	}
	for _, a := range l.assets {
		counts[Tab(a.Type)]++
	}
	return counts
}

// begin moves Ready to Saving for an upload or delete.
func (l *AssetLibrary) begin() error {
	l.mu.Lock()
	switch l.state {
	case Ready:
	case Saving, Loading:
		l.mu.Unlock()
		return ErrSaveInProgress
	default:
		l.mu.Unlock()
		return ErrNotReady
	}
	hooks := l.move(Saving)
	l.mu.Unlock()
	fire(hooks, [2]State{Ready, Saving})
	return nil
}

func (l *AssetLibrary) finish(failed bool) {
	l.mu.Lock()
	var steps [][2]State
	if failed {
		l.move(SaveError)
		steps = append(steps, [2]State{Saving, SaveError}, [2]State{SaveError, Ready})
	} else {
		steps = append(steps, [2]State{Saving, Ready})
	}
	hooks := l.move(Ready)
	assets := append([]domain.Asset(nil), l.assets...)
	listeners := l.listeners
	l.mu.Unlock()
	fire(hooks, steps...)
	for _, fn := range listeners {
		fn(assets)
	}
}

// Upload stores files one at a time, in order, typed after tab. A failed
// file does not stop the remaining ones. It returns how many were stored and
// the joined errors of those that were not.
func (l *AssetLibrary) Upload(ctx context.Context, tab Tab, files []File) (int, error) {
	if err := l.begin(); err != nil {
		return 0, err
	}
	t := tab.UploadType()

	var errs []error
	stored := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		asset := l.store.NewAsset(f.Name, t, domain.EncodeDataURL(f.mediaType(), f.Data))
		list, err := l.store.SaveAsset(ctx, asset)
		if list != nil {
			l.mu.Lock()
			l.assets = list
			l.mu.Unlock()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
			continue
		}
		stored++
	}
	err := errors.Join(errs...)
	l.finish(err != nil)
	return stored, err
}

// Delete removes one asset.
func (l *AssetLibrary) Delete(ctx context.Context, id string) error {
	if err := l.begin(); err != nil {
		return err
	}
	list, err := l.store.DeleteAsset(ctx, id)
	if list != nil {
		l.mu.Lock()
		l.assets = list
		l.mu.Unlock()
	}
	l.finish(err != nil)
	return err
}
