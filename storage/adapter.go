// Package storage translates brandkit's domain operations into record store
// calls. Loads never fail: a missing record yields the documented default,
// and a store error is logged and also yields the default, tagged so the
// caller can tell the two apart.
package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/record"
)

// Logger is the subset of the echo/gommon logger the adapter writes to.
type Logger interface {
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Source tells where a loaded value came from.
type Source int

const (
	// SourceStored means the value was read from the store.
	SourceStored Source = iota
	// SourceDefault means nothing usable was stored and the default was used.
	SourceDefault
)

func (s Source) String() string {
	if s == SourceStored {
		return "stored"
	}
	return "default"
}

// Loaded is the result of every load. Value is always usable. Err is set
// only when the default stands in for a record the store failed to return.
type Loaded[T any] struct {
	Value  T
	Source Source
	Err    error
}

// Degraded reports whether the store failed and Value is a fallback.
func (l Loaded[T]) Degraded() bool {
	return l.Err != nil
}

// Adapter is the persistence adapter over a record.Store.
type Adapter struct {
	store          record.Store
	log            Logger
	heroCandidates []string
	now            func() time.Time
	newID          func() string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger replaces the default "storage" gommon logger.
func WithLogger(l Logger) Option {
	return func(a *Adapter) {
		a.log = l
	}
}

// WithHeroCandidates sets the image pool hero selections are drawn from.
func WithHeroCandidates(pool []string) Option {
	return func(a *Adapter) {
		if len(pool) > 0 {
			a.heroCandidates = slices.Clone(pool)
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		a.now = now
	}
}

// NewAdapter wraps store.
func NewAdapter(store record.Store, opts ...Option) *Adapter {
	a := &Adapter{
		store:          store,
		log:            log.New("storage"),
		heroCandidates: slices.Clone(domain.DefaultHeroCandidates),
		now:            time.Now,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HeroCandidates returns the configured hero image pool.
func (a *Adapter) HeroCandidates() []string {
	return slices.Clone(a.heroCandidates)
}

// Store exposes the underlying record store.
func (a *Adapter) Store() record.Store {
	return a.store
}

func loadSingleton[T any](ctx context.Context, a *Adapter, key string, def func() T) Loaded[T] {
	rec, err := a.store.Get(ctx, record.TablePreferences, key)
	if errors.Is(err, record.ErrNotFound) {
		return Loaded[T]{Value: def(), Source: SourceDefault}
	}
	if err != nil {
		a.log.Errorf("load %s: %v", key, err)
		return Loaded[T]{Value: def(), Source: SourceDefault, Err: err}
	}
	var v T
	if err := rec.Decode(&v); err != nil {
		a.log.Errorf("load %s: %v", key, err)
		return Loaded[T]{Value: def(), Source: SourceDefault, Err: err}
	}
	return Loaded[T]{Value: v, Source: SourceStored}
}

// saveSingleton replaces the whole record under key; there is no merge.
func saveSingleton[T any](ctx context.Context, a *Adapter, key string, v T) error {
	rec, err := record.Encode(key, v)
	if err != nil {
		a.log.Errorf("save %s: %v", key, err)
		return err
	}
	if err := a.store.Upsert(ctx, record.TablePreferences, rec); err != nil {
		a.log.Errorf("save %s: %v", key, err)
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// LoadFooterSettings returns the stored footer or DefaultFooterSettings.
func (a *Adapter) LoadFooterSettings(ctx context.Context) Loaded[domain.FooterSettings] {
	return loadSingleton(ctx, a, domain.KeyGlobalFooter, domain.DefaultFooterSettings)
}

// SaveFooterSettings validates icon choices and overwrites the footer.
func (a *Adapter) SaveFooterSettings(ctx context.Context, f domain.FooterSettings) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return saveSingleton(ctx, a, domain.KeyGlobalFooter, f)
}

func (a *Adapter) LoadHeaderSettings(ctx context.Context) Loaded[domain.HeaderSettings] {
	return loadSingleton(ctx, a, domain.KeyGlobalHeader, domain.DefaultHeaderSettings)
}

func (a *Adapter) SaveHeaderSettings(ctx context.Context, h domain.HeaderSettings) error {
	if err := h.Validate(); err != nil {
		return err
	}
	return saveSingleton(ctx, a, domain.KeyGlobalHeader, h)
}

func (a *Adapter) LoadHeroSettings(ctx context.Context) Loaded[domain.HeroSettings] {
	return loadSingleton(ctx, a, domain.KeyGlobalHero, func() domain.HeroSettings {
		return domain.DefaultHeroSettings(a.heroCandidates)
	})
}

// SaveHeroSettings rejects an empty selection before touching the store.
func (a *Adapter) SaveHeroSettings(ctx context.Context, h domain.HeroSettings) error {
	if err := h.Validate(a.heroCandidates); err != nil {
		return err
	}
	return saveSingleton(ctx, a, domain.KeyGlobalHero, h)
}

// ResetSettings deletes a singleton so the next load returns its default.
func (a *Adapter) ResetSettings(ctx context.Context, g Group) error {
	if err := a.store.Delete(ctx, record.TablePreferences, g.Key()); err != nil {
		a.log.Errorf("reset %s: %v", g, err)
		return fmt.Errorf("reset %s: %w", g, err)
	}
	return nil
}
