package editor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/record"
	"github.com/eringen/brandkit/storage"
)

type quietLogger struct{}

func (quietLogger) Warnf(string, ...interface{})  {}
func (quietLogger) Errorf(string, ...interface{}) {}

func newAdapter(t *testing.T) (*storage.Adapter, *record.MemoryStore) {
	t.Helper()
	store := record.NewMemoryStore()
	return storage.NewAdapter(store, storage.WithLogger(quietLogger{})), store
}

type transitionLog struct {
	mu    sync.Mutex
	steps []string
}

func (l *transitionLog) hook(from, to State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, from.String()+">"+to.String())
}

func (l *transitionLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.steps...)
}

func TestEditorLifecycle(t *testing.T) {
	a, _ := newAdapter(t)
	ed := New("header", a.LoadHeaderSettings, a.SaveHeaderSettings)
	log := &transitionLog{}
	ed.OnTransition(log.hook)

	var saved []domain.HeaderSettings
	ed.OnSaved(func(h domain.HeaderSettings) { saved = append(saved, h) })

	assert.Equal(t, Idle, ed.State())
	require.NoError(t, ed.Mount(context.Background()))
	snap := ed.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.Equal(t, storage.SourceDefault, snap.Source)
	assert.Equal(t, domain.DefaultHeaderSettings(), snap.Draft)

	require.NoError(t, ed.Edit(func(h *domain.HeaderSettings) { h.Text = "Since 1998" }))
	require.NoError(t, ed.Save(context.Background()))

	assert.Equal(t, []string{
		"idle>loading", "loading>ready", "ready>ready", "ready>saving", "saving>ready",
	}, log.all())
	require.Len(t, saved, 1)
	assert.Equal(t, "Since 1998", saved[0].Text)
	assert.Equal(t, "Since 1998", a.LoadHeaderSettings(context.Background()).Value.Text)

	out := ed.TakeOutcome()
	require.NotNil(t, out)
	assert.True(t, out.OK())
	assert.Nil(t, ed.TakeOutcome())
}

func TestEditorRejectsEditsBeforeMount(t *testing.T) {
	a, store := newAdapter(t)
	ed := New("footer", a.LoadFooterSettings, a.SaveFooterSettings)

	assert.ErrorIs(t, ed.Edit(func(*domain.FooterSettings) {}), ErrNotReady)
	assert.ErrorIs(t, ed.Save(context.Background()), ErrNotReady)
	assert.Zero(t, store.Calls("upsert"))
}

func TestEditorSaveFailure(t *testing.T) {
	a, store := newAdapter(t)
	ed := New("hero", a.LoadHeroSettings, a.SaveHeroSettings)
	require.NoError(t, ed.Mount(context.Background()))

	log := &transitionLog{}
	ed.OnTransition(log.hook)
	notified := false
	ed.OnSaved(func(domain.HeroSettings) { notified = true })

	require.NoError(t, ed.Edit(func(h *domain.HeroSettings) { h.SelectedImages = nil }))
	err := ed.Save(context.Background())
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, Ready, ed.State())
	assert.False(t, notified)
	assert.Zero(t, store.Calls("upsert"))
	assert.Equal(t, []string{"ready>ready", "ready>saving", "saving>save-error", "save-error>ready"}, log.all())

	out := ed.TakeOutcome()
	require.NotNil(t, out)
	assert.False(t, out.OK())
}

func TestEditorSingleInFlightSave(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var calls int
	ed := New("header",
		func(context.Context) storage.Loaded[domain.HeaderSettings] {
			return storage.Loaded[domain.HeaderSettings]{Value: domain.DefaultHeaderSettings(), Source: storage.SourceDefault}
		},
		func(context.Context, domain.HeaderSettings) error {
			calls++
			close(entered)
			<-release
			return nil
		},
	)
	require.NoError(t, ed.Mount(context.Background()))

	done := make(chan error)
	go func() { done <- ed.Save(context.Background()) }()
	<-entered

	assert.Equal(t, Saving, ed.State())
	assert.ErrorIs(t, ed.Save(context.Background()), ErrSaveInProgress)
	assert.ErrorIs(t, ed.Edit(func(*domain.HeaderSettings) {}), ErrSaveInProgress)
	assert.ErrorIs(t, ed.Mount(context.Background()), ErrSaveInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Ready, ed.State())
}

func TestEditorReportsDegradedLoad(t *testing.T) {
	a, store := newAdapter(t)
	store.FailWith["get"] = errors.New("offline")
	ed := New("footer", a.LoadFooterSettings, a.SaveFooterSettings)
	require.NoError(t, ed.Mount(context.Background()))

	snap := ed.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.Error(t, snap.LoadErr)
	assert.Equal(t, domain.DefaultFooterSettings(), snap.Draft)
}

func TestEditorHeroToggle(t *testing.T) {
	a, _ := newAdapter(t)
	ed := New("hero", a.LoadHeroSettings, a.SaveHeroSettings)
	require.NoError(t, ed.Mount(context.Background()))
	pool := a.HeroCandidates()

	require.NoError(t, ed.Edit(func(h *domain.HeroSettings) { h.Toggle(pool[0]) }))
	require.NoError(t, ed.Edit(func(h *domain.HeroSettings) { h.Toggle(pool[0]) }))
	require.NoError(t, ed.Save(context.Background()))

	want := append(append([]string(nil), pool[1:]...), pool[0])
	assert.Equal(t, want, a.LoadHeroSettings(context.Background()).Value.SelectedImages)
}
