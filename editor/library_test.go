package editor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/brandkit/domain"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestLibraryUploadTypesByTab(t *testing.T) {
	a, _ := newAdapter(t)
	lib := NewAssetLibrary(a)
	require.NoError(t, lib.Mount(context.Background()))

	n, err := lib.Upload(context.Background(), Tab(domain.AssetSignature), []File{{Name: "sig.png", Data: pngHeader}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = lib.Upload(context.Background(), TabAll, []File{{Name: "mark.svg", ContentType: "image/svg+xml", Data: []byte("<svg/>")}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assets := lib.Assets()
	require.Len(t, assets, 2)
	byName := map[string]domain.Asset{}
	for _, asset := range assets {
		byName[asset.Name] = asset
	}
	assert.Equal(t, domain.AssetSignature, byName["sig.png"].Type)
	assert.True(t, strings.HasPrefix(byName["sig.png"].DataURL, "data:image/png;base64,"))
	assert.Equal(t, domain.AssetLogo, byName["mark.svg"].Type)
	assert.Equal(t, "image/svg+xml", domain.DataURLMime(byName["mark.svg"].DataURL))
}

func TestLibraryUploadIgnoresViewTab(t *testing.T) {
	a, _ := newAdapter(t)
	lib := NewAssetLibrary(a)
	require.NoError(t, lib.Mount(context.Background()))

	lib.SetTab(Tab(domain.AssetProduct))
	_, err := lib.Upload(context.Background(), Tab(domain.AssetIcon), []File{{Name: "i.png", Data: pngHeader}})
	require.NoError(t, err)
	require.Len(t, lib.Assets(), 1)
	assert.Equal(t, domain.AssetIcon, lib.Assets()[0].Type)
	assert.Equal(t, Tab(domain.AssetProduct), lib.Tab())
}

func TestLibraryUploadMediaType(t *testing.T) {
	svg := []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"/>`)
	cases := []struct {
		file File
		want string
	}{
		{File{Name: "mark.svg", Data: svg}, "image/svg+xml"},
		{File{Name: "MARK.SVG", ContentType: "application/octet-stream", Data: svg}, "image/svg+xml"},
		{File{Name: "logo.png", Data: pngHeader}, "image/png"},
		{File{Name: "noext", Data: pngHeader}, "image/png"},
		{File{Name: "notes", Data: []byte("plain words")}, "text/plain"},
		{File{Name: "x.svg", ContentType: "image/svg+xml; charset=utf-8", Data: svg}, "image/svg+xml"},
	}
	for _, tc := range cases {
		a, _ := newAdapter(t)
		lib := NewAssetLibrary(a)
		require.NoError(t, lib.Mount(context.Background()))
		_, err := lib.Upload(context.Background(), TabAll, []File{tc.file})
		require.NoError(t, err, tc.file.Name)
		dataURL := lib.Assets()[0].DataURL
		assert.Equal(t, tc.want, domain.DataURLMime(dataURL), tc.file.Name)
		assert.True(t, strings.HasPrefix(dataURL, "data:"+tc.want+";base64,"), dataURL)
	}
}

func TestLibraryUploadIsSequential(t *testing.T) {
	a, store := newAdapter(t)
	lib := NewAssetLibrary(a)
	require.NoError(t, lib.Mount(context.Background()))

	files := []File{
		{Name: "one.png", Data: pngHeader},
		{Name: "two.png", Data: pngHeader},
		{Name: "three.png", Data: pngHeader},
	}
	n, err := lib.Upload(context.Background(), TabAll, files)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, store.Calls("upsert"))

	names := []string{}
	for _, asset := range lib.Assets() {
		names = append(names, asset.Name)
	}
	assert.Equal(t, []string{"one.png", "two.png", "three.png"}, names)
}

func TestLibraryUploadFailureContinues(t *testing.T) {
	a, store := newAdapter(t)
	lib := NewAssetLibrary(a)
	require.NoError(t, lib.Mount(context.Background()))
	log := &transitionLog{}
	lib.OnTransition(log.hook)

	store.FailWith["upsert"] = errors.New("payload too large")
	n, err := lib.Upload(context.Background(), TabAll, []File{{Name: "a.png", Data: pngHeader}, {Name: "b.png", Data: pngHeader}})
	assert.Zero(t, n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.png")
	assert.Contains(t, err.Error(), "b.png")
	assert.Equal(t, []string{"ready>saving", "saving>save-error", "save-error>ready"}, log.all())
	assert.Equal(t, Ready, lib.State())
}

func TestLibraryFilterCountsDelete(t *testing.T) {
	a, _ := newAdapter(t)
	ctx := context.Background()
	for _, asset := range []domain.Asset{
		{ID: "l1", Type: domain.AssetLogo, DataURL: "data:,1", CreatedAt: 1},
		{ID: "l2", Type: domain.AssetLogo, DataURL: "data:,1", CreatedAt: 2},
		{ID: "p1", Type: domain.AssetProduct, DataURL: "data:,1", CreatedAt: 3},
	} {
		_, err := a.SaveAsset(ctx, asset)
		require.NoError(t, err)
	}

	lib := NewAssetLibrary(a)
	var changed [][]domain.Asset
	lib.OnChanged(func(list []domain.Asset) { changed = append(changed, list) })
	require.NoError(t, lib.Mount(ctx))

	counts := lib.Counts()
	assert.Equal(t, 3, counts[TabAll])
	assert.Equal(t, 2, counts[Tab(domain.AssetLogo)])
	assert.Equal(t, 0, counts[Tab(domain.AssetIcon)])

	lib.SetTab(Tab(domain.AssetProduct))
	filtered := lib.Filtered()
	require.Len(t, filtered, 1)
	assert.Equal(t, "p1", filtered[0].ID)

	require.NoError(t, lib.Delete(ctx, "l1"))
	assert.Len(t, lib.Assets(), 2)
	require.Len(t, changed, 1)
	assert.Len(t, changed[0], 2)
}

func TestLibraryRequiresMount(t *testing.T) {
	a, _ := newAdapter(t)
	lib := NewAssetLibrary(a)
	_, err := lib.Upload(context.Background(), TabAll, []File{{Name: "x.png"}})
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, lib.Delete(context.Background(), "x"), ErrNotReady)
}

func TestParseTab(t *testing.T) {
	cases := map[string]Tab{
		"":        TabAll,
		"ALL":     TabAll,
		"all":     TabAll,
		"logo":    Tab(domain.AssetLogo),
		"PRODUCT": Tab(domain.AssetProduct),
	}
	for in, want := range cases {
		got, ok := ParseTab(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseTab("banner")
	assert.False(t, ok)
	assert.Equal(t, domain.AssetLogo, TabAll.UploadType())
}
