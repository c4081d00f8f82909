package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/editor"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestFooterEditorEscapesDraft(t *testing.T) {
	p := FooterPage{
		Page:   Page{SiteName: "Acme", CSRF: "tok", Active: "footer"},
		Editor: editor.Snapshot[domain.FooterSettings]{Draft: domain.FooterSettings{Address: `<b>"Main" St</b>`}},
		Flash:  &Flash{OK: true, Message: "Footer saved."},
	}
	out := render(t, FooterEditor(p))

	assert.Contains(t, out, "&lt;b&gt;&#34;Main&#34; St&lt;/b&gt;")
	assert.NotContains(t, out, `<b>"Main"`)
	assert.Contains(t, out, `<div class="flash flash-ok" role="status">Footer saved.</div>`)
	assert.Contains(t, out, `name="_csrf" value="tok"`)
	assert.Contains(t, out, `<a href="/admin/settings/footer/" class="active">Footer</a>`)
}

func TestHeroImagesListsRetiredAfterPool(t *testing.T) {
	p := HeroPage{
		Page: Page{CSRF: "tok"},
		Editor: editor.Snapshot[domain.HeroSettings]{Draft: domain.HeroSettings{
			SelectedImages: []string{"/img/old.jpg", "/img/b.jpg"},
		}},
		Candidates: []string{"/img/a.jpg", "/img/b.jpg"},
		Retired:    []string{"/img/old.jpg"},
	}
	out := render(t, HeroImages(p))

	a := strings.Index(out, `src="/img/a.jpg"`)
	b := strings.Index(out, `src="/img/b.jpg"`)
	old := strings.Index(out, `src="/img/old.jpg"`)
	require.True(t, a >= 0 && b >= 0 && old >= 0, out)
	assert.Less(t, a, b)
	assert.Less(t, b, old)
	assert.Contains(t, out, `class="hero-option selected retired"`)
	assert.Contains(t, out, `<span class="badge">1</span>`)
	assert.Contains(t, out, "no longer offered")
	assert.NotContains(t, out, "Select at least one image")
}

func TestHeroImagesWarnsOnEmptySelection(t *testing.T) {
	out := render(t, HeroImages(HeroPage{Candidates: []string{"/img/a.jpg"}}))

	assert.Contains(t, out, "Select at least one image")
	assert.NotContains(t, out, "retired")
	assert.Contains(t, out, `class="hero-option"`)
}

func TestAssetGridLinks(t *testing.T) {
	p := AssetsPage{
		Tab:    editor.Tab(domain.AssetIcon),
		Counts: map[editor.Tab]int{editor.Tab(domain.AssetIcon): 1},
		Assets: []domain.Asset{{ID: "a b", Name: "mark.svg", Type: domain.AssetIcon, DataURL: "data:image/svg+xml;base64,PHN2Zy8+"}},
	}
	out := render(t, AssetGrid(p))

	assert.Contains(t, out, `href="/admin/assets/?tab=ICON"`)
	assert.Contains(t, out, `action="/admin/assets/a%20b/delete/"`)
	assert.Contains(t, out, `hx-delete="/admin/assets/a%20b/"`)
	assert.Contains(t, out, `<input type="hidden" name="tab" value="ICON">`)
	assert.Contains(t, out, "Upload as Icon")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Pro Invoice", Title("PRO_INVOICE"))
	assert.Equal(t, "Icon", Title("ICON"))
}
