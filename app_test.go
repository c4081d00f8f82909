package brandkit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/record"
)

var testHeroPool = []string{"/public/hero/a.jpg", "/public/hero/b.jpg", "/public/hero/c.jpg"}

type testClient struct {
	t    *testing.T
	app  *App
	srv  *httptest.Server
	http *http.Client
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	a := New(Config{
		Backend:        BackendMemory,
		AdminPassword:  "secret",
		SessionSecret:  "0123456789abcdef0123456789abcdef",
		HeroCandidates: testHeroPool,
		LogLevel:       "off",
	}, WithStore(record.NewMemoryStore()), WithStaticDir(t.TempDir()))
	require.NoError(t, a.Prepare())

	srv := httptest.NewServer(a.Echo)
	t.Cleanup(func() {
		srv.Close()
		a.Close()
	})
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{
		t:   t,
		app: a,
		srv: srv,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// peer is a second browser on the same server, with its own cookie jar.
func (tc *testClient) peer() *testClient {
	tc.t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(tc.t, err)
	return &testClient{
		t:   tc.t,
		app: tc.app,
		srv: tc.srv,
		http: &http.Client{
			Jar:           jar,
			CheckRedirect: tc.http.CheckRedirect,
		},
	}
}

func (tc *testClient) get(path string) (int, string) {
	tc.t.Helper()
	resp := tc.do(http.MethodGet, path, "", nil)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

// csrf returns the token cookie, fetching the login page first if needed.
func (tc *testClient) csrf() string {
	u, _ := url.Parse(tc.srv.URL)
	for _, ck := range tc.http.Jar.Cookies(u) {
		if ck.Name == "_csrf" {
			return ck.Value
		}
	}
	resp := tc.do(http.MethodGet, "/admin/", "", nil)
	resp.Body.Close()
	for _, ck := range tc.http.Jar.Cookies(u) {
		if ck.Name == "_csrf" {
			return ck.Value
		}
	}
	tc.t.Fatal("no _csrf cookie after GET /admin/")
	return ""
}

func (tc *testClient) do(method, path, contentType string, body io.Reader) *http.Response {
	tc.t.Helper()
	req, err := http.NewRequest(method, tc.srv.URL+path, body)
	require.NoError(tc.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method != http.MethodGet {
		req.Header.Set("X-CSRF-Token", tc.csrf())
	}
	resp, err := tc.http.Do(req)
	require.NoError(tc.t, err)
	return resp
}

func (tc *testClient) login() {
	tc.t.Helper()
	form := url.Values{"password": {"secret"}}
	resp := tc.do(http.MethodPost, "/admin/login/", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	resp.Body.Close()
	require.Equal(tc.t, http.StatusSeeOther, resp.StatusCode)
}

func (tc *testClient) jsonDo(method, path string, in any, out any) int {
	tc.t.Helper()
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		require.NoError(tc.t, err)
		body = bytes.NewReader(b)
	}
	resp := tc.do(method, path, "application/json", body)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(tc.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (tc *testClient) form(path string, vals url.Values) (int, string) {
	tc.t.Helper()
	resp := tc.do(http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(vals.Encode()))
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

type settingsEnvelope[T any] struct {
	Value    T      `json:"value"`
	Source   string `json:"source"`
	Degraded bool   `json:"degraded"`
}

func TestHealth(t *testing.T) {
	tc := newTestClient(t)
	var out map[string]string
	code := tc.jsonDo(http.MethodGet, "/healthz", nil, &out)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "memory", out["backend"])
}

func TestAdminAPIRequiresLogin(t *testing.T) {
	tc := newTestClient(t)
	resp := tc.do(http.MethodGet, "/admin/api/settings/footer", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "login required", body["error"])
}

func TestLoginWrongPassword(t *testing.T) {
	tc := newTestClient(t)
	code, body := tc.form("/admin/login/", url.Values{"password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Contains(t, body, "Wrong password")
}

func TestLoginRateLimited(t *testing.T) {
	tc := newTestClient(t)
	for i := 0; i < 5; i++ {
		code, _ := tc.form("/admin/login/", url.Values{"password": {"nope"}})
		require.Equal(t, http.StatusUnauthorized, code)
	}
	code, _ := tc.form("/admin/login/", url.Values{"password": {"secret"}})
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestWritesNeedCSRFToken(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	req, err := http.NewRequest(http.MethodPut, tc.srv.URL+"/admin/api/settings/header", strings.NewReader(`{}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := tc.http.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSettingsAPIRoundTrip(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	var before settingsEnvelope[map[string]any]
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodGet, "/admin/api/settings/header", nil, &before))
	assert.Equal(t, "default", before.Source)
	assert.Equal(t, "serif", before.Value["fontFamily"])

	header := map[string]any{"text": "ACME Motors", "fontSize": 18, "fontFamily": "sans", "alignment": "center", "isItalic": false}
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodPut, "/admin/api/settings/header", header, nil))

	var after settingsEnvelope[map[string]any]
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodGet, "/admin/api/settings/header", nil, &after))
	assert.Equal(t, "stored", after.Source)
	assert.Equal(t, "ACME Motors", after.Value["text"])
	assert.Equal(t, "center", after.Value["alignment"])
	assert.Equal(t, false, after.Value["isItalic"])

	assert.Equal(t, http.StatusNoContent, tc.jsonDo(http.MethodDelete, "/admin/api/settings/header", nil, nil))
	var reset settingsEnvelope[map[string]any]
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodGet, "/admin/api/settings/header", nil, &reset))
	assert.Equal(t, "default", reset.Source)
}

func TestSettingsAPIRejectsInvalid(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	hero := map[string]any{"selectedImages": []string{}, "transitionEffect": "fade", "interval": 5000}
	assert.Equal(t, http.StatusBadRequest, tc.jsonDo(http.MethodPut, "/admin/api/settings/hero", hero, nil))

	foreign := map[string]any{"selectedImages": []string{"/elsewhere.jpg"}, "transitionEffect": "fade", "interval": 5000}
	assert.Equal(t, http.StatusBadRequest, tc.jsonDo(http.MethodPut, "/admin/api/settings/hero", foreign, nil))

	footer := map[string]any{"address": "x", "emailIcon": "Rocket"}
	assert.Equal(t, http.StatusBadRequest, tc.jsonDo(http.MethodPut, "/admin/api/settings/footer", footer, nil))

	assert.Equal(t, 0, tc.app.Store.(*record.MemoryStore).Calls("upsert"))
	assert.Equal(t, http.StatusNotFound, tc.jsonDo(http.MethodGet, "/admin/api/settings/sidebar", nil, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, tc.jsonDo(http.MethodPut, "/admin/api/settings/preferences", map[string]any{}, nil))
}

func TestPresentationFollowsSaves(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	var p Presentation
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodGet, "/api/presentation", nil, &p))
	assert.Equal(t, "", p.Header.Text)
	assert.Equal(t, testHeroPool, p.Hero.SelectedImages)
	assert.Equal(t, "MapPin", p.FooterIcons["address"])

	header := map[string]any{"text": "Cached?", "fontSize": 14, "fontFamily": "serif", "alignment": "left", "isItalic": true}
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodPut, "/admin/api/settings/header", header, nil))

	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodGet, "/api/presentation", nil, &p))
	assert.Equal(t, "Cached?", p.Header.Text)
}

func TestHeroPagesToggleAndSave(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	resp := tc.do(http.MethodGet, "/admin/settings/hero/", "", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	code, _ := tc.form("/admin/settings/hero/toggle/", url.Values{"image": {testHeroPool[0]}})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, tc.app.Store.(*record.MemoryStore).Calls("upsert"), "toggle must not save")

	code, body := tc.form("/admin/settings/hero/", url.Values{"transitionEffect": {"slide"}, "interval": {"3000"}})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Hero banner saved.")

	var got settingsEnvelope[map[string]any]
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodGet, "/admin/api/settings/hero", nil, &got))
	assert.Equal(t, []any{testHeroPool[1], testHeroPool[2]}, got.Value["selectedImages"])
	assert.Equal(t, "slide", got.Value["transitionEffect"])

	code, _ = tc.form("/admin/settings/hero/toggle/", url.Values{"image": {"/not/a/candidate.jpg"}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestFooterFormSave(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	code, body := tc.form("/admin/settings/footer/", url.Values{
		"address":      {"1 Main St"},
		"email":        {"shop@example.com"},
		"emailIcon":    {"Send"},
		"addressIcon":  {"MapPin"},
		"bottomOffset": {"12"},
		"alignment":    {"Center"},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Footer saved.")

	var got settingsEnvelope[map[string]any]
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodGet, "/admin/api/settings/footer", nil, &got))
	assert.Equal(t, "Send", got.Value["emailIcon"])
	assert.NotContains(t, got.Value, "addressIcon")
	assert.Equal(t, 12.0, got.Value["bottomOffset"])
	assert.Equal(t, "center", got.Value["alignment"])
	assert.NotContains(t, got.Value, "lineSpacing")

	code, _ = tc.form("/admin/settings/footer/", url.Values{"bottomOffset": {"ten"}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAssetUploadAndDelete(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("tab", "ICON"))
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	for _, name := range []string{"one.png", "two.png"} {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write(png)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp := tc.do(http.MethodPost, "/admin/assets/upload/", mw.FormDataContentType(), &buf)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "Uploaded 2 of 2 files.")

	var list settingsEnvelope[[]map[string]any]
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodGet, "/admin/api/assets?type=icon", nil, &list))
	require.Len(t, list.Value, 2)
	assert.Equal(t, "ICON", list.Value[0]["type"])
	assert.True(t, strings.HasPrefix(list.Value[0]["dataUrl"].(string), "data:image/png;base64,"))

	id := list.Value[0]["id"].(string)
	assert.Equal(t, http.StatusNoContent, tc.jsonDo(http.MethodDelete, "/admin/api/assets/"+id, nil, nil))
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodGet, "/admin/api/assets", nil, &list))
	assert.Len(t, list.Value, 1)

	code, page := tc.get("/admin/assets/?tab=ICON")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, strings.Count(page, "/delete/"))
}

func TestAssetUploadTypedByFormTab(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	code, _ := tc.get("/admin/assets/?tab=PRODUCT")
	require.Equal(t, http.StatusOK, code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("tab", "ICON"))
	fw, err := mw.CreateFormFile("files", "mark.svg")
	require.NoError(t, err)
	_, err = fw.Write([]byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"/>`))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp := tc.do(http.MethodPost, "/admin/assets/upload/", mw.FormDataContentType(), &buf)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list settingsEnvelope[[]map[string]any]
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodGet, "/admin/api/assets", nil, &list))
	require.Len(t, list.Value, 1)
	assert.Equal(t, "ICON", list.Value[0]["type"])
	assert.True(t, strings.HasPrefix(list.Value[0]["dataUrl"].(string), "data:image/svg+xml;base64,"))
}

func TestHeroDraftsArePerSession(t *testing.T) {
	alice := newTestClient(t)
	alice.login()
	bob := alice.peer()
	bob.login()

	code, _ := alice.get("/admin/settings/hero/")
	require.Equal(t, http.StatusOK, code)
	code, _ = alice.form("/admin/settings/hero/toggle/", url.Values{"image": {testHeroPool[0]}})
	require.Equal(t, http.StatusOK, code)

	code, body := bob.form("/admin/settings/hero/", url.Values{"transitionEffect": {"fade"}, "interval": {"9000"}})
	require.Equal(t, http.StatusOK, code, body)

	var got settingsEnvelope[domain.HeroSettings]
	require.Equal(t, http.StatusOK, bob.jsonDo(http.MethodGet, "/admin/api/settings/hero", nil, &got))
	assert.Equal(t, testHeroPool, got.Value.SelectedImages, "another session's unsaved toggle was saved")
	assert.Equal(t, 9000, got.Value.Interval)

	// A JSON write lands in storage without replacing alice's draft.
	put := domain.HeroSettings{SelectedImages: testHeroPool[2:], TransitionEffect: domain.TransitionZoom, Interval: 4000}
	require.Equal(t, http.StatusOK, bob.jsonDo(http.MethodPut, "/admin/api/settings/hero", put, nil))

	code, body = alice.form("/admin/settings/hero/", url.Values{"transitionEffect": {"slide"}, "interval": {"3000"}})
	require.Equal(t, http.StatusOK, code, body)
	require.Equal(t, http.StatusOK, alice.jsonDo(http.MethodGet, "/admin/api/settings/hero", nil, &got))
	assert.Equal(t, testHeroPool[1:], got.Value.SelectedImages)
	assert.Equal(t, 2, alice.app.workspaces.Len())
}

func TestLogoutDropsWorkspace(t *testing.T) {
	tc := newTestClient(t)
	tc.login()
	code, _ := tc.get("/admin/settings/footer/")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, tc.app.workspaces.Len())

	code, _ = tc.form("/admin/logout/", nil)
	assert.Equal(t, http.StatusSeeOther, code)
	assert.Zero(t, tc.app.workspaces.Len())
}

func TestHeroRetiredImageCanBeRemoved(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	retired := "/public/hero/retired.jpg"
	rec, err := record.Encode(domain.KeyGlobalHero, domain.HeroSettings{
		SelectedImages:   []string{retired, testHeroPool[0]},
		TransitionEffect: domain.TransitionFade,
		Interval:         5000,
	})
	require.NoError(t, err)
	require.NoError(t, tc.app.Store.Upsert(context.Background(), record.TablePreferences, rec))

	code, page := tc.get("/admin/settings/hero/")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, retired)

	code, _ = tc.form("/admin/settings/hero/toggle/", url.Values{"image": {retired}})
	require.Equal(t, http.StatusOK, code)

	code, _ = tc.form("/admin/settings/hero/toggle/", url.Values{"image": {retired}})
	assert.Equal(t, http.StatusBadRequest, code, "a retired image must not be added back")

	code, body := tc.form("/admin/settings/hero/", url.Values{"transitionEffect": {"fade"}, "interval": {"5000"}})
	require.Equal(t, http.StatusOK, code, body)

	var got settingsEnvelope[domain.HeroSettings]
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodGet, "/admin/api/settings/hero", nil, &got))
	assert.Equal(t, []string{testHeroPool[0]}, got.Value.SelectedImages)
}

func TestCreateAssetAPI(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	var asset map[string]any
	code := tc.jsonDo(http.MethodPost, "/admin/api/assets", map[string]string{
		"name": "sig.png", "type": "signature", "dataUrl": "data:image/png;base64,AAAA",
	}, &asset)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "SIGNATURE", asset["type"])
	assert.Len(t, asset["id"], 36)

	assert.Equal(t, http.StatusBadRequest, tc.jsonDo(http.MethodPost, "/admin/api/assets", map[string]string{
		"name": "x", "type": "BANNER", "dataUrl": "data:image/png;base64,AAAA",
	}, nil))
	assert.Equal(t, http.StatusBadRequest, tc.jsonDo(http.MethodPost, "/admin/api/assets", map[string]string{
		"name": "x", "type": "LOGO",
	}, nil))
}

func TestPreferencesAndDocuments(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	assert.Equal(t, http.StatusNotFound, tc.jsonDo(http.MethodGet, "/admin/api/preferences/invoice", nil, nil))

	prefs := map[string]any{"logoUrl": "data:image/png;base64,AAAA", "logoSize": 40}
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodPut, "/admin/api/preferences/invoice", prefs, nil))

	var got map[string]any
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodGet, "/admin/api/preferences/INVOICE", nil, &got))
	assert.Equal(t, 40.0, got["logoSize"])

	var doc map[string]any
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodPut, "/admin/api/documents",
		map[string]any{"type": "INVOICE", "docNumber": "INV-1", "color": "red"}, &doc))
	assert.Equal(t, "data:image/png;base64,AAAA", doc["logoUrl"])
	assert.Equal(t, "red", doc["color"])
	assert.NotEmpty(t, doc["id"])
	assert.NotZero(t, doc["createdAt"])

	var plain map[string]any
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodPut, "/admin/api/documents?applyPreferences=false",
		map[string]any{"type": "INVOICE", "docNumber": "INV-2"}, &plain))
	assert.NotContains(t, plain, "logoUrl")

	var docs settingsEnvelope[[]map[string]any]
	require.Equal(t, http.StatusOK, tc.jsonDo(http.MethodGet, "/admin/api/documents", nil, &docs))
	assert.Len(t, docs.Value, 2)

	assert.Equal(t, http.StatusNoContent, tc.jsonDo(http.MethodDelete, "/admin/api/documents/"+doc["id"].(string), nil, nil))
	assert.Equal(t, http.StatusNoContent, tc.jsonDo(http.MethodDelete, "/admin/api/preferences/invoice", nil, nil))
	assert.Equal(t, http.StatusNotFound, tc.jsonDo(http.MethodGet, "/admin/api/preferences/invoice", nil, nil))
	assert.Equal(t, http.StatusNotFound, tc.jsonDo(http.MethodGet, "/admin/api/preferences/receipt", nil, nil))
}

func TestDashboardRendersAfterLogin(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	resp := tc.do(http.MethodGet, "/admin/", "", nil)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "/admin/settings/footer/")
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}
