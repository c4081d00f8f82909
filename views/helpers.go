package views

import (
	"encoding/json"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/editor"
)

// FormatNum prints an optional millimetre value for an input, empty when unset.
func FormatNum(p *float64) string {
	if p == nil {
		return ""
	}
	return formatFloat(*p)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TabClass returns CSS classes for a library tab, with active variant.
func TabClass(active bool) string {
	base := "inline-flex items-center rounded border px-3 py-1 text-xs font-semibold uppercase tracking-wide"
	if active {
		base += " bg-ink text-white"
	}
	return base
}

// Title turns an enum like PRO_INVOICE into "Pro Invoice".
func Title(s string) string {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(s), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func navClass(active bool) string {
	if active {
		return "active"
	}
	return ""
}

func flashClass(ok bool) string {
	if ok {
		return "flash flash-ok"
	}
	return "flash flash-error"
}

// csrfHeaders is the hx-headers value that sends the token with every htmx
// request.
func csrfHeaders(token string) string {
	b, _ := json.Marshal(map[string]string{"X-CSRF-Token": token})
	return string(b)
}

func tabURL(t editor.Tab) templ.SafeURL {
	return templ.SafeURL("/admin/assets/?tab=" + url.QueryEscape(string(t)))
}

func assetURL(id string) templ.SafeURL {
	return templ.SafeURL("/admin/assets/" + url.PathEscape(id) + "/")
}

func assetDeleteURL(id string) templ.SafeURL {
	return assetURL(id) + "delete/"
}

// heroPosition is img's 1-based place in the rotation, or 0.
func heroPosition(h domain.HeroSettings, img string) int {
	return slices.Index(h.SelectedImages, img) + 1
}

func heroOptionClass(selected, retired bool) string {
	cls := "hero-option"
	if selected {
		cls += " selected"
	}
	if retired {
		cls += " retired"
	}
	return cls
}
