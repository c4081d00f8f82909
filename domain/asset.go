// Package domain holds the shapes stored by brandkit: library assets, the
// global presentation settings and per-document-type preferences, together
// with their defaults and invariants.
package domain

import (
	"encoding/base64"
	"strings"
)

// AssetType classifies a library asset.
type AssetType string

const (
	AssetLogo      AssetType = "LOGO"
	AssetIcon      AssetType = "ICON"
	AssetSignature AssetType = "SIGNATURE"
	AssetProduct   AssetType = "PRODUCT"
)

// AssetTypes lists every asset type in display order.
var AssetTypes = []AssetType{AssetLogo, AssetIcon, AssetSignature, AssetProduct}

// Valid reports whether t is one of the closed set of asset types.
func (t AssetType) Valid() bool {
	for _, v := range AssetTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ParseAssetType normalizes s and returns the matching type.
func ParseAssetType(s string) (AssetType, bool) {
	t := AssetType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Asset is one image in the library. DataURL embeds its own mime type and is
// never inspected beyond that. Assets are immutable once stored.
type Asset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      AssetType `json:"type"`
	DataURL   string    `json:"dataUrl"`
	CreatedAt int64     `json:"createdAt"`
}

// Validate checks presence of the required fields and the type enum.
func (a Asset) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return invalid("id", "is required")
	}
	if !a.Type.Valid() {
		return invalid("type", "unknown asset type %q", a.Type)
	}
	if a.DataURL == "" {
		return invalid("dataUrl", "is required")
	}
	return nil
}

// EncodeDataURL builds a self-contained data URL from raw bytes.
func EncodeDataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DataURLMime returns the mime type embedded in a data URL, or "" when the
// value is a plain URL.
func DataURLMime(dataURL string) string {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return ""
	}
	mime, _, _ := strings.Cut(rest, ";")
	if i := strings.IndexByte(mime, ','); i >= 0 {
		mime = mime[:i]
	}
	return mime
}
