package views

import (
	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/editor"
)

// Page carries what every admin page needs for its chrome and forms.
type Page struct {
	SiteName string
	CSRF     string
	Active   string // nav entry to highlight
}

// Flash is a one-shot message shown above a form.
type Flash struct {
	OK      bool
	Message string
}

// GroupStatus summarizes one settings group on the dashboard.
type GroupStatus struct {
	Name     string
	Path     string
	Source   string // "stored" or "default"
	Degraded bool
}

// Dashboard is the admin landing page.
type Dashboard struct {
	Page
	Groups      []GroupStatus
	AssetCounts map[editor.Tab]int
	Preferences map[domain.DocumentType]domain.LogoSettings
	Documents   int
	Message     string
}

type FooterPage struct {
	Page
	Editor editor.Snapshot[domain.FooterSettings]
	Flash  *Flash
}

type HeaderPage struct {
	Page
	Editor editor.Snapshot[domain.HeaderSettings]
	Flash  *Flash
}

type HeroPage struct {
	Page
	Editor     editor.Snapshot[domain.HeroSettings]
	Candidates []string
	Retired    []string // selected, but no longer candidates
	Flash      *Flash
}

// AssetsPage is the asset library, filtered to Tab.
type AssetsPage struct {
	Page
	Tab      editor.Tab
	Counts   map[editor.Tab]int
	Assets   []domain.Asset
	Busy     bool
	Degraded bool
	Flash    *Flash
}
