package storage

import (
	"fmt"
	"strings"

	"github.com/eringen/brandkit/domain"
)

// Group names a singleton settings record in URLs and on the command line.
type Group string

const (
	GroupFooter      Group = "footer"
	GroupHeader      Group = "header"
	GroupHero        Group = "hero"
	GroupPreferences Group = "preferences"
)

var Groups = []Group{GroupFooter, GroupHeader, GroupHero, GroupPreferences}

// Key returns the record id the group is stored under.
func (g Group) Key() string {
	switch g {
	case GroupFooter:
		return domain.KeyGlobalFooter
	case GroupHeader:
		return domain.KeyGlobalHeader
	case GroupHero:
		return domain.KeyGlobalHero
	case GroupPreferences:
		return domain.KeyUserPrefs
	}
	return ""
}

func ParseGroup(s string) (Group, error) {
	g := Group(strings.ToLower(strings.TrimSpace(s)))
	if g.Key() == "" {
		return "", fmt.Errorf("unknown settings group %q", s)
	}
	return g, nil
}
