package domain

import (
	"slices"
	"strings"
)

// Fixed record ids of the singleton settings in the preferences table.
const (
	KeyUserPrefs    = "user_prefs"
	KeyGlobalFooter = "global_footer"
	KeyGlobalHeader = "global_header"
	KeyGlobalHero   = "global_hero"
)

// Alignment is shared by the header bar and the alternate footer layout.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

func (a Alignment) Valid() bool {
	return a == AlignLeft || a == AlignCenter || a == AlignRight
}

// FooterField names one of the contact lines of the footer block.
type FooterField string

const (
	FooterAddress FooterField = "address"
	FooterEmail   FooterField = "email"
	FooterPhone1  FooterField = "phone1"
	FooterPhone2  FooterField = "phone2"
	FooterWebsite FooterField = "website"
)

// FooterFields lists the contact lines in render order.
var FooterFields = []FooterField{FooterAddress, FooterEmail, FooterPhone1, FooterPhone2, FooterWebsite}

// footerIcons holds the permitted icon names per field; the first entry is
// the default.
var footerIcons = map[FooterField][]string{
	FooterAddress: {"MapPin", "Map", "Navigation", "Home"},
	FooterEmail:   {"Mail", "Send", "Inbox", "MessageSquare"},
	FooterPhone1:  {"Phone", "Smartphone", "PhoneCall", "Headset"},
	FooterPhone2:  {"Phone", "Smartphone", "PhoneCall", "Headset"},
	FooterWebsite: {"Globe", "Link", "ExternalLink", "Monitor"},
}

// IconOptions returns the icon names permitted for field.
func IconOptions(field FooterField) []string {
	return slices.Clone(footerIcons[field])
}

// DefaultIcon returns the icon used when field has no icon set.
func DefaultIcon(field FooterField) string {
	if opts := footerIcons[field]; len(opts) > 0 {
		return opts[0]
	}
	return ""
}

// FooterSettings is the global footer block. Optional fields stay nil when
// unset so a save/load round trip keeps them absent; Layout and IconFor
// resolve them to defaults at render time.
type FooterSettings struct {
	Address     string `json:"address"`
	AddressIcon string `json:"addressIcon,omitempty"`
	Email       string `json:"email"`
	EmailIcon   string `json:"emailIcon,omitempty"`
	Phone1      string `json:"phone1"`
	Phone1Icon  string `json:"phone1Icon,omitempty"`
	Phone2      string `json:"phone2"`
	Phone2Icon  string `json:"phone2Icon,omitempty"`
	Website     string `json:"website"`
	WebsiteIcon string `json:"websiteIcon,omitempty"`

	BottomOffset      *float64 `json:"bottomOffset,omitempty"`
	TopPadding        *float64 `json:"topPadding,omitempty"`
	HorizontalPadding *float64 `json:"horizontalPadding,omitempty"`
	LineSpacing       *float64 `json:"lineSpacing,omitempty"`

	Alignment  Alignment `json:"alignment,omitempty"`
	FontSize   *float64  `json:"fontSize,omitempty"`
	IconSize   *float64  `json:"iconSize,omitempty"`
	Spacing    *float64  `json:"spacing,omitempty"`
	MarginTop  *float64  `json:"marginTop,omitempty"`
	PaddingTop *float64  `json:"paddingTop,omitempty"`
}

// FooterLayout is the fully resolved footer geometry, in millimetres.
type FooterLayout struct {
	BottomOffset      float64
	TopPadding        float64
	HorizontalPadding float64
	LineSpacing       float64
	Alignment         Alignment
	FontSize          float64
	IconSize          float64
	Spacing           float64
	MarginTop         float64
	PaddingTop        float64
}

// Num returns a pointer to v, for populating optional numeric fields.
func Num(v float64) *float64 { return &v }

func orDefault(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// DefaultFooterSettings is what a load returns before anything was saved.
func DefaultFooterSettings() FooterSettings {
	return FooterSettings{
		Address:           "A.Hamid Road, Pabna",
		Email:             "garirdokan2021@gmail.com",
		Phone1:            "+880 1713 110 570",
		Phone2:            "+880 1785 2555 86",
		Website:           "garirdokan.com",
		BottomOffset:      Num(10),
		TopPadding:        Num(0),
		HorizontalPadding: Num(15),
		LineSpacing:       Num(3),
	}
}

// Layout resolves every layout field, falling back to defaults.
func (f FooterSettings) Layout() FooterLayout {
	align := f.Alignment
	if align == "" {
		align = AlignCenter
	}
	return FooterLayout{
		BottomOffset:      orDefault(f.BottomOffset, 10),
		TopPadding:        orDefault(f.TopPadding, 0),
		HorizontalPadding: orDefault(f.HorizontalPadding, 15),
		LineSpacing:       orDefault(f.LineSpacing, 3),
		Alignment:         align,
		FontSize:          orDefault(f.FontSize, 9),
		IconSize:          orDefault(f.IconSize, 12),
		Spacing:           orDefault(f.Spacing, 4),
		MarginTop:         orDefault(f.MarginTop, 0),
		PaddingTop:        orDefault(f.PaddingTop, 0),
	}
}

// Value returns the contact text of field.
func (f FooterSettings) Value(field FooterField) string {
	switch field {
	case FooterAddress:
		return f.Address
	case FooterEmail:
		return f.Email
	case FooterPhone1:
		return f.Phone1
	case FooterPhone2:
		return f.Phone2
	case FooterWebsite:
		return f.Website
	}
	return ""
}

func (f *FooterSettings) iconRef(field FooterField) *string {
	switch field {
	case FooterAddress:
		return &f.AddressIcon
	case FooterEmail:
		return &f.EmailIcon
	case FooterPhone1:
		return &f.Phone1Icon
	case FooterPhone2:
		return &f.Phone2Icon
	case FooterWebsite:
		return &f.WebsiteIcon
	}
	return nil
}

// IconFor returns the icon chosen for field, or the field default.
func (f FooterSettings) IconFor(field FooterField) string {
	if ref := f.iconRef(field); ref != nil && *ref != "" {
		return *ref
	}
	return DefaultIcon(field)
}

// SetIcon selects an icon for field. It rejects names outside the field's set.
func (f *FooterSettings) SetIcon(field FooterField, name string) error {
	ref := f.iconRef(field)
	if ref == nil {
		return invalid(string(field), "unknown footer field")
	}
	if name != "" && !slices.Contains(footerIcons[field], name) {
		return invalid(string(field)+"Icon", "icon %q not permitted", name)
	}
	*ref = name
	return nil
}

// Validate enforces the icon sets and the alignment enum.
func (f FooterSettings) Validate() error {
	for _, field := range FooterFields {
		icon := *f.iconRef(field)
		if icon != "" && !slices.Contains(footerIcons[field], icon) {
			return invalid(string(field)+"Icon", "icon %q not permitted", icon)
		}
	}
	if f.Alignment != "" && !f.Alignment.Valid() {
		return invalid("alignment", "must be left, center or right")
	}
	return nil
}

// FontFamily of the header bar.
type FontFamily string

const (
	FontSerif FontFamily = "serif"
	FontSans  FontFamily = "sans"
	FontMono  FontFamily = "mono"
)

func (f FontFamily) Valid() bool {
	return f == FontSerif || f == FontSans || f == FontMono
}

// HeaderSettings is the global header bar.
type HeaderSettings struct {
	Text       string     `json:"text"`
	FontSize   float64    `json:"fontSize"`
	FontFamily FontFamily `json:"fontFamily"`
	Alignment  Alignment  `json:"alignment"`
	IsItalic   bool       `json:"isItalic"`
}

func DefaultHeaderSettings() HeaderSettings {
	return HeaderSettings{
		Text:       "",
		FontSize:   14,
		FontFamily: FontSerif,
		Alignment:  AlignLeft,
		IsItalic:   true,
	}
}

func (h HeaderSettings) Validate() error {
	if h.FontSize <= 0 {
		return invalid("fontSize", "must be positive")
	}
	if !h.FontFamily.Valid() {
		return invalid("fontFamily", "must be serif, sans or mono")
	}
	if !h.Alignment.Valid() {
		return invalid("alignment", "must be left, center or right")
	}
	return nil
}

// TransitionEffect of the hero banner rotation.
type TransitionEffect string

const (
	TransitionFade  TransitionEffect = "fade"
	TransitionSlide TransitionEffect = "slide"
	TransitionZoom  TransitionEffect = "zoom"
)

func (t TransitionEffect) Valid() bool {
	return t == TransitionFade || t == TransitionSlide || t == TransitionZoom
}

// Hero rotation interval bounds, in milliseconds.
const (
	MinHeroInterval     = 2000
	MaxHeroInterval     = 15000
	DefaultHeroInterval = 5000
)

// DefaultHeroCandidates is the image pool used when none is configured.
var DefaultHeroCandidates = []string{
	"/public/hero/showroom.jpg",
	"/public/hero/highway.jpg",
	"/public/hero/workshop.jpg",
	"/public/hero/delivery.jpg",
}

// HeroSettings is the hero banner rotation. SelectedImages keeps selection
// order.
type HeroSettings struct {
	SelectedImages   []string         `json:"selectedImages"`
	TransitionEffect TransitionEffect `json:"transitionEffect"`
	Interval         int              `json:"interval"`
}

// DefaultHeroSettings selects the whole candidate pool in pool order.
func DefaultHeroSettings(candidates []string) HeroSettings {
	if len(candidates) == 0 {
		candidates = DefaultHeroCandidates
	}
	return HeroSettings{
		SelectedImages:   slices.Clone(candidates),
		TransitionEffect: TransitionFade,
		Interval:         DefaultHeroInterval,
	}
}

// IsSelected reports whether img is part of the rotation.
func (h HeroSettings) IsSelected(img string) bool {
	return slices.Contains(h.SelectedImages, img)
}

// Toggle removes img when selected, otherwise appends it.
func (h *HeroSettings) Toggle(img string) {
	if i := slices.Index(h.SelectedImages, img); i >= 0 {
		h.SelectedImages = slices.Delete(slices.Clone(h.SelectedImages), i, i+1)
		return
	}
	h.SelectedImages = append(slices.Clone(h.SelectedImages), img)
}

// Retired returns the selected images that are no longer in candidates,
// in selection order.
func (h HeroSettings) Retired(candidates []string) []string {
	if len(candidates) == 0 {
		return nil
	}
	var out []string
	for _, img := range h.SelectedImages {
		if !slices.Contains(candidates, img) {
			out = append(out, img)
		}
	}
	return out
}

// Validate rejects an empty selection, images outside candidates (when
// candidates is non-empty), unknown effects and out-of-range intervals.
func (h HeroSettings) Validate(candidates []string) error {
	if len(h.SelectedImages) == 0 {
		return invalid("selectedImages", "select at least one image")
	}
	if len(candidates) > 0 {
		for _, img := range h.SelectedImages {
			if !slices.Contains(candidates, img) {
				return invalid("selectedImages", "%q is not a hero candidate", img)
			}
		}
	}
	if !h.TransitionEffect.Valid() {
		return invalid("transitionEffect", "must be fade, slide or zoom")
	}
	if h.Interval < MinHeroInterval || h.Interval > MaxHeroInterval {
		return invalid("interval", "must be between %d and %d", MinHeroInterval, MaxHeroInterval)
	}
	return nil
}

// ParseAlignment is lenient about case and whitespace.
func ParseAlignment(s string) Alignment {
	return Alignment(strings.ToLower(strings.TrimSpace(s)))
}
