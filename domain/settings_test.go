package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestDefaultFooterSettings(t *testing.T) {
	got := DefaultFooterSettings()
	if got.Address != "A.Hamid Road, Pabna" {
		t.Errorf("Address = %q", got.Address)
	}
	if got.Email != "garirdokan2021@gmail.com" {
		t.Errorf("Email = %q", got.Email)
	}
	if got.Phone1 != "+880 1713 110 570" || got.Phone2 != "+880 1785 2555 86" {
		t.Errorf("phones = %q, %q", got.Phone1, got.Phone2)
	}
	if got.Website != "garirdokan.com" {
		t.Errorf("Website = %q", got.Website)
	}
	l := got.Layout()
	if l.BottomOffset != 10 || l.TopPadding != 0 || l.HorizontalPadding != 15 || l.LineSpacing != 3 {
		t.Errorf("layout = %+v", l)
	}
	if got.AddressIcon != "" || got.FontSize != nil || got.Alignment != "" {
		t.Errorf("optional fields should be absent: %+v", got)
	}
}

func TestFooterIconFallback(t *testing.T) {
	var f FooterSettings
	want := map[FooterField]string{
		FooterAddress: "MapPin",
		FooterEmail:   "Mail",
		FooterPhone1:  "Phone",
		FooterPhone2:  "Phone",
		FooterWebsite: "Globe",
	}
	for field, icon := range want {
		if got := f.IconFor(field); got != icon {
			t.Errorf("IconFor(%s) = %q, want %q", field, got, icon)
		}
	}
	if err := f.SetIcon(FooterEmail, "Inbox"); err != nil {
		t.Fatalf("SetIcon: %v", err)
	}
	if got := f.IconFor(FooterEmail); got != "Inbox" {
		t.Errorf("IconFor(email) = %q, want Inbox", got)
	}
}

func TestFooterRejectsForeignIcon(t *testing.T) {
	f := DefaultFooterSettings()
	if err := f.SetIcon(FooterAddress, "Mail"); !errors.Is(err, ErrValidation) {
		t.Fatalf("SetIcon err = %v, want ErrValidation", err)
	}
	f.WebsiteIcon = "Phone"
	var verr *ValidationError
	if err := f.Validate(); !errors.As(err, &verr) || verr.Field != "websiteIcon" {
		t.Fatalf("Validate err = %v, want websiteIcon error", err)
	}
}

func TestFooterJSONKeepsAbsentFields(t *testing.T) {
	in := FooterSettings{Address: "x", BottomOffset: Num(0)}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out FooterSettings
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
	if out.TopPadding != nil {
		t.Error("TopPadding should stay nil")
	}
}

func TestHeaderValidate(t *testing.T) {
	h := DefaultHeaderSettings()
	if err := h.Validate(); err != nil {
		t.Fatalf("default header invalid: %v", err)
	}
	if !h.IsItalic || h.FontSize != 14 || h.FontFamily != FontSerif || h.Alignment != AlignLeft {
		t.Errorf("unexpected defaults %+v", h)
	}
	h.FontFamily = "cursive"
	if err := h.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestHeroToggleKeepsSelectionOrder(t *testing.T) {
	h := HeroSettings{SelectedImages: []string{"a", "b"}}
	h.Toggle("c")
	h.Toggle("a")
	h.Toggle("a")
	want := []string{"b", "c", "a"}
	if !reflect.DeepEqual(h.SelectedImages, want) {
		t.Errorf("SelectedImages = %v, want %v", h.SelectedImages, want)
	}
}

func TestHeroToggleDoesNotAliasInput(t *testing.T) {
	orig := []string{"a", "b", "c"}
	h := HeroSettings{SelectedImages: orig}
	h.Toggle("a")
	if orig[0] != "a" {
		t.Errorf("Toggle mutated caller slice: %v", orig)
	}
}

func TestHeroValidate(t *testing.T) {
	pool := []string{"a", "b"}
	tests := []struct {
		name  string
		hero  HeroSettings
		field string
	}{
		{"empty", HeroSettings{TransitionEffect: TransitionFade, Interval: 5000}, "selectedImages"},
		{"foreign image", HeroSettings{SelectedImages: []string{"z"}, TransitionEffect: TransitionFade, Interval: 5000}, "selectedImages"},
		{"bad effect", HeroSettings{SelectedImages: []string{"a"}, TransitionEffect: "spin", Interval: 5000}, "transitionEffect"},
		{"too fast", HeroSettings{SelectedImages: []string{"a"}, TransitionEffect: TransitionZoom, Interval: 1999}, "interval"},
		{"too slow", HeroSettings{SelectedImages: []string{"a"}, TransitionEffect: TransitionZoom, Interval: 15001}, "interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *ValidationError
			if err := tt.hero.Validate(pool); !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("Validate = %v, want error on %s", err, tt.field)
			}
		})
	}
	ok := HeroSettings{SelectedImages: []string{"b"}, TransitionEffect: TransitionSlide, Interval: 15000}
	if err := ok.Validate(pool); err != nil {
		t.Errorf("valid hero rejected: %v", err)
	}
}

func TestHeroRetired(t *testing.T) {
	h := HeroSettings{SelectedImages: []string{"old", "a", "gone"}}
	if got, want := h.Retired([]string{"a", "b"}), []string{"old", "gone"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Retired = %v, want %v", got, want)
	}
	if got := h.Retired(nil); got != nil {
		t.Errorf("Retired(nil) = %v, want nil", got)
	}
}

func TestDefaultHeroSettingsUsesPool(t *testing.T) {
	h := DefaultHeroSettings(nil)
	if !reflect.DeepEqual(h.SelectedImages, DefaultHeroCandidates) {
		t.Errorf("SelectedImages = %v", h.SelectedImages)
	}
	if err := h.Validate(DefaultHeroCandidates); err != nil {
		t.Errorf("default hero invalid: %v", err)
	}
}
