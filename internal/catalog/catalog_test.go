package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"themegen/internal/domain"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	want := []string{PlatformLinux, PlatformMac, PlatformWin, PlatformAndroid, PlatformCommon}
	got := c.Platforms()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Platforms() = %v, want %v", got, want)
	}
}

func TestDefaultWindowsIcons(t *testing.T) {
	var found bool
	for _, r := range Default().Recipes {
		if r.Kind != KindICO {
			continue
		}
		found = true
		outs := r.Outputs()
		want := []string{"brave/win/brave.ico", "brave/win/app_list.ico", "brave/win/app_list_sxs.ico", "brave/win/incognito.ico"}
		if strings.Join(outs, ",") != strings.Join(want, ",") {
			t.Fatalf("ico outputs = %v, want %v", outs, want)
		}
	}
	if !found {
		t.Fatal("default catalog has no ico recipe")
	}
}

func TestDrawableBucketSizes(t *testing.T) {
	r := drawable("x", "android", "mipmap", "app_icon.png")
	want := map[string]int{"mipmap-mdpi": 48, "mipmap-hdpi": 72, "mipmap-xhdpi": 96, "mipmap-xxhdpi": 144, "mipmap-xxxhdpi": 192}
	for _, b := range r.Buckets {
		if got := r.BucketSize(b); got != want[b.Name] {
			t.Fatalf("BucketSize(%s) = %d, want %d", b.Name, got, want[b.Name])
		}
	}
	if got := r.BucketSize(Bucket{Name: "abs", Scale: 3, Size: 10}); got != 10 {
		t.Fatalf("absolute size ignored: %d", got)
	}
}

func TestFilter(t *testing.T) {
	c := Default()
	win, err := c.Filter("WIN")
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(win.Recipes) == 0 {
		t.Fatal("no win recipes")
	}
	for _, r := range win.Recipes {
		if r.Platform != PlatformWin {
			t.Fatalf("unexpected platform %q", r.Platform)
		}
	}
	all, err := c.Filter()
	if err != nil || len(all.Recipes) != len(c.Recipes) {
		t.Fatalf("empty filter changed catalog: %d, %v", len(all.Recipes), err)
	}
	if _, err := c.Filter("ios"); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("Filter(ios) error = %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		recipe Recipe
	}{
		{name: "missing id", recipe: Recipe{Kind: KindPNG, Path: "a.png", Width: 1, Height: 1}},
		{name: "escaping path", recipe: Recipe{ID: "a", Kind: KindPNG, Path: "../a.png", Width: 1, Height: 1}},
		{name: "absolute path", recipe: Recipe{ID: "a", Kind: KindPNG, Path: "/a.png", Width: 1, Height: 1}},
		{name: "unknown kind", recipe: Recipe{ID: "a", Kind: "svg", Path: "a.svg"}},
		{name: "ico without names", recipe: Recipe{ID: "a", Kind: KindICO, Path: "win", Members: []int{16}}},
		{name: "ico member too large", recipe: Recipe{ID: "a", Kind: KindICO, Path: "win", Names: []string{"a.ico"}, Members: []int{512}}},
		{name: "icns odd member", recipe: Recipe{ID: "a", Kind: KindICNS, Path: "mac", Names: []string{"a.icns"}, Members: []int{48}}},
		{name: "drawable without buckets", recipe: Recipe{ID: "a", Kind: KindDrawable, Path: "res", File: "a.png"}},
		{name: "bucket without size", recipe: Recipe{ID: "a", Kind: KindDrawable, Path: "res", File: "a.png", Buckets: []Bucket{{Name: "mdpi"}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Catalog{Recipes: []Recipe{tc.recipe}}.Validate()
			if !errors.Is(err, domain.ErrInvalidCatalog) {
				t.Fatalf("Validate() = %v, want ErrInvalidCatalog", err)
			}
		})
	}

	dup := Catalog{Recipes: []Recipe{
		{ID: "a", Kind: KindPNG, Path: "a.png", Width: 1, Height: 1},
		{ID: "a", Kind: KindPNG, Path: "b.png", Width: 1, Height: 1},
	}}
	if err := dup.Validate(); !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Fatalf("duplicate ids accepted: %v", err)
	}
}

const sampleCatalog = `
[[recipe]]
id = "linux/product_logo_16.png"
platform = "Linux"
kind = "png"
path = "linux/product_logo_16.png"
width = 16
height = 16

[[recipe]]
id = "win/icons"
platform = "win"
kind = "ico"
path = "win"
width = 256
height = 256
names = ["brave.ico"]
members = [16, 32]

[[recipe]]
id = "android/mipmap"
kind = "drawable"
path = "android"
width = 48
height = 48
file = "app_icon.png"

  [[recipe.buckets]]
  name = "mipmap-mdpi"
  scale = 1.0

  [[recipe.buckets]]
  name = "mipmap-hdpi"
  size = 72
`

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Recipes) != 3 {
		t.Fatalf("recipes = %d, want 3", len(c.Recipes))
	}
	if c.Recipes[0].Platform != PlatformLinux {
		t.Fatalf("platform not normalized: %q", c.Recipes[0].Platform)
	}
	if c.Recipes[2].Platform != PlatformCommon {
		t.Fatalf("missing platform not defaulted: %q", c.Recipes[2].Platform)
	}
	if got := c.Recipes[2].BucketSize(c.Recipes[2].Buckets[1]); got != 72 {
		t.Fatalf("bucket size = %d", got)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("[[recipe]]\nid = \"a\"\ncolour = \"red\"\n"))
	if !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Fatalf("Decode error = %v", err)
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Recipes) != len(Default().Recipes) {
		t.Fatalf("Load(\"\") returned %d recipes", len(c.Recipes))
	}
}
