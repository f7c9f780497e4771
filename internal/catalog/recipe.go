// Package catalog holds the static list of artifacts a build produces.
package catalog

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"themegen/internal/domain"
)

// Kind enumerates how a recipe is rendered.
type Kind string

const (
	KindPNG      Kind = "png"
	KindMono     Kind = "mono"
	KindICO      Kind = "ico"
	KindICNS     Kind = "icns"
	KindDrawable Kind = "drawable"
)

// Platform tags group recipes for request-time selection.
const (
	PlatformLinux   = "linux"
	PlatformMac     = "mac"
	PlatformWin     = "win"
	PlatformAndroid = "android"
	PlatformCommon  = "common"
)

// Bucket is one density tier of a drawable recipe. Size, when set, wins over
// Scale applied to the recipe width.
type Bucket struct {
	Name  string  `toml:"name" json:"name"`
	Scale float64 `toml:"scale" json:"scale,omitempty"`
	Size  int     `toml:"size" json:"size,omitempty"`
}

// Recipe describes one artifact, or one group of artifacts for packed and
// drawable kinds.
//
// For png and mono recipes Path is the output file. For ico and icns it is
// the directory receiving Names, each packed from Members resolutions of a
// logo staged at Width. For drawable it is the parent of the bucket
// directories, each receiving File.
type Recipe struct {
	ID       string   `toml:"id" json:"id"`
	Platform string   `toml:"platform" json:"platform"`
	Kind     Kind     `toml:"kind" json:"kind"`
	Path     string   `toml:"path" json:"path"`
	Width    int      `toml:"width" json:"width"`
	Height   int      `toml:"height" json:"height"`
	Fit      bool     `toml:"fit" json:"fit,omitempty"`
	Names    []string `toml:"names" json:"names,omitempty"`
	Members  []int    `toml:"members" json:"members,omitempty"`
	File     string   `toml:"file" json:"file,omitempty"`
	Buckets  []Bucket `toml:"buckets" json:"buckets,omitempty"`
}

// BucketSize resolves the pixel size of b for this recipe.
func (r Recipe) BucketSize(b Bucket) int {
	if b.Size > 0 {
		return b.Size
	}
	return int(float64(r.Width)*b.Scale + 0.5)
}

// Outputs lists the relative files the recipe produces.
func (r Recipe) Outputs() []string {
	switch r.Kind {
	case KindICO, KindICNS:
		out := make([]string, 0, len(r.Names))
		for _, name := range r.Names {
			out = append(out, path.Join(r.Path, name))
		}
		return out
	case KindDrawable:
		out := make([]string, 0, len(r.Buckets))
		for _, b := range r.Buckets {
			out = append(out, path.Join(r.Path, b.Name, r.File))
		}
		return out
	default:
		return []string{r.Path}
	}
}

// icnsMembers are the resolutions an ICNS container can carry as PNG chunks.
var icnsMembers = []int{16, 32, 64, 128, 256, 512, 1024}

func (r Recipe) validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("recipe id is required")
	}
	if !cleanRelative(r.Path) {
		return fmt.Errorf("recipe %s: invalid path %q", r.ID, r.Path)
	}
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("recipe %s: negative dimensions", r.ID)
	}
	switch r.Kind {
	case KindPNG, KindMono:
	case KindICO, KindICNS:
		if len(r.Names) == 0 || len(r.Members) == 0 {
			return fmt.Errorf("recipe %s: names and members are required", r.ID)
		}
		for _, name := range r.Names {
			if !cleanRelative(name) || strings.Contains(name, "/") {
				return fmt.Errorf("recipe %s: invalid name %q", r.ID, name)
			}
		}
		for _, m := range r.Members {
			if r.Kind == KindICO && (m < 1 || m > 256) {
				return fmt.Errorf("recipe %s: ico member %d out of range", r.ID, m)
			}
			if r.Kind == KindICNS && !slices.Contains(icnsMembers, m) {
				return fmt.Errorf("recipe %s: unsupported icns member %d", r.ID, m)
			}
		}
	case KindDrawable:
		if r.File == "" || len(r.Buckets) == 0 {
			return fmt.Errorf("recipe %s: file and buckets are required", r.ID)
		}
		for _, b := range r.Buckets {
			if !cleanRelative(b.Name) || (b.Size <= 0 && b.Scale <= 0) {
				return fmt.Errorf("recipe %s: invalid bucket %q", r.ID, b.Name)
			}
		}
	default:
		return fmt.Errorf("recipe %s: unknown kind %q", r.ID, r.Kind)
	}
	return nil
}

func cleanRelative(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return false
	}
	cleaned := path.Clean(p)
	return cleaned == p && cleaned != "." && cleaned != ".." && !strings.HasPrefix(cleaned, "../")
}

// Catalog is the ordered recipe list. Order decides result and log order only.
type Catalog struct {
	Recipes []Recipe `toml:"recipe" json:"recipes"`
}

// Validate checks every recipe and rejects duplicate ids.
func (c Catalog) Validate() error {
	if len(c.Recipes) == 0 {
		return fmt.Errorf("%w: no recipes", domain.ErrInvalidCatalog)
	}
	seen := make(map[string]struct{}, len(c.Recipes))
	for _, r := range c.Recipes {
		if err := r.validate(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: duplicate recipe id %q", domain.ErrInvalidCatalog, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

// Platforms lists platform tags in first-seen order.
func (c Catalog) Platforms() []string {
	var out []string
	for _, r := range c.Recipes {
		if !slices.Contains(out, r.Platform) {
			out = append(out, r.Platform)
		}
	}
	return out
}

// Filter keeps recipes whose platform is selected. No selection keeps all.
func (c Catalog) Filter(platforms ...string) (Catalog, error) {
	if len(platforms) == 0 {
		return c, nil
	}
	known := c.Platforms()
	want := make(map[string]struct{}, len(platforms))
	for _, p := range platforms {
		p = strings.ToLower(strings.TrimSpace(p))
		if !slices.Contains(known, p) {
			return Catalog{}, fmt.Errorf("%w: unknown platform %q", domain.ErrInvalidRequest, p)
		}
		want[p] = struct{}{}
	}
	out := Catalog{Recipes: make([]Recipe, 0, len(c.Recipes))}
	for _, r := range c.Recipes {
		if _, ok := want[r.Platform]; ok {
			out.Recipes = append(out.Recipes, r)
		}
	}
	return out, nil
}
