package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"themegen/internal/domain"
)

// Load reads a TOML catalog from path. An empty path yields Default.
func Load(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()
	return Decode(file)
}

// Decode parses and validates a TOML catalog.
func Decode(r io.Reader) (Catalog, error) {
	var c Catalog
	decoder := toml.NewDecoder(r).DisallowUnknownFields()
	if err := decoder.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("%w: parse: %v", domain.ErrInvalidCatalog, err)
	}
	for i := range c.Recipes {
		c.Recipes[i].Platform = strings.ToLower(strings.TrimSpace(c.Recipes[i].Platform))
		if c.Recipes[i].Platform == "" {
			c.Recipes[i].Platform = PlatformCommon
		}
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}
