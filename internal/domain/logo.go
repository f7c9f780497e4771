package domain

import (
	"fmt"
	"os"
	"path/filepath"
)

// Logo is the source image of a build. It is read-only for the lifetime of
// the build; callers only ever receive copies of its bytes.
type Logo struct {
	name string
	data []byte
}

// NewLogo copies data into a Logo.
func NewLogo(name string, data []byte) (*Logo, error) {
	if len(data) == 0 {
		return nil, ErrEmptyLogo
	}
	if name == "" {
		name = "logo.png"
	}
	return &Logo{name: filepath.Base(name), data: append([]byte(nil), data...)}, nil
}

// LoadLogo reads the logo at path.
func LoadLogo(path string) (*Logo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidLogo, path, err)
	}
	return NewLogo(path, data)
}

func (l *Logo) Name() string { return l.name }

// Bytes returns a copy of the logo contents.
func (l *Logo) Bytes() []byte { return append([]byte(nil), l.data...) }

func (l *Logo) Size() int { return len(l.data) }
