// Package staging materializes the logo as a temporary file for packers that
// consume a path rather than bytes.
package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"themegen/internal/domain"
	"themegen/internal/imaging"
)

// Size requests a resized staging copy.
type Size struct {
	Width  int
	Height int
}

// Square is shorthand for a size x size request.
func Square(size int) *Size { return &Size{Width: size, Height: size} }

// Manager creates staged files under Dir.
type Manager struct {
	dir    string
	scaler imaging.Scaler
	logger zerolog.Logger
}

// NewManager returns a Manager staging into dir. An empty dir means the
// system temp directory.
func NewManager(dir string, scaler imaging.Scaler, logger zerolog.Logger) *Manager {
	if dir == "" {
		dir = os.TempDir()
	}
	if scaler == nil {
		scaler = imaging.CatmullRom{}
	}
	return &Manager{dir: dir, scaler: scaler, logger: logger}
}

// Dir returns the staging directory.
func (m *Manager) Dir() string { return m.dir }

// File is an exclusively owned staged copy. Release removes it.
type File struct {
	path    string
	resized bool
	once    sync.Once
	err     error
	logger  zerolog.Logger
}

func (f *File) Path() string { return f.path }

// Resized reports whether the staged bytes are a resized rendition.
func (f *File) Resized() bool { return f.resized }

// Release deletes the staged file. It is safe to call more than once.
func (f *File) Release() error {
	f.once.Do(func() {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			f.err = fmt.Errorf("staging: remove %s: %w", f.path, err)
			f.logger.Warn().Err(err).Str("path", f.path).Msg("staging: release failed")
		}
	})
	return f.err
}

// Stage writes logo to a fresh temporary file. When size is set and the
// scaler can produce it, the file holds the resized PNG; otherwise it holds
// the logo bytes verbatim.
func (m *Manager) Stage(logo *domain.Logo, size *Size) (*File, error) {
	if logo == nil {
		return nil, fmt.Errorf("staging: %w", domain.ErrEmptyLogo)
	}
	data, resized := m.render(logo, size)

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("staging: ensure dir: %w", err)
	}
	tmp, err := os.CreateTemp(m.dir, "stage-*.png")
	if err != nil {
		return nil, fmt.Errorf("staging: create: %w", err)
	}
	f := &File{path: tmp.Name(), resized: resized, logger: m.logger}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = f.Release()
		return nil, fmt.Errorf("staging: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = f.Release()
		return nil, fmt.Errorf("staging: close: %w", err)
	}
	m.logger.Debug().Str("path", f.path).Bool("resized", resized).Msg("staging: file ready")
	return f, nil
}

// With stages logo, calls fn with the staged path, and releases the file on
// every exit path of fn, panics included.
func (m *Manager) With(logo *domain.Logo, size *Size, fn func(path string) error) error {
	f, err := m.Stage(logo, size)
	if err != nil {
		return err
	}
	defer f.Release()
	return fn(f.Path())
}

func (m *Manager) render(logo *domain.Logo, size *Size) ([]byte, bool) {
	raw := logo.Bytes()
	if size == nil {
		return raw, false
	}
	img, err := imaging.Decode(raw)
	if err != nil {
		return raw, false
	}
	scaled := m.scaler.Resize(img, size.Width, size.Height)
	if scaled == nil {
		return raw, false
	}
	data, err := imaging.EncodePNG(scaled)
	if err != nil {
		return raw, false
	}
	return data, true
}
