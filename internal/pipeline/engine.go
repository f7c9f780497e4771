// Package pipeline renders a catalog of artifacts from a single logo.
//
// Per-artifact problems never abort a run; they become failure outcomes in
// the returned BuildResult. Only an unreadable logo is fatal.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"themegen/internal/catalog"
	"themegen/internal/domain"
	"themegen/internal/imaging"
	"themegen/internal/staging"
	"themegen/internal/storage"
)

const defaultWorkers = 4

// Options configures an Engine.
type Options struct {
	Scaler  imaging.Scaler
	Stager  *staging.Manager
	Logger  zerolog.Logger
	Workers int
}

// Engine runs catalogs. It holds no per-build state and may run several
// catalogs concurrently; callers serialize builds through the admission gate.
type Engine struct {
	scaler  imaging.Scaler
	stager  *staging.Manager
	logger  zerolog.Logger
	workers int
}

// NewEngine builds an Engine with defaults for unset options.
func NewEngine(opts Options) *Engine {
	if opts.Scaler == nil {
		opts.Scaler = imaging.CatmullRom{}
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Stager == nil {
		opts.Stager = staging.NewManager("", opts.Scaler, opts.Logger)
	}
	return &Engine{scaler: opts.Scaler, stager: opts.Stager, logger: opts.Logger, workers: opts.Workers}
}

// source is the decoded logo shared read-only by every recipe of a run.
type source struct {
	logo *domain.Logo
	img  image.Image
	raw  []byte
}

// Run renders every recipe of cat into store.
func (e *Engine) Run(ctx context.Context, logo *domain.Logo, store *storage.FileStore, cat catalog.Catalog) (*domain.BuildResult, error) {
	if logo == nil {
		return nil, domain.ErrEmptyLogo
	}
	if store == nil {
		return nil, fmt.Errorf("pipeline: output store is required")
	}
	raw := logo.Bytes()
	img, err := imaging.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("pipeline: decode %s: %w", logo.Name(), err)
	}
	src := source{logo: logo, img: img, raw: raw}

	start := time.Now()
	slots := make([][]domain.Outcome, len(cat.Recipes))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, r := range cat.Recipes {
		g.Go(func() error {
			slots[i] = e.render(ctx, src, store, r)
			return nil
		})
	}
	_ = g.Wait()

	result := &domain.BuildResult{}
	for _, outs := range slots {
		result.Outcomes = append(result.Outcomes, outs...)
	}
	failed := len(result.Failures())
	e.logger.Info().
		Str("logo", logo.Name()).
		Int("artifacts", len(result.Outcomes)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("pipeline: run finished")
	return result, nil
}

func (e *Engine) render(ctx context.Context, src source, store *storage.FileStore, r catalog.Recipe) []domain.Outcome {
	switch r.Kind {
	case catalog.KindPNG, catalog.KindMono:
		return []domain.Outcome{e.renderImage(ctx, src, store, r)}
	case catalog.KindICO, catalog.KindICNS:
		return e.renderPack(ctx, src, store, r)
	case catalog.KindDrawable:
		return e.renderBuckets(ctx, src, store, r)
	default:
		return []domain.Outcome{e.outcome(r.ID, r.Path, r.Kind, "", fmt.Errorf("unknown kind %q", r.Kind))}
	}
}

func (e *Engine) renderImage(ctx context.Context, src source, store *storage.FileStore, r catalog.Recipe) domain.Outcome {
	var scaled image.Image
	if r.Fit {
		scaled = e.scaler.Fit(src.img, r.Width, r.Height)
	} else {
		scaled = e.scaler.Resize(src.img, r.Width, r.Height)
	}
	if scaled != nil && r.Kind == catalog.KindMono {
		scaled = imaging.Grayscale(scaled)
	}
	digest, err := e.writeScaled(ctx, store, r.Path, scaled, src.raw)
	return e.outcome(r.ID, r.Path, r.Kind, digest, err)
}

func (e *Engine) renderBuckets(ctx context.Context, src source, store *storage.FileStore, r catalog.Recipe) []domain.Outcome {
	out := make([]domain.Outcome, 0, len(r.Buckets))
	for _, b := range r.Buckets {
		size := r.BucketSize(b)
		key := path.Join(r.Path, b.Name, r.File)
		scaled := e.scaler.Resize(src.img, size, size)
		digest, err := e.writeScaled(ctx, store, key, scaled, src.raw)
		out = append(out, e.outcome(key, key, r.Kind, digest, err))
	}
	return out
}

// renderPack stages the logo once and packs every named file from it. A
// staging or packing failure fails each named file with the same reason.
func (e *Engine) renderPack(ctx context.Context, src source, store *storage.FileStore, r catalog.Recipe) []domain.Outcome {
	keys := r.Outputs()
	out := make([]domain.Outcome, 0, len(keys))
	failAll := func(err error) []domain.Outcome {
		for _, key := range keys {
			out = append(out, e.outcome(key, key, r.Kind, "", err))
		}
		return out
	}

	height := r.Height
	if height == 0 {
		height = r.Width
	}
	staged, err := e.stager.Stage(src.logo, &staging.Size{Width: r.Width, Height: height})
	if err != nil {
		return failAll(err)
	}
	defer staged.Release()

	packed, err := e.packFile(staged.Path(), r)
	if err != nil {
		return failAll(err)
	}
	digest := domain.Digest(packed)
	for _, key := range keys {
		_, werr := store.Write(ctx, key, packed)
		out = append(out, e.outcome(key, key, r.Kind, digest, werr))
	}
	return out
}

func (e *Engine) packFile(stagedPath string, r catalog.Recipe) ([]byte, error) {
	data, err := os.ReadFile(stagedPath)
	if err != nil {
		return nil, fmt.Errorf("read staged logo: %w", err)
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	switch r.Kind {
	case catalog.KindICO:
		return PackICO(e.scaler, img, r.Members)
	case catalog.KindICNS:
		return PackICNS(e.scaler, img, r.Members)
	default:
		return nil, fmt.Errorf("kind %q is not packable", r.Kind)
	}
}

// writeScaled writes scaled as PNG, or the unscaled logo when the scaler
// could not produce a rendition, and returns the digest of what it wrote.
func (e *Engine) writeScaled(ctx context.Context, store *storage.FileStore, key string, scaled image.Image, raw []byte) (string, error) {
	data := raw
	if scaled == nil {
		e.logger.Debug().Str("path", key).Msg("pipeline: size not producible, copying source")
	} else {
		encoded, err := imaging.EncodePNG(scaled)
		if err != nil {
			return "", err
		}
		data = encoded
	}
	if _, err := store.Write(ctx, key, data); err != nil {
		return "", err
	}
	return domain.Digest(data), nil
}

func (e *Engine) outcome(id, p string, kind catalog.Kind, digest string, err error) domain.Outcome {
	o := domain.Outcome{ID: id, Path: p, Kind: string(kind), Status: domain.OutcomeSuccess}
	if err != nil {
		o.Status = domain.OutcomeFailure
		o.Error = err.Error()
		e.logger.Warn().Err(err).Str("artifact", id).Msg("pipeline: artifact failed")
		return o
	}
	o.Digest = digest
	e.logger.Debug().Str("artifact", id).Msg("pipeline: artifact written")
	return o
}
