package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"themegen/internal/domain"
	"themegen/internal/storage"
	"themegen/pkg/zip"
)

const maxListLimit = 200

func (a *App) ListBuilds(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit > maxListLimit {
		limit = maxListLimit
	}
	builds, err := a.History.List(r.Context(), r.URL.Query().Get("branch"), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("history: list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list builds")
		return
	}
	if builds == nil {
		builds = []domain.Build{}
	}
	a.json(w, http.StatusOK, map[string]any{"builds": builds})
}

func (a *App) GetBuild(w http.ResponseWriter, r *http.Request) {
	b, ok := a.lookupBuild(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, b)
}

// BuildArchive streams a zip of the artifacts a build produced successfully.
// Files whose bytes no longer match the recorded digest were replaced by a
// later build of the branch, or are being rewritten, and are left out.
func (a *App) BuildArchive(w http.ResponseWriter, r *http.Request) {
	b, ok := a.lookupBuild(w, r)
	if !ok {
		return
	}
	if b.Result == nil || b.OutputDir == "" {
		a.error(w, http.StatusNotFound, "not_found", "build produced no artifacts")
		return
	}
	store, err := storage.NewFileStore(b.OutputDir)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "output directory unavailable")
		return
	}

	var (
		assets   []zip.Asset
		replaced int
	)
	for _, o := range b.Result.Outcomes {
		if o.Status != domain.OutcomeSuccess {
			continue
		}
		data, err := store.Read(r.Context(), o.Path)
		if err != nil {
			a.Logger.Warn().Err(err).Str("build_id", b.ID).Str("path", o.Path).Msg("archive: artifact missing")
			continue
		}
		if o.Digest != "" && domain.Digest(data) != o.Digest {
			replaced++
			continue
		}
		assets = append(assets, zip.Asset{Filename: o.Path, Data: data})
	}
	if replaced > 0 {
		a.Logger.Warn().Str("build_id", b.ID).Int("replaced", replaced).Msg("archive: artifacts changed since build")
		if len(assets) == 0 {
			a.error(w, http.StatusGone, "outputs_replaced", "a later build has replaced this build's outputs")
			return
		}
		w.Header().Set("X-Skipped-Artifacts", strconv.Itoa(replaced))
	}
	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.zip"`, b.Branch, b.ID))
	w.Header().Set("Content-Length", strconv.Itoa(len(archive)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) lookupBuild(w http.ResponseWriter, r *http.Request) (domain.Build, bool) {
	id := chi.URLParam(r, "id")
	b, err := a.History.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "not_found", "build not found")
		return domain.Build{}, false
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("build_id", id).Msg("history: get failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load build")
		return domain.Build{}, false
	}
	return b, true
}
