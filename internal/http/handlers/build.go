package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"themegen/internal/domain"
)

var branchPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,99}$`)

type buildPackageRequest struct {
	Branch    string   `json:"branch"`
	Platforms []string `json:"platforms"`
	LogoName  string   `json:"logo_name"`
	LogoData  string   `json:"logo_data"`
}

type buildPackageResponse struct {
	BuildID   string             `json:"build_id"`
	Branch    string             `json:"branch"`
	Status    domain.BuildStatus `json:"status"`
	OutputDir string             `json:"output_dir"`
	OK        int                `json:"ok"`
	Failed    int                `json:"failed"`
	Results   []domain.Outcome   `json:"results"`
}

// BuildPackage validates the request, takes the build slot and renders the
// selected catalog into <output>/<branch>/theme.
func (a *App) BuildPackage(w http.ResponseWriter, r *http.Request) {
	var req buildPackageRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Branch = strings.TrimSpace(req.Branch)
	if !branchPattern.MatchString(req.Branch) {
		a.error(w, http.StatusBadRequest, "bad_request", "branch must be a simple name")
		return
	}
	cat, err := a.Catalog.Filter(req.Platforms...)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	logo, err := a.requestLogo(req.LogoName, req.LogoData)
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	case err != nil:
		a.Logger.Error().Err(err).Str("branch", req.Branch).Msg("build: default logo unavailable")
		a.error(w, http.StatusInternalServerError, "logo_unavailable", err.Error())
		return
	}

	tok, err := a.Gate.Admit()
	if err != nil {
		a.Logger.Info().Str("branch", req.Branch).Msg("build: rejected, another build is running")
		a.busy(w)
		return
	}
	defer tok.Release()

	build := domain.Build{
		ID:        uuid.NewString(),
		Branch:    req.Branch,
		Platforms: cat.Platforms(),
		StartedAt: a.clock(),
	}
	logger := a.Logger.With().Str("build_id", build.ID).Str("branch", build.Branch).Logger()

	store, err := a.Output.Sub(path.Join(req.Branch, "theme"))
	if err != nil {
		build.Error = err.Error()
		build.Status = domain.BuildStatusFailed
		build.FinishedAt = a.clock()
		a.record(r.Context(), build)
		logger.Error().Err(err).Msg("build: output directory unusable")
		a.json(w, http.StatusInternalServerError, errorBody{Error: "output_unavailable", Message: err.Error(), BuildID: build.ID})
		return
	}
	build.OutputDir = store.BasePath()

	logger.Info().Int("recipes", len(cat.Recipes)).Msg("build: started")
	// The build outlives a disconnected client; the slot is held until it ends.
	ctx := context.WithoutCancel(r.Context())
	result, runErr := a.Engine.Run(ctx, logo, store, cat)

	build.Result = result
	build.Status = domain.StatusFor(result, runErr)
	build.FinishedAt = a.clock()
	if runErr != nil {
		build.Error = runErr.Error()
	}
	a.record(ctx, build)

	if runErr != nil {
		logger.Error().Err(runErr).Msg("build: failed")
		a.json(w, http.StatusInternalServerError, errorBody{Error: "build_failed", Message: runErr.Error(), BuildID: build.ID})
		return
	}
	failed := len(result.Failures())
	logger.Info().Str("status", string(build.Status)).Int("failed", failed).Msg("build: finished")
	a.json(w, http.StatusOK, buildPackageResponse{
		BuildID:   build.ID,
		Branch:    build.Branch,
		Status:    build.Status,
		OutputDir: build.OutputDir,
		OK:        len(result.Outcomes) - failed,
		Failed:    failed,
		Results:   result.Outcomes,
	})
}

// requestLogo decodes inline logo data or falls back to the configured logo.
func (a *App) requestLogo(name, data string) (*domain.Logo, error) {
	if data == "" {
		return domain.LoadLogo(a.DefaultLogo)
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidRequest, errors.New("logo_data is not valid base64"))
	}
	return domain.NewLogo(name, raw)
}

func (a *App) record(ctx context.Context, b domain.Build) {
	if a.History == nil {
		return
	}
	if err := a.History.Save(ctx, b); err != nil {
		a.Logger.Warn().Err(err).Str("build_id", b.ID).Msg("build: history not saved")
	}
}
