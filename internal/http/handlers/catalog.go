package handlers

import (
	"net/http"

	"themegen/internal/catalog"
)

type catalogResponse struct {
	Platforms []string         `json:"platforms"`
	Recipes   []catalog.Recipe `json:"recipes"`
}

// ListCatalog lists the recipes a build would render, optionally narrowed by
// repeated ?platform= parameters.
func (a *App) ListCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := a.Catalog.Filter(r.URL.Query()["platform"]...)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.json(w, http.StatusOK, catalogResponse{Platforms: cat.Platforms(), Recipes: cat.Recipes})
}
