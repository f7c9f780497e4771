package handlers

import (
	"net/http"

	"themegen/internal/admission"
)

type healthResponse struct {
	Status   string          `json:"status"`
	Building bool            `json:"building"`
	Gate     admission.Stats `json:"gate"`
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	stats := a.Gate.Stats()
	a.json(w, http.StatusOK, healthResponse{Status: "ok", Building: stats.Running, Gate: stats})
}
