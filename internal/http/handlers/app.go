package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"themegen/internal/admission"
	"themegen/internal/catalog"
	"themegen/internal/history"
	"themegen/internal/imaging"
	"themegen/internal/pipeline"
	"themegen/internal/storage"
)

// retryAfterSeconds is advertised to clients turned away by the gate.
const retryAfterSeconds = "5"

// App carries the dependencies shared by every handler.
type App struct {
	Gate    *admission.Gate
	Engine  *pipeline.Engine
	Catalog catalog.Catalog
	// Output is the root under which each branch gets <branch>/theme.
	Output  *storage.FileStore
	History history.Store
	Scaler  imaging.Scaler
	Logger  zerolog.Logger

	// DefaultLogo is used when a build request carries no logo data.
	DefaultLogo    string
	MaxUploadBytes int64

	now func() time.Time
}

func (a *App) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now().UTC()
}

func (a *App) scaler() imaging.Scaler {
	if a.Scaler == nil {
		return imaging.CatmullRom{}
	}
	return a.Scaler
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	BuildID string `json:"build_id,omitempty"`
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorBody{Error: errCode, Message: message})
}

func (a *App) busy(w http.ResponseWriter) {
	w.Header().Set("Retry-After", retryAfterSeconds)
	a.error(w, http.StatusConflict, "build_in_progress", "another build is running, retry later")
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if a.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
