package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"themegen/internal/imaging"
	"themegen/internal/pipeline"
)

type convertImageRequest struct {
	LogoData string `json:"logo_data"`
	Format   string `json:"format"`
	Size     int    `json:"size"`
}

var (
	defaultICOMembers  = []int{16, 24, 32, 48, 256}
	defaultICNSMembers = []int{16, 32, 128, 256, 512}
)

const defaultPNGSize = 256

// ConvertImage turns one uploaded logo into a single PNG, ICO or ICNS file.
// It shares the build slot so conversions never overlap a build.
func (a *App) ConvertImage(w http.ResponseWriter, r *http.Request) {
	var req convertImageRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	raw, err := base64.StdEncoding.DecodeString(req.LogoData)
	if err != nil || len(raw) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "logo_data must be non-empty base64")
		return
	}
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if req.Size < 0 || req.Size > imaging.MaxDimension {
		a.error(w, http.StatusBadRequest, "bad_request", "size out of range")
		return
	}

	tok, err := a.Gate.Admit()
	if err != nil {
		a.busy(w)
		return
	}
	defer tok.Release()

	img, err := imaging.Decode(raw)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_logo", err.Error())
		return
	}

	var (
		out         []byte
		contentType string
	)
	switch format {
	case "png", "":
		format = "png"
		size := req.Size
		if size == 0 {
			size = defaultPNGSize
		}
		scaled := a.scaler().Resize(img, size, size)
		if scaled == nil {
			err = fmt.Errorf("cannot render %dx%d", size, size)
			break
		}
		out, err = imaging.EncodePNG(scaled)
		contentType = "image/png"
	case "ico":
		members := defaultICOMembers
		if req.Size > 0 {
			if req.Size > 256 {
				a.error(w, http.StatusBadRequest, "bad_request", "ico members are at most 256 pixels")
				return
			}
			members = []int{req.Size}
		}
		out, err = pipeline.PackICO(a.scaler(), img, members)
		contentType = "image/x-icon"
	case "icns":
		members := defaultICNSMembers
		if req.Size > 0 {
			if !pipeline.ICNSSupports(req.Size) {
				a.error(w, http.StatusBadRequest, "bad_request", "unsupported icns size")
				return
			}
			members = []int{req.Size}
		}
		out, err = pipeline.PackICNS(a.scaler(), img, members)
		contentType = "image/icns"
	default:
		a.error(w, http.StatusBadRequest, "unsupported_format", "format must be png, ico or icns")
		return
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("format", format).Msg("convert: failed")
		a.error(w, http.StatusInternalServerError, "convert_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="logo.%s"`, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
