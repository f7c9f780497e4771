package httpapi

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"themegen/internal/admission"
	"themegen/internal/catalog"
	"themegen/internal/history"
	"themegen/internal/http/handlers"
	"themegen/internal/imaging"
	"themegen/internal/middleware"
	"themegen/internal/pipeline"
	"themegen/internal/staging"
	"themegen/internal/storage"
)

// gatedScaler blocks the first Resize until release is closed.
type gatedScaler struct {
	imaging.CatmullRom
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (s *gatedScaler) Resize(src image.Image, w, h int) image.Image {
	s.once.Do(func() {
		close(s.started)
		<-s.release
	})
	return s.CatmullRom.Resize(src, w, h)
}

func newServer(t *testing.T, scaler imaging.Scaler) (*httptest.Server, *handlers.App) {
	t.Helper()
	root := t.TempDir()
	out, err := storage.NewFileStore(filepath.Join(root, "out"))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 64, 64))); err != nil {
		t.Fatal(err)
	}
	logoPath := filepath.Join(root, "logo.png")
	if err := os.WriteFile(logoPath, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	cat := catalog.Catalog{Recipes: []catalog.Recipe{
		{ID: "a/logo_16.png", Platform: catalog.PlatformLinux, Kind: catalog.KindPNG, Path: "a/logo_16.png", Width: 16, Height: 16},
		{ID: "a/logo_32.png", Platform: catalog.PlatformLinux, Kind: catalog.KindPNG, Path: "a/logo_32.png", Width: 32, Height: 32},
	}}
	app := &handlers.App{
		Gate: admission.New(),
		Engine: pipeline.NewEngine(pipeline.Options{
			Scaler:  scaler,
			Stager:  staging.NewManager(filepath.Join(root, "stage"), nil, zerolog.Nop()),
			Logger:  zerolog.Nop(),
			Workers: 1,
		}),
		Catalog:     cat,
		Output:      out,
		History:     history.NewMemoryStore(10),
		Logger:      zerolog.Nop(),
		DefaultLogo: logoPath,
	}
	srv := httptest.NewServer(NewRouter(app, Options{CORS: middleware.CORSOptions{}}))
	t.Cleanup(srv.Close)
	return srv, app
}

func post(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/build_package", "application/json", bytes.NewBufferString(`{"branch":"main"}`))
	if err != nil {
		t.Errorf("post: %v", err)
		return nil
	}
	return resp
}

func TestPreflightAndBusyWhileBuilding(t *testing.T) {
	scaler := &gatedScaler{started: make(chan struct{}), release: make(chan struct{})}
	srv, app := newServer(t, scaler)

	first := make(chan *http.Response, 1)
	go func() { first <- post(t, srv.URL) }()

	select {
	case <-scaler.started:
	case <-time.After(5 * time.Second):
		t.Fatal("build never started")
	}
	if !app.Gate.Running() {
		t.Fatal("gate should be held during the build")
	}

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/build_package", nil)
	req.Header.Set("Origin", "https://ui.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("preflight blocked: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || resp.Header.Get("Access-Control-Allow-Methods") != "GET, POST, OPTIONS" {
		t.Fatalf("preflight = %d %v", resp.StatusCode, resp.Header)
	}

	const contenders = 8
	var wg sync.WaitGroup
	codes := make(chan int, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if resp := post(t, srv.URL); resp != nil {
				codes <- resp.StatusCode
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		if code != http.StatusConflict {
			t.Fatalf("concurrent build status = %d, want 409", code)
		}
	}

	health, err := client.Get(srv.URL + "/v1/healthz")
	if err != nil {
		t.Fatal(err)
	}
	var h struct {
		Building bool `json:"building"`
	}
	_ = json.NewDecoder(health.Body).Decode(&h)
	health.Body.Close()
	if !h.Building {
		t.Fatal("healthz should report building")
	}

	close(scaler.release)
	resp = <-first
	if resp == nil {
		t.FailNow()
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first build status = %d", resp.StatusCode)
	}
	if stats := app.Gate.Stats(); stats.Admitted != 1 || stats.Rejected != contenders || stats.Running {
		t.Fatalf("gate stats = %+v", stats)
	}
}

func TestBuildHistoryAndArchive(t *testing.T) {
	srv, _ := newServer(t, nil)
	resp := post(t, srv.URL)
	if resp == nil {
		t.FailNow()
	}
	var built struct {
		BuildID string `json:"build_id"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&built)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || built.BuildID == "" {
		t.Fatalf("build = %d %+v", resp.StatusCode, built)
	}

	list, err := http.Get(srv.URL + "/builds?branch=main")
	if err != nil {
		t.Fatal(err)
	}
	var listed struct {
		Builds []struct {
			ID string `json:"id"`
		} `json:"builds"`
	}
	_ = json.NewDecoder(list.Body).Decode(&listed)
	list.Body.Close()
	if len(listed.Builds) != 1 || listed.Builds[0].ID != built.BuildID {
		t.Fatalf("listed = %+v", listed)
	}

	archive, err := http.Get(srv.URL + "/builds/" + built.BuildID + "/archive")
	if err != nil {
		t.Fatal(err)
	}
	defer archive.Body.Close()
	if archive.StatusCode != http.StatusOK || archive.Header.Get("Content-Type") != "application/zip" {
		t.Fatalf("archive = %d %s", archive.StatusCode, archive.Header.Get("Content-Type"))
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(archive.Body); err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 2 || zr.File[0].Name != "a/logo_16.png" {
		t.Fatalf("archive entries = %d", len(zr.File))
	}

	missing, err := http.Get(srv.URL + "/builds/00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatal(err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("missing build status = %d", missing.StatusCode)
	}
}

func TestPreflightOnUnknownRoute(t *testing.T) {
	srv, _ := newServer(t, nil)
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/nowhere", nil)
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight = %d", resp.StatusCode)
	}
}

func buildID(t *testing.T, url, body string) string {
	t.Helper()
	resp, err := http.Post(url+"/build_package", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var built struct {
		BuildID string `json:"build_id"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&built)
	if resp.StatusCode != http.StatusOK || built.BuildID == "" {
		t.Fatalf("build = %d %+v", resp.StatusCode, built)
	}
	return built.BuildID
}

func TestArchiveSkipsReplacedOutputs(t *testing.T) {
	srv, app := newServer(t, nil)
	first := buildID(t, srv.URL, `{"branch":"main"}`)

	themeDir := filepath.Join(app.Output.BasePath(), "main", "theme")
	if err := os.WriteFile(filepath.Join(themeDir, "a", "logo_32.png"), []byte("rewritten"), 0o644); err != nil {
		t.Fatal(err)
	}
	resp, err := http.Get(srv.URL + "/builds/" + first + "/archive")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("X-Skipped-Artifacts") != "1" {
		t.Fatalf("archive = %d skipped=%q", resp.StatusCode, resp.Header.Get("X-Skipped-Artifacts"))
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "a/logo_16.png" {
		t.Fatalf("archive entries = %d", len(zr.File))
	}

	img := image.NewNRGBA(image.Rect(0, 0, 48, 48))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var logo bytes.Buffer
	if err := png.Encode(&logo, img); err != nil {
		t.Fatal(err)
	}
	buildID(t, srv.URL, `{"branch":"main","logo_data":"`+base64.StdEncoding.EncodeToString(logo.Bytes())+`"}`)

	resp, err = http.Get(srv.URL + "/builds/" + first + "/archive")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusGone {
		t.Fatalf("archive of replaced build = %d, want 410", resp.StatusCode)
	}
}
