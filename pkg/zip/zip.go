// Package zip bundles generated artifacts into a single download.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

type Asset struct {
	Filename string
	Data     []byte
}

// epoch pins entry timestamps so the same outputs archive to the same bytes.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// ArchiveAssets writes assets, in order, into one zip archive.
func ArchiveAssets(assets []Asset) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: asset.Filename, Method: zip.Deflate, Modified: epoch})
		if err != nil {
			return nil, fmt.Errorf("zip %s: %w", asset.Filename, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil, fmt.Errorf("zip %s: %w", asset.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip close: %w", err)
	}
	return buf.Bytes(), nil
}
