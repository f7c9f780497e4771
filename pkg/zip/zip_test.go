package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchiveAssets(t *testing.T) {
	assets := []Asset{
		{Filename: "brave/linux/product_logo_16.png", Data: []byte("sixteen")},
		{Filename: "brave/win/brave.ico", Data: []byte("icon")},
	}
	first, err := ArchiveAssets(assets)
	if err != nil {
		t.Fatalf("ArchiveAssets: %v", err)
	}
	second, err := ArchiveAssets(assets)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("archives of identical assets differ")
	}

	zr, err := zip.NewReader(bytes.NewReader(first), int64(len(first)))
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if len(zr.File) != len(assets) {
		t.Fatalf("entries = %d, want %d", len(zr.File), len(assets))
	}
	for i, f := range zr.File {
		if f.Name != assets[i].Filename {
			t.Fatalf("entry %d = %s, want %s", i, f.Name, assets[i].Filename)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if !bytes.Equal(data, assets[i].Data) {
			t.Fatalf("entry %s content mismatch", f.Name)
		}
	}
}
