package card

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// pngBytes encodes a tiny solid image for asset fixtures.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mid.png"), pngBytes(t, 4, 4), 0o644); err != nil {
		t.Fatal(err)
	}

	src := DirSource{Dir: dir}
	img, err := src.Illustration(context.Background(), "mid")
	if err != nil {
		t.Fatalf("Illustration failed: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}

	if _, err := src.Illustration(context.Background(), "ultra"); err == nil {
		t.Error("expected error for missing asset")
	}
}

func TestURLSource_FirstWorkingURLWins(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes(t, 8, 8))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	src := NewURLSource(map[string][]string{
		"high": {bad.URL, good.URL},
	})
	img, err := src.Illustration(context.Background(), "high")
	if err != nil {
		t.Fatalf("Illustration failed: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}
}

func TestURLSource_NoURLsConfigured(t *testing.T) {
	src := NewURLSource(nil)
	if _, err := src.Illustration(context.Background(), "low"); !errors.Is(err, ErrNoAsset) {
		t.Errorf("expected ErrNoAsset, got %v", err)
	}
}

func TestChain_LocalBeforeRemote(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "low.png"), pngBytes(t, 4, 4), 0o644); err != nil {
		t.Fatal(err)
	}

	remoteHits := 0
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remoteHits++
		w.Write(pngBytes(t, 8, 8))
	}))
	defer remote.Close()

	chain := Chain{
		DirSource{Dir: dir},
		NewURLSource(map[string][]string{"low": {remote.URL}, "mid": {remote.URL}}),
	}

	// Local hit: remote must not be consulted.
	img, err := chain.Illustration(context.Background(), "low")
	if err != nil {
		t.Fatalf("Illustration failed: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("expected local 4px asset, got %v", img.Bounds())
	}
	if remoteHits != 0 {
		t.Errorf("expected no remote fetch, got %d", remoteHits)
	}

	// Local miss: falls through to remote.
	img, err = chain.Illustration(context.Background(), "mid")
	if err != nil {
		t.Fatalf("Illustration fallback failed: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("expected remote 8px asset, got %v", img.Bounds())
	}
}

func TestChain_AllFail(t *testing.T) {
	chain := Chain{
		DirSource{Dir: t.TempDir()},
		NewURLSource(nil),
	}
	if _, err := chain.Illustration(context.Background(), "ultra"); err == nil {
		t.Error("expected error when every source fails")
	}
}
