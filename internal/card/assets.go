package card

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultAssetTimeout bounds a single remote asset fetch.
const DefaultAssetTimeout = 10 * time.Second

// ErrNoAsset is returned when no source can produce an illustration.
var ErrNoAsset = errors.New("no illustration asset available")

// Source yields an illustration image for a tier key.
type Source interface {
	Illustration(ctx context.Context, key string) (image.Image, error)
}

// DirSource loads <dir>/<key>.png from local storage.
type DirSource struct {
	Dir string
}

// Illustration loads and decodes the local asset for a key.
func (s DirSource) Illustration(_ context.Context, key string) (image.Image, error) {
	f, err := os.Open(filepath.Join(s.Dir, key+".png"))
	if err != nil {
		return nil, fmt.Errorf("open asset %s: %w", key, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode asset %s: %w", key, err)
	}
	return img, nil
}

// URLSource fetches the first reachable URL configured for a key.
type URLSource struct {
	URLs   map[string][]string
	Client *http.Client
}

// NewURLSource creates a remote asset source with a bounded-timeout client.
func NewURLSource(urls map[string][]string) *URLSource {
	return &URLSource{
		URLs:   urls,
		Client: &http.Client{Timeout: DefaultAssetTimeout},
	}
}

// Illustration fetches and decodes the first working URL for a key.
func (s *URLSource) Illustration(ctx context.Context, key string) (image.Image, error) {
	urls := s.URLs[key]
	if len(urls) == 0 {
		return nil, fmt.Errorf("asset %s: %w", key, ErrNoAsset)
	}

	var lastErr error
	for _, url := range urls {
		img, err := s.fetch(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		return img, nil
	}
	return nil, fmt.Errorf("asset %s: %w", key, lastErr)
}

func (s *URLSource) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build asset request: %w", err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch asset: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode asset: %w", err)
	}
	return img, nil
}

// Chain tries each source in order; the first success wins.
type Chain []Source

// Illustration walks the chain, returning the first produced image.
func (c Chain) Illustration(ctx context.Context, key string) (image.Image, error) {
	var lastErr error = ErrNoAsset
	for _, src := range c {
		img, err := src.Illustration(ctx, key)
		if err != nil {
			lastErr = err
			continue
		}
		return img, nil
	}
	return nil, lastErr
}
