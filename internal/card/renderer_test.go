package card

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"token-pnl-bot/internal/domain"
)

// failingSource always errors, simulating total asset outage.
type failingSource struct{}

func (failingSource) Illustration(context.Context, string) (image.Image, error) {
	return nil, errors.New("asset outage")
}

func sampleCard(multiplier float64) Card {
	return Card{
		Symbol:   "SMP",
		ChainTag: "bsc",
		Baseline: domain.Snapshot{
			Quote:      domain.Quote{Price: 0.0001, MarketCap: 100000, Symbol: "SMP", ChainTag: "bsc"},
			CapturedAt: 1700000000000,
		},
		Current:    domain.Quote{Price: 0.00055, MarketCap: 550000, Symbol: "SMP", ChainTag: "bsc"},
		Multiplier: multiplier,
	}
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a decodable PNG: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestRender_SurvivesAssetAndFontOutage(t *testing.T) {
	r := NewRenderer(failingSource{},
		WithFontPaths([]string{"/nonexistent/font.ttf"}),
		WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
	)

	data, err := r.Render(context.Background(), sampleCard(5.5))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	w, h := decodeDims(t, data)
	if w != CanvasWidth || h != CanvasHeight {
		t.Errorf("expected %dx%d canvas, got %dx%d", CanvasWidth, CanvasHeight, w, h)
	}
}

func TestRender_AllValidInputCombinations(t *testing.T) {
	r := NewRenderer(failingSource{})

	cases := []Card{
		sampleCard(0),      // cannot-compute sentinel
		sampleCard(0.42),   // loss accent
		sampleCard(1.99),   // low tier gain
		sampleCard(25),     // ultra tier
		{Symbol: "A", ChainTag: "solana", Multiplier: 3},                        // zero quotes
		{Symbol: "VERYLONGSYMBOLNAMETHATOVERFLOWS", ChainTag: "eth", Multiplier: 123456.78}, // fit floor
	}

	for _, c := range cases {
		if _, err := r.Render(context.Background(), c); err != nil {
			t.Errorf("Render(%q, %v) failed: %v", c.Symbol, c.Multiplier, err)
		}
	}
}

func TestRender_WithIllustration(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mid.png"), pngBytes(t, 300, 400), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRenderer(DirSource{Dir: dir})
	data, err := r.Render(context.Background(), sampleCard(5.5)) // tier mid
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	w, h := decodeDims(t, data)
	if w != CanvasWidth || h != CanvasHeight {
		t.Errorf("unexpected dimensions %dx%d", w, h)
	}
}

func TestGroupThousands(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{100000, "100,000"},
		{2100000, "2,100,000"},
		{550000.4, "550,000"},
	}
	for _, tc := range cases {
		if got := groupThousands(tc.in); got != tc.want {
			t.Errorf("groupThousands(%v) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
