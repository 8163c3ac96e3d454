// Package card renders fixed-layout profit-and-loss images.
package card

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"image/png"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"token-pnl-bot/internal/domain"
	"token-pnl-bot/internal/gain"
)

// Fixed canvas dimensions.
const (
	CanvasWidth  = 1200
	CanvasHeight = 675
)

// Watermark is drawn in the bottom-right corner of every card.
const Watermark = "Powered by The Alpha House"

// Layout constants. The left ~55% of the canvas is the text column, the
// right ~44% the illustration slot.
const (
	pad          = 48.0
	textMaxWidth = CanvasWidth*0.55 - pad
	slotX        = CanvasWidth * 0.56
	slotWidth    = CanvasWidth * 0.44
	slotHeight   = CanvasHeight - 2*pad
)

// Text size bounds for the shrink-to-fit pass.
const (
	titleSizeMax = 64.0
	titleSizeMin = 28.0
	multSizeMax  = 150.0
	multSizeMin  = 48.0
	metaSize     = 26.0
	footerSize   = 20.0
	fitStep      = 2.0
)

var (
	backgroundColor = color.RGBA{15, 15, 15, 255}
	titleColor      = color.RGBA{243, 186, 47, 255}
	gainColor       = color.RGBA{86, 217, 109, 255}
	lossColor       = color.RGBA{235, 87, 87, 255}
	glowColor       = color.RGBA{58, 58, 58, 255}
	labelColor      = color.RGBA{200, 200, 200, 255}
	mutedColor      = color.RGBA{130, 130, 130, 255}
)

// glowOffsets are the pixel offsets for the muted copies drawn under the
// multiplier text.
var glowOffsets = [][2]float64{{-3, -3}, {3, -3}, {-3, 3}, {3, 3}, {0, 4}}

// Card carries everything the renderer needs for one image.
type Card struct {
	Symbol     string
	ChainTag   string
	Baseline   domain.Snapshot
	Current    domain.Quote
	Multiplier float64
}

// Renderer composes profit-and-loss cards. It is stateless apart from
// the parsed typeface and can run on any worker without coordination.
type Renderer struct {
	assets Source
	font   *truetype.Font
	log    zerolog.Logger
	now    func() time.Time
}

// RendererOption configures Renderer.
type RendererOption func(*Renderer)

// WithFontPaths loads the first parseable font file from paths. When
// none loads the bundled Go Regular face is kept.
func WithFontPaths(paths []string) RendererOption {
	return func(r *Renderer) {
		r.font = loadFont(paths, r.log)
	}
}

// WithRendererLogger sets the renderer logger.
func WithRendererLogger(log zerolog.Logger) RendererOption {
	return func(r *Renderer) {
		r.log = log
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) RendererOption {
	return func(r *Renderer) {
		r.now = now
	}
}

// NewRenderer creates a renderer drawing illustrations from assets.
func NewRenderer(assets Source, opts ...RendererOption) *Renderer {
	r := &Renderer{
		assets: assets,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.font == nil {
		r.font = builtinFont()
	}
	return r
}

// Render composes the card and returns it PNG-encoded. Asset and font
// problems degrade gracefully; the only hard failure is PNG encoding.
func (r *Renderer) Render(ctx context.Context, c Card) ([]byte, error) {
	tier := gain.TierFor(c.Multiplier)

	dc := gg.NewContext(CanvasWidth, CanvasHeight)
	dc.SetColor(backgroundColor)
	dc.Clear()

	r.drawIllustration(ctx, dc, tier)

	measure := func(text string, size float64) float64 {
		dc.SetFontFace(r.faceAt(size))
		w, _ := dc.MeasureString(text)
		return w
	}

	// Title
	title := "$" + strings.ToUpper(c.Symbol)
	titleSize := FitFontSize(title, textMaxWidth, titleSizeMin, titleSizeMax, fitStep, measure)
	dc.SetFontFace(r.faceAt(titleSize))
	dc.SetColor(titleColor)
	dc.DrawString(title, pad, 110)

	// Multiplier with glow emphasis
	multText := fmt.Sprintf("%.2fx", c.Multiplier)
	multSize := FitFontSize(multText, textMaxWidth, multSizeMin, multSizeMax, fitStep, measure)
	dc.SetFontFace(r.faceAt(multSize))
	dc.SetColor(glowColor)
	for _, off := range glowOffsets {
		dc.DrawString(multText, pad+off[0], 280+off[1])
	}
	accent := gainColor
	if c.Multiplier < 1 {
		accent = lossColor
	}
	dc.SetColor(accent)
	dc.DrawString(multText, pad, 280)

	// Metadata strip
	dc.SetFontFace(r.faceAt(metaSize))
	dc.SetColor(labelColor)
	lines := []string{
		"Entry MC:     $" + groupThousands(c.Baseline.Quote.MarketCap),
		"Current MC:   $" + groupThousands(c.Current.MarketCap),
		fmt.Sprintf("Entry Price:   $%.8f", c.Baseline.Quote.Price),
		fmt.Sprintf("Current Price: $%.8f", c.Current.Price),
	}
	y := 380.0
	for _, line := range lines {
		dc.DrawString(line, pad, y)
		y += 44
	}

	// Footer: chain tag + timestamp left, watermark right
	dc.SetFontFace(r.faceAt(footerSize))
	dc.SetColor(mutedColor)
	stamp := r.now().UTC().Format("2006-01-02 15:04 UTC")
	dc.DrawString(c.ChainTag+" · "+stamp, pad, CanvasHeight-36)
	dc.SetColor(titleColor)
	dc.DrawStringAnchored(Watermark, CanvasWidth-pad, CanvasHeight-36, 1, 0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode card: %w", err)
	}
	return buf.Bytes(), nil
}

// drawIllustration places the tier asset in the right slot, scaled to
// fit with its aspect ratio preserved and centered vertically. Fetch
// failures are swallowed: a card without its meme is still a card.
func (r *Renderer) drawIllustration(ctx context.Context, dc *gg.Context, tier gain.Tier) {
	img, err := r.assets.Illustration(ctx, string(tier))
	if err != nil {
		r.log.Warn().Str("tier", string(tier)).Err(err).Msg("rendering without illustration")
		return
	}

	bounds := img.Bounds()
	imgW := float64(bounds.Dx())
	imgH := float64(bounds.Dy())
	if imgW <= 0 || imgH <= 0 {
		return
	}

	scale := math.Min(slotWidth/imgW, slotHeight/imgH)
	x := slotX + (slotWidth-imgW*scale)/2
	y := (CanvasHeight - imgH*scale) / 2

	dc.Push()
	dc.Translate(x, y)
	dc.Scale(scale, scale)
	dc.DrawImage(img, 0, 0)
	dc.Pop()
}

// faceAt returns a font face for the renderer typeface at a size.
func (r *Renderer) faceAt(size float64) font.Face {
	return truetype.NewFace(r.font, &truetype.Options{Size: size})
}

// loadFont parses the first loadable font file, falling back to the
// bundled face when every path fails.
func loadFont(paths []string, log zerolog.Logger) *truetype.Font {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Debug().Str("path", path).Err(err).Msg("font file unreadable")
			continue
		}
		f, err := truetype.Parse(data)
		if err != nil {
			log.Debug().Str("path", path).Err(err).Msg("font file unparseable")
			continue
		}
		return f
	}
	return builtinFont()
}

// builtinFont parses the bundled Go Regular typeface. The bundled bytes
// are known good, so the parse cannot fail at runtime.
func builtinFont() *truetype.Font {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("parse bundled font: %v", err))
	}
	return f
}

// groupThousands formats a value as a thousands-grouped integer.
func groupThousands(v float64) string {
	n := int64(math.Round(v))
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
