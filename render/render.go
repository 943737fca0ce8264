// Package render draws challenge text onto a distorted raster. It is
// the only package in the module that touches a concrete imaging
// backend; everything else goes through the captcha.Renderer interface.
package render

import (
	"bytes"
	"fmt"
	"image/gif"
	"image/png"
	"math/rand"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"textcaptcha/captcha"
)

// Recognized renderCreateOptions entries. The sequence is positional:
// method, style, text color, line color.
const (
	MethodTTF   = "ttf"    // place true-type glyphs with per-glyph jitter
	MethodPlain = "normal" // place glyphs on a straight baseline

	StyleDefault = "default" // no frame
	StyleRect    = "rect"    // thin border rectangle
	StyleBox     = "box"     // thick border rectangle
	StyleEllipse = "ellipse" // ellipse outline around the text
)

const (
	defaultBgColor = "#FFFFFF"
	defaultFgColor = "#000000"
	defaultPtSize  = 28.0
)

// Renderer implements captcha.Renderer on top of gg.
type Renderer struct{}

func New() *Renderer { return &Renderer{} }

var _ captcha.Renderer = (*Renderer)(nil)

// Render draws text styled per cfg and returns encoded raster bytes
// plus their mime type. Structurally invalid options fail with a
// *captcha.RenderConfigError before any pixels are produced.
func (r *Renderer) Render(text string, cfg *captcha.ChallengeConfig) (*captcha.RenderedImage, error) {
	if cfg == nil {
		return nil, &captcha.RenderConfigError{Reason: "configuration is nil"}
	}

	img := cfg.Image
	if img.Width <= 0 || img.Height <= 0 {
		return nil, &captcha.RenderConfigError{Option: "image", Reason: "dimensions must be positive"}
	}

	mime, encode, err := encoderFor(img.Format)
	if err != nil {
		return nil, err
	}

	co, err := parseCreateOptions(cfg.CreateOptions)
	if err != nil {
		return nil, err
	}

	po, err := parseParticleOptions(cfg.ParticleOptions, img.Width, img.Height)
	if err != nil {
		return nil, err
	}

	bg, err := pickColor("image.bgcolor", img.BgColor, defaultBgColor)
	if err != nil {
		return nil, err
	}
	fg, err := pickColor("image.fgcolor", img.FgColor, defaultFgColor)
	if err != nil {
		return nil, err
	}
	if co.textColor == "" {
		co.textColor = fg
	}
	if co.lineColor == "" {
		co.lineColor = fg
	}

	ptsize := img.PtSize
	if ptsize <= 0 {
		ptsize = defaultPtSize
	}

	face, err := loadFace(img.Font, ptsize)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(img.Width, img.Height)
	dc.SetHexColor(bg)
	dc.Clear()
	dc.SetFontFace(face)

	drawText(dc, text, co, ptsize)
	drawFrame(dc, co)
	drawNoiseLines(dc, img.Lines, co.lineColor, ptsize/14)
	drawParticles(dc, po, co.lineColor)

	var buf bytes.Buffer
	if err := encode(&buf, dc); err != nil {
		return nil, errors.Wrap(err, "encode image")
	}

	return &captcha.RenderedImage{Data: buf.Bytes(), MimeType: mime}, nil
}

func encoderFor(format string) (string, func(*bytes.Buffer, *gg.Context) error, error) {
	switch strings.ToLower(format) {
	case "", "png":
		return "image/png", func(buf *bytes.Buffer, dc *gg.Context) error {
			return png.Encode(buf, dc.Image())
		}, nil
	case "gif":
		return "image/gif", func(buf *bytes.Buffer, dc *gg.Context) error {
			return gif.Encode(buf, dc.Image(), nil)
		}, nil
	}
	return "", nil, &captcha.RenderConfigError{
		Option: "image.format",
		Reason: fmt.Sprintf("unsupported format %q", format),
	}
}

// loadFace parses the configured TTF file, or the built-in face when
// no path is given.
func loadFace(path string, points float64) (font.Face, error) {
	ttf := goregular.TTF
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &captcha.RenderConfigError{Option: "image.font", Reason: err.Error()}
		}
		ttf = data
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, &captcha.RenderConfigError{Option: "image.font", Reason: "invalid TTF: " + err.Error()}
	}
	return truetype.NewFace(f, &truetype.Options{Size: points}), nil
}

// drawText places the challenge glyphs. The ttf method rotates and
// shifts each glyph independently; normal keeps a straight baseline.
func drawText(dc *gg.Context, text string, co *createOptions, ptsize float64) {
	dc.SetHexColor(co.textColor)

	totalW, _ := dc.MeasureString(text)
	spacing := ptsize * 0.15
	totalW += spacing * float64(len(text)-1)

	x := (float64(dc.Width()) - totalW) / 2
	baseY := float64(dc.Height()) / 2

	for _, ch := range text {
		s := string(ch)
		w, _ := dc.MeasureString(s)
		cx := x + w/2
		cy := baseY

		if co.method == MethodTTF {
			cy += (rand.Float64() - 0.5) * ptsize * 0.4
			angle := (rand.Float64() - 0.5) * 0.5
			dc.RotateAbout(angle, cx, cy)
			dc.DrawStringAnchored(s, cx, cy, 0.5, 0.5)
			dc.RotateAbout(-angle, cx, cy)
		} else {
			dc.DrawStringAnchored(s, cx, cy, 0.5, 0.5)
		}

		x += w + spacing
	}
}

func drawFrame(dc *gg.Context, co *createOptions) {
	w := float64(dc.Width())
	h := float64(dc.Height())

	dc.SetHexColor(co.lineColor)
	switch co.style {
	case StyleRect:
		dc.SetLineWidth(1)
		dc.DrawRectangle(0.5, 0.5, w-1, h-1)
		dc.Stroke()
	case StyleBox:
		dc.SetLineWidth(4)
		dc.DrawRectangle(2, 2, w-4, h-4)
		dc.Stroke()
	case StyleEllipse:
		dc.SetLineWidth(1.5)
		dc.DrawEllipse(w/2, h/2, w/2-1, h/2-1)
		dc.Stroke()
	}
}

func drawNoiseLines(dc *gg.Context, n int, color string, width float64) {
	if n <= 0 {
		return
	}
	if width < 1 {
		width = 1
	}
	w := float64(dc.Width())
	h := float64(dc.Height())

	dc.SetHexColor(color)
	dc.SetLineWidth(width)
	for i := 0; i < n; i++ {
		dc.DrawLine(rand.Float64()*w, rand.Float64()*h, rand.Float64()*w, rand.Float64()*h)
		dc.Stroke()
	}
}

func drawParticles(dc *gg.Context, po *particleOptions, color string) {
	if po.density <= 0 {
		return
	}
	w := float64(dc.Width())
	h := float64(dc.Height())

	dc.SetHexColor(color)
	for i := 0; i < po.density; i++ {
		dc.DrawCircle(rand.Float64()*w, rand.Float64()*h, float64(po.dotSize)/2)
		dc.Fill()
	}
}
