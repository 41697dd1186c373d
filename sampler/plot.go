package sampler

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

type PlotConfig struct {
	Width     int
	Height    int
	DomainMin float64
	DomainMax float64
	// series without a color are not plotted
	Colors map[string]color.NRGBA
}

type point struct {
	x, y  int
	valid bool
}

// Plot draws every colored series of the result as connected line segments on a white image.
// Sample indices are spread over the width, values are clamped into the domain
func Plot(res *Result, cfg PlotConfig) (*image.RGBA, error) {
	if cfg.Width < 1 || cfg.Height < 1 {
		return nil, fmt.Errorf("invalid image size %dx%d", cfg.Width, cfg.Height)
	}
	if !(cfg.DomainMax > cfg.DomainMin) {
		return nil, fmt.Errorf("invalid domain [%g, %g]", cfg.DomainMin, cfg.DomainMax)
	}
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	// deterministic drawing order, later series are drawn over earlier ones
	names := make([]string, 0, len(cfg.Colors))
	for name := range cfg.Colors {
		if _, ok := res.Series[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		points := project(res.Series[name], cfg)
		c := blendOverWhite(cfg.Colors[name])
		for i := 0; i+1 < len(points); i++ {
			if !points[i].valid || !points[i+1].valid {
				continue
			}
			drawLine(img, points[i], points[i+1], c)
		}
		if len(points) == 1 && points[0].valid {
			img.SetRGBA(points[0].x, points[0].y, c)
		}
	}
	return img, nil
}

func project(values []float64, cfg PlotConfig) []point {
	ret := make([]point, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		x := 0.0
		if len(values) > 1 {
			x = float64(i) * float64(cfg.Width-1) / float64(len(values)-1)
		}
		v = math.Max(cfg.DomainMin, math.Min(cfg.DomainMax, v))
		y := (v - cfg.DomainMin) * float64(cfg.Height-1) / (cfg.DomainMax - cfg.DomainMin)
		ret[i] = point{
			x:     int(x),
			y:     int(float64(cfg.Height-1) - y),
			valid: true,
		}
	}
	return ret
}

func blendOverWhite(c color.NRGBA) color.RGBA {
	a := float64(c.A) / 255
	ch := func(v uint8) uint8 {
		return uint8((a*(float64(v)/255) + (1 - a)) * 255)
	}
	return color.RGBA{R: ch(c.R), G: ch(c.G), B: ch(c.B), A: 0xff}
}

// drawLine is Bresenham's line with both ends included
func drawLine(img *image.RGBA, p0, p1 point, c color.RGBA) {
	dx := abs(p1.x - p0.x)
	dy := -abs(p1.y - p0.y)
	sx, sy := 1, 1
	if p0.x > p1.x {
		sx = -1
	}
	if p0.y > p1.y {
		sy = -1
	}
	e := dx + dy
	x, y := p0.x, p0.y
	for {
		if image.Pt(x, y).In(img.Rect) {
			img.SetRGBA(x, y, c)
		}
		if x == p1.x && y == p1.y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = EncodePNG(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ParseColor parses #rrggbb or #rrggbbaa
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color '%s'", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color '%s'", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
