package resources

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/lunfardo314/mathvm"
)

const (
	ChannelRed = iota
	ChannelGreen
	ChannelBlue
	ChannelAlpha
)

// Texture samples an image: read(channel, u, v) returns the channel byte normalized to 0..1.
// u and v wrap around the image. Writes are ignored
type Texture struct {
	width  int
	height int
	pix    *image.NRGBA
}

var _ mathvm.Resource = &Texture{}

func NewTexture(img image.Image) *Texture {
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	return &Texture{
		width:  b.Dx(),
		height: b.Dy(),
		pix:    nrgba,
	}
}

// LoadTexture decodes a PNG, JPEG or GIF file
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("LoadTexture '%s': %w", path, err)
	}
	return NewTexture(img), nil
}

func (t *Texture) Size() (int, int) {
	return t.width, t.height
}

func (t *Texture) Read(args []float64) float64 {
	if len(args) < 1 || t.width == 0 || t.height == 0 {
		return 0
	}
	channel := int(args[0])
	if channel < ChannelRed || channel > ChannelAlpha {
		return 0
	}
	var u, v float64
	if len(args) > 1 {
		u = args[1]
	}
	if len(args) > 2 {
		v = args[2]
	}
	x, y := 0, 0
	if t.width > 1 {
		x = int(float64(t.width)*u) % (t.width - 1)
	}
	if t.height > 1 {
		y = int(float64(t.height)*v) % (t.height - 1)
	}
	if x < 0 || y < 0 {
		return 0
	}
	return float64(t.pix.Pix[t.pix.PixOffset(x, y)+channel]) / 255
}

func (t *Texture) Write(_ []float64) {}
