package ppu

import (
	"image"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
)

const (
	Width  = cpu.Width
	Height = cpu.Height
)

// PPU turns the CPU's boolean framebuffer into RGBA pixels.
type PPU struct {
	pal Palette
	fb  []byte // RGBA Width*Height*4
}

func New(pal Palette) *PPU {
	return &PPU{pal: pal, fb: make([]byte, Width*Height*4)}
}

func (p *PPU) SetPalette(pal Palette) { p.pal = pal }
func (p *PPU) Palette() Palette       { return p.pal }

// Render converts fb into the RGBA buffer returned by Pixels.
func (p *PPU) Render(fb *cpu.Framebuffer) {
	i := 0
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			c := p.pal.Off
			if fb[y][x] {
				c = p.pal.On
			}
			p.fb[i+0] = c.R
			p.fb[i+1] = c.G
			p.fb[i+2] = c.B
			p.fb[i+3] = c.A
			i += 4
		}
	}
}

// Pixels is the RGBA buffer from the last Render, row-major.
func (p *PPU) Pixels() []byte { return p.fb }

// Image copies the current pixels into an image, scaled by an integer factor.
func (p *PPU) Image(scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, Width*scale, Height*scale))
	for y := 0; y < Height*scale; y++ {
		src := (y / scale) * Width * 4
		dst := y * img.Stride
		for x := 0; x < Width*scale; x++ {
			s := src + (x/scale)*4
			copy(img.Pix[dst+x*4:dst+x*4+4], p.fb[s:s+4])
		}
	}
	return img
}
