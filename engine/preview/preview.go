// Package preview draws what an off-axis camera sees as a wireframe: the
// outline of its projection plane and any reference boxes, through the
// camera matrices.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/spaghettifunk/offaxis/engine/math"
	"github.com/spaghettifunk/offaxis/engine/offaxis"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// clipW is the smallest clip space w kept when clipping segments that cross
// behind the eye.
const clipW = 1e-4

type Options struct {
	Width, Height int
	// Supersample renders at this multiple of the output size, then
	// downsamples. Values below 1 are treated as 1.
	Supersample int
	// LineWidth is in output pixels.
	LineWidth   float32
	Background  color.RGBA
	PlaneColor  color.RGBA
	MarkerColor color.RGBA
	Markers     []math.Extents3D
}

func DefaultOptions() Options {
	return Options{
		Width:       512,
		Height:      512,
		Supersample: 2,
		LineWidth:   2,
		Background:  color.RGBA{R: 18, G: 18, B: 24, A: 255},
		PlaneColor:  color.RGBA{R: 250, G: 250, B: 250, A: 255},
		MarkerColor: color.RGBA{R: 255, G: 160, B: 40, A: 255},
	}
}

type segment struct {
	a, b math.Vec3
}

func boxSegments(box math.Extents3D) []segment {
	lo, hi := box.Min, box.Max
	c := [8]math.Vec3{
		math.NewVec3(lo.X, lo.Y, lo.Z), math.NewVec3(hi.X, lo.Y, lo.Z),
		math.NewVec3(hi.X, hi.Y, lo.Z), math.NewVec3(lo.X, hi.Y, lo.Z),
		math.NewVec3(lo.X, lo.Y, hi.Z), math.NewVec3(hi.X, lo.Y, hi.Z),
		math.NewVec3(hi.X, hi.Y, hi.Z), math.NewVec3(lo.X, hi.Y, hi.Z),
	}
	segs := make([]segment, 0, 12)
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		segs = append(segs,
			segment{c[i], c[j]},
			segment{c[i+4], c[j+4]},
			segment{c[i], c[i+4]},
		)
	}
	return segs
}

func outlineSegments(corners [4]math.Vec3) []segment {
	segs := make([]segment, 0, 4)
	for i := range corners {
		segs = append(segs, segment{corners[i], corners[(i+1)%4]})
	}
	return segs
}

// canvas maps clip space onto a pixel grid.
type canvas struct {
	dst   *image.RGBA
	vp    math.Mat4
	w, h  float32
	width float32
}

// toPixel returns the pixel position of a clip space point with w > 0.
func (c *canvas) toPixel(p math.Vec4) (float32, float32) {
	ndc := p.PerspectiveDivide()
	return (ndc.X + 1) * 0.5 * c.w, (1 - ndc.Y) * 0.5 * c.h
}

func (c *canvas) line(s segment, col color.RGBA) {
	a := s.a.ToVec4(1).Transform(c.vp)
	b := s.b.ToVec4(1).Transform(c.vp)
	if a.W < clipW && b.W < clipW {
		return
	}
	// Cut the part behind the eye.
	if a.W < clipW || b.W < clipW {
		t := (clipW - a.W) / (b.W - a.W)
		cut := math.NewVec4(
			a.X+(b.X-a.X)*t,
			a.Y+(b.Y-a.Y)*t,
			a.Z+(b.Z-a.Z)*t,
			clipW,
		)
		if a.W < clipW {
			a = cut
		} else {
			b = cut
		}
	}

	x0, y0 := c.toPixel(a)
	x1, y1 := c.toPixel(b)
	dx, dy := x1-x0, y1-y0
	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 || !math.IsFinite(length) {
		return
	}
	// Quad of the given width around the segment.
	nx, ny := -dy/length*c.width*0.5, dx/length*c.width*0.5

	r := vector.NewRasterizer(c.dst.Bounds().Dx(), c.dst.Bounds().Dy())
	r.MoveTo(x0+nx, y0+ny)
	r.LineTo(x1+nx, y1+ny)
	r.LineTo(x1-nx, y1-ny)
	r.LineTo(x0-nx, y0-ny)
	r.ClosePath()
	r.Draw(c.dst, c.dst.Bounds(), image.NewUniform(col), image.Point{})
}

// Render draws the projection plane outline and the markers as seen by the
// camera. The plane outline lands on the border of the image.
func Render(state offaxis.ProjectionState, opts Options) *image.RGBA {
	ss := opts.Supersample
	if ss < 1 {
		ss = 1
	}
	w, h := opts.Width*ss, opts.Height*ss

	hi := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(hi, hi.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	c := &canvas{
		dst:   hi,
		vp:    state.ViewProjection(),
		w:     float32(w),
		h:     float32(h),
		width: opts.LineWidth * float32(ss),
	}
	for _, box := range opts.Markers {
		for _, s := range boxSegments(box) {
			c.line(s, opts.MarkerColor)
		}
	}
	for _, s := range outlineSegments(state.Plane.Corners.Outline()) {
		c.line(s, opts.PlaneColor)
	}

	if ss == 1 {
		return hi
	}
	out := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(out, out.Bounds(), hi, hi.Bounds(), draw.Src, nil)
	return out
}

// Encode writes img as "png" or "webp".
func Encode(w io.Writer, format string, img image.Image) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, img)
	case "webp":
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("WebP encode: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported preview format %q", format)
	}
}

// Save writes img to path, choosing the format from the extension.
func Save(path string, img image.Image) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format != "png" && format != "webp" {
		return fmt.Errorf("unsupported preview format %q", format)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, format, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
