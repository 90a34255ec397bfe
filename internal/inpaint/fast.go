package inpaint

import (
	"context"
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

type lab struct{ l, a, b, alpha float64 }

// fast fills the masked pixels of img in place, one ring at a time. Each
// ring pixel becomes the mean, in CIE Lab, of its known 8-neighbors. Only
// the hole pixels next to the previous ring are visited, so the cost is
// proportional to the image plus the hole, not to rings times image.
func fast(ctx context.Context, img *image.NRGBA, mask *image.Alpha) error {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	hole := make([]bool, w*h)
	queued := make([]bool, w*h)
	px := make([]lab, w*h)
	remaining := 0

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if mask.Pix[y*mask.Stride+x] != 0 {
				hole[i] = true
				remaining++
				continue
			}
			px[i] = toLab(img.NRGBAAt(x, y))
		}
	}

	// The first ring is every hole pixel touching a known one.
	var frontier []int
	for i, isHole := range hole {
		if !isHole {
			continue
		}
		x, y := i%w, i/w
		if touchesKnown(hole, w, h, x, y) {
			frontier = append(frontier, i)
			queued[i] = true
		}
	}

	type fill struct {
		idx int
		v   lab
	}
	var ring []fill
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(frontier) == 0 {
			return errNoKnownPixels
		}
		ring = ring[:0]
		for _, i := range frontier {
			if v, ok := neighborMean(px, hole, w, h, i%w, i/w); ok {
				ring = append(ring, fill{idx: i, v: v})
			}
		}
		for _, f := range ring {
			hole[f.idx] = false
			px[f.idx] = f.v
			img.SetNRGBA(f.idx%w, f.idx/w, fromLab(f.v))
		}
		remaining -= len(ring)

		frontier = frontier[:0]
		for _, f := range ring {
			x, y := f.idx%w, f.idx/w
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					j := ny*w + nx
					if hole[j] && !queued[j] {
						queued[j] = true
						frontier = append(frontier, j)
					}
				}
			}
		}
	}
	return nil
}

func touchesKnown(hole []bool, w, h, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if (dx == 0 && dy == 0) || nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			if !hole[ny*w+nx] {
				return true
			}
		}
	}
	return false
}

func neighborMean(px []lab, hole []bool, w, h, x, y int) (lab, bool) {
	var sum lab
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if (dx == 0 && dy == 0) || nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			j := ny*w + nx
			if hole[j] {
				continue
			}
			sum.l += px[j].l
			sum.a += px[j].a
			sum.b += px[j].b
			sum.alpha += px[j].alpha
			n++
		}
	}
	if n == 0 {
		return lab{}, false
	}
	f := float64(n)
	return lab{sum.l / f, sum.a / f, sum.b / f, sum.alpha / f}, true
}

func toLab(c color.NRGBA) lab {
	cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	l, a, b := cf.Lab()
	return lab{l: l, a: a, b: b, alpha: float64(c.A)}
}

func fromLab(v lab) color.NRGBA {
	r, g, b := colorful.Lab(v.l, v.a, v.b).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: clamp8(v.alpha)}
}
