package inpaint

import (
	"container/heap"
	"context"
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
)

const (
	known  = 0
	band   = 1
	inside = 2

	farAway = 1e6
)

var errNoKnownPixels = errors.New("mask leaves no known pixels")

// telea fills the masked pixels of img in place by fast marching.
func telea(ctx context.Context, img *image.NRGBA, mask *image.Alpha, radius int, feather float64) error {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	n := w * h
	flags := make([]uint8, n)
	dist := make([]float64, n)
	q := &pixelQueue{}

	for i := 0; i < n; i++ {
		if mask.Pix[(i/w)*mask.Stride+i%w] != 0 {
			flags[i] = inside
			dist[i] = farAway
		}
	}
	for i := 0; i < n; i++ {
		if flags[i] != known {
			continue
		}
		x, y := i%w, i/w
		if hasNeighbor(flags, w, h, x, y, inside) {
			flags[i] = band
			heap.Push(q, pixelItem{idx: i})
		}
	}
	if q.Len() == 0 {
		return errNoKnownPixels
	}

	steps := 0
	for q.Len() > 0 {
		if steps++; steps%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		p := heap.Pop(q).(pixelItem).idx
		if flags[p] == known {
			continue
		}
		flags[p] = known
		px, py := p%w, p/w

		for _, d := range fourNeighbors {
			x, y := px+d.X, py+d.Y
			if x < 0 || y < 0 || x >= w || y >= h {
				continue
			}
			i := y*w + x
			if flags[i] != inside {
				continue
			}
			dist[i] = math.Min(
				math.Min(solve(flags, dist, w, h, x-1, y, x, y-1), solve(flags, dist, w, h, x+1, y, x, y-1)),
				math.Min(solve(flags, dist, w, h, x-1, y, x, y+1), solve(flags, dist, w, h, x+1, y, x, y+1)),
			)
			fillPixel(img, flags, dist, w, h, x, y, radius)
			flags[i] = band
			heap.Push(q, pixelItem{idx: i, t: dist[i]})
		}
	}

	if feather > 0 {
		smooth(img, mask, feather)
	}
	return nil
}

// solve is the eikonal update from two neighbors at (x1,y1) and (x2,y2).
func solve(flags []uint8, dist []float64, w, h, x1, y1, x2, y2 int) float64 {
	ok1 := x1 >= 0 && y1 >= 0 && x1 < w && y1 < h && flags[y1*w+x1] != inside
	ok2 := x2 >= 0 && y2 >= 0 && x2 < w && y2 < h && flags[y2*w+x2] != inside
	switch {
	case ok1 && ok2:
		r1, r2 := dist[y1*w+x1], dist[y2*w+x2]
		d := 2 - (r1-r2)*(r1-r2)
		if d > 0 {
			r := math.Sqrt(d)
			s := (r1 + r2 - r) / 2
			if s >= r1 && s >= r2 {
				return s
			}
			s += r
			if s >= r1 && s >= r2 {
				return s
			}
		}
		return 1 + math.Min(r1, r2)
	case ok1:
		return 1 + dist[y1*w+x1]
	case ok2:
		return 1 + dist[y2*w+x2]
	}
	return farAway
}

// fillPixel sets (x,y) to the weighted mean of non-hole pixels within
// radius.
func fillPixel(img *image.NRGBA, flags []uint8, dist []float64, w, h, x, y, radius int) {
	i := y*w + x
	gx, gy := gradient(flags, dist, w, h, x, y)

	var sum [4]float64
	var wsum float64
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= w || ny >= h || (dx == 0 && dy == 0) {
				continue
			}
			d2 := float64(dx*dx + dy*dy)
			if d2 > float64(radius*radius) {
				continue
			}
			j := ny*w + nx
			if flags[j] == inside {
				continue
			}
			length := math.Sqrt(d2)
			dir := math.Abs(float64(-dx)*gx+float64(-dy)*gy) / length
			if dir == 0 {
				dir = 1e-6
			}
			dst := 1 / (d2 * length)
			lev := 1 / (1 + math.Abs(dist[j]-dist[i]))
			wt := dir * dst * lev

			off := ny*img.Stride + nx*4
			for c := 0; c < 4; c++ {
				sum[c] += wt * float64(img.Pix[off+c])
			}
			wsum += wt
		}
	}
	if wsum == 0 {
		return
	}
	off := y*img.Stride + x*4
	for c := 0; c < 4; c++ {
		img.Pix[off+c] = clamp8(sum[c] / wsum)
	}
}

// gradient estimates the gradient of the distance field at (x,y) from
// neighbors that already have a final distance.
func gradient(flags []uint8, dist []float64, w, h, x, y int) (float64, float64) {
	at := func(x, y int) (float64, bool) {
		if x < 0 || y < 0 || x >= w || y >= h || flags[y*w+x] == inside {
			return 0, false
		}
		return dist[y*w+x], true
	}
	center := dist[y*w+x]
	diff := func(prev, next float64, okPrev, okNext bool) float64 {
		switch {
		case okPrev && okNext:
			return (next - prev) / 2
		case okNext:
			return next - center
		case okPrev:
			return center - prev
		}
		return 0
	}
	l, okL := at(x-1, y)
	r, okR := at(x+1, y)
	u, okU := at(x, y-1)
	d, okD := at(x, y+1)
	return diff(l, r, okL, okR), diff(u, d, okU, okD)
}

// smooth blends a Gaussian-blurred copy into the masked pixels so the fill
// carries no streaks.
func smooth(img *image.NRGBA, mask *image.Alpha, radius float64) {
	blurred := blur.Gaussian(img, radius)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.Pix[y*mask.Stride+x] == 0 {
				continue
			}
			c := color.NRGBAModel.Convert(blurred.At(blurred.Rect.Min.X+x, blurred.Rect.Min.Y+y)).(color.NRGBA)
			img.SetNRGBA(img.Rect.Min.X+x, img.Rect.Min.Y+y, c)
		}
	}
}

var fourNeighbors = []image.Point{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}}

func hasNeighbor(flags []uint8, w, h, x, y int, flag uint8) bool {
	for _, d := range fourNeighbors {
		nx, ny := x+d.X, y+d.Y
		if nx >= 0 && ny >= 0 && nx < w && ny < h && flags[ny*w+nx] == flag {
			return true
		}
	}
	return false
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}

type pixelItem struct {
	idx int
	t   float64
}

// pixelQueue is a min-heap of pixels by arrival time.
type pixelQueue []pixelItem

func (q pixelQueue) Len() int           { return len(q) }
func (q pixelQueue) Less(i, j int) bool { return q[i].t < q[j].t }
func (q pixelQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *pixelQueue) Push(x any)        { *q = append(*q, x.(pixelItem)) }
func (q *pixelQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}
