package detection

import (
	"math"
	"sort"
	"strings"

	"github.com/ironsheep/memezap/internal/bbox"
	"github.com/ironsheep/memezap/internal/ocr"
)

// TextRegion is a located block of text. After merging, Polygon is the
// axis-aligned box around every fragment of the block.
type TextRegion struct {
	Polygon    bbox.Polygon `json:"polygon"`
	Text       string       `json:"text"`
	Confidence float64      `json:"confidence"`
}

// Bounds returns the axis-aligned bounding box of the region.
func (r TextRegion) Bounds() bbox.Box {
	return r.Polygon.Bounds()
}

// Polygons extracts the polygon of every region.
func Polygons(regions []TextRegion) []bbox.Polygon {
	out := make([]bbox.Polygon, len(regions))
	for i, r := range regions {
		out[i] = r.Polygon
	}
	return out
}

// Filter converts raw engine output to regions, dropping fragments whose
// confidence is not above minConfidence.
func Filter(raw []ocr.Detection, minConfidence float64) []TextRegion {
	out := make([]TextRegion, 0, len(raw))
	for _, d := range raw {
		if d.Confidence <= minConfidence {
			continue
		}
		out = append(out, TextRegion{Polygon: d.Polygon, Text: d.Text, Confidence: d.Confidence})
	}
	return out
}

// Merge groups nearby regions into text blocks.
//
// Regions are sorted by top edge and walked in order. A region joins the
// current cluster when its vertical gap to the cluster's bottom is at most
// threshold and the x-ranges overlap, or when the vertical gap is at most
// threshold/2 and the horizontal gap is at most threshold. Otherwise the
// cluster is closed and a new one starts.
//
// A closed cluster of one region is returned unchanged. Larger clusters
// become one region with space-joined text, mean confidence and the
// bounding box of all members. The output is ordered by top edge.
func Merge(regions []TextRegion, threshold float64) []TextRegion {
	if len(regions) == 0 {
		return []TextRegion{}
	}

	sorted := make([]TextRegion, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Bounds().MinY < sorted[j].Bounds().MinY
	})

	out := make([]TextRegion, 0, len(sorted))
	cluster := []TextRegion{sorted[0]}
	cb := sorted[0].Bounds()

	for _, r := range sorted[1:] {
		b := r.Bounds()
		if joins(cb, b, threshold) {
			cluster = append(cluster, r)
			cb = cb.Union(b)
			continue
		}
		out = append(out, closeCluster(cluster, cb))
		cluster = []TextRegion{r}
		cb = b
	}
	return append(out, closeCluster(cluster, cb))
}

func joins(cluster, next bbox.Box, v float64) bool {
	vgap := math.Max(0, next.MinY-cluster.MaxY)

	overlap := next.MinX <= cluster.MaxX && next.MaxX >= cluster.MinX
	if overlap {
		return vgap <= v
	}
	hgap := math.Max(next.MinX-cluster.MaxX, cluster.MinX-next.MaxX)
	return vgap <= v/2 && hgap <= v
}

func closeCluster(members []TextRegion, box bbox.Box) TextRegion {
	if len(members) == 1 {
		return members[0]
	}
	texts := make([]string, len(members))
	var conf float64
	for i, m := range members {
		texts[i] = m.Text
		conf += m.Confidence
	}
	return TextRegion{
		Polygon:    box.Polygon(),
		Text:       strings.Join(texts, " "),
		Confidence: conf / float64(len(members)),
	}
}
