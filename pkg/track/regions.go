package track

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mpapenbr/racetrack-sim-go/log"
	"github.com/mpapenbr/racetrack-sim-go/pkg/model"
)

// HelperRegion marks the vertex range [StartIndex, EndIndex] with a decoration kind.
// StartIndex > EndIndex means the region wraps across the start line.
type HelperRegion struct {
	Kind       model.HelperKind `json:"kind"`
	StartIndex int              `json:"startIndex"`
	EndIndex   int              `json:"endIndex"`
}

func (r HelperRegion) Contains(index int) bool {
	if r.StartIndex <= r.EndIndex {
		return index >= r.StartIndex && index <= r.EndIndex
	}
	return index >= r.StartIndex || index <= r.EndIndex
}

// nearestSample returns the index of the sample closest to p within radius or -1.
func nearestSample(pos []mgl64.Vec3, p mgl64.Vec3, radius float64) int {
	best, bestDist := -1, radius
	for i, s := range pos {
		if d := s.Sub(p).Len(); d <= bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// buildRegions opens a region with the first hint of a kind and closes all open
// regions on a reset hint. Regions still open are closed at the last sample.
func buildRegions(pos []mgl64.Vec3, hints []model.FeatureHint, l *log.Logger) []HelperRegion {
	ret := make([]HelperRegion, 0)
	open := make(map[model.HelperKind]int)
	var order []model.HelperKind
	closeAll := func(end int) {
		for _, k := range order {
			if start, ok := open[k]; ok {
				ret = append(ret, HelperRegion{Kind: k, StartIndex: start, EndIndex: end})
				delete(open, k)
			}
		}
		order = order[:0]
	}
	for _, h := range hints {
		idx := nearestSample(pos, h.Position.Vec(), hintRadius)
		if idx < 0 {
			l.Debug("feature hint too far from track",
				log.String("kind", h.Kind.String()), log.Any("position", h.Position))
			continue
		}
		if h.Kind == model.HelperReset {
			closeAll(idx)
			continue
		}
		if _, ok := open[h.Kind]; ok {
			continue
		}
		open[h.Kind] = idx
		order = append(order, h.Kind)
	}
	closeAll(len(pos) - 1)
	return ret
}
