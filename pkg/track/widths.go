package track

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mpapenbr/racetrack-sim-go/pkg/geom"
	"github.com/mpapenbr/racetrack-sim-go/pkg/model"
)

const (
	hintRadius = 25.0
	// share of the hinted width taken over per sample
	widthBlend = 0.1
	// number of samples at the end which fade back to the start width
	widthCloseSamples = 7
)

// assignWidths walks the samples and lets a running width follow nearby hints.
func assignWidths(pos []mgl64.Vec3, hints []model.WidthHint, s *settings) []float64 {
	clampWidth := func(w float64) float64 { return mgl64.Clamp(w, s.minWidth, s.maxWidth) }
	ret := make([]float64, len(pos))
	running := clampWidth(s.defaultWidth)
	for i, p := range pos {
		sumW, sumInv := 0.0, 0.0
		for _, h := range hints {
			d := p.Sub(h.Position.Vec()).Len()
			if d > hintRadius {
				continue
			}
			inv := 1 / max(d, 1)
			sumW += h.Width * inv
			sumInv += inv
		}
		if sumInv > 0 {
			running = clampWidth(geom.LerpF(running, sumW/sumInv, widthBlend))
		}
		ret[i] = running
	}
	n := len(ret)
	closing := min(widthCloseSamples, n-1)
	for k := range closing {
		i := n - closing + k
		f := float64(k+1) / float64(closing+1)
		ret[i] = clampWidth(geom.LerpF(ret[i], ret[0], f))
	}
	return ret
}
