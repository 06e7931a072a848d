package field

import (
	"math"

	"github.com/cwbudde/algo-subarray/acoustics"
	"github.com/cwbudde/algo-subarray/array"
)

// Source is one monopole of the field model. Delay is the effective delay
// in ms after the live arc recompute; BaseDelay excludes any arc
// contribution.
type Source struct {
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	BaseDelay float64    `json:"base_delay_ms"`
	Delay     float64    `json:"delay_ms"`
	Polarity  float64    `json:"polarity"`
	Side      array.Side `json:"side,omitempty"`
}

// Options are the live controls of a synthesis. Nil angles fall back to the
// configuration values.
type Options struct {
	GridSize int
	ArcAngle *float64
	PanAngle *float64
}

// DefaultGridSize is the number of cells per axis.
const DefaultGridSize = 100

func (o Options) gridSize() int {
	if o.GridSize <= 0 {
		return DefaultGridSize
	}
	return o.GridSize
}

// Sources turns solver elements into point sources: cardioid stacks are
// flattened into modules, arc delays are recomputed for the live angle and
// L-R sides are rigidly panned.
func Sources(elems []array.Element, cfg *array.Config, opts Options) []Source {
	if cfg == nil {
		return nil
	}
	srcs := flatten(elems, cfg)
	if len(srcs) == 0 {
		return srcs
	}

	if cfg.HasArc() {
		angle, _ := cfg.EffectiveArcDegrees()
		if opts.ArcAngle != nil {
			angle, _ = array.ClampArcDegrees(*opts.ArcAngle)
		}
		recomputeArc(srcs, angle)
	}

	pan := cfg.PanDegrees
	if opts.PanAngle != nil {
		pan = *opts.PanAngle
	}
	if cfg.PrimarySetup == array.SetupLeftRight && pan != 0 {
		panSide(srcs, array.SideLeft, acoustics.DegToRad(pan))
		panSide(srcs, array.SideRight, acoustics.DegToRad(-pan))
	}
	return srcs
}

func flatten(elems []array.Element, cfg *array.Config) []Source {
	offset := cfg.AcousticOffsetM()
	dv := cfg.CardioidCabinetDepthCm / 100
	if !(dv > 0) {
		dv = cfg.CabinetCut.Dimension()
	}
	pureArc := cfg.IsPureArc()

	srcs := make([]Source, 0, len(elems))
	for _, el := range elems {
		if el.IsStack() {
			for j, m := range el.Modules {
				y := el.Y + math.Max(0, float64(j-1))*dv
				if m.PhysicallyInverted {
					y = el.Y - dv + offset
				} else {
					y -= offset
				}
				base := m.BaseDelay()
				srcs = append(srcs, Source{
					X:         el.X,
					Y:         y,
					BaseDelay: base,
					Delay:     base,
					Polarity:  m.Polarity.Sign(),
				})
			}
			continue
		}
		base := el.BaseDelay()
		if pureArc {
			base = 0
		}
		srcs = append(srcs, Source{
			X:         el.X,
			Y:         el.Y,
			BaseDelay: base,
			Delay:     base,
			Polarity:  el.Polarity.Sign(),
			Side:      el.Side,
		})
	}
	return srcs
}

// recomputeArc treats every distinct x as one arc column centered on the
// middle of the x extent and sets Delay = BaseDelay + arc delay.
func recomputeArc(srcs []Source, angleDeg float64) {
	cols := make([]float64, 0, len(srcs))
	index := make(map[float64]int, len(srcs))
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, s := range srcs {
		if _, ok := index[s.X]; !ok {
			index[s.X] = len(cols)
			cols = append(cols, s.X)
		}
		minX = math.Min(minX, s.X)
		maxX = math.Max(maxX, s.X)
	}
	center := (minX + maxX) / 2
	rel := make([]float64, len(cols))
	for i, x := range cols {
		rel[i] = x - center
	}
	radius, curved := acoustics.ArcRadius(maxX-minX, angleDeg)
	delays := acoustics.ArcDelays(rel, radius, curved)
	for i := range srcs {
		srcs[i].Delay = srcs[i].BaseDelay + delays[index[srcs[i].X]]
	}
}

func panSide(srcs []Source, side array.Side, theta float64) {
	var idx []int
	for i := range srcs {
		if srcs[i].Side == side {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return
	}
	xs := make([]float64, len(idx))
	ys := make([]float64, len(idx))
	for k, i := range idx {
		xs[k], ys[k] = srcs[i].X, srcs[i].Y
	}
	acoustics.RotateAboutStageMost(xs, ys, theta)
	for k, i := range idx {
		srcs[i].X, srcs[i].Y = xs[k], ys[k]
	}
}
