// Package acoustics holds the physical constants and small geometric helpers
// shared by the array solver and the field synthesizer.
package acoustics

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// SpeedOfSound is the propagation speed used everywhere, in m/s.
const SpeedOfSound = 343.0

// DefaultCabinetDimension is used when a cabinet cut is unknown (18").
const DefaultCabinetDimension = 0.60

// minArcAngleRad floors the angle in the radius fallback.
const minArcAngleRad = 0.0001

// Wavelength returns the wavelength in meters for freqHz.
func Wavelength(freqHz float64) float64 {
	return SpeedOfSound / freqHz
}

// QuarterWavelength returns λ/4 at freqHz: the maximum element spacing that
// avoids lobing, and the endfire row spacing at the target frequency.
func QuarterWavelength(freqHz float64) float64 {
	return Wavelength(freqHz) / 4.0
}

// DistanceToDelayMs converts a path length in meters to milliseconds.
func DistanceToDelayMs(meters float64) float64 {
	return meters / SpeedOfSound * 1000.0
}

// DelayMsToDistance converts milliseconds to the equivalent path in meters.
func DelayMsToDistance(ms float64) float64 {
	return ms / 1000.0 * SpeedOfSound
}

// ArcRadius returns the radius of a circular arc of included angle angleDeg
// whose chord is width. The second result is false for a straight line
// (angle 0), in which case the radius is meaningless.
func ArcRadius(width, angleDeg float64) (float64, bool) {
	if angleDeg == 0 {
		return 0, false
	}
	angleRad := angleDeg * math.Pi / 180.0
	r := width / (2.0 * math.Sin(angleRad/2.0))
	if math.IsNaN(r) || math.IsInf(r, 0) {
		a := angleRad
		if a == 0 {
			a = minArcAngleRad
		}
		r = width / a
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// ArcDelays returns, for each lateral offset in xs (measured from the arc
// center), the delay in ms that puts the element on a circular wavefront of
// the given radius. The element closest to the focus gets 0. For a straight
// line every delay is 0.
func ArcDelays(xs []float64, radius float64, curved bool) []float64 {
	delays := make([]float64, len(xs))
	if !curved || len(xs) == 0 {
		return delays
	}
	dist := make([]float64, len(xs))
	minDist := math.Inf(1)
	for i, x := range xs {
		dist[i] = math.Sqrt(x*x + radius*radius)
		if dist[i] < minDist {
			minDist = dist[i]
		}
	}
	for i := range xs {
		delays[i] = math.Max(0, DistanceToDelayMs(dist[i]-minDist))
	}
	return delays
}

// Rotate rotates (x, y) about the pivot (px, py) by theta radians.
func Rotate(x, y, px, py, theta float64) (float64, float64) {
	dx := x - px
	dy := y - py
	c := math.Cos(theta)
	s := math.Sin(theta)
	return px + c*dx - s*dy, py + s*dx + c*dy
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// DBToGain converts a level in dB to a linear amplitude factor.
func DBToGain(db float64) float64 {
	const ln10Over20 = 0.11512925464970229
	return float64(approx.FastExp(float32(db * ln10Over20)))
}

// GainToDB converts a linear amplitude to dB, flooring at -240 dB.
func GainToDB(g float64) float64 {
	if g < 1e-12 {
		g = 1e-12
	}
	return 20.0 * math.Log10(g)
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// RotateAboutStageMost rigidly rotates the point set (xs[i], ys[i]) in place
// by theta radians about its stage-most point, the first one with minimal y.
func RotateAboutStageMost(xs, ys []float64, theta float64) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return
	}
	p := 0
	for i := 1; i < len(ys); i++ {
		if ys[i] < ys[p] {
			p = i
		}
	}
	px, py := xs[p], ys[p]
	for i := range xs {
		xs[i], ys[i] = Rotate(xs[i], ys[i], px, py, theta)
	}
}
