package array

import (
	"encoding/json"

	"github.com/cwbudde/algo-subarray/acoustics"
)

// Polarity is the electrical polarity of an element: +1 or -1.
type Polarity int

const (
	PolarityNormal   Polarity = 1
	PolarityInverted Polarity = -1
)

// Sign returns the polarity as a multiplier.
func (p Polarity) Sign() float64 {
	if p == PolarityInverted {
		return -1
	}
	return 1
}

// Label returns the delay table text for p.
func (p Polarity) Label() string {
	if p == PolarityInverted {
		return "Invertita"
	}
	return "Normale"
}

// Side tags the lateral group of an L-R element.
type Side string

const (
	SideNone  Side = ""
	SideLeft  Side = "L"
	SideRight Side = "R"
)

// Module is one cabinet of a cardioid stack. Index is 1-based; module 1 is
// the reversed one.
type Module struct {
	Index              int      `json:"index"`
	Delay              float64  `json:"delay_ms"`
	ArcDelay           float64  `json:"arc_delay_ms"`
	Polarity           Polarity `json:"polarity"`
	PhysicallyInverted bool     `json:"physically_inverted"`
}

// BaseDelay returns the delay without the arc contribution.
func (m Module) BaseDelay() float64 {
	return m.Delay - m.ArcDelay
}

// Element is one emission point in plan view. x is lateral, y is depth
// (negative toward the stage). Delay is the total electronic delay in ms and
// ArcDelay the part of it due to an arc. Column is the index the arc
// contribution is keyed on (position in row, pair or stack index). For
// cardioid stacks Modules is non-nil, the element is the stack and its own
// Delay carries only the arc contribution.
type Element struct {
	ID                 int      `json:"id"`
	Label              string   `json:"label"`
	X                  float64  `json:"x"`
	Y                  float64  `json:"y"`
	Delay              float64  `json:"delay_ms"`
	ArcDelay           float64  `json:"arc_delay_ms"`
	Polarity           Polarity `json:"polarity"`
	PhysicallyInverted bool     `json:"physically_inverted"`
	Side               Side     `json:"side,omitempty"`
	Line               int      `json:"line,omitempty"`
	Column             int      `json:"column"`
	Modules            []Module `json:"modules,omitempty"`
}

// BaseDelay returns the delay without the arc contribution.
func (e Element) BaseDelay() float64 {
	return e.Delay - e.ArcDelay
}

// IsStack reports whether e groups cardioid modules.
func (e Element) IsStack() bool {
	return e.Modules != nil
}

// Dimensions is the overall footprint of an array in meters.
type Dimensions struct {
	Width float64 `json:"width"`
	Depth float64 `json:"depth"`
}

// DelayRow is one line of the printable delay table.
type DelayRow struct {
	Label              string `json:"sub"`
	Delay              string `json:"delay"`
	BaseDelay          string `json:"delay_base,omitempty"`
	ArcDelay           string `json:"delay_arc,omitempty"`
	Polarity           string `json:"polarity"`
	PhysicallyInverted string `json:"physically_inverted,omitempty"`
}

// Result is the output of Solve.
type Result struct {
	Title      string     `json:"title"`
	Primary    Setup      `json:"primary_setup"`
	Secondary  Setup      `json:"secondary_setup"`
	Layout     Layout     `json:"-"`
	Elements   []Element  `json:"positions"`
	Dimensions Dimensions `json:"dimensions"`
	Summary    []string   `json:"summary"`
	Notes      []string   `json:"notes"`
	DelayTable []DelayRow `json:"delay_table"`
}

// MarshalJSON adds the layout under a "layout" key tagged with its topology.
func (r *Result) MarshalJSON() ([]byte, error) {
	type plain Result
	var layout *taggedLayout
	if r.Layout != nil {
		layout = &taggedLayout{Topology: r.Layout.Topology().String(), Data: r.Layout}
	}
	return json.Marshal(struct {
		*plain
		Layout *taggedLayout `json:"layout,omitempty"`
	}{plain: (*plain)(r), Layout: layout})
}

type taggedLayout struct {
	Topology string `json:"topology"`
	Data     Layout `json:"data"`
}

// Panned returns a copy of the elements with each L-R side rigidly rotated
// about its stage-nearest element: left by +deg, right by -deg. Other
// topologies, and deg == 0, return an unrotated copy.
func (r *Result) Panned(deg float64) []Element {
	out := make([]Element, len(r.Elements))
	copy(out, r.Elements)
	if r.Primary != SetupLeftRight || deg == 0 {
		return out
	}
	panSide(out, SideLeft, acoustics.DegToRad(deg))
	panSide(out, SideRight, acoustics.DegToRad(-deg))
	return out
}

func panSide(elems []Element, side Side, theta float64) {
	idx := make([]int, 0, len(elems))
	for i := range elems {
		if elems[i].Side == side {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return
	}
	xs := make([]float64, len(idx))
	ys := make([]float64, len(idx))
	for k, i := range idx {
		xs[k] = elems[i].X
		ys[k] = elems[i].Y
	}
	acoustics.RotateAboutStageMost(xs, ys, theta)
	for k, i := range idx {
		elems[i].X = xs[k]
		elems[i].Y = ys[k]
	}
}
