package array

// Topology identifies the generator that shaped a result.
type Topology int

const (
	TopologyLine Topology = iota
	TopologyEndfire
	TopologyGradient
	TopologyArc
	TopologyStackCardioid
	TopologyLeftRight
)

func (t Topology) String() string {
	switch t {
	case TopologyEndfire:
		return "endfire"
	case TopologyGradient:
		return "gradient"
	case TopologyArc:
		return "arc"
	case TopologyStackCardioid:
		return "stack_cardioid"
	case TopologyLeftRight:
		return "l_r"
	default:
		return "line"
	}
}

// Layout is the topology-specific part of a result. The concrete types are
// EndfireLayout, GradientLayout, ArcLayout, CardioidLayout, LeftRightLayout
// and LineLayout; consumers switch on the dynamic type.
type Layout interface {
	Topology() Topology
}

// ArcLayout describes an electronic arc. Straight is true when the arc
// angle is 0 and Radius carries no meaning.
type ArcLayout struct {
	Count      int     `json:"count"`
	AngleDeg   float64 `json:"angle_deg"`
	Spacing    float64 `json:"spacing_m"`
	Width      float64 `json:"width_m"`
	Radius     float64 `json:"radius_m"`
	Straight   bool    `json:"straight"`
	MaxDelayMs float64 `json:"max_delay_ms"`
}

func (ArcLayout) Topology() Topology { return TopologyArc }

// EndfireLayout describes endfire rows. Arc is set for Endfire+Arc.
type EndfireLayout struct {
	Lines           int        `json:"lines"`
	PerLine         int        `json:"per_line"`
	DepthSpacing    float64    `json:"depth_spacing_m"`
	GridToGridDepth float64    `json:"grid_to_grid_depth_m"`
	LateralSpacing  float64    `json:"lateral_spacing_m"`
	DepthDelayMs    float64    `json:"depth_delay_ms"`
	Arc             *ArcLayout `json:"arc,omitempty"`
}

func (EndfireLayout) Topology() Topology { return TopologyEndfire }

// GradientLayout describes front/rear gradient pairs.
type GradientLayout struct {
	Pairs            int        `json:"pairs"`
	PhysicalDistance float64    `json:"physical_distance_m"`
	DepthSpacing     float64    `json:"depth_spacing_m"`
	LateralSpacing   float64    `json:"lateral_spacing_m"`
	RearDelayMs      float64    `json:"rear_delay_ms"`
	Arc              *ArcLayout `json:"arc,omitempty"`
}

func (GradientLayout) Topology() Topology { return TopologyGradient }

// CardioidLayout describes cardioid stacks.
type CardioidLayout struct {
	Stacks            int        `json:"stacks"`
	ModulesPerStack   int        `json:"modules_per_stack"`
	HorizontalSpacing float64    `json:"horizontal_spacing_m"`
	CabinetDepth      float64    `json:"cabinet_depth_m"`
	EffectiveDepth    float64    `json:"effective_depth_m"`
	DelayMs           float64    `json:"delay_ms"`
	RearRejectionDB   float64    `json:"rear_rejection_db"`
	Arc               *ArcLayout `json:"arc,omitempty"`
}

func (CardioidLayout) Topology() Topology { return TopologyStackCardioid }

// LeftRightLayout describes two lateral groups, optionally each shaped by a
// secondary topology.
type LeftRightLayout struct {
	PerSide    int     `json:"per_side"`
	Distance   float64 `json:"distance_m"`
	PanDegrees float64 `json:"pan_deg"`
	Secondary  Setup   `json:"secondary"`
	StepM      float64 `json:"step_m"`
	DelayMs    float64 `json:"delay_ms"`
}

func (LeftRightLayout) Topology() Topology { return TopologyLeftRight }

// LineLayout is the fallback straight line for unimplemented combinations.
type LineLayout struct {
	Count   int     `json:"count"`
	Spacing float64 `json:"spacing_m"`
}

func (LineLayout) Topology() Topology { return TopologyLine }
