package preset

import (
	"flag"

	"github.com/cwbudde/algo-subarray/array"
)

// Flags exposes the configuration keys as command line overrides. Only flags
// that were set on the command line are applied.
type Flags struct {
	fs *flag.FlagSet

	Path string

	subs, lines, modules                 int
	cut, primary, secondary, unit, name  string
	crossover, target, arc, pan          float64
	depth, gradient, width, centerOffset float64
	center                               bool
}

// RegisterFlags adds the preset path and override flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	d := array.NewDefaultConfig()
	f := &Flags{fs: fs}
	fs.StringVar(&f.Path, "preset", "", "Configuration JSON path (defaults when empty)")
	fs.StringVar(&f.name, "name", d.Name, "Configuration name")
	fs.IntVar(&f.subs, "subs", d.SubwooferCount, "Number of subwoofers")
	fs.StringVar(&f.cut, "cut", string(d.CabinetCut), `Cabinet cut: 12", 15", 18", 21", 24"`)
	fs.Float64Var(&f.crossover, "crossover", d.CrossoverFrequencyHz, "Crossover frequency (Hz)")
	fs.Float64Var(&f.target, "target", d.TargetCancellationFrequencyHz, "Target cancellation frequency (Hz)")
	fs.StringVar(&f.primary, "primary", string(d.PrimarySetup), "Primary setup: endfire|gradient|arc|stack_cardioid|l_r")
	fs.StringVar(&f.secondary, "secondary", string(d.SecondarySetup), "Secondary setup: none|endfire|gradient|arc|stack_cardioid")
	fs.IntVar(&f.lines, "lines", d.LineCount, "Endfire line count")
	fs.Float64Var(&f.arc, "arc", d.ArcDegrees, "Arc angle (degrees)")
	fs.Float64Var(&f.pan, "pan", d.PanDegrees, "L-R pan angle (degrees)")
	fs.IntVar(&f.modules, "modules", d.ModulesPerStack, "Modules per cardioid stack")
	fs.Float64Var(&f.depth, "cardioid-depth", d.CardioidCabinetDepthCm, "Cardioid cabinet depth (cm)")
	fs.Float64Var(&f.gradient, "gradient-distance", d.GradientPhysicalDistanceCm, "Gradient front/rear distance (cm, 0 = lambda/4)")
	fs.Float64Var(&f.width, "max-width", d.MaxWidthMeters, "Maximum array width (m)")
	fs.StringVar(&f.unit, "unit", string(d.DelayUnit), "Delay unit: ms|m")
	fs.BoolVar(&f.center, "acoustic-center", d.AcousticCenterEnabled, "Account for the acoustic center offset")
	fs.Float64Var(&f.centerOffset, "acoustic-offset", d.AcousticCenterOffsetCm, "Acoustic center offset (cm)")
	return f
}

// File returns the overrides that were set explicitly.
func (f *Flags) File() *File {
	out := &File{}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			out.Name = &f.name
		case "subs":
			out.SubwooferCount = &f.subs
		case "cut":
			out.CabinetCut = &f.cut
		case "crossover":
			out.CrossoverFrequencyHz = &f.crossover
		case "target":
			out.TargetCancellationFrequencyHz = &f.target
		case "primary":
			out.PrimarySetup = &f.primary
		case "secondary":
			out.SecondarySetup = &f.secondary
		case "lines":
			out.LineCount = &f.lines
		case "arc":
			out.ArcDegrees = &f.arc
		case "pan":
			out.PanDegrees = &f.pan
		case "modules":
			out.ModulesPerStack = &f.modules
		case "cardioid-depth":
			out.CardioidCabinetDepthCm = &f.depth
		case "gradient-distance":
			out.GradientPhysicalDistanceCm = &f.gradient
		case "max-width":
			out.MaxWidthMeters = &f.width
		case "unit":
			out.DelayUnit = &f.unit
		case "acoustic-center":
			out.AcousticCenterEnabled = &f.center
		case "acoustic-offset":
			out.AcousticCenterOffsetCm = &f.centerOffset
		}
	})
	return out
}

// Load returns the configuration from -preset (or defaults) with the
// explicit overrides applied.
func (f *Flags) Load() (*array.Config, error) {
	cfg := array.NewDefaultConfig()
	if f.Path != "" {
		var err error
		if cfg, err = LoadJSON(f.Path); err != nil {
			return nil, err
		}
	}
	return f.Apply(cfg)
}

// Apply applies the explicit overrides onto a copy of base.
func (f *Flags) Apply(base *array.Config) (*array.Config, error) {
	cfg := base.Clone()
	if err := ApplyFile(cfg, f.File()); err != nil {
		return nil, err
	}
	return cfg, nil
}
