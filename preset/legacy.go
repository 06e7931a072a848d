package preset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// legacyFile is the configuration object of the original web application.
// Its form stored numbers as strings and left blanks as "".
type legacyFile struct {
	Name          *string     `json:"nome_configurazione"`
	Notes         *string     `json:"note"`
	Subwoofers    looseNumber `json:"numero_subwoofer"`
	Cut           *string     `json:"taglio"`
	Crossover     looseNumber `json:"frequenza_crossover"`
	Target        looseNumber `json:"frequenza_target_cancellazione"`
	Gradient      looseNumber `json:"distanza_fisica_gradient"`
	Primary       *string     `json:"setup_primario"`
	Secondary     *string     `json:"setup_secondario"`
	Lines         looseNumber `json:"numero_linee"`
	Arc           looseNumber `json:"gradi_arc"`
	Pan           looseNumber `json:"gradi_pan"`
	Modules       looseNumber `json:"numero_stack_cardioid"`
	CardioidDepth looseNumber `json:"profondita_sub_cardioid"`
	Width         looseNumber `json:"larghezza_massima"`
	CenterOn      *bool       `json:"considera_centro_acustico"`
	CenterOffset  looseNumber `json:"offset_centro_acustico"`
	Unit          *string     `json:"unita_ritardo"`
}

func isLegacy(probe map[string]json.RawMessage) bool {
	for _, k := range []string{"numero_subwoofer", "setup_primario", "taglio"} {
		if _, ok := probe[k]; ok {
			return true
		}
	}
	return false
}

func (l *legacyFile) toFile() File {
	f := File{
		Name:                          l.Name,
		Notes:                         l.Notes,
		SubwooferCount:                l.Subwoofers.intPtr(),
		CabinetCut:                    l.Cut,
		CrossoverFrequencyHz:          l.Crossover.ptr(),
		TargetCancellationFrequencyHz: l.Target.ptr(),
		LineCount:                     l.Lines.intPtr(),
		ArcDegrees:                    l.Arc.ptr(),
		PanDegrees:                    l.Pan.ptr(),
		ModulesPerStack:               l.Modules.intPtr(),
		CardioidCabinetDepthCm:        l.CardioidDepth.ptr(),
		GradientPhysicalDistanceCm:    l.Gradient.ptr(),
		MaxWidthMeters:                l.Width.ptr(),
		DelayUnit:                     l.Unit,
		AcousticCenterEnabled:         l.CenterOn,
		AcousticCenterOffsetCm:        l.CenterOffset.ptr(),
	}
	if l.Primary != nil && *l.Primary != "" {
		f.PrimarySetup = l.Primary
	}
	if l.Secondary != nil && *l.Secondary != "" {
		f.SecondarySetup = l.Secondary
	}
	return f
}

// looseNumber accepts a JSON number, a numeric string, or "" / null for
// "not set".
type looseNumber struct {
	set bool
	v   float64
}

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", string(b))
	}
	n.set, n.v = true, v
	return nil
}

func (n looseNumber) ptr() *float64 {
	if !n.set {
		return nil
	}
	v := n.v
	return &v
}

func (n looseNumber) intPtr() *int {
	if !n.set {
		return nil
	}
	v := int(n.v)
	return &v
}
