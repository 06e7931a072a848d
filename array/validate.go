package array

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-subarray/acoustics"
)

// allowedSecondary lists, per primary setup, the secondary setups a form may
// offer.
var allowedSecondary = map[Setup][]Setup{
	SetupEndfire:       {SetupNone, SetupArc},
	SetupGradient:      {SetupNone, SetupArc},
	SetupStackCardioid: {SetupNone, SetupArc},
	SetupArc:           {SetupNone},
	SetupLeftRight:     {SetupNone, SetupEndfire, SetupGradient, SetupStackCardioid},
}

// AllowedSecondary returns the secondary setups legal for primary.
func AllowedSecondary(primary Setup) []Setup {
	return append([]Setup(nil), allowedSecondary[primary]...)
}

// Validate checks cfg the way the configuration form does before a solve and
// returns human-readable problems, or nil when cfg can be solved as given.
// Validate never fails; Solve still accepts configurations that do not pass.
func Validate(cfg *Config) []string {
	if cfg == nil {
		return []string{"Configurazione mancante"}
	}
	var v validator
	if cfg.PrimarySetup == SetupUnset {
		v.add("Seleziona un setup principale prima di calcolare")
		return v.msgs
	}
	n := cfg.SubwooferCount
	if n < 1 {
		v.add("Inserisci un numero valido di subwoofer (minimo 1)")
		return v.msgs
	}
	if !cfg.CabinetCut.Known() {
		v.add("Taglio %q non riconosciuto: uso le dimensioni del 18\"", string(cfg.CabinetCut))
	}

	sec := cfg.Secondary()
	if !legalSecondary(cfg.PrimarySetup, sec) {
		v.add("Setup secondario %q non disponibile con %q", string(sec), string(cfg.PrimarySetup))
	}

	switch cfg.PrimarySetup {
	case SetupEndfire:
		v.endfire(cfg, n)
	case SetupGradient:
		v.gradient(cfg, n, "Gradient")
	case SetupLeftRight:
		v.leftRight(cfg, n, sec)
	case SetupStackCardioid:
		v.cardioid(cfg, n)
	}

	if cfg.HasArc() {
		if _, ok := cfg.EffectiveArcDegrees(); !ok {
			v.add("Arc: angolo deve essere tra 0° e 270°")
		}
	}
	if cfg.PrimarySetup == SetupLeftRight && (cfg.PanDegrees < -90 || cfg.PanDegrees > 90) {
		v.add("Pan: angolo deve essere tra -90° e 90°")
	}
	if cfg.AcousticCenterEnabled && (cfg.AcousticCenterOffsetCm < 0 || cfg.AcousticCenterOffsetCm > 100) {
		v.add("Centro acustico: offset deve essere tra 0 e 100 cm")
	}
	if !(cfg.MaxWidthMeters > 0) {
		v.add("Larghezza massima deve essere maggiore di 0 metri")
	}
	if !(cfg.CrossoverFrequencyHz > 0) {
		v.add("Frequenza di crossover deve essere maggiore di 0 Hz")
	}
	if cfg.DelayUnit != "" && cfg.DelayUnit != UnitMilliseconds && cfg.DelayUnit != UnitMeters {
		v.add("Unità di ritardo %q non valida (ms o m)", string(cfg.DelayUnit))
	}
	return v.msgs
}

func legalSecondary(primary, sec Setup) bool {
	allowed, ok := allowedSecondary[primary]
	if !ok {
		return sec == SetupNone
	}
	for _, s := range allowed {
		if s == sec {
			return true
		}
	}
	return false
}

type validator struct {
	msgs []string
}

func (v *validator) add(format string, args ...any) {
	v.msgs = append(v.msgs, fmt.Sprintf(format, args...))
}

func (v *validator) endfire(cfg *Config, n int) {
	lines := cfg.LineCount
	if lines < 2 {
		v.add("Endfire: numero di linee deve essere almeno 2")
		return
	}
	if n%lines == 0 {
		return
	}
	v.add("Endfire: %d subwoofer non sono divisibili per %d linee", n, lines)
	v.add("Opzioni valide con %d sub:", n)
	shown := 0
	for l := 2; l <= n && shown < 5; l++ {
		if n%l == 0 {
			v.add("%d linee (%d sub per linea)", l, n/l)
			shown++
		}
	}
}

func (v *validator) gradientDistance(cfg *Config, prefix string) {
	d := cfg.GradientPhysicalDistanceCm
	if !(d > 0) {
		v.add("%s: specifica la distanza fisica Front-Rear in centimetri", prefix)
		return
	}
	if cfg.CrossoverFrequencyHz <= 0 {
		return
	}
	maxCm := math.Round(acoustics.Wavelength(cfg.CrossoverFrequencyHz) / 2 * 100)
	if d > maxCm {
		v.add("%s: distanza fisica troppo grande", prefix)
		v.add("Massimo consentito: %s cm (λ/2 @ %s Hz)", formatNumber(maxCm), formatNumber(cfg.CrossoverFrequencyHz))
		v.add("Hai inserito: %s cm", formatNumber(d))
	}
}

func (v *validator) gradient(cfg *Config, n int, prefix string) {
	if n%2 != 0 {
		v.add("%s: richiede un numero PARI di subwoofer", prefix)
		v.add("Hai %d sub. Usa %d o %d sub.", n, n-1, n+1)
	}
	v.gradientDistance(cfg, prefix)
}

func (v *validator) leftRight(cfg *Config, n int, sec Setup) {
	if n%2 != 0 {
		v.add("L - R: richiede un numero PARI di subwoofer")
		v.add("Hai %d sub. Usa %d o %d sub.", n, n-1, n+1)
	}
	switch sec {
	case SetupEndfire:
		if n < 4 {
			v.add("L - R + Endfire: servono almeno 4 sub totali (min 2 per lato)")
		}
		f := cfg.TargetCancellationFrequencyHz
		if !(f >= 20 && f <= 200) {
			v.add("Endfire secondario: specifica la Frequenza Target tra 20 e 200 Hz")
		}
	case SetupGradient:
		if n != 4 {
			v.add("L - R + Gradient: supportiamo SOLO 4 sub totali (1 coppia per lato)")
		}
		v.gradientDistance(cfg, "Gradient secondario")
	case SetupStackCardioid:
		switch {
		case n < 4:
			v.add("L - R + Stack Cardioid: servono almeno 4 sub totali (2 per lato)")
		case n > 6:
			v.add("L - R + Stack Cardioid: massimo 6 sub totali (max 3 per lato)")
		}
		if !(cfg.CardioidCabinetDepthCm > 0) {
			v.add("Stack Cardioid secondario: specifica la profondità fisica del sub in centimetri")
		}
	}
}

func (v *validator) cardioid(cfg *Config, n int) {
	m := cfg.ModulesPerStack
	if m < 2 {
		v.add("Stack Cardioid: numero di moduli per stack deve essere almeno 2")
		return
	}
	if !(cfg.CardioidCabinetDepthCm > 0) {
		v.add("Stack Cardioid: specifica la profondità fisica del sub in centimetri")
	}
	if n < m {
		v.add("Stack Cardioid: servono almeno %d sub per fare %d moduli per stack", m, m)
		return
	}
	if n%m != 0 {
		v.add("Stack Cardioid: %d subwoofer non sono divisibili per %d moduli", n, m)
		v.add("Opzioni valide con %d sub:", n)
		for k := 2; k <= min(n, 6); k++ {
			if n%k == 0 {
				v.add("%d moduli (%d stack)", k, n/k)
			}
		}
	}
}
