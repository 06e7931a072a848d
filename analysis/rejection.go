package analysis

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-subarray/acoustics"
)

// Band is a named frequency range.
type Band struct {
	Name string  `json:"name"`
	LoHz float64 `json:"lo_hz"`
	HiHz float64 `json:"hi_hz"`
}

// DefaultBands covers the subwoofer range.
var DefaultBands = []Band{
	{"infra (20-40Hz)", 20, 40},
	{"low (40-63Hz)", 40, 63},
	{"mid (63-100Hz)", 63, 100},
	{"upper (100-160Hz)", 100, 160},
}

// BandMetrics is the front/rear comparison over one band.
type BandMetrics struct {
	Band
	FrontDB     float64 `json:"front_db"`
	RearDB      float64 `json:"rear_db"`
	RejectionDB float64 `json:"rejection_db"`
}

// Metrics compares the response in front of an array with the response
// behind it.
type Metrics struct {
	SampleRate int     `json:"sample_rate"`
	LoHz       float64 `json:"lo_hz"`
	HiHz       float64 `json:"hi_hz"`

	FrontDB float64 `json:"front_db"`
	RearDB  float64 `json:"rear_db"`

	// RejectionDB is the mean per-bin front minus rear level over the band.
	RejectionDB    float64 `json:"rejection_db"`
	MinRejectionDB float64 `json:"min_rejection_db"`
	MaxRejectionDB float64 `json:"max_rejection_db"`
	// RearRatio is the rear/front pressure ratio for RejectionDB.
	RearRatio float64 `json:"rear_ratio"`

	Bands []BandMetrics `json:"bands"`
}

// CompareFrontRear measures how much quieter rear is than front over
// [loHz, hiHz] and over each of bands.
func CompareFrontRear(front, rear []float64, sampleRate int, loHz, hiHz float64, bands []Band) (*Metrics, error) {
	if !(loHz >= 0) || !(hiHz > loHz) {
		return nil, fmt.Errorf("band must satisfy 0 <= lo < hi, got [%g,%g]", loHz, hiHz)
	}
	n := len(front)
	if len(rear) > n {
		n = len(rear)
	}
	fs, err := ComputeSpectrum(pad(front, n), sampleRate)
	if err != nil {
		return nil, fmt.Errorf("front: %w", err)
	}
	rs, err := ComputeSpectrum(pad(rear, n), sampleRate)
	if err != nil {
		return nil, fmt.Errorf("rear: %w", err)
	}
	if hiHz > float64(sampleRate)/2 {
		hiHz = float64(sampleRate) / 2
	}

	m := &Metrics{
		SampleRate:     sampleRate,
		LoHz:           loHz,
		HiHz:           hiHz,
		FrontDB:        fs.BandMean(loHz, hiHz),
		RearDB:         rs.BandMean(loHz, hiHz),
		MinRejectionDB: math.Inf(1),
		MaxRejectionDB: math.Inf(-1),
	}
	lo, hi := fs.binRange(loHz, hiHz)
	var sum float64
	for k := lo; k <= hi; k++ {
		d := fs.MagnitudeDB[k] - rs.MagnitudeDB[k]
		sum += d
		m.MinRejectionDB = math.Min(m.MinRejectionDB, d)
		m.MaxRejectionDB = math.Max(m.MaxRejectionDB, d)
	}
	m.RejectionDB = sum / float64(hi-lo+1)
	m.RearRatio = acoustics.DBToGain(-m.RejectionDB)

	for _, b := range bands {
		if b.LoHz >= float64(sampleRate)/2 || b.HiHz <= b.LoHz {
			continue
		}
		bm := BandMetrics{
			Band:    b,
			FrontDB: fs.BandMean(b.LoHz, b.HiHz),
			RearDB:  rs.BandMean(b.LoHz, b.HiHz),
		}
		blo, bhi := fs.binRange(b.LoHz, b.HiHz)
		var bs float64
		for k := blo; k <= bhi; k++ {
			bs += fs.MagnitudeDB[k] - rs.MagnitudeDB[k]
		}
		bm.RejectionDB = bs / float64(bhi-blo+1)
		m.Bands = append(m.Bands, bm)
	}

	if !isFinite(m.RejectionDB) {
		return nil, fmt.Errorf("non-finite rejection")
	}
	return m, nil
}

func pad(x []float64, n int) []float64 {
	if len(x) >= n {
		return x
	}
	out := make([]float64, n)
	copy(out, x)
	return out
}
