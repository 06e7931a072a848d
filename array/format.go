package array

import (
	"fmt"

	"github.com/cwbudde/algo-subarray/acoustics"
)

// FormatDelay prints a delay for display with two decimals, in milliseconds
// or, for UnitMeters, as the equivalent path length. Any unit other than
// UnitMilliseconds is treated as meters.
func FormatDelay(ms float64, unit DelayUnit) string {
	if unit == UnitMilliseconds || unit == "" {
		return fmt.Sprintf("%.2f ms", ms)
	}
	return fmt.Sprintf("%.2f m", acoustics.DelayMsToDistance(ms))
}

func yesNo(b bool) string {
	if b {
		return "Sì"
	}
	return "No"
}

// buildDelayTable flattens r into printable rows: one per module for
// cardioid stacks, one per element otherwise.
func buildDelayTable(r *Result, unit DelayUnit) []DelayRow {
	rows := []DelayRow{}
	if r.Primary == SetupStackCardioid {
		for _, el := range r.Elements {
			for _, m := range el.Modules {
				rows = append(rows, DelayRow{
					Label:              fmt.Sprintf("Stack %d - Modulo %d", el.Column+1, m.Index),
					Delay:              FormatDelay(m.Delay, unit),
					BaseDelay:          dashIfZero(m.BaseDelay(), unit),
					ArcDelay:           dashIfZero(m.ArcDelay, unit),
					Polarity:           m.Polarity.Label(),
					PhysicallyInverted: yesNo(m.PhysicallyInverted),
				})
			}
		}
		return rows
	}

	splitArc := r.Secondary == SetupArc
	flagInverted := r.Primary == SetupLeftRight && r.Secondary == SetupStackCardioid
	for _, el := range r.Elements {
		row := DelayRow{
			Label:    el.Label,
			Delay:    FormatDelay(el.Delay, unit),
			Polarity: el.Polarity.Label(),
		}
		if row.Label == "" {
			row.Label = fmt.Sprintf("Sub %d", el.ID)
		}
		if splitArc && el.ArcDelay != 0 {
			row.BaseDelay = FormatDelay(el.BaseDelay(), unit)
			row.ArcDelay = FormatDelay(el.ArcDelay, unit)
		}
		if flagInverted {
			row.PhysicallyInverted = yesNo(el.PhysicallyInverted)
		}
		rows = append(rows, row)
	}
	return rows
}

func dashIfZero(ms float64, unit DelayUnit) string {
	if ms == 0 {
		return "-"
	}
	return FormatDelay(ms, unit)
}
