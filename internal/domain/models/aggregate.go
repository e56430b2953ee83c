package models

import "math"

// KeyMetrics reduces the production and defect collections into the dashboard
// aggregates. Means are rounded to one decimal; an empty production collection
// yields zero means.
func (d *Dataset) KeyMetrics() KeyMetrics {
	var m KeyMetrics
	if d == nil {
		return m
	}

	var efficiency, energy float64
	for _, p := range d.Production {
		m.TotalProduction += p.Units
		efficiency += p.Efficiency
		energy += p.Energy
	}
	for _, defect := range d.Defects {
		m.TotalDefects += defect.Count
	}

	if n := len(d.Production); n > 0 {
		m.AverageEfficiency = roundOneDecimal(efficiency / float64(n))
		m.AverageEnergy = roundOneDecimal(energy / float64(n))
	}
	return m
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
