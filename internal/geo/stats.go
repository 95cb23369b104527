package geo

import (
	"math"

	"github.com/tkrajina/gpxgo/gpx"
)

// Stats holds the derived figures for one track. They are recomputed on
// demand from the point sequence and never persisted.
type Stats struct {
	// DistanceKm is the summed great-circle segment length, rounded to
	// 2 decimals for display. DistanceM keeps the unrounded meter total
	// the gradient is derived from.
	DistanceKm         float64 `json:"distance_km"`
	DistanceM          float64 `json:"distance_m"`
	ElevationGainM     float64 `json:"elevation_gain_m"`
	ElevationLossM     float64 `json:"elevation_loss_m"`
	AvgGradientPercent float64 `json:"avg_gradient_percent"`
}

// Analyze computes distance, elevation gain/loss and average gradient for
// an ordered point sequence. Empty and single-point sequences yield
// all-zero stats; this function never fails.
func Analyze(points []Point) Stats {
	var s Stats
	if len(points) < 2 {
		return s
	}

	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		s.DistanceM += gpx.HaversineDistance(prev.Lat, prev.Lon, cur.Lat, cur.Lon)

		delta := cur.Ele - prev.Ele
		if delta > 0 {
			s.ElevationGainM += delta
		} else {
			s.ElevationLossM += -delta
		}
	}

	s.DistanceKm = round2(s.DistanceM / 1000)
	if s.DistanceM > 0 {
		s.AvgGradientPercent = round2(s.ElevationGainM / s.DistanceM * 100)
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
