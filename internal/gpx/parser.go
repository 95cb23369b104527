// Package gpx extracts ordered track points from uploaded GPX documents.
package gpx

import (
	"errors"
	"fmt"
	"math"

	gpxgo "github.com/tkrajina/gpxgo/gpx"

	"trail_tracker/internal/geo"
)

// ErrMalformedDocument means the upload is not a parseable GPX file. An
// empty but well-formed document is not malformed; it parses to zero
// points so callers can tell a corrupt file from an empty track.
var ErrMalformedDocument = errors.New("malformed track document")

// Parse flattens every track segment in the document into one ordered
// point sequence. Elevation defaults to 0 when the source omits it.
// Coordinates are validated here so NaN or out-of-range values never
// reach distance math.
func Parse(data []byte) ([]geo.Point, error) {
	doc, err := gpxgo.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	var points []geo.Point
	for _, track := range doc.Tracks {
		for _, segment := range track.Segments {
			for _, p := range segment.Points {
				if err := validateCoords(p.Latitude, p.Longitude); err != nil {
					return nil, fmt.Errorf("%w: trackpoint %d: %v", ErrMalformedDocument, len(points), err)
				}
				ele := 0.0
				if p.Elevation.NotNull() {
					ele = p.Elevation.Value()
				}
				points = append(points, geo.Point{Lat: p.Latitude, Lon: p.Longitude, Ele: ele})
			}
		}
	}
	return points, nil
}

func validateCoords(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range", lat)
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v out of range", lon)
	}
	return nil
}
