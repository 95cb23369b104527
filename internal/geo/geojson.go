package geo

import (
	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
)

// LineString builds a 3-D go-geom line from the point sequence, lon-first
// as go-geom expects.
func LineString(points []Point) (*geom.LineString, error) {
	if len(points) < 2 {
		return nil, ErrInsufficientGeometry
	}
	coords := make([]geom.Coord, len(points))
	for i, p := range points {
		coords[i] = geom.Coord{p.Lon, p.Lat, p.Ele}
	}
	return geom.NewLineString(geom.XYZ).SetCoords(coords)
}

// GeoJSON renders the point sequence as a GeoJSON LineString string for
// API responses; map clients consume this directly.
func GeoJSON(points []Point) (string, error) {
	ls, err := LineString(points)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(ls)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
