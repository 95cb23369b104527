package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInsufficientGeometry means fewer than 2 points were supplied; a
	// line geometry cannot be built from them.
	ErrInsufficientGeometry = errors.New("geometry needs at least 2 points")
	// ErrMalformedGeometry means the geometry text could not be decoded.
	ErrMalformedGeometry = errors.New("malformed geometry text")
)

const lineStringZPrefix = "LINESTRINGZ("

// EncodeLineStringZ serializes an ordered point sequence as
// "LINESTRINGZ(lon lat ele, lon lat ele, ...)". Axis order in the text is
// lon-lat-ele, matching the stored column format; decimals always use an
// ASCII point regardless of locale.
func EncodeLineStringZ(points []Point) (string, error) {
	if len(points) < 2 {
		return "", ErrInsufficientGeometry
	}

	var b strings.Builder
	b.WriteString(lineStringZPrefix)
	for i, p := range points {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatCoord(p.Lon))
		b.WriteByte(' ')
		b.WriteString(formatCoord(p.Lat))
		b.WriteByte(' ')
		b.WriteString(formatCoord(p.Ele))
	}
	b.WriteByte(')')
	return b.String(), nil
}

// DecodeLineStringZ is the inverse of EncodeLineStringZ. It swaps the
// stored lon-lat-ele axis order back into named Point fields.
func DecodeLineStringZ(text string) ([]Point, error) {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, lineStringZPrefix) || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("%w: missing LINESTRINGZ envelope", ErrMalformedGeometry)
	}

	body := s[len(lineStringZPrefix) : len(s)-1]
	triples := strings.Split(body, ",")
	if len(triples) < 2 {
		return nil, ErrInsufficientGeometry
	}

	points := make([]Point, 0, len(triples))
	for i, triple := range triples {
		fields := strings.Fields(triple)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: point %d has %d coordinates, want 3", ErrMalformedGeometry, i, len(fields))
		}
		var coords [3]float64
		for j, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: point %d: %v", ErrMalformedGeometry, i, err)
			}
			coords[j] = v
		}
		points = append(points, Point{Lon: coords[0], Lat: coords[1], Ele: coords[2]})
	}
	return points, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
