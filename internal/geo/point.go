package geo

// Point is a single track sample. Latitude/longitude are in decimal
// degrees (WGS84), elevation in meters. Named fields are used everywhere
// instead of positional tuples because the persisted geometry text orders
// axes lon-lat-ele while analysis works lat-first.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Ele float64 `json:"ele"`
}
