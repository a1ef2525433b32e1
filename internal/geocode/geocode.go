// Package geocode derives deterministic synthetic coordinates for records
// that lack real ones, anchored in coarse regional bounding boxes. Points
// are map-plausible, never real locations.
package geocode

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/golang/geo/s2"
)

// Box is an inclusive latitude/longitude bounding rectangle.
type Box struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// regionBoxes anchors synthetic points per continent. Any other region key
// uses worldBox.
var regionBoxes = map[string]Box{
	"Europe":        {35, 70, -10, 40},
	"Asia":          {5, 55, 60, 140},
	"North America": {25, 70, -130, -60},
	"South America": {-55, 15, -80, -35},
	"Africa":        {-35, 35, -20, 50},
	"Oceania":       {-50, 5, 110, 150},
}

var worldBox = Box{LatMin: -55, LatMax: 70, LonMin: -130, LonMax: 150}

// BoxFor returns the bounding box for a region, falling back to a global
// box when the region is not one of the six continents.
func BoxFor(region string) Box {
	if b, ok := regionBoxes[region]; ok {
		return b
	}
	return worldBox
}

// Contains reports whether the point lies inside the box, bounds included.
func (b Box) Contains(lat, lon float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax
}

// PointFor maps a record seed to a fixed point inside the region's box.
// The first eight digest bytes drive latitude and the next eight longitude,
// read big-endian and scaled into [0,1), so the same seed and region always
// yield the same pair.
func PointFor(seed, region string) (lat, lon float64) {
	digest := sha256.Sum256([]byte(seed))
	fracLat := float64(binary.BigEndian.Uint64(digest[0:8])) / (1 << 64)
	fracLon := float64(binary.BigEndian.Uint64(digest[8:16])) / (1 << 64)
	b := BoxFor(region)
	lat = b.LatMin + (b.LatMax-b.LatMin)*fracLat
	lon = b.LonMin + (b.LonMax-b.LonMin)*fracLon
	return lat, lon
}

// CellToken returns the level-10 S2 cell token covering the point, a stable
// key for clustering nearby cities on a map.
func CellToken(lat, lon float64) string {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon)).Parent(10).ToToken()
}
