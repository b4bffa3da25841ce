package memory

import (
	"math"

	"github.com/oksasatya/campus-resource-tracker/pkg/geo"
)

// cellDegrees is about 5.5km of latitude, close to the search radius.
const cellDegrees = 0.05

type cellKey struct {
	lat, lng int
}

func cellOf(p geo.Point) cellKey {
	return cellKey{
		lat: int(math.Floor(p.Lat / cellDegrees)),
		lng: int(math.Floor(p.Lng / cellDegrees)),
	}
}

// gridIndex buckets points into fixed lat/lng cells. It is not safe for
// concurrent use; ResourceStore guards it with the same lock as the documents.
type gridIndex struct {
	cells map[cellKey]map[string]geo.Point
	pos   map[string]geo.Point
}

func newGridIndex() *gridIndex {
	return &gridIndex{
		cells: map[cellKey]map[string]geo.Point{},
		pos:   map[string]geo.Point{},
	}
}

func (g *gridIndex) put(id string, p geo.Point) {
	g.remove(id)
	k := cellOf(p)
	bucket, ok := g.cells[k]
	if !ok {
		bucket = map[string]geo.Point{}
		g.cells[k] = bucket
	}
	bucket[id] = p
	g.pos[id] = p
}

func (g *gridIndex) remove(id string) {
	p, ok := g.pos[id]
	if !ok {
		return
	}
	k := cellOf(p)
	delete(g.cells[k], id)
	if len(g.cells[k]) == 0 {
		delete(g.cells, k)
	}
	delete(g.pos, id)
}

// within returns the ids of points no farther than radius meters from center.
func (g *gridIndex) within(center geo.Point, radius float64) []string {
	box := geo.BoundingBox(center, radius)
	var out []string
	visit := func(id string, p geo.Point) {
		if box.Contains(p) && geo.Within(center, p, radius) {
			out = append(out, id)
		}
	}

	ranges := [][2]float64{{box.MinLng, box.MaxLng}}
	if box.MinLng > box.MaxLng {
		ranges = [][2]float64{{box.MinLng, 180}, {-180, box.MaxLng}}
	}
	latLo := int(math.Floor(box.MinLat / cellDegrees))
	latHi := int(math.Floor(box.MaxLat / cellDegrees))

	cellCount := 0
	for _, r := range ranges {
		cellCount += (int(math.Floor(r[1]/cellDegrees)) - int(math.Floor(r[0]/cellDegrees)) + 1) * (latHi - latLo + 1)
	}
	// Scanning every point is cheaper than walking a mostly empty grid.
	if cellCount > len(g.cells) {
		for id, p := range g.pos {
			visit(id, p)
		}
		return out
	}

	for _, r := range ranges {
		lngLo := int(math.Floor(r[0] / cellDegrees))
		lngHi := int(math.Floor(r[1] / cellDegrees))
		for lat := latLo; lat <= latHi; lat++ {
			for lng := lngLo; lng <= lngHi; lng++ {
				for id, p := range g.cells[cellKey{lat: lat, lng: lng}] {
					visit(id, p)
				}
			}
		}
	}
	return out
}
