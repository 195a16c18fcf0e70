package geo

import (
	"fmt"
	"math"

	"github.com/OCAP2/bsor/pkg/bsor"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Positions are stored as XYZ geometries in room-scale metres. There is no
// CRS: the tracking origin is wherever the headset put it. Geometry is
// persisted as WKB through the geom Scan/Value implementations, which keeps
// SQLite and Postgres columns interchangeable.
//
// Tracking data is not valid OGC geometry. A player standing still gives a
// path with a single distinct XY value and a lost controller can report
// non-finite samples, so construction and scanning skip validation.

// Point converts a tracked position into an XYZ point.
func Point(v bsor.Vector3) (geom.Point, error) {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: float64(v.X), Y: float64(v.Y)},
		Z:    float64(v.Z),
		Type: geom.DimXYZ,
	}, geom.DisableAllValidations)
}

// Vector converts an XYZ point back into a position. ok is false for an
// empty point.
func Vector(p geom.Point) (v bsor.Vector3, ok bool) {
	c, ok := p.Coordinates()
	if !ok {
		return bsor.Vector3{}, false
	}
	return bsor.Vector3{X: float32(c.X), Y: float32(c.Y), Z: float32(c.Z)}, true
}

// Path builds an XYZ line string through positions in order. Fewer than two
// positions give an empty line string.
func Path(positions []bsor.Vector3) (geom.LineString, error) {
	if len(positions) < 2 {
		return geom.NewLineString(geom.NewSequence(nil, geom.DimXYZ), geom.DisableAllValidations)
	}
	flat := make([]float64, 0, len(positions)*3)
	for _, p := range positions {
		flat = append(flat, float64(p.X), float64(p.Y), float64(p.Z))
	}
	ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXYZ), geom.DisableAllValidations)
	if err != nil {
		return geom.LineString{}, fmt.Errorf("failed to build path of %d positions: %w", len(positions), err)
	}
	return ls, nil
}

// HeadPath traces the headset through the given frames.
func HeadPath(frames []*bsor.FrameEvent) (geom.LineString, error) {
	return Path(collect(frames, func(f *bsor.FrameEvent) bsor.Vector3 { return f.HeadPos }))
}

// HandPath traces one controller through the given frames.
func HandPath(frames []*bsor.FrameEvent, left bool) (geom.LineString, error) {
	if left {
		return Path(collect(frames, func(f *bsor.FrameEvent) bsor.Vector3 { return f.LeftHandPos }))
	}
	return Path(collect(frames, func(f *bsor.FrameEvent) bsor.Vector3 { return f.RightHandPos }))
}

func collect(frames []*bsor.FrameEvent, pick func(*bsor.FrameEvent) bsor.Vector3) []bsor.Vector3 {
	out := make([]bsor.Vector3, len(frames))
	for i, f := range frames {
		out[i] = pick(f)
	}
	return out
}

// PathLength is the 3D length of ls. geom's own Length ignores Z.
func PathLength(ls geom.LineString) float64 {
	seq := ls.Coordinates()
	var total float64
	for i := 1; i < seq.Length(); i++ {
		a, b := seq.Get(i-1), seq.Get(i)
		dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return total
}

// Extent returns the per-axis minimum and maximum of ls. ok is false when
// ls is empty.
func Extent(ls geom.LineString) (lo, hi bsor.Vector3, ok bool) {
	seq := ls.Coordinates()
	if seq.Length() == 0 {
		return lo, hi, false
	}
	minX, minY, minZ := math.Inf(1), math.Inf(1), math.Inf(1)
	maxX, maxY, maxZ := math.Inf(-1), math.Inf(-1), math.Inf(-1)
	for i := 0; i < seq.Length(); i++ {
		c := seq.Get(i)
		minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
		minY, maxY = math.Min(minY, c.Y), math.Max(maxY, c.Y)
		minZ, maxZ = math.Min(minZ, c.Z), math.Max(maxZ, c.Z)
	}
	lo = bsor.Vector3{X: float32(minX), Y: float32(minY), Z: float32(minZ)}
	hi = bsor.Vector3{X: float32(maxX), Y: float32(maxY), Z: float32(maxZ)}
	return lo, hi, true
}
