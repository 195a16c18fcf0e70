package geo

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
)

// Position is a stored XYZ point column.
type Position struct {
	geom.Point
}

// Scan reads WKB without validating the coordinates.
func (p *Position) Scan(src any) error {
	g, err := scanWKB(src)
	if err != nil {
		return err
	}
	pt, ok := g.AsPoint()
	if !ok {
		return fmt.Errorf("scanned geometry is a %s rather than a Point", g.Type())
	}
	p.Point = pt
	return nil
}

// Track is a stored XYZ line string column.
type Track struct {
	geom.LineString
}

// Scan reads WKB without requiring two distinct XY values.
func (t *Track) Scan(src any) error {
	g, err := scanWKB(src)
	if err != nil {
		return err
	}
	ls, ok := g.AsLineString()
	if !ok {
		return fmt.Errorf("scanned geometry is a %s rather than a LineString", g.Type())
	}
	t.LineString = ls
	return nil
}

func scanWKB(src any) (geom.Geometry, error) {
	var wkb []byte
	switch src := src.(type) {
	case []byte:
		wkb = src
	case string:
		wkb = []byte(src)
	default:
		return geom.Geometry{}, fmt.Errorf("unsupported src type in Scan: %T", src)
	}
	g, err := geom.UnmarshalWKB(wkb, geom.DisableAllValidations)
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("scanning as WKB: %w", err)
	}
	return g, nil
}
