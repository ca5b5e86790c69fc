package geometry

import "github.com/paulmach/orb"

// ClipLine returns the parts of the lines lying in the closed polygon, that is
// the interior and the boundary. Isolated contact points are dropped.
func ClipLine(poly orb.Polygon, lines ...orb.LineString) orb.MultiLineString {
	var result orb.MultiLineString
	for _, ls := range lines {
		pieces, _ := splitAgainst(LineSegments(ls), poly)
		var current orb.LineString
		flush := func() {
			if len(current) >= 2 {
				result = append(result, current)
			}
			current = nil
		}
		for _, p := range pieces {
			if p.loc == Exterior {
				flush()
				continue
			}
			if len(current) > 0 && current[len(current)-1] == p.Start {
				current = append(current, p.End)
				continue
			}
			flush()
			current = orb.LineString{p.Start, p.End}
		}
		flush()
	}
	return result
}
