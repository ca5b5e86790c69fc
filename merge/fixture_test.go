package merge

import (
	"embed"
	"log"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"
	"github.com/osuushi/altimetry/datamodel"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Site scenes are drawn as SVG files in the fixtures/ directory. Every
// polygon or polyline element is a feature: its id attribute is the feature
// id, and data-* attributes hold the properties of the feature (data-type,
// data-site, data-altitude...). Polygons become GeoJSON polygons, polylines
// become line strings. If anything goes wrong, the test binary dies.

//go:embed fixtures
var fixtures embed.FS

var numericProperties = map[string]bool{"altitude": true, "height": true}

func LoadScene(name string) *datamodel.SiteNode {
	fixture, err := fixtures.Open("fixtures/" + name + ".svg")
	if err != nil {
		log.Fatalf("Could not load fixture %q: %v", name, err)
	}
	defer fixture.Close()

	rootEl, err := svgparser.Parse(fixture, false)
	if err != nil {
		log.Fatalf("Failed to parse fixture %q: %v", name, err)
	}

	fc := geojson.NewFeatureCollection()
	for _, tag := range []string{"polygon", "polyline"} {
		for _, el := range rootEl.FindAll(tag) {
			points := parsePoints(el.Attributes["points"])
			var g orb.Geometry = orb.LineString(points)
			if tag == "polygon" {
				g = orb.Polygon{orb.Ring(append(points, points[0]))}
			}
			gf := geojson.NewFeature(g)
			if id := el.Attributes["id"]; id != "" {
				gf.ID = id
			}
			for attr, value := range el.Attributes {
				if !strings.HasPrefix(attr, "data-") {
					continue
				}
				key := strings.TrimPrefix(attr, "data-")
				switch {
				case numericProperties[key]:
					f, err := strconv.ParseFloat(value, 64)
					if err != nil {
						log.Fatalf("Invalid %s %q in fixture %q: %v", key, value, name, err)
					}
					gf.Properties[key] = f
				case value == "true" || value == "false":
					gf.Properties[key] = value == "true"
				default:
					gf.Properties[key] = value
				}
			}
			fc.Append(gf)
		}
	}

	site, err := datamodel.LoadSite(fc)
	if err != nil {
		log.Fatalf("Invalid site in fixture %q: %v", name, err)
	}
	return site
}

func parsePoints(pointString string) []orb.Point {
	var points []orb.Point
	for _, pointString := range strings.Fields(pointString) {
		pointStrings := strings.Split(pointString, ",")
		if len(pointStrings) != 2 {
			log.Fatalf("Invalid point string %q", pointString)
		}
		x, err := strconv.ParseFloat(pointStrings[0], 64)
		if err != nil {
			log.Fatalf("Invalid x value %q: %v", pointStrings[0], err)
		}
		y, err := strconv.ParseFloat(pointStrings[1], 64)
		if err != nil {
			log.Fatalf("Invalid y value %q: %v", pointStrings[1], err)
		}
		points = append(points, orb.Point{x, y})
	}
	return points
}

// Hand built sites

func square(x, y, size float64) []orb.Point {
	return []orb.Point{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}}
}

// A 12x10 site with a 3x3 subsite in its upper right part.
func SiteWithSubsite() (*datamodel.SiteNode, *datamodel.SiteNode) {
	main := datamodel.NewSiteNode([]orb.Point{{0, 0}, {12, 0}, {12, 10}, {0, 10}}, datamodel.WithID("main"))
	sub := datamodel.NewSiteNode(square(8, 6, 3), datamodel.WithID("sub"))
	if err := main.AddChild(sub); err != nil {
		log.Fatal(err)
	}
	return main, sub
}

func mustAdd(site *datamodel.SiteNode, features ...datamodel.Feature) {
	for _, f := range features {
		if err := site.AddChild(f); err != nil {
			log.Fatal(err)
		}
	}
}
