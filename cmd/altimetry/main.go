package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/osuushi/altimetry"
	"github.com/osuushi/altimetry/builder"
	"github.com/osuushi/altimetry/datamodel"
	"github.com/sirupsen/logrus"
)

// Demo of mesh building. Input on stdin should be a GeoJSON feature collection
// describing a site tree: every feature has a "type" property naming its kind
// and, except for the root site, a "site" property naming its owner.
//
// An optional argument names a TOML configuration file.
func main() {
	log := logrus.New()
	cfg := builder.DefaultConfig()
	if len(os.Args) > 1 {
		var err error
		cfg, err = builder.LoadConfig(os.Args[1])
		if err != nil {
			log.WithError(err).Fatal("bad configuration")
		}
	}
	cfg.Logger = log

	input, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		log.WithError(err).Fatal("reading the site")
	}
	data, err := altimetry.BuildJSON(input, cfg)
	if err != nil {
		entry := log.WithError(err)
		if inconsistency, ok := datamodel.AsInconsistency(err); ok {
			entry = entry.WithField("features", inconsistency.IDs)
			if inconsistency.Witness != nil {
				entry = entry.WithField("at", *inconsistency.Witness)
			}
		}
		entry.Fatal("building the mesh")
	}

	counts := make([]int, len(data.Materials))
	for _, i := range data.FaceMaterials {
		counts[i]++
	}
	fmt.Printf("Built %d vertices and %d faces\n", len(data.Vertices), len(data.Faces))
	for i, material := range data.Materials {
		fmt.Printf("  %s: %d faces\n", material, counts[i])
	}
}
