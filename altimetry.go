// Ground mesh building for acoustic simulations.
//
// This package takes a site tree, made of level curves, material areas,
// water bodies and landtakes nested in sites and subsites, and turns it into
// a triangulated ground with an altitude on every vertex and a ground
// material on every face. See the builder package for the individual steps.
package altimetry

import (
	"github.com/osuushi/altimetry/builder"
	"github.com/osuushi/altimetry/datamodel"
	"github.com/osuushi/altimetry/mesh"
)

type MeshData = builder.MeshData
type Config = builder.Config

// Build runs every step of the mesh building on the site tree under root.
//
// Inconsistent input, such as level curves crossing at different altitudes
// or a feature lying out of its site, gives an error which can be inspected
// with datamodel.AsInconsistency.
func Build(root *datamodel.SiteNode, cfg Config) (result *MeshData, err error) {
	defer func() {
		recoveredErr := mesh.HandleAltimetryPanicRecover(recover())
		if recoveredErr != nil {
			result = nil
			err = recoveredErr
		}
	}()
	b, err := builder.New(root, cfg)
	if err != nil {
		return nil, err
	}
	return b.CompleteProcessing()
}

// BuildJSON builds the mesh of a site described as a GeoJSON feature
// collection.
func BuildJSON(data []byte, cfg Config) (*MeshData, error) {
	root, err := datamodel.LoadSiteJSON(data)
	if err != nil {
		return nil, err
	}
	return Build(root, cfg)
}
