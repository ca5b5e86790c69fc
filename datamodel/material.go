package datamodel

// GroundMaterial identifies the acoustic nature of the ground. Materials are
// plain values: two materials with the same id are the same material.
type GroundMaterial string

const (
	MaterialWater   GroundMaterial = "Water"
	MaterialDefault GroundMaterial = "__default__"
	// Ground hidden below infrastructure
	MaterialHidden GroundMaterial = "__hidden__"
)

func (m GroundMaterial) ID() string {
	return string(m)
}
