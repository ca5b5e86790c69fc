package datamodel

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// InconsistentGeometricModel is raised whenever the geometry of a site
// description contradicts itself: a feature crossing a boundary it must stay
// inside, two features overlapping where they must nest, an invalid polygon,
// contradictory attributes meeting at a mesh vertex...
type InconsistentGeometricModel struct {
	Message string
	// Ids of the offending features (or origins of mesh constraints)
	IDs []string
	// Where the inconsistency was detected, when it is known
	Witness *orb.Point

	cause error
}

func NewInconsistency(format string, args ...interface{}) *InconsistentGeometricModel {
	return &InconsistentGeometricModel{Message: fmt.Sprintf(format, args...)}
}

func (e *InconsistentGeometricModel) WithIDs(ids ...string) *InconsistentGeometricModel {
	e.IDs = append(e.IDs, ids...)
	return e
}

func (e *InconsistentGeometricModel) WithWitness(p orb.Point) *InconsistentGeometricModel {
	e.Witness = &p
	return e
}

// WithCause keeps err reachable through errors.Is. errors.Cause still stops
// at the inconsistency.
func (e *InconsistentGeometricModel) WithCause(err error) *InconsistentGeometricModel {
	e.cause = err
	return e
}

func (e *InconsistentGeometricModel) Unwrap() error { return e.cause }

func (e *InconsistentGeometricModel) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.IDs) > 0 {
		fmt.Fprintf(&b, " [ids: %s]", strings.Join(e.IDs, ", "))
	}
	if e.Witness != nil {
		fmt.Fprintf(&b, " [witness: %g %g]", e.Witness[0], e.Witness[1])
	}
	return b.String()
}

// AsInconsistency digs through wrapped errors for an InconsistentGeometricModel.
func AsInconsistency(err error) (*InconsistentGeometricModel, bool) {
	var inconsistency *InconsistentGeometricModel
	if errors.As(err, &inconsistency) {
		return inconsistency, true
	}
	return nil, false
}
