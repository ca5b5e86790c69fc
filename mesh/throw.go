package mesh

import "github.com/pkg/errors"

// Threading errors up and down the flip and walk loops of the triangulation
// would add a ton of complexity to the code. Instead, broken topology panics,
// and the public API recovers to convert to an error.

// altimetryError is the only panic value converted back into an error. Any
// other panic, runtime errors included, goes on unwinding.
type altimetryError struct {
	err error
}

// Panic with an altimetryError.
func fatalf(format string, args ...interface{}) {
	panic(altimetryError{errors.Errorf(format, args...)})
}

func HandleAltimetryPanicRecover(r interface{}) error {
	if r != nil {
		if thrown, ok := r.(altimetryError); ok {
			return thrown.err
		}
		panic(r)
	}
	return nil
}

// recoverInto is deferred by the exported methods which run the triangulation
// code.
func recoverInto(err *error) {
	if recovered := HandleAltimetryPanicRecover(recover()); recovered != nil {
		*err = recovered
	}
}
