package mesh

import (
	"fmt"
	"sort"
	"strings"

	"github.com/osuushi/altimetry/datamodel"
	"github.com/paulmach/orb"
)

// Well known info keys
const (
	KeyAltitude = "altitude"
	KeyMaterial = "material"
	// Ids of the features a vertex or constraint comes from
	KeyOrigin = "origin"
)

// Value is one of Float, String, Bool or IDSet.
type Value interface {
	fmt.Stringer
	equal(Value) bool
}

type Float float64
type String string
type Bool bool

// IDSet is a sorted set of feature ids.
type IDSet []string

func (f Float) String() string  { return fmt.Sprintf("%g", float64(f)) }
func (s String) String() string { return string(s) }
func (b Bool) String() string   { return fmt.Sprintf("%t", bool(b)) }
func (s IDSet) String() string  { return "{" + strings.Join(s, ", ") + "}" }

func (f Float) equal(o Value) bool  { other, ok := o.(Float); return ok && other == f }
func (s String) equal(o Value) bool { other, ok := o.(String); return ok && other == s }
func (b Bool) equal(o Value) bool   { other, ok := o.(Bool); return ok && other == b }

func (s IDSet) equal(o Value) bool {
	other, ok := o.(IDSet)
	if !ok || len(other) != len(s) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// IDs builds a normalized IDSet.
func IDs(ids ...string) IDSet {
	return IDSet(nil).union(ids)
}

func (s IDSet) union(ids []string) IDSet {
	seen := make(map[string]bool, len(s)+len(ids))
	var out IDSet
	for _, list := range [][]string{s, ids} {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Info is the open record of attributes carried by vertices and input
// constraints.
type Info map[string]Value

func (i Info) Clone() Info {
	if i == nil {
		return nil
	}
	out := make(Info, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}

func (i Info) Float(key string) (float64, bool) {
	v, ok := i[key].(Float)
	return float64(v), ok
}

func (i Info) Text(key string) (string, bool) {
	v, ok := i[key].(String)
	return string(v), ok
}

func (i Info) Altitude() (float64, bool) {
	return i.Float(KeyAltitude)
}

func (i Info) Material() (datamodel.GroundMaterial, bool) {
	s, ok := i.Text(KeyMaterial)
	return datamodel.GroundMaterial(s), ok
}

// Origins returns the ids of the features this info comes from.
func (i Info) Origins() []string {
	switch v := i[KeyOrigin].(type) {
	case IDSet:
		return v
	case String:
		return []string{string(v)}
	}
	return nil
}

// Only keeps the given keys.
func (i Info) Only(keys ...string) Info {
	out := make(Info)
	for _, k := range keys {
		if v, ok := i[k]; ok {
			out[k] = v
		}
	}
	return out
}

func (i Info) String() string {
	keys := make([]string, 0, len(i))
	for k := range i {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for n, k := range keys {
		parts[n] = k + ": " + i[k].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MergePolicy decides how two info records meeting on the same vertex or
// edge combine. Identity keys accumulate ids, every other key must agree.
type MergePolicy struct {
	identityKeys map[string]bool
}

func NewMergePolicy(identityKeys ...string) MergePolicy {
	p := MergePolicy{identityKeys: make(map[string]bool)}
	for _, k := range identityKeys {
		p.identityKeys[k] = true
	}
	return p
}

func DefaultMergePolicy() MergePolicy {
	return NewMergePolicy(KeyOrigin)
}

// ConflictError reports two different values for the same key.
type ConflictError struct {
	Key      string
	Existing Value
	Incoming Value
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting %s: %s and %s", e.Key, e.Existing, e.Incoming)
}

// Merge returns a new record holding the keys of both a and b. It fails with
// a *ConflictError when they disagree on a non identity key.
func (p MergePolicy) Merge(a, b Info) (Info, error) {
	out := a.Clone()
	if out == nil {
		out = make(Info, len(b))
	}
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		incoming := b[k]
		if p.identityKeys[k] {
			out[k] = asIDSet(out[k]).union(asIDSet(incoming))
			continue
		}
		if existing, ok := out[k]; ok && !existing.equal(incoming) {
			return nil, &ConflictError{Key: k, Existing: existing, Incoming: incoming}
		}
		out[k] = incoming
	}
	return out, nil
}

func asIDSet(v Value) IDSet {
	switch v := v.(type) {
	case IDSet:
		return v
	case String:
		return IDSet{string(v)}
	}
	return nil
}

// conflictAt turns a merge failure into the error reported to users, naming
// the origins of both records and where they met.
func conflictAt(err error, p orb.Point, a, b Info) error {
	conflict, ok := err.(*ConflictError)
	if !ok {
		return err
	}
	ids := IDs(a.Origins()...).union(b.Origins())
	return datamodel.NewInconsistency("Conflicting %s (%s and %s)", conflict.Key, conflict.Existing, conflict.Incoming).
		WithIDs(ids...).
		WithWitness(p)
}
