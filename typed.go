package strata

import (
	"github.com/aretw0/strata/internal/platform"
)

// DecodeLabels reads a note's labels into a typed struct.
// T should be a struct of string fields; json tags select which label
// each field maps to.
func DecodeLabels[T any](n *Note) (T, error) {
	return platform.DecodeLabels[T](n)
}

// ApplyLabels writes a typed struct onto a note's labels, updating
// existing labels in place and creating missing ones.
func ApplyLabels[T any](n *Note, v T) error {
	return platform.ApplyLabels[T](n, v)
}
