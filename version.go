package strata

import _ "embed"

// Version exposes the version of the library. It tracks the VERSION
// file at the repository root so release tooling has a single source.
//
//go:embed VERSION
var Version string
