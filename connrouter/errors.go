package connrouter

import "errors"

// ErrUnrouteable is returned when a search exhausts its heap (seeded or
// expanded) without ever reaching the target, within the search's given
// bounding box.
var ErrUnrouteable = errors.New("connrouter: no path to target within search region")

// ErrRetryFullBBox is returned instead of ErrUnrouteable when the search
// failed inside a bounding box narrower than the full device; the caller
// (package netrouter) is expected to reset the scratch table's
// search-scoped fields and re-invoke Search with a full-device bbox
// before treating the connection as genuinely unrouteable.
var ErrRetryFullBBox = errors.New("connrouter: retry with full-device bounding box")
