package parrouter

import "errors"

// ErrUnrouteable mirrors connrouter.ErrUnrouteable: a search exhausted the
// shared heap within the full-device bounding box.
var ErrUnrouteable = errors.New("parrouter: no path found within full-device bounding box")

// ErrRetryFullBBox mirrors connrouter.ErrRetryFullBBox: the caller should
// retry the same connection with req.FullDeviceBBox set.
var ErrRetryFullBBox = errors.New("parrouter: no path found within bounding box, retry at full device extent")
