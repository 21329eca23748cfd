package netrouter

import (
	"fmt"

	"github.com/katalvlaran/routecore/rrg"
)

// SearchError wraps a connrouter failure with the net/pin it occurred
// on, so a caller iterating many nets can report which connection
// failed.
type SearchError struct {
	Net rrg.NetID
	Pin int
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("netrouter: net %d pin %d: %v", e.Net, e.Pin, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }
