package negotiate

import "errors"

// ErrMaxIterationsReached is returned when the loop exhausts
// Config.MaxIterations without ever reaching a legal (zero-overuse)
// routing.
var ErrMaxIterationsReached = errors.New("negotiate: max iterations reached without a legal routing")
