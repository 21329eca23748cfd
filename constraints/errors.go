package constraints

import "errors"

// ErrIndexOutOfRange is returned by ConstraintByIndex when idx falls
// outside [0, NumConstraints()).
var ErrIndexOutOfRange = errors.New("constraints: index out of range")
