// Package constraints implements user-specified global routing schemes
// for individual nets by name.
//
// A net name constraint is checked two ways, in order: an exact string
// match first, then (if none) a full-string regex match against every
// registered pattern.
package constraints
