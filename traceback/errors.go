package traceback

import "errors"

// ErrEmpty is returned when decoding an empty element slice: a
// traceback always carries at least the net's SOURCE root.
var ErrEmpty = errors.New("traceback: empty element list")

// ErrDanglingNode is returned when an element that carries a
// switch-to-next names an rr_node not yet present in the tree being
// reconstructed, so there is no tree node to attach the following
// element under. Corrupt or hand-edited traceback files fail this way.
var ErrDanglingNode = errors.New("traceback: branch point rr-node not yet in the reconstructed tree")

// ErrUnknownSwitch is returned when an element names a switch id outside
// the RRG's switch table and the codec was not configured to remap it.
var ErrUnknownSwitch = errors.New("traceback: switch id out of range for current RRG")
