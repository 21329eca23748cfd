// Package traceback implements the legacy "traceback" routing dump, the
// flat per-net listing older tools exchange routed nets in.
//
// The format descends from a singly-linked list of trace nodes
// (rr_node, net_pin_index, iswitch), where a branch point is encoded
// by repeating its rr_node id: after finishing one child's subtree, the
// list continues with another entry for the same rr_node, whose iswitch
// now names the switch into the next child. A true end of branch (a SINK
// with no further branches to resume) carries iswitch = OPEN. This
// package keeps that layout as a flat []Element slice instead of a
// pointer list, matching package routetree's arena-over-pointers idiom.
package traceback
