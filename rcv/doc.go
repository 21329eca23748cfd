// Package rcv gives the negotiation loop a narrow, pass-through
// collaborator for hold-slack repair. Full static-timing-driven budget
// computation (minimax PERT, slack allocation) belongs to the external
// STA engine, so this package exposes only the two operations the loop
// actually calls: setting a per-pin target delay and asking whether
// hold repair has converged.
package rcv
