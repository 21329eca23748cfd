package rcv

import "github.com/katalvlaran/routecore/rrg"

// Budgets is the hook the negotiation loop consumes for hold-slack
// repair. A concrete implementation backed by real static timing
// analysis lives outside this module's scope.
type Budgets interface {
	// SetTargetDelay records the delay budget negotiate should route
	// pin toward for net, overriding plain minimum-delay routing for
	// that connection this iteration.
	SetTargetDelay(net rrg.NetID, pin int, targetDelay float64)
	// IsFinished reports whether hold-slack repair has converged and the
	// negotiation loop may stop iterating purely for hold.
	IsFinished() bool
}

// Disabled is the zero-cost Budgets used when
// --routing_budgets_algorithm=disable: it records nothing and always
// reports finished, so negotiate's hold-repair checks never block
// convergence.
type Disabled struct{}

func (Disabled) SetTargetDelay(rrg.NetID, int, float64) {}
func (Disabled) IsFinished() bool                       { return true }

var _ Budgets = Disabled{}
