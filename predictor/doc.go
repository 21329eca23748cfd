// Package predictor implements the negotiation loop's early-abort
// model: overused-node
// counts tend to fall off exponentially across iterations, so fitting an
// ordinary-least-squares line to log(overuse) over a trailing window lets
// the loop estimate the iteration at which overuse will reach zero.
package predictor
