// Package routerconfig loads the router's whole configuration surface —
// the present-factor schedule, cost-function weights, bounding-box and
// high-fanout knobs, predictor mode, RCV budgets algorithm and the
// logging section routerlog consumes — into a single Config struct.
//
// Loading is layered: a YAML file is read first, then any ROUTER_*
// environment variable overrides the matching key, then (in cmd/router)
// Kong-parsed command-line flags win over both.
package routerconfig
