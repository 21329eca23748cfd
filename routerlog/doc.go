// Package routerlog builds the *zap.SugaredLogger every other package
// accepts as an optional structured-logging collaborator: a small
// config struct selects level, encoding and an optional rotating log
// file, and the resulting logger is threaded through negotiate,
// netrouter, connrouter and parrouter.
package routerlog
