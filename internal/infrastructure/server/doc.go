// Package server wires configuration, logging, metrics, the bundle registry
// and the gin router into a runnable HTTP server.
package server
